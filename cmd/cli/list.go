// Copyright 2025 Agentic World, LLC (Sherin Thomas)
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"fmt"
	"io"
	"time"

	"github.com/agentberlin/streaksnake/internal/app"
	"github.com/agentberlin/streaksnake/internal/types"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func newTable(out io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(out)
	return t
}

func formatTime(unix int64) string {
	if unix == 0 {
		return "-"
	}
	return time.Unix(unix, 0).Format("2006-01-02 15:04")
}

// truncate truncates a string to the specified length
func truncate(s string, length int) string {
	if len(s) <= length {
		return s
	}
	return s[:length-3] + "..."
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects or runs",
}

var listRunsLimit int

var listProjectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "List all harvested leaderboard domains",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openEnvironment(&app.NoOpEmitter{}, nil)
		if err != nil {
			return err
		}
		defer env.Close()

		projects, err := env.app.GetProjects()
		if err != nil {
			return fmt.Errorf("failed to get projects: %v", err)
		}
		if len(projects) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No projects found.")
			return nil
		}
		renderProjects(cmd.OutOrStdout(), projects)
		return nil
	},
}

var listRunsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recent runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openEnvironment(&app.NoOpEmitter{}, nil)
		if err != nil {
			return err
		}
		defer env.Close()

		runs, err := env.app.ListRuns(listRunsLimit)
		if err != nil {
			return fmt.Errorf("failed to get runs: %v", err)
		}
		if len(runs) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No runs found.")
			return nil
		}
		renderRuns(cmd.OutOrStdout(), runs)
		return nil
	},
}

func init() {
	listRunsCmd.Flags().IntVarP(&listRunsLimit, "limit", "n", 20, "Maximum runs to list (0 = all)")
	listCmd.AddCommand(listProjectsCmd, listRunsCmd)
}

func renderProjects(out io.Writer, projects []types.ProjectInfo) {
	t := newTable(out)
	t.AppendHeader(table.Row{"ID", "Domain", "Last Run", "Records"})
	for _, p := range projects {
		t.AppendRow(table.Row{p.ID, truncate(p.Domain, 40), formatTime(p.LastRunAt), p.RecordCount})
	}
	t.Render()
}

func renderRuns(out io.Writer, runs []types.RunInfo) {
	t := newTable(out)
	t.AppendHeader(table.Row{"Run", "Domain", "Started", "Strategy", "State", "Records", "Failures", "Limit"})
	for _, r := range runs {
		limit := "-"
		if r.Limit > 0 {
			limit = fmt.Sprintf("%d", r.Limit)
			if r.LimitReached {
				limit += " (reached)"
			}
		}
		t.AppendRow(table.Row{r.ID, truncate(r.Domain, 30), formatTime(r.StartedAt), r.Strategy, r.State, r.RecordCount, r.DiagnosticCount, limit})
	}
	t.Render()
}
