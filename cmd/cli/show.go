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

	"github.com/agentberlin/streaksnake/internal/app"
	"github.com/agentberlin/streaksnake/internal/types"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	showRunID uint
	showQuery string
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print a stored run as a table",
	Example: `  # Records of run 12 whose name or profile contains "anna"
  streaksnake show --run-id 12 --search anna`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if showRunID == 0 {
			return fmt.Errorf("--run-id is required")
		}

		env, err := openEnvironment(&app.NoOpEmitter{}, nil)
		if err != nil {
			return err
		}
		defer env.Close()

		result, err := env.app.GetRunResult(showRunID, showQuery)
		if err != nil {
			return fmt.Errorf("run not found: %v", err)
		}
		renderResult(cmd.OutOrStdout(), result)
		return nil
	},
}

func init() {
	showCmd.Flags().UintVarP(&showRunID, "run-id", "r", 0, "Run ID to show (required)")
	showCmd.Flags().StringVar(&showQuery, "search", "", "Only records whose name or profile URL contains this text")
}

func renderResult(out io.Writer, result *types.RunResultDetailed) {
	info := result.RunInfo
	fmt.Fprintf(out, "Run %d of %s: %s, %d records, %d failures\n",
		info.ID, info.Target, info.State, info.RecordCount, info.DiagnosticCount)

	t := newTable(out)
	t.AppendHeader(table.Row{"#", "Name", "Streak", "Twitter", "LinkedIn", "Facebook", "Website", "Other"})
	for _, r := range result.Records {
		name := r.Name
		if !r.Resolved {
			name += " (unresolved)"
		}
		t.AppendRow(table.Row{r.Position + 1, name, r.StreakDays, r.Twitter, r.LinkedIn, r.Facebook, r.Website, len(r.OtherLinks)})
	}
	t.Render()

	if len(result.Diagnostics) == 0 {
		return
	}
	d := newTable(out)
	d.AppendHeader(table.Row{"Kind", "Name", "URL", "Message"})
	for _, diag := range result.Diagnostics {
		d.AppendRow(table.Row{diag.Kind, diag.Name, diag.URL, truncate(diag.Message, 80)})
	}
	d.Render()
}
