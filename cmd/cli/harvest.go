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
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/agentberlin/streaksnake/internal/app"
	"github.com/agentberlin/streaksnake/internal/types"
	"github.com/spf13/cobra"
)

// harvestFlags holds all the flags for the harvest command
type harvestFlags struct {
	limit          int
	strategy       string
	workers        int
	dropUnresolved bool
	respectRobots  bool
	userAgent      string
	headless       bool
	saveDefaults   bool

	output string
	format string
	quiet  bool
}

var hFlags harvestFlags

var harvestCmd = &cobra.Command{
	Use:   "harvest <url>",
	Short: "Harvest a leaderboard and export the result",
	Example: `  # Harvest the Product Hunt visit-streak leaderboard
  streaksnake harvest https://www.producthunt.com/visit-streaks

  # First 50 entries, four profile tabs, as CSV
  streaksnake harvest https://www.producthunt.com/visit-streaks --limit 50 --workers 4 -f csv -o ./out`,
	Args: cobra.ExactArgs(1),
	RunE: runHarvest,
}

func init() {
	f := harvestCmd.Flags()
	f.IntVarP(&hFlags.limit, "limit", "n", 0, "Maximum entries to harvest (0 = stored default, unlimited if unset)")
	f.StringVarP(&hFlags.strategy, "strategy", "s", "", "Reveal strategy: scroll, paginate (default: stored, else scroll)")
	f.IntVarP(&hFlags.workers, "workers", "w", 0, "Browser tabs resolving profiles concurrently (0 = stored default)")
	f.BoolVar(&hFlags.dropUnresolved, "drop-unresolved", false, "Drop entries whose profile page failed")
	f.BoolVar(&hFlags.respectRobots, "respect-robots", false, "Refuse targets disallowed by robots.txt")
	f.StringVarP(&hFlags.userAgent, "user-agent", "A", "", "User-Agent for robots.txt checks and the browser")
	f.BoolVar(&hFlags.headless, "headless", true, "Run Chrome headless")
	f.BoolVar(&hFlags.saveDefaults, "save", false, "Store these settings as the domain's defaults")
	f.StringVarP(&hFlags.output, "output", "o", ".", "Output directory for results")
	f.StringVarP(&hFlags.format, "format", "f", "json", "Output format: json, csv, tsv")
	f.BoolVarP(&hFlags.quiet, "quiet", "q", false, "Suppress progress output")
}

// CLIEmitter prints harvest events to the terminal
type CLIEmitter struct {
	out   io.Writer
	quiet bool
}

// Emit prints a one-line status per event
func (e *CLIEmitter) Emit(eventType app.EventType, data interface{}) {
	if e.quiet {
		return
	}
	switch eventType {
	case app.EventHarvestStarted:
		if p, ok := data.(types.HarvestProgress); ok {
			fmt.Fprintf(e.out, "Harvesting %s (run %d)...\n", p.URL, p.RunID)
		}
	case app.EventHarvestProgress:
		if p, ok := data.(types.HarvestProgress); ok {
			fmt.Fprintf(e.out, "\rResolved: %d/%d | Records: %d | Failures: %d", p.Processed, p.Total, p.Records, p.Failures)
		}
	case app.EventHarvestCompleted, app.EventHarvestAborted, app.EventHarvestCancelled:
		if info, ok := data.(types.RunInfo); ok {
			fmt.Fprintf(e.out, "\nRun %d %s: %d records, %d failures\n", info.ID, info.State, info.RecordCount, info.DiagnosticCount)
		}
	}
}

func runHarvest(cmd *cobra.Command, args []string) error {
	if err := validateFormat(hFlags.format); err != nil {
		return err
	}

	emitter := &CLIEmitter{out: cmd.OutOrStdout(), quiet: hFlags.quiet}
	headless := hFlags.headless
	env, err := openEnvironment(emitter, &headless)
	if err != nil {
		return err
	}
	defer env.Close()

	if health := env.app.CheckSystemHealth(); !health.IsHealthy {
		return fmt.Errorf("%s: %s %s", health.ErrorTitle, health.ErrorMsg, health.Suggestion)
	}

	workers := hFlags.workers
	if workers == 0 && env.settings.Workers > 1 {
		workers = env.settings.Workers
	}
	userAgent := hFlags.userAgent
	if userAgent == "" {
		userAgent = env.settings.UserAgent
	}

	req := types.HarvestRequest{
		URL:           args[0],
		Strategy:      hFlags.strategy,
		Limit:         hFlags.limit,
		Workers:       workers,
		UserAgent:     userAgent,
		SaveAsDefault: hFlags.saveDefaults,
	}
	// Unset flags keep the project's stored values.
	if cmd.Flags().Changed("drop-unresolved") {
		req.DropUnresolved = &hFlags.dropUnresolved
	}
	if cmd.Flags().Changed("respect-robots") {
		req.RespectRobots = &hFlags.respectRobots
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	env.app.Startup(ctx)

	info, err := env.app.Harvest(ctx, req)
	if err != nil {
		return fmt.Errorf("harvest failed: %v", err)
	}

	result, err := env.app.GetRunResult(info.ID, "")
	if err != nil {
		return err
	}

	exporter := &Exporter{outputDir: hFlags.output, format: hFlags.format}
	path, err := exporter.Export(result)
	if err != nil {
		return fmt.Errorf("failed to export results: %v", err)
	}
	if !hFlags.quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "Exported to %s\n", path)
	}
	return nil
}
