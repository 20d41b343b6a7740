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

// StreakSnake CLI
//
// Command-line interface for harvesting visit-streak leaderboards and
// managing stored runs.
//
// Usage:
//
//	streaksnake <command> [flags]
//
// Commands:
//
//	harvest   Harvest a leaderboard and export the result
//	export    Export a stored run
//	list      List projects or runs
//	show      Print a stored run as a table
//	version   Show version information
package main

import (
	"fmt"
	"os"

	"github.com/agentberlin/streaksnake"
	"github.com/agentberlin/streaksnake/internal/app"
	"github.com/agentberlin/streaksnake/internal/store"
	"github.com/agentberlin/streaksnake/internal/version"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var rootCmd = &cobra.Command{
	Use:           "streaksnake",
	Short:         "streaksnake harvests visit-streak leaderboards with their social links.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "StreakSnake CLI %s\n", version.CurrentVersion)
	},
}

func init() {
	rootCmd.AddCommand(harvestCmd, exportCmd, listCmd, showCmd, versionCmd)
}

// environment bundles what every command needs
type environment struct {
	settings *app.Settings
	logger   *zap.Logger
	store    *store.Store
	launcher *streaksnake.ChromedpLauncher
	app      *app.App
}

func (e *environment) Close() {
	if e.launcher != nil {
		e.launcher.Close()
	}
	if err := e.store.Close(); err != nil {
		e.logger.Warn("closing database", zap.Error(err))
	}
	_ = e.logger.Sync()
}

// openEnvironment loads settings, opens the database and builds the app.
func openEnvironment(emitter app.EventEmitter, headless *bool) (*environment, error) {
	settings := app.LoadSettings()

	logger, err := app.NewLogger(settings.LogLevel, settings.LogFile)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %v", err)
	}

	var st *store.Store
	if settings.DBPath != "" {
		st, err = store.NewStoreAt(settings.DBPath)
	} else {
		st, err = store.NewStore()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %v", err)
	}

	launcher := streaksnake.NewChromedpLauncher()
	launcher.ExecPath = settings.ChromePath
	launcher.Headless = settings.Headless
	if headless != nil {
		launcher.Headless = *headless
	}
	launcher.UserAgent = settings.UserAgent

	coreApp := app.NewApp(st, emitter, launcher, logger)
	return &environment{
		settings: settings,
		logger:   logger,
		store:    st,
		launcher: launcher,
		app:      coreApp,
	}, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
