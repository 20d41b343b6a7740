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

package app

import (
	"context"
	"os"
	"os/exec"
	"runtime"
	"sync"

	"github.com/agentberlin/streaksnake"
	"github.com/agentberlin/streaksnake/internal/store"
	"github.com/agentberlin/streaksnake/internal/types"
	"go.uber.org/zap"
)

// App represents the core application logic
type App struct {
	ctx            context.Context
	store          *store.Store
	emitter        EventEmitter
	launcher       streaksnake.Launcher
	logger         *zap.Logger
	activeHarvests map[uint]*activeHarvest
	harvestsMutex  sync.RWMutex

	// configHook adjusts every harvester configuration before a run
	configHook func(*streaksnake.Config)
}

// NewApp creates a new App instance with dependencies injected
func NewApp(st *store.Store, emitter EventEmitter, launcher streaksnake.Launcher, logger *zap.Logger) *App {
	if emitter == nil {
		emitter = &NoOpEmitter{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &App{
		ctx:            context.Background(),
		store:          st,
		emitter:        emitter,
		launcher:       launcher,
		logger:         logger,
		activeHarvests: make(map[uint]*activeHarvest),
	}
}

// Startup initializes the app with a context
func (a *App) Startup(ctx context.Context) {
	a.ctx = ctx
}

// CheckSystemHealth checks if all required dependencies are available
func (a *App) CheckSystemHealth() *types.SystemHealthCheck {
	if !isChromeBrowserAvailable() {
		return &types.SystemHealthCheck{
			IsHealthy:  false,
			ErrorTitle: "Chrome Browser Required",
			ErrorMsg:   "Google Chrome or Chromium is required to render leaderboards but was not found on your system.",
			Suggestion: "Install Google Chrome from https://www.google.com/chrome/ or set CHROME_PATH to an existing Chrome or Chromium binary.",
		}
	}

	return &types.SystemHealthCheck{
		IsHealthy: true,
	}
}

// isChromeBrowserAvailable checks if Chrome or Chromium is available
func isChromeBrowserAvailable() bool {
	if customPath := os.Getenv("CHROME_PATH"); customPath != "" {
		if _, err := os.Stat(customPath); err == nil {
			return true
		}
	}

	var chromePaths []string

	switch runtime.GOOS {
	case "darwin":
		chromePaths = []string{
			"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
			"/Applications/Chromium.app/Contents/MacOS/Chromium",
			os.Getenv("HOME") + "/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
		}
	case "windows":
		chromePaths = []string{
			os.Getenv("ProgramFiles") + "\\Google\\Chrome\\Application\\chrome.exe",
			os.Getenv("ProgramFiles(x86)") + "\\Google\\Chrome\\Application\\chrome.exe",
			os.Getenv("LocalAppData") + "\\Google\\Chrome\\Application\\chrome.exe",
		}
	case "linux":
		chromePaths = []string{
			"/usr/bin/google-chrome",
			"/usr/bin/chromium",
			"/usr/bin/chromium-browser",
			"/snap/bin/chromium",
		}
	}

	for _, path := range chromePaths {
		if _, err := os.Stat(path); err == nil {
			return true
		}
	}

	for _, name := range []string{"google-chrome", "chromium", "chromium-browser"} {
		if _, err := exec.LookPath(name); err == nil {
			return true
		}
	}

	return false
}
