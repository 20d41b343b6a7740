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

// Command testserver serves the leaderboard fixtures for manual runs against
// a real browser:
//
//	go run ./cmd/testserver -port 8089
//	streaksnake harvest http://127.0.0.1:8089/streaks
//	streaksnake harvest http://127.0.0.1:8089/leaderboard --strategy paginate
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/agentberlin/streaksnake/internal/app"
	"github.com/agentberlin/streaksnake/testutil"
	"go.uber.org/zap"
)

func main() {
	port := flag.Int("port", 8089, "Port to run the fixture server on")
	host := flag.String("host", "127.0.0.1", "Host to bind the fixture server to")
	total := flag.Int("users", 60, "Number of leaderboard users")
	batch := flag.Int("batch", 10, "Rows per scroll batch or page")
	flag.Parse()

	settings := app.LoadSettings()
	logger, err := app.NewLogger(settings.LogLevel, settings.LogFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	addr := fmt.Sprintf("%s:%d", *host, *port)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      testutil.NewHandler(*total, *batch),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("serving leaderboard fixtures",
			zap.String("addr", addr),
			zap.Int("users", *total),
			zap.Int("batch", *batch))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("fixture server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Fatal("forced shutdown", zap.Error(err))
	}
}
