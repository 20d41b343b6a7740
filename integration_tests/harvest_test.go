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

package integration_tests

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/agentberlin/streaksnake"
	"github.com/agentberlin/streaksnake/internal/app"
	"github.com/agentberlin/streaksnake/internal/store"
	"github.com/agentberlin/streaksnake/internal/types"
	"github.com/agentberlin/streaksnake/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// TestHarvestIntegration runs the full flow a CLI user triggers: a real
// browser harvests the fixture leaderboard and the run lands in the database.
func TestHarvestIntegration(t *testing.T) {
	chrome := testutil.ChromePath()
	if chrome == "" {
		t.Skip("Chrome not installed")
	}

	srv := testutil.NewTestServer(15, 5)
	defer srv.Close()

	st, err := store.NewStoreForTesting(filepath.Join(t.TempDir(), "integration.db"))
	require.NoError(t, err)
	defer st.Close()

	launcher := streaksnake.NewChromedpLauncher()
	launcher.ExecPath = chrome
	defer launcher.Close()

	coreApp := app.NewApp(st, &app.NoOpEmitter{}, launcher, zap.NewNop())

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()
	coreApp.Startup(ctx)

	t.Run("scroll with a limit", func(t *testing.T) {
		info, err := coreApp.Harvest(ctx, types.HarvestRequest{URL: srv.URL + "/streaks", Limit: 7, Workers: 2})
		require.NoError(t, err)
		assert.Equal(t, store.RunStateFinished, info.State)
		assert.True(t, info.LimitReached)
		assert.Equal(t, 7, info.RecordCount)

		result, err := coreApp.GetRunResult(info.ID, "")
		require.NoError(t, err)
		require.Len(t, result.Records, 7)
		for i, rec := range result.Records {
			assert.Equal(t, i, rec.Position)
			assert.True(t, rec.Resolved, rec.Name)
			assert.NotEmpty(t, rec.LinkedIn, rec.Name)
		}
	})

	t.Run("pagination", func(t *testing.T) {
		info, err := coreApp.Harvest(ctx, types.HarvestRequest{URL: srv.URL + "/leaderboard", Strategy: "paginate"})
		require.NoError(t, err)
		assert.Equal(t, store.RunStateFinished, info.State)
		assert.Equal(t, 15, info.RecordCount)
		assert.Equal(t, 0, info.DiagnosticCount)
	})

	t.Run("robots disallowed target aborts", func(t *testing.T) {
		respect := true
		info, err := coreApp.Harvest(ctx, types.HarvestRequest{URL: srv.URL + "/private/streaks", RespectRobots: &respect})
		require.Error(t, err)
		assert.ErrorIs(t, err, streaksnake.ErrRobotsDisallowed)
		assert.Equal(t, store.RunStateAborted, info.State)
	})
}
