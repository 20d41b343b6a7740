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

package streaksnake

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/agentberlin/streaksnake/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testListing = testSite + "/visit-streaks"

// newFixtureBrowser serves rows as an infinite-scroll listing growing by
// batch rows per scroll, with a profile page per row.
func newFixtureBrowser(rows []testutil.Row, batch int) *MockBrowser {
	mb := NewMockBrowser()
	mb.RegisterPage(testListing, &MockPage{Stages: testutil.ScrollStages(rows, batch)})
	for i, r := range rows {
		mb.RegisterHTML(testSite+r.Href, testutil.ProfileHTML(r.Name, testutil.ProfileLinks(i+1)))
	}
	return mb
}

func testConfig() *Config {
	cfg := NewDefaultConfig()
	cfg.Clock = NewFakeClock(time.Unix(0, 0))
	return cfg
}

func names(records []HarvestRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Name
	}
	return out
}

func TestHarvesterRun(t *testing.T) {
	ctx := context.Background()

	t.Run("harvests every row across scroll batches", func(t *testing.T) {
		rows := testutil.Rows(20)
		mb := newFixtureBrowser(rows, 5)
		h := NewHarvester(mb, testConfig())

		result, err := h.Run(ctx, testListing, 0)
		require.NoError(t, err)

		assert.Equal(t, StateFinished, result.State)
		assert.False(t, result.LimitReached)
		assert.Empty(t, result.Diagnostics)
		require.Len(t, result.Records, 20)
		for i, rec := range result.Records {
			assert.Equal(t, rows[i].Name, rec.Name)
			assert.Equal(t, testSite+rows[i].Href, rec.ProfileURL)
			assert.Equal(t, rows[i].Streak, rec.StreakDays)
			assert.True(t, rec.Resolved)
		}

		first := result.Records[0].Links
		assert.Equal(t, "https://twitter.com/user1", first.Twitter)
		assert.Equal(t, "https://www.linkedin.com/in/user1", first.LinkedIn)
		assert.Equal(t, "", first.Facebook)
		assert.Equal(t, "https://user1.example.org/", first.Website)
		assert.Empty(t, first.OtherLinks)

		assert.Equal(t, 1, mb.Launches())
		assert.Equal(t, 1, mb.Closes())
	})

	t.Run("limit keeps the first entries in discovery order", func(t *testing.T) {
		mb := newFixtureBrowser(testutil.Rows(20), 20)
		h := NewHarvester(mb, testConfig())

		result, err := h.Run(ctx, testListing, 5)
		require.NoError(t, err)

		assert.True(t, result.LimitReached)
		assert.Equal(t, []string{"User 1", "User 2", "User 3", "User 4", "User 5"}, names(result.Records))

		// Only the five admitted profiles are visited.
		sess := mb.Sessions()[0]
		assert.Len(t, sess.Visited(), 6)
	})

	t.Run("one unparsable row yields nine records and one diagnostic", func(t *testing.T) {
		rows := testutil.Rows(10)
		rows[3].Broken = true
		mb := newFixtureBrowser(rows, 10)

		var diags []Diagnostic
		h := NewHarvester(mb, testConfig())
		h.SetOnDiagnostic(func(d Diagnostic) { diags = append(diags, d) })

		result, err := h.Run(ctx, testListing, 0)
		require.NoError(t, err)

		assert.Len(t, result.Records, 9)
		require.Len(t, result.Diagnostics, 1)
		assert.Equal(t, KindParse, result.Diagnostics[0].Kind)
		assert.Equal(t, result.Diagnostics, diags)
		assert.NotContains(t, names(result.Records), "User 4")
	})

	t.Run("a broken row in a growing listing is reported once", func(t *testing.T) {
		rows := testutil.Rows(10)
		rows[1].Broken = true
		mb := newFixtureBrowser(rows, 3)

		result, err := NewHarvester(mb, testConfig()).Run(ctx, testListing, 0)
		require.NoError(t, err)
		assert.Len(t, result.Records, 9)
		assert.Len(t, result.Diagnostics, 1)
	})

	t.Run("a windowed listing keeps rows that shift position", func(t *testing.T) {
		rows := testutil.Rows(8)
		mb := newFixtureBrowser(rows, 8)
		mb.RegisterPage(testListing, &MockPage{Stages: []string{
			testutil.LeaderboardHTML(rows[0:5], ""),
			testutil.LeaderboardHTML(rows[3:8], ""),
		}, Extents: []int{1000, 2000}})

		result, err := NewHarvester(mb, testConfig()).Run(ctx, testListing, 0)
		require.NoError(t, err)
		assert.Equal(t, []string{
			"User 1", "User 2", "User 3", "User 4",
			"User 5", "User 6", "User 7", "User 8",
		}, names(result.Records))
		assert.Empty(t, result.Diagnostics)
	})

	t.Run("a broken row in a windowed listing is reported once", func(t *testing.T) {
		rows := testutil.Rows(8)
		rows[4].Broken = true
		mb := newFixtureBrowser(rows, 8)
		mb.RegisterPage(testListing, &MockPage{Stages: []string{
			testutil.LeaderboardHTML(rows[0:5], ""),
			testutil.LeaderboardHTML(rows[2:7], ""),
			testutil.LeaderboardHTML(rows[3:8], ""),
		}, Extents: []int{1000, 2000, 3000}})

		result, err := NewHarvester(mb, testConfig()).Run(ctx, testListing, 0)
		require.NoError(t, err)
		assert.Len(t, result.Records, 7)
		require.Len(t, result.Diagnostics, 1)
		assert.Equal(t, KindParse, result.Diagnostics[0].Kind)
	})

	t.Run("duplicate profiles are admitted once", func(t *testing.T) {
		rows := testutil.Rows(3)
		rows = append(rows,
			testutil.Row{Name: "User 1 again", Href: "/@user1#streak", Streak: 1},
			testutil.Row{Name: "User 2 again", Href: testSite + "/@user2", Streak: 2},
		)
		mb := newFixtureBrowser(rows[:3], 3)
		mb.RegisterPage(testListing, &MockPage{Stages: testutil.ScrollStages(rows, 2)})

		result, err := NewHarvester(mb, testConfig()).Run(ctx, testListing, 0)
		require.NoError(t, err)
		assert.Equal(t, []string{"User 1", "User 2", "User 3"}, names(result.Records))
		assert.Empty(t, result.Diagnostics)
	})

	t.Run("unresolved profiles are kept with empty links", func(t *testing.T) {
		rows := testutil.Rows(4)
		mb := newFixtureBrowser(rows, 4)
		mb.RegisterError(testSite+"/@user2", errors.New("connection reset"))
		mb.RegisterHTML(testSite+"/@user3", "<html><body><p>no links here</p></body></html>")

		result, err := NewHarvester(mb, testConfig()).Run(ctx, testListing, 0)
		require.NoError(t, err)

		require.Len(t, result.Records, 4)
		assert.True(t, result.Records[0].Resolved)
		assert.False(t, result.Records[1].Resolved)
		assert.True(t, result.Records[1].Links.IsEmpty())
		assert.NotNil(t, result.Records[1].Links.OtherLinks)
		assert.False(t, result.Records[2].Resolved)
		assert.True(t, result.Records[3].Resolved)

		require.Len(t, result.Diagnostics, 2)
		assert.Equal(t, KindResolution, result.Diagnostics[0].Kind)
		assert.Equal(t, testSite+"/@user2", result.Diagnostics[0].URL)
		assert.Equal(t, KindResolution, result.Diagnostics[1].Kind)
		assert.Equal(t, testSite+"/@user3", result.Diagnostics[1].URL)
	})

	t.Run("unresolved profiles can be dropped", func(t *testing.T) {
		rows := testutil.Rows(4)
		mb := newFixtureBrowser(rows, 4)
		mb.RegisterError(testSite+"/@user2", errors.New("connection reset"))

		cfg := testConfig()
		cfg.DropUnresolved = true
		result, err := NewHarvester(mb, cfg).Run(ctx, testListing, 0)
		require.NoError(t, err)

		assert.Equal(t, []string{"User 1", "User 3", "User 4"}, names(result.Records))
		assert.Len(t, result.Diagnostics, 1)
	})

	t.Run("pagination strategy walks every page", func(t *testing.T) {
		rows := testutil.Rows(12)
		mb := newFixtureBrowser(rows, 12)
		mb.RegisterPage(testListing, &MockPage{Stages: []string{
			testutil.LeaderboardHTML(rows[:5], "/visit-streaks?page=2"),
			testutil.LeaderboardHTML(rows[5:10], "/visit-streaks?page=3"),
			testutil.LeaderboardHTML(rows[10:], ""),
		}})

		cfg := testConfig()
		cfg.Strategy = StrategyPaginate
		result, err := NewHarvester(mb, cfg).Run(ctx, testListing, 0)
		require.NoError(t, err)
		assert.Len(t, result.Records, 12)
		assert.Equal(t, "User 12", result.Records[11].Name)
	})

	t.Run("reports progress for every entry", func(t *testing.T) {
		mb := newFixtureBrowser(testutil.Rows(3), 3)
		h := NewHarvester(mb, testConfig())

		var progress []Progress
		var positions []int
		h.SetOnProgress(func(p Progress) { progress = append(progress, p) })
		h.SetOnRecord(func(pos int, _ HarvestRecord) { positions = append(positions, pos) })

		_, err := h.Run(ctx, testListing, 0)
		require.NoError(t, err)
		assert.Equal(t, []Progress{
			{Processed: 1, Total: 3, Current: "User 1"},
			{Processed: 2, Total: 3, Current: "User 2"},
			{Processed: 3, Total: 3, Current: "User 3"},
		}, progress)
		assert.Equal(t, []int{0, 1, 2}, positions)
	})

	t.Run("state machine ends in finished", func(t *testing.T) {
		mb := newFixtureBrowser(testutil.Rows(2), 2)
		h := NewHarvester(mb, testConfig())

		var states []State
		h.SetOnStateChange(func(s State) { states = append(states, s) })

		_, err := h.Run(ctx, testListing, 0)
		require.NoError(t, err)

		require.GreaterOrEqual(t, len(states), 6)
		assert.Equal(t, []State{StateIdle, StateSessionActive, StateExtracting, StateRevealing}, states[:4])
		assert.Equal(t, StateResolving, states[len(states)-2])
		assert.Equal(t, StateFinished, states[len(states)-1])
		assert.Equal(t, StateFinished, h.State())
	})
}

func TestHarvesterSetupFailures(t *testing.T) {
	ctx := context.Background()

	t.Run("session launch failure aborts with empty result", func(t *testing.T) {
		mb := newFixtureBrowser(testutil.Rows(3), 3)
		mb.SetLaunchError(errors.New("chrome not found"))

		result, err := NewHarvester(mb, testConfig()).Run(ctx, testListing, 0)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrSetup)
		assert.True(t, KindOf(err).Fatal())
		assert.Equal(t, StateAborted, result.State)
		assert.Empty(t, result.Records)
		assert.Equal(t, 0, mb.Closes())
	})

	t.Run("listing navigation timeout aborts and releases the session once", func(t *testing.T) {
		mb := NewMockBrowser()
		mb.RegisterError(testListing, fmt.Errorf("%w: slow page", ErrWaitTimeout))

		result, err := NewHarvester(mb, testConfig()).Run(ctx, testListing, 0)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrNavigationTimeout)
		assert.Equal(t, StateAborted, result.State)
		assert.Empty(t, result.Records)
		assert.Equal(t, 1, mb.Launches())
		assert.Equal(t, 1, mb.Closes())
	})

	t.Run("listing without rows aborts", func(t *testing.T) {
		mb := NewMockBrowser()
		mb.RegisterHTML(testListing, "<html><body><p>Loading…</p></body></html>")

		result, err := NewHarvester(mb, testConfig()).Run(ctx, testListing, 0)
		assert.ErrorIs(t, err, ErrNavigationTimeout)
		assert.ErrorIs(t, err, ErrWaitTimeout)
		assert.Equal(t, StateAborted, result.State)
		assert.Equal(t, 1, mb.Closes())
	})

	t.Run("unreachable listing is a setup failure", func(t *testing.T) {
		mb := NewMockBrowser()

		result, err := NewHarvester(mb, testConfig()).Run(ctx, testListing, 0)
		assert.ErrorIs(t, err, ErrSetup)
		assert.Equal(t, StateAborted, result.State)
		assert.Equal(t, 1, mb.Closes())
	})

	t.Run("invalid target aborts before launching", func(t *testing.T) {
		mb := NewMockBrowser()

		result, err := NewHarvester(mb, testConfig()).Run(ctx, "not a url", 0)
		assert.ErrorIs(t, err, ErrSetup)
		assert.Equal(t, StateAborted, result.State)
		assert.Equal(t, 0, mb.Launches())
	})
}

func TestHarvesterCancellation(t *testing.T) {
	mb := newFixtureBrowser(testutil.Rows(5), 5)
	h := NewHarvester(mb, testConfig())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h.SetOnProgress(func(p Progress) {
		if p.Processed == 2 {
			cancel()
		}
	})

	result, err := h.Run(ctx, testListing, 0)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StateCancelled, result.State)
	assert.Equal(t, []string{"User 1", "User 2"}, names(result.Records))
	assert.Equal(t, 1, mb.Closes())
}

func TestHarvesterWorkers(t *testing.T) {
	ctx := context.Background()

	t.Run("records keep discovery order across sessions", func(t *testing.T) {
		rows := testutil.Rows(10)
		mb := newFixtureBrowser(rows, 10)
		cfg := testConfig()
		cfg.Workers = 3

		var mu sync.Mutex
		calls := 0
		h := NewHarvester(mb, cfg)
		h.SetOnProgress(func(Progress) {
			mu.Lock()
			calls++
			mu.Unlock()
		})

		result, err := h.Run(ctx, testListing, 0)
		require.NoError(t, err)

		require.Len(t, result.Records, 10)
		for i, rec := range result.Records {
			assert.Equal(t, rows[i].Name, rec.Name)
			assert.Equal(t, fmt.Sprintf("https://twitter.com/user%d", i+1), rec.Links.Twitter)
		}
		assert.Equal(t, 10, calls)
		assert.Equal(t, 3, mb.Launches())
		assert.Equal(t, 3, mb.Closes())
		for _, s := range mb.Sessions() {
			assert.Equal(t, 1, s.CloseCount())
		}
	})

	t.Run("records stream in order while workers run", func(t *testing.T) {
		rows := testutil.Rows(8)
		mb := newFixtureBrowser(rows, 8)
		cfg := testConfig()
		cfg.Workers = 3

		var mu sync.Mutex
		var positions []int
		var recordedAtEnd int
		h := NewHarvester(mb, cfg)
		h.SetOnRecord(func(position int, _ HarvestRecord) {
			mu.Lock()
			positions = append(positions, position)
			mu.Unlock()
		})
		h.SetOnProgress(func(p Progress) {
			if p.Processed == p.Total {
				mu.Lock()
				recordedAtEnd = len(positions)
				mu.Unlock()
			}
		})

		result, err := h.Run(ctx, testListing, 0)
		require.NoError(t, err)
		require.Len(t, result.Records, 8)
		assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7}, positions)
		assert.Equal(t, 8, recordedAtEnd)
	})

	t.Run("cancellation stops resolution and releases every session", func(t *testing.T) {
		rows := testutil.Rows(8)
		mb := newFixtureBrowser(rows, 8)
		cfg := testConfig()
		cfg.Workers = 2

		cctx, cancel := context.WithCancel(ctx)
		defer cancel()
		h := NewHarvester(mb, cfg)
		h.SetOnProgress(func(p Progress) {
			if p.Processed == 2 {
				cancel()
			}
		})

		result, err := h.Run(cctx, testListing, 0)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, StateCancelled, result.State)
		assert.LessOrEqual(t, len(result.Records), 2)
		for i, rec := range result.Records {
			assert.Equal(t, rows[i].Name, rec.Name)
		}
		assert.Equal(t, 2, mb.Launches())
		assert.Equal(t, mb.Launches(), mb.Closes())
		for _, s := range mb.Sessions() {
			assert.Equal(t, 1, s.CloseCount())
		}
	})

	t.Run("falls back to the primary session when extras cannot launch", func(t *testing.T) {
		mb := newFixtureBrowser(testutil.Rows(4), 4)
		mb.LimitSessions(1)
		cfg := testConfig()
		cfg.Workers = 4

		result, err := NewHarvester(mb, cfg).Run(ctx, testListing, 0)
		require.NoError(t, err)
		assert.Len(t, result.Records, 4)
		assert.Equal(t, 1, mb.Launches())
		assert.Equal(t, 1, mb.Closes())
	})
}
