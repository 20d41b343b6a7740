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
	"testing"

	"github.com/agentberlin/streaksnake/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestExtractStreakDays(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"5 day streak", 5},
		{"no info", 0},
		{"123 DAY STREAK", 123},
		{"🔥 42day streak", 42},
		{"visited 7 days, 3 day streak", 3},
		{"", 0},
		{"99999999999999999999999 day streak", 0},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractStreakDays(tt.text))
		})
	}
}

func loadRows(t *testing.T, html string) (*MockSession, []Handle) {
	t.Helper()
	mb := NewMockBrowser()
	mb.RegisterHTML(testSite+"/visit-streaks", html)
	sess, err := mb.NewSession(context.Background())
	require.NoError(t, err)
	require.NoError(t, sess.Navigate(context.Background(), testSite+"/visit-streaks"))
	rows, err := sess.FindAll(context.Background(), NewDefaultConfig().Selectors.Row)
	require.NoError(t, err)
	return sess.(*MockSession), rows
}

func TestEntryExtractor(t *testing.T) {
	x := &EntryExtractor{Selectors: NewDefaultConfig().Selectors, Origin: testSite}
	ctx := context.Background()

	t.Run("extracts name, absolute profile URL and streak", func(t *testing.T) {
		sess, rows := loadRows(t, testutil.LeaderboardHTML([]testutil.Row{
			{Name: "Alice", Href: "/@alice#top", Streak: 12},
			{Name: "Bob", Href: "https://www.producthunt.com/@bob", Streak: 3},
		}, ""))
		require.Len(t, rows, 2)

		alice, err := x.Extract(ctx, sess, rows[0])
		require.NoError(t, err)
		assert.Equal(t, LeaderboardEntry{Name: "Alice", ProfileURL: testSite + "/@alice", StreakDays: 12}, alice)

		bob, err := x.Extract(ctx, sess, rows[1])
		require.NoError(t, err)
		assert.Equal(t, testSite+"/@bob", bob.ProfileURL)
		assert.Equal(t, 3, bob.StreakDays)
	})

	t.Run("row without name is a parse failure", func(t *testing.T) {
		sess, rows := loadRows(t, testutil.LeaderboardHTML([]testutil.Row{{Href: "/@ghost", Broken: true}}, ""))
		require.Len(t, rows, 1)

		_, err := x.Extract(ctx, sess, rows[0])
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrParse)
		assert.Equal(t, KindParse, KindOf(err))
	})

	t.Run("row without link is a parse failure", func(t *testing.T) {
		sess, rows := loadRows(t, `<div data-sentry-component="VisitStreak"><div class="text-16 font-semibold">Carol</div></div>`)
		require.Len(t, rows, 1)

		entry, err := x.Extract(ctx, sess, rows[0])
		assert.ErrorIs(t, err, ErrParse)
		assert.Equal(t, "Carol", entry.Name)
	})

	t.Run("missing streak element falls back to row text", func(t *testing.T) {
		sess, rows := loadRows(t, `<div data-sentry-component="VisitStreak"><a href="/@dan"><div class="text-16 font-semibold">Dan</div></a><span>8 day streak</span></div>`)
		require.Len(t, rows, 1)

		entry, err := x.Extract(ctx, sess, rows[0])
		require.NoError(t, err)
		assert.Equal(t, 8, entry.StreakDays)
	})

	t.Run("missing streak text is zero", func(t *testing.T) {
		sess, rows := loadRows(t, `<div data-sentry-component="VisitStreak"><a href="/@eve"><div class="text-16 font-semibold">Eve</div></a></div>`)
		require.Len(t, rows, 1)

		entry, err := x.Extract(ctx, sess, rows[0])
		require.NoError(t, err)
		assert.Equal(t, 0, entry.StreakDays)
	})
	t.Run("unreadable row text is logged and recorded as zero", func(t *testing.T) {
		sess, rows := loadRows(t, `<div data-sentry-component="VisitStreak"><a href="/@fay"><div class="text-16 font-semibold">Fay</div></a></div>`)
		require.Len(t, rows, 1)

		core, logs := observer.New(zapcore.WarnLevel)
		lx := &EntryExtractor{Selectors: x.Selectors, Origin: testSite, Logger: zap.New(core)}
		broken := &textFailingSession{Session: sess, row: rows[0]}

		entry, err := lx.Extract(ctx, broken, rows[0])
		require.NoError(t, err)
		assert.Equal(t, "Fay", entry.Name)
		assert.Equal(t, 0, entry.StreakDays)

		warnings := logs.FilterMessage("streak unreadable, recording 0").All()
		require.Len(t, warnings, 1)
		assert.Equal(t, "Fay", warnings[0].ContextMap()["name"])
		assert.Equal(t, testSite+"/@fay", warnings[0].ContextMap()["profile"])
	})
}

// textFailingSession fails Text for one handle.
type textFailingSession struct {
	Session
	row Handle
}

func (s *textFailingSession) Text(ctx context.Context, h Handle) (string, error) {
	if h == s.row {
		return "", errors.New("node detached")
	}
	return s.Session.Text(ctx, h)
}
