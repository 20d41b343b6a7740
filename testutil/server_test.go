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

package testutil

import (
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func get(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestTestServer(t *testing.T) {
	srv := NewTestServer(25, 10)
	defer srv.Close()

	t.Run("pagination links until the last page", func(t *testing.T) {
		_, first := get(t, srv.URL+"/leaderboard?page=1")
		assert.Equal(t, 10, strings.Count(first, `data-sentry-component="VisitStreak"`))
		assert.Contains(t, first, `/leaderboard?page=2`)

		_, last := get(t, srv.URL+"/leaderboard?page=3")
		assert.Equal(t, 5, strings.Count(last, `data-sentry-component="VisitStreak"`))
		assert.NotContains(t, last, `rel="next"`)
	})

	t.Run("scroll batches", func(t *testing.T) {
		_, rows := get(t, srv.URL+"/streaks/rows?offset=20")
		assert.Equal(t, 5, strings.Count(rows, `data-sentry-component="VisitStreak"`))
		_, empty := get(t, srv.URL+"/streaks/rows?offset=30")
		assert.Empty(t, empty)
	})

	t.Run("profiles", func(t *testing.T) {
		code, body := get(t, srv.URL+"/@user3")
		assert.Equal(t, http.StatusOK, code)
		assert.Contains(t, body, "User 3")
		assert.Contains(t, body, "styles_links")

		code, _ = get(t, srv.URL+"/@user26")
		assert.Equal(t, http.StatusNotFound, code)
	})
}

func TestScrollStages(t *testing.T) {
	stages := ScrollStages(Rows(7), 3)
	require.Len(t, stages, 3)
	assert.Equal(t, 3, strings.Count(stages[0], `data-sentry-component="VisitStreak"`))
	assert.Equal(t, 7, strings.Count(stages[2], `data-sentry-component="VisitStreak"`))
}
