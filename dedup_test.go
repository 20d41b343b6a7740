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
	"testing"

	"github.com/agentberlin/streaksnake/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentityDeduplicator(t *testing.T) {
	t.Run("admission is idempotent", func(t *testing.T) {
		d, err := NewIdentityDeduplicator(nil)
		require.NoError(t, err)

		e := LeaderboardEntry{Name: "Alice", ProfileURL: testSite + "/@alice", StreakDays: 4}
		ok, err := d.Admit(e)
		require.NoError(t, err)
		assert.True(t, ok)

		for i := 0; i < 3; i++ {
			ok, err = d.Admit(e)
			require.NoError(t, err)
			assert.False(t, ok)
		}
	})

	t.Run("identity is the profile URL only", func(t *testing.T) {
		d, err := NewIdentityDeduplicator(nil)
		require.NoError(t, err)

		ok, _ := d.Admit(LeaderboardEntry{Name: "Alice", ProfileURL: testSite + "/@alice", StreakDays: 4})
		assert.True(t, ok)
		ok, _ = d.Admit(LeaderboardEntry{Name: "Alice Renamed", ProfileURL: testSite + "/@alice", StreakDays: 9})
		assert.False(t, ok)
		ok, _ = d.Admit(LeaderboardEntry{Name: "Alice", ProfileURL: testSite + "/@alice2"})
		assert.True(t, ok)
	})

	t.Run("uses the given storage", func(t *testing.T) {
		s := &storage.InMemoryStorage{}
		d, err := NewIdentityDeduplicator(s)
		require.NoError(t, err)

		_, err = d.Admit(LeaderboardEntry{ProfileURL: testSite + "/@a"})
		require.NoError(t, err)
		_, err = d.Admit(LeaderboardEntry{ProfileURL: testSite + "/@b"})
		require.NoError(t, err)

		n, err := s.Count()
		require.NoError(t, err)
		assert.Equal(t, 2, n)
	})
}
