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
	"fmt"

	"github.com/agentberlin/streaksnake/storage"
	"github.com/cespare/xxhash/v2"
)

// IdentityDeduplicator admits each profile URL at most once per run.
type IdentityDeduplicator struct {
	store storage.Storage
}

// NewIdentityDeduplicator returns a deduplicator over store, or over a fresh
// InMemoryStorage when store is nil.
func NewIdentityDeduplicator(store storage.Storage) (*IdentityDeduplicator, error) {
	if store == nil {
		store = &storage.InMemoryStorage{}
	}
	if err := store.Init(); err != nil {
		return nil, fmt.Errorf("init dedup storage: %w", err)
	}
	return &IdentityDeduplicator{store: store}, nil
}

// Admit returns true the first time an entry's identity is seen.
func (d *IdentityDeduplicator) Admit(entry LeaderboardEntry) (bool, error) {
	key := entry.ProfileURL
	if norm, err := NormalizeProfileURL(key); err == nil {
		key = norm
	}
	already, err := d.store.AdmitIfNotAdmitted(xxhash.Sum64String(key))
	if err != nil {
		return false, err
	}
	return !already, nil
}
