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

package storage

import "sync"

// Storage tracks which entry identities a harvest has already admitted.
// The default Storage of a Harvester is the InMemoryStorage.
// A Harvester's storage can be changed by calling Harvester.SetStorage().
type Storage interface {
	// Init initializes the storage
	Init() error
	// AdmitIfNotAdmitted atomically checks whether id was admitted before and,
	// if not, admits it. Returns true if id was already admitted.
	AdmitIfNotAdmitted(id uint64) (bool, error)
	// IsAdmitted returns true if id was admitted before IsAdmitted is called
	IsAdmitted(id uint64) (bool, error)
	// Count returns the number of admitted ids
	Count() (int, error)
	// Close releases the storage
	Close() error
}

// InMemoryStorage keeps admitted ids in memory for the lifetime of one run.
type InMemoryStorage struct {
	admitted map[uint64]struct{}
	lock     *sync.RWMutex
}

// Init initializes InMemoryStorage
func (s *InMemoryStorage) Init() error {
	if s.admitted == nil {
		s.admitted = make(map[uint64]struct{})
	}
	if s.lock == nil {
		s.lock = &sync.RWMutex{}
	}
	return nil
}

// AdmitIfNotAdmitted implements Storage.AdmitIfNotAdmitted()
func (s *InMemoryStorage) AdmitIfNotAdmitted(id uint64) (bool, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if _, ok := s.admitted[id]; ok {
		return true, nil
	}
	s.admitted[id] = struct{}{}
	return false, nil
}

// IsAdmitted implements Storage.IsAdmitted()
func (s *InMemoryStorage) IsAdmitted(id uint64) (bool, error) {
	s.lock.RLock()
	_, ok := s.admitted[id]
	s.lock.RUnlock()
	return ok, nil
}

// Count implements Storage.Count()
func (s *InMemoryStorage) Count() (int, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return len(s.admitted), nil
}

// Close implements Storage.Close()
func (s *InMemoryStorage) Close() error {
	return nil
}
