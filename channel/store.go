// Copyright 2026 PolyCrypt GmbH
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

package channel

import (
	psync "polycry.pt/poly-go/sync"
)

// Store is the channel-id -> Record associative container. It is the
// sole owner of channel records; every mutation in this package goes
// through it. Access is serialized with the same mutex wrapper the
// teacher uses for its in-memory wallet, giving every operation the
// "serial per record" execution model the settlement protocol assumes.
type Store struct {
	mu       psync.Mutex
	channels map[ID]Record
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{channels: make(map[ID]Record)}
}

// Contains reports whether id is present in the store.
func (s *Store) Contains(id ID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.channels[id]
	return ok
}

// Get returns a copy of the record for id, or false if absent. It is
// returned by value so a caller can never mutate the stored record
// through an alias.
func (s *Store) Get(id ID) (Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.channels[id]
	if !ok {
		return Record{}, false
	}
	return r.clone(), true
}

// Insert adds a new record, failing with ErrIDCollision if id is
// already present.
func (s *Store) Insert(r Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.channels[r.ID]; ok {
		return ErrIDCollision
	}
	s.channels[r.ID] = r.clone()
	return nil
}

// put overwrites the record for id, inserting it if absent. It is
// unexported: used only by the settlement protocol's transaction
// machinery (commit and rollback), never by outside callers, who must
// go through Open/Join/Close/Challenge/Redeem to mutate state.
func (s *Store) put(r Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.channels[r.ID] = r.clone()
}

// All returns a copy of every record ever created, CLOSED ones
// included, for historical query by off-chain observers.
func (s *Store) All() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Record, 0, len(s.channels))
	for _, r := range s.channels {
		out = append(out, r.clone())
	}
	return out
}
