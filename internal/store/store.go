/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package store holds the authoritative, ordered list of canvas components.
// Components are values: every write replaces a whole record, and readers
// only ever see copies.
package store

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"cardcanvas/internal/domain"
	applog "cardcanvas/internal/log"
)

var (
	ErrNotFound    = errors.New("component not found")
	ErrDuplicateID = errors.New("duplicate component id")
	ErrEmptyID     = errors.New("component id is empty")
)

// Listener receives the full component list after each change.
type Listener func([]domain.Component)

type Store struct {
	mu      sync.RWMutex
	items   []domain.Component
	index   map[string]int
	version uint64

	subMu  sync.Mutex
	subs   map[int]Listener
	nextID int

	log *slog.Logger
}

func New() *Store {
	return &Store{
		index: map[string]int{},
		subs:  map[int]Listener{},
		log:   applog.WithComponent("store"),
	}
}

// Load replaces the whole list. Order is kept as given and defines paint
// order. Ids must be non-empty and unique; on error the store is unchanged.
func (s *Store) Load(cs []domain.Component) error {
	index := make(map[string]int, len(cs))
	for i, c := range cs {
		if c.ID == "" {
			return fmt.Errorf("load component %d: %w", i, ErrEmptyID)
		}
		if _, dup := index[c.ID]; dup {
			s.log.Error("load rejected", "id", c.ID, "err", ErrDuplicateID)
			return fmt.Errorf("load %q: %w", c.ID, ErrDuplicateID)
		}
		index[c.ID] = i
	}
	s.mu.Lock()
	s.items = slices.Clone(cs)
	s.index = index
	s.version++
	snap := slices.Clone(s.items)
	s.mu.Unlock()
	s.log.Debug("loaded", "count", len(cs))
	s.notify(snap)
	return nil
}

// Snapshot returns a copy of the current list.
func (s *Store) Snapshot() []domain.Component {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.items)
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Version increases with every successful write.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

func (s *Store) Get(id string) (domain.Component, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.index[id]
	if !ok {
		return domain.Component{}, fmt.Errorf("get %q: %w", id, ErrNotFound)
	}
	return s.items[i], nil
}

// Replace swaps in a whole record with the same id.
func (s *Store) Replace(c domain.Component) error {
	_, err := s.Update(c.ID, func(domain.Component) domain.Component { return c })
	return err
}

// Update applies fn to the current record and stores the result. fn runs under
// the write lock and must not call back into the store. The id is preserved.
func (s *Store) Update(id string, fn func(domain.Component) domain.Component) (domain.Component, error) {
	s.mu.Lock()
	i, ok := s.index[id]
	if !ok {
		s.mu.Unlock()
		s.log.Warn("update of unknown component", "id", id)
		return domain.Component{}, fmt.Errorf("update %q: %w", id, ErrNotFound)
	}
	next := fn(s.items[i])
	next.ID = id
	if next == s.items[i] {
		s.mu.Unlock()
		return next, nil
	}
	s.items[i] = next
	s.version++
	snap := slices.Clone(s.items)
	s.mu.Unlock()
	s.notify(snap)
	return next, nil
}

// Subscribe registers l and returns a function that removes it.
func (s *Store) Subscribe(l Listener) (cancel func()) {
	s.subMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = l
	s.subMu.Unlock()
	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

func (s *Store) notify(snap []domain.Component) {
	s.subMu.Lock()
	ls := make([]Listener, 0, len(s.subs))
	for id := 0; id < s.nextID; id++ {
		if l, ok := s.subs[id]; ok {
			ls = append(ls, l)
		}
	}
	s.subMu.Unlock()
	for _, l := range ls {
		l(slices.Clone(snap))
	}
}
