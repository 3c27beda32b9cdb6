/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package store

import (
	"errors"
	"sync"
	"testing"

	"cardcanvas/internal/domain"
)

func sample() []domain.Component {
	return []domain.Component{
		{ID: "a", Type: domain.TypeText, Content: "Hello"},
		{ID: "b", Type: domain.TypeText, Content: "World"},
	}
}

func TestLoadRejectsDuplicatesAndKeepsState(t *testing.T) {
	s := New()
	if err := s.Load(sample()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	bad := append(sample(), domain.Component{ID: "a"})
	if err := s.Load(bad); !errors.Is(err, ErrDuplicateID) {
		t.Fatalf("expected ErrDuplicateID, got %v", err)
	}
	if s.Len() != 2 {
		t.Fatalf("failed load must not change the store")
	}
	if err := s.Load([]domain.Component{{Content: "x"}}); !errors.Is(err, ErrEmptyID) {
		t.Fatalf("expected ErrEmptyID, got %v", err)
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	s := New()
	_ = s.Load(sample())
	snap := s.Snapshot()
	snap[0].Content = "mutated"
	got, _ := s.Get("a")
	if got.Content != "Hello" {
		t.Fatalf("snapshot aliased store memory")
	}
}

func TestUpdateNotifiesWithFullList(t *testing.T) {
	s := New()
	_ = s.Load(sample())
	var calls [][]domain.Component
	cancel := s.Subscribe(func(cs []domain.Component) { calls = append(calls, cs) })
	v := s.Version()
	next, err := s.Update("b", func(c domain.Component) domain.Component {
		c.ID = "hijack"
		return c.WithContent("Earth")
	})
	if err != nil || next.ID != "b" || next.Content != "Earth" {
		t.Fatalf("Update = %+v, %v", next, err)
	}
	if s.Version() != v+1 {
		t.Fatalf("version not bumped")
	}
	if len(calls) != 1 || len(calls[0]) != 2 || calls[0][1].Content != "Earth" {
		t.Fatalf("listener got %+v", calls)
	}
	// unchanged record is not a write
	_, _ = s.Update("b", func(c domain.Component) domain.Component { return c })
	if len(calls) != 1 {
		t.Fatalf("no-op update must not notify")
	}
	cancel()
	_ = s.Replace(domain.Component{ID: "a", Content: "Hi"})
	if len(calls) != 1 {
		t.Fatalf("cancelled listener still called")
	}
}

func TestUnknownIDIsNotFound(t *testing.T) {
	s := New()
	if _, err := s.Get("zzz"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get: %v", err)
	}
	if err := s.Replace(domain.Component{ID: "zzz"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Replace: %v", err)
	}
}

func TestListenerMayReadStore(t *testing.T) {
	s := New()
	_ = s.Load(sample())
	done := make(chan int, 1)
	s.Subscribe(func([]domain.Component) { done <- s.Len() })
	_ = s.Replace(domain.Component{ID: "a", Content: "again"})
	if n := <-done; n != 2 {
		t.Fatalf("listener read %d items", n)
	}
}

func TestConcurrentUpdates(t *testing.T) {
	s := New()
	_ = s.Load(sample())
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.Update("a", func(c domain.Component) domain.Component { return c.WithContent(c.Content + ".") })
		}()
	}
	wg.Wait()
	got, _ := s.Get("a")
	if len(got.Content) != len("Hello")+50 {
		t.Fatalf("lost updates: %q", got.Content)
	}
}
