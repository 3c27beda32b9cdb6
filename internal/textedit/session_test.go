/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package textedit

import (
	"errors"
	"testing"
	"time"

	"cardcanvas/internal/domain"
	"cardcanvas/internal/store"
)

type fakeViewport struct{ locks, unlocks int }

func (v *fakeViewport) Lock()   { v.locks++ }
func (v *fakeViewport) Unlock() { v.unlocks++ }

func newStore(t *testing.T) *store.Store {
	t.Helper()
	st := store.New()
	err := st.Load([]domain.Component{{
		ID: "greeting", Type: domain.TypeText, Content: "Happy\nBirthday",
		Style: domain.Style{FontSize: 24, Color: "#111111"},
	}})
	if err != nil {
		t.Fatal(err)
	}
	return st
}

func TestSaveWritesContentAndReleases(t *testing.T) {
	st := newStore(t)
	vp := &fakeViewport{}
	clock := NewManualScheduler()
	s, err := Open(st, "greeting", Options{Scheduler: clock, Viewport: vp})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if s.Buffer() != "Happy<br>Birthday" {
		t.Fatalf("buffer = %q", s.Buffer())
	}
	_ = s.SetBuffer("<div>Merry</div><div>Christmas</div>")
	if c, _ := st.Get("greeting"); c.Content != "Happy\nBirthday" {
		t.Fatalf("content must not change before save")
	}
	if err := s.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}
	c, _ := st.Get("greeting")
	if c.Content != "Merry\nChristmas" {
		t.Fatalf("saved content = %q", c.Content)
	}
	if vp.locks != 1 || vp.unlocks != 1 || s.Alive() {
		t.Fatalf("viewport locks=%d unlocks=%d alive=%v", vp.locks, vp.unlocks, s.Alive())
	}
	if err := s.SetBuffer("x"); !errors.Is(err, ErrClosed) {
		t.Fatalf("closed session accepted a buffer: %v", err)
	}
	s.Close()
	if vp.unlocks != 1 {
		t.Fatalf("viewport unlocked twice")
	}
}

func TestResetRestoresContentAndColor(t *testing.T) {
	st := newStore(t)
	s, err := Open(st, "greeting", Options{Scheduler: NewManualScheduler()})
	if err != nil {
		t.Fatal(err)
	}
	_ = s.SetBuffer("Changed")
	// style edits are live while editing
	_, _ = st.Update("greeting", func(c domain.Component) domain.Component {
		c.Style.Color = "#ff0000"
		return c
	})
	if err := s.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	c, _ := st.Get("greeting")
	if s.Text() != "Happy\nBirthday" || c.Style.Color != "#111111" || c.Content != "Happy\nBirthday" {
		t.Fatalf("reset left text=%q color=%q", s.Text(), c.Style.Color)
	}
	if !s.Alive() {
		t.Fatalf("reset must keep the session open")
	}
	_ = s.SetBuffer("again")
	if err := s.Cancel(); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if c, _ := st.Get("greeting"); c.Content != "Happy\nBirthday" || s.Alive() {
		t.Fatalf("cancel must discard text and close")
	}
}

func TestOpenUnknownElement(t *testing.T) {
	if _, err := Open(newStore(t), "nope", Options{}); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeferredFocusSkippedAfterClose(t *testing.T) {
	st := newStore(t)
	clock := NewManualScheduler()
	var focused []string
	s, _ := Open(st, "greeting", Options{
		Scheduler:  clock,
		Focus:      func(id string) { focused = append(focused, id) },
		FocusDelay: 50 * time.Millisecond,
	})
	s.Close()
	clock.Advance(time.Second)
	if len(focused) != 0 {
		t.Fatalf("focus ran after teardown")
	}

	s, _ = Open(st, "greeting", Options{
		Scheduler:  clock,
		Focus:      func(id string) { focused = append(focused, id) },
		FocusDelay: 50 * time.Millisecond,
	})
	clock.Advance(49 * time.Millisecond)
	if len(focused) != 0 {
		t.Fatalf("focus ran early")
	}
	clock.Advance(time.Millisecond)
	if len(focused) != 1 || focused[0] != "greeting" {
		t.Fatalf("focused = %v", focused)
	}
	s.Close()
}

func TestKeyboardPollerStopsOnSettleAndClose(t *testing.T) {
	st := newStore(t)
	clock := NewManualScheduler()
	probes := 0
	s, _ := Open(st, "greeting", Options{
		Scheduler:       clock,
		Keyboard:        func() bool { probes++; return probes == 3 },
		KeyboardPoll:    100 * time.Millisecond,
		KeyboardTimeout: time.Second,
	})
	clock.Advance(time.Second)
	if probes != 3 || s.poller.Running() {
		t.Fatalf("probes=%d running=%v", probes, s.poller.Running())
	}
	s.Close()
	if clock.Pending() != 0 {
		t.Fatalf("timers left after close: %d", clock.Pending())
	}
}
