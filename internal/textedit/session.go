/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package textedit runs the lifecycle of editing one component's text: a
// snapshot for reset, a markup buffer the host's editable surface writes to,
// and the transient resources (viewport lock, keyboard poller, deferred focus)
// that must be released on every exit path.
package textedit

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"cardcanvas/internal/domain"
	applog "cardcanvas/internal/log"
)

// ErrClosed is returned by operations on a finished session.
var ErrClosed = errors.New("edit session closed")

// Store is the component store the session reads from and writes through.
type Store interface {
	Get(id string) (domain.Component, error)
	Update(id string, fn func(domain.Component) domain.Component) (domain.Component, error)
}

// Options configures the resources an edit session owns.
type Options struct {
	Modal     bool
	Scheduler Scheduler
	Viewport  Viewport

	// Focus places the caret once the editable surface exists.
	Focus      func(id string)
	FocusDelay time.Duration

	// Keyboard is polled until it reports the on-screen keyboard has
	// settled. Nil disables polling.
	Keyboard        func() bool
	KeyboardPoll    time.Duration
	KeyboardTimeout time.Duration
}

// Session edits the text of one component. Content reaches the store only
// through Save; style changes made while editing are live and are undone by
// Reset or Cancel.
type Session struct {
	ID    string
	Modal bool

	store    Store
	snapshot domain.Component

	mu     sync.Mutex
	buffer string
	closed bool

	lock   *ViewportLock
	poller *Poller
	focus  *Deferred
	log    *slog.Logger
}

// Open snapshots component id and acquires the session resources.
func Open(st Store, id string, opts Options) (*Session, error) {
	c, err := st.Get(id)
	if err != nil {
		return nil, fmt.Errorf("open edit session: %w", err)
	}
	sched := opts.Scheduler
	if sched == nil {
		sched = SystemScheduler{}
	}
	s := &Session{
		ID:       id,
		Modal:    opts.Modal,
		store:    st,
		snapshot: c,
		buffer:   ToBuffer(c.Content),
		log:      applog.WithComponent("textedit").With(slog.String("element", id), slog.Bool("modal", opts.Modal)),
	}
	s.lock = AcquireViewport(opts.Viewport)
	s.focus = NewDeferred(sched, s.Alive)
	if opts.Focus != nil {
		s.focus.Run(opts.FocusDelay, func() { opts.Focus(id) })
	}
	s.poller = NewPoller(sched, opts.KeyboardPoll, opts.KeyboardTimeout)
	if opts.Keyboard != nil {
		probe := opts.Keyboard
		s.poller.Start(func() bool { return !s.Alive() || probe() }, func(timedOut bool) {
			if timedOut {
				s.log.Debug("keyboard poll timed out")
			}
		})
	}
	s.log.Debug("edit session opened")
	return s, nil
}

// Alive reports whether the session is still open.
func (s *Session) Alive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.closed
}

// Snapshot is the component as it was when the session opened.
func (s *Session) Snapshot() domain.Component { return s.snapshot }

// SetBuffer records the editable surface's current markup.
func (s *Session) SetBuffer(markup string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.buffer = markup
	return nil
}

func (s *Session) Buffer() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buffer
}

// Text is the buffer converted to plain text.
func (s *Session) Text() string { return FromBuffer(s.Buffer()) }

// Dirty reports whether the buffer differs from the snapshot content.
func (s *Session) Dirty() bool { return s.Text() != s.snapshot.Content }

// Save writes the buffer's text to the component and closes the session.
func (s *Session) Save() error {
	if !s.Alive() {
		return ErrClosed
	}
	text := s.Text()
	_, err := s.store.Update(s.ID, func(c domain.Component) domain.Component { return c.WithContent(text) })
	s.Close()
	if err != nil {
		s.log.Error("save failed", "err", err)
		return fmt.Errorf("save %q: %w", s.ID, err)
	}
	s.log.Debug("edit saved", "chars", len(text))
	return nil
}

// Reset returns the buffer to the snapshot content and writes the snapshot
// style back to the component. The session stays open.
func (s *Session) Reset() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.buffer = ToBuffer(s.snapshot.Content)
	s.mu.Unlock()
	style := s.snapshot.Style
	if _, err := s.store.Update(s.ID, func(c domain.Component) domain.Component { return c.WithStyle(style) }); err != nil {
		return fmt.Errorf("reset %q: %w", s.ID, err)
	}
	s.log.Debug("edit reset")
	return nil
}

// Cancel resets and closes the session.
func (s *Session) Cancel() error {
	err := s.Reset()
	s.Close()
	return err
}

// Close releases every resource. It is idempotent.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()
	s.focus.Cancel()
	s.poller.Stop()
	s.lock.Release()
	s.log.Debug("edit session closed")
}
