/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package selection coordinates the mutually exclusive interaction states of
// a canvas: nothing selected, one element selected, or one element being
// edited. One Coordinator exists per canvas and its Mode is fixed at
// construction.
package selection

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	applog "cardcanvas/internal/log"
)

// Mode chooses how taps reach the text editor.
type Mode uint8

const (
	// Inline edits on the first tap, in place.
	Inline Mode = iota
	// Modal selects on the first tap and opens the full-screen editor on the second.
	Modal
)

func (m Mode) String() string {
	if m == Modal {
		return "modal"
	}
	return "inline"
}

// ParseMode reads "inline" or "modal".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "inline":
		return Inline, nil
	case "modal":
		return Modal, nil
	}
	return Inline, fmt.Errorf("unknown selection mode %q", s)
}

// Phase names the coarse state.
type Phase uint8

const (
	Idle Phase = iota
	Selected
	Editing
)

func (p Phase) String() string {
	switch p {
	case Selected:
		return "selected"
	case Editing:
		return "editing"
	}
	return "idle"
}

// State is the interaction state of a canvas.
type State struct {
	SelectedID string
	EditingID  string
	PanelOpen  bool
}

func (s State) Phase() Phase {
	switch {
	case s.EditingID != "":
		return Editing
	case s.SelectedID != "":
		return Selected
	}
	return Idle
}

// Hooks let the owner react to edit lifecycle transitions. Flush runs before
// an element leaves the editing state so a pending text buffer is saved.
type Hooks struct {
	Flush      func(id string)
	EnterEdit  func(id string, modal bool)
	ExitEdit   func(id string)
	PanelShown func(open bool)
}

// Coordinator owns the State. It is not safe for concurrent use.
type Coordinator struct {
	mode  Mode
	st    State
	hooks Hooks
	log   *slog.Logger
}

func New(mode Mode, hooks Hooks) *Coordinator {
	return &Coordinator{mode: mode, hooks: hooks, log: applog.WithComponent("selection")}
}

func (c *Coordinator) Mode() Mode   { return c.mode }
func (c *Coordinator) State() State { return c.st }

// IsEditing reports whether id is the element being edited.
func (c *Coordinator) IsEditing(id string) bool { return id != "" && c.st.EditingID == id }

// Tap handles a tap on element id.
func (c *Coordinator) Tap(id string) State {
	if id == "" {
		return c.TapBackground()
	}
	if c.st.EditingID == id {
		return c.st
	}
	c.leaveEdit()
	switch {
	case c.mode == Inline:
		c.enterEdit(id, "tap")
	case c.st.SelectedID == id:
		c.enterEdit(id, "tap")
	default:
		c.set(State{SelectedID: id, PanelOpen: c.st.PanelOpen}, "tap")
	}
	return c.st
}

// Select marks id as selected without editing, as on the start of a drag.
func (c *Coordinator) Select(id string) State {
	if id == "" || c.st.EditingID == id {
		return c.st
	}
	c.leaveEdit()
	c.set(State{SelectedID: id, PanelOpen: c.st.PanelOpen}, "select")
	return c.st
}

// TapBackground flushes any edit, clears the selection and closes the panel.
func (c *Coordinator) TapBackground() State {
	c.leaveEdit()
	c.set(State{}, "tap-background")
	return c.st
}

// DragCommitted applies the post-drag policy: inline returns to Idle, modal
// keeps the dragged element selected.
func (c *Coordinator) DragCommitted(id string) State {
	if c.IsEditing(id) {
		return c.st
	}
	c.leaveEdit()
	if c.mode == Inline {
		c.set(State{}, "drag-commit")
	} else {
		c.set(State{SelectedID: id, PanelOpen: c.st.PanelOpen}, "drag-commit")
	}
	return c.st
}

// EndEdit leaves the editing state after a save or cancel. Modal mode falls
// back to the element being selected; inline mode to Idle.
func (c *Coordinator) EndEdit() State {
	id := c.st.EditingID
	if id == "" {
		return c.st
	}
	c.exit(id)
	if c.mode == Modal {
		c.set(State{SelectedID: id, PanelOpen: c.st.PanelOpen}, "end-edit")
	} else {
		c.set(State{}, "end-edit")
	}
	return c.st
}

// OpenPanel shows the style panel for the selection. It fails when nothing
// is selected.
func (c *Coordinator) OpenPanel() bool {
	if c.st.SelectedID == "" {
		return false
	}
	if !c.st.PanelOpen {
		next := c.st
		next.PanelOpen = true
		c.set(next, "open-panel")
	}
	return true
}

func (c *Coordinator) ClosePanel() {
	if c.st.PanelOpen {
		next := c.st
		next.PanelOpen = false
		c.set(next, "close-panel")
	}
}

// Reset drops to Idle without flushing, used on teardown and reload.
func (c *Coordinator) Reset() {
	if id := c.st.EditingID; id != "" {
		c.exit(id)
	}
	c.set(State{}, "reset")
}

// Forget clears any reference to a removed element.
func (c *Coordinator) Forget(id string) {
	if c.st.SelectedID == id || c.st.EditingID == id {
		c.Reset()
	}
}

var (
	ErrEditingNotSelected = errors.New("editing element is not the selected element")
	ErrPanelWithoutTarget = errors.New("style panel open without a selection")
)

// Check verifies the state invariants.
func (c *Coordinator) Check() error {
	return c.st.Check()
}

func (s State) Check() error {
	if s.EditingID != "" && s.SelectedID != s.EditingID {
		return fmt.Errorf("%w: editing=%q selected=%q", ErrEditingNotSelected, s.EditingID, s.SelectedID)
	}
	if s.PanelOpen && s.SelectedID == "" {
		return ErrPanelWithoutTarget
	}
	return nil
}

func (c *Coordinator) enterEdit(id, cause string) {
	c.set(State{SelectedID: id, EditingID: id, PanelOpen: c.st.PanelOpen}, cause)
	if c.hooks.EnterEdit != nil {
		c.hooks.EnterEdit(id, c.mode == Modal)
	}
}

// leaveEdit flushes and exits the current edit, if any, keeping selection.
func (c *Coordinator) leaveEdit() {
	id := c.st.EditingID
	if id == "" {
		return
	}
	if c.hooks.Flush != nil {
		c.hooks.Flush(id)
	}
	c.exit(id)
	next := c.st
	next.EditingID = ""
	c.st = next
}

func (c *Coordinator) exit(id string) {
	if c.hooks.ExitEdit != nil {
		c.hooks.ExitEdit(id)
	}
}

func (c *Coordinator) set(next State, cause string) {
	if next.SelectedID == "" {
		next.PanelOpen = false
	}
	prev := c.st
	c.st = next
	if prev == next {
		return
	}
	c.log.Debug("transition",
		slog.String("cause", cause),
		slog.String("from", prev.Phase().String()),
		slog.String("to", next.Phase().String()),
		slog.String("selected", next.SelectedID),
		slog.String("editing", next.EditingID),
		slog.Bool("panel", next.PanelOpen))
	if prev.PanelOpen != next.PanelOpen && c.hooks.PanelShown != nil {
		c.hooks.PanelShown(next.PanelOpen)
	}
}
