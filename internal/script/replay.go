/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package script

import (
	"fmt"
	"time"

	"cardcanvas/internal/domain"
	"cardcanvas/internal/geometry"
	applog "cardcanvas/internal/log"
	"cardcanvas/internal/selection"
	"cardcanvas/internal/textedit"
)

// Target is the editor surface a script drives. *editor.Editor satisfies it.
type Target interface {
	PointerDown(pid int, p geometry.Pt)
	PointerMove(pid int, p geometry.Pt)
	PointerUp(pid int, p geometry.Pt)
	Tap(id string) error
	TapBackground()
	Pinch(id string, factor float64) error
	SetBuffer(markup string) error
	SaveEdit() error
	CancelEdit() error
	ResetEdit() error
	StyleChange(p domain.StylePatch) error
	ApplyPreset(name string) error
	OpenPanel() bool
	ClosePanel()
	State() selection.State
}

// Clock advances time for wait steps. *textedit.ManualScheduler satisfies it.
type Clock interface {
	Advance(d time.Duration)
}

// Replay runs every step against t and stops at the first failure, which is
// reported as an Error carrying the step's line. A nil clock makes wait
// steps no-ops.
func Replay(t Target, s Script, clock Clock) error {
	l := applog.WithComponent("script")
	for _, st := range s.Steps {
		if err := run(t, st, clock); err != nil {
			l.Warn("replay failed", "line", st.LineNo, "op", string(st.Op), "err", err)
			return Error{Line: st.LineNo, Message: fmt.Sprintf("%s: %v", st.Op, err)}
		}
	}
	l.Debug("replay done", "steps", len(s.Steps))
	return nil
}

func run(t Target, st Step, clock Clock) error {
	p := geometry.Pt{X: st.X, Y: st.Y}
	switch st.Op {
	case OpDown:
		t.PointerDown(st.Pointer, p)
	case OpMove:
		t.PointerMove(st.Pointer, p)
	case OpUp:
		t.PointerUp(st.Pointer, p)
	case OpTap:
		return t.Tap(st.ID)
	case OpTapBG:
		t.TapBackground()
	case OpPinch:
		return t.Pinch(st.ID, st.Factor)
	case OpType:
		return t.SetBuffer(textedit.ToBuffer(st.Text))
	case OpHTML:
		return t.SetBuffer(st.Text)
	case OpSave:
		return t.SaveEdit()
	case OpCancel:
		return t.CancelEdit()
	case OpReset:
		return t.ResetEdit()
	case OpStyle:
		patch, err := domain.ParsePatch(st.Style)
		if err != nil {
			return err
		}
		return t.StyleChange(patch)
	case OpPreset:
		return t.ApplyPreset(st.ID)
	case OpPanel:
		if !st.Open {
			t.ClosePanel()
		} else if !t.OpenPanel() {
			return fmt.Errorf("panel needs a selection")
		}
	case OpWait:
		if clock != nil {
			clock.Advance(time.Duration(st.Millis) * time.Millisecond)
		}
	case OpExpect:
		return expect(t.State(), st)
	default:
		return fmt.Errorf("unknown command")
	}
	return nil
}

func expect(got selection.State, st Step) error {
	if ph := got.Phase().String(); ph != st.Phase {
		return fmt.Errorf("phase is %s, want %s", ph, st.Phase)
	}
	if st.ID == "" {
		return nil
	}
	id := got.SelectedID
	if got.EditingID != "" {
		id = got.EditingID
	}
	if id != st.ID {
		return fmt.Errorf("target is %q, want %q", id, st.ID)
	}
	return nil
}
