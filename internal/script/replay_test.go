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
	"errors"
	"testing"

	"cardcanvas/internal/domain"
	"cardcanvas/internal/editor"
	"cardcanvas/internal/selection"
	"cardcanvas/internal/textedit"
)

func newEditor(t *testing.T, mode selection.Mode) (*editor.Editor, *textedit.ManualScheduler) {
	t.Helper()
	clock := textedit.NewManualScheduler()
	ed := editor.New(editor.Options{
		Mode:      mode,
		Canvas:    domain.Canvas{Width: 500, Height: 700},
		Scheduler: clock,
	})
	err := ed.Load([]domain.Component{
		{ID: "title", Type: domain.TypeText, Content: "Hello", Style: domain.Style{
			Left: domain.Px(100), Top: domain.Px(100), Width: domain.Px(200), FontSize: 20,
			LineHeight: domain.Ratio(1.5),
		}},
		{ID: "body", Type: domain.TypeText, Content: "Body", Style: domain.Style{
			Left: domain.Px(50), Top: domain.Px(400), Width: domain.Px(300), FontSize: 16,
		}},
	})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	t.Cleanup(ed.Close)
	return ed, clock
}

func mustParse(t *testing.T, src string) Script {
	t.Helper()
	s, errs := Parse(src)
	if len(errs) != 0 {
		t.Fatalf("parse: %+v", errs)
	}
	return s
}

func find(cs []domain.Component, id string) domain.Component {
	for _, c := range cs {
		if c.ID == id {
			return c
		}
	}
	return domain.Component{}
}

func TestReplayDragThenEdit(t *testing.T) {
	ed, clock := newEditor(t, selection.Inline)
	s := mustParse(t, `
down 0 150 110
move 0 170 130
up 0 170 130
expect idle
tap title
expect editing title
wait 60
type "Hi\nthere"
save
expect idle`)
	if err := Replay(ed, s, clock); err != nil {
		t.Fatalf("Replay: %v", err)
	}
	title := find(ed.Components(), "title")
	if title.Style.Left != domain.Px(120) || title.Style.Top != domain.Px(120) {
		t.Fatalf("drag not committed: %+v", title.Style)
	}
	if title.Content != "Hi\nthere" {
		t.Fatalf("content = %q", title.Content)
	}
}

func TestReplayModalStylePanel(t *testing.T) {
	ed, clock := newEditor(t, selection.Modal)
	s := mustParse(t, `
tap body
expect selected body
panel open
style fontSize=99px color=#333
panel close
tap-bg
expect idle`)
	if err := Replay(ed, s, clock); err != nil {
		t.Fatalf("Replay: %v", err)
	}
	body := find(ed.Components(), "body")
	if body.Style.FontSize != 50 || body.Style.Color != "#333" {
		t.Fatalf("style not applied with panel clamp: %+v", body.Style)
	}
}

func TestReplayStopsAtFailingLine(t *testing.T) {
	ed, _ := newEditor(t, selection.Inline)
	s := mustParse(t, "tap title\nsave\nexpect selected\ntap body")
	err := Replay(ed, s, nil)
	var se Error
	if !errors.As(err, &se) || se.Line != 3 {
		t.Fatalf("expected failure on line 3, got %v", err)
	}
	if ed.State().Phase() != selection.Idle {
		t.Fatalf("steps after the failure must not run")
	}
}
