/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package editor

import (
	"errors"
	"math"
	"slices"
	"testing"
	"time"

	"cardcanvas/internal/domain"
	"cardcanvas/internal/geometry"
	"cardcanvas/internal/selection"
	"cardcanvas/internal/textedit"
)

type recordedEvent struct {
	name  string
	props map[string]any
}

type eventLog struct{ events []recordedEvent }

func (l *eventLog) Event(name string, props map[string]any) {
	l.events = append(l.events, recordedEvent{name, props})
}

func (l *eventLog) names() []string {
	var out []string
	for _, e := range l.events {
		out = append(out, e.name)
	}
	return out
}

func components() []domain.Component {
	return []domain.Component{
		{ID: "title", Type: domain.TypeText, Content: "Hello", Style: domain.Style{
			Left: domain.Px(100), Top: domain.Px(100), Width: domain.Px(200), FontSize: 20,
			LineHeight: domain.Ratio(1.5), Color: "#000000",
		}},
		{ID: "body", Type: domain.TypeText, Content: "Line1\nLine2", Style: domain.Style{
			Left: domain.Px(50), Top: domain.Px(400), Width: domain.Px(300), FontSize: 16,
		}},
	}
}

type fixture struct {
	ed      *Editor
	clock   *textedit.ManualScheduler
	events  *eventLog
	updates int
	focused []string
}

func newFixture(t *testing.T, mode selection.Mode) *fixture {
	t.Helper()
	f := &fixture{clock: textedit.NewManualScheduler(), events: &eventLog{}}
	f.ed = New(Options{
		Mode:      mode,
		Canvas:    domain.Canvas{Width: 500, Height: 700},
		Scheduler: f.clock,
		OnUpdate:  func([]domain.Component) { f.updates++ },
		Focus:     func(id string) { f.focused = append(f.focused, id) },
		Events:    f.events,
	})
	if err := f.ed.Load(components()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	f.updates = 0
	t.Cleanup(f.ed.Close)
	return f
}

func (f *fixture) get(t *testing.T, id string) domain.Component {
	t.Helper()
	c, err := f.ed.Store().Get(id)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func (f *fixture) click(p geometry.Pt) {
	f.ed.PointerDown(0, p)
	f.ed.PointerUp(0, geometry.Pt{X: p.X + 2, Y: p.Y + 2})
}

func (f *fixture) drag(from, to geometry.Pt) {
	f.ed.PointerDown(0, from)
	f.ed.PointerMove(0, geometry.Pt{X: (from.X + to.X) / 2, Y: (from.Y + to.Y) / 2})
	f.ed.PointerUp(0, to)
}

func TestInlineTapStartsEditing(t *testing.T) {
	f := newFixture(t, selection.Inline)
	f.click(geometry.Pt{X: 150, Y: 110})
	st := f.ed.State()
	if st.EditingID != "title" || st.SelectedID != "title" {
		t.Fatalf("state = %+v", st)
	}
	s, ok := f.ed.Editing()
	if !ok || s.Modal {
		t.Fatalf("expected an inline edit session")
	}
	f.clock.Advance(time.Second)
	if len(f.focused) != 1 || f.focused[0] != "title" {
		t.Fatalf("focus = %v", f.focused)
	}
	if f.updates != 0 {
		t.Fatalf("a tap must not write")
	}
}

func TestDragCommitsOnceAndGoesIdle(t *testing.T) {
	f := newFixture(t, selection.Inline)
	f.ed.PointerDown(0, geometry.Pt{X: 150, Y: 110})
	f.ed.PointerMove(0, geometry.Pt{X: 160, Y: 110})
	id, p, ok := f.ed.Preview()
	if !ok || id != "title" || p.Position.X != 110 {
		t.Fatalf("preview = %v %+v %v", id, p, ok)
	}
	if f.get(t, "title").Style.Left != domain.Px(100) {
		t.Fatalf("preview must not touch the stored style")
	}
	f.ed.PointerUp(0, geometry.Pt{X: 170, Y: 130})
	c := f.get(t, "title")
	if c.Style.Left != domain.Px(120) || c.Style.Top != domain.Px(120) {
		t.Fatalf("committed style = %+v", c.Style)
	}
	if f.updates != 1 {
		t.Fatalf("expected exactly one update, got %d", f.updates)
	}
	if st := f.ed.State(); st != (selection.State{}) {
		t.Fatalf("inline drag should end idle, got %+v", st)
	}
	if _, _, ok := f.ed.Preview(); ok {
		t.Fatalf("preview must be gone after release")
	}
	if names := f.events.names(); len(names) != 1 || names[0] != "drag_commit" {
		t.Fatalf("events = %v", names)
	}
}

func TestDragSnapsToCenterGuide(t *testing.T) {
	f := newFixture(t, selection.Modal)
	// title center x starts at 200; +48 lands within 5px of 250
	f.drag(geometry.Pt{X: 150, Y: 110}, geometry.Pt{X: 198, Y: 110})
	if got := f.get(t, "title").Style.Left; got != domain.Px(150) {
		t.Fatalf("left = %+v, want snapped 150", got)
	}
	if st := f.ed.State(); st.SelectedID != "title" || st.EditingID != "" {
		t.Fatalf("modal drag keeps the element selected, got %+v", st)
	}
}

func TestSubThresholdMoveIsATap(t *testing.T) {
	f := newFixture(t, selection.Modal)
	f.ed.PointerDown(0, geometry.Pt{X: 150, Y: 110})
	f.ed.PointerMove(0, geometry.Pt{X: 154, Y: 105})
	f.ed.PointerUp(0, geometry.Pt{X: 155, Y: 115})
	if f.updates != 0 || f.ed.State().SelectedID != "title" {
		t.Fatalf("updates=%d state=%+v", f.updates, f.ed.State())
	}
}

func TestModalFlowFlushesOnBackgroundTap(t *testing.T) {
	f := newFixture(t, selection.Modal)
	f.click(geometry.Pt{X: 150, Y: 110})
	if f.ed.State().EditingID != "" {
		t.Fatalf("first tap in modal mode only selects")
	}
	f.click(geometry.Pt{X: 150, Y: 110})
	s, ok := f.ed.Editing()
	if !ok || !s.Modal {
		t.Fatalf("second tap should open the modal editor")
	}
	if err := f.ed.SetBuffer("<div>Hi</div><div>there</div>"); err != nil {
		t.Fatal(err)
	}
	f.click(geometry.Pt{X: 480, Y: 690})
	if got := f.get(t, "title").Content; got != "Hi\nthere" {
		t.Fatalf("buffer not flushed: %q", got)
	}
	if st := f.ed.State(); st != (selection.State{}) {
		t.Fatalf("background tap should reach idle, got %+v", st)
	}
	if s.Alive() {
		t.Fatalf("edit session left open")
	}
}

func TestPinchScalesElement(t *testing.T) {
	f := newFixture(t, selection.Inline)
	f.ed.PointerDown(0, geometry.Pt{X: 150, Y: 110})
	f.ed.PointerDown(1, geometry.Pt{X: 250, Y: 110})
	f.ed.PointerMove(1, geometry.Pt{X: 300, Y: 110})
	if _, p, ok := f.ed.Preview(); !ok || p.Scale != 1.5 {
		t.Fatalf("pinch preview = %+v", p)
	}
	f.ed.PointerUp(0, geometry.Pt{X: 150, Y: 110})
	f.ed.PointerUp(1, geometry.Pt{X: 300, Y: 110})
	c := f.get(t, "title")
	if c.Style.FontSize != 30 || c.Style.Width != domain.Px(300) || c.Style.LineHeight != domain.Ratio(1.5) {
		t.Fatalf("scaled style = %+v", c.Style)
	}
	if f.updates != 1 || f.ed.State().EditingID != "" {
		t.Fatalf("updates=%d state=%+v", f.updates, f.ed.State())
	}
}

func TestCornerHandleResize(t *testing.T) {
	f := newFixture(t, selection.Modal)
	if err := f.ed.Tap("title"); err != nil {
		t.Fatal(err)
	}
	f.ed.PointerDown(0, geometry.Pt{X: 300, Y: 130})
	f.ed.PointerMove(0, geometry.Pt{X: 400, Y: 145})
	f.ed.PointerUp(0, geometry.Pt{X: 400, Y: 145})
	c := f.get(t, "title")
	if c.Style.FontSize != 30 || c.Style.Width != domain.Px(300) {
		t.Fatalf("resized style = %+v", c.Style)
	}
	if c.Style.Left != domain.Px(100) {
		t.Fatalf("resize must not move the element")
	}
}

func TestCornerHandlePressInPlaceChangesNothing(t *testing.T) {
	f := newFixture(t, selection.Modal)
	if err := f.ed.Tap("title"); err != nil {
		t.Fatal(err)
	}
	before := len(f.events.events)
	f.ed.PointerDown(0, geometry.Pt{X: 300, Y: 130})
	f.ed.PointerUp(0, geometry.Pt{X: 300, Y: 130})
	if f.updates != 0 || len(f.events.events) != before {
		t.Fatalf("updates=%d events=%v", f.updates, f.events.names())
	}
	if st := f.ed.State(); st.SelectedID != "title" || st.EditingID != "" {
		t.Fatalf("state = %+v", st)
	}
}

func TestCornerHandleJitterKeepsFullWidth(t *testing.T) {
	f := newFixture(t, selection.Modal)
	err := f.ed.Load([]domain.Component{{ID: "banner", Type: domain.TypeText, Content: "Wide", Style: domain.Style{
		Left: domain.Px(0), Top: domain.Px(300), Width: domain.Full(), FontSize: 20,
	}}})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := f.ed.Tap("banner"); err != nil {
		t.Fatal(err)
	}
	f.updates = 0
	r := f.ed.Bounds(f.get(t, "banner"))
	corner := geometry.Pt{X: r.X + r.W, Y: r.Y + r.H}
	f.ed.PointerDown(0, corner)
	f.ed.PointerMove(0, geometry.Pt{X: corner.X + 1, Y: corner.Y})
	f.ed.PointerUp(0, geometry.Pt{X: corner.X + 1, Y: corner.Y})
	if c := f.get(t, "banner"); c.Style.Width != domain.Full() || c.Style.FontSize != 20 {
		t.Fatalf("style rewritten by a 1px handle move: %+v", c.Style)
	}
	if f.updates != 0 || slices.Contains(f.events.names(), "scale_commit") {
		t.Fatalf("updates=%d events=%v", f.updates, f.events.names())
	}
}

func TestWheelPinchPreviewsAndCommitsOnce(t *testing.T) {
	f := newFixture(t, selection.Modal)
	for i := 0; i < 10; i++ {
		if err := f.ed.WheelPinch("title", 1.02); err != nil {
			t.Fatalf("WheelPinch: %v", err)
		}
	}
	if f.updates != 0 {
		t.Fatalf("wheel steps must only preview, got %d updates", f.updates)
	}
	id, p, ok := f.ed.Preview()
	if !ok || id != "title" || math.Abs(p.Scale-math.Pow(1.02, 10)) > 1e-9 {
		t.Fatalf("preview = %q %+v %v", id, p, ok)
	}
	f.clock.Advance(WheelSettleDelay - time.Millisecond)
	if f.updates != 0 {
		t.Fatalf("committed before the wheel settled")
	}
	f.clock.Advance(time.Millisecond)
	c := f.get(t, "title")
	if c.Style.FontSize != 24 || c.Style.Width != domain.Px(244) {
		t.Fatalf("font and width out of proportion: %+v", c.Style)
	}
	if f.updates != 1 || !slices.Equal(f.events.names(), []string{"scale_commit"}) {
		t.Fatalf("updates=%d events=%v", f.updates, f.events.names())
	}
	if _, _, ok := f.ed.Preview(); ok {
		t.Fatalf("preview must end with the commit")
	}
}

func TestWheelPinchSettlesOnOtherInput(t *testing.T) {
	f := newFixture(t, selection.Modal)
	if err := f.ed.WheelPinch("title", 1.5); err != nil {
		t.Fatalf("WheelPinch: %v", err)
	}
	f.ed.TapBackground()
	if c := f.get(t, "title"); c.Style.FontSize != 30 || c.Style.Width != domain.Px(300) {
		t.Fatalf("pending wheel pinch not committed: %+v", c.Style)
	}
	f.clock.Advance(time.Second)
	if f.updates != 1 {
		t.Fatalf("stale settle timer committed again: %d updates", f.updates)
	}
	if err := f.ed.WheelPinch("title", 0); !errors.Is(err, ErrInvalidFactor) {
		t.Fatalf("zero step: %v", err)
	}
}

func TestInputOnEditedElementIsIgnored(t *testing.T) {
	f := newFixture(t, selection.Inline)
	f.click(geometry.Pt{X: 150, Y: 110})
	f.drag(geometry.Pt{X: 150, Y: 110}, geometry.Pt{X: 250, Y: 300})
	if err := f.ed.Pinch("title", 2); err != nil {
		t.Fatal(err)
	}
	if f.updates != 0 || !f.ed.sel.IsEditing("title") {
		t.Fatalf("edited element was manipulated: updates=%d", f.updates)
	}
}

func TestStyleChangeClampsPanelFontSize(t *testing.T) {
	f := newFixture(t, selection.Modal)
	fs := 80
	if err := f.ed.StyleChange(domain.StylePatch{FontSize: &fs}); !errors.Is(err, ErrNoSelection) {
		t.Fatalf("expected ErrNoSelection, got %v", err)
	}
	_ = f.ed.Tap("body")
	if err := f.ed.StyleChange(domain.StylePatch{FontSize: &fs}); err != nil {
		t.Fatal(err)
	}
	if got := f.get(t, "body").Style.FontSize; got != 50 {
		t.Fatalf("fontSize = %d, want 50", got)
	}
	if err := f.ed.ApplyPreset("Caption"); err != nil {
		t.Fatal(err)
	}
	if got := f.get(t, "body").Style; got.FontSize != 12 || got.Color != "#666666" {
		t.Fatalf("preset not applied: %+v", got)
	}
	if err := f.ed.ApplyPreset("Nope"); err == nil {
		t.Fatalf("expected unknown preset error")
	}
}

func TestResetRestoresContentAndColor(t *testing.T) {
	f := newFixture(t, selection.Inline)
	f.click(geometry.Pt{X: 150, Y: 110})
	red := "#ff0000"
	if err := f.ed.StyleChange(domain.StylePatch{Color: &red}); err != nil {
		t.Fatal(err)
	}
	if f.get(t, "title").Style.Color != red {
		t.Fatalf("style change must be live while editing")
	}
	_ = f.ed.SetBuffer("scratch")
	if err := f.ed.ResetEdit(); err != nil {
		t.Fatal(err)
	}
	s, _ := f.ed.Editing()
	c := f.get(t, "title")
	if c.Style.Color != "#000000" || s.Text() != "Hello" {
		t.Fatalf("reset left color=%q text=%q", c.Style.Color, s.Text())
	}
	_ = f.ed.SetBuffer("scratch")
	if err := f.ed.CancelEdit(); err != nil {
		t.Fatal(err)
	}
	if f.get(t, "title").Content != "Hello" || f.ed.State().EditingID != "" {
		t.Fatalf("cancel must keep content and leave editing")
	}
	if err := f.ed.SaveEdit(); !errors.Is(err, ErrNotEditing) {
		t.Fatalf("expected ErrNotEditing, got %v", err)
	}
}

func TestSaveEditWritesAndEmits(t *testing.T) {
	f := newFixture(t, selection.Inline)
	_ = f.ed.Tap("body")
	_ = f.ed.SetBuffer("One<br>Two<br>Three")
	if err := f.ed.SaveEdit(); err != nil {
		t.Fatal(err)
	}
	if got := f.get(t, "body").Content; got != "One\nTwo\nThree" {
		t.Fatalf("content = %q", got)
	}
	if names := f.events.names(); len(names) != 1 || names[0] != "text_save" || f.events.events[0].props["mode"] != "inline" {
		t.Fatalf("events = %+v", f.events.events)
	}
}

func TestCloseCancelsDeferredWork(t *testing.T) {
	f := newFixture(t, selection.Inline)
	_ = f.ed.Tap("title")
	s, _ := f.ed.Editing()
	f.ed.Close()
	f.clock.Advance(time.Second)
	if len(f.focused) != 0 || s.Alive() {
		t.Fatalf("deferred focus ran after close or session alive")
	}
	if err := f.ed.Tap("title"); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
	f.ed.PointerDown(0, geometry.Pt{X: 150, Y: 110})
	f.ed.PointerUp(0, geometry.Pt{X: 150, Y: 110})
}

func TestHitTestPrefersTopMost(t *testing.T) {
	f := newFixture(t, selection.Inline)
	cs := components()
	cs = append(cs, domain.Component{ID: "over", Content: "X", Style: domain.Style{Left: domain.Px(90), Top: domain.Px(90), Width: domain.Px(100), FontSize: 40}})
	if err := f.ed.Load(cs); err != nil {
		t.Fatal(err)
	}
	if id, ok := f.ed.HitTest(geometry.Pt{X: 120, Y: 105}); !ok || id != "over" {
		t.Fatalf("hit = %q %v", id, ok)
	}
	if id, _ := f.ed.HitTest(geometry.Pt{X: 250, Y: 105}); id != "title" {
		t.Fatalf("hit = %q", id)
	}
	if _, ok := f.ed.HitTest(geometry.Pt{X: 5, Y: 5}); ok {
		t.Fatalf("background hit")
	}
}

func TestLoadRejectsDuplicates(t *testing.T) {
	f := newFixture(t, selection.Inline)
	cs := append(components(), components()[0])
	if err := f.ed.Load(cs); err == nil {
		t.Fatalf("expected duplicate id error")
	}
	if len(f.ed.Components()) != 2 {
		t.Fatalf("failed load replaced the components")
	}
}

func TestPinchAPIClamps(t *testing.T) {
	f := newFixture(t, selection.Modal)
	if err := f.ed.Pinch("title", 10); err != nil {
		t.Fatal(err)
	}
	if got := f.get(t, "title").Style.FontSize; got != 72 {
		t.Fatalf("fontSize = %d", got)
	}
	if err := f.ed.Pinch("missing", 2); err == nil {
		t.Fatalf("expected not found")
	}
}
