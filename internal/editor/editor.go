/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package editor is the host-facing facade of the canvas engine. A host
// forwards raw pointer input, style panel values and text buffer changes; the
// editor classifies gestures, runs transform and edit sessions, keeps the
// selection state consistent and writes every committed change through the
// component store.
//
// An Editor is single-writer: all methods must be called from one goroutine
// (the host's UI goroutine). Timer callbacks go through Options.Scheduler so a
// host can marshal them onto that goroutine.
package editor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"cardcanvas/internal/config"
	"cardcanvas/internal/domain"
	"cardcanvas/internal/geometry"
	"cardcanvas/internal/gesture"
	applog "cardcanvas/internal/log"
	"cardcanvas/internal/selection"
	"cardcanvas/internal/snap"
	"cardcanvas/internal/store"
	"cardcanvas/internal/textedit"
	"cardcanvas/internal/textlayout"
)

// HandleHalfSize is half the edge of a square corner resize handle.
const HandleHalfSize = 8.0

// WheelSettleDelay is how long a wheel pinch waits for further steps before
// it commits.
const WheelSettleDelay = 250 * time.Millisecond

// ErrNoSelection is returned by style changes with nothing selected.
var ErrNoSelection = errors.New("no element selected")

// ErrNotEditing is returned by edit operations with no open edit session.
var ErrNotEditing = errors.New("no element is being edited")

// ErrClosed is returned after Close.
var ErrClosed = errors.New("editor closed")

// ErrInvalidFactor is returned for a non-positive or non-finite scale step.
var ErrInvalidFactor = errors.New("invalid scale factor")

// Events receives anonymous usage events. *telemetry.Client satisfies it.
type Events interface {
	Event(name string, props map[string]any)
}

// Options configures an Editor. Zero values select defaults.
type Options struct {
	Mode      selection.Mode
	Canvas    domain.Canvas
	Config    config.EditorConfig
	Scheduler textedit.Scheduler
	Viewport  textedit.Viewport
	Measurer  geometry.Measurer

	// OnUpdate receives the full component list after every committed change.
	OnUpdate func([]domain.Component)
	// OnState receives the interaction state after each transition.
	OnState func(selection.State)
	// Focus places the caret in the editable surface of element id.
	Focus func(id string)
	// Keyboard reports whether the on-screen keyboard has settled.
	Keyboard func() bool
	Events   Events
}

type pointer struct {
	id int
	at geometry.Pt
}

// Editor drives one canvas.
type Editor struct {
	opts   Options
	cfg    config.EditorConfig
	canvas domain.Canvas
	store  *store.Store
	sel    *selection.Coordinator
	cls    *gesture.Classifier
	unsub  func()
	log    *slog.Logger

	// pointer sequence
	target   string
	ignored  bool
	primary  *pointer
	second   *pointer
	corner   bool
	gesture  *gesture.Session
	lastEdit *textedit.Session
	wheel    *wheelPinch

	closed bool
}

// New creates an editor with an empty store.
func New(opts Options) *Editor {
	cfg := mergeEditorConfig(opts.Config)
	cv := opts.Canvas
	if cv.Width <= 0 || cv.Height <= 0 {
		cv = domain.CanvasFromAspect(domain.AspectRatio{X: 5, Y: 7}, cfg.BaseCanvasWidth)
	}
	if opts.Scheduler == nil {
		opts.Scheduler = textedit.SystemScheduler{}
	}
	if opts.Measurer == nil {
		opts.Measurer = textlayout.NewMeasurer(nil)
	}
	e := &Editor{
		opts:   opts,
		cfg:    cfg,
		canvas: cv,
		store:  store.New(),
		cls:    gesture.NewClassifier(cfg.TapThresholdPx),
		log:    applog.WithComponent("editor").With(slog.String("mode", opts.Mode.String())),
	}
	e.sel = selection.New(opts.Mode, selection.Hooks{
		Flush:     e.flush,
		EnterEdit: e.enterEdit,
		ExitEdit:  e.exitEdit,
	})
	if opts.OnUpdate != nil {
		e.unsub = e.store.Subscribe(opts.OnUpdate)
	}
	return e
}

func mergeEditorConfig(c config.EditorConfig) config.EditorConfig {
	d := config.Defaults().Editor
	if c.TapThresholdPx > 0 {
		d.TapThresholdPx = c.TapThresholdPx
	}
	if c.SnapThresholdPx != 0 {
		d.SnapThresholdPx = c.SnapThresholdPx
	}
	for _, p := range []struct{ dst *int; v int }{
		{&d.DragFontMin, c.DragFontMin}, {&d.DragFontMax, c.DragFontMax},
		{&d.PanelFontMin, c.PanelFontMin}, {&d.PanelFontMax, c.PanelFontMax},
		{&d.FocusDelayMs, c.FocusDelayMs}, {&d.KeyboardPollMs, c.KeyboardPollMs},
		{&d.KeyboardTimeoutMs, c.KeyboardTimeoutMs},
	} {
		if p.v > 0 {
			*p.dst = p.v
		}
	}
	if c.MinWidthPx > 0 {
		d.MinWidthPx = c.MinWidthPx
	}
	if c.BaseCanvasWidth > 0 {
		d.BaseCanvasWidth = c.BaseCanvasWidth
	}
	return d
}

// Load replaces all components, dropping any selection or session.
func (e *Editor) Load(cs []domain.Component) error {
	if e.closed {
		return ErrClosed
	}
	e.abortGesture()
	e.dropWheel()
	e.sel.Reset()
	e.notifyState()
	if err := e.store.Load(cs); err != nil {
		e.log.Error("load failed", "err", err)
		return err
	}
	return nil
}

// Components returns a copy of the current component list.
func (e *Editor) Components() []domain.Component { return e.store.Snapshot() }

// Store exposes the component store for read access and subscriptions.
func (e *Editor) Store() *store.Store { return e.store }

func (e *Editor) Canvas() domain.Canvas       { return e.canvas }
func (e *Editor) State() selection.State      { return e.sel.State() }
func (e *Editor) Mode() selection.Mode        { return e.sel.Mode() }
func (e *Editor) Config() config.EditorConfig { return e.cfg }

// Bounds resolves the absolute box of c on this canvas.
func (e *Editor) Bounds(c domain.Component) geometry.Rect {
	return geometry.Bounds(c, e.canvas, e.opts.Measurer)
}

// HitTest returns the top-most element containing p. Later components paint
// above earlier ones.
func (e *Editor) HitTest(p geometry.Pt) (string, bool) {
	cs := e.store.Snapshot()
	for i := len(cs) - 1; i >= 0; i-- {
		if e.Bounds(cs[i]).Contains(p) {
			return cs[i].ID, true
		}
	}
	return "", false
}

// Preview reports the live transform of the element under manipulation.
func (e *Editor) Preview() (id string, p gesture.Preview, ok bool) {
	s := e.gesture
	if s == nil && e.wheel != nil {
		s = e.wheel.session
	}
	if s == nil || s.Done() {
		return "", gesture.Preview{}, false
	}
	return s.ElementID, s.Preview(), true
}

func (e *Editor) sessionOptions() gesture.Options {
	return gesture.Options{
		SnapThreshold: e.cfg.SnapThresholdPx,
		Limits:        gesture.Limits{FontMin: e.cfg.DragFontMin, FontMax: e.cfg.DragFontMax, MinWidth: e.cfg.MinWidthPx},
		Measurer:      e.opts.Measurer,
	}
}

// PointerDown starts or extends a pointer sequence. pid distinguishes
// simultaneous pointers.
func (e *Editor) PointerDown(pid int, p geometry.Pt) {
	if e.closed {
		return
	}
	e.settleWheel()
	if e.primary != nil {
		if e.second == nil && pid != e.primary.id {
			e.secondPointer(pid, p)
		}
		return
	}
	e.primary = &pointer{id: pid, at: p}
	e.second, e.corner, e.ignored, e.target = nil, false, false, ""

	if sel := e.sel.State().SelectedID; sel != "" && !e.sel.IsEditing(sel) {
		if c, err := e.store.Get(sel); err == nil {
			box := e.Bounds(c)
			if corner, ok := box.HandleAt(p, HandleHalfSize); ok {
				e.target, e.corner = sel, true
				e.cls.DownOnHandle(p, box.Point(corner.Opposite()))
				e.gesture = gesture.BeginScale(c, e.canvas, e.sessionOptions())
				return
			}
		}
	}
	id, _ := e.HitTest(p)
	if e.sel.IsEditing(id) {
		// the editable surface owns input on the element being edited
		e.ignored = true
		return
	}
	e.target = id
	e.cls.Down(p)
}

func (e *Editor) secondPointer(pid int, p geometry.Pt) {
	if e.ignored || e.target == "" {
		return
	}
	if id, _ := e.HitTest(p); id != e.target {
		return
	}
	if !e.cls.SecondPointer(e.primary.at, p) {
		return
	}
	e.second = &pointer{id: pid, at: p}
	c, err := e.store.Get(e.target)
	if err != nil {
		return
	}
	e.sel.Select(e.target)
	e.notifyState()
	e.gesture = gesture.BeginScale(c, e.canvas, e.sessionOptions())
}

// PointerMove feeds a move of pointer pid.
func (e *Editor) PointerMove(pid int, p geometry.Pt) {
	if e.closed || e.primary == nil || e.ignored {
		return
	}
	switch {
	case e.second != nil && pid == e.second.id:
		e.second.at = p
	case pid == e.primary.id:
		e.primary.at = p
	default:
		return
	}
	if e.gesture != nil && e.gesture.Kind == gesture.KindScale {
		if e.corner {
			if e.cls.Move(p) == gesture.Scale {
				e.gesture.ScaleTo(e.cls.CornerFactor(p))
			}
		} else if e.second != nil {
			e.gesture.ScaleTo(e.cls.PinchFactor(e.primary.at, e.second.at))
		}
		return
	}
	if e.target == "" {
		e.cls.Move(p)
		return
	}
	if e.cls.Move(p) == gesture.Drag {
		if e.gesture == nil {
			c, err := e.store.Get(e.target)
			if err != nil {
				e.log.Warn("drag on vanished element", "id", e.target)
				e.abortGesture()
				return
			}
			e.sel.Select(e.target)
			e.notifyState()
			e.gesture = gesture.BeginDrag(c, e.canvas, e.sessionOptions())
		}
		e.gesture.MoveTo(e.cls.Delta())
	}
}

// PointerUp ends pointer pid. Releasing either pointer of a pinch, or the
// primary pointer otherwise, finishes the sequence: a tap is interpreted, or
// the running session commits once.
func (e *Editor) PointerUp(pid int, p geometry.Pt) {
	if e.closed || e.primary == nil {
		return
	}
	if pid != e.primary.id && (e.second == nil || pid != e.second.id) {
		return
	}
	if pid == e.primary.id && (e.gesture == nil || e.gesture.Kind == gesture.KindDrag) {
		e.PointerMove(pid, p)
	}
	e.finish()
}

func (e *Editor) finish() {
	defer func() { e.primary, e.second, e.corner, e.gesture, e.target = nil, nil, false, nil, "" }()
	if e.ignored {
		e.cls.Up()
		e.ignored = false
		return
	}
	switch e.cls.Up() {
	case gesture.OutcomeNone:
		// handle pressed and released in place
		if e.gesture != nil {
			e.gesture.Cancel()
		}
	case gesture.OutcomeTap:
		if e.target == "" {
			e.TapBackground()
			return
		}
		e.sel.Tap(e.target)
		e.notifyState()
	case gesture.OutcomeDrag:
		if e.gesture == nil {
			// drag on the background
			return
		}
		e.commit(e.gesture, "drag_commit")
		e.sel.DragCommitted(e.target)
		e.notifyState()
	case gesture.OutcomeScale:
		if e.gesture != nil {
			e.commit(e.gesture, "scale_commit")
		}
	}
}

func (e *Editor) commit(s *gesture.Session, event string) {
	style, ok := s.Commit()
	if !ok {
		return
	}
	var before domain.Component
	after, err := e.store.Update(s.ElementID, func(c domain.Component) domain.Component {
		before = c
		return c.WithStyle(style)
	})
	if err != nil {
		e.log.Warn("commit dropped", "id", s.ElementID, "err", err)
		return
	}
	if after == before {
		e.log.Debug("commit left element unchanged", "id", s.ElementID, "event", event)
		return
	}
	e.log.DebugContext(applog.ContextWithElement(context.Background(), s.ElementID), event,
		slog.Float64("left", style.Left.Value), slog.Float64("top", style.Top.Value), slog.Int("fontSize", style.FontSize))
	e.emit(event, map[string]any{"fontSize": style.FontSize})
}

func (e *Editor) abortGesture() {
	if e.gesture != nil {
		e.gesture.Cancel()
	}
	if e.cls.Active() {
		e.cls.Up()
	}
	e.primary, e.second, e.corner, e.gesture, e.ignored, e.target = nil, nil, false, nil, false, ""
}

// Pinch applies a discrete scale factor to an element, as delivered by hosts
// that recognize pinch gestures themselves.
func (e *Editor) Pinch(id string, factor float64) error {
	if e.closed {
		return ErrClosed
	}
	if e.sel.IsEditing(id) {
		return nil
	}
	e.settleWheel()
	c, err := e.store.Get(id)
	if err != nil {
		e.log.Warn("pinch on unknown element", "id", id)
		return err
	}
	s := gesture.BeginScale(c, e.canvas, e.sessionOptions())
	s.ScaleTo(factor)
	e.commit(s, "scale_commit")
	return nil
}

type wheelPinch struct {
	session *gesture.Session
	factor  float64
	timer   textedit.Timer
}

// WheelPinch feeds one step of a pinch delivered in increments, such as a
// mouse wheel. Steps multiply into one scale session that previews live and
// commits once, WheelSettleDelay after the last step or when other input
// arrives.
func (e *Editor) WheelPinch(id string, step float64) error {
	if e.closed {
		return ErrClosed
	}
	if e.sel.IsEditing(id) || e.primary != nil {
		return nil
	}
	if step <= 0 || !geometry.Finite(step) {
		return fmt.Errorf("wheel pinch step %v: %w", step, ErrInvalidFactor)
	}
	if e.wheel != nil && e.wheel.session.ElementID != id {
		e.settleWheel()
	}
	if e.wheel == nil {
		c, err := e.store.Get(id)
		if err != nil {
			e.log.Warn("wheel pinch on unknown element", "id", id)
			return err
		}
		e.wheel = &wheelPinch{session: gesture.BeginScale(c, e.canvas, e.sessionOptions()), factor: 1}
	}
	w := e.wheel
	w.factor *= step
	w.session.ScaleTo(w.factor)
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = e.opts.Scheduler.AfterFunc(WheelSettleDelay, func() {
		if e.wheel == w {
			e.settleWheel()
		}
	})
	return nil
}

// settleWheel commits a pending wheel pinch.
func (e *Editor) settleWheel() {
	w := e.wheel
	if w == nil {
		return
	}
	e.wheel = nil
	if w.timer != nil {
		w.timer.Stop()
	}
	e.commit(w.session, "scale_commit")
}

// dropWheel discards a pending wheel pinch without committing it.
func (e *Editor) dropWheel() {
	if w := e.wheel; w != nil {
		e.wheel = nil
		if w.timer != nil {
			w.timer.Stop()
		}
		w.session.Cancel()
	}
}

// TapBackground flushes any edit, clears the selection and closes the panel.
func (e *Editor) TapBackground() {
	if e.closed {
		return
	}
	e.settleWheel()
	e.sel.TapBackground()
	e.notifyState()
}

// Tap taps element id directly, bypassing pointer classification.
func (e *Editor) Tap(id string) error {
	if e.closed {
		return ErrClosed
	}
	if _, err := e.store.Get(id); err != nil {
		return err
	}
	e.settleWheel()
	e.sel.Tap(id)
	e.notifyState()
	return nil
}

// OpenPanel opens the style panel for the selected element.
func (e *Editor) OpenPanel() bool {
	ok := e.sel.OpenPanel()
	e.notifyState()
	return ok
}

func (e *Editor) ClosePanel() {
	e.sel.ClosePanel()
	e.notifyState()
}

// StyleChange merges a style panel patch into the selected element. A font
// size is clamped to the panel range. Changes apply immediately, also while
// the element is being edited.
func (e *Editor) StyleChange(p domain.StylePatch) error {
	if e.closed {
		return ErrClosed
	}
	id := e.sel.State().SelectedID
	if id == "" {
		return ErrNoSelection
	}
	if p.IsZero() {
		return nil
	}
	e.settleWheel()
	if p.FontSize != nil {
		fs := int(geometry.Clamp(float64(*p.FontSize), float64(e.cfg.PanelFontMin), float64(e.cfg.PanelFontMax)))
		p.FontSize = &fs
	}
	if _, err := e.store.Update(id, func(c domain.Component) domain.Component { return c.WithStyle(c.Style.Merge(p)) }); err != nil {
		e.log.Warn("style change dropped", "id", id, "err", err)
		return err
	}
	e.emit("style_change", map[string]any{"keys": p.Keys()})
	return nil
}

// ApplyPreset applies a named text style preset to the selected element.
func (e *Editor) ApplyPreset(name string) error {
	p, ok := textlayout.Preset(name)
	if !ok {
		return fmt.Errorf("unknown preset %q", name)
	}
	return e.StyleChange(p)
}

// Editing returns the open edit session, if any.
func (e *Editor) Editing() (*textedit.Session, bool) {
	if e.lastEdit == nil || !e.lastEdit.Alive() {
		return nil, false
	}
	return e.lastEdit, true
}

// SetBuffer records the editable surface's markup for the element being edited.
func (e *Editor) SetBuffer(markup string) error {
	s, ok := e.Editing()
	if !ok {
		return ErrNotEditing
	}
	return s.SetBuffer(markup)
}

// SaveEdit writes the buffer and leaves the editing state.
func (e *Editor) SaveEdit() error {
	s, ok := e.Editing()
	if !ok {
		return ErrNotEditing
	}
	err := s.Save()
	if err == nil {
		e.emit("text_save", map[string]any{"modal": s.Modal})
	}
	e.sel.EndEdit()
	e.notifyState()
	return err
}

// CancelEdit discards the buffer, restores the snapshot style and leaves the
// editing state.
func (e *Editor) CancelEdit() error {
	s, ok := e.Editing()
	if !ok {
		return ErrNotEditing
	}
	err := s.Cancel()
	e.sel.EndEdit()
	e.notifyState()
	return err
}

// ResetEdit restores the snapshot and keeps editing.
func (e *Editor) ResetEdit() error {
	s, ok := e.Editing()
	if !ok {
		return ErrNotEditing
	}
	return s.Reset()
}

// Close tears the editor down. Pending timers become no-ops and an open edit
// session is closed without saving.
func (e *Editor) Close() {
	if e.closed {
		return
	}
	e.abortGesture()
	e.dropWheel()
	e.sel.Reset()
	if e.lastEdit != nil {
		e.lastEdit.Close()
	}
	if e.unsub != nil {
		e.unsub()
	}
	e.closed = true
	e.log.Debug("editor closed")
}

func (e *Editor) flush(id string) {
	if s, ok := e.Editing(); ok && s.ID == id {
		if err := s.Save(); err != nil {
			e.log.Warn("flush failed", "id", id, "err", err)
			return
		}
		e.emit("text_save", map[string]any{"modal": s.Modal, "flush": true})
	}
}

func (e *Editor) enterEdit(id string, modal bool) {
	if e.lastEdit != nil {
		e.lastEdit.Close()
	}
	s, err := textedit.Open(e.store, id, textedit.Options{
		Modal:           modal,
		Scheduler:       e.opts.Scheduler,
		Viewport:        e.opts.Viewport,
		Focus:           e.opts.Focus,
		FocusDelay:      time.Duration(e.cfg.FocusDelayMs) * time.Millisecond,
		Keyboard:        e.opts.Keyboard,
		KeyboardPoll:    time.Duration(e.cfg.KeyboardPollMs) * time.Millisecond,
		KeyboardTimeout: time.Duration(e.cfg.KeyboardTimeoutMs) * time.Millisecond,
	})
	if err != nil {
		e.log.Error("cannot open edit session", "id", id, "err", err)
		e.lastEdit = nil
		return
	}
	e.lastEdit = s
}

func (e *Editor) exitEdit(id string) {
	if e.lastEdit != nil && e.lastEdit.ID == id {
		e.lastEdit.Close()
	}
}

func (e *Editor) notifyState() {
	if err := e.sel.Check(); err != nil {
		e.log.Error("selection invariant broken", "err", err)
	}
	if e.opts.OnState != nil {
		e.opts.OnState(e.sel.State())
	}
}

func (e *Editor) emit(name string, props map[string]any) {
	if e.opts.Events == nil {
		return
	}
	props["mode"] = e.sel.Mode().String()
	e.opts.Events.Event(name, props)
}

// Guides returns the guide lines of the running drag, for rendering.
func (e *Editor) Guides() []snap.GuideLine {
	if _, p, ok := e.Preview(); ok {
		return p.Guides
	}
	return nil
}
