//go:build fyne

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package ui

import (
	"image/color"
	"log/slog"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"cardcanvas/internal/domain"
	"cardcanvas/internal/editor"
	"cardcanvas/internal/export"
	"cardcanvas/internal/geometry"
	applog "cardcanvas/internal/log"
	"cardcanvas/internal/textedit"
	"cardcanvas/internal/textlayout"
)

// fyneScheduler runs editor timers on the Fyne UI goroutine.
type fyneScheduler struct{}

func (fyneScheduler) AfterFunc(d time.Duration, fn func()) textedit.Timer {
	return time.AfterFunc(d, func() { fyne.Do(fn) })
}

// CardCanvas draws a card and forwards mouse input to an editor. The card is
// scaled to fit the widget and centered; the wheel pinches the selection.
type CardCanvas struct {
	widget.BaseWidget

	ed       *editor.Editor
	measurer *textlayout.Measurer
	log      *slog.Logger

	mu       sync.Mutex
	locked   bool // viewport lock held by an edit session
	down     bool
	lastPos  fyne.Position
	hideEdit string // element drawn by the edit overlay instead
}

// NewCardCanvas binds a canvas to ed. Attach it before the editor receives
// input so Lock/Unlock reach it.
func NewCardCanvas(ed *editor.Editor, m *textlayout.Measurer) *CardCanvas {
	if m == nil {
		m = textlayout.NewMeasurer(nil)
	}
	c := &CardCanvas{ed: ed, measurer: m, log: applog.WithComponent("ui")}
	c.ExtendBaseWidget(c)
	return c
}

// Lock and Unlock implement textedit.Viewport: wheel pinching is suspended
// while the user types.
func (c *CardCanvas) Lock() {
	c.mu.Lock()
	c.locked = true
	c.mu.Unlock()
}

func (c *CardCanvas) Unlock() {
	c.mu.Lock()
	c.locked = false
	c.mu.Unlock()
}

func (c *CardCanvas) isLocked() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.locked
}

// SetEditor rebinds the canvas, e.g. after a template reload.
func (c *CardCanvas) SetEditor(ed *editor.Editor) {
	c.ed = ed
	c.Refresh()
}

// HideWhileEditing hides the element the inline edit overlay is drawing.
func (c *CardCanvas) HideWhileEditing(id string) {
	c.hideEdit = id
	c.Refresh()
}

// origin returns the screen position of the card's top-left and the
// canvas-to-screen scale.
func (c *CardCanvas) origin() (fyne.Position, float32) {
	if c.ed == nil {
		return fyne.Position{}, 1
	}
	cv := c.ed.Canvas()
	size := c.Size()
	if cv.Width <= 0 || cv.Height <= 0 || size.Width <= 0 || size.Height <= 0 {
		return fyne.Position{}, 1
	}
	s := min(size.Width/float32(cv.Width), size.Height/float32(cv.Height)) * 0.95
	return fyne.NewPos((size.Width-float32(cv.Width)*s)/2, (size.Height-float32(cv.Height)*s)/2), s
}

func (c *CardCanvas) toCanvas(pos fyne.Position) geometry.Pt {
	o, s := c.origin()
	return geometry.Pt{X: float64((pos.X - o.X) / s), Y: float64((pos.Y - o.Y) / s)}
}

func (c *CardCanvas) toScreen(p geometry.Pt) fyne.Position {
	o, s := c.origin()
	return fyne.NewPos(o.X+float32(p.X)*s, o.Y+float32(p.Y)*s)
}

// ScreenRect maps a canvas rect to widget coordinates.
func (c *CardCanvas) ScreenRect(r geometry.Rect) (fyne.Position, fyne.Size) {
	_, s := c.origin()
	return c.toScreen(r.Min()), fyne.NewSize(float32(r.W)*s, float32(r.H)*s)
}

func (c *CardCanvas) MouseDown(e *desktop.MouseEvent) {
	if e.Button != desktop.MouseButtonPrimary {
		return
	}
	c.down = true
	c.lastPos = e.Position
	c.ed.PointerDown(0, c.toCanvas(e.Position))
	c.Refresh()
}

func (c *CardCanvas) MouseUp(e *desktop.MouseEvent) {
	if !c.down {
		return
	}
	c.down = false
	c.ed.PointerUp(0, c.toCanvas(e.Position))
	c.Refresh()
}

func (c *CardCanvas) Dragged(e *fyne.DragEvent) {
	if !c.down {
		return
	}
	c.lastPos = e.Position
	c.ed.PointerMove(0, c.toCanvas(e.Position))
	c.Refresh()
}

func (c *CardCanvas) DragEnd() {
	if !c.down {
		return
	}
	c.down = false
	c.ed.PointerUp(0, c.toCanvas(c.lastPos))
	c.Refresh()
}

// Scrolled feeds wheel steps to the editor as one pinch of the selected
// element; the editor commits once the wheel settles.
func (c *CardCanvas) Scrolled(e *fyne.ScrollEvent) {
	if c.isLocked() {
		return
	}
	id := c.ed.State().SelectedID
	if id == "" || e.Scrolled.DY == 0 {
		return
	}
	f := 1 + float64(e.Scrolled.DY)*0.002
	if f < 0.5 {
		f = 0.5
	}
	if err := c.ed.WheelPinch(id, f); err != nil {
		c.log.Warn("wheel pinch dropped", slog.String("id", id), slog.Any("err", err))
		return
	}
	c.Refresh()
}

func (c *CardCanvas) MinSize() fyne.Size { return fyne.NewSize(320, 400) }

func (c *CardCanvas) CreateRenderer() fyne.WidgetRenderer {
	bg := canvas.NewRectangle(color.RGBA{R: 30, G: 30, B: 34, A: 255})
	card := canvas.NewRectangle(color.White)
	card.StrokeColor = color.RGBA{R: 20, G: 20, B: 20, A: 255}
	card.StrokeWidth = 1
	r := &cardRenderer{c: c, bg: bg, card: card}
	r.Refresh()
	return r
}

type cardRenderer struct {
	c       *CardCanvas
	bg      *canvas.Rectangle
	card    *canvas.Rectangle
	objects []fyne.CanvasObject
}

func (r *cardRenderer) Destroy()                     {}
func (r *cardRenderer) Objects() []fyne.CanvasObject { return r.objects }
func (r *cardRenderer) MinSize() fyne.Size           { return r.c.MinSize() }
func (r *cardRenderer) Layout(fyne.Size)             { r.rebuild() }

func (r *cardRenderer) Refresh() {
	r.rebuild()
	canvas.Refresh(r.c)
}

// rebuild recreates the text and overlay objects from the editor state.
func (r *cardRenderer) rebuild() {
	c := r.c
	size := c.Size()
	r.bg.Resize(size)
	r.bg.Move(fyne.NewPos(0, 0))
	if c.ed == nil {
		r.objects = []fyne.CanvasObject{r.bg}
		return
	}
	cv := c.ed.Canvas()
	pos, sz := c.ScreenRect(geometry.R(0, 0, cv.Width, cv.Height))
	r.card.Move(pos)
	r.card.Resize(sz)
	objs := []fyne.CanvasObject{r.bg, r.card}

	_, scale := c.origin()
	st := c.ed.State()
	pid, prev, dragging := c.ed.Preview()
	for _, comp := range c.ed.Components() {
		if comp.ID == c.hideEdit && st.EditingID == comp.ID {
			continue
		}
		bounds := c.ed.Bounds(comp)
		if dragging && pid == comp.ID {
			bounds = transformRect(prev.Transform, bounds)
		}
		objs = append(objs, r.textObjects(comp, bounds, scale)...)
		if comp.ID == st.SelectedID {
			objs = append(objs, selectionObjects(c, bounds, st.EditingID == comp.ID)...)
		}
	}
	for _, g := range c.ed.Guides() {
		ln := canvas.NewLine(color.RGBA{R: 255, G: 0, B: 128, A: 255})
		ln.StrokeWidth = 1
		ln.Position1 = c.toScreen(g.From)
		ln.Position2 = c.toScreen(g.To)
		objs = append(objs, ln)
	}
	r.objects = objs
}

func (r *cardRenderer) textObjects(comp domain.Component, b geometry.Rect, scale float32) []fyne.CanvasObject {
	s := comp.Style
	// k is the live scale of a pinch preview; layout stays at the stored width
	k := 1.0
	rw := geometry.ResolveWidth(s, r.c.ed.Canvas())
	if rw > 0 && b.W > 0 {
		k = b.W / rw
	}
	fs := float64(s.EffectiveFontSize()) * k
	lh := s.LineHeight.Pixels(s.EffectiveFontSize()) * k
	col := export.ParseColor(s.Color, color.RGBA{A: 255})
	box := r.c.measurer.Layout(comp.Content, s, rw)
	bold := textlayout.SpecFor(s).Weight >= 600

	var out []fyne.CanvasObject
	for i, ln := range box.Lines {
		t := canvas.NewText(ln.Text, col)
		t.TextSize = float32(fs) * scale
		t.TextStyle = fyne.TextStyle{Bold: bold}
		x := b.X
		switch s.EffectiveAlign() {
		case domain.AlignCenter:
			x += (b.W - ln.Width*k) / 2
		case domain.AlignRight:
			x += b.W - ln.Width*k
		}
		t.Move(r.c.toScreen(geometry.Pt{X: x, Y: b.Y + float64(i)*lh + (lh-fs)/2}))
		out = append(out, t)
	}
	return out
}

func selectionObjects(c *CardCanvas, b geometry.Rect, editing bool) []fyne.CanvasObject {
	accent := color.RGBA{R: 0, G: 170, B: 255, A: 255}
	pos, sz := c.ScreenRect(b)
	box := canvas.NewRectangle(color.Transparent)
	box.StrokeColor = accent
	box.StrokeWidth = 1
	box.Move(pos)
	box.Resize(sz)
	out := []fyne.CanvasObject{box}
	if editing {
		return out
	}
	const h = float32(editor.HandleHalfSize)
	for _, corner := range []geometry.Corner{geometry.TopLeft, geometry.TopRight, geometry.BottomRight, geometry.BottomLeft} {
		p := c.toScreen(b.Point(corner))
		hr := canvas.NewRectangle(accent)
		hr.Move(fyne.NewPos(p.X-h/2, p.Y-h/2))
		hr.Resize(fyne.NewSize(h, h))
		out = append(out, hr)
	}
	return out
}

func transformRect(m geometry.Affine2D, r geometry.Rect) geometry.Rect {
	a := m.Apply(r.Min())
	b := m.Apply(r.Max())
	return geometry.R(min(a.X, b.X), min(a.Y, b.Y), abs(b.X-a.X), abs(b.Y-a.Y))
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
