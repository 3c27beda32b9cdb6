/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package gesture

import (
	"log/slog"

	"cardcanvas/internal/domain"
	"cardcanvas/internal/geometry"
	applog "cardcanvas/internal/log"
	"cardcanvas/internal/snap"
)

// Kind is the kind of manipulation a session performs.
type Kind uint8

const (
	KindDrag Kind = iota
	KindScale
)

func (k Kind) String() string {
	if k == KindScale {
		return "scale"
	}
	return "drag"
}

// Options configures a transform session.
type Options struct {
	SnapThreshold float64 // negative disables snapping
	Limits        Limits
	Measurer      geometry.Measurer
}

// Preview is the transient visual state of a session. It is never written to
// the component.
type Preview struct {
	Transform geometry.Affine2D
	Position  geometry.Pt // live top-left in canvas space
	Scale     float64
	Guides    []snap.GuideLine
}

// Session lives for one pointer-down to pointer-up cycle on one element. It
// snapshots the element's absolute origin and style at start, exposes a live
// preview, and produces at most one committed style.
type Session struct {
	ElementID   string
	Kind        Kind
	Origin      geometry.Pt
	OriginStyle domain.Style

	canvas  domain.Canvas
	box     geometry.Rect
	opts    Options
	preview Preview
	done    bool
	log     *slog.Logger
}

func begin(c domain.Component, cv domain.Canvas, k Kind, opts Options) *Session {
	if opts.SnapThreshold == 0 {
		opts.SnapThreshold = snap.DefaultThreshold
	}
	box := geometry.Bounds(c, cv, opts.Measurer)
	s := &Session{
		ElementID:   c.ID,
		Kind:        k,
		Origin:      box.Min(),
		OriginStyle: c.Style,
		canvas:      cv,
		box:         box,
		opts:        opts,
		log:         applog.WithComponent("gesture").With(slog.String("element", c.ID), slog.String("kind", k.String())),
	}
	s.preview = Preview{Transform: geometry.Identity, Position: s.Origin, Scale: 1}
	s.log.Debug("session started", "x", s.Origin.X, "y", s.Origin.Y)
	return s
}

// BeginDrag starts a drag session. Origin is the element's resolved absolute
// top-left, so centered and percent positions become pixels.
func BeginDrag(c domain.Component, cv domain.Canvas, opts Options) *Session {
	return begin(c, cv, KindDrag, opts)
}

// BeginScale starts a scale session for a pinch or corner resize.
func BeginScale(c domain.Component, cv domain.Canvas, opts Options) *Session {
	return begin(c, cv, KindScale, opts)
}

// Preview returns the current live preview.
func (s *Session) Preview() Preview { return s.preview }

// Done reports whether the session was committed or cancelled.
func (s *Session) Done() bool { return s.done }

// MoveTo updates a drag with the cumulative pointer delta since the start.
// The element center snaps to the canvas guides and top stays inside the
// canvas.
func (s *Session) MoveTo(delta geometry.Pt) Preview {
	if s.done || s.Kind != KindDrag {
		return s.preview
	}
	r := s.box
	r.X, r.Y = s.Origin.X+delta.X, s.Origin.Y+delta.Y
	var guides []snap.GuideLine
	if s.opts.SnapThreshold > 0 {
		r, guides = snap.SnapRect(r, s.canvas, s.opts.SnapThreshold)
	}
	r.Y = geometry.Clamp(r.Y, 0, s.canvas.Height)
	pos := r.Min()
	s.preview = Preview{
		Transform: geometry.Translate(pos.X-s.Origin.X, pos.Y-s.Origin.Y),
		Position:  pos,
		Scale:     1,
		Guides:    guides,
	}
	return s.preview
}

// ScaleTo updates a scale session with the factor relative to the start.
// Invalid factors are kept and turn the commit into a no-op.
func (s *Session) ScaleTo(f float64) Preview {
	if s.done || s.Kind != KindScale {
		return s.preview
	}
	t := geometry.Identity
	if geometry.Finite(f) && f > 0 {
		t = geometry.ScaleAbout(f, s.box.Center())
	}
	s.preview = Preview{Transform: t, Position: s.Origin, Scale: f}
	return s.preview
}

// Commit ends the session and returns the style to store. ok is false when
// nothing should be written. A session commits at most once.
func (s *Session) Commit() (style domain.Style, ok bool) {
	if s.done {
		return s.OriginStyle, false
	}
	s.done = true
	p := s.preview
	s.preview = Preview{Transform: geometry.Identity, Position: s.Origin, Scale: 1}
	switch s.Kind {
	case KindDrag:
		style = s.OriginStyle
		style.Left = domain.Px(geometry.FloatRound(p.Position.X, 2))
		style.Top = domain.Px(geometry.FloatRound(p.Position.Y, 2))
		s.log.Debug("drag committed", "left", style.Left.Value, "top", style.Top.Value)
		return style, true
	default:
		style, ok = CommitScale(s.OriginStyle, s.canvas, p.Scale, s.opts.Limits)
		if !ok {
			s.log.Debug("scale ignored", "factor", p.Scale)
			return s.OriginStyle, false
		}
		s.log.Debug("scale committed", "factor", p.Scale, "fontSize", style.FontSize, "width", style.Width.Value)
		return style, true
	}
}

// Cancel ends the session without a commit and resets the preview.
func (s *Session) Cancel() {
	if s.done {
		return
	}
	s.done = true
	s.preview = Preview{Transform: geometry.Identity, Position: s.Origin, Scale: 1}
	s.log.Debug("session cancelled")
}
