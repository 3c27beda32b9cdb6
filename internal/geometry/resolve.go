/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package geometry

import (
	"strings"

	"cardcanvas/internal/domain"
)

// Measurer reports the rendered height of a text block laid out at width.
type Measurer interface {
	Height(text string, style domain.Style, width float64) float64
}

// LineMeasurer counts hard lines only and never wraps.
type LineMeasurer struct{}

func (LineMeasurer) Height(text string, style domain.Style, _ float64) float64 {
	n := strings.Count(text, "\n") + 1
	return float64(n) * style.LineHeight.Pixels(style.EffectiveFontSize())
}

// ResolveWidth turns the width length into pixels. Unset and full mean the
// canvas width.
func ResolveWidth(s domain.Style, cv domain.Canvas) float64 {
	switch s.Width.Kind {
	case domain.LengthPx:
		return s.Width.Value
	case domain.LengthPercent:
		return cv.Width * s.Width.Value / 100
	}
	return cv.Width
}

// ResolveLeft turns the left length into pixels. Centered places the box of
// width w in the middle of the canvas.
func ResolveLeft(s domain.Style, cv domain.Canvas, w float64) float64 {
	switch s.Left.Kind {
	case domain.LengthPx:
		return s.Left.Value
	case domain.LengthPercent:
		return cv.Width * s.Left.Value / 100
	case domain.LengthCentered:
		return (cv.Width - w) / 2
	}
	return 0
}

// ResolveTop turns the top length into pixels. Percent is of canvas height.
func ResolveTop(s domain.Style, cv domain.Canvas) float64 {
	switch s.Top.Kind {
	case domain.LengthPx:
		return s.Top.Value
	case domain.LengthPercent:
		return cv.Height * s.Top.Value / 100
	}
	return 0
}

// Bounds resolves the absolute box of a component. A nil measurer counts lines.
func Bounds(c domain.Component, cv domain.Canvas, m Measurer) Rect {
	if m == nil {
		m = LineMeasurer{}
	}
	w := ResolveWidth(c.Style, cv)
	return Rect{
		X: ResolveLeft(c.Style, cv, w),
		Y: ResolveTop(c.Style, cv),
		W: w,
		H: m.Height(c.Content, c.Style, w),
	}
}
