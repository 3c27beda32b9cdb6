/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package snap aligns a moving element to fixed guide coordinates.
// Snapping is UI-agnostic and deterministic; axes are handled independently.
package snap

import (
	"math"

	"cardcanvas/internal/domain"
	"cardcanvas/internal/geometry"
)

// DefaultThreshold is the maximum distance at which snapping occurs.
const DefaultThreshold = 5.0

// GuideLine describes a guide to render while an axis is snapped.
// Orientation is "vertical" (an x guide) or "horizontal" (a y guide).
type GuideLine struct {
	Orientation string
	Position    float64
	From        geometry.Pt
	To          geometry.Pt
}

// Snap returns the nearest guide within threshold of candidate, or candidate
// itself. Ties go to the guide listed first.
func Snap(candidate float64, guides []float64, threshold float64) float64 {
	v, _ := nearest(candidate, guides, threshold)
	return v
}

func nearest(candidate float64, guides []float64, threshold float64) (float64, bool) {
	best, bestDist, found := candidate, math.Inf(1), false
	for _, g := range guides {
		d := math.Abs(candidate - g)
		if d <= threshold && d < bestDist {
			best, bestDist, found = g, d, true
		}
	}
	return best, found
}

// CenterGuides returns the x and y guides of a canvas: the configured ones,
// or the canvas center lines.
func CenterGuides(cv domain.Canvas) (xs, ys []float64) {
	xs, ys = cv.GuidesX, cv.GuidesY
	if len(xs) == 0 {
		xs = []float64{cv.CenterX()}
	}
	if len(ys) == 0 {
		ys = []float64{cv.CenterY()}
	}
	return xs, ys
}

// SnapPoint snaps a point against the canvas guides and returns the guide
// lines of every snapped axis.
func SnapPoint(p geometry.Pt, cv domain.Canvas, threshold float64) (geometry.Pt, []GuideLine) {
	xs, ys := CenterGuides(cv)
	var lines []GuideLine
	out := p
	if x, ok := nearest(p.X, xs, threshold); ok {
		out.X = x
		lines = append(lines, GuideLine{
			Orientation: "vertical",
			Position:    x,
			From:        geometry.Pt{X: x},
			To:          geometry.Pt{X: x, Y: cv.Height},
		})
	}
	if y, ok := nearest(p.Y, ys, threshold); ok {
		out.Y = y
		lines = append(lines, GuideLine{
			Orientation: "horizontal",
			Position:    y,
			From:        geometry.Pt{Y: y},
			To:          geometry.Pt{X: cv.Width, Y: y},
		})
	}
	return out, lines
}

// SnapRect moves r so that its center snaps to the canvas guides.
func SnapRect(r geometry.Rect, cv domain.Canvas, threshold float64) (geometry.Rect, []GuideLine) {
	c := r.Center()
	sc, lines := SnapPoint(c, cv, threshold)
	r.X += sc.X - c.X
	r.Y += sc.Y - c.Y
	return r, lines
}
