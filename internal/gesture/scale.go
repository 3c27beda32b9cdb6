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
	"math"

	"cardcanvas/internal/domain"
	"cardcanvas/internal/geometry"
)

// Limits bounds the values a scale commit may produce.
type Limits struct {
	FontMin  int
	FontMax  int
	MinWidth float64
}

// DefaultLimits are the drag-resize bounds.
var DefaultLimits = Limits{FontMin: 8, FontMax: 72, MinWidth: 50}

func (l Limits) orDefault() Limits {
	if l.FontMin <= 0 {
		l.FontMin = DefaultLimits.FontMin
	}
	if l.FontMax <= 0 {
		l.FontMax = DefaultLimits.FontMax
	}
	if l.MinWidth <= 0 {
		l.MinWidth = DefaultLimits.MinWidth
	}
	return l
}

// CommitScale applies scale factor s to the style snapshot taken when the
// gesture began. fontSize and width are rounded to whole pixels and clamped;
// a pixel lineHeight follows the font size ratio, a unitless one is kept.
// A factor that is not a finite positive number leaves the style untouched
// and reports false.
func CommitScale(origin domain.Style, cv domain.Canvas, s float64, lim Limits) (domain.Style, bool) {
	if !geometry.Finite(s) || s <= 0 {
		return origin, false
	}
	lim = lim.orDefault()
	fs0 := origin.EffectiveFontSize()
	w0 := geometry.ResolveWidth(origin, cv)

	fs1 := int(geometry.Clamp(math.Round(float64(fs0)*s), float64(lim.FontMin), float64(lim.FontMax)))
	maxW := cv.Width
	if maxW < lim.MinWidth {
		maxW = lim.MinWidth
	}
	w1 := geometry.Clamp(math.Round(w0*s), lim.MinWidth, maxW)

	out := origin
	out.FontSize = fs1
	out.Width = domain.Px(w1)
	if origin.LineHeight.IsSet() && origin.LineHeight.Px {
		out.LineHeight = domain.LinePx(geometry.FloatRound(origin.LineHeight.Value*float64(fs1)/float64(fs0), 1))
	}
	return out, true
}
