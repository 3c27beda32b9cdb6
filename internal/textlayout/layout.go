/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package textlayout measures and line-breaks component text so the engine
// knows each element's box (for snapping and hit testing) and exporters know
// where each line goes. Measurement sits behind a Provider so tests run on
// the deterministic basicfont face and hosts can plug in real OpenType fonts.
package textlayout

import (
	"strconv"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"

	"cardcanvas/internal/domain"
)

// FontSpec describes a requested font.
type FontSpec struct {
	Family string  // logical family name
	SizePx float64 // em size in pixels
	Weight int     // 100..900
	Italic bool
}

// Metrics provides font metrics in pixels for the resolved face. Size is the
// em size the face was built for; advances are scaled by SizePx/Size.
type Metrics struct {
	Ascent, Descent, LineGap float64
	Size                     float64
}

// Provider maps FontSpec to a concrete font.Face.
type Provider interface {
	Resolve(FontSpec) (font.Face, Metrics)
}

// BasicProvider uses x/image/basicfont Face7x13 for deterministic tests.
type BasicProvider struct{}

func (BasicProvider) Resolve(FontSpec) (font.Face, Metrics) {
	f := basicfont.Face7x13
	m := f.Metrics()
	return f, Metrics{
		Ascent:  float64(m.Ascent.Round()),
		Descent: float64(m.Descent.Round()),
		LineGap: float64(m.Height.Round() - m.Ascent.Round() - m.Descent.Round()),
		Size:    13,
	}
}

// Line is a single laid out line.
type Line struct {
	Text  string
	Width float64
}

// TextBox is the result of laying out text into a box width.
type TextBox struct {
	Lines []Line
	Width float64
}

// SpecFor derives the font request of a style.
func SpecFor(s domain.Style) FontSpec {
	w := 400
	switch strings.ToLower(s.FontWeight) {
	case "bold":
		w = 700
	case "", "normal":
	default:
		if n, err := strconv.Atoi(s.FontWeight); err == nil {
			w = n
		}
	}
	return FontSpec{Family: s.FontFamily, SizePx: float64(s.EffectiveFontSize()), Weight: w}
}

// Measurer lays out component text with word wrapping. It satisfies the
// engine's Measurer interface.
type Measurer struct{ Provider Provider }

// NewMeasurer returns a measurer; a nil provider selects BasicProvider.
func NewMeasurer(p Provider) *Measurer {
	if p == nil {
		p = BasicProvider{}
	}
	return &Measurer{Provider: p}
}

// Height is the number of laid out lines times the style's line height.
func (m *Measurer) Height(text string, style domain.Style, width float64) float64 {
	box := m.Layout(text, style, width)
	return float64(len(box.Lines)) * style.LineHeight.Pixels(style.EffectiveFontSize())
}

// Layout breaks text into lines no wider than maxWidth, breaking on spaces
// and hard line breaks. A word wider than maxWidth gets a line of its own.
// maxWidth <= 0 disables wrapping.
func (m *Measurer) Layout(text string, style domain.Style, maxWidth float64) TextBox {
	spec := SpecFor(style)
	face, met := m.Provider.Resolve(spec)
	scale := 1.0
	if met.Size > 0 {
		scale = spec.SizePx / met.Size
	}
	d := &font.Drawer{Face: face}
	measure := func(s string) float64 {
		if s == "" {
			return 0
		}
		n := float64(len([]rune(s)))
		return float64(d.MeasureString(s))/64*scale + style.LetterSpacing*(n-1)
	}
	space := measure(" ") + style.LetterSpacing

	var box TextBox
	add := func(l Line) {
		box.Lines = append(box.Lines, l)
		if l.Width > box.Width {
			box.Width = l.Width
		}
	}
	for _, para := range strings.Split(text, "\n") {
		cur := Line{}
		for _, word := range strings.Split(para, " ") {
			w := measure(word)
			switch {
			case cur.Text == "" && cur.Width == 0:
				cur = Line{Text: word, Width: w}
			case maxWidth > 0 && cur.Width+space+w > maxWidth:
				add(cur)
				cur = Line{Text: word, Width: w}
			default:
				cur.Text += " " + word
				cur.Width += space + w
			}
		}
		add(cur)
	}
	return box
}
