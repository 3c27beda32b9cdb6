/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package export renders a card's component list to SVG, PDF and PNG. All
// three share one layout pass so text wraps identically in every format.
package export

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"cardcanvas/internal/domain"
	"cardcanvas/internal/geometry"
	"cardcanvas/internal/textlayout"
)

// Options controls rendering. Zero values select defaults.
type Options struct {
	// Guides draws element bounds and the canvas center guides.
	Guides bool
	// Background is a CSS color; defaults to white.
	Background string
	// Scale multiplies the raster size of PNG output.
	Scale float64
	// Measurer lays out text; defaults to textlayout.NewMeasurer(nil).
	Measurer *textlayout.Measurer
}

func (o Options) withDefaults() Options {
	if o.Background == "" {
		o.Background = "#ffffff"
	}
	if o.Scale <= 0 {
		o.Scale = 1
	}
	if o.Measurer == nil {
		o.Measurer = textlayout.NewMeasurer(nil)
	}
	return o
}

type placedLine struct {
	Text     string
	X        float64
	Baseline float64
	Width    float64
}

type item struct {
	ID       string
	Bounds   geometry.Rect
	Lines    []placedLine
	FontSize float64
	Family   string
	Bold     bool
	Color    color.RGBA
}

type page struct {
	Canvas     domain.Canvas
	Background color.RGBA
	Items      []item
}

func layoutPage(cv domain.Canvas, cs []domain.Component, opt Options) page {
	pg := page{Canvas: cv, Background: ParseColor(opt.Background, color.RGBA{255, 255, 255, 255})}
	for _, c := range cs {
		s := c.Style
		fs := float64(s.EffectiveFontSize())
		lh := s.LineHeight.Pixels(s.EffectiveFontSize())
		r := geometry.Bounds(c, cv, opt.Measurer)
		box := opt.Measurer.Layout(c.Content, s, r.W)
		it := item{
			ID:       c.ID,
			Bounds:   r,
			FontSize: fs,
			Family:   s.FontFamily,
			Bold:     textlayout.SpecFor(s).Weight >= 600,
			Color:    ParseColor(s.Color, color.RGBA{0, 0, 0, 255}),
		}
		for i, ln := range box.Lines {
			x := r.X
			switch s.EffectiveAlign() {
			case domain.AlignCenter:
				x += (r.W - ln.Width) / 2
			case domain.AlignRight:
				x += r.W - ln.Width
			}
			// glyphs sit centered in the line box; 0.8em approximates the ascent
			base := r.Y + float64(i)*lh + (lh-fs)/2 + 0.8*fs
			it.Lines = append(it.Lines, placedLine{Text: ln.Text, X: x, Baseline: base, Width: ln.Width})
		}
		pg.Items = append(pg.Items, it)
	}
	return pg
}

var namedColors = map[string]color.RGBA{
	"black":       {0, 0, 0, 255},
	"white":       {255, 255, 255, 255},
	"red":         {255, 0, 0, 255},
	"green":       {0, 128, 0, 255},
	"blue":        {0, 0, 255, 255},
	"gray":        {128, 128, 128, 255},
	"grey":        {128, 128, 128, 255},
	"transparent": {0, 0, 0, 0},
}

// ParseColor reads #rgb, #rrggbb, rgb(r,g,b) and a few named colors. Anything
// else yields fallback.
func ParseColor(s string, fallback color.RGBA) color.RGBA {
	s = strings.ToLower(strings.TrimSpace(s))
	if c, ok := namedColors[s]; ok {
		return c
	}
	if hex, ok := strings.CutPrefix(s, "#"); ok {
		if len(hex) == 3 {
			hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
		}
		if len(hex) != 6 {
			return fallback
		}
		v, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return fallback
		}
		return color.RGBA{uint8(v >> 16), uint8(v >> 8), uint8(v), 255}
	}
	if inner, ok := strings.CutPrefix(s, "rgb("); ok {
		parts := strings.Split(strings.TrimSuffix(inner, ")"), ",")
		if len(parts) != 3 {
			return fallback
		}
		var out [3]uint8
		for i, p := range parts {
			n, err := strconv.Atoi(strings.TrimSpace(p))
			if err != nil || n < 0 || n > 255 {
				return fallback
			}
			out[i] = uint8(n)
		}
		return color.RGBA{out[0], out[1], out[2], 255}
	}
	return fallback
}

func hexColor(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
