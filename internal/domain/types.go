/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package domain defines the data model shared by the canvas engine: text
// components, their style records, the canvas coordinate space and the
// template record the engine is seeded from.
//
// Every type here is a value type. A Component is never mutated in place;
// changes produce a new value which the store swaps in wholesale.
package domain

// ComponentType enumerates the kinds of positioned blocks. Only text exists.
type ComponentType string

const TypeText ComponentType = "text"

// Component is a positioned text block on the canvas.
// Content holds plain text with '\n' separating lines.
type Component struct {
	ID      string        `json:"id"`
	Type    ComponentType `json:"type"`
	Content string        `json:"content"`
	Style   Style         `json:"style"`
}

// WithStyle returns a copy of c carrying style s.
func (c Component) WithStyle(s Style) Component {
	c.Style = s
	return c
}

// WithContent returns a copy of c carrying the given plain text.
func (c Component) WithContent(text string) Component {
	c.Content = text
	return c
}

// AspectRatio is the x:y ratio of the card, e.g. {5, 7}.
type AspectRatio struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Template is the fully parsed record handed to the engine by a loader.
type Template struct {
	AspectRatio AspectRatio `json:"aspectRatio"`
	Components  []Component `json:"components"`
}

// Canvas is the fixed-aspect coordinate space all positions are expressed in.
// GuidesX/GuidesY override the default center guides when non-empty.
type Canvas struct {
	Width   float64   `json:"width"`
	Height  float64   `json:"height"`
	GuidesX []float64 `json:"guidesX,omitempty"`
	GuidesY []float64 `json:"guidesY,omitempty"`
}

// CanvasFromAspect derives a canvas of the given base width. A degenerate
// ratio yields a square canvas.
func CanvasFromAspect(ar AspectRatio, baseWidth float64) Canvas {
	if baseWidth <= 0 {
		baseWidth = 500
	}
	if ar.X <= 0 || ar.Y <= 0 {
		return Canvas{Width: baseWidth, Height: baseWidth}
	}
	return Canvas{Width: baseWidth, Height: baseWidth * ar.Y / ar.X}
}

// CenterX is the default vertical guide position.
func (c Canvas) CenterX() float64 { return c.Width / 2 }

// CenterY is the default horizontal guide position.
func (c Canvas) CenterY() float64 { return c.Height / 2 }
