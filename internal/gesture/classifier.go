/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package gesture turns raw pointer input on a canvas element into one of
// three outcomes (tap, drag or scale) and runs the transform session that
// previews and finally commits the manipulation.
package gesture

import (
	"math"

	"cardcanvas/internal/geometry"
)

// DefaultThreshold is the per-axis distance in pixels a pointer may travel
// before a press stops being a tap.
const DefaultThreshold = 5.0

// Classification is the running verdict on a pointer sequence.
type Classification uint8

const (
	None Classification = iota
	Drag
	Scale
)

func (c Classification) String() string {
	switch c {
	case Drag:
		return "drag"
	case Scale:
		return "scale"
	}
	return "none"
}

// Outcome is what a completed pointer sequence amounted to.
type Outcome uint8

const (
	OutcomeNone Outcome = iota // no pointer was down, or a handle was pressed and released in place
	OutcomeTap
	OutcomeDrag
	OutcomeScale
)

func (o Outcome) String() string {
	switch o {
	case OutcomeTap:
		return "tap"
	case OutcomeDrag:
		return "drag"
	case OutcomeScale:
		return "scale"
	}
	return "none"
}

// Classifier disambiguates tap, drag and scale for a single element. It is
// not safe for concurrent use.
type Classifier struct {
	threshold float64

	down  bool
	class Classification
	start geometry.Pt
	last  geometry.Pt

	// pinch
	initialDist float64
	// corner handle
	handle      bool
	anchor      geometry.Pt
	cornerStart float64
}

// NewClassifier returns a classifier using the given per-axis threshold. A
// non-positive threshold selects DefaultThreshold.
func NewClassifier(threshold float64) *Classifier {
	if threshold <= 0 || !geometry.Finite(threshold) {
		threshold = DefaultThreshold
	}
	return &Classifier{threshold: threshold}
}

func (c *Classifier) Threshold() float64    { return c.threshold }
func (c *Classifier) State() Classification { return c.class }
func (c *Classifier) Active() bool          { return c.down }
func (c *Classifier) Start() geometry.Pt    { return c.start }
func (c *Classifier) Delta() geometry.Pt    { return c.last.Sub(c.start) }

func (c *Classifier) reset(p geometry.Pt, k Classification) {
	*c = Classifier{threshold: c.threshold, down: true, class: k, start: p, last: p}
}

// Down starts a new sequence at p.
func (c *Classifier) Down(p geometry.Pt) { c.reset(p, None) }

// DownOnHandle starts a sequence on a corner resize handle; anchor is the
// opposite corner. The sequence becomes a scale once the pointer leaves the
// tap threshold, and ends with no outcome otherwise.
func (c *Classifier) DownOnHandle(p, anchor geometry.Pt) {
	c.reset(p, None)
	c.handle = true
	c.anchor = anchor
	c.cornerStart = geometry.Dist(p, anchor)
}

// Move records a pointer move and returns the classification after it. The
// first move exceeding the threshold on either axis promotes None to Drag, or
// to Scale on a corner handle.
func (c *Classifier) Move(p geometry.Pt) Classification {
	if !c.down {
		return None
	}
	c.last = p
	if c.class == None {
		if math.Abs(p.X-c.start.X) > c.threshold || math.Abs(p.Y-c.start.Y) > c.threshold {
			c.class = Drag
			if c.handle {
				c.class = Scale
			}
		}
	}
	return c.class
}

// SecondPointer reports a second pointer landing on the same element. It
// starts a pinch only while the sequence is still unclassified.
func (c *Classifier) SecondPointer(p0, p1 geometry.Pt) bool {
	if !c.down || c.class != None || c.handle {
		return false
	}
	d := geometry.Dist(p0, p1)
	if d <= 0 {
		return false
	}
	c.class = Scale
	c.initialDist = d
	return true
}

// PinchFactor is dist(p0,p1) relative to the distance when the pinch began.
func (c *Classifier) PinchFactor(p0, p1 geometry.Pt) float64 {
	if c.initialDist <= 0 {
		return 1
	}
	return geometry.Dist(p0, p1) / c.initialDist
}

// CornerFactor is the handle's distance to the anchor relative to where the
// handle was grabbed.
func (c *Classifier) CornerFactor(p geometry.Pt) float64 {
	c.last = p
	if c.cornerStart <= 0 {
		return 1
	}
	return geometry.Dist(p, c.anchor) / c.cornerStart
}

// Up ends the sequence and reports its outcome.
func (c *Classifier) Up() Outcome {
	if !c.down {
		return OutcomeNone
	}
	k, handle := c.class, c.handle
	*c = Classifier{threshold: c.threshold}
	if k == None && handle {
		return OutcomeNone
	}
	switch k {
	case Drag:
		return OutcomeDrag
	case Scale:
		return OutcomeScale
	}
	return OutcomeTap
}
