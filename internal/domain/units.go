/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package domain

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Documented fallbacks for malformed or missing style values.
const (
	DefaultFontSize        = 16
	DefaultLineHeightRatio = 1.6
)

// ErrMalformed is returned by the Parse helpers alongside a usable fallback.
var ErrMalformed = errors.New("malformed style value")

// LengthKind tells how a Length is to be resolved against the canvas.
type LengthKind uint8

const (
	LengthUnset LengthKind = iota
	LengthPx
	LengthPercent
	LengthCentered // horizontal centering sentinel, only meaningful for Left
	LengthFull     // full canvas width, only meaningful for Width
)

// Length is a CSS-like length: "120px", "50%", "centered", "full" or unset.
type Length struct {
	Kind  LengthKind
	Value float64
}

func Px(v float64) Length      { return Length{Kind: LengthPx, Value: v} }
func Percent(v float64) Length { return Length{Kind: LengthPercent, Value: v} }
func Centered() Length         { return Length{Kind: LengthCentered} }
func Full() Length             { return Length{Kind: LengthFull} }

func (l Length) IsSet() bool { return l.Kind != LengthUnset }

func (l Length) String() string {
	switch l.Kind {
	case LengthPx:
		return formatNum(l.Value) + "px"
	case LengthPercent:
		return formatNum(l.Value) + "%"
	case LengthCentered:
		return "centered"
	case LengthFull:
		return "full"
	}
	return ""
}

// ParseLength reads the CSS-like wire form. Bare numbers are pixels. An empty
// string is unset. On malformed input it returns an unset Length and
// ErrMalformed so callers fall back to the resolution default.
func ParseLength(s string) (Length, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	switch s {
	case "":
		return Length{}, nil
	case "centered", "center":
		return Centered(), nil
	case "full", "100%w":
		return Full(), nil
	}
	if v, ok := strings.CutSuffix(s, "%"); ok {
		f, err := parseFinite(v)
		if err != nil {
			return Length{}, fmt.Errorf("%w: length %q", ErrMalformed, s)
		}
		return Percent(f), nil
	}
	v, _ := strings.CutSuffix(s, "px")
	f, err := parseFinite(v)
	if err != nil {
		return Length{}, fmt.Errorf("%w: length %q", ErrMalformed, s)
	}
	return Px(f), nil
}

// ParseFontSize accepts "24", "24px" or "24.4px" and rounds to whole pixels.
// Malformed or non-positive values yield DefaultFontSize.
func ParseFontSize(s string) (int, error) {
	v, _ := strings.CutSuffix(strings.TrimSpace(strings.ToLower(s)), "px")
	f, err := parseFinite(v)
	if err != nil || f <= 0 {
		return DefaultFontSize, fmt.Errorf("%w: fontSize %q", ErrMalformed, s)
	}
	return int(math.Round(f)), nil
}

// LineHeight is either a unitless ratio of the font size or absolute pixels.
// The zero value is unset.
type LineHeight struct {
	Value float64
	Px    bool
}

func Ratio(v float64) LineHeight  { return LineHeight{Value: v} }
func LinePx(v float64) LineHeight { return LineHeight{Value: v, Px: true} }
func (lh LineHeight) IsSet() bool { return lh.Value > 0 }
func (lh LineHeight) String() string {
	if !lh.IsSet() {
		return ""
	}
	if lh.Px {
		return formatNum(lh.Value) + "px"
	}
	return formatNum(lh.Value)
}

// Pixels resolves the line height for the given font size.
func (lh LineHeight) Pixels(fontSize int) float64 {
	if fontSize <= 0 {
		fontSize = DefaultFontSize
	}
	switch {
	case !lh.IsSet():
		return DefaultLineHeightRatio * float64(fontSize)
	case lh.Px:
		return lh.Value
	}
	return lh.Value * float64(fontSize)
}

// ParseLineHeight reads "1.6" (ratio) or "32px". Malformed or non-positive
// values fall back to the default ratio.
func ParseLineHeight(s string) (LineHeight, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return LineHeight{}, nil
	}
	if v, ok := strings.CutSuffix(s, "px"); ok {
		f, err := parseFinite(v)
		if err == nil && f > 0 {
			return LinePx(f), nil
		}
	} else if f, err := parseFinite(s); err == nil && f > 0 {
		return Ratio(f), nil
	}
	return Ratio(DefaultLineHeightRatio), fmt.Errorf("%w: lineHeight %q", ErrMalformed, s)
}

// Align is the horizontal text alignment inside an element box.
type Align string

const (
	AlignLeft   Align = "left"
	AlignCenter Align = "center"
	AlignRight  Align = "right"
)

func (a Align) Valid() bool {
	return a == AlignLeft || a == AlignCenter || a == AlignRight
}

func parseFinite(s string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("not finite: %v", f)
	}
	return f, nil
}

func formatNum(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }
