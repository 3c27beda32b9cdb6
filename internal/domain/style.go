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
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	applog "cardcanvas/internal/log"
)

// Style is the authoritative visual record of a component. It is replaced
// wholesale on every change.
type Style struct {
	Left          Length
	Top           Length
	Width         Length
	FontSize      int
	LineHeight    LineHeight
	LetterSpacing float64
	FontFamily    string
	FontWeight    string
	TextAlign     Align
	Color         string
}

// EffectiveFontSize returns the font size or the default when unset.
func (s Style) EffectiveFontSize() int {
	if s.FontSize <= 0 {
		return DefaultFontSize
	}
	return s.FontSize
}

// EffectiveAlign returns the alignment or left when unset.
func (s Style) EffectiveAlign() Align {
	if s.TextAlign.Valid() {
		return s.TextAlign
	}
	return AlignLeft
}

type styleWire struct {
	Left          json.RawMessage `json:"left,omitempty"`
	Top           json.RawMessage `json:"top,omitempty"`
	Width         json.RawMessage `json:"width,omitempty"`
	FontSize      json.RawMessage `json:"fontSize,omitempty"`
	LineHeight    json.RawMessage `json:"lineHeight,omitempty"`
	LetterSpacing json.RawMessage `json:"letterSpacing,omitempty"`
	FontFamily    string          `json:"fontFamily,omitempty"`
	FontWeight    json.RawMessage `json:"fontWeight,omitempty"`
	TextAlign     string          `json:"textAlign,omitempty"`
	Color         string          `json:"color,omitempty"`
}

// MarshalJSON writes the CSS-like wire form.
func (s Style) MarshalJSON() ([]byte, error) {
	w := struct {
		Left          string  `json:"left,omitempty"`
		Top           string  `json:"top,omitempty"`
		Width         string  `json:"width,omitempty"`
		FontSize      int     `json:"fontSize,omitempty"`
		LineHeight    any     `json:"lineHeight,omitempty"`
		LetterSpacing float64 `json:"letterSpacing,omitempty"`
		FontFamily    string  `json:"fontFamily,omitempty"`
		FontWeight    string  `json:"fontWeight,omitempty"`
		TextAlign     Align   `json:"textAlign,omitempty"`
		Color         string  `json:"color,omitempty"`
	}{
		Left:          s.Left.String(),
		Top:           s.Top.String(),
		Width:         s.Width.String(),
		FontSize:      s.FontSize,
		LetterSpacing: s.LetterSpacing,
		FontFamily:    s.FontFamily,
		FontWeight:    s.FontWeight,
		TextAlign:     s.TextAlign,
		Color:         s.Color,
	}
	if s.LineHeight.IsSet() {
		if s.LineHeight.Px {
			w.LineHeight = s.LineHeight.String()
		} else {
			w.LineHeight = s.LineHeight.Value
		}
	}
	return json.Marshal(w)
}

// UnmarshalJSON reads the wire form. Malformed values never fail decoding;
// they fall back to their documented defaults and are logged.
func (s *Style) UnmarshalJSON(data []byte) error {
	var w styleWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	var out Style
	var bad []string
	note := func(err error) {
		if err != nil {
			bad = append(bad, err.Error())
		}
	}
	var err error
	out.Left, err = ParseLength(rawScalar(w.Left))
	note(err)
	out.Top, err = ParseLength(rawScalar(w.Top))
	note(err)
	out.Width, err = ParseLength(rawScalar(w.Width))
	note(err)
	if fs := rawScalar(w.FontSize); fs != "" {
		out.FontSize, err = ParseFontSize(fs)
		note(err)
	}
	out.LineHeight, err = ParseLineHeight(rawScalar(w.LineHeight))
	note(err)
	if ls := rawScalar(w.LetterSpacing); ls != "" {
		v, _ := strings.CutSuffix(strings.TrimSpace(ls), "px")
		f, perr := parseFinite(v)
		if perr != nil {
			note(fmt.Errorf("%w: letterSpacing %q", ErrMalformed, ls))
		}
		out.LetterSpacing = f
	}
	out.FontFamily = w.FontFamily
	out.FontWeight = rawScalar(w.FontWeight)
	out.Color = w.Color
	if w.TextAlign != "" {
		a := Align(strings.ToLower(w.TextAlign))
		if a.Valid() {
			out.TextAlign = a
		} else {
			note(fmt.Errorf("%w: textAlign %q", ErrMalformed, w.TextAlign))
		}
	}
	if len(bad) > 0 {
		applog.WithComponent("domain").Warn("style values fell back to defaults", "issues", strings.Join(bad, "; "))
	}
	*s = out
	return nil
}

// rawScalar renders a JSON string or number as its textual content.
func rawScalar(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	if raw[0] == '"' {
		var str string
		if err := json.Unmarshal(raw, &str); err == nil {
			return str
		}
	}
	return string(raw)
}

// StylePatch carries a shallow partial update. Nil fields are left alone.
type StylePatch struct {
	Left          *Length
	Top           *Length
	Width         *Length
	FontSize      *int
	LineHeight    *LineHeight
	LetterSpacing *float64
	FontFamily    *string
	FontWeight    *string
	TextAlign     *Align
	Color         *string
}

// IsZero reports whether the patch changes nothing.
func (p StylePatch) IsZero() bool { return p == StylePatch{} }

// Merge returns s with every non-nil field of p applied.
func (s Style) Merge(p StylePatch) Style {
	if p.Left != nil {
		s.Left = *p.Left
	}
	if p.Top != nil {
		s.Top = *p.Top
	}
	if p.Width != nil {
		s.Width = *p.Width
	}
	if p.FontSize != nil {
		s.FontSize = *p.FontSize
	}
	if p.LineHeight != nil {
		s.LineHeight = *p.LineHeight
	}
	if p.LetterSpacing != nil {
		s.LetterSpacing = *p.LetterSpacing
	}
	if p.FontFamily != nil {
		s.FontFamily = *p.FontFamily
	}
	if p.FontWeight != nil {
		s.FontWeight = *p.FontWeight
	}
	if p.TextAlign != nil {
		s.TextAlign = *p.TextAlign
	}
	if p.Color != nil {
		s.Color = *p.Color
	}
	return s
}

// Keys lists the names of the fields the patch sets, in wire spelling.
func (p StylePatch) Keys() []string {
	var ks []string
	add := func(set bool, k string) {
		if set {
			ks = append(ks, k)
		}
	}
	add(p.Left != nil, "left")
	add(p.Top != nil, "top")
	add(p.Width != nil, "width")
	add(p.FontSize != nil, "fontSize")
	add(p.LineHeight != nil, "lineHeight")
	add(p.LetterSpacing != nil, "letterSpacing")
	add(p.FontFamily != nil, "fontFamily")
	add(p.FontWeight != nil, "fontWeight")
	add(p.TextAlign != nil, "textAlign")
	add(p.Color != nil, "color")
	return ks
}

// ParsePatch builds a patch from wire-form key/value pairs, as produced by a
// style panel or a script. Unknown keys are an error.
func ParsePatch(kv map[string]string) (StylePatch, error) {
	var p StylePatch
	for k, v := range kv {
		switch k {
		case "left", "top", "width":
			l, err := ParseLength(v)
			if err != nil {
				return StylePatch{}, err
			}
			switch k {
			case "left":
				p.Left = &l
			case "top":
				p.Top = &l
			default:
				p.Width = &l
			}
		case "fontSize":
			fs, err := ParseFontSize(v)
			if err != nil {
				return StylePatch{}, err
			}
			p.FontSize = &fs
		case "lineHeight":
			lh, err := ParseLineHeight(v)
			if err != nil {
				return StylePatch{}, err
			}
			p.LineHeight = &lh
		case "letterSpacing":
			raw, _ := strings.CutSuffix(v, "px")
			f, err := parseFinite(raw)
			if err != nil {
				return StylePatch{}, fmt.Errorf("%w: letterSpacing %q", ErrMalformed, v)
			}
			p.LetterSpacing = &f
		case "fontFamily":
			p.FontFamily = &v
		case "fontWeight":
			p.FontWeight = &v
		case "textAlign":
			a := Align(strings.ToLower(v))
			if !a.Valid() {
				return StylePatch{}, fmt.Errorf("%w: textAlign %q", ErrMalformed, v)
			}
			p.TextAlign = &a
		case "color":
			p.Color = &v
		default:
			return StylePatch{}, fmt.Errorf("unknown style key %q", k)
		}
	}
	return p, nil
}
