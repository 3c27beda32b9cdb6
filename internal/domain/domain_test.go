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
	"encoding/json"
	"errors"
	"testing"
)

func TestParseLength(t *testing.T) {
	cases := []struct {
		in   string
		want Length
	}{
		{"120px", Px(120)},
		{"120", Px(120)},
		{" 50% ", Percent(50)},
		{"centered", Centered()},
		{"full", Full()},
		{"", Length{}},
	}
	for _, c := range cases {
		got, err := ParseLength(c.in)
		if err != nil {
			t.Fatalf("ParseLength(%q) error: %v", c.in, err)
		}
		if got != c.want {
			t.Fatalf("ParseLength(%q) = %+v, want %+v", c.in, got, c.want)
		}
		if c.in != "" && c.want.Kind == LengthPx && got.String() != "120px" {
			t.Fatalf("String() = %q", got.String())
		}
	}
	if _, err := ParseLength("12qx"); !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}
}

func TestParseFontSizeFallback(t *testing.T) {
	if v, err := ParseFontSize("24px"); err != nil || v != 24 {
		t.Fatalf("got %d, %v", v, err)
	}
	v, err := ParseFontSize("huge")
	if !errors.Is(err, ErrMalformed) || v != DefaultFontSize {
		t.Fatalf("fallback got %d, %v", v, err)
	}
	if v, _ := ParseFontSize("-3"); v != DefaultFontSize {
		t.Fatalf("non-positive should fall back, got %d", v)
	}
}

func TestParseLineHeight(t *testing.T) {
	lh, err := ParseLineHeight("32px")
	if err != nil || lh != LinePx(32) {
		t.Fatalf("got %+v, %v", lh, err)
	}
	lh, err = ParseLineHeight("1.4")
	if err != nil || lh != Ratio(1.4) {
		t.Fatalf("got %+v, %v", lh, err)
	}
	lh, err = ParseLineHeight("tall")
	if !errors.Is(err, ErrMalformed) || lh != Ratio(DefaultLineHeightRatio) {
		t.Fatalf("fallback got %+v, %v", lh, err)
	}
	if px := Ratio(1.5).Pixels(20); px != 30 {
		t.Fatalf("ratio pixels = %v", px)
	}
	if px := LinePx(32).Pixels(20); px != 32 {
		t.Fatalf("px pixels = %v", px)
	}
}

func TestStyleJSONWireForm(t *testing.T) {
	src := `{"left":"centered","top":"40%","width":"300px","fontSize":"24px","lineHeight":1.2,
	"letterSpacing":"1.5px","fontFamily":"Georgia","fontWeight":700,"textAlign":"center","color":"#333"}`
	var s Style
	if err := json.Unmarshal([]byte(src), &s); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	want := Style{
		Left: Centered(), Top: Percent(40), Width: Px(300), FontSize: 24,
		LineHeight: Ratio(1.2), LetterSpacing: 1.5, FontFamily: "Georgia",
		FontWeight: "700", TextAlign: AlignCenter, Color: "#333",
	}
	if s != want {
		t.Fatalf("got %+v\nwant %+v", s, want)
	}
	b, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back Style
	if err := json.Unmarshal(b, &back); err != nil || back != s {
		t.Fatalf("round trip mismatch: %s -> %+v (%v)", b, back, err)
	}
}

func TestStyleMalformedValuesFallBack(t *testing.T) {
	var s Style
	if err := json.Unmarshal([]byte(`{"fontSize":"big","lineHeight":"??","textAlign":"justify"}`), &s); err != nil {
		t.Fatalf("malformed values must not fail decoding: %v", err)
	}
	if s.FontSize != DefaultFontSize || s.LineHeight != Ratio(DefaultLineHeightRatio) {
		t.Fatalf("expected defaults, got %+v", s)
	}
	if s.EffectiveAlign() != AlignLeft {
		t.Fatalf("align fallback = %q", s.EffectiveAlign())
	}
}

func TestMergeAndParsePatch(t *testing.T) {
	base := Style{FontSize: 20, Color: "#000", Left: Px(10)}
	p, err := ParsePatch(map[string]string{"color": "#f00", "fontSize": "30"})
	if err != nil {
		t.Fatalf("ParsePatch: %v", err)
	}
	got := base.Merge(p)
	if got.Color != "#f00" || got.FontSize != 30 || got.Left != Px(10) {
		t.Fatalf("merge result %+v", got)
	}
	if base.Color != "#000" {
		t.Fatalf("merge mutated the receiver")
	}
	if (StylePatch{}).IsZero() != true || p.IsZero() {
		t.Fatalf("IsZero mismatch")
	}
	if _, err := ParsePatch(map[string]string{"opacity": "1"}); err == nil {
		t.Fatalf("expected unknown key error")
	}
}

func TestCanvasFromAspect(t *testing.T) {
	c := CanvasFromAspect(AspectRatio{X: 5, Y: 7}, 500)
	if c.Width != 500 || c.Height != 700 {
		t.Fatalf("canvas = %+v", c)
	}
	if c.CenterX() != 250 || c.CenterY() != 350 {
		t.Fatalf("centers = %v,%v", c.CenterX(), c.CenterY())
	}
	sq := CanvasFromAspect(AspectRatio{}, 400)
	if sq.Height != 400 {
		t.Fatalf("degenerate ratio should give square, got %+v", sq)
	}
}
