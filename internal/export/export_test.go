/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package export

import (
	"bytes"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"cardcanvas/internal/domain"
)

func sampleCard() (domain.Canvas, []domain.Component) {
	cv := domain.Canvas{Width: 500, Height: 700}
	cs := []domain.Component{
		{ID: "title", Type: domain.TypeText, Content: "Happy <Birthday> & more", Style: domain.Style{
			Left: domain.Centered(), Top: domain.Px(80), Width: domain.Percent(90), FontSize: 32,
			FontWeight: "bold", TextAlign: domain.AlignCenter, Color: "#c0392b",
		}},
		{ID: "body", Type: domain.TypeText, Content: "Line1\nLine2", Style: domain.Style{
			Left: domain.Px(50), Top: domain.Px(400), Width: domain.Px(300), FontSize: 16,
		}},
	}
	return cv, cs
}

func TestParseColor(t *testing.T) {
	fb := color.RGBA{1, 2, 3, 255}
	cases := map[string]color.RGBA{
		"#ff0000":        {255, 0, 0, 255},
		"#0f0":           {0, 255, 0, 255},
		"rgb(1, 2, 250)": {1, 2, 250, 255},
		"White":          {255, 255, 255, 255},
		"#12345":         fb,
		"rgb(1,2,300)":   fb,
		"papayawhip":     fb,
	}
	for in, want := range cases {
		if got := ParseColor(in, fb); got != want {
			t.Fatalf("ParseColor(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestLayoutAlignsLines(t *testing.T) {
	cv, cs := sampleCard()
	pg := layoutPage(cv, cs, Options{}.withDefaults())
	if len(pg.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(pg.Items))
	}
	title := pg.Items[0]
	if title.Bounds.X != 25 || title.Bounds.W != 450 {
		t.Fatalf("title bounds = %+v", title.Bounds)
	}
	for _, ln := range title.Lines {
		mid := ln.X + ln.Width/2
		if d := mid - 250; d > 0.01 || d < -0.01 {
			t.Fatalf("centered line midpoint = %v", mid)
		}
	}
	body := pg.Items[1]
	if len(body.Lines) != 2 || body.Lines[0].X != 50 {
		t.Fatalf("body lines = %+v", body.Lines)
	}
	if body.Lines[1].Baseline <= body.Lines[0].Baseline {
		t.Fatalf("baselines must increase")
	}
}

func TestWriteSVGEscapesText(t *testing.T) {
	cv, cs := sampleCard()
	var buf bytes.Buffer
	if err := WriteSVG(&buf, cv, cs, Options{Guides: true}); err != nil {
		t.Fatalf("WriteSVG: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, `viewBox="0 0 500 700"`) {
		t.Fatalf("missing viewBox: %s", out)
	}
	if !strings.Contains(out, "&lt;Birthday&gt; &amp; more") {
		t.Fatalf("text not escaped: %s", out)
	}
	if !strings.Contains(out, `fill="#c0392b"`) || !strings.Contains(out, `font-weight="bold"`) {
		t.Fatalf("style not rendered: %s", out)
	}
}

func TestWritePNGSizeAndScale(t *testing.T) {
	cv, cs := sampleCard()
	var buf bytes.Buffer
	if err := WritePNG(&buf, cv, cs, Options{Scale: 0.5}); err != nil {
		t.Fatalf("WritePNG: %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 250 || b.Dy() != 350 {
		t.Fatalf("bounds = %v", b)
	}
}

func TestRasterizeDrawsText(t *testing.T) {
	cv, cs := sampleCard()
	img := Rasterize(cv, cs[1:], Options{})
	dark := 0
	for y := 400; y < 460; y++ {
		for x := 50; x < 150; x++ {
			if c := img.RGBAAt(x, y); c.R < 128 {
				dark++
			}
		}
	}
	if dark == 0 {
		t.Fatalf("no glyph pixels in the body area")
	}
}

func TestWritePDF(t *testing.T) {
	cv, cs := sampleCard()
	var buf bytes.Buffer
	if err := WritePDF(&buf, cv, cs, Options{Guides: true}); err != nil {
		t.Fatalf("WritePDF: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Fatalf("not a pdf")
	}
}

func TestBatchExportPresets(t *testing.T) {
	cv, cs := sampleCard()
	dir := t.TempDir()
	paths, err := BatchExport(cv, cs, BatchOptions{Preset: PresetWeb, OutDir: dir, Name: "birthday"})
	if err != nil {
		t.Fatalf("BatchExport: %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("expected png and svg, got %v", paths)
	}
	for _, p := range paths {
		st, err := os.Stat(p)
		if err != nil || st.Size() == 0 {
			t.Fatalf("missing output %s: %v", p, err)
		}
	}
	if _, err := BatchExport(cv, cs, BatchOptions{Preset: "poster", OutDir: dir}); err == nil {
		t.Fatalf("unknown preset must fail")
	}
	if err := Export(filepath.Join(dir, "card.gif"), cv, cs, Options{}); err == nil {
		t.Fatalf("unsupported extension must fail")
	}
	if err := Export(filepath.Join(dir, "card.pdf"), cv, cs, Options{}); err != nil {
		t.Fatalf("Export pdf: %v", err)
	}
}
