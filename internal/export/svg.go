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
	"fmt"
	"io"
	"os"

	"cardcanvas/internal/domain"
)

// WriteSVG renders the components as an SVG document. Coordinates are canvas
// pixels; fonts are referenced by family name, not embedded.
func WriteSVG(w io.Writer, cv domain.Canvas, cs []domain.Component, opt Options) error {
	opt = opt.withDefaults()
	pg := layoutPage(cv, cs, opt)

	var buf bytes.Buffer
	var werr error
	wf := func(format string, args ...any) {
		if werr != nil {
			return
		}
		_, werr = fmt.Fprintf(&buf, format, args...)
	}

	wf("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	wf("<svg xmlns=\"http://www.w3.org/2000/svg\" version=\"1.1\" width=\"%gpx\" height=\"%gpx\" viewBox=\"0 0 %g %g\">\n", cv.Width, cv.Height, cv.Width, cv.Height)
	if pg.Background.A > 0 {
		wf("  <rect x=\"0\" y=\"0\" width=\"%g\" height=\"%g\" fill=\"%s\"/>\n", cv.Width, cv.Height, hexColor(pg.Background))
	}
	if opt.Guides {
		wf("  <line x1=\"%g\" y1=\"0\" x2=\"%g\" y2=\"%g\" stroke=\"#ff0000\" stroke-width=\"0.5\"/>\n", cv.CenterX(), cv.CenterX(), cv.Height)
		wf("  <line x1=\"0\" y1=\"%g\" x2=\"%g\" y2=\"%g\" stroke=\"#ff0000\" stroke-width=\"0.5\"/>\n", cv.CenterY(), cv.Width, cv.CenterY())
	}
	for _, it := range pg.Items {
		if opt.Guides {
			r := it.Bounds
			wf("  <rect x=\"%g\" y=\"%g\" width=\"%g\" height=\"%g\" fill=\"none\" stroke=\"#3b82f6\" stroke-width=\"0.5\"/>\n", r.X, r.Y, r.W, r.H)
		}
		family := it.Family
		if family == "" {
			family = "Helvetica, Arial, sans-serif"
		}
		weight := "normal"
		if it.Bold {
			weight = "bold"
		}
		wf("  <g id=\"%s\" font-family=\"%s\" font-size=\"%g\" font-weight=\"%s\" fill=\"%s\">\n", escAttr(it.ID), escAttr(family), it.FontSize, weight, hexColor(it.Color))
		for _, ln := range it.Lines {
			wf("    <text x=\"%g\" y=\"%g\">%s</text>\n", ln.X, ln.Baseline, escText(ln.Text))
		}
		wf("  </g>\n")
	}
	wf("</svg>\n")

	if werr != nil {
		return fmt.Errorf("build svg: %w", werr)
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// ExportSVG writes an SVG file at path.
func ExportSVG(path string, cv domain.Canvas, cs []domain.Component, opt Options) error {
	var buf bytes.Buffer
	if err := WriteSVG(&buf, cv, cs, opt); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write svg: %w", err)
	}
	return nil
}

func escAttr(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch ch {
		case '"':
			out = append(out, "&quot;"...)
		case '&':
			out = append(out, "&amp;"...)
		case '<':
			out = append(out, "&lt;"...)
		case '\n':
			out = append(out, ' ')
		case '\r':
		default:
			out = append(out, ch)
		}
	}
	return string(out)
}

func escText(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch ch {
		case '&':
			out = append(out, "&amp;"...)
		case '<':
			out = append(out, "&lt;"...)
		case '>':
			out = append(out, "&gt;"...)
		default:
			out = append(out, ch)
		}
	}
	return string(out)
}
