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
	"fmt"
	"io"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"cardcanvas/internal/domain"
)

// newPDF lays the card out on a single page whose size matches the canvas,
// one PDF point per canvas pixel. Text uses the built-in core fonts so nothing
// needs embedding; the family hint picks between Helvetica, Times and Courier.
func newPDF(cv domain.Canvas, cs []domain.Component, opt Options) *gofpdf.Fpdf {
	opt = opt.withDefaults()
	pg := layoutPage(cv, cs, opt)

	size := gofpdf.SizeType{Wd: cv.Width, Ht: cv.Height}
	pdf := gofpdf.NewCustom(&gofpdf.InitType{UnitStr: "pt", Size: size})
	pdf.SetTitle("Card", false)
	pdf.SetCreator("cardcanvas", false)
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPageFormat("", size)

	if pg.Background.A > 0 {
		pdf.SetFillColor(int(pg.Background.R), int(pg.Background.G), int(pg.Background.B))
		pdf.Rect(0, 0, cv.Width, cv.Height, "F")
	}
	if opt.Guides {
		pdf.SetDrawColor(255, 0, 0)
		pdf.SetLineWidth(0.5)
		pdf.Line(cv.CenterX(), 0, cv.CenterX(), cv.Height)
		pdf.Line(0, cv.CenterY(), cv.Width, cv.CenterY())
	}
	for _, it := range pg.Items {
		if opt.Guides {
			pdf.SetDrawColor(59, 130, 246)
			pdf.SetLineWidth(0.5)
			pdf.Rect(it.Bounds.X, it.Bounds.Y, it.Bounds.W, it.Bounds.H, "D")
		}
		style := ""
		if it.Bold {
			style = "B"
		}
		pdf.SetFont(coreFamily(it.Family), style, it.FontSize)
		pdf.SetTextColor(int(it.Color.R), int(it.Color.G), int(it.Color.B))
		for _, ln := range it.Lines {
			pdf.Text(ln.X, ln.Baseline, ln.Text)
		}
	}
	return pdf
}

// WritePDF renders the components as a one-page PDF.
func WritePDF(w io.Writer, cv domain.Canvas, cs []domain.Component, opt Options) error {
	pdf := newPDF(cv, cs, opt)
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

// ExportPDF writes a PDF file at path.
func ExportPDF(path string, cv domain.Canvas, cs []domain.Component, opt Options) error {
	pdf := newPDF(cv, cs, opt)
	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func coreFamily(family string) string {
	f := strings.ToLower(family)
	switch {
	case strings.Contains(f, "mono"), strings.Contains(f, "courier"):
		return "Courier"
	case strings.Contains(f, "serif") && !strings.Contains(f, "sans"), strings.Contains(f, "times"), strings.Contains(f, "georgia"):
		return "Times"
	}
	return "Helvetica"
}
