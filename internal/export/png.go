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
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"
	"os"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"cardcanvas/internal/domain"
	"cardcanvas/internal/textlayout"
)

// Rasterize draws the card into an RGBA image of canvas size times
// opt.Scale. Glyphs come from the measurer's font provider at the size it
// resolves, so bitmap faces render at their native size.
func Rasterize(cv domain.Canvas, cs []domain.Component, opt Options) *image.RGBA {
	opt = opt.withDefaults()
	pg := layoutPage(cv, cs, opt)
	pixW := int(math.Ceil(cv.Width))
	pixH := int(math.Ceil(cv.Height))

	img := image.NewRGBA(image.Rect(0, 0, pixW, pixH))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: pg.Background}, image.Point{}, draw.Src)

	if opt.Guides {
		gc := color.RGBA{255, 0, 0, 255}
		cx, cy := int(math.Round(cv.CenterX())), int(math.Round(cv.CenterY()))
		strokeRect(img, cx, 0, cx, pixH-1, gc)
		strokeRect(img, 0, cy, pixW-1, cy, gc)
	}
	for i, it := range pg.Items {
		if opt.Guides {
			r := it.Bounds
			x0, y0 := int(math.Round(r.X)), int(math.Round(r.Y))
			strokeRect(img, x0, y0, x0+int(math.Round(r.W))-1, y0+int(math.Round(r.H))-1, color.RGBA{59, 130, 246, 255})
		}
		face, _ := opt.Measurer.Provider.Resolve(textlayout.SpecFor(cs[i].Style))
		d := &font.Drawer{Dst: img, Src: image.NewUniform(it.Color), Face: face}
		for _, ln := range it.Lines {
			d.Dot = fixed.P(int(math.Round(ln.X)), int(math.Round(ln.Baseline)))
			d.DrawString(ln.Text)
		}
	}
	if opt.Scale == 1 {
		return img
	}
	dst := image.NewRGBA(image.Rect(0, 0, int(math.Round(float64(pixW)*opt.Scale)), int(math.Round(float64(pixH)*opt.Scale))))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), xdraw.Src, nil)
	return dst
}

// WritePNG encodes the rasterized card as PNG.
func WritePNG(w io.Writer, cv domain.Canvas, cs []domain.Component, opt Options) error {
	if err := png.Encode(w, Rasterize(cv, cs, opt)); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// ExportPNG writes a PNG file at path.
func ExportPNG(path string, cv domain.Canvas, cs []domain.Component, opt Options) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create png: %w", err)
	}
	if err := WritePNG(f, cv, cs, opt); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close png: %w", err)
	}
	return nil
}

// strokeRect draws a 1px axis-aligned rectangle border inclusive of endpoints.
func strokeRect(img *image.RGBA, x0, y0, x1, y1 int, col color.RGBA) {
	for x := x0; x <= x1; x++ {
		img.SetRGBA(x, y0, col)
		img.SetRGBA(x, y1, col)
	}
	for y := y0; y <= y1; y++ {
		img.SetRGBA(x0, y, col)
		img.SetRGBA(x1, y, col)
	}
}
