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
	"os"
	"path/filepath"
	"strings"

	"cardcanvas/internal/domain"
	applog "cardcanvas/internal/log"
)

// PresetName represents a named export preset.
type PresetName string

const (
	PresetWeb   PresetName = "web"
	PresetPrint PresetName = "print"
)

// BatchOptions controls exporting one card to several formats at once.
// Files are named <Name>.<format> in OutDir.
type BatchOptions struct {
	Preset  PresetName
	Formats []string // allowed: pdf, png, svg; empty means preset defaults
	OutDir  string
	Name    string // base file name; defaults to "card"
	Options Options
}

// Export writes a single file, picking the format from the extension.
func Export(path string, cv domain.Canvas, cs []domain.Component, opt Options) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".svg":
		return ExportSVG(path, cv, cs, opt)
	case ".pdf":
		return ExportPDF(path, cv, cs, opt)
	case ".png":
		return ExportPNG(path, cv, cs, opt)
	}
	return fmt.Errorf("unsupported export format %q", filepath.Ext(path))
}

// BatchExport runs exports according to the given preset and returns the
// written paths.
func BatchExport(cv domain.Canvas, cs []domain.Component, opt BatchOptions) ([]string, error) {
	formats := opt.Formats
	if len(formats) == 0 {
		formats = presetDefaultFormats(opt.Preset)
	}
	if len(formats) == 0 {
		return nil, fmt.Errorf("unknown preset %q", opt.Preset)
	}
	name := opt.Name
	if name == "" {
		name = "card"
	}
	out := opt.OutDir
	if out == "" {
		out = string(opt.Preset)
	}
	if err := os.MkdirAll(out, 0o755); err != nil {
		return nil, fmt.Errorf("ensure out dir: %w", err)
	}
	o := opt.Options
	if opt.Preset == PresetPrint && o.Scale == 0 {
		o.Scale = 300.0 / 96.0
	}

	l := applog.WithComponent("export")
	var written []string
	for _, f := range formats {
		f = strings.ToLower(strings.TrimSpace(f))
		path := filepath.Join(out, name+"."+f)
		if err := Export(path, cv, cs, o); err != nil {
			return written, err
		}
		l.Info("exported", "path", path, "components", len(cs))
		written = append(written, path)
	}
	return written, nil
}

func presetDefaultFormats(p PresetName) []string {
	switch p {
	case PresetWeb:
		return []string{"png", "svg"}
	case PresetPrint:
		return []string{"pdf", "png"}
	}
	return nil
}
