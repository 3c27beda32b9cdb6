/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package template loads the card templates the engine is seeded from. A
// template is JSON or YAML, is validated against an embedded JSON Schema and
// yields the component list plus the canvas derived from its aspect ratio.
package template

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	gojsonschema "github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	"cardcanvas/internal/domain"
	"cardcanvas/internal/geometry"
	applog "cardcanvas/internal/log"
)

//go:embed schema.json
var schemaJSON []byte

// ErrInvalid wraps schema violations.
var ErrInvalid = errors.New("invalid template")

// Format of a template document.
type Format int

const (
	FormatAuto Format = iota
	FormatJSON
	FormatYAML
)

// FormatFor picks the format from a file extension.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatJSON
}

// Options tunes loading.
type Options struct {
	// BaseWidth is the canvas width in pixels; height follows the aspect ratio.
	BaseWidth float64
	// CanonicalLineHeight converts pixel line heights to ratios of the font size.
	CanonicalLineHeight bool
	// NewID generates ids for components that have none. Defaults to uuid.
	NewID func() string
}

// Loaded is a parsed template ready to hand to the editor.
type Loaded struct {
	Template domain.Template
	Canvas   domain.Canvas
	Assigned int // ids generated for components without one
}

type wire struct {
	AspectRatio domain.AspectRatio `json:"aspectRatio"`
	Guides      *struct {
		X []float64 `json:"x"`
		Y []float64 `json:"y"`
	} `json:"guides,omitempty"`
	Components []domain.Component `json:"components"`
}

// Parse decodes, validates and normalizes a template document.
func Parse(data []byte, format Format, opts Options) (Loaded, error) {
	l := applog.WithComponent("template")
	doc, err := toJSON(data, format)
	if err != nil {
		return Loaded{}, err
	}
	if err := validate(doc); err != nil {
		l.Warn("template rejected", slog.Any("err", err))
		return Loaded{}, err
	}
	var w wire
	if err := json.Unmarshal(doc, &w); err != nil {
		return Loaded{}, fmt.Errorf("decode template: %w", err)
	}
	if opts.BaseWidth <= 0 {
		opts.BaseWidth = 500
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	out := Loaded{
		Template: domain.Template{AspectRatio: w.AspectRatio, Components: w.Components},
		Canvas:   domain.CanvasFromAspect(w.AspectRatio, opts.BaseWidth),
	}
	if w.Guides != nil {
		out.Canvas.GuidesX, out.Canvas.GuidesY = w.Guides.X, w.Guides.Y
	}
	seen := make(map[string]bool, len(w.Components))
	for i := range out.Template.Components {
		c := &out.Template.Components[i]
		if c.ID == "" {
			c.ID = opts.NewID()
			out.Assigned++
		}
		if seen[c.ID] {
			return Loaded{}, fmt.Errorf("%w: duplicate component id %q", ErrInvalid, c.ID)
		}
		seen[c.ID] = true
		if c.Type == "" {
			c.Type = domain.TypeText
		}
		if opts.CanonicalLineHeight {
			c.Style = canonicalLineHeight(c.Style)
		}
	}
	l.Debug("template parsed", "components", len(out.Template.Components), "assigned", out.Assigned,
		"width", out.Canvas.Width, "height", out.Canvas.Height)
	return out, nil
}

// Load reads and parses a template file.
func Load(path string, opts Options) (Loaded, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Loaded{}, fmt.Errorf("read template: %w", err)
	}
	out, err := Parse(data, FormatFor(path), opts)
	if err != nil {
		return Loaded{}, fmt.Errorf("%s: %w", path, err)
	}
	return out, nil
}

func toJSON(data []byte, format Format) ([]byte, error) {
	if format == FormatAuto {
		if trimmed := strings.TrimSpace(string(data)); strings.HasPrefix(trimmed, "{") {
			format = FormatJSON
		} else {
			format = FormatYAML
		}
	}
	if format == FormatJSON {
		return data, nil
	}
	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("decode yaml template: %w", err)
	}
	doc, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("convert yaml template: %w", err)
	}
	return doc, nil
}

func validate(doc []byte) error {
	res, err := gojsonschema.Validate(gojsonschema.NewBytesLoader(schemaJSON), gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if !res.Valid() {
		msgs := make([]string, 0, len(res.Errors()))
		for _, e := range res.Errors() {
			msgs = append(msgs, e.String())
		}
		return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(msgs, "; "))
	}
	return nil
}

func canonicalLineHeight(s domain.Style) domain.Style {
	if s.LineHeight.IsSet() && s.LineHeight.Px {
		s.LineHeight = domain.Ratio(geometry.FloatRound(s.LineHeight.Value/float64(s.EffectiveFontSize()), 2))
	}
	return s
}
