/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// AppConfig is the user-editable configuration persisted to a YAML file in the user scope.
// Environment variables are treated as read-only overrides at runtime.
//
// config_version: bump when the structure changes in a backward-incompatible way.
// Unknown fields are ignored on unmarshal.

// EditorConfig tunes the gesture engine. Zero values fall back to Defaults().
type EditorConfig struct {
	Mode              string  `yaml:"mode"` // "inline" | "modal"
	TapThresholdPx    float64 `yaml:"tap_threshold_px"`
	SnapThresholdPx   float64 `yaml:"snap_threshold_px"`
	DragFontMin       int     `yaml:"drag_font_min"`
	DragFontMax       int     `yaml:"drag_font_max"`
	PanelFontMin      int     `yaml:"panel_font_min"`
	PanelFontMax      int     `yaml:"panel_font_max"`
	MinWidthPx        float64 `yaml:"min_width_px"`
	FocusDelayMs      int     `yaml:"focus_delay_ms"`
	KeyboardPollMs    int     `yaml:"keyboard_poll_ms"`
	KeyboardTimeoutMs int     `yaml:"keyboard_timeout_ms"`
	BaseCanvasWidth   float64 `yaml:"base_canvas_width"`
}

type TelemetryConfig struct {
	OptIn    bool   `yaml:"opt_in"`
	Endpoint string `yaml:"endpoint"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

type AppConfig struct {
	ConfigVersion int             `yaml:"config_version"`
	Editor        EditorConfig    `yaml:"editor"`
	Telemetry     TelemetryConfig `yaml:"telemetry"`
	Logging       LoggingConfig   `yaml:"logging"`
}

// Defaults returns the application defaults.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		Editor: EditorConfig{
			Mode:              "inline",
			TapThresholdPx:    5,
			SnapThresholdPx:   5,
			DragFontMin:       8,
			DragFontMax:       72,
			PanelFontMin:      10,
			PanelFontMax:      50,
			MinWidthPx:        50,
			FocusDelayMs:      50,
			KeyboardPollMs:    100,
			KeyboardTimeoutMs: 1000,
			BaseCanvasWidth:   500,
		},
		Telemetry: TelemetryConfig{OptIn: false, Endpoint: ""},
		Logging:   LoggingConfig{Level: "info", Format: "console", Source: false, File: ""},
	}
}

// Env var names used as overrides.
const (
	EnvConfigPath        = "CARDCANVAS_CONFIG"
	EnvEditorMode        = "CARDCANVAS_EDITOR_MODE"
	EnvTapThreshold      = "CARDCANVAS_TAP_THRESHOLD"
	EnvSnapThreshold     = "CARDCANVAS_SNAP_THRESHOLD"
	EnvBaseCanvasWidth   = "CARDCANVAS_CANVAS_WIDTH"
	EnvTelemetryOptIn    = "CARDCANVAS_TELEMETRY_OPT_IN"
	EnvTelemetryEndpoint = "CARDCANVAS_TELEMETRY_ENDPOINT"
	// EnvLogLevel Logging envs
	EnvLogLevel  = "CARDCANVAS_LOG_LEVEL"
	EnvLogFormat = "CARDCANVAS_LOG_FORMAT"
	EnvLogSource = "CARDCANVAS_LOG_SOURCE"
	EnvLogFile   = "CARDCANVAS_LOG_FILE"
)

// ConfigPath returns the per-user config file path. CARDCANVAS_CONFIG wins when set.
func ConfigPath() (string, error) {
	if p := strings.TrimSpace(os.Getenv(EnvConfigPath)); p != "" {
		return p, nil
	}
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" { // fallback
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "CardCanvas")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "CardCanvas")
	default: // linux and others
		base = filepath.Join(os.Getenv("HOME"), ".config", "cardcanvas")
	}
	if base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return filepath.Join(base, "config.yaml"), nil
}

// Load reads the user config file (if present), applies defaults, and merges environment overrides.
func Load() (AppConfig, error) {
	path, err := ConfigPath()
	if err != nil {
		cfg := Defaults()
		applyEnvOverrides(&cfg)
		return cfg, err
	}
	return LoadFrom(path)
}

// LoadFrom is Load for an explicit file path. A missing file is not an error.
// A file that does not parse is reported, with defaults and env overrides still applied.
func LoadFrom(path string) (AppConfig, error) {
	cfg := Defaults()
	var perr error
	if data, err := os.ReadFile(path); err == nil {
		var fileCfg AppConfig
		if err := yaml.Unmarshal(data, &fileCfg); err == nil {
			mergeInto(&cfg, &fileCfg)
		} else {
			perr = err
		}
	}
	applyEnvOverrides(&cfg)
	return cfg, perr
}

// Save writes the user config YAML.
func Save(cfg AppConfig) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func mergeInto(dst *AppConfig, src *AppConfig) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	// editor
	e, s := &dst.Editor, &src.Editor
	if m := strings.ToLower(strings.TrimSpace(s.Mode)); m == "inline" || m == "modal" {
		e.Mode = m
	}
	mergeFloat(&e.TapThresholdPx, s.TapThresholdPx)
	mergeFloat(&e.SnapThresholdPx, s.SnapThresholdPx)
	mergeInt(&e.DragFontMin, s.DragFontMin)
	mergeInt(&e.DragFontMax, s.DragFontMax)
	mergeInt(&e.PanelFontMin, s.PanelFontMin)
	mergeInt(&e.PanelFontMax, s.PanelFontMax)
	mergeFloat(&e.MinWidthPx, s.MinWidthPx)
	mergeInt(&e.FocusDelayMs, s.FocusDelayMs)
	mergeInt(&e.KeyboardPollMs, s.KeyboardPollMs)
	mergeInt(&e.KeyboardTimeoutMs, s.KeyboardTimeoutMs)
	mergeFloat(&e.BaseCanvasWidth, s.BaseCanvasWidth)
	if e.DragFontMin > e.DragFontMax {
		e.DragFontMin, e.DragFontMax = e.DragFontMax, e.DragFontMin
	}
	if e.PanelFontMin > e.PanelFontMax {
		e.PanelFontMin, e.PanelFontMax = e.PanelFontMax, e.PanelFontMin
	}
	// booleans: copy directly from src (file) so user preferences persist
	dst.Telemetry.OptIn = src.Telemetry.OptIn
	if strings.TrimSpace(src.Telemetry.Endpoint) != "" {
		dst.Telemetry.Endpoint = strings.TrimSpace(src.Telemetry.Endpoint)
	}
	// logging
	if strings.TrimSpace(src.Logging.Level) != "" {
		dst.Logging.Level = strings.ToLower(strings.TrimSpace(src.Logging.Level))
	}
	if strings.TrimSpace(src.Logging.Format) != "" {
		dst.Logging.Format = strings.ToLower(strings.TrimSpace(src.Logging.Format))
	}
	dst.Logging.Source = src.Logging.Source
	if strings.TrimSpace(src.Logging.File) != "" {
		dst.Logging.File = strings.TrimSpace(src.Logging.File)
	}
}

func mergeFloat(dst *float64, v float64) {
	if v > 0 {
		*dst = v
	}
}

func mergeInt(dst *int, v int) {
	if v > 0 {
		*dst = v
	}
}

func truthy(v string) bool {
	lv := strings.ToLower(v)
	return lv == "1" || lv == "true" || lv == "on" || lv == "yes"
}

func applyEnvOverrides(cfg *AppConfig) {
	if v := strings.ToLower(strings.TrimSpace(os.Getenv(EnvEditorMode))); v == "inline" || v == "modal" {
		cfg.Editor.Mode = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvTapThreshold)); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			cfg.Editor.TapThresholdPx = f
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvSnapThreshold)); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 {
			cfg.Editor.SnapThresholdPx = f
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvBaseCanvasWidth)); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			cfg.Editor.BaseCanvasWidth = f
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvTelemetryOptIn)); v != "" {
		cfg.Telemetry.OptIn = truthy(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvTelemetryEndpoint)); v != "" {
		cfg.Telemetry.Endpoint = v
	}
	// logging overrides
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogSource)); v != "" {
		cfg.Logging.Source = truthy(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.Logging.File = v
	}
}

var envByKey = map[string]string{
	"editor.mode":              EnvEditorMode,
	"editor.tap_threshold_px":  EnvTapThreshold,
	"editor.snap_threshold_px": EnvSnapThreshold,
	"editor.base_canvas_width": EnvBaseCanvasWidth,
	"telemetry.opt_in":         EnvTelemetryOptIn,
	"telemetry.endpoint":       EnvTelemetryEndpoint,
	"logging.level":            EnvLogLevel,
	"logging.format":           EnvLogFormat,
	"logging.source":           EnvLogSource,
	"logging.file":             EnvLogFile,
}

// EnvOverrideFor returns the env var name if the field is overridden by environment variables.
func EnvOverrideFor(key string) (string, bool) {
	name, ok := envByKey[key]
	if !ok || os.Getenv(name) == "" {
		return "", false
	}
	return name, true
}
