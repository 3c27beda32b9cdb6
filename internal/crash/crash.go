/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package crash turns a panic at the CLI or UI boundary into a crash report
// that carries the current component list, plus an autosave of that list the
// user can reload as a template.
package crash

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"time"

	"cardcanvas/internal/domain"
	applog "cardcanvas/internal/log"
	"cardcanvas/internal/telemetry"
	"cardcanvas/internal/version"
)

// exitFn is used to allow testing of Recover without terminating the test process.
var exitFn = os.Exit

// Context describes what a crash report should include. Every field is optional.
type Context struct {
	// Dir receives the report and the autosave; defaults to os.TempDir().
	Dir string
	// Template is the path the components were loaded from.
	Template string
	// Canvas sizes the autosaved template.
	Canvas domain.Canvas
	// Snapshot returns the current components.
	Snapshot func() []domain.Component
	// Telemetry uploads the report when crash uploads are opted in.
	Telemetry *telemetry.Client
}

// Recover captures a panic, logs it with its stack, writes a crash report and
// an autosave, then exits with status 2.
//
// Usage: defer crash.Recover(cc)
func Recover(cc *Context) {
	r := recover()
	if r == nil {
		return
	}
	l := applog.WithComponent("crash")
	stack := debug.Stack()
	l.Error("panic recovered", slog.Any("panic", r), slog.String("stack", string(stack)))

	if cc == nil {
		cc = &Context{}
	}
	cs := snapshot(cc)
	reportPath, err := writeReport(cc, cs, r, stack)
	if err != nil {
		l.Error("crash report failed", slog.Any("err", err))
	}
	if cs != nil {
		if path, err := autosave(cc, cs); err != nil {
			l.Error("autosave failed", slog.Any("err", err))
		} else {
			l.Info("autosave written", slog.String("path", path))
			_, _ = fmt.Fprintf(os.Stderr, "Your card was autosaved to: %s\n", path)
		}
	}

	if _, err := fmt.Fprintf(os.Stderr, "A fatal error occurred. A crash report was saved to: %s\n", reportPath); err != nil {
		l.Error("failed to write crash message to stderr", slog.Any("err", err))
	}
	_, _ = fmt.Fprintf(os.Stderr, "Version: %s\nOS/Arch: %s/%s\n", version.String(), runtime.GOOS, runtime.GOARCH)
	exitFn(2)
}

// snapshot reads the components, tolerating a snapshot func that panics on
// corrupted state.
func snapshot(cc *Context) (cs []domain.Component) {
	if cc.Snapshot == nil {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			applog.WithComponent("crash").Warn("component snapshot failed", slog.Any("panic", r))
			cs = nil
		}
	}()
	return cc.Snapshot()
}

func reportDir(cc *Context) string {
	if cc.Dir == "" {
		return os.TempDir()
	}
	_ = os.MkdirAll(cc.Dir, 0o755)
	return cc.Dir
}

func writeReport(cc *Context, cs []domain.Component, panicVal any, stack []byte) (string, error) {
	stamp := time.Now().Format("20060102-150405")
	path := filepath.Join(reportDir(cc), fmt.Sprintf("crash-%s.log", stamp))

	var buf bytes.Buffer
	_, _ = fmt.Fprintf(&buf, "cardcanvas Crash Report\n")
	_, _ = fmt.Fprintf(&buf, "Timestamp: %s\n", time.Now().Format(time.RFC3339))
	_, _ = fmt.Fprintf(&buf, "Version: %s\n", version.String())
	_, _ = fmt.Fprintf(&buf, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	if cc.Template != "" {
		_, _ = fmt.Fprintf(&buf, "Template: %s\n", cc.Template)
	}
	_, _ = fmt.Fprintf(&buf, "\nPanic: %v\n\n", panicVal)
	_, _ = fmt.Fprintf(&buf, "Stack:\n%s\n", string(stack))
	if cs != nil {
		dump, err := json.MarshalIndent(cs, "", "  ")
		if err != nil {
			_, _ = fmt.Fprintf(&buf, "Components: unavailable (%v)\n", err)
		} else {
			_, _ = fmt.Fprintf(&buf, "Components:\n%s\n", dump)
		}
	}

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return path, err
	}
	cc.Telemetry.UploadCrash(buf.Bytes())
	return path, nil
}

// autosave writes the components as a template document.
func autosave(cc *Context, cs []domain.Component) (string, error) {
	ar := domain.AspectRatio{X: cc.Canvas.Width, Y: cc.Canvas.Height}
	if ar.X <= 0 || ar.Y <= 0 {
		ar = domain.AspectRatio{X: 5, Y: 7}
	}
	b, err := json.MarshalIndent(domain.Template{AspectRatio: ar, Components: cs}, "", "  ")
	if err != nil {
		return "", err
	}
	path := filepath.Join(reportDir(cc), fmt.Sprintf("autosave-%s.json", time.Now().Format("20060102-150405")))
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return "", err
	}
	return path, nil
}
