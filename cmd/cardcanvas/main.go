/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"gopkg.in/yaml.v3"

	"cardcanvas/internal/config"
	"cardcanvas/internal/crash"
	"cardcanvas/internal/domain"
	"cardcanvas/internal/editor"
	"cardcanvas/internal/export"
	applog "cardcanvas/internal/log"
	"cardcanvas/internal/script"
	"cardcanvas/internal/selection"
	"cardcanvas/internal/telemetry"
	"cardcanvas/internal/template"
	"cardcanvas/internal/textedit"
	"cardcanvas/internal/ui"
	"cardcanvas/internal/version"
)

func usage(w io.Writer) {
	fmt.Fprintln(w, "cardcanvas - card text element editor")
	fmt.Fprintf(w, "Version: %s\n", version.String())
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  cardcanvas version|-v|--version                    Show version")
	fmt.Fprintln(w, "  cardcanvas config                                  Print the effective configuration")
	fmt.Fprintln(w, "  cardcanvas inspect <template>                      Print canvas and element bounds")
	fmt.Fprintln(w, "  cardcanvas replay [-mode m] <template> <script>    Replay a gesture script, print the result as JSON")
	fmt.Fprintln(w, "  cardcanvas export [-guides] <template> <out>       Export to .png, .pdf or .svg")
	fmt.Fprintln(w, "  cardcanvas export -preset web|print <template> <dir>")
	fmt.Fprintln(w, "  cardcanvas watch <template>                        Validate the template on every change")
	fmt.Fprintln(w, "  cardcanvas ui <template>                           Launch desktop UI (build with -tags fyne)")
}

// app carries what every command needs.
type app struct {
	cfg    config.AppConfig
	stdout io.Writer
	stderr io.Writer
	log    *slog.Logger
	crash  *crash.Context
}

func main() {
	cfg, cerr := config.Load()
	applog.Init(applog.Options{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		AddSource: cfg.Logging.Source,
		File:      cfg.Logging.File,
	})
	l := applog.WithComponent("cli")
	if cerr != nil {
		l.Warn("config not fully loaded, using defaults", slog.Any("err", cerr))
	}
	tc := telemetry.New(telemetry.FromConfig(cfg.Telemetry))
	telemetry.SetDefault(tc)
	defer tc.Close()

	a := &app{cfg: cfg, stdout: os.Stdout, stderr: os.Stderr, log: l, crash: &crash.Context{Telemetry: tc}}
	defer crash.Recover(a.crash)
	code := a.run(os.Args[1:])
	tc.Flush(context.Background())
	if code != 0 {
		os.Exit(code)
	}
}

func (a *app) run(args []string) int {
	a.log.Debug("start", slog.Int("args", len(args)))
	if len(args) == 0 {
		usage(a.stdout)
		return 0
	}
	var err error
	switch args[0] {
	case "version", "--version", "-v":
		fmt.Fprintln(a.stdout, version.String())
		return 0
	case "config":
		err = a.printConfig()
	case "inspect":
		err = a.inspect(args[1:])
	case "replay":
		err = a.replay(args[1:])
	case "export":
		err = a.export(args[1:])
	case "watch":
		err = a.watch(args[1:])
	case "ui":
		if len(args) < 2 {
			err = errUsage("ui requires <template>")
			break
		}
		a.crash.Template = args[1]
		err = ui.Run(ui.Options{Template: args[1], Config: a.cfg, Telemetry: telemetry.Default()})
	default:
		usage(a.stderr)
		return 2
	}
	if err == nil {
		return 0
	}
	fmt.Fprintln(a.stderr, "Error:", err)
	if _, ok := err.(usageError); ok {
		usage(a.stderr)
		return 2
	}
	applog.WithOperation(a.log, args[0]).Error("command failed", slog.Any("err", err))
	return 1
}

type usageError string

func (e usageError) Error() string { return string(e) }

func errUsage(msg string) error { return usageError(msg) }

func (a *app) templateOptions() template.Options {
	return template.Options{BaseWidth: a.cfg.Editor.BaseCanvasWidth}
}

func (a *app) printConfig() error {
	b, err := yaml.Marshal(a.cfg)
	if err != nil {
		return err
	}
	if p, err := config.ConfigPath(); err == nil {
		fmt.Fprintf(a.stdout, "# %s\n", p)
	}
	_, err = a.stdout.Write(b)
	return err
}

func (a *app) inspect(args []string) error {
	if len(args) != 1 {
		return errUsage("inspect requires <template>")
	}
	ld, err := template.Load(args[0], a.templateOptions())
	if err != nil {
		return err
	}
	ed := editor.New(editor.Options{Canvas: ld.Canvas, Config: a.cfg.Editor})
	defer ed.Close()
	if err := ed.Load(ld.Template.Components); err != nil {
		return err
	}
	cv := ed.Canvas()
	fmt.Fprintf(a.stdout, "Canvas: %gx%g (aspect %g:%g)\n", cv.Width, cv.Height, ld.Template.AspectRatio.X, ld.Template.AspectRatio.Y)
	fmt.Fprintf(a.stdout, "Components: %d (%d ids generated)\n", len(ld.Template.Components), ld.Assigned)
	for _, c := range ed.Components() {
		r := ed.Bounds(c)
		fmt.Fprintf(a.stdout, "  %-12s x=%-7.2f y=%-7.2f w=%-7.2f h=%-7.2f font=%dpx %q\n",
			c.ID, r.X, r.Y, r.W, r.H, c.Style.EffectiveFontSize(), firstLine(c.Content))
	}
	return nil
}

func firstLine(s string) string {
	for i, r := range s {
		if r == '\n' {
			return s[:i] + "..."
		}
	}
	return s
}

func (a *app) replay(args []string) error {
	fs := flag.NewFlagSet("replay", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	mode := fs.String("mode", a.cfg.Editor.Mode, "interaction mode: inline or modal")
	if err := fs.Parse(args); err != nil {
		return errUsage(err.Error())
	}
	if fs.NArg() != 2 {
		return errUsage("replay requires <template> and <script>")
	}
	m, err := selection.ParseMode(*mode)
	if err != nil {
		return errUsage(err.Error())
	}
	ld, err := template.Load(fs.Arg(0), a.templateOptions())
	if err != nil {
		return err
	}
	src, err := os.ReadFile(fs.Arg(1))
	if err != nil {
		return fmt.Errorf("read script: %w", err)
	}
	sc, errs := script.Parse(string(src))
	if len(errs) > 0 {
		for _, e := range errs {
			fmt.Fprintf(a.stderr, "%s:%s\n", fs.Arg(1), e.Error())
		}
		return fmt.Errorf("%d script errors", len(errs))
	}

	clock := textedit.NewManualScheduler()
	ed := editor.New(editor.Options{
		Mode:      m,
		Canvas:    ld.Canvas,
		Config:    a.cfg.Editor,
		Scheduler: clock,
		Events:    telemetry.Default(),
	})
	defer ed.Close()
	if err := ed.Load(ld.Template.Components); err != nil {
		return err
	}
	a.crash.Template = fs.Arg(0)
	a.crash.Canvas = ld.Canvas
	a.crash.Snapshot = ed.Components
	if err := script.Replay(ed, sc, clock); err != nil {
		return fmt.Errorf("%s:%w", fs.Arg(1), err)
	}
	out := domain.Template{AspectRatio: ld.Template.AspectRatio, Components: ed.Components()}
	enc := json.NewEncoder(a.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func (a *app) export(args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	guides := fs.Bool("guides", false, "draw element bounds and center guides")
	preset := fs.String("preset", "", "export preset: web or print")
	scale := fs.Float64("scale", 0, "raster scale for PNG output")
	if err := fs.Parse(args); err != nil {
		return errUsage(err.Error())
	}
	if fs.NArg() != 2 {
		return errUsage("export requires <template> and <out>")
	}
	ld, err := template.Load(fs.Arg(0), a.templateOptions())
	if err != nil {
		return err
	}
	opt := export.Options{Guides: *guides, Scale: *scale}
	if *preset != "" {
		base := filepath.Base(fs.Arg(0))
		paths, err := export.BatchExport(ld.Canvas, ld.Template.Components, export.BatchOptions{
			Preset:  export.PresetName(*preset),
			OutDir:  fs.Arg(1),
			Name:    base[:len(base)-len(filepath.Ext(base))],
			Options: opt,
		})
		for _, p := range paths {
			fmt.Fprintln(a.stdout, "Wrote", p)
		}
		return err
	}
	if err := export.Export(fs.Arg(1), ld.Canvas, ld.Template.Components, opt); err != nil {
		return err
	}
	fmt.Fprintln(a.stdout, "Wrote", fs.Arg(1))
	return nil
}

func (a *app) watch(args []string) error {
	if len(args) != 1 {
		return errUsage("watch requires <template>")
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := a.inspect(args); err != nil {
		fmt.Fprintln(a.stderr, "Error:", err)
	}
	fmt.Fprintln(a.stdout, "Watching", args[0], "(Ctrl-C to stop)")
	return template.Watch(ctx, args[0], a.templateOptions(), func(ld template.Loaded, err error) {
		if err != nil {
			fmt.Fprintln(a.stderr, "Invalid:", err)
			return
		}
		fmt.Fprintf(a.stdout, "Reloaded: %d components, canvas %gx%g\n", len(ld.Template.Components), ld.Canvas.Width, ld.Canvas.Height)
	})
}
