//go:build fyne && cgo

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package ui

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"cardcanvas/internal/crash"
	"cardcanvas/internal/domain"
	"cardcanvas/internal/editor"
	"cardcanvas/internal/export"
	applog "cardcanvas/internal/log"
	"cardcanvas/internal/selection"
	"cardcanvas/internal/template"
	"cardcanvas/internal/textedit"
	"cardcanvas/internal/textlayout"
)

// Run opens the template in a desktop window and blocks until it is closed.
func Run(opts Options) error {
	l := applog.WithComponent("ui")
	topts := template.Options{BaseWidth: opts.Config.Editor.BaseCanvasWidth}
	loaded, err := template.Load(opts.Template, topts)
	if err != nil {
		return err
	}
	mode, err := selection.ParseMode(opts.Config.Editor.Mode)
	if err != nil {
		l.Warn("unknown editor mode, using inline", slog.Any("err", err))
		mode = selection.Inline
	}
	l.Info("starting UI", "template", opts.Template, "mode", mode.String())

	fyneApp := app.NewWithID("cardcanvas")
	w := fyneApp.NewWindow("cardcanvas - " + filepath.Base(opts.Template))
	prefs := fyneApp.Preferences()
	winW := max(prefs.IntWithFallback("window.width", 900), 480)
	winH := max(prefs.IntWithFallback("window.height", 900), 600)
	w.Resize(fyne.NewSize(float32(winW), float32(winH)))

	h := &host{w: w, opts: opts, mode: mode, log: l}
	h.build()
	h.load(loaded)

	defer crash.Recover(&crash.Context{
		Dir:       filepath.Dir(opts.Template),
		Template:  opts.Template,
		Canvas:    loaded.Canvas,
		Snapshot:  func() []domain.Component { return h.ed.Components() },
		Telemetry: opts.Telemetry,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		err := template.Watch(ctx, opts.Template, topts, func(ld template.Loaded, err error) {
			fyne.Do(func() { h.reload(ld, err) })
		})
		if err != nil {
			l.Warn("template watch stopped", slog.Any("err", err))
		}
	}()

	w.SetOnClosed(func() {
		sz := w.Canvas().Size()
		prefs.SetInt("window.width", int(sz.Width))
		prefs.SetInt("window.height", int(sz.Height))
	})
	w.ShowAndRun()
	h.ed.Close()
	return nil
}

// host owns the window chrome around one editor.
type host struct {
	w    fyne.Window
	opts Options
	mode selection.Mode
	log  *slog.Logger

	ed      *editor.Editor
	canvas  *CardCanvas
	entry   *widget.Entry
	overlay *fyne.Container
	modal   dialog.Dialog
	status  *widget.Label

	panel     *fyne.Container
	fontSize  *widget.Slider
	align     *widget.RadioGroup
	color     *widget.Entry
	preset    *widget.Select
	syncPanel bool

	editingID string
	pending   *template.Loaded
}

func (h *host) build() {
	cfg := h.opts.Config.Editor
	h.canvas = NewCardCanvas(nil, nil)
	h.status = widget.NewLabel("Ready")

	h.entry = widget.NewMultiLineEntry()
	h.entry.Wrapping = fyne.TextWrapWord
	h.entry.OnChanged = func(text string) {
		if h.syncPanel || h.editingID == "" {
			return
		}
		if err := h.ed.SetBuffer(textedit.ToBuffer(text)); err != nil {
			h.log.Debug("buffer update dropped", slog.Any("err", err))
		}
	}
	h.entry.Hide()
	h.overlay = container.NewWithoutLayout(h.entry)

	lo, hi := float64(cfg.PanelFontMin), float64(cfg.PanelFontMax)
	if hi <= lo {
		lo, hi = 10, 50
	}
	h.fontSize = widget.NewSlider(lo, hi)
	h.fontSize.Step = 1
	h.fontSize.OnChangeEnded = func(v float64) {
		if h.syncPanel {
			return
		}
		fs := int(v)
		h.styleChange(domain.StylePatch{FontSize: &fs})
	}
	h.align = widget.NewRadioGroup([]string{"left", "center", "right"}, func(v string) {
		if h.syncPanel || v == "" {
			return
		}
		a := domain.Align(v)
		h.styleChange(domain.StylePatch{TextAlign: &a})
	})
	h.align.Horizontal = true
	h.color = widget.NewEntry()
	h.color.SetPlaceHolder("#000000")
	h.color.OnSubmitted = func(v string) {
		v = strings.TrimSpace(v)
		h.styleChange(domain.StylePatch{Color: &v})
	}
	h.preset = widget.NewSelect(textlayout.PresetNames(), func(name string) {
		if h.syncPanel || name == "" {
			return
		}
		if err := h.ed.ApplyPreset(name); err != nil {
			h.status.SetText(err.Error())
		}
		h.refresh()
	})
	h.panel = container.NewVBox(
		widget.NewLabelWithStyle("Style", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		widget.NewLabel("Font size"), h.fontSize,
		widget.NewLabel("Alignment"), h.align,
		widget.NewLabel("Color"), h.color,
		widget.NewLabel("Preset"), h.preset,
		widget.NewButton("Close", func() { h.ed.ClosePanel() }),
	)
	h.panel.Hide()

	toolbar := container.NewHBox(
		widget.NewButton("Style", func() {
			if !h.ed.OpenPanel() {
				h.status.SetText("Select an element first")
			}
		}),
		widget.NewButton("Save", func() { h.report(h.ed.SaveEdit()) }),
		widget.NewButton("Cancel", func() { h.report(h.ed.CancelEdit()) }),
		widget.NewButton("Reset", h.resetEdit),
	)
	h.w.SetContent(container.NewBorder(toolbar, h.status, nil, h.panel, container.NewStack(h.canvas, h.overlay)))

	h.w.Canvas().AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyS, Modifier: fyne.KeyModifierShortcutDefault}, func(fyne.Shortcut) {
		h.report(h.ed.SaveEdit())
	})
	h.w.Canvas().SetOnTypedKey(func(ev *fyne.KeyEvent) {
		if ev.Name == fyne.KeyEscape {
			if _, ok := h.ed.Editing(); ok {
				h.report(h.ed.CancelEdit())
			} else {
				h.ed.TapBackground()
			}
		}
	})
	h.w.SetMainMenu(fyne.NewMainMenu(
		fyne.NewMenu("File",
			fyne.NewMenuItem("Export PNG", func() { h.export(".png") }),
			fyne.NewMenuItem("Export PDF", func() { h.export(".pdf") }),
			fyne.NewMenuItem("Export SVG", func() { h.export(".svg") }),
		),
	))
}

// load replaces the editor with one for ld.
func (h *host) load(ld template.Loaded) {
	if h.ed != nil {
		h.ed.Close()
	}
	h.editingID = ""
	h.entry.Hide()
	h.ed = editor.New(editor.Options{
		Mode:      h.mode,
		Canvas:    ld.Canvas,
		Config:    h.opts.Config.Editor,
		Scheduler: fyneScheduler{},
		Viewport:  h.canvas,
		Measurer:  h.canvas.measurer,
		OnUpdate:  func([]domain.Component) { h.refresh() },
		OnState:   h.onState,
		Focus:     h.focus,
		Events:    h.opts.Telemetry,
	})
	if err := h.ed.Load(ld.Template.Components); err != nil {
		h.status.SetText(err.Error())
	}
	h.canvas.SetEditor(h.ed)
}

func (h *host) reload(ld template.Loaded, err error) {
	if err != nil {
		h.status.SetText("Template not reloaded: " + err.Error())
		return
	}
	if h.editingID != "" {
		h.pending = &ld
		h.status.SetText("Template changed on disk; reloading after this edit")
		return
	}
	h.load(ld)
	h.status.SetText("Template reloaded")
}

func (h *host) onState(st selection.State) {
	if st.EditingID != h.editingID {
		prev := h.editingID
		h.editingID = st.EditingID
		if prev != "" {
			h.endEditUI()
		}
		if st.EditingID != "" {
			h.beginEditUI(st.EditingID)
		}
	}
	if st.PanelOpen {
		h.showPanel(st.SelectedID)
	} else {
		h.panel.Hide()
	}
	h.status.SetText(statusText(st))
	if st.EditingID == "" && h.pending != nil {
		ld := *h.pending
		h.pending = nil
		fyne.Do(func() { h.load(ld) })
	}
	h.refresh()
}

func statusText(st selection.State) string {
	switch st.Phase() {
	case selection.Editing:
		return "Editing " + st.EditingID
	case selection.Selected:
		return "Selected " + st.SelectedID
	}
	return "Ready"
}

func (h *host) beginEditUI(id string) {
	s, ok := h.ed.Editing()
	if !ok {
		return
	}
	h.syncPanel = true
	h.entry.SetText(s.Text())
	h.syncPanel = false
	if h.mode == selection.Modal {
		h.entry.Show()
		content := container.NewGridWrap(fyne.NewSize(420, 220), h.entry)
		h.overlay.Remove(h.entry)
		h.modal = dialog.NewCustomConfirm("Edit text", "Save", "Cancel", content, func(save bool) {
			if h.editingID != id {
				return
			}
			if save {
				h.report(h.ed.SaveEdit())
			} else {
				h.report(h.ed.CancelEdit())
			}
		}, h.w)
		h.modal.Show()
		return
	}
	c, err := h.ed.Store().Get(id)
	if err != nil {
		return
	}
	pos, size := h.canvas.ScreenRect(h.ed.Bounds(c))
	h.entry.Move(pos)
	h.entry.Resize(fyne.NewSize(max(size.Width, 120), max(size.Height, 48)))
	h.entry.Show()
	h.canvas.HideWhileEditing(id)
}

func (h *host) endEditUI() {
	if h.modal != nil {
		m := h.modal
		h.modal = nil
		m.Hide()
		h.overlay.Add(h.entry)
	}
	h.entry.Hide()
	h.canvas.HideWhileEditing("")
}

func (h *host) focus(string) {
	if h.entry.Visible() {
		h.w.Canvas().Focus(h.entry)
	}
}

func (h *host) resetEdit() {
	if err := h.ed.ResetEdit(); err != nil {
		h.report(err)
		return
	}
	if s, ok := h.ed.Editing(); ok {
		h.syncPanel = true
		h.entry.SetText(s.Text())
		h.syncPanel = false
	}
	h.refresh()
}

func (h *host) showPanel(id string) {
	c, err := h.ed.Store().Get(id)
	if err != nil {
		return
	}
	h.syncPanel = true
	h.fontSize.SetValue(float64(c.Style.EffectiveFontSize()))
	h.align.SetSelected(string(c.Style.EffectiveAlign()))
	h.color.SetText(c.Style.Color)
	h.preset.ClearSelected()
	h.syncPanel = false
	h.panel.Show()
}

func (h *host) styleChange(p domain.StylePatch) {
	h.report(h.ed.StyleChange(p))
	h.refresh()
}

func (h *host) export(ext string) {
	base := strings.TrimSuffix(h.opts.Template, filepath.Ext(h.opts.Template))
	path := base + ext
	if err := export.Export(path, h.ed.Canvas(), h.ed.Components(), export.Options{}); err != nil {
		dialog.ShowError(err, h.w)
		return
	}
	h.status.SetText(fmt.Sprintf("Exported %s", path))
}

func (h *host) report(err error) {
	if err != nil {
		h.status.SetText(err.Error())
	}
}

func (h *host) refresh() {
	if h.canvas != nil {
		h.canvas.Refresh()
	}
}
