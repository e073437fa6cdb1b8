// Package ui is the fyne window shell: capture buttons, preview pane,
// settings form, and status bar. It implements the event loop's Frontend
// interface; every Frontend method marshals onto the fyne thread, so the
// loop goroutine never touches widgets directly.
package ui

import (
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"pxsnap/src/config"
	"pxsnap/src/session"
)

const (
	previewMaxWidth  = 500
	previewMaxHeight = 400
)

// Config wires the window to the rest of the application.
type Config struct {
	Store               *config.Store
	OnCaptureFullscreen func()
	OnCaptureRegion     func()
}

// Window is the single application window.
type Window struct {
	app    fyne.App
	window fyne.Window
	store  *config.Store

	onCaptureFullscreen func()
	onCaptureRegion     func()

	regionBtn     *widget.Button
	statusLabel   *widget.Label
	preview       *canvas.Image
	previewHolder *fyne.Container

	dirEntry      *widget.Entry
	prefixEntry   *widget.Entry
	formatSelect  *widget.Select
	previewCheck  *widget.Check
	autoOpenCheck *widget.Check

	startupWidth  int
	startupHeight int
}

func New(cfg Config) *Window {
	a := app.New()
	a.SetIcon(theme.MediaPhotoIcon())

	w := &Window{
		app:                 a,
		window:              a.NewWindow("pxsnap"),
		store:               cfg.Store,
		onCaptureFullscreen: cfg.OnCaptureFullscreen,
		onCaptureRegion:     cfg.OnCaptureRegion,
	}

	w.window.SetContent(w.buildUI())
	w.refreshFromSettings()
	w.applyStartupGeometry()

	w.window.SetCloseIntercept(func() {
		w.persistGeometry()
		w.window.SetCloseIntercept(nil)
		w.window.Close()
	})

	return w
}

// ShowAndRun shows the window and blocks inside the fyne event loop.
func (w *Window) ShowAndRun() {
	w.window.ShowAndRun()
}

// Quit stops the fyne app. Safe to call from any goroutine.
func (w *Window) Quit() {
	fyne.Do(func() { w.app.Quit() })
}

func (w *Window) buildUI() fyne.CanvasObject {
	fullBtn := widget.NewButton("Capture Full Screen", func() {
		if w.onCaptureFullscreen != nil {
			w.onCaptureFullscreen()
		}
	})
	fullBtn.Importance = widget.HighImportance
	w.regionBtn = widget.NewButton("Capture Region", func() {
		if w.onCaptureRegion != nil {
			w.onCaptureRegion()
		}
	})
	actions := container.NewGridWithColumns(2, fullBtn, w.regionBtn)

	w.preview = &canvas.Image{FillMode: canvas.ImageFillContain}
	w.previewHolder = container.NewGridWrap(fyne.NewSize(previewMaxWidth, previewMaxHeight), w.preview)
	w.previewHolder.Hide()

	w.dirEntry = widget.NewEntry()
	browseBtn := widget.NewButton("Browse", w.browseSaveFolder)
	w.prefixEntry = widget.NewEntry()
	w.formatSelect = widget.NewSelect([]string{"png", "jpg"}, nil)
	w.previewCheck = widget.NewCheck("Show preview", nil)
	w.autoOpenCheck = widget.NewCheck("Open folder after save", nil)

	form := widget.NewForm(
		widget.NewFormItem("Save folder", container.NewBorder(nil, nil, nil, browseBtn, w.dirEntry)),
		widget.NewFormItem("Filename prefix", w.prefixEntry),
		widget.NewFormItem("Format", w.formatSelect),
		widget.NewFormItem("", w.previewCheck),
		widget.NewFormItem("", w.autoOpenCheck),
	)

	applyBtn := widget.NewButton("Apply", w.applySettings)
	applyBtn.Importance = widget.HighImportance
	resetBtn := widget.NewButton("Reset Defaults", w.confirmReset)

	content := container.NewVBox(
		actions,
		container.NewCenter(w.previewHolder),
		widget.NewSeparator(),
		form,
		container.NewHBox(applyBtn, resetBtn),
	)

	w.statusLabel = widget.NewLabel("Ready")
	return container.NewBorder(nil, container.NewPadded(w.statusLabel), nil, nil,
		container.NewScroll(content))
}

func (w *Window) browseSaveFolder() {
	dialog.ShowFolderOpen(func(uri fyne.ListableURI, err error) {
		if err != nil {
			dialog.ShowError(err, w.window)
			return
		}
		if uri == nil {
			return // cancelled
		}
		w.dirEntry.SetText(uri.Path())
	}, w.window)
}

// applySettings pushes every form field into the store in one Update, so a
// single persist covers the whole panel.
func (w *Window) applySettings() {
	err := w.store.Update(func(s *config.Settings) {
		s.SaveDirectory = strings.TrimSpace(w.dirEntry.Text)
		s.FilePrefix = strings.TrimSpace(w.prefixEntry.Text)
		s.FileFormat = w.formatSelect.Selected
		s.ShowPreview = w.previewCheck.Checked
		s.AutoOpenFolder = w.autoOpenCheck.Checked
	})
	// The in-memory settings changed either way; refresh so normalized
	// values show up in the form.
	w.refreshFromSettings()
	if err != nil {
		dialog.ShowError(fmt.Errorf("settings could not be written: %w", err), w.window)
		w.statusLabel.SetText("Settings applied, but not saved to disk")
		return
	}
	w.statusLabel.SetText("Settings saved")
}

func (w *Window) confirmReset() {
	dialog.ShowConfirm("Reset Settings", "Restore all settings to their defaults?", func(ok bool) {
		if !ok {
			return
		}
		if err := w.store.ResetToDefaults(); err != nil {
			dialog.ShowError(err, w.window)
		}
		w.refreshFromSettings()
		w.statusLabel.SetText("Settings reset to defaults")
	}, w.window)
}

func (w *Window) refreshFromSettings() {
	s := w.store.Settings()
	w.dirEntry.SetText(s.SaveDirectory)
	w.prefixEntry.SetText(s.FilePrefix)
	w.formatSelect.SetSelected(s.FileFormat)
	w.previewCheck.SetChecked(s.ShowPreview)
	w.autoOpenCheck.SetChecked(s.AutoOpenFolder)

	if !s.ShowPreview {
		w.previewHolder.Hide()
	} else if w.preview.Image != nil {
		w.previewHolder.Show()
	}
}

func (w *Window) applyStartupGeometry() {
	width, height, ok := parseGeometry(w.store.Settings().WindowGeometry)
	if !ok {
		width, height, _ = parseGeometry(config.DefaultSettings().WindowGeometry)
	}
	w.startupWidth, w.startupHeight = width, height
	w.window.Resize(fyne.NewSize(float32(width), float32(height)))
}

// persistGeometry writes the window size back only when it differs from the
// size applied at startup, so content-driven layout never rewrites the file.
func (w *Window) persistGeometry() {
	size := w.window.Canvas().Size()
	width, height := int(size.Width), int(size.Height)
	if width == w.startupWidth && height == w.startupHeight {
		return
	}
	if err := w.store.Update(func(s *config.Settings) {
		s.WindowGeometry = formatGeometry(width, height)
	}); err != nil {
		log.Printf("Failed to persist window geometry: %v", err)
	}
}

// ShowStatus implements the event loop Frontend.
func (w *Window) ShowStatus(text string) {
	fyne.Do(func() { w.statusLabel.SetText(text) })
}

// ShowResult implements the event loop Frontend.
func (w *Window) ShowResult(res session.Result) {
	settings := w.store.Settings()
	fyne.Do(func() {
		w.statusLabel.SetText(fmt.Sprintf("Saved %s", res.Path))
		if settings.ShowPreview && res.Image != nil {
			w.preview.Image = res.Image
			w.preview.Refresh()
			w.previewHolder.Show()
		}
	})
	if settings.AutoOpenFolder && res.Path != "" {
		go func() {
			if err := OpenFolder(filepath.Dir(res.Path)); err != nil {
				log.Printf("Failed to open save folder: %v", err)
			}
		}()
	}
}

// ShowError implements the event loop Frontend.
func (w *Window) ShowError(title string, err error) {
	fyne.Do(func() {
		body := widget.NewLabel(err.Error())
		body.Wrapping = fyne.TextWrapWord
		dialog.ShowCustom(title, "OK", body, w.window)
	})
}

// SetSelectionActive implements the event loop Frontend. The region button
// stays disabled while the overlay owns the screen.
func (w *Window) SetSelectionActive(active bool) {
	fyne.Do(func() {
		if active {
			w.regionBtn.Disable()
		} else {
			w.regionBtn.Enable()
		}
	})
}
