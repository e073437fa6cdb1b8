package tray

import (
	"log"
	"sync/atomic"

	"github.com/getlantern/systray"
)

// Config wires the tray menu to the application.
type Config struct {
	Title   string
	Tooltip string

	OnCaptureFullscreen func()
	OnCaptureRegion     func()
	OnOpenFolder        func()
	OnExit              func()
}

// Tray owns the systray icon and its menu. Run blocks inside the systray
// loop until Destroy or the Quit menu item.
type Tray struct {
	cfg Config
}

var trayReady atomic.Bool

func New(cfg Config) (*Tray, error) {
	if cfg.Title == "" {
		cfg.Title = "pxsnap"
	}
	if cfg.Tooltip == "" {
		cfg.Tooltip = cfg.Title
	}
	return &Tray{cfg: cfg}, nil
}

// Run starts the systray loop on the calling goroutine.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Destroy removes the tray icon. A no-op when the icon never came up.
func (t *Tray) Destroy() {
	if trayReady.Load() {
		systray.Quit()
	}
}

// UpdateTooltip changes the hover text. A no-op until the icon is up, so
// callers need not track tray state.
func UpdateTooltip(text string) {
	if !trayReady.Load() {
		return
	}
	systray.SetTooltip(text)
}

func (t *Tray) onReady() {
	systray.SetIcon(Icon())
	systray.SetTitle(t.cfg.Title)
	systray.SetTooltip(t.cfg.Tooltip)

	mFull := systray.AddMenuItem("Capture Full Screen", "Capture the entire screen")
	mRegion := systray.AddMenuItem("Capture Region", "Select a screen region to capture")
	mFolder := systray.AddMenuItem("Open Save Folder", "Open the screenshot folder")
	systray.AddSeparator()
	mQuit := systray.AddMenuItem("Quit", "Exit pxsnap")

	trayReady.Store(true)
	log.Printf("Tray: icon ready")

	go func() {
		for {
			select {
			case <-mFull.ClickedCh:
				if t.cfg.OnCaptureFullscreen != nil {
					t.cfg.OnCaptureFullscreen()
				}
			case <-mRegion.ClickedCh:
				if t.cfg.OnCaptureRegion != nil {
					t.cfg.OnCaptureRegion()
				}
			case <-mFolder.ClickedCh:
				if t.cfg.OnOpenFolder != nil {
					t.cfg.OnOpenFolder()
				}
			case <-mQuit.ClickedCh:
				systray.Quit()
				return
			}
		}
	}()
}

func (t *Tray) onExit() {
	trayReady.Store(false)
	if t.cfg.OnExit != nil {
		t.cfg.OnExit()
	}
}
