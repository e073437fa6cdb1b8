package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"

	"pxsnap/src/config"
	"pxsnap/src/eventloop"
	"pxsnap/src/hotkey"
	"pxsnap/src/logutil"
	"pxsnap/src/notification"
	"pxsnap/src/runtimeinit"
	"pxsnap/src/tray"
	"pxsnap/src/ui"
)

// normalizeFlagDashes maps GNU-style --config to the -config form the flag
// package expects.
func normalizeFlagDashes(args []string) []string {
	normalized := make([]string, len(args))
	copy(normalized, args)
	for i := 1; i < len(normalized); i++ {
		arg := normalized[i]
		switch {
		case arg == "--config":
			normalized[i] = "-config"
		case strings.HasPrefix(arg, "--config="):
			normalized[i] = "-config" + arg[len("--config"):]
		}
	}
	return normalized
}

func main() {
	// DPI awareness must be set before any window or metrics query.
	enableDPIAwareness()

	// fyne drives its event loop from the main goroutine; keep it pinned.
	runtime.LockOSThread()

	configPath := flag.String("config", "", "Settings file path (overrides PXSNAP_CONFIG)")
	os.Args = normalizeFlagDashes(os.Args)
	flag.Parse()

	cfg, store, err := runtimeinit.Bootstrap(runtimeinit.Options{
		LoadOptions:  config.LoadOptions{SettingsPathOverride: *configPath},
		SetupLogging: logutil.Setup,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "pxsnap: %v\n", err)
		notification.ShowBlockingError("pxsnap failed to start", err.Error())
		os.Exit(1)
	}

	logMonitorConfiguration()
	settings := store.Settings()
	log.Printf("pxsnap initialized")
	log.Printf("Save directory: %s", settings.SaveDirectory)
	log.Printf("Hotkeys: fullscreen=%q region=%q", settings.HotkeyFullscreen, settings.HotkeyRegion)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The window posts into the loop and the loop reports back through the
	// window; the closure indirection breaks the construction cycle.
	var loop *eventloop.Loop
	win := ui.New(ui.Config{
		Store:               store,
		OnCaptureFullscreen: func() { loop.Post(eventloop.RequestFullscreen) },
		OnCaptureRegion:     func() { loop.Post(eventloop.RequestRegion) },
	})

	loop = eventloop.New(cfg, store, win)
	tooltip := fmt.Sprintf("pxsnap - Press %s to capture", settings.HotkeyFullscreen)
	loop.SetDefaultTooltip(tooltip)

	trayIcon, _ := tray.New(tray.Config{
		Title:               "pxsnap",
		Tooltip:             tooltip,
		OnCaptureFullscreen: func() { loop.Post(eventloop.RequestFullscreen) },
		OnCaptureRegion:     func() { loop.Post(eventloop.RequestRegion) },
		OnOpenFolder: func() {
			if err := ui.OpenFolder(store.Settings().SaveDirectory); err != nil {
				log.Printf("Failed to open save folder: %v", err)
			}
		},
		OnExit: func() { cancel() },
	})
	go trayIcon.Run()
	defer trayIcon.Destroy()

	if err := loop.StartHotkeys(settings.HotkeyFullscreen, settings.HotkeyRegion); err != nil {
		log.Printf("Hotkey registration failed: %v", err)
		win.ShowStatus("Hotkeys unavailable - use the buttons or tray menu")
	}
	defer hotkey.Stop()

	// SIGINT/SIGTERM wind down the same way as tray Quit.
	go func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
		<-ch
		cancel()
	}()

	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		if err := loop.Run(ctx); err != nil {
			log.Printf("event loop stopped: %v", err)
		}
	}()

	// Tray Quit or a signal closes the window; closing the window exits.
	go func() {
		<-ctx.Done()
		win.Quit()
	}()

	win.ShowAndRun()

	cancel()
	<-loopDone
}
