package runtimeinit

import (
	"fmt"
	"log"

	"pxsnap/src/clipboard"
	"pxsnap/src/config"
)

type Options struct {
	LoadOptions  config.LoadOptions
	SetupLogging func(bool)

	// SkipClipboard leaves the clipboard uninitialized; headless callers
	// that never copy set it.
	SkipClipboard bool
}

// Bootstrap loads the environment config, sets up logging, and opens the
// settings store. Clipboard init failure downgrades to copy-disabled
// instead of aborting startup.
func Bootstrap(opts Options) (*config.Config, *config.Store, error) {
	cfg, err := config.LoadWithOptions(opts.LoadOptions)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if opts.SetupLogging != nil {
		opts.SetupLogging(cfg.EnableFileLogging)
	}

	store := config.NewStore(cfg.SettingsPath)
	log.Printf("Settings file: %s", store.Path())

	if cfg.CopyToClipboard && !opts.SkipClipboard {
		if err := clipboard.Init(); err != nil {
			log.Printf("Clipboard unavailable, copy disabled: %v", err)
			cfg.CopyToClipboard = false
		}
	}

	return cfg, store, nil
}
