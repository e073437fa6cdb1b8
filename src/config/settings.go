package config

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Settings is the fixed-schema user configuration persisted as pretty-printed
// JSON. Missing keys fall back to defaults on load, unknown keys are ignored.
type Settings struct {
	SaveDirectory    string `json:"save_directory"`
	FilePrefix       string `json:"file_prefix"`
	FileFormat       string `json:"file_format"`
	HotkeyFullscreen string `json:"hotkey_fullscreen"`
	HotkeyRegion     string `json:"hotkey_region"`
	ShowPreview      bool   `json:"show_preview"`
	AutoOpenFolder   bool   `json:"auto_open_folder"`
	WindowGeometry   string `json:"window_geometry"`
	TimestampFormat  string `json:"timestamp_format"`
}

// DefaultSettings returns the built-in default set. TimestampFormat is a Go
// time layout producing YYYYMMDD_HHMMSS.
func DefaultSettings() Settings {
	return Settings{
		SaveDirectory:    defaultSaveDirectory(),
		FilePrefix:       "screenshot",
		FileFormat:       "png",
		HotkeyFullscreen: "print_screen",
		HotkeyRegion:     "ctrl+print_screen",
		ShowPreview:      true,
		AutoOpenFolder:   false,
		WindowGeometry:   "540x620",
		TimestampFormat:  "20060102_150405",
	}
}

func defaultSaveDirectory() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, "Pictures")
}

// Normalize fixes up values that would break downstream consumers: empty
// strings revert to defaults and the format is lowercased.
func (s *Settings) Normalize() {
	def := DefaultSettings()
	if strings.TrimSpace(s.SaveDirectory) == "" {
		s.SaveDirectory = def.SaveDirectory
	}
	if strings.TrimSpace(s.FilePrefix) == "" {
		s.FilePrefix = def.FilePrefix
	}
	s.FileFormat = strings.ToLower(strings.TrimSpace(s.FileFormat))
	if s.FileFormat == "" {
		s.FileFormat = def.FileFormat
	}
	if strings.TrimSpace(s.TimestampFormat) == "" {
		s.TimestampFormat = def.TimestampFormat
	}
	if strings.TrimSpace(s.WindowGeometry) == "" {
		s.WindowGeometry = def.WindowGeometry
	}
}

// Store owns the settings file. Loads never fail: a missing or unparseable
// file yields defaults with a logged diagnostic. Every mutation rewrites the
// whole file synchronously.
type Store struct {
	mu      sync.Mutex
	path    string
	current Settings
}

// NewStore loads path (or defaults) and returns the store.
func NewStore(path string) *Store {
	s := &Store{path: path, current: DefaultSettings()}
	s.load()
	return s
}

func (s *Store) load() {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Settings: read %s failed: %v, using defaults", s.path, err)
		}
		return
	}

	// Unmarshal onto the defaults so absent keys keep their default values.
	loaded := DefaultSettings()
	if err := json.Unmarshal(data, &loaded); err != nil {
		log.Printf("Settings: parse %s failed: %v, using defaults", s.path, err)
		return
	}
	loaded.Normalize()
	s.current = loaded
}

// Path returns the backing file path.
func (s *Store) Path() string { return s.path }

// Settings returns a snapshot copy of the current values.
func (s *Store) Settings() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Update applies mutate to a copy of the current settings, normalizes it,
// swaps it in, and persists. An empty mutator leaves every value unchanged.
// A write failure keeps the in-memory change and is reported to the caller.
func (s *Store) Update(mutate func(*Settings)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.current
	if mutate != nil {
		mutate(&next)
	}
	next.Normalize()
	s.current = next
	return s.persistLocked()
}

// ResetToDefaults discards all overrides and persists the default set.
func (s *Store) ResetToDefaults() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = DefaultSettings()
	return s.persistLocked()
}

func (s *Store) persistLocked() error {
	data, err := json.MarshalIndent(s.current, "", "  ")
	if err != nil {
		log.Printf("Settings: marshal failed: %v", err)
		return err
	}
	if dir := filepath.Dir(s.path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Printf("Settings: create %s failed: %v", dir, err)
			return err
		}
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		log.Printf("Settings: write %s failed: %v", s.path, err)
		return err
	}
	return nil
}
