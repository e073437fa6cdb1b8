package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	// SettingsFileName is the JSON settings file kept beside the executable.
	SettingsFileName = "pxsnap_config.json"

	settingsPathEnvVar = "PXSNAP_CONFIG"
	altEnvFileVar      = "PXSNAP_ENV"
)

type LoadOptions struct {
	SettingsPathOverride string
}

// Config holds ambient options sourced from the environment (.env beside the
// executable). User-facing settings live in the JSON Settings store instead.
type Config struct {
	EnableFileLogging  bool
	SettingsPath       string
	CopyToClipboard    bool
	StampTimestamp     bool
	StampPosition      string
	CaptureDeadlineSec int
}

func Load() (*Config, error) {
	return LoadWithOptions(LoadOptions{})
}

func LoadWithOptions(opts LoadOptions) (*Config, error) {
	// Load configuration from sources in priority order:
	// 1) .env in the application (executable) directory
	// 2) If not found, use PXSNAP_ENV as a path to an env file
	if envPath := resolveEnvPath(); envPath != "" {
		_ = godotenv.Load(envPath)
	}

	cfg := &Config{
		EnableFileLogging: strings.ToLower(os.Getenv("ENABLE_FILE_LOGGING")) == "true",
		SettingsPath:      resolveSettingsPath(opts),
		CopyToClipboard:   strings.ToLower(os.Getenv("COPY_TO_CLIPBOARD")) == "true",
		StampTimestamp:    strings.ToLower(os.Getenv("STAMP_TIMESTAMP")) == "true",
		StampPosition:     getEnvWithDefault("STAMP_POSITION", "bottom-right"),
	}
	if v := os.Getenv("CAPTURE_DEADLINE_SEC"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.CaptureDeadlineSec = n
		}
	}

	return cfg, nil
}

func resolveEnvPath() string {
	execPath, err := os.Executable()
	if err != nil {
		return ""
	}

	execDir := filepath.Dir(execPath)
	exeEnv := filepath.Join(execDir, ".env")
	if _, err := os.Stat(exeEnv); err == nil {
		return exeEnv
	}

	if alt := os.Getenv(altEnvFileVar); alt != "" {
		if _, err := os.Stat(alt); err == nil {
			return alt
		}
	}

	return ""
}

// resolveSettingsPath returns the JSON settings file location: a caller
// override, else an explicit PXSNAP_CONFIG override, else SettingsFileName
// beside the executable, else SettingsFileName in the working directory.
func resolveSettingsPath(opts LoadOptions) string {
	if opts.SettingsPathOverride != "" {
		return opts.SettingsPathOverride
	}
	if override := strings.TrimSpace(os.Getenv(settingsPathEnvVar)); override != "" {
		return override
	}

	execPath, err := os.Executable()
	if err != nil {
		return SettingsFileName
	}
	return filepath.Join(filepath.Dir(execPath), SettingsFileName)
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
