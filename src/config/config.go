package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"vr-dimension/src/settings"
)

const (
	EnvPathEnvVar       = "VR_DIMENSION_ENV"
	SettingsPathEnvVar  = "SETTINGS_PATH"
	DefaultHotkey       = "Ctrl+Alt+V"
	DefaultTargetHint   = "Flight Simulator"
	DefaultIdleDelayMs  = 100
	DefaultErrorDelayMs = 100
)

// LoadOptions carry command-line overrides; non-empty fields win over
// environment and .env values.
type LoadOptions struct {
	SettingsPathOverride string
	WindowOverride       string
	HotkeyOverride       string
}

type Config struct {
	SettingsPath      string
	EnableFileLogging bool
	Hotkey            string
	TargetHint        string
	InitialWindow     string
	IdleDelay         time.Duration
	ErrorDelay        time.Duration
}

func Load() (*Config, error) {
	return LoadWithOptions(LoadOptions{})
}

func LoadWithOptions(opts LoadOptions) (*Config, error) {
	// Sources in priority order:
	// 1) .env in the application (executable) directory
	// 2) If not found, VR_DIMENSION_ENV as a path to an env file
	// Real environment variables are never overwritten by the file.
	if envPath := resolveEnvPath(); envPath != "" {
		_ = godotenv.Load(envPath)
	}

	cfg := &Config{
		SettingsPath:      resolveSettingsPath(opts),
		EnableFileLogging: strings.ToLower(os.Getenv("ENABLE_FILE_LOGGING")) == "true",
		Hotkey:            firstNonEmpty(opts.HotkeyOverride, getEnvWithDefault("HOTKEY", DefaultHotkey)),
		TargetHint:        getEnvWithDefault("TARGET_WINDOW_HINT", DefaultTargetHint),
		InitialWindow:     strings.TrimSpace(opts.WindowOverride),
		IdleDelay:         envMillis("IDLE_DELAY_MS", DefaultIdleDelayMs),
		ErrorDelay:        envMillis("ERROR_DELAY_MS", DefaultErrorDelayMs),
	}
	return cfg, nil
}

func resolveEnvPath() string {
	if execPath, err := os.Executable(); err == nil {
		exeEnv := filepath.Join(filepath.Dir(execPath), ".env")
		if _, err := os.Stat(exeEnv); err == nil {
			return exeEnv
		}
	}

	if alt := os.Getenv(EnvPathEnvVar); alt != "" {
		if _, err := os.Stat(alt); err == nil {
			return alt
		}
	}

	return ""
}

func resolveSettingsPath(opts LoadOptions) string {
	if p := strings.TrimSpace(opts.SettingsPathOverride); p != "" {
		return p
	}
	if p := strings.TrimSpace(os.Getenv(SettingsPathEnvVar)); p != "" {
		return p
	}
	return settings.DefaultPath()
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

// envMillis reads a positive millisecond count; anything else yields def.
func envMillis(key string, def int) time.Duration {
	ms := def
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			ms = n
		}
	}
	return time.Duration(ms) * time.Millisecond
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
