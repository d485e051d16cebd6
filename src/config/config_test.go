package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	t.Setenv("ENABLE_FILE_LOGGING", "true")
	t.Setenv("HOTKEY", "Ctrl+Shift+F9")
	t.Setenv("TARGET_WINDOW_HINT", "X-Plane")
	t.Setenv("IDLE_DELAY_MS", "250")
	t.Setenv("ERROR_DELAY_MS", "-5")
	t.Setenv(SettingsPathEnvVar, "/tmp/vr/settings.json")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Failed to load configuration: %v", err)
	}

	if !cfg.EnableFileLogging {
		t.Errorf("Expected EnableFileLogging to be true, got %v", cfg.EnableFileLogging)
	}
	if cfg.Hotkey != "Ctrl+Shift+F9" {
		t.Errorf("Expected Hotkey to be 'Ctrl+Shift+F9', got '%s'", cfg.Hotkey)
	}
	if cfg.TargetHint != "X-Plane" {
		t.Errorf("Expected TargetHint 'X-Plane', got '%s'", cfg.TargetHint)
	}
	if cfg.IdleDelay != 250*time.Millisecond {
		t.Errorf("Expected IdleDelay 250ms, got %v", cfg.IdleDelay)
	}
	if cfg.ErrorDelay != DefaultErrorDelayMs*time.Millisecond {
		t.Errorf("Expected invalid ERROR_DELAY_MS to fall back to default, got %v", cfg.ErrorDelay)
	}
	if cfg.SettingsPath != "/tmp/vr/settings.json" {
		t.Errorf("Expected SettingsPath from env, got '%s'", cfg.SettingsPath)
	}
}

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"ENABLE_FILE_LOGGING", "HOTKEY", "TARGET_WINDOW_HINT", "IDLE_DELAY_MS", "ERROR_DELAY_MS", SettingsPathEnvVar} {
		t.Setenv(k, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.EnableFileLogging {
		t.Error("file logging should default to off")
	}
	if cfg.Hotkey != DefaultHotkey || cfg.TargetHint != DefaultTargetHint {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if filepath.Base(cfg.SettingsPath) != "vr_dimension_settings.json" {
		t.Errorf("unexpected default settings path %q", cfg.SettingsPath)
	}
}

func TestLoadOptionsOverride(t *testing.T) {
	t.Setenv(SettingsPathEnvVar, "/from/env.json")
	t.Setenv("HOTKEY", "Ctrl+Alt+Q")

	cfg, err := LoadWithOptions(LoadOptions{
		SettingsPathOverride: "/from/flag.yaml",
		WindowOverride:       "  My Sim  ",
		HotkeyOverride:       "F10",
	})
	if err != nil {
		t.Fatalf("LoadWithOptions failed: %v", err)
	}
	if cfg.SettingsPath != "/from/flag.yaml" {
		t.Errorf("flag should win over env, got %q", cfg.SettingsPath)
	}
	if cfg.InitialWindow != "My Sim" {
		t.Errorf("expected trimmed window override, got %q", cfg.InitialWindow)
	}
	if cfg.Hotkey != "F10" {
		t.Errorf("expected hotkey override, got %q", cfg.Hotkey)
	}
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, "custom.env")
	if err := os.WriteFile(envFile, []byte("TARGET_WINDOW_HINT=DCS World\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvPathEnvVar, envFile)
	// godotenv.Load never overrides variables already present, so make sure
	// the key is absent rather than empty.
	os.Unsetenv("TARGET_WINDOW_HINT")
	t.Cleanup(func() { os.Unsetenv("TARGET_WINDOW_HINT") })

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.TargetHint != "DCS World" {
		t.Errorf("expected hint from env file, got %q", cfg.TargetHint)
	}
}
