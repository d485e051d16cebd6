package runtimeinit

import (
	"fmt"
	"log"

	"vr-dimension/src/clipboard"
	"vr-dimension/src/config"
	"vr-dimension/src/settings"
)

type Options struct {
	LoadOptions  config.LoadOptions
	SetupLogging func(bool)
	// RequireClipboard turns a clipboard init failure into an error; by
	// default it is only logged and Copy Frame reports it.
	RequireClipboard bool
}

// Bootstrap loads configuration, sets up logging, loads the settings file
// and initializes the clipboard. An unreadable settings file falls back to
// defaults so the app still starts.
func Bootstrap(opts Options) (*config.Config, *settings.Settings, error) {
	cfg, err := config.LoadWithOptions(opts.LoadOptions)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if opts.SetupLogging != nil {
		opts.SetupLogging(cfg.EnableFileLogging)
	}

	s, err := settings.Load(cfg.SettingsPath)
	if err != nil {
		log.Printf("WARNING: %v; using default settings", err)
		s = settings.Default()
	} else {
		log.Printf("Settings loaded from %s", cfg.SettingsPath)
	}

	if err := clipboard.Init(); err != nil {
		if opts.RequireClipboard {
			return nil, nil, fmt.Errorf("failed to initialize clipboard: %w", err)
		}
		log.Printf("WARNING: clipboard unavailable: %v", err)
	}

	return cfg, s, nil
}
