// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Analysis AnalysisConfig `toml:"analysis"`
	Session  SessionConfig  `toml:"session"`
}

// AnalysisConfig maps document analysis settings.
type AnalysisConfig struct {
	ReadingWPM    *int    `toml:"reading-wpm"`
	WordsPerPage  *int    `toml:"words-per-page"`
	MaxRunes      *int    `toml:"max-runes"`
	Abbreviations *string `toml:"abbreviations"`
}

// SessionConfig maps writing session settings.
type SessionConfig struct {
	DebounceMs       *int `toml:"debounce-ms"`
	WPMWindowMinutes *int `toml:"wpm-window-minutes"`
	TickMs           *int `toml:"tick-ms"`
	IdleTimeoutMs    *int `toml:"idle-timeout-ms"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}
