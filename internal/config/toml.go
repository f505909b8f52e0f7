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
	Learning LearningConfig `toml:"learning"`
	Log      LogConfig      `toml:"log"`
}

// AnalysisConfig maps settings of the remote model call.
type AnalysisConfig struct {
	Model        *string `toml:"model"`
	BaseURL      *string `toml:"base-url"`
	APIKeyEnv    *string `toml:"api-key-env"`
	Timeout      *string `toml:"timeout"`
	MinInterval  *string `toml:"min-interval"`
	WritingStyle *string `toml:"writing-style"`
	ReplaceMode  *string `toml:"replace-mode"`
}

// LearningConfig maps learning store and undo settings.
type LearningConfig struct {
	HistoryLimit *int    `toml:"history-limit"`
	UndoLimit    *int    `toml:"undo-limit"`
	Confusables  *string `toml:"confusables"`
}

// LogConfig maps logging settings.
type LogConfig struct {
	Level *string `toml:"level"`
	File  *string `toml:"file"`
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
