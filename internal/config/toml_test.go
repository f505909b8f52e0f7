package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.Analysis.Model != nil || cfg.Learning.HistoryLimit != nil {
		t.Fatalf("expected empty config, got %+v", cfg)
	}
}

func TestLoadConfigDecodesSections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	body := `[analysis]
model = "gpt-4o-mini"
timeout = "30s"
replace-mode = "text"

[learning]
history-limit = 200
undo-limit = 10

[log]
level = "debug"
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Analysis.Model == nil || *cfg.Analysis.Model != "gpt-4o-mini" {
		t.Fatalf("unexpected model: %v", cfg.Analysis.Model)
	}
	if cfg.Analysis.Timeout == nil || *cfg.Analysis.Timeout != "30s" {
		t.Fatalf("unexpected timeout: %v", cfg.Analysis.Timeout)
	}
	if cfg.Analysis.ReplaceMode == nil || *cfg.Analysis.ReplaceMode != "text" {
		t.Fatalf("unexpected replace mode: %v", cfg.Analysis.ReplaceMode)
	}
	if cfg.Learning.HistoryLimit == nil || *cfg.Learning.HistoryLimit != 200 {
		t.Fatalf("unexpected history limit: %v", cfg.Learning.HistoryLimit)
	}
	if cfg.Learning.UndoLimit == nil || *cfg.Learning.UndoLimit != 10 {
		t.Fatalf("unexpected undo limit: %v", cfg.Learning.UndoLimit)
	}
	if cfg.Log.Level == nil || *cfg.Log.Level != "debug" {
		t.Fatalf("unexpected log level: %v", cfg.Log.Level)
	}
	if cfg.Analysis.BaseURL != nil {
		t.Fatalf("expected unset base-url")
	}
}

func TestLoadConfigRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[analysis]\nmodle = \"x\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	_, err := LoadConfig(path)
	if err == nil || !strings.Contains(err.Error(), "modle") {
		t.Fatalf("expected unknown key error, got %v", err)
	}
}

func TestDefaultPathsUseXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/cfg")
	t.Setenv("XDG_DATA_HOME", "/tmp/data")
	t.Setenv("XDG_STATE_HOME", "/tmp/state")
	if got := DefaultConfigPath(); got != "/tmp/cfg/shuddho/config.toml" {
		t.Fatalf("config path = %q", got)
	}
	if got := DefaultDBPath(); got != "/tmp/data/shuddho/shuddho.db" {
		t.Fatalf("db path = %q", got)
	}
	if got := DefaultLogPath(); got != "/tmp/state/shuddho/shuddho.log" {
		t.Fatalf("log path = %q", got)
	}
}
