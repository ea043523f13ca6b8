package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadAppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	payload := `{
		"basic_config": {"server_address": ":9000", "dev_mode": true},
		"redis": {"host": "localhost", "port": 6379},
		"tmdb": {"api_key": "abc"},
		"chat": {"max_history_messages": 6}
	}`
	if err := os.WriteFile(path, []byte(payload), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.BasicConfig.ServerAddress != ":9000" || !cfg.BasicConfig.DevMode {
		t.Fatalf("basic config mismatch: %+v", cfg.BasicConfig)
	}
	if cfg.TMDB.BaseURL != "https://api.themoviedb.org/3" {
		t.Fatalf("expected default tmdb base url, got %s", cfg.TMDB.BaseURL)
	}
	if cfg.TMDB.Language != "pt-BR" {
		t.Fatalf("expected default language, got %s", cfg.TMDB.Language)
	}
	if cfg.Chat.Provider != "groq" {
		t.Fatalf("expected default provider, got %s", cfg.Chat.Provider)
	}
	if cfg.Chat.MaxHistoryMessages != 6 {
		t.Fatalf("expected configured window, got %d", cfg.Chat.MaxHistoryMessages)
	}
	if _, ok := cfg.Databases["sqlite3"]; !ok {
		t.Fatalf("expected default sqlite3 database entry")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatalf("expected error for missing config file")
	}
}
