package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config represents runtime configuration for the service.
type Config struct {
	BasicConfig BasicConfig               `json:"basic_config"`
	Databases   map[string]DatabaseConfig `json:"databases"`
	Redis       RedisConfig               `json:"redis"`
	Providers   map[string]ProviderConfig `json:"providers"`
	TMDB        TMDBConfig                `json:"tmdb"`
	Chat        ChatConfig                `json:"chat"`
	SMTP        SMTPConfig                `json:"smtp"`
}

type BasicConfig struct {
	ServerAddress string `json:"server_address"`
	// DevMode loosens behavior that must never be on in production,
	// e.g. returning password-reset codes in API responses.
	DevMode bool `json:"dev_mode"`
}

type DatabaseConfig struct {
	DSN      string `json:"dsn"`
	Username string `json:"username"`
	Password string `json:"password"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	DBName   string `json:"db_name"`
	Params   string `json:"params"`
}

type RedisConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Username string `json:"username"`
	Password string `json:"password"`
	DB       int    `json:"db"`
}

type ProviderConfig struct {
	BaseURL string `json:"base_url"`
	Model   string `json:"model"`
	APIKey  string `json:"api_key"`
}

type TMDBConfig struct {
	BaseURL  string `json:"base_url"`
	APIKey   string `json:"api_key"`
	Language string `json:"language"`
}

// ChatConfig tunes the assistant pipeline. Zero values fall back to the
// defaults the platform shipped with.
type ChatConfig struct {
	Provider              string `json:"provider"`
	Model                 string `json:"model"`
	MaxHistoryMessages    int    `json:"max_history_messages"`
	SessionTimeoutMinutes int    `json:"session_timeout_minutes"`
	SweepIntervalMinutes  int    `json:"sweep_interval_minutes"`
	ResolveTimeoutSeconds int    `json:"resolve_timeout_seconds"`
}

type SMTPConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Username string `json:"username"`
	Password string `json:"password"`
	From     string `json:"from"`
}

// Load reads configuration from the provided path (defaults to config.json).
func Load(path string) (*Config, error) {
	if path == "" {
		path = "config.json"
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve config path: %w", err)
	}

	file, err := os.Open(absPath)
	if err != nil {
		return nil, fmt.Errorf("open config %s: %w", absPath, err)
	}
	defer file.Close()

	var cfg Config
	if err := json.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if cfg.Databases == nil {
		cfg.Databases = make(map[string]DatabaseConfig)
	}
	if _, ok := cfg.Databases["sqlite3"]; !ok {
		cfg.Databases["sqlite3"] = DatabaseConfig{DSN: filepath.Join(filepath.Dir(absPath), "data", "cinehome.db")}
	}
	if cfg.TMDB.BaseURL == "" {
		cfg.TMDB.BaseURL = "https://api.themoviedb.org/3"
	}
	if cfg.TMDB.Language == "" {
		cfg.TMDB.Language = "pt-BR"
	}
	if cfg.Chat.Provider == "" {
		cfg.Chat.Provider = "groq"
	}

	return &cfg, nil
}
