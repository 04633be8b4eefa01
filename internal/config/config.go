// Package config loads ambient, CLI-level settings: author identity,
// logging verbosity, and the default watch-config path. The core
// packages (objectstore, parser, graph, indexer, vcs, repository) never
// import this package; they take plain values through their
// constructors.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds ambient settings read by cmd/memexia before constructing
// a Repository.
type Config struct {
	// AuthorName/AuthorEmail are used as the default commit author when
	// git config user.name/user.email are unset.
	AuthorName  string `yaml:"author_name" mapstructure:"author_name"`
	AuthorEmail string `yaml:"author_email" mapstructure:"author_email"`

	// WatchConfigPath is a path to an allow/deny JSON file for the
	// indexer. It is stored and loaded only; `reindex` always uses the
	// built-in default watch configuration.
	WatchConfigPath string `yaml:"watch_config_path" mapstructure:"watch_config_path"`

	// LogLevel is one of debug/info/warn/error.
	LogLevel string `yaml:"log_level" mapstructure:"log_level"`
	// LogFile is the path logging.Config.OutputFile should use; empty disables file output.
	LogFile string `yaml:"log_file" mapstructure:"log_file"`
	// JSONLogs switches the structured logger to JSON output.
	JSONLogs bool `yaml:"json_logs" mapstructure:"json_logs"`

	// HistoryCacheEnabled is stored and loaded only; the graph history
	// opens its bbolt acceleration index regardless of this value.
	HistoryCacheEnabled bool `yaml:"history_cache_enabled" mapstructure:"history_cache_enabled"`
}

// Default returns the configuration used when no file or environment
// overrides are present.
func Default() *Config {
	return &Config{
		AuthorName:          "Memexia User",
		AuthorEmail:         "user@memexia.local",
		LogLevel:            "info",
		JSONLogs:            false,
		HistoryCacheEnabled: true,
	}
}

// Load reads configuration from path (if non-empty) or the standard
// search locations (.memexia/config.yaml, ./config.yaml, ~/.memexia/config.yaml),
// then applies MEMEXIA_-prefixed environment variable overrides.
func Load(path string) (*Config, error) {
	loadEnvFiles()

	v := viper.New()
	v.SetConfigType("yaml")

	cfg := Default()
	v.SetDefault("author_name", cfg.AuthorName)
	v.SetDefault("author_email", cfg.AuthorEmail)
	v.SetDefault("log_level", cfg.LogLevel)
	v.SetDefault("json_logs", cfg.JSONLogs)
	v.SetDefault("history_cache_enabled", cfg.HistoryCacheEnabled)

	v.SetEnvPrefix("MEMEXIA")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".memexia")
		v.AddConfigPath(".")
		if homeDir, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(homeDir, ".memexia"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyEnvOverrides(cfg)

	return cfg, nil
}

// loadEnvFiles loads .env files in order of precedence, mirroring the
// teacher's layering (local overrides beat the shared file).
func loadEnvFiles() {
	for _, file := range []string{".env.local", ".env"} {
		if _, err := os.Stat(file); err == nil {
			_ = godotenv.Load(file)
		}
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		homeEnvFile := filepath.Join(homeDir, ".memexia", ".env")
		if _, err := os.Stat(homeEnvFile); err == nil {
			_ = godotenv.Load(homeEnvFile)
		}
	}
}

func applyEnvOverrides(cfg *Config) {
	if name := os.Getenv("MEMEXIA_AUTHOR_NAME"); name != "" {
		cfg.AuthorName = name
	}
	if email := os.Getenv("MEMEXIA_AUTHOR_EMAIL"); email != "" {
		cfg.AuthorEmail = email
	}
	if level := os.Getenv("MEMEXIA_LOG_LEVEL"); level != "" {
		cfg.LogLevel = level
	}
	if path := os.Getenv("MEMEXIA_WATCH_CONFIG"); path != "" {
		cfg.WatchConfigPath = expandPath(path)
	}
}

func expandPath(path string) string {
	if path == "" || path[0] != '~' {
		return path
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(homeDir, path[1:])
}

// Save persists cfg to path as YAML.
func (c *Config) Save(path string) error {
	v := viper.New()
	v.SetConfigType("yaml")
	v.Set("author_name", c.AuthorName)
	v.Set("author_email", c.AuthorEmail)
	v.Set("watch_config_path", c.WatchConfigPath)
	v.Set("log_level", c.LogLevel)
	v.Set("log_file", c.LogFile)
	v.Set("json_logs", c.JSONLogs)
	v.Set("history_cache_enabled", c.HistoryCacheEnabled)

	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}
	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Author formats the git-style "Name <email>" author string.
func (c *Config) Author() string {
	return fmt.Sprintf("%s <%s>", c.AuthorName, c.AuthorEmail)
}
