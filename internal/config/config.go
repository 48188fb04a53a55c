// Package config handles configuration loading for the recolor service.
// It supports XDG config paths, project-level overrides, and environment
// variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the service.
type Config struct {
	Anthropic AnthropicConfig `mapstructure:"anthropic"`
	Server    ServerConfig    `mapstructure:"server"`
	Model     ModelConfig     `mapstructure:"model"`
	Palette   PaletteConfig   `mapstructure:"palette"`
	Image     ImageConfig     `mapstructure:"image"`
	Session   SessionConfig   `mapstructure:"session"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	APIKey  string        `mapstructure:"api_key"`
	Model   string        `mapstructure:"model"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// ModelConfig holds recoloring model gateway settings.
type ModelConfig struct {
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// PaletteConfig holds palette derivation settings.
type PaletteConfig struct {
	Slots       int           `mapstructure:"slots"`
	ExternalURL string        `mapstructure:"external_url"`
	FetchTime   time.Duration `mapstructure:"fetch_timeout"`
}

// ImageConfig holds upload validation bounds.
type ImageConfig struct {
	MaxBytes int64 `mapstructure:"max_bytes"`
	MaxDim   int   `mapstructure:"max_dim"`
	Block    int   `mapstructure:"block"`
}

// SessionConfig holds session store settings.
type SessionConfig struct {
	DBPath        string        `mapstructure:"db_path"`
	TTL           time.Duration `mapstructure:"ttl"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

// Load loads configuration from XDG paths, project overrides, and
// environment variables. Precedence (highest to lowest):
// 1. Environment variables (ANTHROPIC_API_KEY, RECOLOR_MODEL_URL)
// 2. Project config (.recolor.yaml in current directory or parent)
// 3. User config (~/.config/recolor/config.yaml)
// 4. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	userConfigDir := getUserConfigDir()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(userConfigDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading user config: %w", err)
		}
	}

	projectConfig := findProjectConfig()
	if projectConfig != "" {
		projectViper := viper.New()
		projectViper.SetConfigFile(projectConfig)
		if err := projectViper.ReadInConfig(); err == nil {
			if err := v.MergeConfigMap(projectViper.AllSettings()); err != nil {
				return nil, fmt.Errorf("merging project config: %w", err)
			}
		}
	}

	v.AutomaticEnv()
	v.BindEnv("anthropic.api_key", "ANTHROPIC_API_KEY")
	v.BindEnv("model.url", "RECOLOR_MODEL_URL")
	v.BindEnv("server.addr", "RECOLOR_ADDR")
	v.BindEnv("session.db_path", "RECOLOR_DB_PATH")

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.Anthropic.APIKey = expandEnv(cfg.Anthropic.APIKey)

	return cfg, nil
}

// LoadFromPath loads configuration from a specific path (for testing).
func LoadFromPath(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.Anthropic.APIKey = expandEnv(cfg.Anthropic.APIKey)

	return cfg, nil
}

// GetUserConfigPath returns the path to the user config file.
func GetUserConfigPath() string {
	return filepath.Join(getUserConfigDir(), "config.yaml")
}

// GetProjectConfigPath returns the path to the project config file if it exists.
func GetProjectConfigPath() string {
	return findProjectConfig()
}

// setDefaults configures default values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("anthropic.api_key", "")
	v.SetDefault("anthropic.model", "")
	v.SetDefault("anthropic.timeout", "30s")

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "2m")
	v.SetDefault("server.shutdown_timeout", "10s")

	v.SetDefault("model.url", "http://localhost:9000")
	v.SetDefault("model.timeout", "60s")

	v.SetDefault("palette.slots", 6)
	v.SetDefault("palette.external_url", "http://colormind.io/api/")
	v.SetDefault("palette.fetch_timeout", "5s")

	v.SetDefault("image.max_bytes", 10<<20)
	v.SetDefault("image.max_dim", 350)
	v.SetDefault("image.block", 16)

	v.SetDefault("session.db_path", "")
	v.SetDefault("session.ttl", "1h")
	v.SetDefault("session.sweep_interval", "10m")
}

// getUserConfigDir returns the XDG config directory for the service.
func getUserConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "recolor")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "recolor")
	}
	return filepath.Join(home, ".config", "recolor")
}

// findProjectConfig searches for .recolor.yaml in the current directory and parents.
func findProjectConfig() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		configPath := filepath.Join(cwd, ".recolor.yaml")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(cwd)
		if parent == cwd {
			break
		}
		cwd = parent
	}

	return ""
}

// expandEnv expands ${VAR} references in a string.
func expandEnv(s string) string {
	return os.ExpandEnv(s)
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Anthropic: AnthropicConfig{
			Timeout: 30 * time.Second,
		},
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    2 * time.Minute,
			ShutdownTimeout: 10 * time.Second,
		},
		Model: ModelConfig{
			URL:     "http://localhost:9000",
			Timeout: 60 * time.Second,
		},
		Palette: PaletteConfig{
			Slots:       6,
			ExternalURL: "http://colormind.io/api/",
			FetchTime:   5 * time.Second,
		},
		Image: ImageConfig{
			MaxBytes: 10 << 20,
			MaxDim:   350,
			Block:    16,
		},
		Session: SessionConfig{
			TTL:           time.Hour,
			SweepInterval: 10 * time.Minute,
		},
	}
}
