package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Environment variables that override the file at runtime. Overrides are
// never written back by SaveConfig.
const (
	EnvConfigPath = "VULNRECORD_CONFIG"
	EnvDSN        = "VULNRECORD_DSN"
	EnvNatsURL    = "VULNRECORD_NATS_URL"
	EnvGoogleKey  = "GOOGLE_API_KEY"
)

type ProviderConfig struct {
	APIKey string `yaml:"api_key"`
}

type StoreConfig struct {
	Driver   string `yaml:"driver"` // memory | postgres
	DSN      string `yaml:"dsn,omitempty"`
	Capacity int    `yaml:"capacity,omitempty"`
}

type NatsConfig struct {
	URL     string `yaml:"url,omitempty"`
	Subject string `yaml:"subject,omitempty"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type Config struct {
	SelectedProvider string                    `yaml:"selected_provider"`
	SelectedModel    string                    `yaml:"selected_model"`
	Providers        map[string]ProviderConfig `yaml:"providers"`
	Store            StoreConfig               `yaml:"store"`
	Nats             NatsConfig                `yaml:"nats"`
	Server           ServerConfig              `yaml:"server"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		SelectedProvider: "gemini",
		SelectedModel:    "gemini-pro",
		Providers:        make(map[string]ProviderConfig),
		Store:            StoreConfig{Driver: "memory", Capacity: 1024},
		Server:           ServerConfig{Addr: ":8080"},
	}
}

func GetConfigPath() (string, error) {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".vulnrecord", "config.yaml"), nil
}

func LoadConfig() (*Config, error) {
	path, err := GetConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadRuntime loads the saved config and applies environment overrides.
// The result is for running commands; commands that save the config use
// LoadConfig instead.
func LoadRuntime() (*Config, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	return cfg.WithEnv(), nil
}

// LoadFrom reads the config at path, falling back to defaults when the file
// does not exist.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, err
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}
	if cfg.Providers == nil {
		cfg.Providers = make(map[string]ProviderConfig)
	}
	return cfg, nil
}

// WithEnv returns a copy of c with environment overrides applied. c itself
// is left untouched.
func (c *Config) WithEnv() *Config {
	out := *c
	out.Providers = make(map[string]ProviderConfig, len(c.Providers))
	for name, p := range c.Providers {
		out.Providers[name] = p
	}
	if dsn := os.Getenv(EnvDSN); dsn != "" {
		out.Store.DSN = dsn
		if out.Store.Driver == "" || out.Store.Driver == "memory" {
			out.Store.Driver = "postgres"
		}
	}
	if url := os.Getenv(EnvNatsURL); url != "" {
		out.Nats.URL = url
	}
	return &out
}

func SaveConfig(cfg *Config) error {
	path, err := GetConfigPath()
	if err != nil {
		return err
	}
	return SaveTo(path, cfg)
}

// SaveTo writes cfg to path with 0600 permissions (it holds API keys).
func SaveTo(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

func (c *Config) SetAPIKey(provider, key string) {
	p := c.Providers[provider]
	p.APIKey = key
	c.Providers[provider] = p
}

// GetAPIKey returns the stored key, falling back to GOOGLE_API_KEY for gemini.
func (c *Config) GetAPIKey(provider string) string {
	if key := c.Providers[provider].APIKey; key != "" {
		return key
	}
	if provider == "gemini" {
		return os.Getenv(EnvGoogleKey)
	}
	return ""
}
