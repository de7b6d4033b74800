// Package config handles loading and persisting user configuration
// for the wa CLI. Configuration is stored in ~/.workairs/config.json.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
)

const (
	dirName           = ".workairs"
	fileName          = "config.json"
	DefaultAPIURL     = "https://api.workairs.co"
	DefaultAuthScheme = "Token"
	envKeyAPIURL      = "WORKAIRS_API_URL"
	envKeyToken       = "WORKAIRS_TOKEN"
)

// Config holds the user's configuration.
type Config struct {
	APIURL     string `json:"api_url"`
	Token      string `json:"token,omitempty"`
	AuthScheme string `json:"auth_scheme,omitempty"`
}

// Dir returns the configuration directory path.
func Dir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, dirName)
}

func configPath() string {
	return filepath.Join(Dir(), fileName)
}

// Load reads the configuration from disk and environment variables.
// A missing or unreadable file yields the defaults.
func Load() (*Config, error) {
	cfg := readFile()

	if u := os.Getenv(envKeyAPIURL); u != "" {
		cfg.APIURL = u
	}
	if tok := os.Getenv(envKeyToken); tok != "" {
		cfg.Token = tok
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.APIURL == "" {
		c.APIURL = DefaultAPIURL
	}
	c.APIURL = strings.TrimRight(c.APIURL, "/")
	if c.AuthScheme == "" {
		c.AuthScheme = DefaultAuthScheme
	}
}

// readFile loads the on-disk config without environment overrides, so that
// setters never persist values that only came from the environment.
func readFile() *Config {
	cfg := &Config{APIURL: DefaultAPIURL, AuthScheme: DefaultAuthScheme}

	data, err := os.ReadFile(configPath())
	if err == nil {
		_ = json.Unmarshal(data, cfg)
	}
	return cfg
}

// save persists the config to disk.
func save(cfg *Config) error {
	if err := os.MkdirAll(Dir(), 0o700); err != nil {
		return err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(configPath(), data, 0o600)
}

// SetToken saves the API token to the config file.
func SetToken(token string) error {
	cfg := readFile()
	cfg.Token = token
	return save(cfg)
}

// ClearToken removes any stored token.
func ClearToken() error {
	return SetToken("")
}

// SetAPIURL saves the backend base URL to the config file.
func SetAPIURL(u string) error {
	cfg := readFile()
	cfg.APIURL = strings.TrimRight(u, "/")
	return save(cfg)
}

// MaskedToken returns the token with all but its edges hidden.
func (c *Config) MaskedToken() string {
	if c.Token == "" {
		return "(not set)"
	}
	if len(c.Token) <= 8 {
		return strings.Repeat("*", len(c.Token))
	}
	return c.Token[:4] + "..." + c.Token[len(c.Token)-4:]
}
