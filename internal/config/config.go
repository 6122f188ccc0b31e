// Package config handles the configuration directory, backend address, and
// the persisted session token file.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"golang.org/x/oauth2"
)

const (
	// AppName is the application directory name.
	AppName = "taskcli"

	// TokenFile is the stored session token filename.
	TokenFile = "token.json"

	// BaseURLEnv overrides the backend base URL.
	BaseURLEnv = "TASKCLI_BASE_URL"

	// DefaultBaseURL is the backend base URL when BaseURLEnv is unset.
	DefaultBaseURL = "http://localhost:8000/api/v1"
)

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string

	// BaseURL is the backend base URL, including the /api/v1 prefix.
	BaseURL string

	// Debug enables request tracing to stderr.
	Debug bool

	// Quiet suppresses informational output.
	Quiet bool
}

// New creates a new Config with the default or specified config directory.
// If configDir is empty, uses XDG_CONFIG_HOME/taskcli or $HOME/.config/taskcli.
// A .env file in the working directory is loaded if present.
func New(configDir string) (*Config, error) {
	// .env is optional; missing file is not an error.
	_ = godotenv.Load()

	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}

	base := os.Getenv(BaseURLEnv)
	if base == "" {
		base = DefaultBaseURL
	}

	return &Config{Dir: dir, BaseURL: base}, nil
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home can't be determined
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// TokenPath returns the path to the stored session token file.
func (c *Config) TokenPath() string {
	return filepath.Join(c.Dir, TokenFile)
}

// EnsureDir creates the config directory if it doesn't exist.
// Directory is created with mode 0700.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}

// HasToken checks if the token file exists.
func (c *Config) HasToken() bool {
	_, err := os.Stat(c.TokenPath())
	return err == nil
}

// SaveToken writes the session token to the token file with mode 0600.
func (c *Config) SaveToken(tok *oauth2.Token) error {
	if err := c.EnsureDir(); err != nil {
		return err
	}
	data, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(c.TokenPath(), data, 0600)
}

// LoadToken reads the session token from the token file.
// Returns nil and no error if no token is stored.
func (c *Config) LoadToken() (*oauth2.Token, error) {
	data, err := os.ReadFile(c.TokenPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, err
	}
	return &tok, nil
}

// RemoveToken deletes the token file. Removing an absent file is not an error.
func (c *Config) RemoveToken() error {
	err := os.Remove(c.TokenPath())
	if err != nil && os.IsNotExist(err) {
		return nil
	}
	return err
}
