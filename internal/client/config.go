package client

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

var configProfile string

// SetProfile picks a separate preferences file, so several viewers can run
// side by side as different players.
func SetProfile(profile string) {
	configProfile = profile
}

// Config holds viewer preferences.
type Config struct {
	LastServer  string `json:"last_server"`
	LastGameID  string `json:"last_game_id,omitempty"`
	LastCountry string `json:"last_country,omitempty"`

	Scale        int  `json:"scale"`
	ShowOutlines bool `json:"show_outlines"`

	WindowWidth  int `json:"window_width,omitempty"`
	WindowHeight int `json:"window_height,omitempty"`
}

// DefaultConfig returns a config with default values.
func DefaultConfig() *Config {
	return &Config{
		LastServer:   "localhost:30000",
		Scale:        2,
		ShowOutlines: true,
	}
}

// LoadConfig reads the preferences of the current profile. A missing file
// is not an error.
func LoadConfig() (*Config, error) {
	path, err := configPath()
	if err != nil {
		return DefaultConfig(), err
	}
	return loadConfigFile(path)
}

// Save writes the preferences of the current profile.
func (c *Config) Save() error {
	path, err := configPath()
	if err != nil {
		return err
	}
	return c.saveFile(path)
}

func loadConfigFile(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return cfg, nil
	case err != nil:
		return cfg, err
	}

	// Decoding over the defaults keeps them for fields the file lacks.
	if err := json.Unmarshal(data, cfg); err != nil {
		return DefaultConfig(), err
	}
	cfg.Scale = max(cfg.Scale, 1)
	return cfg, nil
}

func (c *Config) saveFile(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// configPath is viewer.json, or viewer-<profile>.json, under the user's
// config directory.
func configPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	name := "viewer.json"
	if configProfile != "" {
		name = "viewer-" + configProfile + ".json"
	}
	return filepath.Join(dir, "world-conquest", name), nil
}
