// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/BurntSushi/toml"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete sera-tui configuration.
type Config struct {
	// Backend configuration
	Backend BackendConfig `toml:"backend"`

	// UI configuration
	UI UIConfig `toml:"ui"`
}

// BackendConfig contains backend service configuration.
type BackendConfig struct {
	// URL is the base URL of the Sera backend service.
	URL string `toml:"url"`
	// Verbose enables request/response logging (no bodies).
	Verbose bool `toml:"verbose"`
}

// UIConfig contains presentation configuration.
type UIConfig struct {
	// HistoryWidth is the width of the history sidebar in columns.
	HistoryWidth int `toml:"history_width"`
	// ShowSidebar toggles the history sidebar on startup.
	ShowSidebar bool `toml:"show_sidebar"`
}

// DefaultBackendURL is the fallback backend address.
const DefaultBackendURL = "http://localhost:8000"

// Default returns the built-in default configuration.
func Default() *Config {
	return &Config{
		Backend: BackendConfig{
			URL: DefaultBackendURL,
		},
		UI: UIConfig{
			HistoryWidth: 32,
			ShowSidebar:  true,
		},
	}
}

// =============================================================================
// LOADING
// =============================================================================

// Dir returns the sera configuration directory (~/.sera).
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".sera"), nil
}

// Path returns the configuration file path (~/.sera/config.toml).
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load reads the configuration from ~/.sera/config.toml, applies
// environment overrides, and validates the result. A missing file is not
// an error; defaults are used.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom reads the configuration from an explicit path.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	if data, err := os.ReadFile(path); err == nil {
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("invalid config file %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("cannot read config file %s: %w", path, err)
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("SERA_BACKEND_URL"); v != "" {
		c.Backend.URL = v
	}
	if v := os.Getenv("SERA_VERBOSE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Backend.Verbose = b
		}
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Backend.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("backend.url %q is not a valid URL", c.Backend.URL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("backend.url scheme %q is not supported (use http or https)", u.Scheme)
	}
	if c.UI.HistoryWidth < 20 {
		c.UI.HistoryWidth = 20
	}
	return nil
}

// =============================================================================
// GLOBAL ACCESS
// =============================================================================

var (
	globalMu     sync.RWMutex
	globalConfig *Config
)

// SetGlobal installs the process-wide configuration.
func SetGlobal(cfg *Config) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalConfig = cfg
}

// Global returns the process-wide configuration, or defaults if none was
// installed.
func Global() *Config {
	globalMu.RLock()
	defer globalMu.RUnlock()
	if globalConfig == nil {
		return Default()
	}
	return globalConfig
}
