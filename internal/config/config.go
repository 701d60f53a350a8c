// Package config handles global Mimir configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// DefaultTranslateURL is the default address of the local Zotero
// translation server used for URL-based entry creation.
const DefaultTranslateURL = "http://localhost:1969"

// Config represents the global Mimir configuration.
type Config struct {
	// DefaultStore is the name of the default store (from Stores map).
	DefaultStore string `toml:"default_store"`

	// Stores is a map of store names to root paths.
	Stores map[string]string `toml:"stores"`

	// TransferMode is the default attachment transfer mode: ln, cp, or mv.
	TransferMode string `toml:"transfer_mode"`

	// WatchDir is scanned for the newest file when an attach operation is
	// given no explicit path (e.g. "~/Downloads").
	WatchDir string `toml:"watch_dir"`

	// Editor is the editor for manual record entry (defaults to $EDITOR).
	Editor string `toml:"editor"`

	// TranslateURL is the base URL of the metadata translation server.
	TranslateURL string `toml:"translate_url"`
}

// GetStorePath returns the root path for a named store. If name is empty,
// the default store is used.
func (c *Config) GetStorePath(name string) (string, error) {
	if name == "" {
		name = c.DefaultStore
	}
	if name == "" {
		return "", fmt.Errorf("no default store configured")
	}
	if path, ok := c.Stores[name]; ok {
		return expandHome(path), nil
	}
	return "", fmt.Errorf("store '%s' not found in config", name)
}

// GetTransferMode returns the configured default transfer mode string,
// falling back to "cp".
func (c *Config) GetTransferMode() string {
	if c.TransferMode == "" {
		return "cp"
	}
	return c.TransferMode
}

// GetWatchDir returns the watch directory with "~" expanded.
func (c *Config) GetWatchDir() string {
	return expandHome(c.WatchDir)
}

// GetEditor returns the editor to use, falling back to $EDITOR.
func (c *Config) GetEditor() string {
	if c.Editor != "" {
		return c.Editor
	}
	return os.Getenv("EDITOR")
}

// GetTranslateURL returns the translation server base URL.
func (c *Config) GetTranslateURL() string {
	if c.TranslateURL != "" {
		return c.TranslateURL
	}
	return DefaultTranslateURL
}

// Load loads the configuration from the default location. Returns a default
// config if the file doesn't exist.
func Load() (*Config, error) {
	path := DefaultPath()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return &Config{}, nil
	}
	return LoadFrom(path)
}

// LoadFrom loads the configuration from a specific path.
func LoadFrom(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return &cfg, nil
}

// DefaultPath returns the default config file path, preferring XDG-style
// ~/.config/mimir/config.toml.
func DefaultPath() string {
	if home, err := os.UserHomeDir(); err == nil {
		xdgPath := filepath.Join(home, ".config", "mimir", "config.toml")
		if _, err := os.Stat(xdgPath); err == nil {
			return xdgPath
		}
	}
	if configDir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(configDir, "mimir", "config.toml")
	}
	return filepath.Join(".", "config.toml")
}

// CreateDefault creates a commented default config file if none exists and
// returns its path.
func CreateDefault() (string, error) {
	path := DefaultPath()
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	defaultConfig := `# Mimir configuration

# Default store name (must exist in [stores] below)
# default_store = "library"

# Named stores
# [stores]
# library = "/path/to/your/references"

# Default attachment transfer mode: ln (hard link), cp (copy), mv (move)
# transfer_mode = "cp"

# Directory scanned for the newest file when attaching without a path
# watch_dir = "~/Downloads"

# Editor for manual record entry (defaults to $EDITOR)
# editor = "vim"

# Zotero translation server for 'mmr new --from <url>'
# translate_url = "http://localhost:1969"
`
	if err := os.WriteFile(path, []byte(defaultConfig), 0o644); err != nil {
		return "", fmt.Errorf("failed to write config file: %w", err)
	}
	return path, nil
}

func expandHome(p string) string {
	if p == "~" || len(p) > 1 && p[0] == '~' && p[1] == '/' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, p[1:])
		}
	}
	return p
}
