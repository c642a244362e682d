package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"
)

// Load reads configuration from standard locations with environment overrides.
// Search order: $XDG_CONFIG_HOME/playa/config.toml, ~/.config/playa/config.toml
func Load() (*Config, error) {
	return load(findConfigFile())
}

// LoadFrom reads configuration from a specific file path.
func LoadFrom(path string) (*Config, error) {
	if path == "" {
		return Load()
	}
	return load(path)
}

func load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg.ApplyDefaults()
	applyEnvOverrides(cfg)
	return cfg, nil
}

// findConfigFile returns the first existing config file path.
func findConfigFile() string {
	var paths []string
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		paths = append(paths, filepath.Join(xdg, "playa", "config.toml"))
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "playa", "config.toml"))
	}

	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// applyEnvOverrides applies environment variable overrides to the config.
// Values that do not parse are ignored.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("PLAYA_REFRESH_INTERVAL_MS"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.RefreshIntervalMs = i
		}
	}
	if v := os.Getenv("PLAYA_CLAMP_SEEK"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.ClampSeek = b
		}
	}
	if v := os.Getenv("PLAYA_VOLUME"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Volume = f
		}
	}

	// Log
	if v := os.Getenv("PLAYA_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("PLAYA_LOG_FILE"); v != "" {
		cfg.Log.File = v
	}
}
