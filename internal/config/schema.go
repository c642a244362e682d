package config

import "time"

// Config is the root configuration structure.
type Config struct {
	RefreshIntervalMs int       `toml:"refresh_interval_ms"`
	ClampSeek         bool      `toml:"clamp_seek"`
	Volume            float64   `toml:"volume"`
	Log               LogConfig `toml:"log"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// RefreshInterval returns the render period.
func (c *Config) RefreshInterval() time.Duration {
	return time.Duration(c.RefreshIntervalMs) * time.Millisecond
}
