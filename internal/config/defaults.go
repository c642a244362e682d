package config

// Default returns a Config populated with sensible defaults.
func Default() *Config {
	return &Config{
		RefreshIntervalMs: 100,
		ClampSeek:         false,
		Volume:            0.8,
		Log: LogConfig{
			Level: "info",
		},
	}
}

// ApplyDefaults fills in zero values with sensible defaults. Volume is left
// alone since zero is a valid setting.
func (c *Config) ApplyDefaults() {
	d := Default()

	if c.RefreshIntervalMs == 0 {
		c.RefreshIntervalMs = d.RefreshIntervalMs
	}
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
}
