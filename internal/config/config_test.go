package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// isolate points config discovery at empty directories and clears
// overrides from the environment.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))
	for _, k := range []string{
		"PLAYA_REFRESH_INTERVAL_MS", "PLAYA_CLAMP_SEEK",
		"PLAYA_VOLUME", "PLAYA_LOG_LEVEL", "PLAYA_LOG_FILE",
	} {
		t.Setenv(k, "")
	}
	return dir
}

func writeConfig(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	isolate(t)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.RefreshInterval() != 100*time.Millisecond {
		t.Errorf("expected 100ms refresh, got %v", cfg.RefreshInterval())
	}
	if cfg.ClampSeek || cfg.Volume != 0.8 || cfg.Log.Level != "info" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadFindsXDGConfig(t *testing.T) {
	dir := isolate(t)
	writeConfig(t, filepath.Join(dir, "xdg", "playa", "config.toml"), `
refresh_interval_ms = 40
clamp_seek = true
volume = 0.0

[log]
level = "debug"
file = "/tmp/playa.log"
`)
	writeConfig(t, filepath.Join(dir, ".config", "playa", "config.toml"), "refresh_interval_ms = 300\n")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.RefreshIntervalMs != 40 {
		t.Errorf("expected XDG file to win, got refresh %d", cfg.RefreshIntervalMs)
	}
	if !cfg.ClampSeek || cfg.Volume != 0 {
		t.Errorf("expected clamp_seek and explicit zero volume, got %+v", cfg)
	}
	if cfg.Log.Level != "debug" || cfg.Log.File != "/tmp/playa.log" {
		t.Errorf("unexpected log config: %+v", cfg.Log)
	}
}

func TestLoadFallsBackToHomeConfig(t *testing.T) {
	dir := isolate(t)
	writeConfig(t, filepath.Join(dir, ".config", "playa", "config.toml"), "refresh_interval_ms = 300\n")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.RefreshIntervalMs != 300 {
		t.Errorf("expected home config, got refresh %d", cfg.RefreshIntervalMs)
	}
}

func TestLoadFromExplicitPath(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "custom.toml")
	writeConfig(t, path, "refresh_interval_ms = 250\n")

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if cfg.RefreshIntervalMs != 250 {
		t.Errorf("expected 250, got %d", cfg.RefreshIntervalMs)
	}

	if _, err := LoadFrom(filepath.Join(dir, "missing.toml")); err == nil {
		t.Error("expected error for missing explicit config")
	}
}

func TestLoadRejectsMalformedTOML(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "bad.toml")
	writeConfig(t, path, "volume = [\n")
	_, err := LoadFrom(path)
	if err == nil || !strings.Contains(err.Error(), path) {
		t.Fatalf("expected error naming %s, got %v", path, err)
	}
}

func TestEnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("PLAYA_REFRESH_INTERVAL_MS", "not-a-number")
	t.Setenv("PLAYA_CLAMP_SEEK", "true")
	t.Setenv("PLAYA_VOLUME", "0.5")
	t.Setenv("PLAYA_LOG_LEVEL", "warn")
	t.Setenv("PLAYA_LOG_FILE", "/var/log/playa.log")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !cfg.ClampSeek || cfg.Volume != 0.5 {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if cfg.RefreshIntervalMs != 100 {
		t.Errorf("expected unparsable override ignored, got %d", cfg.RefreshIntervalMs)
	}
	if cfg.Log.Level != "warn" || cfg.Log.File != "/var/log/playa.log" {
		t.Errorf("log overrides not applied: %+v", cfg.Log)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"refresh", func(c *Config) { c.RefreshIntervalMs = -1 }, "refresh_interval_ms"},
		{"volume high", func(c *Config) { c.Volume = 1.5 }, "volume"},
		{"volume low", func(c *Config) { c.Volume = -0.1 }, "volume"},
		{"log level", func(c *Config) { c.Log.Level = "loud" }, "invalid log level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestApplyDefaultsFillsZeroValues(t *testing.T) {
	cfg := &Config{}
	cfg.ApplyDefaults()
	if cfg.RefreshIntervalMs != 100 || cfg.Log.Level != "info" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Volume != 0 {
		t.Fatalf("expected volume untouched, got %v", cfg.Volume)
	}
}
