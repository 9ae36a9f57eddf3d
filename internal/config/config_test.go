package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Version != 1 {
		t.Errorf("Version = %d, want 1", cfg.Version)
	}
	if cfg.Aggregation.Lenient {
		t.Error("aggregation should reject mismatched probe vectors by default")
	}
	if cfg.Risk.HighThreshold != 0.7 || cfg.Risk.MediumThreshold != 0.4 {
		t.Errorf("thresholds = %v/%v, want 0.7/0.4", cfg.Risk.HighThreshold, cfg.Risk.MediumThreshold)
	}
	if cfg.Baseline.File != "BASELINE.toml" {
		t.Errorf("Baseline.File = %q", cfg.Baseline.File)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"default", func(*Config) {}, ""},
		{"version", func(c *Config) { c.Version = 2 }, "version"},
		{"parallelism", func(c *Config) { c.Aggregation.Parallelism = -1 }, "aggregation.parallelism"},
		{"weight range", func(c *Config) { c.Risk.Weights.ChangeKind = 1.5 }, "risk.weights.changeKind"},
		{"weight sum", func(c *Config) { c.Risk.Weights.MethodSize = 0.5 }, "risk.weights"},
		{"thresholds", func(c *Config) { c.Risk.MediumThreshold = 0.8 }, "risk"},
		{"log format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			cfgErr, ok := err.(*ConfigError)
			if !ok {
				t.Fatalf("Validate() = %v, want *ConfigError", err)
			}
			if cfgErr.Field != tt.wantErr {
				t.Errorf("Field = %q, want %q", cfgErr.Field, tt.wantErr)
			}
		})
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Version != 1 || cfg.Risk.Weights.CoverageGap != 0.5 {
		t.Errorf("expected defaults, got %+v", cfg)
	}
}

func TestSaveAndLoad(t *testing.T) {
	root := t.TempDir()
	cfg := DefaultConfig()
	cfg.Aggregation.Lenient = true
	cfg.Aggregation.Parallelism = 3
	cfg.Logging.Level = "debug"

	if err := cfg.Save(root); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, ".probecov", "config.json")); err != nil {
		t.Fatalf("config file not written: %v", err)
	}

	loaded, err := LoadConfig(root)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if !loaded.Aggregation.Lenient || loaded.Aggregation.Parallelism != 3 {
		t.Errorf("aggregation = %+v", loaded.Aggregation)
	}
	if loaded.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", loaded.Logging.Level)
	}
}

func TestLoadConfigPartialFile(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, ".probecov")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte(`{"version": 1, "aggregation": {"lenient": true}}`), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(root)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if !cfg.Aggregation.Lenient {
		t.Error("file value not applied")
	}
	if cfg.Risk.HighThreshold != 0.7 {
		t.Errorf("missing keys should keep defaults, got %v", cfg.Risk.HighThreshold)
	}
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("PROBECOV_AGGREGATION_PARALLELISM", "7")

	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Aggregation.Parallelism != 7 {
		t.Errorf("Parallelism = %d, want 7", cfg.Aggregation.Parallelism)
	}
}

func TestLoadConfigInvalidJSON(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, ".probecov")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte(`{not json`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(root); err == nil {
		t.Error("expected error for malformed config")
	}
}
