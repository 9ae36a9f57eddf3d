package slogutil

import (
	"bytes"
	"log/slog"
	"os"
	"strings"
	"testing"

	"probecov/internal/config"
	"probecov/internal/paths"
)

func TestLoggerFactory_EffectiveLevel(t *testing.T) {
	debug := slog.LevelDebug

	tests := []struct {
		name     string
		cfgLevel string
		cliLevel *slog.Level
		want     slog.Level
	}{
		{"default config", "warn", nil, slog.LevelWarn},
		{"config level", "info", nil, slog.LevelInfo},
		{"empty config", "", nil, slog.LevelWarn},
		{"cli overrides config", "error", &debug, slog.LevelDebug},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			cfg.Logging.Level = tt.cfgLevel
			f := NewLoggerFactory("", cfg, tt.cliLevel)
			if got := f.EffectiveLevel(); got != tt.want {
				t.Errorf("EffectiveLevel() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLoggerFactory_CLILoggerWithoutStateDir(t *testing.T) {
	root := t.TempDir()
	var buf bytes.Buffer

	f := NewLoggerFactory(root, nil, nil)
	defer f.Close()
	f.CLILogger(&buf).Warn("no state")

	if !strings.Contains(buf.String(), "no state") {
		t.Errorf("expected console output, got: %s", buf.String())
	}
	if _, err := os.Stat(paths.LogsDir(root)); !os.IsNotExist(err) {
		t.Errorf("logs dir should not be created without a state dir, stat err = %v", err)
	}
}

func TestLoggerFactory_CLILoggerTeesToFile(t *testing.T) {
	root := t.TempDir()
	if _, err := paths.EnsureStateDir(root); err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer

	f := NewLoggerFactory(root, nil, nil)
	logger := f.CLILogger(&buf)
	logger.Info("to file only")
	logger.Warn("to both")
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	if strings.Contains(buf.String(), "to file only") {
		t.Errorf("console should filter info, got: %s", buf.String())
	}
	data, err := os.ReadFile(paths.LogPath(root))
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"to file only", "to both"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("expected %q in log file, got: %s", want, data)
		}
	}
}
