package slogutil

import (
	"io"
	"log/slog"
	"os"

	"probecov/internal/config"
	"probecov/internal/paths"
)

// LoggerFactory creates the CLI logger.
// Precedence for the level: CLI flags > config > default (warn).
type LoggerFactory struct {
	root     string
	config   *config.Config
	cliLevel *slog.Level
	closers  []io.Closer
}

// NewLoggerFactory creates a new logger factory. cliLevel is nil when no
// verbosity flag was given.
func NewLoggerFactory(root string, cfg *config.Config, cliLevel *slog.Level) *LoggerFactory {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &LoggerFactory{root: root, config: cfg, cliLevel: cliLevel}
}

// CLILogger writes to w in the configured format. When the state directory
// exists, records are also appended to <root>/.probecov/logs/probecov.log.
func (f *LoggerFactory) CLILogger(w io.Writer) *slog.Logger {
	level := f.EffectiveLevel()
	console := NewFormatHandler(w, level, f.config.Logging.Format)

	if f.root == "" {
		return slog.New(console)
	}
	if _, err := os.Stat(paths.StateDir(f.root)); err != nil {
		return slog.New(console)
	}
	if _, err := paths.EnsureLogsDir(f.root); err != nil {
		return slog.New(console)
	}

	file, err := os.OpenFile(paths.LogPath(f.root), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return slog.New(console)
	}
	f.closers = append(f.closers, file)

	// The file keeps info and above even when the console is quieter.
	fileLevel := min(level, slog.LevelInfo)
	return slog.New(NewTeeHandler(console, NewTextHandler(file, &slog.HandlerOptions{Level: fileLevel})))
}

// EffectiveLevel returns the level after applying precedence.
func (f *LoggerFactory) EffectiveLevel() slog.Level {
	if f.cliLevel != nil {
		return *f.cliLevel
	}
	if f.config.Logging.Level != "" {
		return LevelFromString(f.config.Logging.Level)
	}
	return slog.LevelWarn
}

// Close closes all open log files.
func (f *LoggerFactory) Close() error {
	var firstErr error
	for _, c := range f.closers {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	f.closers = nil
	return firstErr
}
