// Package logging builds the file logger. The terminal UI owns stdout and
// stderr, so log output always goes to a file.
package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options selects the encoder and level.
type Options struct {
	Path       string
	Level      string
	Production bool
}

// New returns a logger writing to opts.Path, creating its directory.
// An empty level means info in production and debug otherwise.
func New(opts Options) (*zap.Logger, error) {
	var cfg zap.Config
	if opts.Production {
		cfg = zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	}

	if opts.Level != "" {
		lvl, err := zapcore.ParseLevel(opts.Level)
		if err != nil {
			return nil, fmt.Errorf("logging.New: %w", err)
		}
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}

	if err := os.MkdirAll(filepath.Dir(opts.Path), 0o700); err != nil {
		return nil, fmt.Errorf("logging.New: %w", err)
	}
	cfg.OutputPaths = []string{opts.Path}
	cfg.ErrorOutputPaths = []string{opts.Path}

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("logging.New: %w", err)
	}
	return logger, nil
}

// Must is New falling back to a no-op logger, for callers that would rather
// run without logs than not run.
func Must(opts Options) *zap.Logger {
	l, err := New(opts)
	if err != nil {
		return zap.NewNop()
	}
	return l
}
