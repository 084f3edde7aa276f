// Package zap builds the structured logger used throughout converse.
//
// The terminal belongs to the user interface, so logs go to a file. An
// empty file path disables logging.
package zap

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fwojciec/converse"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var _ converse.Logger = (*zap.SugaredLogger)(nil)

// New returns a JSON logger writing to cfg.File at cfg.Level, and a cleanup
// function that flushes and closes the file.
func New(cfg converse.LoggingConfig) (*zap.SugaredLogger, func() error, error) {
	if cfg.File == "" {
		return zap.NewNop().Sugar(), func() error { return nil }, nil
	}
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, fmt.Errorf("zap: %w: %w", converse.ErrValidation, err)
	}
	if err := os.MkdirAll(filepath.Dir(cfg.File), 0o700); err != nil {
		return nil, nil, fmt.Errorf("zap: create log directory: %w", err)
	}
	f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("zap: open log file: %w", err)
	}

	enc := zap.NewProductionEncoderConfig()
	enc.TimeKey = "ts"
	enc.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(enc), zapcore.AddSync(f), level)
	logger := zap.New(core, zap.AddCaller()).Sugar()

	cleanup := func() error {
		_ = logger.Sync()
		return f.Close()
	}
	return logger, cleanup, nil
}
