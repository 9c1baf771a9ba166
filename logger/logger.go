package logger

import (
	"go.uber.org/zap"
)

// Log is available to the whole application after Initialize is called.
var Log *zap.Logger = zap.NewNop()

// Initialize replaces the no-op logger with a real one at the given level.
func Initialize(level string) error {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return err
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = lvl
	cfg.EncoderConfig.TimeKey = "ts"

	zl, err := cfg.Build()
	if err != nil {
		return err
	}

	Log = zl
	return nil
}
