package utils

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewSugaredLogger builds the process logger. Verbose switches to a console
// development config with debug level enabled; otherwise the structured
// production config is used.
func NewSugaredLogger(verbose bool) (*zap.SugaredLogger, error) {
	cfg := zap.NewProductionConfig()
	if verbose {
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}

	l, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return l.Sugar(), nil
}
