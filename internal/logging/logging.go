package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// thin wrapper around zap's sugared logger
type Logger struct {
	*zap.SugaredLogger
}

func NewLogger(verbose bool) *Logger {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.DisableStacktrace = true
	cfg.DisableCaller = true
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	} else {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}

	base, err := cfg.Build()
	if err != nil {
		base = zap.NewNop()
	}

	return &Logger{base.Sugar()}
}

// NewNop returns a logger that discards everything. Used in tests.
func NewNop() *Logger {
	return &Logger{zap.NewNop().Sugar()}
}
