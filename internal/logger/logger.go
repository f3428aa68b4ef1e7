package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New selects the logger for the run mode: human-readable console output in
// debug mode, production JSON otherwise.
func New(debugMode bool) (*zap.Logger, error) {
	if debugMode {
		return NewDevelopmentLogger(true)
	}
	return NewProductionLogger(false)
}

// NewProductionLogger returns a JSON logger with ISO8601 timestamps and
// stack traces for error level and above.
func NewProductionLogger(debugMode bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level(debugMode))
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncoderConfig.EncodeDuration = zapcore.SecondsDurationEncoder
	cfg.DisableStacktrace = false
	return cfg.Build()
}

// NewDevelopmentLogger returns a console logger for local development.
func NewDevelopmentLogger(debugMode bool) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(level(debugMode))
	return cfg.Build()
}

func level(debugMode bool) zapcore.Level {
	if debugMode {
		return zapcore.DebugLevel
	}
	return zapcore.InfoLevel
}

// Sync flushes buffered log entries. Safe to call with a nil logger and
// safe to call more than once.
func Sync(logger *zap.Logger) error {
	if logger == nil {
		return nil
	}
	return logger.Sync()
}
