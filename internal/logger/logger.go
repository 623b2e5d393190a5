// Package logger provides structured logging for the sdmx CLI.
// It wraps a global zap SugaredLogger that is a no-op until
// Initialize is called, so library code can log unconditionally.
package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var log = zap.NewNop().Sugar()

// Initialize sets up the global logger. verbose lowers the level to
// debug; jsonOutput switches to the production JSON encoder for
// machine consumption.
func Initialize(verbose, jsonOutput bool) error {
	level := zap.InfoLevel
	if verbose {
		level = zap.DebugLevel
	}

	var zl *zap.Logger
	if jsonOutput {
		cfg := zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(level)
		cfg.OutputPaths = []string{"stderr"}
		built, err := cfg.Build()
		if err != nil {
			return err
		}
		zl = built
	} else {
		encCfg := zap.NewDevelopmentEncoderConfig()
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		zl = zap.New(zapcore.NewCore(
			zapcore.NewConsoleEncoder(encCfg),
			zapcore.AddSync(os.Stderr),
			level,
		))
	}

	log = zl.Sugar()
	return nil
}

// SetLogger replaces the global logger. Useful for tests.
func SetLogger(l *zap.SugaredLogger) {
	if l == nil {
		l = zap.NewNop().Sugar()
	}
	log = l
}

// Debug logs a debug message with key-value context.
func Debug(msg string, kv ...any) { log.Debugw(msg, kv...) }

// Info logs an informational message with key-value context.
func Info(msg string, kv ...any) { log.Infow(msg, kv...) }

// Warn logs a warning with key-value context.
func Warn(msg string, kv ...any) { log.Warnw(msg, kv...) }

// Error logs an error with key-value context.
func Error(msg string, kv ...any) { log.Errorw(msg, kv...) }

// Sync flushes buffered log entries. Errors flushing stderr are
// ignored.
func Sync() {
	_ = log.Sync()
}
