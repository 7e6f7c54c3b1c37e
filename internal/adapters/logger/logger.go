// Package logger implements a logging adapter using log/slog.
package logger

import (
	"io"
	"log/slog"
	"os"

	"go.trai.ch/rsx/internal/core/ports"
)

var _ ports.Logger = (*Logger)(nil)

// Logger implements ports.Logger using log/slog.
type Logger struct {
	logger *slog.Logger
	level  *slog.LevelVar
}

// New creates a new Logger writing human-readable output to stderr, so
// the script's own stdout stays clean for piping.
func New() *Logger {
	return NewWithWriter(os.Stderr)
}

// NewWithWriter creates a Logger writing to w. Used by tests.
func NewWithWriter(w io.Writer) *Logger {
	level := &slog.LevelVar{}
	level.Set(slog.LevelInfo)
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		logger: slog.New(handler),
		level:  level,
	}
}

// SetVerbosity adjusts the minimum level: verbose enables debug output,
// quiet suppresses everything below warnings. Verbose wins if both are set.
func (l *Logger) SetVerbosity(verbose, quiet bool) {
	switch {
	case verbose:
		l.level.Set(slog.LevelDebug)
	case quiet:
		l.level.Set(slog.LevelWarn)
	default:
		l.level.Set(slog.LevelInfo)
	}
}

// Debug logs a debug message.
func (l *Logger) Debug(msg string, args ...any) {
	l.logger.Debug(msg, args...)
}

// Info logs an informational message.
func (l *Logger) Info(msg string, args ...any) {
	l.logger.Info(msg, args...)
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string, args ...any) {
	l.logger.Warn(msg, args...)
}

// Error logs an error.
func (l *Logger) Error(err error) {
	l.logger.Error("operation failed", "error", err)
}
