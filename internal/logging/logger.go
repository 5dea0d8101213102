// Package logging provides the daemon's single structured logger. All
// operational output goes to standard error; the core never writes to
// standard output except the hook JSON protocol in cmd/ccsync-hook.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Level is the logging level, read from CCSYNC_LOG_LEVEL.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

var defaultLogger *slog.Logger

func init() {
	levelStr := strings.ToLower(os.Getenv("CCSYNC_LOG_LEVEL"))
	if levelStr == "" {
		levelStr = string(LevelInfo)
	}
	Setup(os.Stderr, Level(levelStr))
}

// Setup (re)configures the default logger. Exposed for cmd/ entry points
// that apply the log level from the loaded configuration.
func Setup(w io.Writer, level Level) {
	var slogLevel slog.Level
	switch level {
	case LevelDebug:
		slogLevel = slog.LevelDebug
	case LevelWarn:
		slogLevel = slog.LevelWarn
	case LevelError:
		slogLevel = slog.LevelError
	default:
		slogLevel = slog.LevelInfo
	}

	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: slogLevel})
	defaultLogger = slog.New(handler)
	slog.SetDefault(defaultLogger)
}

func Debug(msg string, args ...any) { defaultLogger.Debug(msg, args...) }
func Info(msg string, args ...any)  { defaultLogger.Info(msg, args...) }
func Warn(msg string, args ...any)  { defaultLogger.Warn(msg, args...) }
func Error(msg string, args ...any) { defaultLogger.Error(msg, args...) }

// MaskSensitive renders a credential or command argument safe to log: a
// short prefix plus a fixed mask, never the full value.
func MaskSensitive(value string) string {
	if value == "" {
		return "<not set>"
	}
	if len(value) <= 4 {
		return "<set>"
	}
	return value[:4] + strings.Repeat("*", 3)
}
