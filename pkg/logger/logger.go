package logger

import (
	"log/slog"
	"os"
	"strings"
)

var defaultLogger *slog.Logger

// Init builds the process logger. Production defaults to JSON output at info
// level; anything else gets human readable text at debug level. Explicit
// level and format values override the defaults.
func Init(env, level, format string) *slog.Logger {
	lvl := slog.LevelDebug
	if env == "production" {
		lvl = slog.LevelInfo
	}
	if level != "" {
		lvl = ParseLevel(level)
	}

	if format == "" {
		format = "text"
		if env == "production" {
			format = "json"
		}
	}

	opts := &slog.HandlerOptions{Level: lvl}
	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	defaultLogger = slog.New(handler)
	slog.SetDefault(defaultLogger)
	return defaultLogger
}

func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// L returns the process logger, initialising a development logger when
// Init has not run yet.
func L() *slog.Logger {
	if defaultLogger == nil {
		Init("development", "", "")
	}
	return defaultLogger
}
