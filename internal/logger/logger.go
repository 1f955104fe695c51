package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

var log *slog.Logger

// Init sets up the package-level structured logger. JSON output goes to
// stdout; LOG_LEVEL=debug enables debug records.
func Init() {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if os.Getenv("LOG_LEVEL") == "debug" {
		opts.Level = slog.LevelDebug
	}
	log = slog.New(slog.NewJSONHandler(os.Stdout, opts))
}

// New wraps an slog handler into a logger. Tests use it to capture output.
func New(h slog.Handler) *slog.Logger {
	return slog.New(h)
}

// NewJSONHandler mirrors slog.NewJSONHandler so tests can build capture
// handlers without importing slog directly.
func NewJSONHandler(w io.Writer, opts *slog.HandlerOptions) slog.Handler {
	return slog.NewJSONHandler(w, opts)
}

func ensure() *slog.Logger {
	if log == nil {
		Init()
	}
	return log
}

func Info(msg string, args ...any) {
	ensure().Info(msg, args...)
}

func Infof(format string, v ...any) {
	ensure().Info(fmt.Sprintf(format, v...))
}

func Error(msg string, args ...any) {
	ensure().Error(msg, args...)
}

func Errorf(format string, v ...any) {
	ensure().Error(fmt.Sprintf(format, v...))
}

func Debug(msg string, args ...any) {
	ensure().Debug(msg, args...)
}

func Debugf(format string, v ...any) {
	ensure().Debug(fmt.Sprintf(format, v...))
}

func Fatal(msg string, args ...any) {
	ensure().Error(msg, args...)
	os.Exit(1)
}

func Fatalf(format string, v ...any) {
	ensure().Error(fmt.Sprintf(format, v...))
	os.Exit(1)
}

// WithError returns a logger carrying the error as a field.
func WithError(err error) *slog.Logger {
	return ensure().With("error", err)
}

// WithFields returns a logger carrying the given fields.
func WithFields(fields map[string]interface{}) *slog.Logger {
	l := ensure()
	for k, v := range fields {
		l = l.With(k, v)
	}
	return l
}
