package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/lmittmann/tint"
)

// Level is the severity of a log message.
type Level int

// Log levels, from most to least verbose.
const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String returns the upper-case level name.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

func (l Level) slogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ParseLevel parses DEBUG, INFO, WARN or ERROR (case-insensitive).
func ParseLevel(level string) (Level, bool) {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return LevelDebug, true
	case "INFO":
		return LevelInfo, true
	case "WARN":
		return LevelWarn, true
	case "ERROR":
		return LevelError, true
	}
	return LevelInfo, false
}

var (
	mu       sync.Mutex
	levelVar = new(slog.LevelVar)
	closer   io.Closer
	logger   = newLogger("text", os.Stdout)
)

func newLogger(format string, w io.Writer) *slog.Logger {
	if format == "json" {
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: levelVar}))
	}
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      levelVar,
		TimeFormat: time.DateTime,
		NoColor:    w != os.Stdout && w != os.Stderr,
	}))
}

// SetLevel sets the minimum level. Unknown names are ignored.
func SetLevel(level string) {
	if l, ok := ParseLevel(level); ok {
		levelVar.Set(l.slogLevel())
	}
}

// Configure sets level, format ("text" or "json") and output ("stdout",
// "stderr" or a file path, opened for appending).
func Configure(level, format, out string) error {
	var (
		w io.Writer
		c io.Closer
	)
	switch out {
	case "", "stdout":
		w = os.Stdout
	case "stderr":
		w = os.Stderr
	default:
		f, err := os.OpenFile(out, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("failed to open log output %q: %w", out, err)
		}
		w, c = f, f
	}

	mu.Lock()
	defer mu.Unlock()

	if closer != nil {
		_ = closer.Close()
	}
	closer = c
	logger = newLogger(strings.ToLower(format), w)
	SetLevel(level)
	return nil
}

// SetOutput redirects text logging to w. Used by tests.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	logger = newLogger("text", w)
}

func current() *slog.Logger {
	mu.Lock()
	defer mu.Unlock()
	return logger
}

func log(level Level, format string, v ...any) {
	l := current()
	ctx := context.Background()
	if !l.Enabled(ctx, level.slogLevel()) {
		return
	}
	l.Log(ctx, level.slogLevel(), fmt.Sprintf(format, v...))
}

// Debug logs a formatted message at DEBUG level.
func Debug(format string, v ...any) {
	log(LevelDebug, format, v...)
}

// Info logs a formatted message at INFO level.
func Info(format string, v ...any) {
	log(LevelInfo, format, v...)
}

// Warn logs a formatted message at WARN level.
func Warn(format string, v ...any) {
	log(LevelWarn, format, v...)
}

// Error logs a formatted message at ERROR level.
func Error(format string, v ...any) {
	log(LevelError, format, v...)
}
