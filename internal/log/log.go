// ABOUTME: Leveled diagnostic logging for the plugin runtime using slog levels
// ABOUTME: Writes to stderr by default; stdout belongs to the host protocol

package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Level constants matching slog levels.
const (
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

var (
	level atomic.Int64

	outMu sync.Mutex
	out   io.Writer = os.Stderr
)

func init() {
	level.Store(int64(LevelInfo))
}

// SetLevel sets the global log level.
func SetLevel(l slog.Level) {
	level.Store(int64(l))
}

// GetLevel returns the current log level.
func GetLevel() slog.Level {
	return slog.Level(level.Load())
}

// ParseLevel maps a config value (debug, info, warn, error) to a level.
// The empty string means info.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "", "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	}
	return LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// SetOutput redirects all log lines to w and returns the previous writer.
// Never pass os.Stdout: it carries protocol traffic.
func SetOutput(w io.Writer) io.Writer {
	outMu.Lock()
	defer outMu.Unlock()
	prev := out
	out = w
	return prev
}

// OpenFile redirects log lines to path, appending. Closing the returned
// io.Closer restores stderr output.
func OpenFile(path string) (io.Closer, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	SetOutput(f)
	return closerFunc(func() error {
		SetOutput(os.Stderr)
		return f.Close()
	}), nil
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

// Debug logs a debug message if the level allows it.
func Debug(format string, args ...any) {
	emit(LevelDebug, "DEBUG", format, args)
}

// Info logs an info message if the level allows it.
func Info(format string, args ...any) {
	emit(LevelInfo, "INFO", format, args)
}

// Warn logs a warning message if the level allows it.
func Warn(format string, args ...any) {
	emit(LevelWarn, "WARN", format, args)
}

// Error logs an error message (always emitted).
func Error(format string, args ...any) {
	emit(LevelError, "ERROR", format, args)
}

func emit(l slog.Level, tag, format string, args []any) {
	if l < LevelError && slog.Level(level.Load()) > l {
		return
	}
	line := fmt.Sprintf("%s [%s] %s\n", time.Now().Format("15:04:05.000"), tag, fmt.Sprintf(format, args...))

	outMu.Lock()
	defer outMu.Unlock()
	_, _ = io.WriteString(out, line)
}
