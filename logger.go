package trail

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
)

// nopHandler is a slog.Handler that silently discards all log records.
// The Enabled method returns false so the caller skips message formatting
// entirely, making disabled logging effectively zero-cost.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

// newNopLogger creates a logger that silently discards all output.
func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr stores the active logger. Accessed atomically so that
// SetLogger can be called concurrently with logging from any goroutine.
var loggerPtr atomic.Pointer[slog.Logger]

// setters receive every logger passed to SetLogger.
var (
	settersMu sync.RWMutex
	setters   []LoggerSetter
)

func init() {
	l := newNopLogger()
	loggerPtr.Store(l)
}

// LoggerSetter is implemented by sub-packages and backends that keep their
// own logger reference (the gpu package, for example).
type LoggerSetter interface {
	SetLogger(*slog.Logger)
}

// LoggerSetterFunc adapts a plain function to LoggerSetter.
type LoggerSetterFunc func(*slog.Logger)

// SetLogger calls f(l).
func (f LoggerSetterFunc) SetLogger(l *slog.Logger) { f(l) }

// SetLogger configures the logger for trail and all its sub-packages.
// By default, trail produces no log output. Call SetLogger to enable logging.
//
// SetLogger is safe for concurrent use: it stores the new logger atomically.
// Pass nil to disable logging (restore default silent behavior).
//
// Log levels used by trail:
//   - [slog.LevelDebug]: internal diagnostics (buffer sizes, pipeline state)
//   - [slog.LevelInfo]: lifecycle events (trail initialized, destroyed)
//   - [slog.LevelWarn]: degenerate configuration (zero capacity trails)
//
// Example:
//
//	trail.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)

	settersMu.RLock()
	defer settersMu.RUnlock()
	for _, s := range setters {
		s.SetLogger(l)
	}
}

// Logger returns the current logger used by trail.
//
// Logger is safe for concurrent use.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}

// RegisterLoggerSetter subscribes s to future SetLogger calls and hands it
// the current logger immediately.
func RegisterLoggerSetter(s LoggerSetter) {
	if s == nil {
		return
	}
	settersMu.Lock()
	setters = append(setters, s)
	settersMu.Unlock()
	s.SetLogger(Logger())
}
