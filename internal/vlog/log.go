// Package vlog provides structured logging for the VDF engine. It wraps
// Go's log/slog with per-subsystem child loggers and the same
// Level/Entry/Formatter shape the engine's ambient stack borrows from the
// teacher's pkg/log/formatter.go, wired into the slog pipeline through a
// Formatter-backed slog.Handler rather than left as an unused sibling type.
package vlog

import (
	"context"
	"io"
	"log/slog"
	"sync"
)

// Logger wraps slog.Logger with engine-specific context.
type Logger struct {
	inner *slog.Logger
}

// defaultLogger is the process-wide logger used by Default.
var defaultLogger *Logger

func init() {
	defaultLogger = NewDiscard()
}

// New creates a Logger that renders entries through formatter and writes
// them to w, at or above the given level. A nil formatter defaults to
// JSONFormatter.
func New(w io.Writer, level Level, formatter Formatter) *Logger {
	if formatter == nil {
		formatter = &JSONFormatter{}
	}
	h := newFormatterHandler(w, formatter, level)
	return &Logger{inner: slog.New(h)}
}

// NewDiscard creates a Logger that drops everything. This is the default so
// importing this module never writes to a caller's stderr. The vdf engine
// logs only through an EngineConfig's *Logger; it does not read Default, so
// SetDefault alone does not make the engine write anything.
func NewDiscard() *Logger {
	return &Logger{inner: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

// SetDefault replaces the package-level default logger.
func SetDefault(l *Logger) {
	if l != nil {
		defaultLogger = l
	}
}

// Default returns the current package-level default logger.
func Default() *Logger {
	return defaultLogger
}

// Module returns a child logger tagged with a "module" attribute.
func (l *Logger) Module(name string) *Logger {
	if l == nil {
		return Default().Module(name)
	}
	return &Logger{inner: l.inner.With("module", name)}
}

// With returns a child logger with additional key-value context.
func (l *Logger) With(args ...any) *Logger {
	if l == nil {
		return Default().With(args...)
	}
	return &Logger{inner: l.inner.With(args...)}
}

// Debug logs at LevelDebug.
func (l *Logger) Debug(msg string, args ...any) {
	if l == nil {
		return
	}
	l.inner.Debug(msg, args...)
}

// Info logs at LevelInfo.
func (l *Logger) Info(msg string, args ...any) {
	if l == nil {
		return
	}
	l.inner.Info(msg, args...)
}

// Warn logs at LevelWarn.
func (l *Logger) Warn(msg string, args ...any) {
	if l == nil {
		return
	}
	l.inner.Warn(msg, args...)
}

// Error logs at LevelError.
func (l *Logger) Error(msg string, args ...any) {
	if l == nil {
		return
	}
	l.inner.Error(msg, args...)
}

// ---------------------------------------------------------------------------
// formatterHandler adapts a Formatter to slog.Handler, so New's output goes
// through Format rather than slog's own built-in handlers.
// ---------------------------------------------------------------------------

type formatterHandler struct {
	w         io.Writer
	formatter Formatter
	level     Level
	attrs     []slog.Attr
	mu        *sync.Mutex
}

func newFormatterHandler(w io.Writer, formatter Formatter, level Level) *formatterHandler {
	return &formatterHandler{w: w, formatter: formatter, level: level, mu: &sync.Mutex{}}
}

func (h *formatterHandler) Enabled(_ context.Context, level slog.Level) bool {
	return levelFromSlog(level) >= h.level
}

func (h *formatterHandler) Handle(_ context.Context, r slog.Record) error {
	fields := make(map[string]any, len(h.attrs)+r.NumAttrs())
	for _, a := range h.attrs {
		fields[a.Key] = a.Value.Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		fields[a.Key] = a.Value.Any()
		return true
	})

	entry := Entry{
		Time:    r.Time,
		Level:   levelFromSlog(r.Level),
		Message: r.Message,
		Fields:  fields,
	}
	line := h.formatter.Format(entry)

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.w, line+"\n")
	return err
}

func (h *formatterHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &formatterHandler{w: h.w, formatter: h.formatter, level: h.level, attrs: merged, mu: h.mu}
}

func (h *formatterHandler) WithGroup(_ string) slog.Handler {
	// Groups have no Entry.Fields representation; flat key/value fields are
	// all this package's formatters render.
	return h
}

func levelFromSlog(l slog.Level) Level {
	switch {
	case l < slog.LevelInfo:
		return LevelDebug
	case l < slog.LevelWarn:
		return LevelInfo
	case l < slog.LevelError:
		return LevelWarn
	default:
		return LevelError
	}
}
