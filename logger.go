package vecdb

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/hupe1980/vecdb/index"
)

// Logger wraps slog.Logger with vecdb-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	return NewFormatLogger(os.Stderr, "json", level)
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return NewFormatLogger(os.Stderr, "text", level)
}

// NewFormatLogger creates a Logger writing to w. format is "json" or "text";
// anything else falls back to text.
func NewFormatLogger(w io.Writer, format string, level slog.Level) *Logger {
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// ParseLogLevel parses "debug", "info", "warn" or "error" (case-insensitive).
func ParseLogLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return level, nil
}

type requestIDKey struct{}

// ContextWithRequestID returns a copy of ctx carrying a request id. Log lines
// written by the Log* methods with that context include it.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFromContext returns the request id stored in ctx, if any.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(requestIDKey{}).(string)
	return id, ok && id != ""
}

// WithContext adds context values (the request id) to the logger.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	id, ok := RequestIDFromContext(ctx)
	if !ok {
		return l
	}
	return l.WithRequestID(id)
}

// WithRequestID adds a request_id field to the logger.
func (l *Logger) WithRequestID(id string) *Logger {
	return &Logger{
		Logger: l.Logger.With("request_id", id),
	}
}

// WithIndex adds an index_type field to the logger.
func (l *Logger) WithIndex(t index.Type) *Logger {
	return &Logger{
		Logger: l.Logger.With("index_type", t.String()),
	}
}

// WithID adds an ID field to the logger (useful for tagging operations).
func (l *Logger) WithID(id int64) *Logger {
	return &Logger{
		Logger: l.Logger.With("id", id),
	}
}

// WithK adds a k (neighbor count) field to the logger.
func (l *Logger) WithK(k int) *Logger {
	return &Logger{
		Logger: l.Logger.With("k", k),
	}
}

// WithDimension adds a dimension field to the logger.
func (l *Logger) WithDimension(dim int) *Logger {
	return &Logger{
		Logger: l.Logger.With("dimension", dim),
	}
}

// WithCount adds a count field to the logger.
func (l *Logger) WithCount(count int) *Logger {
	return &Logger{
		Logger: l.Logger.With("count", count),
	}
}

// LogInitialize logs the construction of an index instance.
func (l *Logger) LogInitialize(ctx context.Context, cfg index.Config, err error) {
	l = l.WithContext(ctx)
	if err != nil {
		l.ErrorContext(ctx, "initialize failed",
			"index_type", cfg.Type.String(),
			"dimension", cfg.Dimension,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "index initialized",
			"index_type", cfg.Type.String(),
			"dimension", cfg.Dimension,
			"metric", cfg.Metric.String(),
		)
	}
}

// LogReset logs the replacement of an index instance.
func (l *Logger) LogReset(ctx context.Context, t index.Type, err error) {
	l = l.WithContext(ctx)
	if err != nil {
		l.ErrorContext(ctx, "reset failed",
			"index_type", t.String(),
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "index reset",
			"index_type", t.String(),
		)
	}
}

// LogInsert logs an insert operation.
func (l *Logger) LogInsert(ctx context.Context, t index.Type, id int64, dimension int, err error) {
	l = l.WithContext(ctx)
	if err != nil {
		l.ErrorContext(ctx, "insert failed",
			"index_type", t.String(),
			"id", id,
			"dimension", dimension,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "insert completed",
			"index_type", t.String(),
			"id", id,
			"dimension", dimension,
		)
	}
}

// LogBatchInsert logs a batch insert operation.
func (l *Logger) LogBatchInsert(ctx context.Context, t index.Type, count, failed int) {
	l = l.WithContext(ctx)
	if failed > 0 {
		l.WarnContext(ctx, "batch insert completed with failures",
			"index_type", t.String(),
			"total", count,
			"failed", failed,
			"success", count-failed,
		)
	} else {
		l.InfoContext(ctx, "batch insert completed",
			"index_type", t.String(),
			"count", count,
		)
	}
}

// LogSearch logs a search operation.
func (l *Logger) LogSearch(ctx context.Context, t index.Type, k, resultsFound int, err error) {
	l = l.WithContext(ctx)
	if err != nil {
		l.ErrorContext(ctx, "search failed",
			"index_type", t.String(),
			"k", k,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "search completed",
			"index_type", t.String(),
			"k", k,
			"results", resultsFound,
		)
	}
}

// LogRemove logs a remove operation.
func (l *Logger) LogRemove(ctx context.Context, t index.Type, count int, err error) {
	l = l.WithContext(ctx)
	if err != nil {
		l.ErrorContext(ctx, "remove failed",
			"index_type", t.String(),
			"count", count,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "remove completed",
			"index_type", t.String(),
			"count", count,
		)
	}
}
