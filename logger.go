package lonelypoint

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/hupe1980/lonelypoint/report"
)

// Logger wraps slog.Logger with lonelypoint-specific context.
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
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// WithStructure adds the structure name and atom count to the logger.
func (l *Logger) WithStructure(name string, atoms int) *Logger {
	return &Logger{
		Logger: l.Logger.With("structure", name, "atoms", atoms),
	}
}

// WithResolution adds the grid resolution to the logger.
func (l *Logger) WithResolution(n int) *Logger {
	return &Logger{
		Logger: l.Logger.With("resolution", n),
	}
}

// LogStage logs the outcome of one pipeline stage.
func (l *Logger) LogStage(ctx context.Context, stage Stage, duration time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "stage failed",
			"stage", stage,
			"duration", duration,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "stage completed",
			"stage", stage,
			"duration", duration,
		)
	}
}

// LogResult logs the selected point with the same fields as the report.
func (l *Logger) LogResult(ctx context.Context, fields report.Fields, ties int) {
	attrs := append(fields.Attrs(), slog.Int("ties", ties))
	l.LogAttrs(ctx, slog.LevelInfo, "loneliest point found", attrs...)
}

// LogOutput logs a written blob.
func (l *Logger) LogOutput(ctx context.Context, name string, err error) {
	if err != nil {
		l.ErrorContext(ctx, "write failed",
			"name", name,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "output written",
			"name", name,
		)
	}
}

// LogView logs the outcome of launching the viewer. Failures are warnings
// because viewing never affects the result.
func (l *Logger) LogView(ctx context.Context, err error) {
	if err != nil {
		l.WarnContext(ctx, "viewer failed",
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "viewer started")
	}
}
