package crossval

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with crossval-specific context.
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
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return NewLogger(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	}))
}

// WithRun tags every line with the training run id.
func (l *Logger) WithRun(runID string) *Logger {
	return &Logger{
		Logger: l.Logger.With("run_id", runID),
	}
}

// WithDescription adds the transform description.
func (l *Logger) WithDescription(desc string) *Logger {
	return &Logger{
		Logger: l.Logger.With("description", desc),
	}
}

// LogTrain logs the outcome of a Train call.
func (l *Logger) LogTrain(ctx context.Context, records, partitions, failed int, elapsed time.Duration, err error) {
	switch {
	case err != nil && failed == 0:
		l.ErrorContext(ctx, "training failed",
			"records", records,
			"error", err,
		)
	case failed > 0:
		l.WarnContext(ctx, "training completed with failures",
			"records", records,
			"partitions", partitions,
			"failed", failed,
			"elapsed", elapsed,
			"error", err,
		)
	default:
		l.InfoContext(ctx, "training completed",
			"records", records,
			"partitions", partitions,
			"elapsed", elapsed,
		)
	}
}

// LogPartition logs the training set of one partition before its job runs.
func (l *Logger) LogPartition(ctx context.Context, partition, remaining, excluded int) {
	l.DebugContext(ctx, "training partition",
		"partition", partition,
		"remaining", remaining,
		"excluded", excluded,
	)
}

// LogPartitionDone logs the outcome of one partition job.
func (l *Logger) LogPartitionDone(ctx context.Context, partition int, elapsed time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "partition failed",
			"partition", partition,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "partition trained",
			"partition", partition,
			"elapsed", elapsed,
		)
	}
}

// LogProject logs a failed projection. Successful projections are not logged.
func (l *Logger) LogProject(ctx context.Context, partition int, err error) {
	if err != nil {
		l.WarnContext(ctx, "projection failed",
			"partition", partition,
			"error", err,
		)
	}
}

// LogStore logs an ensemble serialization.
func (l *Logger) LogStore(ctx context.Context, target string, models int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "store failed",
			"target", target,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "ensemble stored",
			"target", target,
			"models", models,
		)
	}
}

// LogLoad logs an ensemble deserialization.
func (l *Logger) LogLoad(ctx context.Context, source string, models int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "load failed",
			"source", source,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "ensemble loaded",
			"source", source,
			"models", models,
		)
	}
}
