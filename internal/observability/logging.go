// Package observability provides logging, metrics, and tracing helpers for
// the repository and service layers.
package observability

import (
	"context"
	"log/slog"
	"os"
)

// GlobalLogger is the logger used by repository and service helpers.
// Bootstrap replaces it with the request-aware HTTP logger.
var GlobalLogger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

// SetLogger swaps GlobalLogger. A nil logger is ignored.
func SetLogger(l *slog.Logger) {
	if l != nil {
		GlobalLogger = l
	}
}

// RepoLogger provides structured logging for repository operations on one table.
type RepoLogger struct {
	table string
}

func NewRepoLogger(table string) *RepoLogger {
	return &RepoLogger{table: table}
}

func (l *RepoLogger) log(ctx context.Context, level slog.Level, msg, operation string, fields map[string]any) {
	attrs := make([]any, 0, len(fields)+2)
	attrs = append(attrs, slog.String("table", l.table), slog.String("operation", operation))
	for k, v := range fields {
		attrs = append(attrs, slog.Any(k, v))
	}
	GlobalLogger.Log(ctx, level, msg, attrs...)
}

// LogCreate logs at debug level; writes are already counted in metrics.
func (l *RepoLogger) LogCreate(ctx context.Context, fields map[string]any) {
	l.log(ctx, slog.LevelDebug, "repository create", "create", fields)
}

func (l *RepoLogger) LogUpdate(ctx context.Context, fields map[string]any) {
	l.log(ctx, slog.LevelDebug, "repository update", "update", fields)
}

func (l *RepoLogger) LogDelete(ctx context.Context, fields map[string]any) {
	l.log(ctx, slog.LevelInfo, "repository delete", "delete", fields)
}

// LogError logs a failed repository operation.
func (l *RepoLogger) LogError(ctx context.Context, err error, operation string) {
	l.log(ctx, slog.LevelError, "repository error", operation, map[string]any{"error": err.Error()})
}
