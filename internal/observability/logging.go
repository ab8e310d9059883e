package observability

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger so observability helpers can grow methods of
// their own without leaking slog into callers.
type Logger struct {
	*slog.Logger
}

// GlobalLogger backs the repository audit log. JSON regardless of
// environment because these lines feed log-based alerting.
var GlobalLogger *Logger

func init() {
	h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	GlobalLogger = &Logger{Logger: slog.New(h)}
}

// RepoLogger records repository writes and failures for one table.
type RepoLogger struct {
	table string
	log   *Logger
}

func NewRepoLogger(table string) *RepoLogger {
	return &RepoLogger{table: table, log: GlobalLogger}
}

// LogMutation records a successful write with its identifying fields.
func (l *RepoLogger) LogMutation(ctx context.Context, op string, fields map[string]interface{}) {
	attrs := []any{
		slog.String("table", l.table),
		slog.String("operation", op),
	}
	for k, v := range fields {
		attrs = append(attrs, slog.Any(k, v))
	}
	l.log.InfoContext(ctx, "repository write", attrs...)
}

// LogError records a failed repository operation.
func (l *RepoLogger) LogError(ctx context.Context, err error, op string) {
	l.log.ErrorContext(ctx, "repository error",
		slog.String("table", l.table),
		slog.String("operation", op),
		slog.String("error", err.Error()),
	)
}
