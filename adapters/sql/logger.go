package sql

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// SQLLogger writes SQL debug records through slog
type SQLLogger struct {
	logger  *slog.Logger
	enabled bool
	mu      sync.RWMutex
}

// NewSQLLogger creates a new SQL logger. A nil logger selects slog.Default.
func NewSQLLogger(logger *slog.Logger, enabled bool) *SQLLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &SQLLogger{
		logger:  logger,
		enabled: enabled,
	}
}

// IsEnabled returns whether SQL logging is enabled
func (l *SQLLogger) IsEnabled() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.enabled
}

// SetEnabled enables or disables SQL logging
func (l *SQLLogger) SetEnabled(enabled bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.enabled = enabled
}

// LogQuery logs a SELECT query with execution time and row count
func (l *SQLLogger) LogQuery(ctx context.Context, query string, args []any, duration time.Duration, rowCount int) {
	if !l.IsEnabled() {
		return
	}

	l.logger.DebugContext(ctx, "sql query",
		slog.String("query", l.formatQuery(query)),
		slog.String("args", l.formatArgs(args)),
		slog.Float64("ms", float64(duration.Nanoseconds())/1e6),
		slog.Int("rows", rowCount))
}

// LogError logs a query that resulted in an error
func (l *SQLLogger) LogError(ctx context.Context, query string, args []any, duration time.Duration, err error) {
	if !l.IsEnabled() {
		return
	}

	l.logger.ErrorContext(ctx, "sql query failed",
		slog.String("query", l.formatQuery(query)),
		slog.String("args", l.formatArgs(args)),
		slog.Float64("ms", float64(duration.Nanoseconds())/1e6),
		slog.Any("error", err))
}

// formatQuery cleans up the SQL query for better readability
func (l *SQLLogger) formatQuery(query string) string {
	// Remove extra whitespace and normalize
	query = strings.TrimSpace(query)
	query = strings.ReplaceAll(query, "\n", " ")
	query = strings.ReplaceAll(query, "\t", " ")

	// Collapse multiple spaces into single spaces
	for strings.Contains(query, "  ") {
		query = strings.ReplaceAll(query, "  ", " ")
	}

	return query
}

// formatArgs formats the query arguments for logging
func (l *SQLLogger) formatArgs(args []any) string {
	if len(args) == 0 {
		return ""
	}

	var formatted []string
	for _, arg := range args {
		switch v := arg.(type) {
		case string:
			formatted = append(formatted, fmt.Sprintf(`"%s"`, v))
		case nil:
			formatted = append(formatted, "NULL")
		default:
			formatted = append(formatted, fmt.Sprintf("%v", v))
		}
	}

	return fmt.Sprintf("[%s]", strings.Join(formatted, ", "))
}
