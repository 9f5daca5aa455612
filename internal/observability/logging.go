package observability

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel/trace"
)

// TracedLogger is a structured logger with automatic trace correlation.
// It wraps slog.Logger and adds meeting context and OpenTelemetry trace
// correlation to every entry.
type TracedLogger struct {
	logger          *slog.Logger
	meetingID       string
	agentName       string
	redactSensitive bool
}

// NewTracedLogger creates a TracedLogger bound to a meeting and agent.
// Either identifier may be empty for logs outside a deliberation.
func NewTracedLogger(handler slog.Handler, meetingID, agentName string) *TracedLogger {
	return &TracedLogger{
		logger:          slog.New(handler),
		meetingID:       meetingID,
		agentName:       agentName,
		redactSensitive: true,
	}
}

// Debug logs a debug-level message with trace correlation.
// Debug logs include all fields without redaction.
func (l *TracedLogger) Debug(ctx context.Context, msg string, args ...any) {
	l.WithContext(ctx).Debug(msg, args...)
}

// Info logs an info-level message with trace correlation.
// Sensitive data in args is redacted at info level and above.
func (l *TracedLogger) Info(ctx context.Context, msg string, args ...any) {
	if l.redactSensitive {
		args = redactSensitiveData(args)
	}
	l.WithContext(ctx).Info(msg, args...)
}

// Warn logs a warning-level message with trace correlation.
func (l *TracedLogger) Warn(ctx context.Context, msg string, args ...any) {
	if l.redactSensitive {
		args = redactSensitiveData(args)
	}
	l.WithContext(ctx).Warn(msg, args...)
}

// Error logs an error-level message with trace correlation.
func (l *TracedLogger) Error(ctx context.Context, msg string, args ...any) {
	if l.redactSensitive {
		args = redactSensitiveData(args)
	}
	l.WithContext(ctx).Error(msg, args...)
}

// WithContext creates a slog.Logger with trace correlation fields added.
// Extracts trace_id and span_id from the OpenTelemetry span in the
// context and attaches the meeting and agent identifiers.
func (l *TracedLogger) WithContext(ctx context.Context) *slog.Logger {
	logger := l.logger

	if l.meetingID != "" {
		logger = logger.With("meeting_id", l.meetingID)
	}
	if l.agentName != "" {
		logger = logger.With("agent", l.agentName)
	}

	span := trace.SpanFromContext(ctx)
	if sc := span.SpanContext(); sc.IsValid() {
		logger = logger.With(
			"trace_id", sc.TraceID().String(),
			"span_id", sc.SpanID().String(),
		)
	}

	return logger
}

// WithAgent returns a copy of the logger bound to a different agent
func (l *TracedLogger) WithAgent(agentName string) *TracedLogger {
	copied := *l
	copied.agentName = agentName
	return &copied
}

// sensitiveKeys are argument names whose values are replaced before
// logging. API keys and raw prompt content never belong in log output.
var sensitiveKeys = []string{"api_key", "apikey", "token", "secret", "password", "authorization"}

// redactSensitiveData replaces the values of sensitive key-value pairs
func redactSensitiveData(args []any) []any {
	out := make([]any, len(args))
	copy(out, args)

	for i := 0; i+1 < len(out); i += 2 {
		key, ok := out[i].(string)
		if !ok {
			continue
		}
		lower := strings.ToLower(key)
		for _, s := range sensitiveKeys {
			if strings.Contains(lower, s) {
				out[i+1] = "[REDACTED]"
				break
			}
		}
	}

	return out
}

// NewHandler builds a slog.Handler from a level and format name.
// Unknown values fall back to info-level JSON.
func NewHandler(w io.Writer, level, format string) slog.Handler {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: lvl}
	if strings.ToLower(format) == "text" {
		return slog.NewTextHandler(w, opts)
	}
	return slog.NewJSONHandler(w, opts)
}
