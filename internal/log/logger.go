package log

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"
)

type contextKey string

const (
	CorrelatedIDKey     contextKey = "correlation_id"
	LoggerKeyForContext contextKey = "logger"
)

// LogLevelEnvKey selects the minimum level: debug, info, warn or error.
const LogLevelEnvKey = "LOG_LEVEL"

var levels = map[string]slog.Level{
	"debug":   slog.LevelDebug,
	"info":    slog.LevelInfo,
	"warn":    slog.LevelWarn,
	"warning": slog.LevelWarn,
	"error":   slog.LevelError,
}

type Logger struct {
	*slog.Logger
}

func NewLoggerWithJSONOutput() *Logger {
	return NewLogger(os.Stdout)
}

// NewLogger writes JSON records to w. Unknown LOG_LEVEL values mean info.
func NewLogger(w io.Writer) *Logger {
	level, ok := levels[strings.ToLower(strings.TrimSpace(os.Getenv(LogLevelEnvKey)))]
	if !ok {
		level = slog.LevelInfo
	}

	return &Logger{Logger: slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))}
}

// WithCorrelationID tags every record with the id found in ctx, or a fresh one.
func (l *Logger) WithCorrelationID(ctx context.Context) *Logger {
	return &Logger{Logger: l.With(string(CorrelatedIDKey), GetOrGenerateCorrelationID(ctx))}
}

func ContextWithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, CorrelatedIDKey, id)
}

func GetOrGenerateCorrelationID(ctx context.Context) string {
	if ctx != nil {
		if id, ok := ctx.Value(CorrelatedIDKey).(string); ok && id != "" {
			return id
		}
	}
	return GenerateCorrelationID()
}

func GenerateCorrelationID() string {
	return uuid.NewString()
}

// WithLogger stores logger in ctx for GetLoggerInstanceFromContext.
func WithLogger(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, LoggerKeyForContext, logger)
}

// GetLoggerInstanceFromContext returns the request logger stored by WithLogger.
// Without one it derives a correlated logger from fallbackLogger, or from a
// stdout logger when fallbackLogger is nil.
func GetLoggerInstanceFromContext(ctx context.Context, fallbackLogger *Logger) *Logger {
	if ctx != nil {
		if l, ok := ctx.Value(LoggerKeyForContext).(*Logger); ok && l != nil {
			return l
		}
	}

	if fallbackLogger == nil {
		fallbackLogger = NewLoggerWithJSONOutput()
	}
	if ctx == nil {
		return fallbackLogger
	}
	return fallbackLogger.WithCorrelationID(ctx)
}
