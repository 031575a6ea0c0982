// Package logger builds the slog loggers used across the storefront and
// carries request-scoped fields (correlation ID, user ID, logger) in a
// context.
package logger

import (
	"context"
	"io"
	"log/slog"
	"math"
	"os"
	"strings"

	"go.opentelemetry.io/otel/trace"
)

type (
	loggerKey struct{}
	fieldsKey struct{}
)

// fields is copied on write so a derived context never mutates its parent.
type fields struct {
	correlationID string
	userID        string
}

type Options struct {
	Service string
	Level   string
	// Format is "json" (default) or "text".
	Format string
}

// New logs JSON to stdout.
func New(service, level string) *slog.Logger {
	return NewWithOptions(Options{Service: service, Level: level}, os.Stdout)
}

func NewWithWriter(service, level string, w io.Writer) *slog.Logger {
	return NewWithOptions(Options{Service: service, Level: level}, w)
}

// NewWithOptions builds a logger writing to w. Debug level also records the
// source location.
func NewWithOptions(opts Options, w io.Writer) *slog.Logger {
	level := ParseLevel(opts.Level)
	ho := &slog.HandlerOptions{Level: level, AddSource: level <= slog.LevelDebug}

	var h slog.Handler = slog.NewJSONHandler(w, ho)
	if strings.EqualFold(opts.Format, "text") {
		h = slog.NewTextHandler(w, ho)
	}
	l := slog.New(h)
	if opts.Service != "" {
		l = l.With(slog.String("service", opts.Service))
	}
	return l
}

// Discard drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.Level(math.MaxInt)}))
}

// ParseLevel accepts slog level names case-insensitively plus "warning".
// Anything unrecognised is info.
func ParseLevel(s string) slog.Level {
	if strings.EqualFold(s, "warning") {
		return slog.LevelWarn
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func fieldsFrom(ctx context.Context) fields {
	f, _ := ctx.Value(fieldsKey{}).(fields)
	return f
}

func WithCorrelationID(ctx context.Context, id string) context.Context {
	f := fieldsFrom(ctx)
	f.correlationID = id
	return context.WithValue(ctx, fieldsKey{}, f)
}

func CorrelationIDFromContext(ctx context.Context) string {
	return fieldsFrom(ctx).correlationID
}

func WithUserID(ctx context.Context, id string) context.Context {
	f := fieldsFrom(ctx)
	f.userID = id
	return context.WithValue(ctx, fieldsKey{}, f)
}

func UserIDFromContext(ctx context.Context) string {
	return fieldsFrom(ctx).userID
}

// NewContext stores l as the request logger.
func NewContext(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// FromContext returns the request logger, or slog.Default() when none is set.
func FromContext(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	return slog.Default()
}

// WithContext decorates l with the correlation ID, user ID and active span
// found in ctx. Empty values are left out.
func WithContext(ctx context.Context, l *slog.Logger) *slog.Logger {
	f := fieldsFrom(ctx)
	var attrs []any
	if f.correlationID != "" {
		attrs = append(attrs, slog.String("correlation_id", f.correlationID))
	}
	if f.userID != "" {
		attrs = append(attrs, slog.String("user_id", f.userID))
	}
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		attrs = append(attrs,
			slog.String("trace_id", sc.TraceID().String()),
			slog.String("span_id", sc.SpanID().String()),
		)
	}
	if len(attrs) == 0 {
		return l
	}
	return l.With(attrs...)
}
