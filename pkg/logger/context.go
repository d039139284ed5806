package logger

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type correlationKey struct{}

// WithCorrelationID stores id on ctx.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationKey{}, id)
}

// CorrelationID returns the id stored on ctx, or "".
func CorrelationID(ctx context.Context) string {
	id, _ := ctx.Value(correlationKey{}).(string)
	return id
}

// EnsureCorrelationID returns ctx unchanged when it already carries an id, otherwise a child
// context with a fresh one.
func EnsureCorrelationID(ctx context.Context) (context.Context, string) {
	if id := CorrelationID(ctx); id != "" {
		return ctx, id
	}
	id := uuid.NewString()
	return WithCorrelationID(ctx, id), id
}

// For returns logger annotated with the correlation id on ctx.
func For(ctx context.Context, logger *zap.Logger) *zap.Logger {
	if id := CorrelationID(ctx); id != "" {
		return logger.With(zap.String("correlation_id", id))
	}
	return logger
}
