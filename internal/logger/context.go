package logger

import (
	"context"

	"go.uber.org/zap"
)

type ctxKey string

const requestIDKey ctxKey = "request_id"

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

func RequestIDFrom(ctx context.Context) string {
	if v, ok := ctx.Value(requestIDKey).(string); ok {
		return v
	}
	return ""
}

// FromCtx returns the global logger tagged with the request id, if any.
func FromCtx(ctx context.Context) *zap.Logger {
	reqID := RequestIDFrom(ctx)
	if reqID == "" {
		return L()
	}
	return L().With(zap.String("request_id", reqID))
}

// Detach copies the request id into a fresh context so background work keeps
// log correlation without inheriting the request's cancellation.
func Detach(ctx context.Context) context.Context {
	detached := context.Background()
	if reqID := RequestIDFrom(ctx); reqID != "" {
		detached = WithRequestID(detached, reqID)
	}
	return detached
}
