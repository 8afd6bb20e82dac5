package loggy

import (
	"context"

	"github.com/tildaslashalef/nestlint/internal/ulid"
)

type contextKey string

const requestIDKey contextKey = "request_id"

// GetRequestID retrieves the run ID from the context
func GetRequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}

	return ""
}

// WithRequestID returns a new context with the run ID attached
func WithRequestID(ctx context.Context, requestID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, requestIDKey, requestID)
}

// NewRequestID generates a new run ID
func NewRequestID() string {
	return ulid.RunID()
}
