package logger

import (
	"context"

	"github.com/oklog/ulid/v2"
)

type ctxKey string

const requestIDKey = ctxKey("x-request-id")

// ContextWithRequestID returns a context with a request id.
// It will generate a new request id if the provided id is empty.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		id = ulid.Make().String()
	}
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext returns a request id from ctx if available.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}
