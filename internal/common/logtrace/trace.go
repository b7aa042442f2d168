package logtrace

import (
	"context"

	"github.com/google/uuid"
)

type callIDKey struct{}

// WithCallID returns a context carrying a call id. An id already present is kept.
func WithCallID(ctx context.Context) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if CallIDFromContext(ctx) != "" {
		return ctx
	}
	return context.WithValue(ctx, callIDKey{}, uuid.NewString())
}

// CallIDFromContext extracts the call id from the context.
// Returns an empty string if the context is nil or if no call id is found.
func CallIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	r, ok := ctx.Value(callIDKey{}).(string)
	if !ok {
		return ""
	}
	return r
}
