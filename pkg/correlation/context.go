package correlation

import (
	"context"

	"github.com/google/uuid"
)

type contextKey struct{}

func WithContext(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, contextKey{}, id)
}

func FromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(contextKey{}).(string)
	return id
}

// New returns a fresh correlation id.
func New() string {
	return uuid.NewString()
}
