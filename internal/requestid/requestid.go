// Package requestid carries the per-request correlation identifier through
// context.Context. Each request gets its own context, so concurrent requests
// can never observe each other's identifiers.
package requestid

import (
	"context"

	"github.com/google/uuid"
)

// Header is the correlation header read on ingress and echoed on egress.
const Header = "X-Request-ID"

type ctxKey struct{}

// New generates a fresh collision-resistant identifier. Used when a request
// arrives without a correlation header.
func New() string {
	return uuid.NewString()
}

// ToContext returns a context carrying the given request id.
func ToContext(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns the request id bound to the context, or an empty
// string when none has been set.
func FromContext(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}
