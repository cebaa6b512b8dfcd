package logging

import (
	"context"
	"io"
	"log/slog"
)

type ctxKey struct{}

// ToContext returns a context carrying the given logger. Request middleware
// uses it to bind a child logger (request id, method, path) for the lifetime
// of one request; the binding disappears with the request context, so it can
// never leak into another request.
func ToContext(ctx context.Context, l Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext returns the logger bound to the context. When no logger has
// been bound, a logger that discards everything is returned, so callers can
// log unconditionally.
func FromContext(ctx context.Context) Logger {
	if l, ok := ctx.Value(ctxKey{}).(Logger); ok {
		return l
	}
	return discard
}

var discard Logger = NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
