// Package correlation propagates the request correlation id across
// transport, dispatch and use-case layers via context.
package correlation

import "context"

type ctxKey struct{}

// With returns a context carrying the correlation id.
func With(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, ctxKey{}, id)
}

// From returns the correlation id carried by ctx, or "" when absent.
func From(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}
