// Package session carries the caller's kitchen binding through a request.
package session

import "context"

type contextKey struct{}

// Info identifies the kitchen a request belongs to. New is set when the
// session cookie was issued by this request.
type Info struct {
	KitchenID string
	New       bool
}

func WithSession(ctx context.Context, info Info) context.Context {
	return context.WithValue(ctx, contextKey{}, info)
}

func FromContext(ctx context.Context) (Info, bool) {
	info, ok := ctx.Value(contextKey{}).(Info)
	return info, ok
}

// KitchenID returns the bound kitchen id, or "" outside a session.
func KitchenID(ctx context.Context) string {
	info, ok := FromContext(ctx)
	if !ok {
		return ""
	}
	return info.KitchenID
}
