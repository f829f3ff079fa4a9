package core

import "context"

type contextKey string

const (
	ctxKeySessionID contextKey = "view_session"
	ctxKeyIPAddress contextKey = "client_ip"
)

// ContextWithSessionID adds the view session id to context for logging.
func ContextWithSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKeySessionID, id)
}

// SessionIDFromContext extracts the view session id from context.
func SessionIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeySessionID).(string); ok {
		return v
	}
	return ""
}

// ContextWithIPAddress adds the client IP to context for event logging.
func ContextWithIPAddress(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, ctxKeyIPAddress, ip)
}

// IPAddressFromContext extracts the client IP from context.
func IPAddressFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyIPAddress).(string); ok {
		return v
	}
	return ""
}
