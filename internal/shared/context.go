package shared

import (
	"context"
	"net/http"
)

type contextKey int

const sessionKey contextKey = iota

// ContextWithSession attaches sess to ctx.
func ContextWithSession(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, sessionKey, sess)
}

// RequestSession returns the session loaded for r, or nil when the request did
// not pass through the session middleware.
func RequestSession(r *http.Request) *Session {
	sess, _ := r.Context().Value(sessionKey).(*Session)
	return sess
}
