package rentalweb

import (
	"context"
)

var sessionCtxKey = &contextKey{"session"}
var identityCtxKey = &contextKey{"identity"}

type contextKey struct {
	name string
}

// WithSessionContext sets the Session snapshot in the given context
func WithSessionContext(ctx context.Context, sess Session) context.Context {
	return context.WithValue(ctx, sessionCtxKey, sess)
}

// SessionFromContext finds the session snapshot from the context.
func SessionFromContext(ctx context.Context) (Session, bool) {
	raw, ok := ctx.Value(sessionCtxKey).(Session)
	return raw, ok
}

// WithIdentityContext sets the Identity in the given context
func WithIdentityContext(ctx context.Context, identity *Identity) context.Context {
	return context.WithValue(ctx, identityCtxKey, identity)
}

// IdentityFromContext finds the identity from the context.
func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	raw, ok := ctx.Value(identityCtxKey).(*Identity)
	return raw, ok
}

// RoleFromContext is a convenience to read the authenticated role directly
// from the standard context.
func RoleFromContext(ctx context.Context) (Role, bool) {
	if sess, ok := SessionFromContext(ctx); ok {
		return sess.Role()
	}
	if identity, ok := IdentityFromContext(ctx); ok && identity != nil {
		return identity.Role, true
	}
	return "", false
}
