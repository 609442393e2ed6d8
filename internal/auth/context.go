package auth

import (
	"context"

	"orderdesk/internal/model"
)

type sessionKey struct{}

// WithSession returns a copy of ctx carrying s.
func WithSession(ctx context.Context, s model.Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// SessionFrom returns the session stored in ctx, if any.
func SessionFrom(ctx context.Context) (model.Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(model.Session)
	return s, ok
}

// RoleFrom returns the caller's role, or RoleAnonymous without a session.
func RoleFrom(ctx context.Context) model.Role {
	if s, ok := SessionFrom(ctx); ok {
		return s.Role
	}
	return model.RoleAnonymous
}
