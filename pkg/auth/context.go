// Package auth resolves the identity of the user behind a request.
package auth

import "context"

// contextKey is a private type for context keys.
type contextKey int

const (
	userContextKey contextKey = iota
)

// Auth types reported in UserContext.AuthType.
const (
	AuthTypeHeader    = "header"
	AuthTypeJWT       = "jwt"
	AuthTypeAnonymous = "anonymous"
)

// UserContext holds authenticated user information.
type UserContext struct {
	UserID   string         `json:"user_id"`
	Claims   map[string]any `json:"claims,omitempty"`
	AuthType string         `json:"auth_type"`
}

// WithUserContext adds user context to the context.
func WithUserContext(ctx context.Context, uc *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey, uc)
}

// GetUserContext retrieves user context from the context.
func GetUserContext(ctx context.Context) *UserContext {
	if uc, ok := ctx.Value(userContextKey).(*UserContext); ok {
		return uc
	}
	return nil
}

// UserID returns the authenticated user id, or "" for anonymous requests.
func UserID(ctx context.Context) string {
	uc := GetUserContext(ctx)
	if uc == nil || uc.AuthType == AuthTypeAnonymous {
		return ""
	}
	return uc.UserID
}
