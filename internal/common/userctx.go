package common

import (
	"context"

	"github.com/mibolsillo/server/internal/models"
)

// UserContext holds the authenticated caller resolved by the auth gate:
// the local profile plus the verified bearer token. The token is kept so
// downstream components (reports, CRUD) can obtain a store client scoped
// to the caller's own credential.
type UserContext struct {
	User  *models.UserProfile
	Token string
}

type contextKey int

const userContextKey contextKey = iota

// WithUserContext stores a UserContext in the request context.
func WithUserContext(ctx context.Context, uc *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey, uc)
}

// UserContextFromContext retrieves the UserContext from context, or nil if absent.
func UserContextFromContext(ctx context.Context) *UserContext {
	uc, _ := ctx.Value(userContextKey).(*UserContext)
	return uc
}

// ResolveUser returns the authenticated profile from context, or nil.
func ResolveUser(ctx context.Context) *models.UserProfile {
	if uc := UserContextFromContext(ctx); uc != nil {
		return uc.User
	}
	return nil
}

// ResolveToken returns the verified bearer token from context, or "".
func ResolveToken(ctx context.Context) string {
	if uc := UserContextFromContext(ctx); uc != nil {
		return uc.Token
	}
	return ""
}
