package auth

import (
	"context"

	"github.com/vinodjarare/shopgraph/internal/models"
)

type contextKey string

const userContextKey = contextKey("actingUser")

// WithUser returns a copy of ctx carrying the acting user.
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// UserFromContext returns the acting user, or false for an anonymous request.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(userContextKey).(*models.User)
	if !ok || user == nil {
		return nil, false
	}
	return user, true
}
