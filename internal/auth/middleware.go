package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/vinodjarare/shopgraph/internal/models"
)

// TokenVerifier validates session tokens.
type TokenVerifier interface {
	VerifyToken(token string) (*Claims, error)
}

// UserLookup finds the user a token was issued to.
type UserLookup interface {
	GetUserByID(ctx context.Context, id string) (models.User, error)
}

// ContextResolver turns the Authorization header of a request into the acting user.
// It never rejects a request: authorization is enforced per operation.
type ContextResolver struct {
	tokens TokenVerifier
	users  UserLookup
}

// NewContextResolver creates a ContextResolver.
func NewContextResolver(tokens TokenVerifier, users UserLookup) *ContextResolver {
	return &ContextResolver{tokens: tokens, users: users}
}

// Resolve returns the user identified by an "Authorization: Bearer <token>" header value,
// or nil when the request is anonymous or the token cannot be resolved.
func (c *ContextResolver) Resolve(ctx context.Context, authHeader string) *models.User {
	tokenStr := bearerToken(authHeader)
	if tokenStr == "" {
		return nil
	}

	claims, err := c.tokens.VerifyToken(tokenStr)
	if err != nil {
		log.Debug().Err(err).Msg("Ignoring unverifiable bearer token")
		return nil
	}

	user, err := c.users.GetUserByID(ctx, claims.Subject)
	if err != nil {
		log.Warn().Err(err).Str("user_id", claims.Subject).Msg("User from token could not be resolved")
		return nil
	}
	return &user
}

// Middleware attaches the acting user, if any, to the request context.
func (c *ContextResolver) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if user := c.Resolve(r.Context(), r.Header.Get("Authorization")); user != nil {
			r = r.WithContext(WithUser(r.Context(), user))
		}
		next.ServeHTTP(w, r)
	})
}

// bearerToken extracts the token from a header value. Clients that serialise a
// missing token send the literal strings "null" or "undefined"; those count as absent.
func bearerToken(authHeader string) string {
	tokenStr, ok := strings.CutPrefix(authHeader, "Bearer ")
	if !ok {
		return ""
	}
	tokenStr = strings.TrimSpace(tokenStr)
	switch tokenStr {
	case "", "null", "undefined":
		return ""
	}
	return tokenStr
}
