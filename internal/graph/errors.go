package graph

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/vinodjarare/shopgraph/internal/auth"
	"github.com/vinodjarare/shopgraph/internal/models"
)

// Error codes reported in the "code" extension of a GraphQL error.
const (
	CodeAlreadyExists      = "ALREADY_EXISTS"
	CodeNotFound           = "NOT_FOUND"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeInvalidToken       = "INVALID_TOKEN"
	CodeValidation         = "VALIDATION_FAILED"
	CodeInternal           = "INTERNAL"
)

// Error is a caller-safe resolver error.
type Error struct {
	Message string
	Code    string
}

func (e *Error) Error() string {
	return e.Message
}

// Extensions implements graphql-go's ResolverError.
func (e *Error) Extensions() map[string]interface{} {
	return map[string]interface{}{"code": e.Code}
}

// operation names a resolver for logs, metrics and error messages.
type operation struct {
	name   string
	entity string // "User" or "Product"
	action string // completes "You don't have permission to ..."
}

var (
	opCreateUser     = operation{"createUser", "User", "create a user"}
	opLogin          = operation{"login", "User", "log in"}
	opAddProduct     = operation{"addProduct", "Product", "add a product"}
	opUpdateProduct  = operation{"updateProduct", "Product", "update a product"}
	opProduct        = operation{"product", "Product", "view this resource"}
	opProductCount   = operation{"productCount", "Product", "view this resource"}
	opUsers          = operation{"users", "User", "view this resource"}
	opUser           = operation{"user", "User", "view this resource"}
	opProductsByUser = operation{"productsByUser", "Product", "view this resource"}
	opProducts       = operation{"products", "Product", "view this resource"}
)

// sanitize maps err onto the closed set of messages a caller may see.
// Validation messages are authored by the services and pass through.
func (op operation) sanitize(err error) *Error {
	switch {
	case errors.Is(err, models.ErrAlreadyExists):
		return &Error{Message: op.entity + " already exists", Code: CodeAlreadyExists}
	case errors.Is(err, models.ErrNotFound):
		return &Error{Message: op.entity + " not found", Code: CodeNotFound}
	case errors.Is(err, models.ErrUnauthorized):
		return &Error{Message: "You don't have permission to " + op.action, Code: CodeUnauthorized}
	case errors.Is(err, models.ErrInvalidCredentials):
		return &Error{Message: "Invalid email or password", Code: CodeInvalidCredentials}
	case errors.Is(err, models.ErrInvalidToken):
		return &Error{Message: "Invalid token", Code: CodeInvalidToken}
	case errors.Is(err, models.ErrValidation):
		return &Error{Message: err.Error(), Code: CodeValidation}
	default:
		return &Error{Message: "internal server error", Code: CodeInternal}
	}
}

// observe runs deferred at the end of every resolver: it records the outcome,
// logs failures and replaces *errp with its sanitized form.
func (r *Resolver) observe(ctx context.Context, op operation, start time.Time, errp *error) {
	err := *errp
	outcome := "ok"
	if err != nil {
		safe := op.sanitize(err)
		outcome = safe.Code

		level := zerolog.WarnLevel
		if safe.Code == CodeInternal {
			level = zerolog.ErrorLevel
		}
		event := log.WithLevel(level).Err(err).Str("operation", op.name)
		if user, ok := auth.UserFromContext(ctx); ok {
			event = event.Str("user_id", user.ID)
		}
		event.Msg("GraphQL operation failed")

		*errp = safe
	}

	if r.recorder != nil {
		r.recorder.RecordOperation(op.name, outcome, time.Since(start))
	}
}

// requireUser returns the acting user or ErrUnauthorized.
func requireUser(ctx context.Context) (models.User, error) {
	user, ok := auth.UserFromContext(ctx)
	if !ok {
		return models.User{}, models.ErrUnauthorized
	}
	return *user, nil
}
