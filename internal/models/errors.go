package models

import "errors"

// Error kinds shared by every layer. Lower layers wrap them with context
// using fmt.Errorf("...: %w", ...); callers test with errors.Is.
var (
	ErrAlreadyExists      = errors.New("already exists")
	ErrNotFound           = errors.New("not found")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid token")
	ErrValidation         = errors.New("validation failed")
)
