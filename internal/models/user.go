package models

import "time"

// User represents a user account in the system.
type User struct {
	ID           string    `json:"id"`
	Address      string    `json:"address"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never expose this to the client
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// AuthPayload is the result of a successful login.
type AuthPayload struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
