package sqlite

import (
	"context"

	"github.com/google/uuid"
	"github.com/vinodjarare/shopgraph/internal/models"
)

const userColumns = "id, address, email, created_at, updated_at"

// scanUser is a helper to scan a user from a row or rows object.
func scanUser(scanner interface{ Scan(...interface{}) error }, extra ...interface{}) (models.User, error) {
	var user models.User
	var createdAt, updatedAt string

	dest := append([]interface{}{&user.ID, &user.Address, &user.Email, &createdAt, &updatedAt}, extra...)
	if err := scanner.Scan(dest...); err != nil {
		return models.User{}, err
	}

	var err error
	if user.CreatedAt, err = parseTime(createdAt); err != nil {
		return models.User{}, err
	}
	if user.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return models.User{}, err
	}
	return user, nil
}

// CreateUser inserts a new user.
func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	now := s.timestamp()
	user.ID = uuid.New().String()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO users(id, address, email, password_hash, created_at, updated_at) VALUES(?, ?, ?, ?, ?, ?)",
		user.ID, user.Address, user.Email, user.PasswordHash, formatTime(now), formatTime(now))
	return mapError(err, "user with email "+user.Email)
}

// GetUserByID retrieves a single user by their ID.
func (s *Store) GetUserByID(ctx context.Context, id string) (models.User, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id = ?", id)
	user, err := scanUser(row)
	return user, mapError(err, "user with ID "+id)
}

// GetUserByEmail retrieves a single user by their email, without the password hash.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE email = ?", email)
	user, err := scanUser(row)
	return user, mapError(err, "user with email "+email)
}

// GetCredentials retrieves a single user by their email, including the password hash.
func (s *Store) GetCredentials(ctx context.Context, email string) (models.User, error) {
	var hash string
	row := s.db.QueryRowContext(ctx, "SELECT "+userColumns+", password_hash FROM users WHERE email = ?", email)
	user, err := scanUser(row, &hash)
	if err != nil {
		return models.User{}, mapError(err, "user with email "+email)
	}
	user.PasswordHash = hash
	return user, nil
}

// ListUsers returns every user, oldest first.
func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+userColumns+" FROM users ORDER BY created_at, rowid")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// CountUsers returns the number of users.
func (s *Store) CountUsers(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&n)
	return n, err
}
