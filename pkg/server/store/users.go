package store

import (
	"context"
	"errors"
	"time"
)

// ErrUserNotFound is returned when no user has the requested phone or ID
var ErrUserNotFound = errors.New("user not found")

// ErrPhoneTaken is returned when creating a user whose phone is registered
var ErrPhoneTaken = errors.New("phone already registered")

// User represents a login identity
type User struct {
	ID           int64
	Name         string
	Phone        string
	Email        string
	PasswordHash []byte
	Role         string
	CreatedAt    time.Time
}

// UsersStore abstracts user storage operations
type UsersStore interface {
	// FindUserByPhone retrieves a user by login phone.
	// Returns ErrUserNotFound if no user has that phone.
	FindUserByPhone(ctx context.Context, phone string) (*User, error)

	// GetUser retrieves a user by ID.
	// Returns ErrUserNotFound if the user doesn't exist.
	GetUser(ctx context.Context, id int64) (*User, error)

	// CreateUser stores a new user and fills in its ID and CreatedAt.
	// Returns ErrPhoneTaken if the phone is already registered.
	CreateUser(ctx context.Context, user *User) error
}
