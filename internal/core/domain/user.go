package domain

import (
	"errors"
	"time"
)

var (
	// ErrUserExists is returned by a credential store when the username is
	// already taken at write time (unique index / constraint violation).
	ErrUserExists = errors.New("user already exists")
	// ErrUsernameTaken is returned by registration when the pre-insert lookup
	// already finds the username.
	ErrUsernameTaken = errors.New("username already registered")
	ErrUserNotFound  = errors.New("user not found")

	ErrInvalidCredentials = errors.New("incorrect username or password")
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrInvalidToken       = errors.New("could not validate credentials")

	ErrInvalidInput = errors.New("invalid input")
)

// User models a registered credential. It is never updated after creation.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// IsUnauthenticated reports whether err should be answered with 401 and a
// bearer challenge.
func IsUnauthenticated(err error) bool {
	return errors.Is(err, ErrInvalidCredentials) ||
		errors.Is(err, ErrNotAuthenticated) ||
		errors.Is(err, ErrInvalidToken)
}
