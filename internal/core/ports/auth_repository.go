package ports

import (
	"context"

	"github.com/99minutos/cargo-transport-api/internal/core/domain"
)

// AuthRepository defines the interface for credential persistence.
// Create must enforce username uniqueness atomically and report a clash as
// domain.ErrUserExists. FindByUsername returns domain.ErrUserNotFound when
// no record matches.
type AuthRepository interface {
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
}
