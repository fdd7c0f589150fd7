package ports

import (
	"context"
	"time"

	"github.com/99minutos/cargo-transport-api/internal/core/domain"
)

type AuthService interface {
	Register(ctx context.Context, username, password string) (*domain.User, error)
	Login(ctx context.Context, username, password string) (string, error)
	// Resolve maps a bearer token to the stored user it was issued for.
	Resolve(ctx context.Context, token string) (*domain.User, error)
}

// PasswordHasher derives and checks password verifiers.
type PasswordHasher interface {
	Hash(password string) (string, error)
	// Compare returns nil only when password matches the stored verifier.
	Compare(hash, password string) error
}

// TokenCodec issues and decodes signed, self-contained, expiring tokens.
type TokenCodec interface {
	Issue(subject string, ttl time.Duration) (string, error)
	// Decode returns the token subject. Every failure wraps domain.ErrInvalidToken.
	Decode(token string) (string, error)
	DefaultTTL() time.Duration
}
