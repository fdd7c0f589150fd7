package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/99minutos/cargo-transport-api/internal/core/domain"
	"github.com/99minutos/cargo-transport-api/internal/core/ports"
)

// Authenticator checks a username/password pair against the credential store.
type Authenticator struct {
	repo   ports.AuthRepository
	hasher ports.PasswordHasher
	log    zerolog.Logger
}

func NewAuthenticator(repo ports.AuthRepository, hasher ports.PasswordHasher, log zerolog.Logger) *Authenticator {
	return &Authenticator{repo: repo, hasher: hasher, log: log}
}

// Authenticate returns the matching user, or nil when the username is unknown
// or the password does not match. Both cases look the same to the caller.
// Only storage faults produce an error.
func (a *Authenticator) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	user, err := a.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			a.log.Warn().Str("username", username).Msg("failed authentication attempt")
			return nil, nil
		}
		return nil, err
	}

	if a.hasher.Compare(user.PasswordHash, password) != nil {
		a.log.Warn().Str("username", username).Msg("failed authentication attempt")
		return nil, nil
	}

	a.log.Info().Str("username", username).Msg("user authenticated")
	return user, nil
}
