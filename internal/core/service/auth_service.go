package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/cargo-transport-api/internal/core/domain"
	"github.com/99minutos/cargo-transport-api/internal/core/ports"
)

// AuthService implements registration, login and token resolution.
type AuthService struct {
	repo   ports.AuthRepository
	hasher ports.PasswordHasher
	tokens ports.TokenCodec
	authn  *Authenticator
	log    zerolog.Logger
}

func NewAuthService(repo ports.AuthRepository, hasher ports.PasswordHasher, tokens ports.TokenCodec, log zerolog.Logger) *AuthService {
	return &AuthService{
		repo:   repo,
		hasher: hasher,
		tokens: tokens,
		authn:  NewAuthenticator(repo, hasher, log),
		log:    log,
	}
}

func (s *AuthService) Register(ctx context.Context, username, password string) (*domain.User, error) {
	if strings.TrimSpace(username) == "" || password == "" {
		return nil, domain.ErrInvalidInput
	}

	_, err := s.repo.FindByUsername(ctx, username)
	switch {
	case err == nil:
		return nil, domain.ErrUsernameTaken
	case !errors.Is(err, domain.ErrUserNotFound):
		return nil, fmt.Errorf("register: %w", err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("register: hash password: %w", err)
	}

	created, err := s.repo.Create(ctx, &domain.User{
		Username:     username,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			return nil, err
		}
		return nil, fmt.Errorf("register: %w", err)
	}

	s.log.Info().Str("username", username).Str("user_id", created.ID).Msg("user created")
	return created, nil
}

func (s *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	user, err := s.authn.Authenticate(ctx, username, password)
	if err != nil {
		return "", fmt.Errorf("login: %w", err)
	}
	if user == nil {
		return "", domain.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.Username, s.tokens.DefaultTTL())
	if err != nil {
		return "", fmt.Errorf("login: issue token: %w", err)
	}
	return token, nil
}

// Resolve decodes token and loads the user it names. A bad token and an
// unknown subject both yield domain.ErrInvalidToken.
func (s *AuthService) Resolve(ctx context.Context, token string) (*domain.User, error) {
	username, err := s.tokens.Decode(token)
	if err != nil {
		s.log.Debug().Err(err).Msg("token rejected")
		return nil, domain.ErrInvalidToken
	}

	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.log.Debug().Str("username", username).Msg("token subject no longer exists")
			return nil, domain.ErrInvalidToken
		}
		return nil, fmt.Errorf("resolve: %w", err)
	}
	return user, nil
}
