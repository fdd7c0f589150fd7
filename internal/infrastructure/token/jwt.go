// Package token implements the bearer token codec on top of golang-jwt.
//
// Tokens are HMAC-signed JWTs carrying only the subject (username), the
// issue time and the expiry. Nothing is stored server-side; a token is valid
// while its signature verifies and exp lies in the future.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/99minutos/cargo-transport-api/internal/core/domain"
)

var (
	ErrEmptySecret          = errors.New("token: signing secret must not be empty")
	ErrUnsupportedAlgorithm = errors.New("token: unsupported signing algorithm")
	ErrInvalidTTL           = errors.New("token: default ttl must be positive")
)

// Config is the immutable codec configuration built once at startup.
type Config struct {
	Secret     string
	Algorithm  string
	DefaultTTL time.Duration
}

// JWTCodec issues and verifies tokens. It is safe for concurrent use.
type JWTCodec struct {
	secret []byte
	method jwt.SigningMethod
	ttl    time.Duration
	now    func() time.Time
}

// Option customises a JWTCodec.
type Option func(*JWTCodec)

// WithClock overrides the time source used for iat and exp.
func WithClock(now func() time.Time) Option {
	return func(c *JWTCodec) { c.now = now }
}

// NewJWTCodec validates cfg and returns a codec. Only HMAC algorithms
// (HS256, HS384, HS512) are accepted.
func NewJWTCodec(cfg Config, opts ...Option) (*JWTCodec, error) {
	if cfg.Secret == "" {
		return nil, ErrEmptySecret
	}
	method, ok := jwt.GetSigningMethod(cfg.Algorithm).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, cfg.Algorithm)
	}
	if cfg.DefaultTTL <= 0 {
		return nil, ErrInvalidTTL
	}

	c := &JWTCodec{
		secret: []byte(cfg.Secret),
		method: method,
		ttl:    cfg.DefaultTTL,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// DefaultTTL is the lifetime used for tokens issued at login.
func (c *JWTCodec) DefaultTTL() time.Duration { return c.ttl }

// Issue signs a token for subject that expires ttl from now.
func (c *JWTCodec) Issue(subject string, ttl time.Duration) (string, error) {
	now := c.now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}

	signed, err := jwt.NewWithClaims(c.method, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Decode verifies tokenString and returns its subject. Any failure (bad
// signature, wrong algorithm, malformed input, missing or past exp, empty
// sub) is reported as an error wrapping domain.ErrInvalidToken.
func (c *JWTCodec) Decode(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims, c.keyFunc,
		jwt.WithValidMethods([]string{c.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return "", domain.ErrInvalidToken
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("%w: missing subject", domain.ErrInvalidToken)
	}
	return claims.Subject, nil
}

func (c *JWTCodec) keyFunc(t *jwt.Token) (any, error) {
	if t.Method.Alg() != c.method.Alg() {
		return nil, jwt.ErrTokenSignatureInvalid
	}
	return c.secret, nil
}
