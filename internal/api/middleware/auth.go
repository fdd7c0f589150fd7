package middleware

import (
	"context"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/cargo-transport-api/internal/api/metrics"
	"github.com/99minutos/cargo-transport-api/internal/core/domain"
)

// UserContextKey is the echo context key holding the resolved *domain.User.
const UserContextKey = "user"

// IdentityResolver maps a bearer token to the stored user it names.
type IdentityResolver interface {
	Resolve(ctx context.Context, token string) (*domain.User, error)
}

// Auth gates a route on a valid bearer token. The resolved user is stored on
// the context for the rest of the request; nothing else is mutated.
func Auth(resolver IdentityResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if !ok {
				metrics.AuthRejectionsTotal.WithLabelValues("missing_token").Inc()
				return domain.ErrNotAuthenticated
			}

			user, err := resolver.Resolve(c.Request().Context(), token)
			if err != nil {
				if domain.IsUnauthenticated(err) {
					metrics.AuthRejectionsTotal.WithLabelValues("invalid_token").Inc()
				}
				return err
			}

			c.Set(UserContextKey, user)
			return next(c)
		}
	}
}

// CurrentUser returns the identity attached by Auth.
func CurrentUser(c echo.Context) (*domain.User, bool) {
	user, ok := c.Get(UserContextKey).(*domain.User)
	return user, ok && user != nil
}

// bearerToken extracts the credentials of a "Bearer <token>" header value.
func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
