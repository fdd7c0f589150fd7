package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/99minutos/cargo-transport-api/internal/api/middleware"
	"github.com/99minutos/cargo-transport-api/internal/core/domain"
)

// ctxUser returns the identity injected by the Auth middleware, or
// domain.ErrNotAuthenticated when the route was mounted without the gate.
func ctxUser(c echo.Context) (*domain.User, error) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return nil, domain.ErrNotAuthenticated
	}
	return user, nil
}
