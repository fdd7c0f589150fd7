package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/99minutos/cargo-transport-api/internal/core/domain"
)

func TestHTTPErrorHandler(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantCode   int
		wantMsg    string
		wantBearer bool
	}{
		{"username taken", domain.ErrUsernameTaken, http.StatusBadRequest, "username already registered", false},
		{"lost race", fmt.Errorf("create: %w", domain.ErrUserExists), http.StatusBadRequest, "username already registered", false},
		{"bad credentials", domain.ErrInvalidCredentials, http.StatusUnauthorized, "incorrect username or password", true},
		{"no token", domain.ErrNotAuthenticated, http.StatusUnauthorized, "not authenticated", true},
		{"bad token", fmt.Errorf("decode: %w", domain.ErrInvalidToken), http.StatusUnauthorized, "could not validate credentials", true},
		{"invalid input", domain.ErrInvalidInput, http.StatusUnprocessableEntity, "invalid input", false},
		{"echo error", echo.NewHTTPError(http.StatusInternalServerError, "error adding package"), http.StatusInternalServerError, "error adding package", false},
		{"echo 401", echo.ErrUnauthorized, http.StatusUnauthorized, "Unauthorized", true},
		{"unexpected", errors.New("mongo: socket closed"), http.StatusInternalServerError, "internal server error", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/x", nil), rec)

			NewHTTPErrorHandler(zerolog.Nop())(tc.err, c)

			assert.Equal(t, tc.wantCode, rec.Code)
			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, map[string]string{"error": tc.wantMsg}, body)

			challenge := rec.Header().Get(echo.HeaderWWWAuthenticate)
			if tc.wantBearer {
				assert.Equal(t, "Bearer", challenge)
			} else {
				assert.Empty(t, challenge)
			}
		})
	}
}

func TestHTTPErrorHandler_Head(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodHead, "/x", nil), rec)

	NewHTTPErrorHandler(zerolog.Nop())(domain.ErrNotAuthenticated, c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestHTTPErrorHandler_CommittedResponse(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/x", nil), rec)
	require.NoError(t, c.String(http.StatusOK, "done"))

	NewHTTPErrorHandler(zerolog.Nop())(errors.New("late"), c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "done", rec.Body.String())
}
