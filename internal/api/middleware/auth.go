package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/siteworks/records-api/internal/core/domain"
	"github.com/siteworks/records-api/internal/core/ports"
)

// identityKey is the echo context key the resolved caller is stored under.
const identityKey = "identity"

// Auth resolves the bearer token through the session authenticator and
// injects the caller identity into the request context. Requests without a
// valid token never reach the handler.
func Auth(auth ports.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, err := BearerToken(c)
			if err != nil {
				return err
			}

			identity, err := auth.Resolve(c.Request().Context(), token)
			if err != nil {
				return err
			}

			SetIdentity(c, *identity)
			return next(c)
		}
	}
}

// BearerToken extracts the token from the Authorization header.
func BearerToken(c echo.Context) (string, error) {
	header := c.Request().Header.Get("Authorization")
	if header == "" {
		return "", domain.ErrUnauthenticated
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
		return "", domain.ErrUnauthenticated
	}
	return parts[1], nil
}

// SetIdentity stores the resolved caller on the request context.
func SetIdentity(c echo.Context, id domain.Identity) {
	c.Set(identityKey, id)
}

// Identity returns the caller injected by Auth.
func Identity(c echo.Context) (domain.Identity, bool) {
	id, ok := c.Get(identityKey).(domain.Identity)
	return id, ok
}
