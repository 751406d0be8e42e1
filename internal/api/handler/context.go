package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/siteworks/records-api/internal/api/middleware"
	"github.com/siteworks/records-api/internal/core/domain"
)

// callerIdentity extracts the identity injected by the Auth middleware. Its
// absence means a route was wired without the middleware, which is a bug the
// caller still only sees as 401.
func callerIdentity(c echo.Context) (domain.Identity, error) {
	id, ok := middleware.Identity(c)
	if !ok {
		return domain.Identity{}, domain.ErrUnauthenticated
	}
	return id, nil
}
