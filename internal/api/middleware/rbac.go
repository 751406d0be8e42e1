package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/siteworks/records-api/internal/core/domain"
	"github.com/siteworks/records-api/internal/core/policy"
)

// RequireAction gates a route on the access policy: the resolved caller's
// role must be granted the action. Owner-scoped decisions still happen in the
// service layer; this is the coarse route-level cut.
func RequireAction(action policy.Action) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, ok := Identity(c)
			if !ok {
				return domain.ErrUnauthenticated
			}
			if !policy.Allows(id.Role, action) {
				return domain.ErrForbidden
			}
			return next(c)
		}
	}
}
