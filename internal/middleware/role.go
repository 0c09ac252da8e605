package middleware // middleware provides shared request processing for handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ikrrevents/eventsite/internal/model"
)

// MsgAdminOnly is the 401 body for signed-in users lacking the admin role.
const MsgAdminOnly = "unauthorized: admin access only"

// RequireRole returns a middleware function that enforces that the
// authenticated user has one of the specified roles.  It assumes
// SessionAuth has already stored the role in the context.  Requests
// without a session, or whose role is not allowed, are rejected with 401
// before the handler runs.
func RequireRole(roles ...model.Role) echo.MiddlewareFunc {
	allowed := make(map[model.Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if UserID(c) == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": MsgLoginRequired})
			}
			if !allowed[Role(c)] {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": MsgAdminOnly})
			}
			return next(c)
		}
	}
}
