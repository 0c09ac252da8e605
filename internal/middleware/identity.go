package middleware

// identity.go defines the context keys the session middleware fills and the
// accessors handlers and other middleware use to read them.

import (
	"github.com/labstack/echo/v4"

	"github.com/ikrrevents/eventsite/internal/model"
)

// Context keys set by SessionAuth and OptionalSession.
const (
	CtxUserID = "user_id"
	CtxRole   = "role"
	CtxEmail  = "email"
	CtxName   = "name"
)

// UserID returns the signed-in user's id, or "" for guests.
func UserID(c echo.Context) string {
	s, _ := c.Get(CtxUserID).(string)
	return s
}

// Role returns the signed-in user's role, or "" for guests.
func Role(c echo.Context) model.Role {
	r, _ := c.Get(CtxRole).(model.Role)
	return r
}

// Email returns the email carried by the session token.
func Email(c echo.Context) string {
	s, _ := c.Get(CtxEmail).(string)
	return s
}

// Name returns the display name carried by the session token.
func Name(c echo.Context) string {
	s, _ := c.Get(CtxName).(string)
	return s
}
