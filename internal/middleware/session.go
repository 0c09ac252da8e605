package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/ikrrevents/eventsite/internal/model"
	"github.com/ikrrevents/eventsite/internal/utils"
)

// SessionCookie is the HttpOnly cookie holding the access token.
const SessionCookie = "session"

// MsgLoginRequired is the 401 body for requests without a valid session.
const MsgLoginRequired = "unauthorized: please log in"

// SessionAuth returns an Echo middleware that requires a valid access
// token, read from a Bearer Authorization header or the session cookie.
// The token's subject, role, email and name are stored in the request
// context under the Ctx* keys.  The provided secret must match the one
// used when issuing tokens.
func SessionAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !loadSession(c, secret) {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": MsgLoginRequired})
			}
			return next(c)
		}
	}
}

// OptionalSession is SessionAuth without the rejection: guests and
// requests carrying a bad token continue anonymously.
func OptionalSession(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			loadSession(c, secret)
			return next(c)
		}
	}
}

func loadSession(c echo.Context, secret string) bool {
	raw := sessionToken(c)
	if raw == "" {
		return false
	}
	claims, err := utils.ParseAccessToken(secret, raw)
	if err != nil {
		return false
	}
	c.Set(CtxUserID, claims.Subject)
	c.Set(CtxRole, model.Role(claims.Role))
	c.Set(CtxEmail, claims.Email)
	c.Set(CtxName, claims.Name)
	return true
}

// sessionToken prefers the Authorization header over the cookie.
func sessionToken(c echo.Context) string {
	if auth := c.Request().Header.Get(echo.HeaderAuthorization); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	if ck, err := c.Cookie(SessionCookie); err == nil {
		return ck.Value
	}
	return ""
}
