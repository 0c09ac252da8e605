package router

import (
	"github.com/labstack/echo/v4"

	"github.com/ikrrevents/eventsite/internal/handler"
	"github.com/ikrrevents/eventsite/internal/middleware"
)

// RegisterCustomer registers the visitor-facing submission endpoints.
// Bookings require a session; the contact form accepts guests and links
// the query to the account when a session is present.  limiter guards the
// two create endpoints and may be nil.
func RegisterCustomer(e *echo.Echo, b *handler.BookingHandler, q *handler.QueryHandler, jwtSecret string, limiter echo.MiddlewareFunc) {
	auth := middleware.SessionAuth(jwtSecret)
	create := []echo.MiddlewareFunc{auth}
	contact := []echo.MiddlewareFunc{middleware.OptionalSession(jwtSecret)}
	if limiter != nil {
		create = append(create, limiter)
		contact = append(contact, limiter)
	}

	e.POST("/api/bookings", b.Create, create...)
	e.GET("/api/bookings", b.ListOwn, auth)

	e.POST("/api/contact", q.Create, contact...)
	e.GET("/api/contact", q.ListOwn, auth)
}
