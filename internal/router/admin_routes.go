package router // router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/ikrrevents/eventsite/internal/handler"
	"github.com/ikrrevents/eventsite/internal/middleware"
	"github.com/ikrrevents/eventsite/internal/model"
)

// RegisterAdmin registers the dashboard endpoints under /api.  All routes
// require a valid session and the ADMIN role; anything else is rejected
// with 401 before a handler runs.
func RegisterAdmin(e *echo.Echo, b *handler.BookingHandler, q *handler.QueryHandler, g *handler.GalleryHandler, a *handler.AboutHandler, jwtSecret string) {
	// Per-route middlewares keep unmatched /api paths at 404.
	mw := []echo.MiddlewareFunc{
		middleware.SessionAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin),
	}
	adm := e.Group("/api")

	// ---- Bookings ----
	// GET /api/bookings/all is served by Get.
	adm.GET("/bookings/:id", b.Get, mw...)
	adm.PATCH("/bookings/:id", b.UpdateStatus, mw...)
	adm.DELETE("/bookings/:id", b.Delete, mw...)

	// ---- Queries ----
	adm.GET("/queries/:id", q.Get, mw...)
	adm.PATCH("/queries/:id", q.Update, mw...)
	adm.DELETE("/queries/:id", q.Delete, mw...)

	// ---- Gallery ----
	adm.POST("/gallery/upload", g.Upload, mw...)
	adm.DELETE("/gallery/delete", g.Delete, mw...)

	// ---- About ----
	adm.POST("/about", a.Set, mw...)
	adm.DELETE("/about", a.Delete, mw...)
}
