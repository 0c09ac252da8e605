// Package repository defines error types that are reused across multiple
// repositories.  These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios with
// errors.Is; every not-found sentinel translates into an HTTP 404.
package repository

import (
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
)

// ErrBookingNotFound is returned when no booking has the requested id.
var ErrBookingNotFound = errors.New("booking not found")

// ErrQueryNotFound is returned when no contact query has the requested id.
var ErrQueryNotFound = errors.New("query not found")

// ErrImageNotFound is returned when no gallery image has the requested id.
var ErrImageNotFound = errors.New("image not found")

// ErrAboutImageNotFound is returned when the about-section row is absent.
var ErrAboutImageNotFound = errors.New("about image not found")

// ErrUserNotFound is returned when no user has the requested id.
var ErrUserNotFound = errors.New("user not found")

// ErrTokenInvalid is returned when a refresh token is unknown, expired or
// revoked.  Handlers should translate this into an HTTP 401 response.
var ErrTokenInvalid = errors.New("invalid refresh token")

// utcNow is the default clock of every repository.  Values are truncated to
// microseconds so they survive a round trip through DATETIME(6).
func utcNow() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// queryer is satisfied by both *sqlx.DB and *sqlx.Tx, so lookups can be
// shared between plain reads and transactional read-modify-write paths.
type queryer interface {
	sqlx.QueryerContext
	Rebind(query string) string
}
