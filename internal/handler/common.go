package handler // handler defines http handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ikrrevents/eventsite/internal/notify"
	"github.com/ikrrevents/eventsite/internal/queue"
)

const (
	dbTimeout     = 5 * time.Second
	notifyTimeout = 10 * time.Second
)

// NotificationSender delivers the operator and customer emails for one
// submission.  *notify.Notifier satisfies it.
type NotificationSender interface {
	Send(ctx context.Context, kind notify.Kind, email, name string, payload any) notify.Result
}

// EventPublisher announces stored submissions.  *service.Publisher
// satisfies it.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.SubmissionEvent) error
}

// CacheInvalidator drops cached GET responses for the given paths.
// *middleware.ResponseCache satisfies it.
type CacheInvalidator interface {
	Invalidate(ctx context.Context, paths ...string) error
}

// SideEffects runs the follow-ups of a stored submission: the email pair
// and the submission event.  Any field may be nil.  Neither follow-up can
// fail the request that triggered it.
type SideEffects struct {
	Notifier NotificationSender
	Events   EventPublisher
	Log      *slog.Logger
}

// afterSubmit sends the notification and publishes ev.  It is detached
// from the request's cancellation and bounded by notifyTimeout.
func (s *SideEffects) afterSubmit(parent context.Context, kind notify.Kind, email, name string, payload any, ev queue.SubmissionEvent) {
	if s == nil {
		return
	}
	log := s.Log
	if log == nil {
		log = slog.Default()
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), notifyTimeout)
	defer cancel()

	if s.Notifier != nil {
		if email == "" {
			log.Warn("notification_skipped", "kind", kind, "ref", ev.ReferenceID, "reason", "no recipient email")
		} else {
			res := s.Notifier.Send(ctx, kind, email, name, payload)
			if !res.Success {
				log.Warn("notification_failed", "kind", kind, "ref", ev.ReferenceID, "error", res.Error)
			}
		}
	}
	if s.Events != nil {
		if err := s.Events.Publish(ctx, ev); err != nil {
			log.Warn("submission_event_failed", "kind", ev.Kind, "ref", ev.ReferenceID, "error", err)
		}
	}
}

// dbCtx bounds the database work of one request.
func dbCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), dbTimeout)
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
}

func notFound(c echo.Context, msg string) error {
	return c.JSON(http.StatusNotFound, echo.Map{"error": msg})
}

// internalError logs err with the request path and answers 500 with msg.
// The client never sees err itself.
func internalError(c echo.Context, log *slog.Logger, msg string, err error) error {
	if log == nil {
		log = slog.Default()
	}
	log.Error("request_failed",
		"method", c.Request().Method,
		"path", c.Path(),
		"request_id", c.Response().Header().Get(echo.HeaderXRequestID),
		"error", err,
	)
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": msg})
}

// invalidate drops cached responses.  Failures are logged by the cache and
// never fail the write that triggered them.
func invalidate(ctx context.Context, cache CacheInvalidator, paths ...string) {
	if cache == nil {
		return
	}
	_ = cache.Invalidate(ctx, paths...)
}

// optionalString maps "" to nil.
func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
