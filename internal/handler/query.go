package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/ikrrevents/eventsite/internal/middleware"
	"github.com/ikrrevents/eventsite/internal/model"
	"github.com/ikrrevents/eventsite/internal/notify"
	"github.com/ikrrevents/eventsite/internal/queue"
	"github.com/ikrrevents/eventsite/internal/repository"
)

const (
	msgQueryRequired  = "Name, email, and message are required"
	msgQueryEmail     = "Please provide a valid email address"
	msgQueryNotFound  = "Query not found"
	msgQuerySubmitted = "Query submitted successfully"
	msgQueryUpdated   = "Query updated successfully"
	msgQueryDeleted   = "Query deleted successfully"
)

// QueryHandler serves the contact form and the admin query dashboard.
type QueryHandler struct {
	Queries *repository.QueryRepo
	Effects *SideEffects
	Log     *slog.Logger
}

// NewQueryHandler constructs a QueryHandler and panics if the repository
// is nil.
func NewQueryHandler(queries *repository.QueryRepo, effects *SideEffects, log *slog.Logger) *QueryHandler {
	if queries == nil {
		panic("nil repository passed to NewQueryHandler")
	}
	if log == nil {
		log = slog.Default()
	}
	return &QueryHandler{Queries: queries, Effects: effects, Log: log}
}

type contactReq struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone"`
	Message string `json:"message" validate:"required"`
}

// Create handles POST /api/contact.  Guests may submit; a signed-in
// visitor's query is linked to their account.
func (h *QueryHandler) Create(c echo.Context) error {
	var req contactReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, msgInvalidBody)
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.Phone = strings.TrimSpace(req.Phone)
	req.Message = strings.TrimSpace(req.Message)
	if err := c.Validate(&req); err != nil {
		if failedTag(err, "email") && !failedTag(err, "required") {
			return badRequest(c, msgQueryEmail)
		}
		return badRequest(c, msgQueryRequired)
	}

	q := &model.Query{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   optionalString(req.Phone),
		Message: req.Message,
		Status:  model.QueryNew,
	}
	uid := middleware.UserID(c)
	if uid != "" {
		q.UserID = &uid
	}

	ctx, cancel := dbCtx(c)
	defer cancel()
	if err := h.Queries.Create(ctx, q); err != nil {
		return internalError(c, h.Log, "Failed to submit query", err)
	}

	h.Effects.afterSubmit(c.Request().Context(), notify.KindQuery, q.Email, q.Name,
		notify.QueryDetails{ID: q.ID, Message: q.Message, Phone: req.Phone},
		queue.SubmissionEvent{
			Kind:        queue.KindQueryCreated,
			ReferenceID: q.ID,
			UserID:      uid,
			Email:       q.Email,
			Name:        q.Name,
			Status:      string(q.Status),
			SubmittedAt: q.CreatedAt,
		})

	return c.JSON(http.StatusCreated, echo.Map{"message": msgQuerySubmitted, "query": q})
}

// ListOwn handles GET /api/contact for the signed-in user.
func (h *QueryHandler) ListOwn(c echo.Context) error {
	ctx, cancel := dbCtx(c)
	defer cancel()
	list, err := h.Queries.ListByUser(ctx, middleware.UserID(c))
	if err != nil {
		return internalError(c, h.Log, "Failed to fetch queries", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"queries": list})
}

// Get handles GET /api/queries/:id for admins.  The id "all" lists every
// query.
func (h *QueryHandler) Get(c echo.Context) error {
	id := strings.TrimSpace(c.Param("id"))
	ctx, cancel := dbCtx(c)
	defer cancel()

	if id == listAllID {
		list, err := h.Queries.ListAll(ctx)
		if err != nil {
			return internalError(c, h.Log, "Failed to fetch queries", err)
		}
		return c.JSON(http.StatusOK, echo.Map{"queries": list})
	}

	q, err := h.Queries.GetByID(ctx, id)
	if errors.Is(err, repository.ErrQueryNotFound) {
		return notFound(c, msgQueryNotFound)
	}
	if err != nil {
		return internalError(c, h.Log, "Failed to fetch queries", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"query": q})
}

// queryUpdateReq distinguishes an absent notes key (nil) from an empty
// one, which clears the notes.
type queryUpdateReq struct {
	Status string  `json:"status" validate:"omitempty,oneof=NEW IN_PROGRESS RESOLVED CLOSED"`
	Notes  *string `json:"notes"`
}

// Update handles PATCH /api/queries/:id.
func (h *QueryHandler) Update(c echo.Context) error {
	id := strings.TrimSpace(c.Param("id"))
	var req queryUpdateReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, msgInvalidBody)
	}
	req.Status = strings.TrimSpace(req.Status)
	if err := c.Validate(&req); err != nil {
		return badRequest(c, msgInvalidStatus)
	}

	upd := model.QueryUpdate{Notes: req.Notes}
	if req.Status != "" {
		st := model.QueryStatus(req.Status)
		upd.Status = &st
	}

	ctx, cancel := dbCtx(c)
	defer cancel()
	q, err := h.Queries.Update(ctx, id, upd)
	if errors.Is(err, repository.ErrQueryNotFound) {
		return notFound(c, msgQueryNotFound)
	}
	if err != nil {
		return internalError(c, h.Log, "Failed to update query", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": msgQueryUpdated, "query": q})
}

// Delete handles DELETE /api/queries/:id.
func (h *QueryHandler) Delete(c echo.Context) error {
	id := strings.TrimSpace(c.Param("id"))
	ctx, cancel := dbCtx(c)
	defer cancel()

	q, err := h.Queries.Delete(ctx, id)
	if errors.Is(err, repository.ErrQueryNotFound) {
		return notFound(c, msgQueryNotFound)
	}
	if err != nil {
		return internalError(c, h.Log, "Failed to delete query", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": msgQueryDeleted, "query": q})
}
