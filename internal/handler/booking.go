package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/ikrrevents/eventsite/internal/middleware"
	"github.com/ikrrevents/eventsite/internal/model"
	"github.com/ikrrevents/eventsite/internal/notify"
	"github.com/ikrrevents/eventsite/internal/queue"
	"github.com/ikrrevents/eventsite/internal/repository"
)

const (
	msgInvalidBody      = "Invalid request body"
	msgInvalidStatus    = "Invalid status value"
	msgBookingNotFound  = "Booking not found"
	msgNoEventType      = "Please select at least one event type"
	msgMissingFields    = "Please fill in all required fields"
	msgNoEventDate      = "Please select at least one event date"
	msgBookingSubmitted = "Booking submitted successfully! We will contact you soon."
	msgBookingUpdated   = "Booking updated successfully"
	msgBookingDeleted   = "Booking deleted successfully"
	listAllID           = "all"
)

// BookingHandler serves the booking form and the admin booking dashboard.
type BookingHandler struct {
	Bookings *repository.BookingRepo
	Users    *repository.UserRepo
	Effects  *SideEffects
	Log      *slog.Logger
}

// NewBookingHandler constructs a BookingHandler and panics if a repository
// is nil.  effects may be nil, which disables notifications and events.
func NewBookingHandler(bookings *repository.BookingRepo, users *repository.UserRepo, effects *SideEffects, log *slog.Logger) *BookingHandler {
	if bookings == nil || users == nil {
		panic("nil repository passed to NewBookingHandler")
	}
	if log == nil {
		log = slog.Default()
	}
	return &BookingHandler{Bookings: bookings, Users: users, Effects: effects, Log: log}
}

// attendeeCount accepts a JSON number or a numeric string.  Like a lenient
// integer parse, it keeps the leading digits ("150 guests" is 150) and
// yields 0 for anything unparseable so the required-field check rejects it.
type attendeeCount int

func (n *attendeeCount) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if strings.HasPrefix(s, `"`) {
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
	}
	*n = attendeeCount(leadingInt(s))
	return nil
}

func leadingInt(s string) int {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[0] == '-' || s[0] == '+') {
		end++
	}
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	v, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return v
}

// bookingReq is the booking form.  The legacy fields EventDates,
// EventTimes and POC are folded into Schedule and Contact by normalize.
type bookingReq struct {
	EventTypes      []string             `json:"eventTypes"`
	OtherEvent      string               `json:"otherEvent"`
	Schedule        []model.EventSlot    `json:"schedule"`
	EventDates      []string             `json:"eventDates"`
	EventTimes      []string             `json:"eventTimes"`
	Venue           string               `json:"eventVenue"`
	AttendeeCount   attendeeCount        `json:"attendeeCount"`
	SetupDetails    string               `json:"setupDetails"`
	ThemeDetails    string               `json:"themeDetails"`
	AVNeeds         string               `json:"avNeeds"`
	FoodNeeds       string               `json:"foodNeeds"`
	BrandingNeeds   string               `json:"brandingNeeds"`
	BrandingFileURL string               `json:"brandingFileUrl"`
	Budget          string               `json:"budget"`
	Contact         model.PointOfContact `json:"contact"`
	POC             string               `json:"poc"`
}

func (r *bookingReq) normalize() {
	types := make([]string, 0, len(r.EventTypes))
	for _, t := range r.EventTypes {
		if t = strings.TrimSpace(t); t != "" {
			types = append(types, t)
		}
	}
	r.EventTypes = types

	if len(r.Schedule) == 0 {
		for i, d := range r.EventDates {
			slot := model.EventSlot{Date: d}
			if i < len(r.EventTimes) {
				slot.Time = r.EventTimes[i]
			}
			r.Schedule = append(r.Schedule, slot)
		}
	}
	slots := make([]model.EventSlot, 0, len(r.Schedule))
	for _, s := range r.Schedule {
		s.Date, s.Time = strings.TrimSpace(s.Date), strings.TrimSpace(s.Time)
		if s.Date != "" {
			slots = append(slots, s)
		}
	}
	r.Schedule = slots

	if r.POC != "" {
		parts := strings.SplitN(r.POC, "|", 3)
		fill := []*string{&r.Contact.Name, &r.Contact.Email, &r.Contact.Phone}
		for i, p := range parts {
			if strings.TrimSpace(*fill[i]) == "" {
				*fill[i] = p
			}
		}
	}
	r.Contact.Name = strings.TrimSpace(r.Contact.Name)
	r.Contact.Email = strings.TrimSpace(r.Contact.Email)
	r.Contact.Phone = strings.TrimSpace(r.Contact.Phone)
	r.Venue = strings.TrimSpace(r.Venue)
	r.Budget = strings.TrimSpace(r.Budget)
}

// check returns the first validation failure, or "" when the form is
// complete.
func (r *bookingReq) check() string {
	if len(r.EventTypes) == 0 {
		return msgNoEventType
	}
	if r.Venue == "" || r.AttendeeCount <= 0 || r.Budget == "" ||
		r.Contact.Name == "" || r.Contact.Email == "" || r.Contact.Phone == "" {
		return msgMissingFields
	}
	if len(r.Schedule) == 0 {
		return msgNoEventDate
	}
	return ""
}

func (r *bookingReq) toModel(userID string) *model.Booking {
	return &model.Booking{
		UserID:          userID,
		EventTypes:      model.StringList(r.EventTypes),
		OtherEvent:      optionalString(strings.TrimSpace(r.OtherEvent)),
		Schedule:        model.Schedule(r.Schedule),
		Venue:           r.Venue,
		AttendeeCount:   int(r.AttendeeCount),
		SetupDetails:    optionalString(r.SetupDetails),
		ThemeDetails:    optionalString(r.ThemeDetails),
		AVNeeds:         optionalString(r.AVNeeds),
		FoodNeeds:       optionalString(r.FoodNeeds),
		BrandingNeeds:   optionalString(r.BrandingNeeds),
		BrandingFileURL: optionalString(r.BrandingFileURL),
		Budget:          r.Budget,
		Contact:         r.Contact,
		Status:          model.BookingPending,
	}
}

// Create handles POST /api/bookings.  The booking is stored first; the
// emails and the submission event follow and cannot fail the request.
func (h *BookingHandler) Create(c echo.Context) error {
	var req bookingReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, msgInvalidBody)
	}
	req.normalize()
	if msg := req.check(); msg != "" {
		return badRequest(c, msg)
	}

	uid := middleware.UserID(c)
	b := req.toModel(uid)

	ctx, cancel := dbCtx(c)
	defer cancel()
	if err := h.Bookings.Create(ctx, b); err != nil {
		return internalError(c, h.Log, "Failed to submit booking request", err)
	}

	email, name := middleware.Email(c), middleware.Name(c)
	if u, err := h.Users.GetByID(ctx, uid); err == nil {
		email, name = u.Email, u.Name
	} else {
		h.Log.Warn("booking_user_lookup_failed", "user_id", uid, "error", err)
	}

	h.Effects.afterSubmit(c.Request().Context(), notify.KindBooking, email, name,
		notify.BookingDetails{
			ID:            b.ID,
			EventTypes:    b.EventTypes,
			Dates:         b.Schedule.Dates(),
			Venue:         b.Venue,
			AttendeeCount: b.AttendeeCount,
			Budget:        b.Budget,
		},
		queue.SubmissionEvent{
			Kind:        queue.KindBookingCreated,
			ReferenceID: b.ID,
			UserID:      uid,
			Email:       email,
			Name:        name,
			Status:      string(b.Status),
			SubmittedAt: b.CreatedAt,
		})

	return c.JSON(http.StatusCreated, echo.Map{"message": msgBookingSubmitted, "booking": b})
}

// ListOwn handles GET /api/bookings for the signed-in user.
func (h *BookingHandler) ListOwn(c echo.Context) error {
	ctx, cancel := dbCtx(c)
	defer cancel()
	list, err := h.Bookings.ListByUser(ctx, middleware.UserID(c))
	if err != nil {
		return internalError(c, h.Log, "Failed to fetch bookings", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"bookings": list})
}

// Get handles GET /api/bookings/:id for admins.  The id "all" lists every
// booking.
func (h *BookingHandler) Get(c echo.Context) error {
	id := strings.TrimSpace(c.Param("id"))
	ctx, cancel := dbCtx(c)
	defer cancel()

	if id == listAllID {
		list, err := h.Bookings.ListAll(ctx)
		if err != nil {
			return internalError(c, h.Log, "Failed to fetch bookings", err)
		}
		return c.JSON(http.StatusOK, echo.Map{"bookings": list})
	}

	b, err := h.Bookings.GetByID(ctx, id)
	if errors.Is(err, repository.ErrBookingNotFound) {
		return notFound(c, msgBookingNotFound)
	}
	if err != nil {
		return internalError(c, h.Log, "Failed to fetch bookings", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"booking": b})
}

type bookingStatusReq struct {
	Status string `json:"status" validate:"omitempty,oneof=PENDING CONFIRMED CANCELLED"`
}

// UpdateStatus handles PATCH /api/bookings/:id.  Only the status changes;
// a request without a status returns the booking untouched.
func (h *BookingHandler) UpdateStatus(c echo.Context) error {
	id := strings.TrimSpace(c.Param("id"))
	var req bookingStatusReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, msgInvalidBody)
	}
	req.Status = strings.TrimSpace(req.Status)
	if err := c.Validate(&req); err != nil {
		return badRequest(c, msgInvalidStatus)
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	var (
		b   *model.Booking
		err error
	)
	if req.Status == "" {
		b, err = h.Bookings.GetByID(ctx, id)
	} else {
		b, err = h.Bookings.UpdateStatus(ctx, id, model.BookingStatus(req.Status))
	}
	if errors.Is(err, repository.ErrBookingNotFound) {
		return notFound(c, msgBookingNotFound)
	}
	if err != nil {
		return internalError(c, h.Log, "Failed to update booking", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": msgBookingUpdated, "booking": b})
}

// Delete handles DELETE /api/bookings/:id.
func (h *BookingHandler) Delete(c echo.Context) error {
	id := strings.TrimSpace(c.Param("id"))
	ctx, cancel := dbCtx(c)
	defer cancel()

	b, err := h.Bookings.Delete(ctx, id)
	if errors.Is(err, repository.ErrBookingNotFound) {
		return notFound(c, msgBookingNotFound)
	}
	if err != nil {
		return internalError(c, h.Log, "Failed to delete booking", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": msgBookingDeleted, "booking": b})
}
