package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ikrrevents/eventsite/internal/model"
)

// BookingRepo encapsulates all database queries related to bookings (the
// 'event_queries' table).
type BookingRepo struct {
	db  *sqlx.DB
	now func() time.Time
}

// NewBookingRepo constructs a BookingRepo with the provided DB handle.
func NewBookingRepo(db *sqlx.DB) *BookingRepo {
	return &BookingRepo{db: db, now: utcNow}
}

// bookingRow is the flat shape of an event_queries row, optionally joined
// with its owner's email and name.
type bookingRow struct {
	ID              string              `db:"id"`
	UserID          string              `db:"user_id"`
	EventTypes      model.StringList    `db:"event_types"`
	OtherEvent      *string             `db:"other_event"`
	Schedule        model.Schedule      `db:"schedule"`
	Venue           string              `db:"venue"`
	AttendeeCount   int                 `db:"attendee_count"`
	SetupDetails    *string             `db:"setup_details"`
	ThemeDetails    *string             `db:"theme_details"`
	AVNeeds         *string             `db:"av_needs"`
	FoodNeeds       *string             `db:"food_needs"`
	BrandingNeeds   *string             `db:"branding_needs"`
	BrandingFileURL *string             `db:"branding_file_url"`
	Budget          string              `db:"budget"`
	ContactName     string              `db:"contact_name"`
	ContactEmail    string              `db:"contact_email"`
	ContactPhone    string              `db:"contact_phone"`
	Status          model.BookingStatus `db:"status"`
	CreatedAt       time.Time           `db:"created_at"`
	UpdatedAt       time.Time           `db:"updated_at"`
	UserEmail       sql.NullString      `db:"user_email"`
	UserName        sql.NullString      `db:"user_name"`
}

func (row bookingRow) toModel() model.Booking {
	b := model.Booking{
		ID:              row.ID,
		UserID:          row.UserID,
		EventTypes:      row.EventTypes,
		OtherEvent:      row.OtherEvent,
		Schedule:        row.Schedule,
		Venue:           row.Venue,
		AttendeeCount:   row.AttendeeCount,
		SetupDetails:    row.SetupDetails,
		ThemeDetails:    row.ThemeDetails,
		AVNeeds:         row.AVNeeds,
		FoodNeeds:       row.FoodNeeds,
		BrandingNeeds:   row.BrandingNeeds,
		BrandingFileURL: row.BrandingFileURL,
		Budget:          row.Budget,
		Contact: model.PointOfContact{
			Name:  row.ContactName,
			Email: row.ContactEmail,
			Phone: row.ContactPhone,
		},
		Status:    row.Status,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
	if row.UserEmail.Valid {
		b.User = &model.UserSummary{ID: row.UserID, Email: row.UserEmail.String, Name: row.UserName.String}
	}
	return b
}

const bookingColumns = `q.id, q.user_id, q.event_types, q.other_event, q.schedule, q.venue,
	q.attendee_count, q.setup_details, q.theme_details, q.av_needs, q.food_needs,
	q.branding_needs, q.branding_file_url, q.budget, q.contact_name, q.contact_email,
	q.contact_phone, q.status, q.created_at, q.updated_at`

const bookingWithUser = "SELECT " + bookingColumns + `, u.email AS user_email, u.name AS user_name
	FROM event_queries q LEFT JOIN users u ON u.id = q.user_id`

// Create inserts a new booking.  ID, CreatedAt and UpdatedAt are assigned
// here; Status defaults to PENDING when empty.
func (r *BookingRepo) Create(ctx context.Context, b *model.Booking) error {
	now := r.now()
	b.ID = uuid.NewString()
	b.CreatedAt, b.UpdatedAt = now, now
	if b.Status == "" {
		b.Status = model.BookingPending
	}
	if b.EventTypes == nil {
		b.EventTypes = model.StringList{}
	}
	if b.Schedule == nil {
		b.Schedule = model.Schedule{}
	}
	const q = `INSERT INTO event_queries (id, user_id, event_types, other_event, schedule, venue,
		attendee_count, setup_details, theme_details, av_needs, food_needs, branding_needs,
		branding_file_url, budget, contact_name, contact_email, contact_phone, status,
		created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, r.db.Rebind(q),
		b.ID, b.UserID, b.EventTypes, b.OtherEvent, b.Schedule, b.Venue,
		b.AttendeeCount, b.SetupDetails, b.ThemeDetails, b.AVNeeds, b.FoodNeeds, b.BrandingNeeds,
		b.BrandingFileURL, b.Budget, b.Contact.Name, b.Contact.Email, b.Contact.Phone, b.Status,
		b.CreatedAt, b.UpdatedAt)
	return err
}

// ListByUser returns the user's own bookings, newest first.
func (r *BookingRepo) ListByUser(ctx context.Context, userID string) ([]model.Booking, error) {
	q := "SELECT " + bookingColumns + " FROM event_queries q WHERE q.user_id = ? ORDER BY q.created_at DESC"
	return r.list(ctx, q, userID)
}

// ListAll returns every booking with its owner projection, newest first.
func (r *BookingRepo) ListAll(ctx context.Context) ([]model.Booking, error) {
	return r.list(ctx, bookingWithUser+" ORDER BY q.created_at DESC")
}

func (r *BookingRepo) list(ctx context.Context, q string, args ...any) ([]model.Booking, error) {
	var rows []bookingRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(q), args...); err != nil {
		return nil, err
	}
	out := make([]model.Booking, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toModel())
	}
	return out, nil
}

// GetByID fetches a booking with its owner projection.  It returns
// ErrBookingNotFound if no row is found.
func (r *BookingRepo) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	return getBooking(ctx, r.db, id)
}

func getBooking(ctx context.Context, q queryer, id string) (*model.Booking, error) {
	var row bookingRow
	err := sqlx.GetContext(ctx, q, &row, q.Rebind(bookingWithUser+" WHERE q.id = ?"), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, err
	}
	b := row.toModel()
	return &b, nil
}

// UpdateStatus sets the status column and bumps updated_at; nothing else
// changes.  The updated booking is returned.
func (r *BookingRepo) UpdateStatus(ctx context.Context, id string, status model.BookingStatus) (*model.Booking, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	// Existence is checked with a read because MySQL reports zero affected
	// rows for an update that changes nothing.
	if _, err := getBooking(ctx, tx, id); err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx,
		tx.Rebind("UPDATE event_queries SET status = ?, updated_at = ? WHERE id = ?"),
		status, r.now(), id); err != nil {
		return nil, err
	}
	b, err := getBooking(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	return b, tx.Commit()
}

// Delete removes a booking and returns the row as it was.  A second delete
// of the same id yields ErrBookingNotFound.
func (r *BookingRepo) Delete(ctx context.Context, id string) (*model.Booking, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	b, err := getBooking(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx, tx.Rebind("DELETE FROM event_queries WHERE id = ?"), id); err != nil {
		return nil, err
	}
	return b, tx.Commit()
}
