package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ikrrevents/eventsite/internal/model"
)

// QueryRepo encapsulates all database queries related to contact queries
// (the 'simple_queries' table).
type QueryRepo struct {
	db  *sqlx.DB
	now func() time.Time
}

// NewQueryRepo constructs a QueryRepo with the provided DB handle.
func NewQueryRepo(db *sqlx.DB) *QueryRepo {
	return &QueryRepo{db: db, now: utcNow}
}

type queryRow struct {
	model.Query
	UserEmail sql.NullString `db:"user_email"`
	UserName  sql.NullString `db:"user_name"`
}

func (row queryRow) toModel() model.Query {
	q := row.Query
	if row.UserEmail.Valid && q.UserID != nil {
		q.User = &model.UserSummary{ID: *q.UserID, Email: row.UserEmail.String, Name: row.UserName.String}
	}
	return q
}

const queryColumns = "s.id, s.user_id, s.name, s.email, s.phone, s.message, s.status, s.notes, s.created_at, s.updated_at"

const queryWithUser = "SELECT " + queryColumns + `, u.email AS user_email, u.name AS user_name
	FROM simple_queries s LEFT JOIN users u ON u.id = s.user_id`

// Create inserts a new contact query with status NEW unless one is set.
func (r *QueryRepo) Create(ctx context.Context, q *model.Query) error {
	now := r.now()
	q.ID = uuid.NewString()
	q.CreatedAt, q.UpdatedAt = now, now
	if q.Status == "" {
		q.Status = model.QueryNew
	}
	const stmt = `INSERT INTO simple_queries (id, user_id, name, email, phone, message, status, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, r.db.Rebind(stmt),
		q.ID, q.UserID, q.Name, q.Email, q.Phone, q.Message, q.Status, q.Notes, q.CreatedAt, q.UpdatedAt)
	return err
}

// ListByUser returns the queries a signed-in user submitted, newest first.
func (r *QueryRepo) ListByUser(ctx context.Context, userID string) ([]model.Query, error) {
	return r.list(ctx, "SELECT "+queryColumns+" FROM simple_queries s WHERE s.user_id = ? ORDER BY s.created_at DESC", userID)
}

// ListAll returns every query with its owner projection, newest first.
func (r *QueryRepo) ListAll(ctx context.Context) ([]model.Query, error) {
	return r.list(ctx, queryWithUser+" ORDER BY s.created_at DESC")
}

func (r *QueryRepo) list(ctx context.Context, q string, args ...any) ([]model.Query, error) {
	var rows []queryRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(q), args...); err != nil {
		return nil, err
	}
	out := make([]model.Query, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toModel())
	}
	return out, nil
}

// GetByID fetches a query with its owner projection.  It returns
// ErrQueryNotFound if no row is found.
func (r *QueryRepo) GetByID(ctx context.Context, id string) (*model.Query, error) {
	return getQuery(ctx, r.db, id)
}

func getQuery(ctx context.Context, db queryer, id string) (*model.Query, error) {
	var row queryRow
	err := sqlx.GetContext(ctx, db, &row, db.Rebind(queryWithUser+" WHERE s.id = ?"), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrQueryNotFound
	}
	if err != nil {
		return nil, err
	}
	q := row.toModel()
	return &q, nil
}

// Update applies the admin's partial update.  Status and notes are set
// independently; updated_at advances on every call.
func (r *QueryRepo) Update(ctx context.Context, id string, upd model.QueryUpdate) (*model.Query, error) {
	sets := []string{"updated_at = ?"}
	args := []any{r.now()}
	if upd.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, *upd.Status)
	}
	if upd.Notes != nil {
		sets = append(sets, "notes = ?")
		args = append(args, *upd.Notes)
	}
	args = append(args, id)

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if _, err := getQuery(ctx, tx, id); err != nil {
		return nil, err
	}
	stmt := "UPDATE simple_queries SET " + strings.Join(sets, ", ") + " WHERE id = ?"
	if _, err := tx.ExecContext(ctx, tx.Rebind(stmt), args...); err != nil {
		return nil, err
	}
	q, err := getQuery(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	return q, tx.Commit()
}

// Delete removes a query and returns the row as it was.
func (r *QueryRepo) Delete(ctx context.Context, id string) (*model.Query, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	q, err := getQuery(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx, tx.Rebind("DELETE FROM simple_queries WHERE id = ?"), id); err != nil {
		return nil, err
	}
	return q, tx.Commit()
}
