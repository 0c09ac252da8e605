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

// UserRepo reads and writes the 'users' table.
type UserRepo struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{db: db, now: utcNow} }

const userColumns = "id, email, name, role, created_at, updated_at"

// UpsertOAuth records a successful sign-in.  The user is created on the
// first sign-in; later sign-ins refresh the name and role so a change of
// the configured admin address takes effect on the next login.
func (r *UserRepo) UpsertOAuth(ctx context.Context, email, name string, role model.Role) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	now := r.now()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var u model.User
	err = tx.GetContext(ctx, &u, tx.Rebind("SELECT "+userColumns+" FROM users WHERE email = ? LIMIT 1"), email)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		u = model.User{ID: uuid.NewString(), Email: email, Name: name, Role: role, CreatedAt: now, UpdatedAt: now}
		if _, err := tx.ExecContext(ctx,
			tx.Rebind("INSERT INTO users (id, email, name, role, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)"),
			u.ID, u.Email, u.Name, u.Role, u.CreatedAt, u.UpdatedAt); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	default:
		u.Name, u.Role, u.UpdatedAt = name, role, now
		if _, err := tx.ExecContext(ctx,
			tx.Rebind("UPDATE users SET name = ?, role = ?, updated_at = ? WHERE id = ?"),
			u.Name, u.Role, u.UpdatedAt, u.ID); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	var u model.User
	err := r.db.GetContext(ctx, &u, r.db.Rebind("SELECT "+userColumns+" FROM users WHERE id = ? LIMIT 1"), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}
