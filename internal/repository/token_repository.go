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

// TokenRepo persists/validates refresh tokens (single 'token_hash' column).
type TokenRepo struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewTokenRepo(db *sqlx.DB) *TokenRepo { return &TokenRepo{db: db, now: utcNow} }

// StoreRefresh inserts a refresh token hash row.
func (r *TokenRepo) StoreRefresh(ctx context.Context, userID, tokenHash string, exp time.Time) error {
	_, err := r.db.ExecContext(ctx,
		r.db.Rebind("INSERT INTO refresh_tokens (id, user_id, token_hash, expires_at, created_at) VALUES (?, ?, ?, ?, ?)"),
		uuid.NewString(), userID, tokenHash, exp.UTC().Truncate(time.Microsecond), r.now())
	return err
}

// RedeemRefresh revokes a live refresh token and returns its owner.  The
// liveness check and the revoke are one conditional UPDATE, so a token is
// redeemed at most once.  Unknown, expired or already revoked tokens give
// ErrTokenInvalid.
func (r *TokenRepo) RedeemRefresh(ctx context.Context, tokenHash string) (string, error) {
	now := r.now()
	res, err := r.db.ExecContext(ctx,
		r.db.Rebind("UPDATE refresh_tokens SET revoked_at = ? WHERE token_hash = ? AND revoked_at IS NULL AND expires_at > ?"),
		now, tokenHash, now)
	if err != nil {
		return "", err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return "", err
	}
	if n != 1 {
		return "", ErrTokenInvalid
	}

	var t model.RefreshToken
	err = r.db.GetContext(ctx, &t,
		r.db.Rebind("SELECT id, user_id, token_hash, expires_at, revoked_at, created_at FROM refresh_tokens WHERE token_hash = ? LIMIT 1"),
		tokenHash)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrTokenInvalid
	}
	if err != nil {
		return "", err
	}
	return t.UserID, nil
}

// RevokeByHash marks a token as revoked.
func (r *TokenRepo) RevokeByHash(ctx context.Context, tokenHash string) error {
	_, err := r.db.ExecContext(ctx,
		r.db.Rebind("UPDATE refresh_tokens SET revoked_at = ? WHERE token_hash = ? AND revoked_at IS NULL"),
		r.now(), tokenHash)
	return err
}

// RevokeAllForUser revokes all user's active tokens.
func (r *TokenRepo) RevokeAllForUser(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx,
		r.db.Rebind("UPDATE refresh_tokens SET revoked_at = ? WHERE user_id = ? AND revoked_at IS NULL"),
		r.now(), userID)
	return err
}
