package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ikrrevents/eventsite/internal/model"
)

// AboutRepo manages the single about-section image.  The row always uses
// model.AboutImageID as its key, so the table can never hold two rows.
type AboutRepo struct {
	db  *sqlx.DB
	now func() time.Time
}

// NewAboutRepo constructs an AboutRepo with the provided DB handle.
func NewAboutRepo(db *sqlx.DB) *AboutRepo {
	return &AboutRepo{db: db, now: utcNow}
}

// Get returns the current image or ErrAboutImageNotFound.
func (r *AboutRepo) Get(ctx context.Context) (*model.AboutImage, error) {
	var img model.AboutImage
	err := r.db.GetContext(ctx, &img,
		r.db.Rebind("SELECT id, image_url, updated_at FROM about_images WHERE id = ?"), model.AboutImageID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAboutImageNotFound
	}
	if err != nil {
		return nil, err
	}
	return &img, nil
}

// Set replaces the image.  The delete and insert run in one transaction so
// readers see either the old row or the new one.
func (r *AboutRepo) Set(ctx context.Context, imageURL string) (*model.AboutImage, error) {
	img := model.AboutImage{ID: model.AboutImageID, ImageURL: imageURL, UpdatedAt: r.now()}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM about_images"); err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx,
		tx.Rebind("INSERT INTO about_images (id, image_url, updated_at) VALUES (?, ?, ?)"),
		img.ID, img.ImageURL, img.UpdatedAt); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &img, nil
}

// Delete removes the image if present.  Deleting an absent image succeeds.
func (r *AboutRepo) Delete(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM about_images")
	return err
}
