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

// GalleryRepo manages the 'gallery_images' table.
type GalleryRepo struct {
	db  *sqlx.DB
	now func() time.Time
}

// NewGalleryRepo constructs a GalleryRepo with the provided DB handle.
func NewGalleryRepo(db *sqlx.DB) *GalleryRepo {
	return &GalleryRepo{db: db, now: utcNow}
}

const galleryColumns = "id, event_id, image_url, caption, sort_order, created_at"

// ListByEvent returns the images of one event in ascending display order.
// An unknown event id yields an empty slice.
func (r *GalleryRepo) ListByEvent(ctx context.Context, eventID string) ([]model.GalleryImage, error) {
	images := []model.GalleryImage{}
	err := r.db.SelectContext(ctx, &images,
		r.db.Rebind("SELECT "+galleryColumns+" FROM gallery_images WHERE event_id = ? ORDER BY sort_order ASC, created_at ASC"),
		eventID)
	if err != nil {
		return nil, err
	}
	return images, nil
}

// Add appends an image to the end of its event's gallery.  The order is one
// past the current maximum (0 for the first image) and is computed in the
// same transaction as the insert.
func (r *GalleryRepo) Add(ctx context.Context, img *model.GalleryImage) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var next int
	if err := tx.GetContext(ctx, &next,
		tx.Rebind("SELECT COALESCE(MAX(sort_order), -1) + 1 FROM gallery_images WHERE event_id = ?"),
		img.EventID); err != nil {
		return err
	}

	img.ID = uuid.NewString()
	img.Order = next
	img.CreatedAt = r.now()
	if _, err := tx.ExecContext(ctx,
		tx.Rebind("INSERT INTO gallery_images (id, event_id, image_url, caption, sort_order, created_at) VALUES (?, ?, ?, ?, ?, ?)"),
		img.ID, img.EventID, img.ImageURL, img.Caption, img.Order, img.CreatedAt); err != nil {
		return err
	}
	return tx.Commit()
}

// GetByID fetches one image or ErrImageNotFound.
func (r *GalleryRepo) GetByID(ctx context.Context, id string) (*model.GalleryImage, error) {
	return getImage(ctx, r.db, id)
}

func getImage(ctx context.Context, db queryer, id string) (*model.GalleryImage, error) {
	var img model.GalleryImage
	err := sqlx.GetContext(ctx, db, &img, db.Rebind("SELECT "+galleryColumns+" FROM gallery_images WHERE id = ?"), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrImageNotFound
	}
	if err != nil {
		return nil, err
	}
	return &img, nil
}

// Delete removes one image and returns it.  Remaining images keep their
// order values.
func (r *GalleryRepo) Delete(ctx context.Context, id string) (*model.GalleryImage, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	img, err := getImage(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx, tx.Rebind("DELETE FROM gallery_images WHERE id = ?"), id); err != nil {
		return nil, err
	}
	return img, tx.Commit()
}
