package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/ikrrevents/eventsite/internal/model"
	"github.com/ikrrevents/eventsite/internal/repository"
)

const (
	msgGalleryFields  = "Missing required fields: imageUrl, eventId"
	msgMissingEventID = "Missing eventId"
	msgMissingImageID = "Missing imageId"
	msgImageNotFound  = "Image not found"
	msgImageUploaded  = "Image uploaded successfully"
	msgImageDeleted   = "Image deleted successfully"
	galleryPathPrefix = "/api/gallery/"
)

// GalleryHandler serves event galleries and the admin image manager.
type GalleryHandler struct {
	Images *repository.GalleryRepo
	Cache  CacheInvalidator
	Log    *slog.Logger
}

// NewGalleryHandler constructs a GalleryHandler and panics if the
// repository is nil.  cache may be nil.
func NewGalleryHandler(images *repository.GalleryRepo, cache CacheInvalidator, log *slog.Logger) *GalleryHandler {
	if images == nil {
		panic("nil repository passed to NewGalleryHandler")
	}
	if log == nil {
		log = slog.Default()
	}
	return &GalleryHandler{Images: images, Cache: cache, Log: log}
}

// List handles GET /api/gallery/:eventId.
func (h *GalleryHandler) List(c echo.Context) error {
	eventID := strings.TrimSpace(c.Param("eventId"))
	if eventID == "" {
		return badRequest(c, msgMissingEventID)
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	images, err := h.Images.ListByEvent(ctx, eventID)
	if err != nil {
		return internalError(c, h.Log, "Failed to fetch images", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"images": images})
}

type uploadReq struct {
	EventID  string `json:"eventId" validate:"required"`
	ImageURL string `json:"imageUrl" validate:"required"`
	Caption  string `json:"caption"`
}

// Upload handles POST /api/gallery/upload.  The image goes to the end of
// its event's gallery.
func (h *GalleryHandler) Upload(c echo.Context) error {
	var req uploadReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, msgInvalidBody)
	}
	req.EventID = strings.TrimSpace(req.EventID)
	req.ImageURL = strings.TrimSpace(req.ImageURL)
	if err := c.Validate(&req); err != nil {
		return badRequest(c, msgGalleryFields)
	}

	img := &model.GalleryImage{
		EventID:  req.EventID,
		ImageURL: req.ImageURL,
		Caption:  optionalString(strings.TrimSpace(req.Caption)),
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	if err := h.Images.Add(ctx, img); err != nil {
		return internalError(c, h.Log, "Failed to upload image", err)
	}
	invalidate(ctx, h.Cache, galleryPathPrefix+img.EventID)
	return c.JSON(http.StatusCreated, echo.Map{"message": msgImageUploaded, "image": img})
}

type deleteImageReq struct {
	ImageID string `json:"imageId" query:"imageId"`
}

// Delete handles DELETE /api/gallery/delete.  The image id comes from the
// JSON body or the imageId query parameter.  Remaining images keep their
// order values.
func (h *GalleryHandler) Delete(c echo.Context) error {
	var req deleteImageReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, msgInvalidBody)
	}
	id := strings.TrimSpace(req.ImageID)
	if id == "" {
		id = strings.TrimSpace(c.QueryParam("imageId"))
	}
	if id == "" {
		return badRequest(c, msgMissingImageID)
	}

	ctx, cancel := dbCtx(c)
	defer cancel()
	img, err := h.Images.Delete(ctx, id)
	if errors.Is(err, repository.ErrImageNotFound) {
		return notFound(c, msgImageNotFound)
	}
	if err != nil {
		return internalError(c, h.Log, "Failed to delete image", err)
	}
	invalidate(ctx, h.Cache, galleryPathPrefix+img.EventID)
	return c.JSON(http.StatusOK, echo.Map{"message": msgImageDeleted, "deletedImage": img})
}
