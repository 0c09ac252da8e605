package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/ikrrevents/eventsite/internal/repository"
)

const aboutPath = "/api/about"

// AboutHandler serves the homepage about-section photo.
type AboutHandler struct {
	About *repository.AboutRepo
	Cache CacheInvalidator
	Log   *slog.Logger
}

// NewAboutHandler constructs an AboutHandler and panics if the repository
// is nil.
func NewAboutHandler(about *repository.AboutRepo, cache CacheInvalidator, log *slog.Logger) *AboutHandler {
	if about == nil {
		panic("nil repository passed to NewAboutHandler")
	}
	if log == nil {
		log = slog.Default()
	}
	return &AboutHandler{About: about, Cache: cache, Log: log}
}

// Get handles GET /api/about.  A missing image is not an error.
func (h *AboutHandler) Get(c echo.Context) error {
	ctx, cancel := dbCtx(c)
	defer cancel()
	img, err := h.About.Get(ctx)
	if errors.Is(err, repository.ErrAboutImageNotFound) {
		return c.JSON(http.StatusOK, echo.Map{"imageUrl": nil, "message": "No image found"})
	}
	if err != nil {
		return internalError(c, h.Log, "Failed to fetch about image", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"imageUrl": img.ImageURL})
}

type aboutReq struct {
	ImageURL string `json:"imageUrl" validate:"required"`
}

// Set handles POST /api/about and replaces the current image.
func (h *AboutHandler) Set(c echo.Context) error {
	var req aboutReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, msgInvalidBody)
	}
	req.ImageURL = strings.TrimSpace(req.ImageURL)
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "Image URL is required")
	}
	ctx, cancel := dbCtx(c)
	defer cancel()
	img, err := h.About.Set(ctx, req.ImageURL)
	if err != nil {
		return internalError(c, h.Log, "Failed to update about image", err)
	}
	invalidate(ctx, h.Cache, aboutPath)
	return c.JSON(http.StatusOK, echo.Map{"success": true, "imageUrl": img.ImageURL})
}

// Delete handles DELETE /api/about.  Deleting when no image is set still
// succeeds.
func (h *AboutHandler) Delete(c echo.Context) error {
	ctx, cancel := dbCtx(c)
	defer cancel()
	if err := h.About.Delete(ctx); err != nil {
		return internalError(c, h.Log, "Failed to delete about image", err)
	}
	invalidate(ctx, h.Cache, aboutPath)
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": msgImageDeleted})
}
