package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/agds-alt/ins-wc-ddd-sub002/internal/middleware"
	"github.com/agds-alt/ins-wc-ddd-sub002/internal/model"
	"github.com/agds-alt/ins-wc-ddd-sub002/internal/repository"
)

// PhotoHandler registers photo metadata against inspections and serves
// the admin soft-delete. File bytes never pass through this service; the
// client uploads to object storage and registers the resulting URL here.
type PhotoHandler struct {
	Photos      *repository.PhotoRepo
	Inspections *repository.InspectionRepo
}

func NewPhotoHandler(p *repository.PhotoRepo, i *repository.InspectionRepo) *PhotoHandler {
	return &PhotoHandler{Photos: p, Inspections: i}
}

type photoReq struct {
	URL      string  `json:"url"`
	Caption  *string `json:"caption,omitempty"`
	Width    *int    `json:"width,omitempty"`
	Height   *int    `json:"height,omitempty"`
	MimeType *string `json:"mime_type,omitempty"`
}

type photoResp struct {
	ID        uint64  `json:"id"`
	URL       string  `json:"url"`
	Caption   *string `json:"caption,omitempty"`
	MimeType  *string `json:"mime_type,omitempty"`
	IsImage   bool    `json:"is_image"`
	CreatedAt string  `json:"created_at"`
}

func toPhotoResps(photos []model.Photo) []photoResp {
	out := make([]photoResp, 0, len(photos))
	for _, p := range photos {
		out = append(out, photoResp{
			ID:        p.ID,
			URL:       p.URL,
			Caption:   p.Caption,
			MimeType:  p.MimeType,
			IsImage:   p.IsImage(),
			CreatedAt: p.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return out
}

// Register attaches a photo record to an inspection.
func (h *PhotoHandler) Register(c echo.Context) error {
	inspectionID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req photoReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.URL = strings.TrimSpace(req.URL)
	if req.URL == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "url required"})
	}

	ctx, cancel := repository.WithTimeout(c.Request().Context())
	defer cancel()

	// Reject registrations against nonexistent inspections up front.
	if _, err := h.Inspections.GetByID(ctx, inspectionID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
		}
		log.Printf("photo: inspection lookup failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "service error"})
	}

	p := model.Photo{
		URL:          req.URL,
		Caption:      req.Caption,
		Width:        req.Width,
		Height:       req.Height,
		MimeType:     req.MimeType,
		InspectionID: &inspectionID,
	}
	id, err := h.Photos.Create(ctx, p)
	if err != nil {
		log.Printf("photo: create failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "service error"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": id})
}

// Delete soft-deletes a photo, recording the acting admin. The row is
// kept for audit and stays visible in admin listings that ask for deleted
// records.
func (h *PhotoHandler) Delete(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := repository.WithTimeout(c.Request().Context())
	defer cancel()

	if err := h.Photos.SoftDelete(ctx, id, u.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
		}
		log.Printf("photo: delete failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "service error"})
	}
	return c.NoContent(http.StatusNoContent)
}
