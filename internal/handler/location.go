package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/agds-alt/ins-wc-ddd-sub002/internal/model"
	"github.com/agds-alt/ins-wc-ddd-sub002/internal/repository"
)

// LocationHandler serves the public QR scan lookup and the admin location
// management endpoints.
type LocationHandler struct {
	Locations *repository.LocationRepo
}

func NewLocationHandler(l *repository.LocationRepo) *LocationHandler {
	return &LocationHandler{Locations: l}
}

type locationResp struct {
	ID       uint64  `json:"id"`
	Name     string  `json:"name"`
	Building *string `json:"building,omitempty"`
	Floor    *string `json:"floor,omitempty"`
	IsActive bool    `json:"is_active"`
}

// adminLocationResp additionally exposes the QR token and the scan URL it
// encodes; only admins see tokens, since knowing one lets anyone print a
// working QR code.
type adminLocationResp struct {
	locationResp
	QRToken string `json:"qr_token"`
	ScanURL string `json:"scan_url"`
}

type locationReq struct {
	Name     string  `json:"name"`
	Building *string `json:"building,omitempty"`
	Floor    *string `json:"floor,omitempty"`
	IsActive *bool   `json:"is_active,omitempty"`
}

func toLocationResp(l model.Location) locationResp {
	return locationResp{ID: l.ID, Name: l.Name, Building: l.Building, Floor: l.Floor, IsActive: l.IsActive}
}

func toAdminLocationResp(l model.Location) adminLocationResp {
	return adminLocationResp{
		locationResp: toLocationResp(l),
		QRToken:      l.QRToken,
		ScanURL:      "/scan/" + l.QRToken,
	}
}

// Scan resolves a scanned QR token to its location so the client can
// render the inspection form. Public; sits behind the response cache.
// Unknown and inactive tokens are indistinguishable to the caller.
func (h *LocationHandler) Scan(c echo.Context) error {
	token := strings.TrimSpace(c.Param("qrToken"))
	if token == "" {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "unknown location"})
	}

	ctx, cancel := repository.WithTimeout(c.Request().Context())
	defer cancel()

	l, err := h.Locations.GetByQRToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "unknown location"})
		}
		log.Printf("location: scan lookup failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "service error"})
	}
	return c.JSON(http.StatusOK, toLocationResp(l))
}

// List returns locations for the admin console, optionally filtered by
// name substring.
func (h *LocationHandler) List(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))

	ctx, cancel := repository.WithTimeout(c.Request().Context())
	defer cancel()

	locs, err := h.Locations.List(ctx, c.QueryParam("name"), limit, offset)
	if err != nil {
		log.Printf("location: list failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "service error"})
	}
	out := make([]adminLocationResp, 0, len(locs))
	for _, l := range locs {
		out = append(out, toAdminLocationResp(l))
	}
	return c.JSON(http.StatusOK, echo.Map{"locations": out})
}

// Create adds a location and returns it with its generated QR token.
func (h *LocationHandler) Create(c echo.Context) error {
	var req locationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name required"})
	}

	ctx, cancel := repository.WithTimeout(c.Request().Context())
	defer cancel()

	l, err := h.Locations.Create(ctx, req.Name, req.Building, req.Floor)
	if err != nil {
		log.Printf("location: create failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "service error"})
	}
	return c.JSON(http.StatusCreated, toAdminLocationResp(l))
}

// Update replaces a location's editable fields.
func (h *LocationHandler) Update(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req locationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name required"})
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	ctx, cancel := repository.WithTimeout(c.Request().Context())
	defer cancel()

	if err := h.Locations.Update(ctx, id, req.Name, req.Building, req.Floor, active); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
		}
		log.Printf("location: update failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "service error"})
	}
	l, err := h.Locations.GetByID(ctx, id)
	if err != nil {
		log.Printf("location: reload failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "service error"})
	}
	return c.JSON(http.StatusOK, toAdminLocationResp(l))
}

// RegenerateQR replaces a location's QR token, invalidating previously
// printed codes.
func (h *LocationHandler) RegenerateQR(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := repository.WithTimeout(c.Request().Context())
	defer cancel()

	token, err := h.Locations.RegenerateQRToken(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
		}
		log.Printf("location: regenerate qr failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "service error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"qr_token": token, "scan_url": "/scan/" + token})
}
