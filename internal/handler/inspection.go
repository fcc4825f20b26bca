package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/agds-alt/ins-wc-ddd-sub002/internal/middleware"
	"github.com/agds-alt/ins-wc-ddd-sub002/internal/model"
	"github.com/agds-alt/ins-wc-ddd-sub002/internal/queue"
	"github.com/agds-alt/ins-wc-ddd-sub002/internal/repository"
)

// InspectionHandler serves inspection submission, listing, verification
// and photo registration.
type InspectionHandler struct {
	Inspections *repository.InspectionRepo
	Locations   *repository.LocationRepo
	Photos      *repository.PhotoRepo
}

func NewInspectionHandler(i *repository.InspectionRepo, l *repository.LocationRepo, p *repository.PhotoRepo) *InspectionHandler {
	return &InspectionHandler{Inspections: i, Locations: l, Photos: p}
}

type submitReq struct {
	QRToken     string  `json:"qr_token"`
	Cleanliness int     `json:"cleanliness"`
	Supplies    int     `json:"supplies"`
	Condition   int     `json:"condition"`
	Notes       *string `json:"notes,omitempty"`
}

type inspectionResp struct {
	ID          uint64  `json:"id"`
	LocationID  uint64  `json:"location_id"`
	InspectorID *uint64 `json:"inspector_id,omitempty"`
	Cleanliness int     `json:"cleanliness"`
	Supplies    int     `json:"supplies"`
	Condition   int     `json:"condition"`
	Status      string  `json:"status"`
	Notes       *string `json:"notes,omitempty"`
	IsVerified  bool    `json:"is_verified"`
	CreatedAt   string  `json:"created_at"`
}

func toInspectionResp(i model.Inspection) inspectionResp {
	return inspectionResp{
		ID:          i.ID,
		LocationID:  i.LocationID,
		InspectorID: i.InspectorID,
		Cleanliness: i.Cleanliness,
		Supplies:    i.Supplies,
		Condition:   i.Condition,
		Status:      i.Status,
		Notes:       i.Notes,
		IsVerified:  i.IsVerified,
		CreatedAt:   i.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func validScore(n int) bool { return n >= model.MinScore && n <= model.MaxScore }

// Submit accepts an inspection form. The endpoint is public so a scan can
// be submitted without an account; when a session is present the
// submission is attributed to the inspector. The location is addressed by
// QR token, never numeric id, so the public path cannot be enumerated.
func (h *InspectionHandler) Submit(c echo.Context) error {
	var req submitReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.QRToken = strings.TrimSpace(req.QRToken)
	if req.QRToken == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "qr_token required"})
	}
	if !validScore(req.Cleanliness) || !validScore(req.Supplies) || !validScore(req.Condition) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "scores must be between 1 and 5"})
	}

	ctx, cancel := repository.WithTimeout(c.Request().Context())
	defer cancel()

	loc, err := h.Locations.GetByQRToken(ctx, req.QRToken)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "unknown location"})
		}
		log.Printf("inspection: location lookup failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "service error"})
	}

	ins := model.Inspection{
		LocationID:  loc.ID,
		Cleanliness: req.Cleanliness,
		Supplies:    req.Supplies,
		Condition:   req.Condition,
		Status:      model.StatusForScores(req.Cleanliness, req.Supplies, req.Condition),
		Notes:       req.Notes,
	}
	if uid := middleware.CurrentUserID(c); uid != 0 {
		ins.InspectorID = &uid
	}

	id, err := h.Inspections.Create(ctx, ins)
	if err != nil {
		log.Printf("inspection: create failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "service error"})
	}
	ins.ID = id

	// Publish in the background; a broker outage must not fail the
	// submission, and the event errors are already logged by the
	// publisher.
	event := queue.InspectionSubmittedEvent{
		InspectionID: id,
		LocationID:   loc.ID,
		LocationName: loc.Name,
		Cleanliness:  ins.Cleanliness,
		Supplies:     ins.Supplies,
		Condition:    ins.Condition,
		Status:       ins.Status,
		SubmittedAt:  time.Now().UTC().Format(time.RFC3339),
	}
	if ins.InspectorID != nil {
		event.InspectorID = *ins.InspectorID
	}
	go func() {
		pubCtx, pubCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer pubCancel()
		_ = queue.PublishInspectionSubmitted(pubCtx, event)
	}()

	return c.JSON(http.StatusCreated, echo.Map{"id": id, "status": ins.Status})
}

// List returns inspections matching the query filters. Requires a
// session; any authenticated user may review results.
func (h *InspectionHandler) List(c echo.Context) error {
	f := repository.InspectionFilter{Status: strings.ToUpper(strings.TrimSpace(c.QueryParam("status")))}
	if v := c.QueryParam("location_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid location_id"})
		}
		f.LocationID = id
	}
	if v := c.QueryParam("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid from"})
		}
		f.From = &t
	}
	if v := c.QueryParam("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid to"})
		}
		f.To = &t
	}
	f.Limit, _ = strconv.Atoi(c.QueryParam("limit"))
	f.Offset, _ = strconv.Atoi(c.QueryParam("offset"))

	ctx, cancel := repository.WithTimeout(c.Request().Context())
	defer cancel()

	list, err := h.Inspections.List(ctx, f)
	if err != nil {
		log.Printf("inspection: list failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "service error"})
	}
	out := make([]inspectionResp, 0, len(list))
	for _, ins := range list {
		out = append(out, toInspectionResp(ins))
	}
	return c.JSON(http.StatusOK, echo.Map{"inspections": out})
}

// Get returns a single inspection with its photos.
func (h *InspectionHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := repository.WithTimeout(c.Request().Context())
	defer cancel()

	ins, err := h.Inspections.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
		}
		log.Printf("inspection: get failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "service error"})
	}
	photos, err := h.Photos.ListByInspection(ctx, id, false)
	if err != nil {
		log.Printf("inspection: list photos failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "service error"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"inspection": toInspectionResp(ins),
		"photos":     toPhotoResps(photos),
	})
}

// Verify marks an inspection as reviewed. Admin only; the acting admin is
// recorded on the row. Double verification is a conflict.
func (h *InspectionHandler) Verify(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok || !u.CanVerifyInspections() {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := repository.WithTimeout(c.Request().Context())
	defer cancel()

	if err := h.Inspections.Verify(ctx, id, u.ID); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
		case errors.Is(err, repository.ErrConflict):
			return c.JSON(http.StatusConflict, echo.Map{"error": "already verified"})
		default:
			log.Printf("inspection: verify failed: %v", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "service error"})
		}
	}
	return c.NoContent(http.StatusNoContent)
}
