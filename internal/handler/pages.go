package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/agds-alt/ins-wc-ddd-sub002/internal/middleware"
	"github.com/agds-alt/ins-wc-ddd-sub002/internal/repository"
)

// PageHandler backs the page-level routes the session guard steers
// traffic between. The UI renders client-side; these endpoints provide
// the data for the login and dashboard pages.
type PageHandler struct {
	Users       *repository.UserRepo
	Roles       *repository.RoleRepo
	Inspections *repository.InspectionRepo
}

func NewPageHandler(u *repository.UserRepo, r *repository.RoleRepo, i *repository.InspectionRepo) *PageHandler {
	return &PageHandler{Users: u, Roles: r, Inspections: i}
}

// Login backs the login page. Public; the guard redirects authenticated
// visitors away before this runs. The return target from the `from` query
// parameter is echoed so the client can navigate back after login.
func (h *PageHandler) Login(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"page": "login",
		"from": c.QueryParam("from"),
	})
}

// Register backs the registration page.
func (h *PageHandler) Register(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"page": "register"})
}

// Dashboard is the authenticated landing page: the caller's identity and
// the latest inspection activity.
func (h *PageHandler) Dashboard(c echo.Context) error {
	uid := middleware.CurrentUserID(c)
	if uid == 0 {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "not authenticated"})
	}

	ctx, cancel := repository.WithTimeout(c.Request().Context())
	defer cancel()

	u, err := h.Users.GetWithRole(ctx, h.Roles, uid)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "not authenticated"})
		}
		log.Printf("pages: load user failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "service error"})
	}

	recent, err := h.Inspections.List(ctx, repository.InspectionFilter{Limit: 10})
	if err != nil {
		log.Printf("pages: list inspections failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "service error"})
	}
	out := make([]inspectionResp, 0, len(recent))
	for _, ins := range recent {
		out = append(out, toInspectionResp(ins))
	}
	return c.JSON(http.StatusOK, echo.Map{
		"user": identityResp{
			ID:           u.ID,
			FullName:     u.FullName,
			IsAdmin:      u.IsAdmin(),
			IsSuperAdmin: u.IsSuperAdmin(),
			RoleLevel:    u.RoleLevel,
		},
		"recent_inspections": out,
	})
}
