package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/agds-alt/ins-wc-ddd-sub002/internal/auth"
	"github.com/agds-alt/ins-wc-ddd-sub002/internal/config"
	"github.com/agds-alt/ins-wc-ddd-sub002/internal/middleware"
	"github.com/agds-alt/ins-wc-ddd-sub002/internal/model"
	"github.com/agds-alt/ins-wc-ddd-sub002/internal/repository"
)

// AdminHandler implements user and role management. All routes sit behind
// RequireRoleLevel, so CurrentUser is always populated here; the
// handlers still apply the finer capability predicates where the admin
// and super-admin tiers diverge.
type AdminHandler struct {
	Cfg   config.Config
	Users *repository.UserRepo
	Roles *repository.RoleRepo
}

func NewAdminHandler(cfg config.Config, u *repository.UserRepo, r *repository.RoleRepo) *AdminHandler {
	return &AdminHandler{Cfg: cfg, Users: u, Roles: r}
}

type adminUserResp struct {
	ID          uint64  `json:"id"`
	Email       string  `json:"email"`
	FullName    string  `json:"full_name"`
	Phone       *string `json:"phone,omitempty"`
	IsActive    bool    `json:"is_active"`
	RoleName    string  `json:"role_name"`
	RoleLevel   int     `json:"role_level"`
	LastLoginAt *string `json:"last_login_at,omitempty"`
}

func toAdminUserResp(u model.User) adminUserResp {
	resp := adminUserResp{
		ID:        u.ID,
		Email:     u.Email,
		FullName:  u.FullName,
		Phone:     u.Phone,
		IsActive:  u.IsActive,
		RoleName:  u.RoleName,
		RoleLevel: u.RoleLevel,
	}
	if u.LastLoginAt != nil {
		s := u.LastLoginAt.UTC().Format(time.RFC3339)
		resp.LastLoginAt = &s
	}
	return resp
}

// ListUsers returns users with their resolved roles attached.
func (h *AdminHandler) ListUsers(c echo.Context) error {
	f := repository.UserFilter{Email: strings.TrimSpace(c.QueryParam("email"))}
	if v := c.QueryParam("active"); v != "" {
		b := v == "true" || v == "1"
		f.Active = &b
	}
	f.Limit, _ = strconv.Atoi(c.QueryParam("limit"))
	f.Offset, _ = strconv.Atoi(c.QueryParam("offset"))

	ctx, cancel := repository.WithTimeout(c.Request().Context())
	defer cancel()

	users, err := h.Users.List(ctx, f)
	if err != nil {
		log.Printf("admin: list users failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "service error"})
	}
	out := make([]adminUserResp, 0, len(users))
	for _, u := range users {
		name, level, err := h.Roles.Resolve(ctx, u.ID)
		if err != nil {
			log.Printf("admin: resolve role failed for user %d: %v", u.ID, err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "service error"})
		}
		out = append(out, toAdminUserResp(u.WithRole(name, level)))
	}
	return c.JSON(http.StatusOK, echo.Map{"users": out})
}

type createUserReq struct {
	Email    string  `json:"email"`
	FullName string  `json:"full_name"`
	Phone    *string `json:"phone,omitempty"`
}

// CreateUser provisions an account with a generated password, returned
// exactly once in the response for the admin to hand over. The password
// never reaches the logs.
func (h *AdminHandler) CreateUser(c echo.Context) error {
	var req createUserReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.TrimSpace(req.Email)
	req.FullName = strings.TrimSpace(req.FullName)
	if req.Email == "" || req.FullName == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email and full_name required"})
	}

	password, err := auth.GenerateRandomPassword(12)
	if err != nil {
		log.Printf("admin: generate password failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "service error"})
	}
	hash, err := auth.HashPassword(password, h.Cfg.BcryptCost)
	if err != nil {
		log.Printf("admin: hash password failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "service error"})
	}

	ctx, cancel := repository.WithTimeout(c.Request().Context())
	defer cancel()

	id, err := h.Users.Create(ctx, req.Email, hash, req.FullName, req.Phone)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
		}
		log.Printf("admin: create user failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "service error"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": id, "password": password})
}

// ResetPassword replaces a user's password with a fresh generated one,
// returned once in the response.
func (h *AdminHandler) ResetPassword(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	password, err := auth.GenerateRandomPassword(12)
	if err != nil {
		log.Printf("admin: generate password failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "service error"})
	}
	hash, err := auth.HashPassword(password, h.Cfg.BcryptCost)
	if err != nil {
		log.Printf("admin: hash password failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "service error"})
	}

	ctx, cancel := repository.WithTimeout(c.Request().Context())
	defer cancel()

	if err := h.Users.UpdatePassword(ctx, id, hash); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
		}
		log.Printf("admin: reset password failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "service error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"password": password})
}

type setActiveReq struct {
	IsActive bool `json:"is_active"`
}

// SetUserActive activates or deactivates an account. Deactivation does
// not revoke live session tokens; the business layer rejects inactive
// users at the next role-checked request and at the next login.
func (h *AdminHandler) SetUserActive(c echo.Context) error {
	actor, _ := middleware.CurrentUser(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if id == actor.ID {
		// Locking yourself out is never what the admin meant.
		return c.JSON(http.StatusConflict, echo.Map{"error": "cannot change own active state"})
	}
	var req setActiveReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := repository.WithTimeout(c.Request().Context())
	defer cancel()

	if err := h.Users.SetActive(ctx, id, req.IsActive); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
		}
		log.Printf("admin: set active failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "service error"})
	}
	return c.NoContent(http.StatusNoContent)
}

type assignRoleReq struct {
	RoleID uint64 `json:"role_id"`
}

// AssignRole gives a user exactly one role; any previous assignment is
// replaced. A zero role_id drops the user back to the baseline tier.
func (h *AdminHandler) AssignRole(c echo.Context) error {
	actor, _ := middleware.CurrentUser(c)
	userID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req assignRoleReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := repository.WithTimeout(c.Request().Context())
	defer cancel()

	if _, _, err := h.Users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
		}
		log.Printf("admin: user lookup failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "service error"})
	}

	if req.RoleID == 0 {
		if err := h.Roles.Unassign(ctx, userID); err != nil {
			log.Printf("admin: unassign role failed: %v", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "service error"})
		}
		return c.NoContent(http.StatusNoContent)
	}

	// Only super admins may grant a role at or above their own tier's
	// floor; a regular admin cannot mint more admins.
	role, err := h.Roles.GetByID(ctx, req.RoleID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "role not found"})
		}
		log.Printf("admin: role lookup failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "service error"})
	}
	if role.Level >= model.RoleLevelAdmin && !actor.IsSuperAdmin() {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	if err := h.Roles.Assign(ctx, userID, req.RoleID, actor.ID); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "role inactive"})
		}
		log.Printf("admin: assign role failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "service error"})
	}
	return c.NoContent(http.StatusNoContent)
}

// ListRoles returns all roles for the role-assignment picker.
func (h *AdminHandler) ListRoles(c echo.Context) error {
	ctx, cancel := repository.WithTimeout(c.Request().Context())
	defer cancel()

	roles, err := h.Roles.List(ctx, false)
	if err != nil {
		log.Printf("admin: list roles failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "service error"})
	}
	type roleResp struct {
		ID          uint64  `json:"id"`
		Name        string  `json:"name"`
		Description *string `json:"description,omitempty"`
		Level       int     `json:"level"`
		IsActive    bool    `json:"is_active"`
	}
	out := make([]roleResp, 0, len(roles))
	for _, r := range roles {
		out = append(out, roleResp{ID: r.ID, Name: r.Name, Description: r.Description, Level: r.Level, IsActive: r.IsActive})
	}
	return c.JSON(http.StatusOK, echo.Map{"roles": out})
}

// DedupRoleAssignments is the maintenance endpoint that cleans up stray
// duplicate assignment rows. Super admin only; low-frequency by design.
func (h *AdminHandler) DedupRoleAssignments(c echo.Context) error {
	ctx, cancel := repository.WithTimeout(c.Request().Context())
	defer cancel()

	removed, err := h.Roles.DedupAssignments(ctx)
	if err != nil {
		log.Printf("admin: dedup assignments failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "service error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"removed": removed})
}
