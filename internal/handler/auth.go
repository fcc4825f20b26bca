package handler

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/agds-alt/ins-wc-ddd-sub002/internal/auth"
	"github.com/agds-alt/ins-wc-ddd-sub002/internal/config"
	"github.com/agds-alt/ins-wc-ddd-sub002/internal/middleware"
	"github.com/agds-alt/ins-wc-ddd-sub002/internal/repository"
)

// AuthHandler bundles dependencies for the auth endpoints.
type AuthHandler struct {
	Cfg   config.Config
	Users *repository.UserRepo
	Roles *repository.RoleRepo
}

func NewAuthHandler(cfg config.Config, u *repository.UserRepo, r *repository.RoleRepo) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u, Roles: r}
}

// ----- DTOs -----

type registerReq struct {
	Email    string  `json:"email"`
	Password string  `json:"password"`
	FullName string  `json:"full_name"`
	Phone    *string `json:"phone,omitempty"`
}
type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// identityResp is the authenticated-identity payload: the sole channel
// through which presentation code learns who is logged in.
type identityResp struct {
	ID           uint64 `json:"id"`
	FullName     string `json:"full_name"`
	IsAdmin      bool   `json:"is_admin"`
	IsSuperAdmin bool   `json:"is_super_admin"`
	RoleLevel    int    `json:"role_level"`
}

// Register creates an account and starts a session immediately.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.TrimSpace(req.Email)
	req.FullName = strings.TrimSpace(req.FullName)
	if req.Email == "" || req.Password == "" || req.FullName == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email, password and full_name required"})
	}
	if msg := auth.ValidatePasswordStrength(req.Password); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	hash, err := auth.HashPassword(req.Password, h.Cfg.BcryptCost)
	if err != nil {
		// Hashing must not silently degrade; fail the request outright.
		log.Printf("auth: password hash failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "service error"})
	}

	ctx, cancel := repository.WithTimeout(c.Request().Context())
	defer cancel()

	uid, err := h.Users.Create(ctx, req.Email, hash, req.FullName, req.Phone)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
		}
		log.Printf("auth: create user failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "service error"})
	}

	if err := h.startSession(c, uid); err != nil {
		log.Printf("auth: issue session failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "service error"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": uid, "email": req.Email})
}

// Login verifies credentials and sets the session cookie. Wrong email and
// wrong password produce the same generic 401 so the response does not
// reveal whether an account exists; the real cause goes to server logs.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email and password required"})
	}

	ctx, cancel := repository.WithTimeout(c.Request().Context())
	defer cancel()

	u, hash, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}
		log.Printf("auth: login query failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "service error"})
	}
	if !auth.VerifyPassword(hash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}
	if !u.IsActive {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "account inactive"})
	}

	if err := h.Users.TouchLastLogin(ctx, u.ID); err != nil {
		log.Printf("auth: touch last login failed: %v", err) // non-fatal
	}
	if err := h.startSession(c, u.ID); err != nil {
		log.Printf("auth: issue session failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "service error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"id": u.ID, "full_name": u.FullName})
}

// Logout clears the session cookie. Idempotent: calling it without a
// session is not an error. No server-side state exists to tear down
// because sessions are self-contained tokens with a fixed TTL.
func (h *AuthHandler) Logout(c echo.Context) error {
	middleware.ClearSessionCookie(c, h.Cfg.IsProd())
	return c.NoContent(http.StatusNoContent)
}

// Me returns the authenticated identity with its freshly resolved role.
func (h *AuthHandler) Me(c echo.Context) error {
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
		log.Printf("auth: load identity failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "service error"})
	}
	return c.JSON(http.StatusOK, identityResp{
		ID:           u.ID,
		FullName:     u.FullName,
		IsAdmin:      u.IsAdmin(),
		IsSuperAdmin: u.IsSuperAdmin(),
		RoleLevel:    u.RoleLevel,
	})
}

// startSession issues a session token and writes the cookie whose expiry
// matches the token TTL.
func (h *AuthHandler) startSession(c echo.Context, userID uint64) error {
	st, err := auth.IssueSession(h.Cfg.SessionSecret, userID,
		time.Duration(h.Cfg.SessionTTLMin)*time.Minute)
	if err != nil {
		return err
	}
	middleware.WriteSessionCookie(c, st.Token, st.Exp, h.Cfg.IsProd())
	return nil
}
