package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/agds-alt/ins-wc-ddd-sub002/internal/config"
	"github.com/agds-alt/ins-wc-ddd-sub002/internal/handler"
	"github.com/agds-alt/ins-wc-ddd-sub002/internal/middleware"
	"github.com/agds-alt/ins-wc-ddd-sub002/internal/model"
	"github.com/agds-alt/ins-wc-ddd-sub002/internal/repository"
)

// Handlers bundles every handler the router wires up.
type Handlers struct {
	Auth        *handler.AuthHandler
	Pages       *handler.PageHandler
	Locations   *handler.LocationHandler
	Inspections *handler.InspectionHandler
	Photos      *handler.PhotoHandler
	Admin       *handler.AdminHandler
}

// Register wires all routes onto the Echo instance. The session guard
// runs on every request; the rate limiter wraps only the credential
// endpoints and the response cache only the public scan lookup. Role
// enforcement is applied per group, not globally, so the role join runs
// only where a capability is exercised.
func Register(e *echo.Echo, cfg config.Config, h Handlers,
	users *repository.UserRepo, roles *repository.RoleRepo, rdb *redis.Client) {

	e.Use(middleware.SessionGuard(cfg.SessionSecret))

	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	// Health check for load balancers and monitoring.
	e.GET("/healthz", handler.Health)

	// Pages the guard steers between.
	e.GET("/login", h.Pages.Login)
	e.GET("/register", h.Pages.Register)
	e.GET("/dashboard", h.Pages.Dashboard)

	// Credential endpoints, rate limited.
	e.POST("/auth/register", h.Auth.Register, limiter)
	e.POST("/auth/login", h.Auth.Login, limiter)
	e.POST("/auth/logout", h.Auth.Logout)
	e.GET("/auth/me", h.Auth.Me)

	// Public scan flow: QR token lookup (cached) and form submission.
	e.GET("/scan/:qrToken", h.Locations.Scan, cache)
	e.POST("/inspections/submit", h.Inspections.Submit)

	// Authenticated review endpoints.
	e.GET("/inspections", h.Inspections.List)
	e.GET("/inspections/:id", h.Inspections.Get)
	e.POST("/inspections/:id/photos", h.Photos.Register)

	// Admin console. The group middleware performs the role join and
	// stores the loaded user for the handlers.
	admin := e.Group("/admin")
	admin.Use(middleware.RequireRoleLevel(users, roles, model.RoleLevelAdmin))
	admin.GET("/users", h.Admin.ListUsers)
	admin.POST("/users", h.Admin.CreateUser)
	admin.POST("/users/:id/password", h.Admin.ResetPassword)
	admin.PATCH("/users/:id/active", h.Admin.SetUserActive)
	admin.POST("/users/:id/role", h.Admin.AssignRole)
	admin.GET("/roles", h.Admin.ListRoles)
	admin.GET("/locations", h.Locations.List)
	admin.POST("/locations", h.Locations.Create)
	admin.PUT("/locations/:id", h.Locations.Update)
	admin.POST("/locations/:id/qr", h.Locations.RegenerateQR)
	admin.POST("/inspections/:id/verify", h.Inspections.Verify)
	admin.DELETE("/photos/:id", h.Photos.Delete)

	// Maintenance operations, super admin only.
	maint := e.Group("/admin/maintenance")
	maint.Use(middleware.RequireRoleLevel(users, roles, model.RoleLevelSuperAdmin))
	maint.POST("/dedup-roles", h.Admin.DedupRoleAssignments)
}
