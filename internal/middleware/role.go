package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/agds-alt/ins-wc-ddd-sub002/internal/model"
	"github.com/agds-alt/ins-wc-ddd-sub002/internal/repository"
)

// ctxUserKey is the context key under which RequireRoleLevel stores the
// fully loaded user, role included, for downstream handlers.
const ctxUserKey = "current_user"

// RequireRoleLevel returns middleware enforcing a minimum role level on a
// route group. Unlike the session guard, which only proves identity, this
// middleware performs the role-resolution join, so it is applied only to
// admin groups where the capability is actually exercised, not to every
// request. Insufficient level yields 403 (forbidden), never a login
// redirect: the caller is authenticated, just not privileged.
func RequireRoleLevel(users *repository.UserRepo, roles *repository.RoleRepo, minLevel int) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			uid := CurrentUserID(c)
			if uid == 0 {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "not authenticated"})
			}

			ctx, cancel := repository.WithTimeout(c.Request().Context())
			defer cancel()

			u, err := users.GetWithRole(ctx, roles, uid)
			if err != nil {
				if err == repository.ErrNotFound {
					// Token subject no longer exists; treat as unauthenticated.
					return c.JSON(http.StatusUnauthorized, echo.Map{"error": "not authenticated"})
				}
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "service error"})
			}
			if !u.IsActive {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
			}
			if !u.HasRoleLevel(minLevel) {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
			}

			c.Set(ctxUserKey, u)
			return next(c)
		}
	}
}

// CurrentUser returns the role-resolved user stored by RequireRoleLevel.
// The boolean is false on routes where that middleware did not run.
func CurrentUser(c echo.Context) (model.User, bool) {
	u, ok := c.Get(ctxUserKey).(model.User)
	return u, ok
}
