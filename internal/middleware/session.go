package middleware // middleware provides shared request processing for handlers

import (
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/agds-alt/ins-wc-ddd-sub002/internal/auth"
)

// SessionCookieName is the fixed name of the cookie carrying the signed
// session token.
const SessionCookieName = "wc_session"

// ctxUserIDKey is the context key under which the guard stores the
// authenticated user's id.
const ctxUserIDKey = "user_id"

// Paths the guard treats specially.
const (
	loginPath   = "/login"
	landingPath = "/dashboard"
)

// publicPrefixes lists path prefixes that never require authentication:
// the login and registration pages and their API endpoints, the QR scan
// flow (anonymous submissions are a feature, not a hole) and the health
// check. /auth/me is deliberately absent: the identity query requires a
// session.
var publicPrefixes = []string{
	"/login",
	"/register",
	"/auth/login",
	"/auth/register",
	"/auth/logout",
	"/scan/",
	"/inspections/submit",
	"/healthz",
}

// authPages are the public pages that bounce an already-authenticated
// visitor to the landing page instead of letting them log in again.
var authPages = map[string]bool{
	"/login":    true,
	"/register": true,
}

// SessionGuard returns the route guard middleware. Each request resolves
// to one of four outcomes: public passthrough, redirect-to-login for
// missing or invalid sessions, redirect-to-landing for authenticated
// visits to the login page, or passthrough with the user id stored in the
// request context. The guard never produces an error page; all failures
// become redirects. It checks authentication only; role checks belong to
// the admin middleware and handlers, which have the freshly joined role.
func SessionGuard(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			path := c.Request().URL.Path

			if isPublicPath(path) {
				if token, ok := sessionCookie(c); ok {
					if uid, err := auth.VerifySession(secret, token); err == nil {
						// A logged-in user landing on /login or /register
						// is bounced to the dashboard to avoid re-login
						// loops.
						if authPages[path] {
							return c.Redirect(http.StatusFound, landingPath)
						}
						// Best-effort identity on other public paths so a
						// logged-in inspector's submission is attributed.
						c.Set(ctxUserIDKey, uid)
					}
				}
				return next(c)
			}

			token, ok := sessionCookie(c)
			if !ok {
				return redirectToLogin(c, path)
			}

			uid, err := auth.VerifySession(secret, token)
			if err != nil {
				// The specific cause stays in server logs; the client only
				// sees the login redirect. Clearing the cookie removes the
				// poisoned token so the next request starts clean.
				log.Printf("session: rejected token for %s: %v", path, err)
				ClearSessionCookie(c, c.IsTLS())
				return redirectToLogin(c, path)
			}

			c.Set(ctxUserIDKey, uid)
			return next(c)
		}
	}
}

// CurrentUserID returns the authenticated user's id stored by the guard,
// or 0 when the request is unauthenticated (public paths).
func CurrentUserID(c echo.Context) uint64 {
	if v, ok := c.Get(ctxUserIDKey).(uint64); ok {
		return v
	}
	return 0
}

// WriteSessionCookie attaches a session cookie whose lifetime matches the
// token's expiry. HttpOnly keeps it away from scripts; SameSite=Lax
// blocks cross-site POSTs from carrying it.
func WriteSessionCookie(c echo.Context, token string, exp time.Time, secure bool) {
	c.SetCookie(&http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  exp,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie expires the session cookie. Safe to call when no
// cookie is present, which keeps logout idempotent.
func ClearSessionCookie(c echo.Context, secure bool) {
	c.SetCookie(&http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// sessionCookie extracts the raw token from the request. A malformed or
// empty cookie reads the same as an absent one.
func sessionCookie(c echo.Context) (string, bool) {
	ck, err := c.Cookie(SessionCookieName)
	if err != nil || ck.Value == "" {
		return "", false
	}
	return ck.Value, true
}

// isPublicPath matches a request path against the public list on segment
// boundaries, so "/loginX" is not public just because "/login" is.
func isPublicPath(path string) bool {
	for _, p := range publicPrefixes {
		base := strings.TrimSuffix(p, "/")
		if path == base || strings.HasPrefix(path, base+"/") {
			return true
		}
	}
	return false
}

// redirectToLogin sends the client to the login page, preserving the
// originally requested path so a successful login can return there.
func redirectToLogin(c echo.Context, from string) error {
	return c.Redirect(http.StatusFound, loginPath+"?from="+url.QueryEscape(from))
}
