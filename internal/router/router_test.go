package router

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agds-alt/ins-wc-ddd-sub002/internal/auth"
	"github.com/agds-alt/ins-wc-ddd-sub002/internal/config"
	"github.com/agds-alt/ins-wc-ddd-sub002/internal/handler"
	"github.com/agds-alt/ins-wc-ddd-sub002/internal/middleware"
	"github.com/agds-alt/ins-wc-ddd-sub002/internal/model"
	"github.com/agds-alt/ins-wc-ddd-sub002/internal/repository"
)

// newTestApp wires the full route table over a mocked database, with no
// Redis so the limiter and cache middleware pass through.
func newTestApp(t *testing.T) (*echo.Echo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	cfg := config.Config{
		Env:           "test",
		SessionSecret: "0123456789abcdef0123456789abcdef",
		SessionTTLMin: 60,
		BcryptCost:    4,
	}
	users := repository.NewUserRepo(db)
	roles := repository.NewRoleRepo(db)
	locations := repository.NewLocationRepo(db)
	inspections := repository.NewInspectionRepo(db)
	photos := repository.NewPhotoRepo(db)

	h := Handlers{
		Auth:        handler.NewAuthHandler(cfg, users, roles),
		Pages:       handler.NewPageHandler(users, roles, inspections),
		Locations:   handler.NewLocationHandler(locations),
		Inspections: handler.NewInspectionHandler(inspections, locations, photos),
		Photos:      handler.NewPhotoHandler(photos, inspections),
		Admin:       handler.NewAdminHandler(cfg, users, roles),
	}
	e := echo.New()
	Register(e, cfg, h, users, roles, nil)
	return e, mock
}

func sessionCookieFrom(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == middleware.SessionCookieName {
			return ck
		}
	}
	t.Fatalf("no %s cookie in response", middleware.SessionCookieName)
	return nil
}

func userRow(id uint64, email, hash, fullName string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "email", "password_hash", "full_name", "phone", "photo_url",
		"occupation", "is_active", "last_login_at", "created_at", "updated_at",
	}).AddRow(id, email, hash, fullName, nil, nil, nil, true, nil, now, now)
}

// TestSessionLifecycle walks the whole happy path through the real route
// table: register, log in, load the dashboard with the session cookie,
// log out.
func TestSessionLifecycle(t *testing.T) {
	e, mock := newTestApp(t)

	const (
		email    = "ana@example.com"
		password = "Sup3rvisor!"
		fullName = "Ana Petrova"
	)
	hash, err := auth.HashPassword(password, 4)
	require.NoError(t, err)

	// Register: insert succeeds, session cookie issued immediately.
	mock.ExpectExec("INSERT INTO users").
		WithArgs(email, sqlmock.AnyArg(), fullName, nil).
		WillReturnResult(sqlmock.NewResult(1, 1))

	body := `{"email":"` + email + `","password":"` + password + `","full_name":"` + fullName + `"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.NotEmpty(t, sessionCookieFrom(t, rec).Value)

	// Login: credentials check against the stored hash, last login touched.
	mock.ExpectQuery("FROM users WHERE email=").
		WithArgs(email).
		WillReturnRows(userRow(1, email, hash, fullName))
	mock.ExpectExec("UPDATE users SET last_login_at").
		WithArgs(1).
		WillReturnResult(sqlmock.NewResult(0, 1))

	req = httptest.NewRequest(http.MethodPost, "/auth/login",
		strings.NewReader(`{"email":"`+email+`","password":"`+password+`"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	session := sessionCookieFrom(t, rec)
	require.NotEmpty(t, session.Value)

	// Dashboard with the cookie: identity plus role resolution. No
	// assignment rows exist, so the baseline role comes back.
	mock.ExpectQuery("FROM users WHERE id=").
		WithArgs(1).
		WillReturnRows(userRow(1, email, hash, fullName))
	mock.ExpectQuery("SELECT r.name, r.level").
		WithArgs(1).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery("FROM inspections").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "location_id", "inspector_id", "cleanliness", "supplies",
			"cond", "status", "notes", "is_verified", "verified_by",
			"verified_at", "created_at",
		}))

	req = httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(session)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var page struct {
		User struct {
			ID        uint64 `json:"id"`
			FullName  string `json:"full_name"`
			IsAdmin   bool   `json:"is_admin"`
			RoleLevel int    `json:"role_level"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Equal(t, uint64(1), page.User.ID)
	assert.Equal(t, fullName, page.User.FullName)
	assert.False(t, page.User.IsAdmin)
	assert.Equal(t, model.RoleLevelUser, page.User.RoleLevel)

	// Logout clears the cookie.
	req = httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.AddCookie(session)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Negative(t, sessionCookieFrom(t, rec).MaxAge)

	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestDashboardWithoutSessionRedirects covers the other side of the
// lifecycle: a protected page with no cookie bounces to login with the
// return target preserved, touching no storage at all.
func TestDashboardWithoutSessionRedirects(t *testing.T) {
	e, mock := newTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login?from=%2Fdashboard", rec.Header().Get(echo.HeaderLocation))
	assert.NoError(t, mock.ExpectationsWereMet())
}
