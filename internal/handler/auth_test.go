package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agds-alt/ins-wc-ddd-sub002/internal/config"
	"github.com/agds-alt/ins-wc-ddd-sub002/internal/middleware"
)

func testConfig() config.Config {
	return config.Config{
		Env:           "test",
		SessionSecret: "test-secret-test-secret-test-secret!",
		SessionTTLMin: 60,
		BcryptCost:    4,
	}
}

func TestLogoutClearsCookieAndIsIdempotent(t *testing.T) {
	h := NewAuthHandler(testConfig(), nil, nil)
	e := echo.New()

	for i := 0; i < 2; i++ { // second call without a session must behave identically
		req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
		rec := httptest.NewRecorder()
		require.NoError(t, h.Logout(e.NewContext(req, rec)))

		assert.Equal(t, http.StatusNoContent, rec.Code)
		set := strings.Join(rec.Header().Values("Set-Cookie"), ";")
		assert.Contains(t, set, middleware.SessionCookieName+"=")
		assert.Contains(t, set, "Max-Age=0")
	}
}

func TestMeWithoutSessionIsUnauthorized(t *testing.T) {
	h := NewAuthHandler(testConfig(), nil, nil)
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	rec := httptest.NewRecorder()
	require.NoError(t, h.Me(e.NewContext(req, rec)))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "not authenticated")
}

func TestRegisterRejectsWeakPassword(t *testing.T) {
	h := NewAuthHandler(testConfig(), nil, nil)
	e := echo.New()

	body := `{"email":"user@test.com","password":"short","full_name":"Test User"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	require.NoError(t, h.Register(e.NewContext(req, rec)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "at least 8 characters")
}

func TestRegisterRejectsMissingFields(t *testing.T) {
	h := NewAuthHandler(testConfig(), nil, nil)
	e := echo.New()

	body := `{"email":"user@test.com","password":"User123!"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	require.NoError(t, h.Register(e.NewContext(req, rec)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoginRejectsEmptyCredentials(t *testing.T) {
	h := NewAuthHandler(testConfig(), nil, nil)
	e := echo.New()

	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	require.NoError(t, h.Login(e.NewContext(req, rec)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
