package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marshospital/hospice/internal/assistant"
	"github.com/marshospital/hospice/internal/hospital"
	"github.com/marshospital/hospice/internal/http/handlers"
	"github.com/marshospital/hospice/internal/session"
	"github.com/marshospital/hospice/internal/store"
	"github.com/marshospital/hospice/pkg/logging"
)

func newTestRouter(t *testing.T) (http.Handler, *session.TokenIssuer) {
	t.Helper()
	logger := logging.Default()
	st := store.New(nil, logger, nil)
	tokens := session.NewTokenIssuer("test-secret")
	sessions := session.NewService(nil, tokens, logger)
	require.NoError(t, sessions.Hydrate(context.Background()))
	aide := assistant.NewService(nil, st, logger, nil)

	return New(&Config{
		Logger:          logger,
		Auth:            handlers.NewAuthHandler(st, sessions, logger, nil),
		Patients:        handlers.NewPatientsHandler(st, logger),
		Orders:          handlers.NewOrdersHandler(st, logger),
		Departments:     handlers.NewDepartmentHandler(st, logger),
		Billing:         handlers.NewBillingHandler(st, logger),
		Portal:          handlers.NewPortalHandler(st, aide, logger),
		Notifications:   handlers.NewNotificationsHandler(st, 0, logger),
		Admin:           handlers.NewAdminHandler(st, logger),
		Tokens:          tokens,
		SessionReady:    sessions.Ready,
		AdminAuthSecret: "admin-secret",
	}), tokens
}

func TestHealthEndpoint(t *testing.T) {
	r, _ := newTestRouter(t)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestUnknownRouteIs404(t *testing.T) {
	r, _ := newTestRouter(t)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPrivateRoutesRequireToken(t *testing.T) {
	r, _ := newTestRouter(t)
	for _, path := range []string{"/me", "/patients", "/lab/queue", "/billing/patients", "/portal/overview"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "path %s", path)
	}
}

func TestValidTokenReachesPrivateRoute(t *testing.T) {
	r, tokens := newTestRouter(t)
	token, err := tokens.Issue("nurse-1", "Pat Nurse", hospital.RoleNurse)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/patients", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAdminRoutesRejectSessionToken(t *testing.T) {
	r, tokens := newTestRouter(t)
	token, err := tokens.Issue("doc-1", "Jane", hospital.RoleDoctor)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/admin/staff", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "session tokens are not admin credentials")
}

func TestAdminRoutesRejectMissingToken(t *testing.T) {
	r, _ := newTestRouter(t)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/staff", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
