package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marshospital/hospice/internal/hospital"
	"github.com/marshospital/hospice/internal/session"
)

func okHandler(captured *Identity) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if captured != nil {
			if identity, ok := IdentityFromContext(r.Context()); ok {
				*captured = identity
			}
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestSessionAuthBeforeHydration(t *testing.T) {
	tokens := session.NewTokenIssuer("test-secret")
	handler := SessionAuth(tokens, func() bool { return false })(okHandler(nil))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/me", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestSessionAuthAttachesIdentity(t *testing.T) {
	tokens := session.NewTokenIssuer("test-secret")
	token, err := tokens.Issue("s1", "Jane Smith", hospital.RoleDoctor)
	require.NoError(t, err)

	var got Identity
	handler := SessionAuth(tokens, func() bool { return true })(okHandler(&got))

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "s1", got.ID)
	assert.Equal(t, hospital.RoleDoctor, got.Role)
}

func TestSessionAuthRejectsGarbageToken(t *testing.T) {
	tokens := session.NewTokenIssuer("test-secret")
	handler := SessionAuth(tokens, func() bool { return true })(okHandler(nil))

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer not.a.token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func signAdminToken(t *testing.T, secret string) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   "admin",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestAdminJWTAcceptsMatchingSecret(t *testing.T) {
	handler := AdminJWT("admin-secret")(okHandler(nil))

	req := httptest.NewRequest(http.MethodGet, "/admin/staff", nil)
	req.Header.Set("Authorization", "Bearer "+signAdminToken(t, "admin-secret"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAdminJWTRejectsWrongSecret(t *testing.T) {
	handler := AdminJWT("admin-secret")(okHandler(nil))

	req := httptest.NewRequest(http.MethodGet, "/admin/staff", nil)
	req.Header.Set("Authorization", "Bearer "+signAdminToken(t, "other"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminJWTDisabledWithoutSecret(t *testing.T) {
	handler := AdminJWT("")(okHandler(nil))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/staff", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
