package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nsf-ai/knowledge-assistant/internal/model"
	"github.com/nsf-ai/knowledge-assistant/internal/policy"
)

const testSecret = "test-secret"

func authedRequest(t *testing.T, token string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func TestAuth(t *testing.T) {
	var gotUserID uint
	var gotRole string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID = GetUserID(r.Context())
		gotRole = GetRole(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	handler := Auth(testSecret)(next)

	t.Run("valid token passes identity through context", func(t *testing.T) {
		token, _, err := IssueToken(testSecret, 42, model.RoleStaff, time.Minute)
		require.NoError(t, err)

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, authedRequest(t, token))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, uint(42), gotUserID)
		assert.Equal(t, model.RoleStaff, gotRole)
	})

	t.Run("missing header is rejected", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, authedRequest(t, ""))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("token signed with another secret is rejected", func(t *testing.T) {
		token, _, err := IssueToken("other-secret", 42, model.RoleStaff, time.Minute)
		require.NoError(t, err)

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, authedRequest(t, token))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("expired token is rejected", func(t *testing.T) {
		token, _, err := IssueToken(testSecret, 42, model.RoleStaff, -time.Minute)
		require.NoError(t, err)

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, authedRequest(t, token))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestRequirePermission(t *testing.T) {
	perms := policy.Default()
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	protected := Auth(testSecret)(RequirePermission(perms, policy.ActionProcessDocument)(next))

	t.Run("admin may process documents", func(t *testing.T) {
		token, _, err := IssueToken(testSecret, 1, model.RoleAdmin, time.Minute)
		require.NoError(t, err)

		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, authedRequest(t, token))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("staff may not process documents", func(t *testing.T) {
		token, _, err := IssueToken(testSecret, 2, model.RoleStaff, time.Minute)
		require.NoError(t, err)

		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, authedRequest(t, token))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}
