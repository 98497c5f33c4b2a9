package handler

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nsf-ai/knowledge-assistant/internal/model"
	"github.com/nsf-ai/knowledge-assistant/internal/store"
	"github.com/nsf-ai/knowledge-assistant/pkg/apperr"
	"github.com/nsf-ai/knowledge-assistant/pkg/logger"
)

func newAdminRouter(t *testing.T) (chi.Router, *store.UserStore) {
	t.Helper()
	db, err := store.NewMemoryDB()
	require.NoError(t, err)

	users := store.NewUserStore(db)
	h := NewAdminHandler(store.NewAdminStore(db), users, logger.NewNop())

	r := chi.NewRouter()
	r.Get("/admin/stats", h.Stats)
	r.Get("/admin/users", h.Users)
	r.Delete("/admin/users/{id}", h.DeleteUser)
	return r, users
}

func TestDeleteUser(t *testing.T) {
	ctx := context.Background()

	t.Run("existing user is removed", func(t *testing.T) {
		r, users := newAdminRouter(t)
		user := &model.User{Email: "gone@example.org", PasswordHash: "x", Role: model.RoleStaff, IsActive: true}
		require.NoError(t, users.Create(ctx, user))

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/admin/users/%d", user.ID), nil))
		assert.Equal(t, http.StatusOK, rec.Code)

		_, err := users.Get(ctx, user.ID)
		require.Error(t, err)
		assert.True(t, apperr.Is(err, apperr.KindNotFound))
	})

	t.Run("unknown user is not found", func(t *testing.T) {
		r, _ := newAdminRouter(t)

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/admin/users/999", nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("malformed id is rejected", func(t *testing.T) {
		r, _ := newAdminRouter(t)

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/admin/users/abc", nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
