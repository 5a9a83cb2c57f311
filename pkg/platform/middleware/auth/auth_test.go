package auth

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "volunteerhub/pkg/domain"
	"volunteerhub/pkg/requestcontext"
)

type stubValidator struct {
	actor id.Actor
	err   error
}

func (s stubValidator) ValidateToken(string) (id.Actor, error) { return s.actor, s.err }

func TestRequireAuth(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	actor := id.Actor{UserID: id.UserID(uuid.New()), Role: id.RoleVolunteer}

	var seen id.Actor
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = requestcontext.Actor(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})

	t.Run("valid token stores actor", func(t *testing.T) {
		h := RequireAuth(stubValidator{actor: actor}, logger)(next)
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Authorization", "Bearer abc")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)

		require.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, actor, seen)
	})

	t.Run("missing header", func(t *testing.T) {
		h := RequireAuth(stubValidator{actor: actor}, logger)(next)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("invalid token", func(t *testing.T) {
		h := RequireAuth(stubValidator{err: errors.New("bad")}, logger)(next)
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Authorization", "Bearer abc")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "unauthorized")
	})
}

func TestRequireRole(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	h := RequireRole(logger, id.RoleOrganization, id.RoleAdmin)(next)

	serve := func(actor id.Actor) int {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r = r.WithContext(requestcontext.WithActor(r.Context(), actor))
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)
		return w.Code
	}

	assert.Equal(t, http.StatusNoContent, serve(id.Actor{UserID: id.UserID(uuid.New()), Role: id.RoleAdmin}))
	assert.Equal(t, http.StatusForbidden, serve(id.Actor{UserID: id.UserID(uuid.New()), Role: id.RoleVolunteer}))
	assert.Equal(t, http.StatusForbidden, serve(id.Actor{}))
}
