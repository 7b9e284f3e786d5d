package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/usecasehq/usecase-engine/pkg/auth"
	"github.com/usecasehq/usecase-engine/pkg/models"
)

type stubUserLookup struct {
	users map[string]*models.User
	err   error
}

func (s *stubUserLookup) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.users[email], nil
}

type passthroughTx struct{}

func (passthroughTx) ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (passthroughTx) ReadWrite(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func TestResolveUser(t *testing.T) {
	lookup := &stubUserLookup{users: map[string]*models.User{
		"dana@example.com": {ID: 1, Email: "dana@example.com", Role: models.RoleMaintainer},
	}}

	var seen *models.User
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = auth.UserFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	handler := ResolveUser(lookup, passthroughTx{}, zap.NewNop())(next)

	t.Run("header resolves user", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/use-cases", nil)
		req.Header.Set("X-User-Email", "dana@example.com")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)
		require.NotNil(t, seen)
		assert.Equal(t, models.RoleMaintainer, seen.Role)
	})

	t.Run("no header passes through userless", func(t *testing.T) {
		seen = nil
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/use-cases", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Nil(t, seen)
	})

	t.Run("unknown email passes through userless", func(t *testing.T) {
		seen = nil
		req := httptest.NewRequest(http.MethodGet, "/api/use-cases", nil)
		req.Header.Set("X-User-Email", "nobody@example.com")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Nil(t, seen)
	})
}

func TestResolveUser_LookupFailure(t *testing.T) {
	lookup := &stubUserLookup{err: errors.New("connection refused")}
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler must not run")
	})
	handler := ResolveUser(lookup, passthroughTx{}, zap.NewNop())(next)

	req := httptest.NewRequest(http.MethodGet, "/api/use-cases", nil)
	req.Header.Set("X-User-Email", "dana@example.com")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
