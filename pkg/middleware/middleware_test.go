package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"arc-web/internal/data/entity"
	"arc-web/internal/data/repository/memory"
	"arc-web/pkg/jwt"
	"arc-web/pkg/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) utils.Response {
	t.Helper()
	var resp utils.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestPluginSecret(t *testing.T) {
	tests := []struct {
		name       string
		configured string
		header     string
		wantStatus int
		wantCalled bool
	}{
		{"matching secret", "s3cret", "s3cret", http.StatusOK, true},
		{"wrong secret", "s3cret", "guess", http.StatusForbidden, false},
		{"missing header", "s3cret", "", http.StatusForbidden, false},
		{"unset secret rejects everything", "", "", http.StatusForbidden, false},
		{"prefix of secret", "s3cret", "s3c", http.StatusForbidden, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			handler := PluginSecret(tt.configured, zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodPost, "/api/link/validate", strings.NewReader(`{"code":`))
			if tt.header != "" {
				req.Header.Set(PluginSecretHeader, tt.header)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantCalled, called)
			if !tt.wantCalled {
				assert.False(t, decode(t, rec).Success)
			}
		})
	}
}

func TestAuthSession(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewRepository(zap.NewNop())
	tokens := jwt.NewService(utils.JWTConfig{Secret: "test", Issuer: "arc-web", ExpiryHours: 1}, zap.NewNop())

	userID := uuid.New()
	now := time.Now()

	newSession := func(t *testing.T) (string, uuid.UUID) {
		t.Helper()
		session := &entity.Session{
			BaseSimple: entity.BaseSimple{ID: uuid.New(), CreatedAt: now},
			UserID:     userID,
			Token:      uuid.New(),
			ExpiresAt:  now.Add(time.Hour),
		}
		require.NoError(t, repo.Session.Create(ctx, session))
		signed, err := tokens.GenerateToken(userID, "customer", session.Token, now, session.ExpiresAt)
		require.NoError(t, err)
		return signed, session.Token
	}

	var got utils.Identity
	handler := AuthSession(tokens, repo.Session, zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = utils.GetIdentityFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	serve := func(header string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/user/profile", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	t.Run("valid session", func(t *testing.T) {
		signed, sessionToken := newSession(t)
		rec := serve("Bearer " + signed)
		require.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, userID, got.UserID)
		assert.Equal(t, sessionToken, got.SessionID)
		assert.Equal(t, "customer", got.Role)
	})

	t.Run("missing header", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, serve("").Code)
	})

	t.Run("wrong scheme", func(t *testing.T) {
		signed, _ := newSession(t)
		assert.Equal(t, http.StatusUnauthorized, serve("Token "+signed).Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, serve("Bearer abc.def.ghi").Code)
	})

	t.Run("revoked session", func(t *testing.T) {
		signed, sessionToken := newSession(t)
		require.NoError(t, repo.Session.Revoke(ctx, sessionToken, time.Now()))
		assert.Equal(t, http.StatusUnauthorized, serve("Bearer "+signed).Code)
	})
}

func TestAdmin(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewRepository(zap.NewNop())
	now := time.Now()

	admin := &entity.User{Base: entity.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now}, Email: "admin@x.com", Role: entity.RoleAdmin}
	customer := &entity.User{Base: entity.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now}, Email: "c@x.com", Role: entity.RoleCustomer}
	require.NoError(t, repo.User.Create(ctx, admin))
	require.NoError(t, repo.User.Create(ctx, customer))

	handler := Admin(repo.User, zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	serve := func(userID uuid.UUID) int {
		req := httptest.NewRequest(http.MethodPost, "/api/admin/orders/x/paid", nil)
		if userID != uuid.Nil {
			req = req.WithContext(utils.SetIdentityContext(req.Context(), utils.Identity{UserID: userID}))
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusNoContent, serve(admin.ID))
	assert.Equal(t, http.StatusForbidden, serve(customer.ID))
	assert.Equal(t, http.StatusUnauthorized, serve(uuid.Nil))
}

func TestRecover(t *testing.T) {
	handler := Recover(zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	resp := decode(t, rec)
	assert.False(t, resp.Success)
	assert.Equal(t, "Internal server error", resp.Message)
}
