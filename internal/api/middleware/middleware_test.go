package middleware

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/openmeet/server/internal/auth"
	"github.com/openmeet/server/internal/config"
	"github.com/openmeet/server/internal/domain/users"
)

func TestRequestLoggingPassesThrough(t *testing.T) {
	handler := RequestLogging(zerolog.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte("ok"))
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/events/", nil))

	require.Equal(t, http.StatusCreated, w.Code)
	require.Equal(t, "ok", w.Body.String())
}

func TestRequestSizeRejectsOversizedBody(t *testing.T) {
	handler := RequestSize(16)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, err := io.ReadAll(r.Body)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/events/create/", strings.NewReader(strings.Repeat("x", 64)))
	handler.ServeHTTP(w, r)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRateLimitBlocksAfterBudget(t *testing.T) {
	cfg := config.RateLimitConfig{PublicPerMinute: 2, AuthPerMinute: 2, LoginPerMinute: 2}
	handler := RateLimit(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/events/", nil)
		r.RemoteAddr = "10.0.0.1:1234"
		handler.ServeHTTP(w, r)
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/events/", nil)
	r.RemoteAddr = "10.0.0.1:1234"
	handler.ServeHTTP(w, r)
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	require.NotEmpty(t, w.Header().Get("Retry-After"))
}

func TestRateLimitKeysByClient(t *testing.T) {
	cfg := config.RateLimitConfig{PublicPerMinute: 1}
	handler := RateLimit(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	first := httptest.NewRecorder()
	r1 := httptest.NewRequest(http.MethodGet, "/events/", nil)
	r1.RemoteAddr = "10.0.0.1:1234"
	handler.ServeHTTP(first, r1)
	require.Equal(t, http.StatusOK, first.Code)

	second := httptest.NewRecorder()
	r2 := httptest.NewRequest(http.MethodGet, "/events/", nil)
	r2.RemoteAddr = "10.0.0.2:1234"
	handler.ServeHTTP(second, r2)
	require.Equal(t, http.StatusOK, second.Code)
}

func TestRateLimitExemptsHealthEndpoints(t *testing.T) {
	cfg := config.RateLimitConfig{PublicPerMinute: 1}
	handler := RateLimit(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 5; i++ {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		r.RemoteAddr = "10.0.0.1:1234"
		handler.ServeHTTP(w, r)
		require.Equal(t, http.StatusOK, w.Code)
	}
}

type singleUserRepo struct {
	user *users.User
}

func (r *singleUserRepo) Create(ctx context.Context, u *users.User) error { return nil }

func (r *singleUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*users.User, error) {
	if r.user != nil && r.user.ID == id {
		return r.user, nil
	}
	return nil, users.ErrNotFound
}

func (r *singleUserRepo) GetByUsername(ctx context.Context, username string) (*users.User, error) {
	return nil, users.ErrNotFound
}

func (r *singleUserRepo) GetByEmail(ctx context.Context, email string) (*users.User, error) {
	return nil, users.ErrNotFound
}

type nopTokenStore struct{}

func (nopTokenStore) Revoke(ctx context.Context, jti string, userID uuid.UUID, expiresAt time.Time) (bool, error) {
	return true, nil
}

func (nopTokenStore) DeleteExpired(ctx context.Context) (int64, error) { return 0, nil }

func authFixture(t *testing.T) (*auth.TokenManager, *users.Service, *users.User) {
	t.Helper()
	user := &users.User{ID: uuid.New(), Username: "frida"}
	manager := auth.NewTokenManager(config.AuthConfig{
		JWTSecret:       "test-secret",
		Issuer:          "openmeet",
		AccessTokenTTL:  time.Hour,
		RefreshTokenTTL: 24 * time.Hour,
	}, nopTokenStore{})
	svc := users.NewService(&singleUserRepo{user: user}, zerolog.Nop())
	return manager, svc, user
}

func TestRequireAuthRejectsMissingHeader(t *testing.T) {
	manager, svc, _ := authFixture(t)
	handler := RequireAuth(manager, svc, "test")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/events/", nil))
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAuthRejectsGarbageToken(t *testing.T) {
	manager, svc, _ := authFixture(t)
	handler := RequireAuth(manager, svc, "test")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/events/", nil)
	r.Header.Set("Authorization", "Bearer not-a-jwt")
	handler.ServeHTTP(w, r)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAuthResolvesUser(t *testing.T) {
	manager, svc, user := authFixture(t)
	pair, err := manager.Issue(user.ID)
	require.NoError(t, err)

	var seen *users.User
	handler := RequireAuth(manager, svc, "test")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = CurrentUser(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/events/", nil)
	r.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	handler.ServeHTTP(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, seen)
	require.Equal(t, user.ID, seen.ID)
}

func TestRequireAuthRejectsRefreshTokenAsAccess(t *testing.T) {
	manager, svc, user := authFixture(t)
	pair, err := manager.Issue(user.ID)
	require.NoError(t, err)

	handler := RequireAuth(manager, svc, "test")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/events/", nil)
	r.Header.Set("Authorization", "Bearer "+pair.RefreshToken)
	handler.ServeHTTP(w, r)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}
