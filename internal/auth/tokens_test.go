package auth

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/openmeet/server/internal/config"
)

type memoryTokenStore struct {
	mu      sync.Mutex
	revoked map[string]time.Time
}

func newMemoryTokenStore() *memoryTokenStore {
	return &memoryTokenStore{revoked: make(map[string]time.Time)}
}

func (s *memoryTokenStore) Revoke(_ context.Context, jti string, _ uuid.UUID, expiresAt time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.revoked[jti]; exists {
		return false, nil
	}
	s.revoked[jti] = expiresAt
	return true, nil
}

func (s *memoryTokenStore) DeleteExpired(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var deleted int64
	now := time.Now()
	for jti, expiresAt := range s.revoked {
		if expiresAt.Before(now) {
			delete(s.revoked, jti)
			deleted++
		}
	}
	return deleted, nil
}

func testManager(t *testing.T) (*TokenManager, *memoryTokenStore) {
	t.Helper()
	store := newMemoryTokenStore()
	manager := NewTokenManager(config.AuthConfig{
		JWTSecret:       "test-secret",
		Issuer:          "openmeet-test",
		AccessTokenTTL:  time.Hour,
		RefreshTokenTTL: 24 * time.Hour,
	}, store)
	return manager, store
}

func TestIssueAndVerifyAccess(t *testing.T) {
	manager, _ := testManager(t)
	userID := uuid.New()

	pair, err := manager.Issue(userID)
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	require.NotEqual(t, pair.AccessToken, pair.RefreshToken)

	got, err := manager.VerifyAccess(pair.AccessToken)
	require.NoError(t, err)
	require.Equal(t, userID, got)
}

func TestVerifyAccessRejectsRefreshToken(t *testing.T) {
	manager, _ := testManager(t)

	pair, err := manager.Issue(uuid.New())
	require.NoError(t, err)

	_, err = manager.VerifyAccess(pair.RefreshToken)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyAccessRejectsMalformed(t *testing.T) {
	manager, _ := testManager(t)

	_, err := manager.VerifyAccess("not.a.jwt")
	require.ErrorIs(t, err, ErrInvalidToken)

	_, err = manager.VerifyAccess("")
	require.ErrorIs(t, err, ErrMissingToken)
}

func TestVerifyAccessRejectsExpired(t *testing.T) {
	store := newMemoryTokenStore()
	manager := NewTokenManager(config.AuthConfig{
		JWTSecret:       "test-secret",
		Issuer:          "openmeet-test",
		AccessTokenTTL:  -time.Minute,
		RefreshTokenTTL: 24 * time.Hour,
	}, store)

	pair, err := manager.Issue(uuid.New())
	require.NoError(t, err)

	_, err = manager.VerifyAccess(pair.AccessToken)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyAccessRejectsWrongSecret(t *testing.T) {
	manager, _ := testManager(t)
	other := NewTokenManager(config.AuthConfig{
		JWTSecret:       "other-secret",
		Issuer:          "openmeet-test",
		AccessTokenTTL:  time.Hour,
		RefreshTokenTTL: 24 * time.Hour,
	}, newMemoryTokenStore())

	pair, err := other.Issue(uuid.New())
	require.NoError(t, err)

	_, err = manager.VerifyAccess(pair.AccessToken)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefreshRotatesPair(t *testing.T) {
	manager, _ := testManager(t)
	userID := uuid.New()

	pair, err := manager.Issue(userID)
	require.NoError(t, err)

	next, err := manager.Refresh(context.Background(), pair.RefreshToken)
	require.NoError(t, err)
	require.NotEqual(t, pair.RefreshToken, next.RefreshToken)

	got, err := manager.VerifyAccess(next.AccessToken)
	require.NoError(t, err)
	require.Equal(t, userID, got)
}

func TestRefreshTokenSingleUse(t *testing.T) {
	manager, _ := testManager(t)

	pair, err := manager.Issue(uuid.New())
	require.NoError(t, err)

	_, err = manager.Refresh(context.Background(), pair.RefreshToken)
	require.NoError(t, err)

	_, err = manager.Refresh(context.Background(), pair.RefreshToken)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestRejectsTokenWithoutExpiry(t *testing.T) {
	manager, _ := testManager(t)
	userID := uuid.New()

	// Correctly signed but missing exp. Only a secret holder can mint
	// one; parse must reject it instead of dereferencing a nil claim.
	for _, tokenType := range []string{tokenTypeAccess, tokenTypeRefresh} {
		claims := &Claims{
			TokenType: tokenType,
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:  userID.String(),
				Issuer:   "openmeet-test",
				ID:       uuid.NewString(),
				IssuedAt: jwt.NewNumericDate(time.Now()),
			},
		}
		signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
		require.NoError(t, err)

		_, err = manager.VerifyAccess(signed)
		require.ErrorIs(t, err, ErrInvalidToken)
		_, err = manager.Refresh(context.Background(), signed)
		require.ErrorIs(t, err, ErrInvalidToken)
	}
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	manager, _ := testManager(t)

	pair, err := manager.Issue(uuid.New())
	require.NoError(t, err)

	_, err = manager.Refresh(context.Background(), pair.AccessToken)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestConcurrentRefreshOnlyOneWins(t *testing.T) {
	manager, _ := testManager(t)

	pair, err := manager.Issue(uuid.New())
	require.NoError(t, err)

	const attempts = 20
	var wg sync.WaitGroup
	results := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := manager.Refresh(context.Background(), pair.RefreshToken)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var successes int
	for err := range results {
		if err == nil {
			successes++
		} else {
			require.ErrorIs(t, err, ErrInvalidToken)
		}
	}
	require.Equal(t, 1, successes)
}

func TestRevokeBlocksRefresh(t *testing.T) {
	manager, _ := testManager(t)

	pair, err := manager.Issue(uuid.New())
	require.NoError(t, err)

	require.NoError(t, manager.Revoke(context.Background(), pair.RefreshToken))

	_, err = manager.Refresh(context.Background(), pair.RefreshToken)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestRevokeIdempotent(t *testing.T) {
	manager, _ := testManager(t)

	pair, err := manager.Issue(uuid.New())
	require.NoError(t, err)

	require.NoError(t, manager.Revoke(context.Background(), pair.RefreshToken))
	require.NoError(t, manager.Revoke(context.Background(), pair.RefreshToken))
}

func TestRevokeRejectsMalformed(t *testing.T) {
	manager, _ := testManager(t)

	err := manager.Revoke(context.Background(), "garbage")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestIssueDoesNotTouchExistingPairs(t *testing.T) {
	manager, _ := testManager(t)
	userID := uuid.New()

	first, err := manager.Issue(userID)
	require.NoError(t, err)
	second, err := manager.Issue(userID)
	require.NoError(t, err)

	// Both pairs stay usable.
	_, err = manager.VerifyAccess(first.AccessToken)
	require.NoError(t, err)
	_, err = manager.Refresh(context.Background(), second.RefreshToken)
	require.NoError(t, err)
	_, err = manager.Refresh(context.Background(), first.RefreshToken)
	require.NoError(t, err)
}

func TestTokenFromHeader(t *testing.T) {
	token, err := TokenFromHeader("Bearer abc.def.ghi")
	require.NoError(t, err)
	require.Equal(t, "abc.def.ghi", token)

	_, err = TokenFromHeader("")
	require.ErrorIs(t, err, ErrMissingToken)

	_, err = TokenFromHeader("Basic abc")
	require.ErrorIs(t, err, ErrMissingToken)
}
