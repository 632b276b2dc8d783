package jobs

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/rivertype"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type memoryTokenStore struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	fail    error
}

func (s *memoryTokenStore) Revoke(ctx context.Context, jti string, userID uuid.UUID, expiresAt time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.revoked[jti]; ok {
		return false, nil
	}
	s.revoked[jti] = expiresAt
	return true, nil
}

func (s *memoryTokenStore) DeleteExpired(ctx context.Context) (int64, error) {
	if s.fail != nil {
		return 0, s.fail
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	now := time.Now()
	for jti, exp := range s.revoked {
		if !exp.After(now) {
			delete(s.revoked, jti)
			n++
		}
	}
	return n, nil
}

func TestTokenCleanupRemovesOnlyExpired(t *testing.T) {
	store := &memoryTokenStore{revoked: map[string]time.Time{
		"expired": time.Now().Add(-time.Hour),
		"live":    time.Now().Add(time.Hour),
	}}
	worker := TokenCleanupWorker{Store: store, Logger: zerolog.Nop()}

	err := worker.Work(context.Background(), &river.Job[TokenCleanupArgs]{})
	require.NoError(t, err)

	require.NotContains(t, store.revoked, "expired")
	require.Contains(t, store.revoked, "live")
}

func TestTokenCleanupWithoutStoreFails(t *testing.T) {
	worker := TokenCleanupWorker{Logger: zerolog.Nop()}
	err := worker.Work(context.Background(), &river.Job[TokenCleanupArgs]{})
	require.Error(t, err)
}

func TestRetryPolicyBacksOffExponentially(t *testing.T) {
	policy := NewRetryPolicy()
	attempted := time.Now()

	first := policy.NextRetry(&rivertype.JobRow{Kind: JobKindTokenCleanup, Attempt: 1, AttemptedAt: &attempted})
	second := policy.NextRetry(&rivertype.JobRow{Kind: JobKindTokenCleanup, Attempt: 2, AttemptedAt: &attempted})

	require.Equal(t, attempted.Add(1*time.Minute), first)
	require.Equal(t, attempted.Add(2*time.Minute), second)
}

func TestRetryPolicyCapsAtMaxDelay(t *testing.T) {
	policy := NewRetryPolicy()
	attempted := time.Now()

	late := policy.NextRetry(&rivertype.JobRow{Kind: JobKindTokenCleanup, Attempt: 20, AttemptedAt: &attempted})
	require.Equal(t, attempted.Add(1*time.Hour), late)
}

func TestNewWorkersRegistersTokenCleanup(t *testing.T) {
	store := &memoryTokenStore{revoked: map[string]time.Time{}}
	workers, err := NewWorkers(store, zerolog.Nop())
	require.NoError(t, err)
	require.NotNil(t, workers)
}
