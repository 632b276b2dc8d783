package jobs

import (
	"context"
	"fmt"

	"github.com/riverqueue/river"
	"github.com/rs/zerolog"

	"github.com/openmeet/server/internal/auth"
	"github.com/openmeet/server/internal/metrics"
)

// TokenCleanupArgs triggers pruning of expired refresh-token blacklist
// rows. The job is idempotent and safe to run at any frequency.
type TokenCleanupArgs struct{}

func (TokenCleanupArgs) Kind() string { return JobKindTokenCleanup }

type TokenCleanupWorker struct {
	river.WorkerDefaults[TokenCleanupArgs]
	Store  auth.TokenStore
	Logger zerolog.Logger
}

func (TokenCleanupWorker) Kind() string { return JobKindTokenCleanup }

func (w TokenCleanupWorker) Work(ctx context.Context, job *river.Job[TokenCleanupArgs]) error {
	if w.Store == nil {
		return fmt.Errorf("token store not configured")
	}

	deleted, err := w.Store.DeleteExpired(ctx)
	if err != nil {
		w.Logger.Error().Err(err).Int("attempt", job.Attempt).Msg("token cleanup failed")
		return fmt.Errorf("delete expired tokens: %w", err)
	}

	metrics.RevokedTokensDeleted.Add(float64(deleted))
	w.Logger.Info().Int64("deleted", deleted).Msg("expired revoked tokens pruned")
	return nil
}

// NewWorkers registers every worker the server runs.
func NewWorkers(store auth.TokenStore, logger zerolog.Logger) (*river.Workers, error) {
	workers := river.NewWorkers()
	if err := river.AddWorkerSafely(workers, TokenCleanupWorker{Store: store, Logger: logger}); err != nil {
		return nil, fmt.Errorf("register token cleanup worker: %w", err)
	}
	return workers, nil
}
