package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/openmeet/server/internal/auth"
)

var _ auth.TokenStore = (*TokenRepository)(nil)

// TokenRepository records refresh-token JTIs that must not be honored
// again, either because they were rotated or explicitly revoked.
type TokenRepository struct {
	pool *pgxpool.Pool
}

// Revoke blacklists a refresh token. It reports false when the JTI was
// already on the blacklist; a single INSERT makes the claim atomic, so
// concurrent refreshes of the same token produce exactly one winner.
func (r *TokenRepository) Revoke(ctx context.Context, jti string, userID uuid.UUID, expiresAt time.Time) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
INSERT INTO revoked_tokens (jti, user_id, expires_at)
VALUES ($1, $2, $3)
ON CONFLICT (jti) DO NOTHING
`, jti, userID, expiresAt)
	if err != nil {
		return false, fmt.Errorf("revoke token: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// DeleteExpired prunes blacklist entries whose tokens can no longer be
// presented anyway.
func (r *TokenRepository) DeleteExpired(ctx context.Context) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM revoked_tokens WHERE expires_at <= now()`)
	if err != nil {
		return 0, fmt.Errorf("delete expired tokens: %w", err)
	}
	return tag.RowsAffected(), nil
}
