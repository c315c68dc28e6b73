package repository

import (
	"context"
	"time"

	"travleap-core/internal/infra"
	"travleap-core/internal/infra/db"
)

// LockRepository persists the keyed mutual-exclusion records. Acquisition and
// the expiry check are one conditional upsert so there is no check-then-act
// window between two handler processes.
type LockRepository struct {
	db db.DBTX
}

func NewLockRepository(dbtx db.DBTX) *LockRepository {
	return &LockRepository{db: dbtx}
}

// Acquire installs a lock for key unless a non-expired lock exists. The
// insert and the expiry predicate execute as a single statement; rows
// affected 0 means another owner holds the key. Expired rows are reclaimed
// here, lazily, on the next acquire attempt for the same key.
func (r *LockRepository) Acquire(ctx context.Context, key, ownerToken string, ttl time.Duration, now time.Time) (bool, error) {
	const stmt = `
INSERT INTO inventory_locks (key, owner_token, expires_at)
VALUES ($1, $2, $3)
ON CONFLICT (key) DO UPDATE
SET owner_token = EXCLUDED.owner_token, expires_at = EXCLUDED.expires_at
WHERE inventory_locks.expires_at <= $4`

	tag, err := r.db.Exec(ctx, stmt, key, ownerToken, now.Add(ttl), now)
	if err != nil {
		return false, infra.WrapRepoErr("failed to acquire inventory lock", err)
	}
	return tag.RowsAffected() == 1, nil
}

// Release deletes the lock only when ownerToken still matches; a mismatched
// release (the TTL lapsed and someone else acquired the key) is a no-op.
func (r *LockRepository) Release(ctx context.Context, key, ownerToken string) (bool, error) {
	const stmt = `DELETE FROM inventory_locks WHERE key = $1 AND owner_token = $2`

	tag, err := r.db.Exec(ctx, stmt, key, ownerToken)
	if err != nil {
		return false, infra.WrapRepoErr("failed to release inventory lock", err)
	}
	return tag.RowsAffected() == 1, nil
}

// DeleteExpired reclaims abandoned keys. Not required for correctness (the
// acquire predicate already ignores expired rows); used by the periodic
// sweep for table hygiene.
func (r *LockRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	const stmt = `DELETE FROM inventory_locks WHERE expires_at <= $1`

	tag, err := r.db.Exec(ctx, stmt, now)
	if err != nil {
		return 0, infra.WrapRepoErr("failed to delete expired inventory locks", err)
	}
	return tag.RowsAffected(), nil
}
