package repository

import (
	"context"
	"time"

	"travleap-core/internal/infra"
	"travleap-core/internal/infra/db"

	"github.com/google/uuid"
)

type IdempotencyRecord struct {
	Key                 uuid.UUID
	HolderID            uuid.UUID
	Endpoint            string
	RequestHash         string
	Status              string
	ResultReservationID *uuid.UUID
	ExpiresAt           time.Time
}

const (
	IdempotencyStatusProcessing = "processing"
	IdempotencyStatusCompleted  = "completed"
)

type IdempotencyRepository struct{}

func NewIdempotencyRepository() *IdempotencyRepository {
	return &IdempotencyRepository{}
}

// TryInsert claims the key for this holder. A duplicate-key error means a
// prior request with the same key is processing or completed; the caller
// reads the record back and decides between replay and rejection.
func (r *IdempotencyRepository) TryInsert(ctx context.Context, dbtx db.DBTX, key, holderID uuid.UUID, endpoint, requestHash string, expiresAt time.Time) error {
	const stmt = `
INSERT INTO idempotency_keys (key, holder_id, endpoint, request_hash, status, expires_at)
VALUES ($1, $2, $3, $4, 'processing', $5)`

	_, err := dbtx.Exec(ctx, stmt, key, holderID, endpoint, requestHash, expiresAt)
	if err != nil {
		if infra.IsUniqueViolation(err) {
			return infra.WrapRepoErr("idempotency key already claimed", err, infra.KindDuplicateKey)
		}
		return infra.WrapRepoErr("failed to insert idempotency key", err)
	}
	return nil
}

func (r *IdempotencyRepository) Get(ctx context.Context, dbtx db.DBTX, key, holderID uuid.UUID) (*IdempotencyRecord, error) {
	const query = `
SELECT key, holder_id, endpoint, request_hash, status, result_reservation_id, expires_at
FROM idempotency_keys
WHERE key = $1 AND holder_id = $2`

	var rec IdempotencyRecord
	err := dbtx.QueryRow(ctx, query, key, holderID).Scan(
		&rec.Key, &rec.HolderID, &rec.Endpoint, &rec.RequestHash,
		&rec.Status, &rec.ResultReservationID, &rec.ExpiresAt,
	)
	if err != nil {
		if infra.IsNoRows(err) {
			return nil, infra.WrapRepoErr("idempotency key not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to get idempotency key", err)
	}
	return &rec, nil
}

func (r *IdempotencyRepository) UpdateStatusCompleted(ctx context.Context, dbtx db.DBTX, key, holderID, resultReservationID uuid.UUID) error {
	const stmt = `
UPDATE idempotency_keys
SET status = 'completed', result_reservation_id = $3, updated_at = now()
WHERE key = $1 AND holder_id = $2`

	if _, err := dbtx.Exec(ctx, stmt, key, holderID, resultReservationID); err != nil {
		return infra.WrapRepoErr("failed to complete idempotency key", err)
	}
	return nil
}

// Delete frees a claim that never completed. Completed records stay so a
// retry replays the recorded result instead of re-running the command.
func (r *IdempotencyRepository) Delete(ctx context.Context, dbtx db.DBTX, key, holderID uuid.UUID) error {
	const stmt = `
DELETE FROM idempotency_keys
WHERE key = $1 AND holder_id = $2 AND status = 'processing'`

	if _, err := dbtx.Exec(ctx, stmt, key, holderID); err != nil {
		return infra.WrapRepoErr("failed to delete idempotency key", err)
	}
	return nil
}

func (r *IdempotencyRepository) DeleteExpired(ctx context.Context, dbtx db.DBTX, now time.Time) (int64, error) {
	tag, err := dbtx.Exec(ctx, `DELETE FROM idempotency_keys WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, infra.WrapRepoErr("failed to delete expired idempotency keys", err)
	}
	return tag.RowsAffected(), nil
}
