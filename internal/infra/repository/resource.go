package repository

import (
	"context"

	"travleap-core/internal/domain/resource"
	"travleap-core/internal/infra"
	"travleap-core/internal/infra/db"

	"github.com/google/uuid"
)

// ResourceRepository is stateless; every method runs on the DBTX the caller
// passes, pool or transaction.
type ResourceRepository struct{}

func NewResourceRepository() *ResourceRepository {
	return &ResourceRepository{}
}

func (r *ResourceRepository) FindByID(ctx context.Context, dbtx db.DBTX, id uuid.UUID) (*resource.Resource, error) {
	const query = `
SELECT id, resource_type, name, capacity, available, buffer_min, unit_price_cents
FROM resources
WHERE id = $1`

	var (
		resID          uuid.UUID
		typeStr        string
		name           string
		capacity       int
		available      int
		bufferMin      int
		unitPriceCents int
	)
	err := dbtx.QueryRow(ctx, query, id).
		Scan(&resID, &typeStr, &name, &capacity, &available, &bufferMin, &unitPriceCents)
	if err != nil {
		if infra.IsNoRows(err) {
			return nil, infra.WrapRepoErr("resource not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find resource", err)
	}

	resType, err := resource.NewType(typeStr)
	if err != nil {
		return nil, infra.WrapRepoErr("invalid resource type in store", err)
	}
	return resource.NewResource(resID, resType, name, capacity, available, bufferMin, unitPriceCents)
}

// DecrementAvailable is the atomic read-modify-write for taking inventory:
// the availability predicate is part of the UPDATE, so two simultaneous
// decrements can never both pass a stale read. Rows affected 0 means sold
// out.
func (r *ResourceRepository) DecrementAvailable(ctx context.Context, dbtx db.DBTX, id uuid.UUID, units int) (bool, error) {
	const stmt = `
UPDATE resources
SET available = available - $2, updated_at = now()
WHERE id = $1 AND available >= $2`

	tag, err := dbtx.Exec(ctx, stmt, id, units)
	if err != nil {
		return false, infra.WrapRepoErr("failed to decrement resource availability", err)
	}
	return tag.RowsAffected() == 1, nil
}

// IncrementAvailable restores inventory on cancellation or hold expiry. The
// capacity ceiling is enforced by the table check constraint; exceeding it
// means a restore was attempted twice and surfaces as a conflict.
func (r *ResourceRepository) IncrementAvailable(ctx context.Context, dbtx db.DBTX, id uuid.UUID, units int) error {
	const stmt = `
UPDATE resources
SET available = available + $2, updated_at = now()
WHERE id = $1`

	if _, err := dbtx.Exec(ctx, stmt, id, units); err != nil {
		return infra.WrapRepoErr("failed to restore resource availability", err)
	}
	return nil
}
