package repository

import (
	"context"
	"time"

	"travleap-core/internal/domain/reservation"
	"travleap-core/internal/domain/resource"
	"travleap-core/internal/infra"
	"travleap-core/internal/infra/db"

	"github.com/google/uuid"
)

// ReservationRepository is stateless; every method runs on the DBTX the
// caller passes, pool or transaction.
type ReservationRepository struct{}

func NewReservationRepository() *ReservationRepository {
	return &ReservationRepository{}
}

const reservationColumns = `
id, resource_id, resource_type, holder_id, start_at, end_at, status, units,
price_cents, hold_expires_at, voucher_code, payment_proof, version,
cancel_reason, checked_in_at, checked_in_by, checked_out_at, checked_out_by,
overage_fee_cents, created_at, updated_at`

func (r *ReservationRepository) Create(ctx context.Context, dbtx db.DBTX, res *reservation.Reservation) error {
	const stmt = `
INSERT INTO reservations (
    id, resource_id, resource_type, holder_id, start_at, end_at, status,
    units, price_cents, hold_expires_at, version
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := dbtx.Exec(ctx, stmt,
		res.ID(),
		res.ResourceID(),
		res.ResourceType().String(),
		res.HolderID(),
		res.TimeRange().Start(),
		res.TimeRange().End(),
		res.Status().String(),
		res.Units(),
		res.PriceCents(),
		res.HoldExpiresAt(),
		res.Version(),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to create reservation", err)
	}
	return nil
}

func (r *ReservationRepository) FindByID(ctx context.Context, dbtx db.DBTX, id uuid.UUID) (*reservation.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = $1`
	return r.scanOne(dbtx.QueryRow(ctx, query, id))
}

// UpdateState persists a transition with the optimistic version guard: the
// UPDATE carries WHERE version = expected, incrementing on success. Rows
// affected 0 means a concurrent modification; the caller retries the whole
// read-transition-write cycle.
func (r *ReservationRepository) UpdateState(ctx context.Context, dbtx db.DBTX, res *reservation.Reservation, expectedVersion int) (bool, error) {
	const stmt = `
UPDATE reservations
SET status = $2, end_at = $3, hold_expires_at = $4, payment_proof = $5,
    cancel_reason = $6, checked_in_at = $7, checked_in_by = $8,
    checked_out_at = $9, checked_out_by = $10, overage_fee_cents = $11,
    version = version + 1, updated_at = now()
WHERE id = $1 AND version = $12`

	tag, err := dbtx.Exec(ctx, stmt,
		res.ID(),
		res.Status().String(),
		res.TimeRange().End(),
		res.HoldExpiresAt(),
		res.PaymentProof(),
		res.CancelReason(),
		res.CheckedInAt(),
		res.CheckedInBy(),
		res.CheckedOutAt(),
		res.CheckedOutBy(),
		res.OverageFeeCents(),
		expectedVersion,
	)
	if err != nil {
		return false, infra.WrapRepoErr("failed to update reservation state", err)
	}
	return tag.RowsAffected() == 1, nil
}

// SetVoucherCode attaches an issued code. The partial unique index on
// (resource_type, voucher_code) is the race-resolution point: a concurrent
// issuance of the same code surfaces as KindDuplicateKey and the caller
// retries with a fresh code.
func (r *ReservationRepository) SetVoucherCode(ctx context.Context, dbtx db.DBTX, id uuid.UUID, code string) error {
	const stmt = `
UPDATE reservations
SET voucher_code = $2, updated_at = now()
WHERE id = $1 AND voucher_code IS NULL`

	tag, err := dbtx.Exec(ctx, stmt, id, code)
	if err != nil {
		if infra.IsUniqueViolation(err) {
			return infra.WrapRepoErr("voucher code collision", err, infra.KindDuplicateKey)
		}
		return infra.WrapRepoErr("failed to set voucher code", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("voucher code already set", nil, infra.KindConflict)
	}
	return nil
}

// FindBlocking is the time-range conflict check: it returns the earliest
// reservation on the resource whose interval overlaps [start, end) once the
// symmetric buffer is applied on both sides. Only states that occupy
// inventory participate. Must be called while holding the resource's
// inventory lock.
func (r *ReservationRepository) FindBlocking(
	ctx context.Context,
	dbtx db.DBTX,
	resourceID uuid.UUID,
	start, end time.Time,
	bufferMin int,
	excludeID *uuid.UUID,
) (*reservation.Reservation, error) {
	query := `SELECT ` + reservationColumns + `
FROM reservations
WHERE resource_id = $1
  AND status IN ('hold', 'confirmed', 'checked_in')
  AND end_at IS NOT NULL
  AND start_at < $2
  AND $3 < end_at + make_interval(mins => $4)
  AND ($5::uuid IS NULL OR id <> $5)
ORDER BY start_at
LIMIT 1`

	endPlusBuffer := end.Add(time.Duration(bufferMin) * time.Minute)
	res, err := r.scanOne(dbtx.QueryRow(ctx, query, resourceID, endPlusBuffer, start, bufferMin, excludeID))
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return res, nil
}

// FindExpiredHolds lists lapsed holds for the sweeper. Each candidate is
// re-checked under its resource lock before being expired.
func (r *ReservationRepository) FindExpiredHolds(ctx context.Context, dbtx db.DBTX, now time.Time, limit int) ([]*reservation.Reservation, error) {
	query := `SELECT ` + reservationColumns + `
FROM reservations
WHERE status = 'hold' AND hold_expires_at < $1
ORDER BY hold_expires_at
LIMIT $2`

	rows, err := dbtx.Query(ctx, query, now, limit)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list expired holds", err)
	}
	defer rows.Close()

	var out []*reservation.Reservation
	for rows.Next() {
		res, err := scanReservation(rows.Scan)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to scan expired hold row", err)
		}
		out = append(out, res)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate expired hold rows", err)
	}
	return out, nil
}

func (r *ReservationRepository) scanOne(row interface{ Scan(dest ...any) error }) (*reservation.Reservation, error) {
	res, err := scanReservation(row.Scan)
	if err != nil {
		if infra.IsNoRows(err) {
			return nil, infra.WrapRepoErr("reservation not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to scan reservation", err)
	}
	return res, nil
}

func scanReservation(scan func(dest ...any) error) (*reservation.Reservation, error) {
	var (
		id              uuid.UUID
		resourceID      uuid.UUID
		typeStr         string
		holderID        uuid.UUID
		startAt         time.Time
		endAt           *time.Time
		statusStr       string
		units           int
		priceCents      int
		holdExpiresAt   *time.Time
		voucherCode     *string
		paymentProof    *string
		version         int
		cancelReason    *string
		checkedInAt     *time.Time
		checkedInBy     *uuid.UUID
		checkedOutAt    *time.Time
		checkedOutBy    *uuid.UUID
		overageFeeCents int
		createdAt       time.Time
		updatedAt       time.Time
	)

	err := scan(
		&id, &resourceID, &typeStr, &holderID, &startAt, &endAt, &statusStr,
		&units, &priceCents, &holdExpiresAt, &voucherCode, &paymentProof,
		&version, &cancelReason, &checkedInAt, &checkedInBy, &checkedOutAt,
		&checkedOutBy, &overageFeeCents, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	resType, err := resource.NewType(typeStr)
	if err != nil {
		return nil, err
	}
	status, err := reservation.NewStatus(statusStr)
	if err != nil {
		return nil, err
	}
	timeRange, err := reservation.NewTimeRange(startAt, endAt)
	if err != nil {
		return nil, err
	}

	return reservation.Reconstruct(
		id, resourceID, resType, holderID, timeRange, status, units,
		priceCents, holdExpiresAt, voucherCode, paymentProof, version,
		cancelReason, checkedInAt, checkedInBy, checkedOutAt, checkedOutBy,
		overageFeeCents, createdAt, updatedAt,
	), nil
}
