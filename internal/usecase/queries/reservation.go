package queries

import (
	"context"

	"travleap-core/internal/infra"
	"travleap-core/internal/pkg/errs"
	"travleap-core/internal/usecase/readmodel"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:generate mockgen -source=reservation.go -destination=../../../tests/mock/queries/reservation_mock.go -package=queries

// ReservationViews is the read side: denormalized projections straight off
// the pool, no domain reconstruction.
type ReservationViews interface {
	GetByID(ctx context.Context, id uuid.UUID) (*readmodel.ReservationRM, error)
	ListByHolder(ctx context.Context, holderID uuid.UUID) ([]*readmodel.ReservationListRM, error)
	LedgerHistory(ctx context.Context, accountID uuid.UUID) ([]*readmodel.LedgerEntryRM, error)
}

type reservationViewsImpl struct {
	pool *pgxpool.Pool
}

func NewReservationQueries(pool *pgxpool.Pool) ReservationViews {
	return &reservationViewsImpl{pool: pool}
}

func (q *reservationViewsImpl) GetByID(ctx context.Context, id uuid.UUID) (*readmodel.ReservationRM, error) {
	const query = `
SELECT r.id, r.resource_id, res.resource_type, res.name, r.holder_id, a.email,
       r.start_at, r.end_at, r.status, r.units, r.price_cents,
       r.hold_expires_at, r.voucher_code, r.version, r.cancel_reason,
       r.checked_in_at, r.checked_out_at, r.overage_fee_cents,
       r.created_at, r.updated_at
FROM reservations r
JOIN resources res ON res.id = r.resource_id
JOIN accounts a ON a.id = r.holder_id
WHERE r.id = $1`

	var rm readmodel.ReservationRM
	err := q.pool.QueryRow(ctx, query, id).Scan(
		&rm.ID, &rm.ResourceID, &rm.ResourceType, &rm.ResourceName, &rm.HolderID, &rm.HolderEmail,
		&rm.StartAt, &rm.EndAt, &rm.Status, &rm.Units, &rm.PriceCents,
		&rm.HoldExpiresAt, &rm.VoucherCode, &rm.Version, &rm.CancelReason,
		&rm.CheckedInAt, &rm.CheckedOutAt, &rm.OverageFeeCents,
		&rm.CreatedAt, &rm.UpdatedAt,
	)
	if err != nil {
		if infra.IsNoRows(err) {
			return nil, errs.ErrReservationNotFound
		}
		return nil, infra.WrapRepoErr("failed to read reservation view", err)
	}
	return &rm, nil
}

func (q *reservationViewsImpl) ListByHolder(ctx context.Context, holderID uuid.UUID) ([]*readmodel.ReservationListRM, error) {
	const query = `
SELECT r.id, r.resource_id, res.name, r.start_at, r.end_at, r.status,
       r.units, r.price_cents, r.created_at
FROM reservations r
JOIN resources res ON res.id = r.resource_id
WHERE r.holder_id = $1
ORDER BY r.created_at DESC`

	rows, err := q.pool.Query(ctx, query, holderID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list reservation views", err)
	}
	defer rows.Close()

	var out []*readmodel.ReservationListRM
	for rows.Next() {
		var rm readmodel.ReservationListRM
		if err := rows.Scan(&rm.ID, &rm.ResourceID, &rm.ResourceName, &rm.StartAt, &rm.EndAt,
			&rm.Status, &rm.Units, &rm.PriceCents, &rm.CreatedAt); err != nil {
			return nil, infra.WrapRepoErr("failed to scan reservation view", err)
		}
		out = append(out, &rm)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate reservation views", err)
	}
	return out, nil
}

func (q *reservationViewsImpl) LedgerHistory(ctx context.Context, accountID uuid.UUID) ([]*readmodel.LedgerEntryRM, error) {
	const query = `
SELECT id, amount, entry_type, reservation_id, balance_after, note, created_at
FROM points_ledger
WHERE account_id = $1
ORDER BY created_at DESC`

	rows, err := q.pool.Query(ctx, query, accountID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list ledger views", err)
	}
	defer rows.Close()

	var out []*readmodel.LedgerEntryRM
	for rows.Next() {
		var rm readmodel.LedgerEntryRM
		if err := rows.Scan(&rm.ID, &rm.Amount, &rm.EntryType, &rm.ReservationID,
			&rm.BalanceAfter, &rm.Note, &rm.CreatedAt); err != nil {
			return nil, infra.WrapRepoErr("failed to scan ledger view", err)
		}
		out = append(out, &rm)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate ledger views", err)
	}
	return out, nil
}
