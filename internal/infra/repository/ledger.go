package repository

import (
	"context"
	"time"

	"travleap-core/internal/domain/points"
	"travleap-core/internal/infra"
	"travleap-core/internal/infra/db"

	"github.com/google/uuid"
)

// LedgerRepository appends to the points ledger and keeps the account's
// cached balance in step. Rows are never updated or deleted; a reversal is
// another append. Both writes must run in the caller's transaction, inside
// the account's serialized section.
type LedgerRepository struct{}

func NewLedgerRepository() *LedgerRepository {
	return &LedgerRepository{}
}

func (r *LedgerRepository) Append(ctx context.Context, dbtx db.DBTX, entry *points.Entry) error {
	const insertStmt = `
INSERT INTO points_ledger (id, account_id, amount, entry_type, reservation_id, balance_after, note)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := dbtx.Exec(ctx, insertStmt,
		entry.ID(),
		entry.AccountID(),
		entry.Amount(),
		entry.EntryType().String(),
		entry.ReservationID(),
		entry.BalanceAfter(),
		entry.Note(),
	)
	if err != nil {
		if infra.IsUniqueViolation(err) {
			return infra.WrapRepoErr("ledger entry already exists for reservation", err, infra.KindDuplicateKey)
		}
		return infra.WrapRepoErr("failed to append ledger entry", err)
	}

	const balanceStmt = `
UPDATE accounts SET points_balance = $2, updated_at = now() WHERE id = $1`

	if _, err := dbtx.Exec(ctx, balanceStmt, entry.AccountID(), entry.BalanceAfter()); err != nil {
		return infra.WrapRepoErr("failed to update cached points balance", err)
	}
	return nil
}

// FindEarnByReservation returns the earn entry a refund reverses, or
// KindNotFound when confirmation never posted one.
func (r *LedgerRepository) FindEarnByReservation(ctx context.Context, dbtx db.DBTX, reservationID uuid.UUID) (*points.Entry, error) {
	query := ledgerSelect + ` WHERE reservation_id = $1 AND entry_type = 'earn'`
	return scanLedgerRow(dbtx.QueryRow(ctx, query, reservationID))
}

// FindRefundByReservation returns the recorded clawback, or KindNotFound
// when no refund was ever posted.
func (r *LedgerRepository) FindRefundByReservation(ctx context.Context, dbtx db.DBTX, reservationID uuid.UUID) (*points.Entry, error) {
	query := ledgerSelect + ` WHERE reservation_id = $1 AND entry_type = 'refund'`
	return scanLedgerRow(dbtx.QueryRow(ctx, query, reservationID))
}

// HasRefundForReservation backs the exactly-once refund rule.
func (r *LedgerRepository) HasRefundForReservation(ctx context.Context, dbtx db.DBTX, reservationID uuid.UUID) (bool, error) {
	const query = `
SELECT EXISTS (
    SELECT 1 FROM points_ledger WHERE reservation_id = $1 AND entry_type = 'refund'
)`

	var exists bool
	if err := dbtx.QueryRow(ctx, query, reservationID).Scan(&exists); err != nil {
		return false, infra.WrapRepoErr("failed to check refund existence", err)
	}
	return exists, nil
}

func (r *LedgerRepository) FindByAccount(ctx context.Context, dbtx db.DBTX, accountID uuid.UUID) ([]*points.Entry, error) {
	query := ledgerSelect + ` WHERE account_id = $1 ORDER BY created_at`

	rows, err := dbtx.Query(ctx, query, accountID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list ledger entries", err)
	}
	defer rows.Close()

	var out []*points.Entry
	for rows.Next() {
		entry, err := scanLedger(rows.Scan)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to scan ledger row", err)
		}
		out = append(out, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate ledger rows", err)
	}
	return out, nil
}

const ledgerSelect = `
SELECT id, account_id, amount, entry_type, reservation_id, balance_after, note, created_at
FROM points_ledger`

func scanLedgerRow(row interface{ Scan(dest ...any) error }) (*points.Entry, error) {
	entry, err := scanLedger(row.Scan)
	if err != nil {
		if infra.IsNoRows(err) {
			return nil, infra.WrapRepoErr("ledger entry not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to scan ledger entry", err)
	}
	return entry, nil
}

func scanLedger(scan func(dest ...any) error) (*points.Entry, error) {
	var (
		id            uuid.UUID
		accountID     uuid.UUID
		amount        int
		typeStr       string
		reservationID *uuid.UUID
		balanceAfter  int
		note          string
		createdAt     time.Time
	)
	if err := scan(&id, &accountID, &amount, &typeStr, &reservationID, &balanceAfter, &note, &createdAt); err != nil {
		return nil, err
	}
	return points.Reconstruct(id, accountID, amount, points.EntryType(typeStr), reservationID, balanceAfter, note, createdAt), nil
}
