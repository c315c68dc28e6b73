package usecase

import (
	"context"

	"travleap-core/internal/domain/points"
	"travleap-core/internal/infra"
	"travleap-core/internal/infra/db"
	"travleap-core/internal/pkg/config"
	"travleap-core/internal/pkg/errs"

	"github.com/google/uuid"
)

// pointsLockKey serializes ledger writes per account so balance_after is
// computed against a stable balance.
func pointsLockKey(accountID uuid.UUID) string {
	return "points:" + accountID.String()
}

//go:generate mockgen -source=points.go -destination=../../tests/mock/usecase/points_mock.go -package=usecase

type PointsUseCase interface {
	Balance(ctx context.Context, accountID uuid.UUID) (int, error)
	History(ctx context.Context, accountID uuid.UUID) ([]*points.Entry, error)
	VerifyLedger(ctx context.Context, accountID uuid.UUID) (int, error)
}

// ErrLedgerDiverged reports a cached balance that no longer matches the
// ledger replay. It surfaces as a conflict on the admin consistency endpoint.
var ErrLedgerDiverged = errs.New("cached balance diverged from ledger replay")

// PointsService posts ledger entries for the booking flow and serves
// balance reads. Earn and refund run inside the caller's transaction, under
// the account's points lock held by the caller.
type PointsService struct {
	accountRepo     AccountRepository
	ledgerRepo      LedgerRepository
	reader          db.DBTX
	earnRatePercent int
}

func NewPointsService(
	accountRepo AccountRepository,
	ledgerRepo LedgerRepository,
	reader db.DBTX,
	cfg config.PointsConfig,
) *PointsService {
	return &PointsService{
		accountRepo:     accountRepo,
		ledgerRepo:      ledgerRepo,
		reader:          reader,
		earnRatePercent: cfg.EarnRatePercent,
	}
}

// EarnForReservation posts the confirmation earn, denominated in cents.
// A second post for the same reservation hits the ledger's unique index and
// is treated as already done, so a confirm retry never double-earns.
func (s *PointsService) EarnForReservation(ctx context.Context, tx db.DBTX, accountID, reservationID uuid.UUID, priceCents int) (*points.Entry, error) {
	acc, err := s.accountRepo.FindByIDForUpdate(ctx, tx, accountID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.ErrAccountNotFound
		}
		return nil, err
	}

	amount := priceCents * s.earnRatePercent / 100
	entry, err := points.NewEarn(accountID, amount, acc.PointsBalance(), reservationID)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrDomainValidation)
	}

	if err := s.ledgerRepo.Append(ctx, tx, entry); err != nil {
		if infra.IsKind(err, infra.KindDuplicateKey) {
			return nil, nil
		}
		return nil, err
	}
	return entry, nil
}

// RefundForReservation claws back the reservation's earn, bounded by the
// current balance. Returns (nil, nil) when no earn was ever posted, and
// ErrRefundAlreadyPosted when the clawback already happened.
func (s *PointsService) RefundForReservation(ctx context.Context, tx db.DBTX, accountID, reservationID uuid.UUID) (*points.Entry, error) {
	earn, err := s.ledgerRepo.FindEarnByReservation(ctx, tx, reservationID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, nil
		}
		return nil, err
	}

	refunded, err := s.ledgerRepo.HasRefundForReservation(ctx, tx, reservationID)
	if err != nil {
		return nil, err
	}
	if refunded {
		return nil, errs.ErrRefundAlreadyPosted
	}

	acc, err := s.accountRepo.FindByIDForUpdate(ctx, tx, accountID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.ErrAccountNotFound
		}
		return nil, err
	}

	entry, err := points.NewRefund(accountID, earn.Amount(), acc.PointsBalance(), reservationID)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrDomainValidation)
	}

	if err := s.ledgerRepo.Append(ctx, tx, entry); err != nil {
		if infra.IsKind(err, infra.KindDuplicateKey) {
			return nil, errs.ErrRefundAlreadyPosted
		}
		return nil, err
	}
	return entry, nil
}

func (s *PointsService) Balance(ctx context.Context, accountID uuid.UUID) (int, error) {
	acc, err := s.accountRepo.FindByID(ctx, s.reader, accountID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return 0, errs.ErrAccountNotFound
		}
		return 0, errs.Wrap(err, "failed to read account balance")
	}
	return acc.PointsBalance(), nil
}

func (s *PointsService) History(ctx context.Context, accountID uuid.UUID) ([]*points.Entry, error) {
	entries, err := s.ledgerRepo.FindByAccount(ctx, s.reader, accountID)
	if err != nil {
		return nil, errs.Wrap(err, "failed to read ledger history")
	}
	return entries, nil
}

// VerifyLedger replays an account's ledger and checks it against the cached
// balance. Used by the admin consistency endpoint.
func (s *PointsService) VerifyLedger(ctx context.Context, accountID uuid.UUID) (int, error) {
	entries, err := s.ledgerRepo.FindByAccount(ctx, s.reader, accountID)
	if err != nil {
		return 0, errs.Wrap(err, "failed to read ledger for replay")
	}
	replayed, err := points.Replay(entries)
	if err != nil {
		return 0, err
	}

	acc, err := s.accountRepo.FindByID(ctx, s.reader, accountID)
	if err != nil {
		return 0, errs.Wrap(err, "failed to read account for replay check")
	}
	if acc.PointsBalance() != replayed {
		return 0, ErrLedgerDiverged
	}
	return replayed, nil
}

// RecordedRefund reads back the refund entry posted for a reservation,
// or (nil, nil) when no clawback was ever recorded.
func (s *PointsService) RecordedRefund(ctx context.Context, tx db.DBTX, reservationID uuid.UUID) (*points.Entry, error) {
	entry, err := s.ledgerRepo.FindRefundByReservation(ctx, tx, reservationID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return entry, nil
}
