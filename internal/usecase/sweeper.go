package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"travleap-core/internal/domain/reservation"
	"travleap-core/internal/infra/db"
	"travleap-core/internal/pkg/clock"
	"travleap-core/internal/pkg/config"
	"travleap-core/internal/pkg/errs"
)

const sweepBatchSize = 100

// HoldSweeper is the safety net behind lazy hold expiry: holds are voided
// on access the moment they lapse, and the sweeper catches the ones nobody
// touched. Each hold is expired under its resource lock, so the sweeper and
// a late confirm never both win.
type HoldSweeper struct {
	reservationRepo  ReservationRepository
	resourceRepo     ResourceRepository
	notificationRepo NotificationRepository
	lockManager      *LockManager
	txm              TxManager
	reader           db.DBTX
	clock            clock.Clock
	interval         time.Duration
}

func NewHoldSweeper(
	reservationRepo ReservationRepository,
	resourceRepo ResourceRepository,
	notificationRepo NotificationRepository,
	lockManager *LockManager,
	txm TxManager,
	reader db.DBTX,
	clk clock.Clock,
	cfg config.HoldConfig,
) *HoldSweeper {
	return &HoldSweeper{
		reservationRepo:  reservationRepo,
		resourceRepo:     resourceRepo,
		notificationRepo: notificationRepo,
		lockManager:      lockManager,
		txm:              txm,
		reader:           reader,
		clock:            clk,
		interval:         cfg.SweepInterval,
	}
}

// Run blocks until ctx is cancelled.
func (s *HoldSweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.SweepOnce(ctx); err != nil {
				slog.Error("hold sweep failed", "error", err)
			}
		}
	}
}

func (s *HoldSweeper) SweepOnce(ctx context.Context) error {
	now := s.clock.Now()

	if _, err := s.lockManager.SweepExpired(ctx); err != nil {
		slog.Warn("expired lock cleanup failed", "error", err)
	}

	candidates, err := s.reservationRepo.FindExpiredHolds(ctx, s.reader, now, sweepBatchSize)
	if err != nil {
		return err
	}

	for _, candidate := range candidates {
		if err := s.expireOne(ctx, candidate); err != nil {
			// A busy lock means an in-flight confirm or cancel owns the
			// resource; that path settles the hold itself.
			if errors.Is(err, errs.ErrLockBusy) {
				continue
			}
			slog.Error("failed to expire hold",
				"reservation_id", candidate.ID(),
				"error", err)
		}
	}
	return nil
}

func (s *HoldSweeper) expireOne(ctx context.Context, candidate *reservation.Reservation) error {
	return s.lockManager.WithLock(ctx, candidate.ResourceLockKey(), func(ctx context.Context) error {
		return s.txm.RunInTx(ctx, func(tx db.DBTX) error {
			entity, err := s.reservationRepo.FindByID(ctx, tx, candidate.ID())
			if err != nil {
				return err
			}

			now := s.clock.Now()
			// Someone confirmed or cancelled between the listing and the lock.
			if !entity.HoldLapsed(now) {
				return nil
			}

			expectedVersion := entity.Version()
			if err := entity.ExpireHold(now); err != nil {
				return err
			}
			ok, err := s.reservationRepo.UpdateState(ctx, tx, entity, expectedVersion)
			if err != nil {
				return err
			}
			if !ok {
				return errs.ErrVersionConflict
			}
			if err := s.resourceRepo.IncrementAvailable(ctx, tx, entity.ResourceID(), entity.Units()); err != nil {
				return err
			}

			payload := []byte(`{"reservation_id":"` + entity.ID().String() + `"}`)
			if err := s.notificationRepo.CreateJob(ctx, tx, "hold_expired", "reservation", payload, now); err != nil {
				return err
			}

			slog.Info("expired lapsed hold",
				"reservation_id", entity.ID(),
				"resource_id", entity.ResourceID())
			return nil
		})
	})
}
