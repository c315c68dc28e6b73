package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"time"

	"travleap-core/internal/domain/account"
	"travleap-core/internal/domain/reservation"
	"travleap-core/internal/infra/db"
	"travleap-core/internal/pkg/clock"
	"travleap-core/internal/pkg/config"
	"travleap-core/internal/pkg/errs"

	"github.com/google/uuid"
)

var ErrInspectorRoleRequired = errs.New("check-in and check-out require a staff account")

// errTransitionApplied signals that the reservation is already in the target
// state and the stored record should be returned without writing.
var errTransitionApplied = errs.New("transition already applied")

//go:generate mockgen -source=inspection.go -destination=../../tests/mock/usecase/inspection_mock.go -package=usecase

type InspectionUseCase interface {
	CheckIn(ctx context.Context, actor Actor, reservationID uuid.UUID) (*reservation.Reservation, error)
	CheckOut(ctx context.Context, actor Actor, reservationID uuid.UUID) (*reservation.Reservation, error)
}

// inspectionUseCaseImpl handles the on-site desk flow. Both operations are
// staff actions recorded with the inspector's identity.
type inspectionUseCaseImpl struct {
	reservationRepo    ReservationRepository
	resourceRepo       ResourceRepository
	notificationRepo   NotificationRepository
	locker             Locker
	txm                TxManager
	reader             db.DBTX
	clock              clock.Clock
	overageHourlyCents int
}

func NewInspectionUseCase(
	reservationRepo ReservationRepository,
	resourceRepo ResourceRepository,
	notificationRepo NotificationRepository,
	locker Locker,
	txm TxManager,
	reader db.DBTX,
	clk clock.Clock,
	cfg config.FeesConfig,
) InspectionUseCase {
	return &inspectionUseCaseImpl{
		reservationRepo:    reservationRepo,
		resourceRepo:       resourceRepo,
		notificationRepo:   notificationRepo,
		locker:             locker,
		txm:                txm,
		reader:             reader,
		clock:              clk,
		overageHourlyCents: cfg.OverageHourlyCents,
	}
}

func (u *inspectionUseCaseImpl) CheckIn(ctx context.Context, actor Actor, reservationID uuid.UUID) (*reservation.Reservation, error) {
	if err := requireInspector(actor); err != nil {
		return nil, err
	}
	return u.transition(ctx, reservationID, func(entity *reservation.Reservation, now time.Time) error {
		// Re-presenting a voucher at the desk is not an error; the first
		// check-in record stands.
		if entity.Status() == reservation.StatusCheckedIn {
			return errTransitionApplied
		}
		return entity.CheckIn(now, actor.ID)
	}, "reservation_checked_in")
}

// CheckOut completes the reservation and frees its inventory units. A return
// past the reserved end accrues an overage fee per started hour.
func (u *inspectionUseCaseImpl) CheckOut(ctx context.Context, actor Actor, reservationID uuid.UUID) (*reservation.Reservation, error) {
	if err := requireInspector(actor); err != nil {
		return nil, err
	}
	return u.transition(ctx, reservationID, func(entity *reservation.Reservation, now time.Time) error {
		fee := u.overageFee(entity, now)
		return entity.CheckOut(now, actor.ID, fee)
	}, "reservation_completed")
}

func (u *inspectionUseCaseImpl) transition(
	ctx context.Context,
	reservationID uuid.UUID,
	apply func(entity *reservation.Reservation, now time.Time) error,
	notificationKind string,
) (*reservation.Reservation, error) {
	pre, err := u.reservationRepo.FindByID(ctx, u.reader, reservationID)
	if err != nil {
		return nil, errs.ErrReservationNotFound
	}

	var updated *reservation.Reservation
	lockErr := u.locker.WithLock(ctx, pre.ResourceLockKey(), func(ctx context.Context) error {
		return u.txm.RunInTx(ctx, func(tx db.DBTX) error {
			entity, err := u.reservationRepo.FindByID(ctx, tx, reservationID)
			if err != nil {
				return errs.ErrReservationNotFound
			}

			wasBlocking := entity.Status().Blocks()
			expectedVersion := entity.Version()
			if err := apply(entity, u.clock.Now()); err != nil {
				if errors.Is(err, errTransitionApplied) {
					updated = entity
					return nil
				}
				return err
			}
			ok, err := u.reservationRepo.UpdateState(ctx, tx, entity, expectedVersion)
			if err != nil {
				return errs.Mark(err, errs.ErrDatabaseOperationFailed)
			}
			if !ok {
				return errs.ErrVersionConflict
			}

			// Completion releases the units a blocking state was occupying.
			if wasBlocking && !entity.Status().Blocks() {
				if err := u.resourceRepo.IncrementAvailable(ctx, tx, entity.ResourceID(), entity.Units()); err != nil {
					return errs.Mark(err, errs.ErrDatabaseOperationFailed)
				}
			}
			if err := u.enqueueNotification(ctx, tx, notificationKind, entity); err != nil {
				return errs.Mark(err, errs.ErrDatabaseOperationFailed)
			}
			updated = entity
			return nil
		})
	})
	if lockErr != nil {
		return nil, lockErr
	}
	return updated, nil
}

func (u *inspectionUseCaseImpl) enqueueNotification(ctx context.Context, tx db.DBTX, kind string, entity *reservation.Reservation) error {
	payload, err := json.Marshal(map[string]any{
		"reservation_id": entity.ID(),
		"resource_id":    entity.ResourceID(),
		"holder_id":      entity.HolderID(),
		"status":         entity.Status().String(),
	})
	if err != nil {
		return err
	}
	return u.notificationRepo.CreateJob(ctx, tx, kind, "reservation", payload, u.clock.Now())
}

func (u *inspectionUseCaseImpl) overageFee(entity *reservation.Reservation, now time.Time) int {
	end := entity.TimeRange().End()
	if end == nil || !now.After(*end) {
		return 0
	}
	hoursLate := int(math.Ceil(now.Sub(*end).Hours()))
	return hoursLate * u.overageHourlyCents
}

func requireInspector(actor Actor) error {
	if actor.Role == account.RoleStaff || actor.Role == account.RoleAdmin {
		return nil
	}
	return ErrInspectorRoleRequired
}
