package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"travleap-core/internal/domain/account"
	"travleap-core/internal/domain/points"
	"travleap-core/internal/domain/reservation"
	"travleap-core/internal/domain/resource"
	"travleap-core/internal/infra"
	"travleap-core/internal/infra/db"
	"travleap-core/internal/pkg/clock"
	"travleap-core/internal/pkg/config"
	"travleap-core/internal/pkg/errs"

	"github.com/google/uuid"
)

// Actor is the authenticated caller of a booking command.
type Actor struct {
	ID   uuid.UUID
	Role account.Role
}

// CanManage reports whether the actor may operate on another holder's
// reservation. Travelers manage only their own; staff and admin manage any.
func (a Actor) CanManage(holderID uuid.UUID) bool {
	return a.ID == holderID || a.Role == account.RoleStaff || a.Role == account.RoleAdmin
}

type ReserveCommand struct {
	ResourceID uuid.UUID  `json:"resource_id"`
	Start      time.Time  `json:"start"`
	End        *time.Time `json:"end"`
	Units      int        `json:"units"`
}

type ConfirmResult struct {
	Reservation    *reservation.Reservation
	VoucherCode    string
	VoucherExisted bool
	PointsEarned   int
}

// CancelResult reports the settled cancellation, including the points clawed
// back. A replayed cancel carries the originally recorded refund.
type CancelResult struct {
	Reservation    *reservation.Reservation
	RefundedPoints int
}

//go:generate mockgen -source=booking.go -destination=../../tests/mock/usecase/booking_mock.go -package=usecase

type BookingUseCase interface {
	Reserve(ctx context.Context, actor Actor, cmd ReserveCommand, idempotencyKey uuid.UUID) (*reservation.Reservation, error)
	Confirm(ctx context.Context, actor Actor, reservationID uuid.UUID, paymentProof string) (*ConfirmResult, error)
	Extend(ctx context.Context, actor Actor, reservationID uuid.UUID, newEnd time.Time) (*reservation.Reservation, error)
	Cancel(ctx context.Context, actor Actor, reservationID uuid.UUID, reason string) (*CancelResult, error)
}

type bookingUseCaseImpl struct {
	reservationRepo  ReservationRepository
	resourceRepo     ResourceRepository
	idempotencyRepo  IdempotencyRepository
	notificationRepo NotificationRepository
	pointsService    *PointsService
	voucherIssuer    *VoucherIssuer
	paymentVerifier  PaymentVerifier
	locker           Locker
	txm              TxManager
	reader           db.DBTX
	clock            clock.Clock
	holdTTL          time.Duration
}

func NewBookingUseCase(
	reservationRepo ReservationRepository,
	resourceRepo ResourceRepository,
	idempotencyRepo IdempotencyRepository,
	notificationRepo NotificationRepository,
	pointsService *PointsService,
	voucherIssuer *VoucherIssuer,
	paymentVerifier PaymentVerifier,
	locker Locker,
	txm TxManager,
	reader db.DBTX,
	clk clock.Clock,
	cfg config.HoldConfig,
) BookingUseCase {
	return &bookingUseCaseImpl{
		reservationRepo:  reservationRepo,
		resourceRepo:     resourceRepo,
		idempotencyRepo:  idempotencyRepo,
		notificationRepo: notificationRepo,
		pointsService:    pointsService,
		voucherIssuer:    voucherIssuer,
		paymentVerifier:  paymentVerifier,
		locker:           locker,
		txm:              txm,
		reader:           reader,
		clock:            clk,
		holdTTL:          cfg.TTL,
	}
}

// Reserve places a hold: conflict check, availability decrement and hold
// creation run atomically under the resource's inventory lock. The
// idempotency key makes network retries return the original reservation
// instead of double-booking.
func (b *bookingUseCaseImpl) Reserve(
	ctx context.Context,
	actor Actor,
	cmd ReserveCommand,
	idempotencyKey uuid.UUID,
) (*reservation.Reservation, error) {
	if idempotencyKey == uuid.Nil {
		return nil, errs.ErrIdempotencyKeyRequired
	}

	requestHash := hashCommand(cmd)
	expiresAt := b.clock.Now().Add(24 * time.Hour)

	replayed, err := b.handleIdempotency(ctx, idempotencyKey, actor.ID, requestHash, expiresAt)
	if err != nil {
		return nil, err
	}
	if replayed != nil {
		return replayed, nil
	}

	created, err := b.reserveClaimed(ctx, actor, cmd, idempotencyKey)
	if err != nil {
		// A failed attempt must not pin the key in processing for its whole
		// TTL; freeing the claim lets an honest retry with the same key run.
		b.releaseClaim(ctx, idempotencyKey, actor.ID)
		return nil, err
	}
	return created, nil
}

func (b *bookingUseCaseImpl) reserveClaimed(
	ctx context.Context,
	actor Actor,
	cmd ReserveCommand,
	idempotencyKey uuid.UUID,
) (*reservation.Reservation, error) {
	res, err := b.resourceRepo.FindByID(ctx, b.reader, cmd.ResourceID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.ErrResourceNotFound
		}
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}

	entity, err := b.buildReservation(actor.ID, cmd, res)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrDomainValidation)
	}

	var created *reservation.Reservation
	lockErr := b.locker.WithLock(ctx, res.LockKey(), func(ctx context.Context) error {
		return b.txm.RunInTx(ctx, func(tx db.DBTX) error {
			held, txErr := b.placeHold(ctx, tx, entity, res, idempotencyKey, actor.ID)
			if txErr != nil {
				return txErr
			}
			created = held
			return nil
		})
	})
	if lockErr != nil {
		return nil, lockErr
	}
	return created, nil
}

func (b *bookingUseCaseImpl) releaseClaim(ctx context.Context, key, holderID uuid.UUID) {
	if err := b.idempotencyRepo.Delete(ctx, b.reader, key, holderID); err != nil {
		slog.Warn("failed to release idempotency claim",
			"key", key,
			"error", err)
	}
}

func (b *bookingUseCaseImpl) placeHold(
	ctx context.Context,
	tx db.DBTX,
	entity *reservation.Reservation,
	res *resource.Resource,
	idempotencyKey, holderID uuid.UUID,
) (*reservation.Reservation, error) {
	if tr := entity.TimeRange(); tr.IsRanged() {
		blocker, err := b.reservationRepo.FindBlocking(ctx, tx,
			res.ID(), tr.Start(), *tr.End(), res.BufferMin(), nil)
		if err != nil {
			return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
		if blocker != nil {
			return nil, errs.Mark(
				errs.New(fmt.Sprintf("blocked by reservation %s over %s", blocker.ID(), blocker.TimeRange())),
				errs.ErrConflict,
			)
		}
	}

	decremented, err := b.resourceRepo.DecrementAvailable(ctx, tx, res.ID(), entity.Units())
	if err != nil {
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	if !decremented {
		return nil, errs.ErrSoldOut
	}

	if err := entity.Hold(b.clock.Now(), b.holdTTL); err != nil {
		return nil, errs.Mark(err, errs.ErrDomainValidation)
	}
	if err := b.reservationRepo.Create(ctx, tx, entity); err != nil {
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}

	if err := b.enqueueNotification(ctx, tx, "reservation_held", entity); err != nil {
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	if err := b.idempotencyRepo.UpdateStatusCompleted(ctx, tx, idempotencyKey, holderID, entity.ID()); err != nil {
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	return entity, nil
}

// Confirm settles a hold: state transition, voucher issuance and the points
// earn commit in one transaction. Locks are taken resource first, points
// account second; every writer follows that order.
func (b *bookingUseCaseImpl) Confirm(ctx context.Context, actor Actor, reservationID uuid.UUID, paymentProof string) (*ConfirmResult, error) {
	var result *ConfirmResult
	var holdLapsed bool

	err := b.withReservationLock(ctx, reservationID, actor, func(ctx context.Context, locked *reservation.Reservation) error {
		return b.locker.WithLock(ctx, pointsLockKey(locked.HolderID()), func(ctx context.Context) error {
			return b.txm.RunInTx(ctx, func(tx db.DBTX) error {
				r, lapsed, txErr := b.confirmInTx(ctx, tx, reservationID, paymentProof)
				if txErr != nil {
					return txErr
				}
				if lapsed {
					holdLapsed = true
					return nil
				}
				result = r
				return nil
			})
		})
	})
	if err != nil {
		return nil, err
	}
	// The lazy expiry is a committed state change: the cancellation, the
	// inventory restore and the notification must survive this call. An
	// error return from the tx callback would roll them back, so expiry
	// signals through the flag and maps to ErrExpired only after commit.
	if holdLapsed {
		return nil, errs.ErrExpired
	}
	return result, nil
}

func (b *bookingUseCaseImpl) confirmInTx(ctx context.Context, tx db.DBTX, reservationID uuid.UUID, paymentProof string) (*ConfirmResult, bool, error) {
	entity, err := b.mustFind(ctx, tx, reservationID)
	if err != nil {
		return nil, false, err
	}

	now := b.clock.Now()
	replay := entity.Status() == reservation.StatusConfirmed
	if !replay {
		if entity.HoldLapsed(now) {
			if expireErr := b.expireHold(ctx, tx, entity, now); expireErr != nil {
				return nil, false, expireErr
			}
			return nil, true, nil
		}

		if err := b.paymentVerifier.Verify(ctx, paymentProof); err != nil {
			return nil, false, err
		}

		expectedVersion := entity.Version()
		if err := entity.Confirm(now, paymentProof); err != nil {
			return nil, false, err
		}
		if err := b.persistState(ctx, tx, entity, expectedVersion); err != nil {
			return nil, false, err
		}
	}

	// The issuer and earn poster are idempotent, so running them on a replay
	// returns the stored voucher and posts nothing. A confirm that failed
	// between the state write and the voucher attach heals here.
	issued, err := b.voucherIssuer.Issue(ctx, tx, entity.ID(), entity.VoucherCode())
	if err != nil {
		return nil, false, err
	}
	if !issued.AlreadyExisted {
		entity.AttachVoucher(issued.Code)
	}

	earned, err := b.pointsService.EarnForReservation(ctx, tx, entity.HolderID(), entity.ID(), entity.PriceCents())
	if err != nil {
		return nil, false, err
	}
	pointsEarned := 0
	if earned != nil {
		pointsEarned = earned.Amount()
	}

	if !replay {
		if err := b.enqueueNotification(ctx, tx, "reservation_confirmed", entity); err != nil {
			return nil, false, errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
	}

	return &ConfirmResult{
		Reservation:    entity,
		VoucherCode:    issued.Code,
		VoucherExisted: issued.AlreadyExisted,
		PointsEarned:   pointsEarned,
	}, false, nil
}

// Extend pushes the reservation end later. The conflict check excludes the
// reservation itself so its own row never blocks the extension.
func (b *bookingUseCaseImpl) Extend(
	ctx context.Context,
	actor Actor,
	reservationID uuid.UUID,
	newEnd time.Time,
) (*reservation.Reservation, error) {
	var extended *reservation.Reservation

	err := b.withReservationLock(ctx, reservationID, actor, func(ctx context.Context, _ *reservation.Reservation) error {
		return b.txm.RunInTx(ctx, func(tx db.DBTX) error {
			entity, err := b.mustFind(ctx, tx, reservationID)
			if err != nil {
				return err
			}

			res, err := b.resourceRepo.FindByID(ctx, tx, entity.ResourceID())
			if err != nil {
				return errs.Mark(err, errs.ErrDatabaseOperationFailed)
			}

			excludeID := entity.ID()
			blocker, err := b.reservationRepo.FindBlocking(ctx, tx,
				entity.ResourceID(), entity.TimeRange().Start(), newEnd, res.BufferMin(), &excludeID)
			if err != nil {
				return errs.Mark(err, errs.ErrDatabaseOperationFailed)
			}
			if blocker != nil {
				maxEnd := blocker.TimeRange().Start().Add(-time.Duration(res.BufferMin()) * time.Minute)
				return errs.Mark(
					errs.New(fmt.Sprintf("blocked by reservation %s, latest possible end %s",
						blocker.ID(), maxEnd.Format(time.RFC3339))),
					errs.ErrConflict,
				)
			}

			expectedVersion := entity.Version()
			if err := entity.Extend(newEnd); err != nil {
				return err
			}
			if err := b.persistState(ctx, tx, entity, expectedVersion); err != nil {
				return err
			}
			extended = entity
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return extended, nil
}

// Cancel voids an active reservation. Inventory comes back only when the
// prior state was blocking it, and the points refund is bounded by the
// account's current balance.
func (b *bookingUseCaseImpl) Cancel(
	ctx context.Context,
	actor Actor,
	reservationID uuid.UUID,
	reason string,
) (*CancelResult, error) {
	var cancelled *CancelResult

	err := b.withReservationLock(ctx, reservationID, actor, func(ctx context.Context, locked *reservation.Reservation) error {
		return b.locker.WithLock(ctx, pointsLockKey(locked.HolderID()), func(ctx context.Context) error {
			return b.txm.RunInTx(ctx, func(tx db.DBTX) error {
				r, txErr := b.cancelInTx(ctx, tx, reservationID, reason)
				if txErr != nil {
					return txErr
				}
				cancelled = r
				return nil
			})
		})
	})
	if err != nil {
		return nil, err
	}
	return cancelled, nil
}

func (b *bookingUseCaseImpl) cancelInTx(ctx context.Context, tx db.DBTX, reservationID uuid.UUID, reason string) (*CancelResult, error) {
	entity, err := b.mustFind(ctx, tx, reservationID)
	if err != nil {
		return nil, err
	}

	// Replayed cancellation (webhook redelivery, impatient client) reports
	// the recorded outcome; inventory and refund moved exactly once already.
	if entity.Status() == reservation.StatusCancelled {
		recorded, err := b.pointsService.RecordedRefund(ctx, tx, entity.ID())
		if err != nil {
			return nil, err
		}
		return &CancelResult{Reservation: entity, RefundedPoints: refundMagnitude(recorded)}, nil
	}

	priorBlocking := entity.Status().Blocks()
	expectedVersion := entity.Version()
	if err := entity.Cancel(reason); err != nil {
		return nil, err
	}
	if err := b.persistState(ctx, tx, entity, expectedVersion); err != nil {
		return nil, err
	}

	if priorBlocking {
		if err := b.resourceRepo.IncrementAvailable(ctx, tx, entity.ResourceID(), entity.Units()); err != nil {
			return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
	}

	refund, err := b.pointsService.RefundForReservation(ctx, tx, entity.HolderID(), entity.ID())
	if err != nil {
		return nil, err
	}

	if err := b.enqueueNotification(ctx, tx, "reservation_cancelled", entity); err != nil {
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	return &CancelResult{Reservation: entity, RefundedPoints: refundMagnitude(refund)}, nil
}

// refundMagnitude reads the clawed-back amount off a refund entry as a
// positive number of points; ledger refund rows are negative.
func refundMagnitude(entry *points.Entry) int {
	if entry == nil {
		return 0
	}
	return -entry.Amount()
}

// withReservationLock resolves the reservation's resource lock key, checks
// the actor may operate on it, and runs fn under that lock. The reservation
// passed to fn is a pre-lock read; fn re-reads inside its transaction.
func (b *bookingUseCaseImpl) withReservationLock(
	ctx context.Context,
	reservationID uuid.UUID,
	actor Actor,
	fn func(ctx context.Context, locked *reservation.Reservation) error,
) error {
	entity, err := b.reservationRepo.FindByID(ctx, b.reader, reservationID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return errs.ErrReservationNotFound
		}
		return errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	if !actor.CanManage(entity.HolderID()) {
		return errs.ErrReservationNotFound
	}

	return b.locker.WithLock(ctx, entity.ResourceLockKey(), func(ctx context.Context) error {
		return fn(ctx, entity)
	})
}

func (b *bookingUseCaseImpl) mustFind(ctx context.Context, tx db.DBTX, reservationID uuid.UUID) (*reservation.Reservation, error) {
	entity, err := b.reservationRepo.FindByID(ctx, tx, reservationID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.ErrReservationNotFound
		}
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	return entity, nil
}

func (b *bookingUseCaseImpl) persistState(ctx context.Context, tx db.DBTX, entity *reservation.Reservation, expectedVersion int) error {
	ok, err := b.reservationRepo.UpdateState(ctx, tx, entity, expectedVersion)
	if err != nil {
		return errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	if !ok {
		return errs.ErrVersionConflict
	}
	return nil
}

func (b *bookingUseCaseImpl) expireHold(ctx context.Context, tx db.DBTX, entity *reservation.Reservation, now time.Time) error {
	expectedVersion := entity.Version()
	if err := entity.ExpireHold(now); err != nil {
		return err
	}
	if err := b.persistState(ctx, tx, entity, expectedVersion); err != nil {
		return err
	}
	if err := b.resourceRepo.IncrementAvailable(ctx, tx, entity.ResourceID(), entity.Units()); err != nil {
		return errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	return b.enqueueNotification(ctx, tx, "hold_expired", entity)
}

func (b *bookingUseCaseImpl) buildReservation(holderID uuid.UUID, cmd ReserveCommand, res *resource.Resource) (*reservation.Reservation, error) {
	timeRange, err := reservation.NewTimeRange(cmd.Start, cmd.End)
	if err != nil {
		return nil, err
	}
	priceCents := cmd.Units * res.UnitPriceCents()
	return reservation.NewReservation(res.ID(), res.Type(), holderID, timeRange, cmd.Units, priceCents)
}

func (b *bookingUseCaseImpl) handleIdempotency(
	ctx context.Context,
	key, holderID uuid.UUID,
	requestHash string,
	expiresAt time.Time,
) (*reservation.Reservation, error) {
	err := b.idempotencyRepo.TryInsert(ctx, b.reader, key, holderID, "POST /api/reservations", requestHash, expiresAt)
	if err == nil {
		return nil, nil
	}
	if !infra.IsKind(err, infra.KindDuplicateKey) {
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}

	existing, err := b.idempotencyRepo.Get(ctx, b.reader, key, holderID)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	if existing.RequestHash != requestHash {
		return nil, errs.ErrDuplicateReservation
	}

	switch existing.Status {
	case "completed":
		if existing.ResultReservationID == nil {
			return nil, errs.New("completed idempotency record missing reservation id")
		}
		return b.mustFind(ctx, b.reader, *existing.ResultReservationID)
	case "processing":
		return nil, errs.ErrIdempotencyInProgress
	default:
		return nil, errs.New("unknown idempotency record status: " + existing.Status)
	}
}

func (b *bookingUseCaseImpl) enqueueNotification(ctx context.Context, tx db.DBTX, kind string, entity *reservation.Reservation) error {
	payload, err := json.Marshal(map[string]any{
		"reservation_id": entity.ID(),
		"resource_id":    entity.ResourceID(),
		"holder_id":      entity.HolderID(),
		"status":         entity.Status().String(),
		"range":          entity.TimeRange().String(),
	})
	if err != nil {
		return err
	}
	return b.notificationRepo.CreateJob(ctx, tx, kind, "reservation", payload, b.clock.Now())
}

func hashCommand(cmd ReserveCommand) string {
	data, _ := json.Marshal(cmd)
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
