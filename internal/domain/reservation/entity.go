package reservation

import (
	"errors"
	"time"

	"travleap-core/internal/domain/resource"
	"travleap-core/internal/pkg/errs"

	"github.com/google/uuid"
)

var (
	ErrInvalidStatus = errors.New("invalid reservation status")
	ErrInvalidUnits  = errors.New("units must be positive")
)

// Reservation is the inventory-backed booking aggregate. All state changes go
// through the transition methods below; persistence applies them under the
// resource's inventory lock with an optimistic version guard.
type Reservation struct {
	id              uuid.UUID
	resourceID      uuid.UUID
	resourceType    resource.Type
	holderID        uuid.UUID
	timeRange       TimeRange
	status          Status
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
}

func NewReservation(
	resourceID uuid.UUID,
	resourceType resource.Type,
	holderID uuid.UUID,
	timeRange TimeRange,
	units int,
	priceCents int,
) (*Reservation, error) {
	if units <= 0 {
		return nil, ErrInvalidUnits
	}
	if resourceType.TimeRanged() && !timeRange.IsRanged() {
		return nil, ErrEndRequired
	}
	return &Reservation{
		id:           uuid.New(),
		resourceID:   resourceID,
		resourceType: resourceType,
		holderID:     holderID,
		timeRange:    timeRange,
		status:       StatusPending,
		units:        units,
		priceCents:   priceCents,
		version:      1,
	}, nil
}

func Reconstruct(
	id, resourceID uuid.UUID,
	resourceType resource.Type,
	holderID uuid.UUID,
	timeRange TimeRange,
	status Status,
	units, priceCents int,
	holdExpiresAt *time.Time,
	voucherCode *string,
	paymentProof *string,
	version int,
	cancelReason *string,
	checkedInAt *time.Time, checkedInBy *uuid.UUID,
	checkedOutAt *time.Time, checkedOutBy *uuid.UUID,
	overageFeeCents int,
	createdAt, updatedAt time.Time,
) *Reservation {
	return &Reservation{
		id:              id,
		resourceID:      resourceID,
		resourceType:    resourceType,
		holderID:        holderID,
		timeRange:       timeRange,
		status:          status,
		units:           units,
		priceCents:      priceCents,
		holdExpiresAt:   holdExpiresAt,
		voucherCode:     voucherCode,
		paymentProof:    paymentProof,
		version:         version,
		cancelReason:    cancelReason,
		checkedInAt:     checkedInAt,
		checkedInBy:     checkedInBy,
		checkedOutAt:    checkedOutAt,
		checkedOutBy:    checkedOutBy,
		overageFeeCents: overageFeeCents,
		createdAt:       createdAt,
		updatedAt:       updatedAt,
	}
}

func (r *Reservation) ID() uuid.UUID               { return r.id }
func (r *Reservation) ResourceID() uuid.UUID       { return r.resourceID }
func (r *Reservation) ResourceType() resource.Type { return r.resourceType }
func (r *Reservation) HolderID() uuid.UUID         { return r.holderID }
func (r *Reservation) TimeRange() TimeRange        { return r.timeRange }
func (r *Reservation) Status() Status              { return r.status }
func (r *Reservation) Units() int                  { return r.units }
func (r *Reservation) PriceCents() int             { return r.priceCents }
func (r *Reservation) HoldExpiresAt() *time.Time   { return r.holdExpiresAt }
func (r *Reservation) VoucherCode() *string        { return r.voucherCode }
func (r *Reservation) PaymentProof() *string       { return r.paymentProof }
func (r *Reservation) Version() int                { return r.version }
func (r *Reservation) CancelReason() *string       { return r.cancelReason }
func (r *Reservation) CheckedInAt() *time.Time     { return r.checkedInAt }
func (r *Reservation) CheckedInBy() *uuid.UUID     { return r.checkedInBy }
func (r *Reservation) CheckedOutAt() *time.Time    { return r.checkedOutAt }
func (r *Reservation) CheckedOutBy() *uuid.UUID    { return r.checkedOutBy }
func (r *Reservation) OverageFeeCents() int        { return r.overageFeeCents }
func (r *Reservation) CreatedAt() time.Time        { return r.createdAt }
func (r *Reservation) UpdatedAt() time.Time        { return r.updatedAt }

// ResourceLockKey is the same key Resource.LockKey yields, derivable without
// loading the resource row.
func (r *Reservation) ResourceLockKey() string {
	return r.resourceType.String() + ":" + r.resourceID.String()
}

// HoldLapsed reports whether an unpaid hold has passed its expiry.
func (r *Reservation) HoldLapsed(now time.Time) bool {
	return r.status == StatusHold && r.holdExpiresAt != nil && r.holdExpiresAt.Before(now)
}

// Hold moves PENDING to HOLD. The caller has already acquired the inventory
// lock, passed the conflict check and decremented availability.
func (r *Reservation) Hold(now time.Time, holdTTL time.Duration) error {
	if r.status != StatusPending {
		return errs.ErrInvalidTransition
	}
	expiresAt := now.Add(holdTTL)
	r.status = StatusHold
	r.holdExpiresAt = &expiresAt
	return nil
}

// Confirm moves HOLD to CONFIRMED, recording the payment proof reference the
// settlement presented. An already-confirmed reservation reports
// ErrAlreadyConfirmed so the caller can treat the retry as idempotent
// success. A lapsed hold reports ErrExpired and must be expired by the
// caller instead.
func (r *Reservation) Confirm(now time.Time, paymentProof string) error {
	switch r.status {
	case StatusConfirmed:
		return errs.ErrAlreadyConfirmed
	case StatusCancelled:
		return errs.ErrAlreadyCancelled
	case StatusHold:
		if r.HoldLapsed(now) {
			return errs.ErrExpired
		}
		r.status = StatusConfirmed
		r.holdExpiresAt = nil
		r.paymentProof = &paymentProof
		return nil
	default:
		return errs.ErrInvalidTransition
	}
}

// ExpireHold voids a lapsed hold: HOLD -> CANCELLED with no ledger or voucher
// side effects. The caller restores inventory.
func (r *Reservation) ExpireHold(now time.Time) error {
	if r.status != StatusHold {
		return errs.ErrInvalidTransition
	}
	if !r.HoldLapsed(now) {
		return errs.ErrInvalidTransition
	}
	reason := "hold expired"
	r.status = StatusCancelled
	r.cancelReason = &reason
	return nil
}

// CheckIn moves CONFIRMED to CHECKED_IN with an audit pair. Repeat check-in
// reports ErrAlreadyCheckedIn; the caller returns the existing record.
func (r *Reservation) CheckIn(now time.Time, inspectorID uuid.UUID) error {
	switch r.status {
	case StatusCheckedIn:
		return errs.ErrAlreadyCheckedIn
	case StatusConfirmed:
		r.status = StatusCheckedIn
		r.checkedInAt = &now
		r.checkedInBy = &inspectorID
		return nil
	default:
		return errs.ErrInvalidTransition
	}
}

// CheckOut moves CHECKED_IN to COMPLETED, recording any overage fee computed
// by the caller's policy (late return, extended stay).
func (r *Reservation) CheckOut(now time.Time, inspectorID uuid.UUID, overageFeeCents int) error {
	if r.status != StatusCheckedIn {
		return errs.ErrInvalidTransition
	}
	r.status = StatusCompleted
	r.checkedOutAt = &now
	r.checkedOutBy = &inspectorID
	r.overageFeeCents = overageFeeCents
	return nil
}

// Cancel moves any of HOLD/CONFIRMED/CHECKED_IN to CANCELLED. Inventory
// restore and the bounded points refund are the caller's side effects,
// guarded by the returned error: ErrAlreadyCancelled means the work was
// already done exactly once.
func (r *Reservation) Cancel(reason string) error {
	switch r.status {
	case StatusCancelled:
		return errs.ErrAlreadyCancelled
	case StatusCompleted:
		return errs.ErrInvalidTransition
	case StatusHold, StatusConfirmed, StatusCheckedIn, StatusPending:
		r.status = StatusCancelled
		r.cancelReason = &reason
		r.holdExpiresAt = nil
		return nil
	default:
		return errs.ErrInvalidTransition
	}
}

// Extend replaces the reservation end. Valid only while the reservation
// still blocks inventory; conflict checking against other reservations is
// done by the caller under the inventory lock.
func (r *Reservation) Extend(newEnd time.Time) error {
	if !r.status.Blocks() {
		return errs.ErrInvalidTransition
	}
	if !r.timeRange.IsRanged() {
		return ErrEndRequired
	}
	extended, err := NewClosedTimeRange(r.timeRange.Start(), newEnd)
	if err != nil {
		return err
	}
	if !newEnd.After(*r.timeRange.End()) {
		return ErrInvalidTimeRange
	}
	r.timeRange = extended
	return nil
}

// AttachVoucher records an issued code. Attaching over an existing code is a
// programming error caught by the unique index, not here.
func (r *Reservation) AttachVoucher(code string) {
	r.voucherCode = &code
}
