package errs

import "errors"

// Typed results for the reservation core. Callers branch with errors.Is;
// none of these may cross the handler boundary as a bare 500.
var (
	// Locking
	ErrLockBusy = errors.New("resource is locked by another operation")

	// Reservation lifecycle
	ErrReservationNotFound = errors.New("reservation not found")
	ErrResourceNotFound    = errors.New("resource not found")
	ErrConflict            = errors.New("time range conflicts with an existing reservation")
	ErrSoldOut             = errors.New("insufficient inventory")
	ErrExpired             = errors.New("hold has expired")
	ErrAlreadyConfirmed    = errors.New("reservation already confirmed")
	ErrAlreadyCancelled    = errors.New("reservation already cancelled")
	ErrAlreadyCheckedIn    = errors.New("reservation already checked in")
	ErrInvalidTransition   = errors.New("invalid reservation state transition")
	ErrVersionConflict     = errors.New("reservation modified concurrently")

	// Voucher issuance
	ErrTokenIssuanceExhausted = errors.New("voucher code issuance attempts exhausted")

	// Points ledger
	ErrRefundAlreadyPosted = errors.New("refund already posted for reservation")
	ErrAccountNotFound     = errors.New("account not found")

	// Idempotency (carried reserve-endpoint replay flow)
	ErrIdempotencyKeyRequired = errors.New("idempotency key required")
	ErrIdempotencyInProgress  = errors.New("idempotency in progress")
	ErrDuplicateReservation   = errors.New("duplicate reservation")

	// Operation errors
	ErrDomainValidation        = errors.New("domain validation error")
	ErrDatabaseOperationFailed = errors.New("database operation failed")
)
