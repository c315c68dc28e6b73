package readmodel

import (
	"time"

	"github.com/google/uuid"
)

type ReservationRM struct {
	ID              uuid.UUID  `json:"id"`
	ResourceID      uuid.UUID  `json:"resource_id"`
	ResourceType    string     `json:"resource_type"`
	ResourceName    string     `json:"resource_name"`
	HolderID        uuid.UUID  `json:"holder_id"`
	HolderEmail     string     `json:"holder_email"`
	StartAt         time.Time  `json:"start_at"`
	EndAt           *time.Time `json:"end_at,omitempty"`
	Status          string     `json:"status"`
	Units           int        `json:"units"`
	PriceCents      int        `json:"price_cents"`
	HoldExpiresAt   *time.Time `json:"hold_expires_at,omitempty"`
	VoucherCode     *string    `json:"voucher_code,omitempty"`
	Version         int        `json:"version"`
	CancelReason    *string    `json:"cancel_reason,omitempty"`
	CheckedInAt     *time.Time `json:"checked_in_at,omitempty"`
	CheckedOutAt    *time.Time `json:"checked_out_at,omitempty"`
	OverageFeeCents int        `json:"overage_fee_cents"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

type ReservationListRM struct {
	ID           uuid.UUID  `json:"id"`
	ResourceID   uuid.UUID  `json:"resource_id"`
	ResourceName string     `json:"resource_name"`
	StartAt      time.Time  `json:"start_at"`
	EndAt        *time.Time `json:"end_at,omitempty"`
	Status       string     `json:"status"`
	Units        int        `json:"units"`
	PriceCents   int        `json:"price_cents"`
	CreatedAt    time.Time  `json:"created_at"`
}

type LedgerEntryRM struct {
	ID            uuid.UUID  `json:"id"`
	Amount        int        `json:"amount"`
	EntryType     string     `json:"entry_type"`
	ReservationID *uuid.UUID `json:"reservation_id,omitempty"`
	BalanceAfter  int        `json:"balance_after"`
	Note          string     `json:"note,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}
