package response

import (
	"time"

	"travleap-core/internal/domain/reservation"
	"travleap-core/internal/usecase/readmodel"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

type ReservationResponse struct {
	ID              uuid.UUID  `json:"id"`
	ResourceID      uuid.UUID  `json:"resource_id"`
	ResourceType    string     `json:"resource_type"`
	ResourceName    string     `json:"resource_name,omitempty"`
	HolderID        uuid.UUID  `json:"holder_id"`
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

type ReservationListResponse struct {
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

type ConfirmResponse struct {
	Reservation  ReservationResponse `json:"reservation"`
	VoucherCode  string              `json:"voucher_code"`
	PointsEarned int                 `json:"points_earned"`
}

type CancelResponse struct {
	Reservation    ReservationResponse `json:"reservation"`
	RefundedPoints int                 `json:"refunded_points"`
}

func FromReservationRM(rm *readmodel.ReservationRM) ReservationResponse {
	var resp ReservationResponse
	_ = copier.Copy(&resp, rm)
	return resp
}

func FromReservationListRM(rms []*readmodel.ReservationListRM) []ReservationListResponse {
	out := make([]ReservationListResponse, 0, len(rms))
	for _, rm := range rms {
		var resp ReservationListResponse
		_ = copier.Copy(&resp, rm)
		out = append(out, resp)
	}
	return out
}

// FromEntity builds the command-result view; joined read fields like the
// resource name are absent here and served by the read side.
func FromEntity(e *reservation.Reservation) ReservationResponse {
	return ReservationResponse{
		ID:              e.ID(),
		ResourceID:      e.ResourceID(),
		ResourceType:    e.ResourceType().String(),
		HolderID:        e.HolderID(),
		StartAt:         e.TimeRange().Start(),
		EndAt:           e.TimeRange().End(),
		Status:          e.Status().String(),
		Units:           e.Units(),
		PriceCents:      e.PriceCents(),
		HoldExpiresAt:   e.HoldExpiresAt(),
		VoucherCode:     e.VoucherCode(),
		Version:         e.Version(),
		CancelReason:    e.CancelReason(),
		CheckedInAt:     e.CheckedInAt(),
		CheckedOutAt:    e.CheckedOutAt(),
		OverageFeeCents: e.OverageFeeCents(),
		CreatedAt:       e.CreatedAt(),
		UpdatedAt:       e.UpdatedAt(),
	}
}
