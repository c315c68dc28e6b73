//go:build unit || e2e

package builder

import (
	"time"

	domreservation "travleap-core/internal/domain/reservation"
	"travleap-core/internal/domain/resource"
	reqdto "travleap-core/internal/handler/dto/request"
	"travleap-core/internal/usecase/readmodel"

	"github.com/google/uuid"
)

type ReservationBuilder struct {
	ResourceID   uuid.UUID
	ResourceType resource.Type
	ResourceName string
	HolderID     uuid.UUID
	HolderEmail  string
	Start        time.Time
	End          *time.Time
	Units        int
	PriceCents   int
}

func NewReservationBuilder() *ReservationBuilder {
	start := time.Now().Add(24 * time.Hour).Truncate(time.Hour)
	end := start.Add(2 * time.Hour)
	return &ReservationBuilder{
		ResourceID:   uuid.New(),
		ResourceType: resource.TypeRoom,
		ResourceName: "Deluxe Twin Room",
		HolderID:     uuid.New(),
		HolderEmail:  "traveler@example.com",
		Start:        start,
		End:          &end,
		Units:        1,
		PriceCents:   12000,
	}
}

func (r *ReservationBuilder) With(mutate func(*ReservationBuilder)) *ReservationBuilder {
	mutate(r)
	return r
}

func (r *ReservationBuilder) WithUnits(units int) *ReservationBuilder {
	r.Units = units
	return r
}

func (r *ReservationBuilder) WithType(t resource.Type) *ReservationBuilder {
	r.ResourceType = t
	return r
}

func (r *ReservationBuilder) WithRange(start time.Time, end *time.Time) *ReservationBuilder {
	r.Start = start
	r.End = end
	return r
}

// Build methods
func (r *ReservationBuilder) BuildDomain() (*domreservation.Reservation, error) {
	tr, err := domreservation.NewTimeRange(r.Start, r.End)
	if err != nil {
		return nil, err
	}
	return domreservation.NewReservation(r.ResourceID, r.ResourceType, r.HolderID, tr, r.Units, r.PriceCents)
}

// BuildHold builds a reservation already moved to HOLD with the given expiry
// window relative to now.
func (r *ReservationBuilder) BuildHold(now time.Time, holdTTL time.Duration) (*domreservation.Reservation, error) {
	entity, err := r.BuildDomain()
	if err != nil {
		return nil, err
	}
	if err := entity.Hold(now, holdTTL); err != nil {
		return nil, err
	}
	return entity, nil
}

// BuildConfirmed builds a reservation in CONFIRMED state.
func (r *ReservationBuilder) BuildConfirmed(now time.Time) (*domreservation.Reservation, error) {
	entity, err := r.BuildHold(now, time.Hour)
	if err != nil {
		return nil, err
	}
	if err := entity.Confirm(now, "pay_test_0001"); err != nil {
		return nil, err
	}
	return entity, nil
}

func (r *ReservationBuilder) BuildDTO() reqdto.ReserveRequest {
	return reqdto.ReserveRequest{
		ResourceID: r.ResourceID,
		Start:      r.Start,
		End:        r.End,
		Units:      r.Units,
	}
}

func (r *ReservationBuilder) BuildReadModel() *readmodel.ReservationRM {
	now := time.Now()
	return &readmodel.ReservationRM{
		ID:           uuid.New(),
		ResourceID:   r.ResourceID,
		ResourceType: r.ResourceType.String(),
		ResourceName: r.ResourceName,
		HolderID:     r.HolderID,
		HolderEmail:  r.HolderEmail,
		StartAt:      r.Start,
		EndAt:        r.End,
		Status:       domreservation.StatusHold.String(),
		Units:        r.Units,
		PriceCents:   r.PriceCents,
		Version:      1,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
