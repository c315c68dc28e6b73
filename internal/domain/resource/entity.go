package resource

import (
	"errors"

	"github.com/google/uuid"
)

var (
	ErrInvalidType     = errors.New("invalid resource type")
	ErrInvalidCapacity = errors.New("capacity cannot be negative")
)

type Type string

const (
	TypeRoom       Type = "room"
	TypeVehicle    Type = "vehicle"
	TypeTicket     Type = "ticket"
	TypeCouponSlot Type = "coupon_slot"
)

func (t Type) String() string {
	return string(t)
}

func (t Type) IsValid() bool {
	switch t {
	case TypeRoom, TypeVehicle, TypeTicket, TypeCouponSlot:
		return true
	default:
		return false
	}
}

// TimeRanged reports whether reservations of this type occupy a time interval
// and therefore participate in overlap detection. Coupon slots are a pure
// allotment counter.
func (t Type) TimeRanged() bool {
	return t != TypeCouponSlot
}

func NewType(s string) (Type, error) {
	t := Type(s)
	if !t.IsValid() {
		return "", ErrInvalidType
	}
	return t, nil
}

// Resource is one bookable inventory pool: a room type, a vehicle, an
// admission quota or a coupon allotment. Available is the shared counter
// mutated only under the resource's inventory lock.
type Resource struct {
	id             uuid.UUID
	resourceType   Type
	name           string
	capacity       int
	available      int
	bufferMin      int
	unitPriceCents int
}

func NewResource(id uuid.UUID, resourceType Type, name string, capacity, available, bufferMin, unitPriceCents int) (*Resource, error) {
	if !resourceType.IsValid() {
		return nil, ErrInvalidType
	}
	if capacity < 0 || available < 0 {
		return nil, ErrInvalidCapacity
	}
	if bufferMin < 0 {
		bufferMin = 0
	}
	return &Resource{
		id:             id,
		resourceType:   resourceType,
		name:           name,
		capacity:       capacity,
		available:      available,
		bufferMin:      bufferMin,
		unitPriceCents: unitPriceCents,
	}, nil
}

func (r *Resource) ID() uuid.UUID       { return r.id }
func (r *Resource) Type() Type          { return r.resourceType }
func (r *Resource) Name() string        { return r.name }
func (r *Resource) Capacity() int       { return r.capacity }
func (r *Resource) Available() int      { return r.available }
func (r *Resource) BufferMin() int      { return r.bufferMin }
func (r *Resource) UnitPriceCents() int { return r.unitPriceCents }

// LockKey is the inventory-lock key serializing all mutations of this
// resource's reservations and counter.
func (r *Resource) LockKey() string {
	return r.resourceType.String() + ":" + r.id.String()
}
