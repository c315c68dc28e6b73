//go:build unit || e2e

package builder

import (
	"travleap-core/internal/domain/resource"

	"github.com/google/uuid"
)

type ResourceBuilder struct {
	ID             uuid.UUID
	Type           resource.Type
	Name           string
	Capacity       int
	Available      int
	BufferMin      int
	UnitPriceCents int
}

func NewResourceBuilder() *ResourceBuilder {
	return &ResourceBuilder{
		ID:             uuid.New(),
		Type:           resource.TypeRoom,
		Name:           "Deluxe Twin Room",
		Capacity:       10,
		Available:      10,
		BufferMin:      30,
		UnitPriceCents: 12000,
	}
}

func (r *ResourceBuilder) With(mutate func(*ResourceBuilder)) *ResourceBuilder {
	mutate(r)
	return r
}

func (r *ResourceBuilder) BuildDomain() (*resource.Resource, error) {
	return resource.NewResource(r.ID, r.Type, r.Name, r.Capacity, r.Available, r.BufferMin, r.UnitPriceCents)
}
