package variant

import (
	"context"

	"dealership/internal/domain"
)

// Repository persists vehicle variants.
type Repository interface {
	List(ctx context.Context, filter domain.VariantFilter) ([]domain.VehicleVariant, error)
	GetByID(ctx context.Context, id string) (*domain.VehicleVariant, error)
	Create(ctx context.Context, v domain.VehicleVariant) (*domain.VehicleVariant, error)
	Update(ctx context.Context, v domain.VehicleVariant) (*domain.VehicleVariant, error)
	Delete(ctx context.Context, id string) error
	Upsert(ctx context.Context, v domain.VehicleVariant) (*domain.VehicleVariant, error)
}
