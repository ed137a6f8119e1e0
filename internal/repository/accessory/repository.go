package accessory

import (
	"context"

	"dealership/internal/domain"
)

// Repository persists accessories.
type Repository interface {
	List(ctx context.Context, category string) ([]domain.Accessory, error)
	GetByID(ctx context.Context, id string) (*domain.Accessory, error)
	Create(ctx context.Context, a domain.Accessory) (*domain.Accessory, error)
	Update(ctx context.Context, a domain.Accessory) (*domain.Accessory, error)
	Delete(ctx context.Context, id string) error
	Upsert(ctx context.Context, a domain.Accessory) (*domain.Accessory, error)
}
