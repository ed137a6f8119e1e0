package option

import (
	"context"

	"dealership/internal/domain"
)

// Repository persists configurator options.
type Repository interface {
	List(ctx context.Context, kind domain.OptionKind) ([]domain.OptionItem, error)
	GetByID(ctx context.Context, id string) (*domain.OptionItem, error)
	Create(ctx context.Context, o domain.OptionItem) (*domain.OptionItem, error)
	Update(ctx context.Context, o domain.OptionItem) (*domain.OptionItem, error)
	Delete(ctx context.Context, id string) error
	Upsert(ctx context.Context, o domain.OptionItem) (*domain.OptionItem, error)
}
