package reservation

import (
	"context"

	"dealership/internal/domain"
)

// ListFilter narrows a reservation listing. Empty fields match everything.
type ListFilter struct {
	Kind   string
	Status string
	Limit  int
}

// Repository persists submitted reservations and orders.
type Repository interface {
	Create(ctx context.Context, r domain.Reservation) (*domain.Reservation, error)
	GetByID(ctx context.Context, id string) (*domain.Reservation, error)
	GetByToken(ctx context.Context, token string) (*domain.Reservation, error)
	// ActiveHold returns the pending reservation holding ref. Create reports
	// domain.ErrAlreadyExists for a second pending hold on the same ref.
	ActiveHold(ctx context.Context, ref string) (*domain.Reservation, error)
	List(ctx context.Context, filter ListFilter) ([]domain.Reservation, error)
	// UpdateStatus moves a reservation from one status to another. It returns
	// domain.ErrNotFound when no row with id is currently in status from.
	UpdateStatus(ctx context.Context, id, from, to string, decidedBy *string) (*domain.Reservation, error)
	UpdatePayment(ctx context.Context, id, status, paymentStatus string) (*domain.Reservation, error)
}
