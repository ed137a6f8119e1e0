package account

import (
	"context"

	"dealership/internal/domain"
)

// Repository persists and fetches accounts.
type Repository interface {
	Create(ctx context.Context, a domain.Account) (*domain.Account, error)
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	// EnsureRole creates the account when the email is unknown and otherwise
	// updates its role and password hash.
	EnsureRole(ctx context.Context, a domain.Account) (*domain.Account, error)
}
