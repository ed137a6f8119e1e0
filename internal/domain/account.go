package domain

import "time"

// Account roles.
const (
	RoleCustomer = "customer"
	RoleAdvisor  = "advisor"
	RoleAdmin    = "admin"
)

// Account is a registered user. Role gates the admin and advisor dashboards.
type Account struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	FirstName    string    `json:"firstName,omitempty"`
	LastName     string    `json:"lastName,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}
