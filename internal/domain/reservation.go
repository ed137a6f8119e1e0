package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Submission kinds.
const (
	KindReservation = "reservation"
	KindOrder       = "order"
)

// Reservation statuses: a hold waits for an advisor decision.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusRejected  = "rejected"
	StatusExpired   = "expired"
)

// Order statuses follow the payment provider.
const (
	StatusAwaitingPayment = "awaiting_payment"
	StatusPaid            = "paid"
	StatusFailed          = "failed"
	StatusCancelled       = "cancelled"
)

// Payment statuses as recorded on an order.
const (
	PaymentNone            = "none"
	PaymentRequiresPayment = "requires_payment"
	PaymentProcessing      = "processing"
	PaymentSucceeded       = "succeeded"
	PaymentFailed          = "failed"
	PaymentCanceled        = "canceled"
)

// TerminalStatus reports whether a submission status will no longer change.
func TerminalStatus(status string) bool {
	switch status {
	case StatusConfirmed, StatusRejected, StatusExpired, StatusPaid, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

// ConfigurationSnapshot is a frozen copy of a configured vehicle. Catalog price
// changes made after the snapshot do not affect it.
type ConfigurationSnapshot struct {
	ConfigurationID string          `json:"configurationId"`
	Variant         VehicleVariant  `json:"variant"`
	Options         []OptionItem    `json:"options"`
	Price           decimal.Decimal `json:"price"`
	TakenAt         time.Time       `json:"takenAt"`
}

// ReservationLine is one priced line of a submitted reservation or order.
type ReservationLine struct {
	ID            string                 `json:"id"`
	ReservationID string                 `json:"reservationId"`
	Kind          string                 `json:"kind"`
	RefID         string                 `json:"refId"`
	Name          string                 `json:"name"`
	UnitPrice     decimal.Decimal        `json:"unitPrice"`
	Quantity      int                    `json:"quantity"`
	Total         decimal.Decimal        `json:"total"`
	Configuration *ConfigurationSnapshot `json:"configuration,omitempty"`
}

// Reservation is a submitted snapshot of a configuration (a hold) or of a cart
// (an order), addressed by its token. HoldRef is the used vehicle a pending
// hold blocks; it is empty for new vehicles and orders.
type Reservation struct {
	ID              string            `json:"id"`
	Token           string            `json:"token"`
	Kind            string            `json:"kind"`
	Status          string            `json:"status"`
	PaymentStatus   string            `json:"paymentStatus"`
	Total           decimal.Decimal   `json:"total"`
	Currency        string            `json:"currency"`
	PaymentIntentID string            `json:"-"`
	ClientSecret    string            `json:"clientSecret,omitempty"`
	SessionID       string            `json:"-"`
	HoldRef         string            `json:"-"`
	AccountID       *string           `json:"accountId,omitempty"`
	DecidedBy       *string           `json:"decidedBy,omitempty"`
	Lines           []ReservationLine `json:"lines,omitempty"`
	ExpiresAt       *time.Time        `json:"expiresAt,omitempty"`
	CreatedAt       time.Time         `json:"createdAt"`
	UpdatedAt       time.Time         `json:"updatedAt"`
}
