// Package payment creates and inspects payment intents for submitted orders.
package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"dealership/internal/domain"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidAmount = errors.New("payment amount must be positive")
	// ErrNotCancelable is returned when cancelling an intent that already
	// succeeded.
	ErrNotCancelable = errors.New("payment intent can no longer be canceled")
)

// Intent is the provider-side record of a pending payment.
type Intent struct {
	ID           string
	ClientSecret string
	Status       string
}

// Provider creates payment intents for an authoritative amount.
type Provider interface {
	CreateIntent(ctx context.Context, amount decimal.Decimal, currency string, metadata map[string]string) (*Intent, error)
	GetIntent(ctx context.Context, id string) (*Intent, error)
	// CancelIntent voids an intent that no order refers to.
	CancelIntent(ctx context.Context, id string) error
}

// MinorUnits converts a whole-unit amount to cents, rounding half away from zero.
func MinorUnits(amount decimal.Decimal) (int64, error) {
	if !amount.IsPositive() {
		return 0, fmt.Errorf("%w: %s", ErrInvalidAmount, amount)
	}
	return amount.Shift(2).Round(0).IntPart(), nil
}

// OrderStatus maps a payment status onto the order status it implies.
func OrderStatus(paymentStatus string) string {
	switch paymentStatus {
	case domain.PaymentSucceeded:
		return domain.StatusPaid
	case domain.PaymentFailed:
		return domain.StatusFailed
	case domain.PaymentCanceled:
		return domain.StatusCancelled
	default:
		return domain.StatusAwaitingPayment
	}
}

func normalizeCurrency(currency string) string {
	return strings.ToLower(strings.TrimSpace(currency))
}
