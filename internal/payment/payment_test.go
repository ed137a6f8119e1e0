package payment

import (
	"context"
	"errors"
	"testing"

	"dealership/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76"
)

func TestMinorUnits(t *testing.T) {
	cents, err := MinorUnits(decimal.NewFromInt(162370))
	require.NoError(t, err)
	assert.Equal(t, int64(16237000), cents)

	cents, err = MinorUnits(decimal.RequireFromString("19.995"))
	require.NoError(t, err)
	assert.Equal(t, int64(2000), cents)

	_, err = MinorUnits(decimal.Zero)
	assert.True(t, errors.Is(err, ErrInvalidAmount))
}

func TestOrderStatus(t *testing.T) {
	assert.Equal(t, domain.StatusPaid, OrderStatus(domain.PaymentSucceeded))
	assert.Equal(t, domain.StatusFailed, OrderStatus(domain.PaymentFailed))
	assert.Equal(t, domain.StatusCancelled, OrderStatus(domain.PaymentCanceled))
	assert.Equal(t, domain.StatusAwaitingPayment, OrderStatus(domain.PaymentProcessing))
}

func TestIntentStatus(t *testing.T) {
	status := func(s stripe.PaymentIntentStatus) string {
		return intentStatus(&stripe.PaymentIntent{Status: s})
	}
	assert.Equal(t, domain.PaymentSucceeded, status(stripe.PaymentIntentStatusSucceeded))
	assert.Equal(t, domain.PaymentProcessing, status(stripe.PaymentIntentStatusProcessing))
	assert.Equal(t, domain.PaymentCanceled, status(stripe.PaymentIntentStatusCanceled))
	assert.Equal(t, domain.PaymentRequiresPayment, status(stripe.PaymentIntentStatusRequiresPaymentMethod))
}

func TestIntentStatus_DeclinedAttemptIsFailed(t *testing.T) {
	declined := &stripe.PaymentIntent{
		Status:           stripe.PaymentIntentStatusRequiresPaymentMethod,
		LastPaymentError: &stripe.Error{Code: stripe.ErrorCodeCardDeclined, Msg: "Your card was declined."},
	}
	assert.Equal(t, domain.PaymentFailed, intentStatus(declined))
	assert.Equal(t, domain.StatusFailed, OrderStatus(intentStatus(declined)))
}

func TestOffline_Lifecycle(t *testing.T) {
	p := NewOffline()
	ctx := context.Background()

	in, err := p.CreateIntent(ctx, decimal.NewFromInt(100), "EUR", nil)
	require.NoError(t, err)
	assert.NotEmpty(t, in.ClientSecret)
	assert.Equal(t, domain.PaymentRequiresPayment, in.Status)

	require.NoError(t, p.SetStatus(in.ID, domain.PaymentSucceeded))
	got, err := p.GetIntent(ctx, in.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentSucceeded, got.Status)

	_, err = p.GetIntent(ctx, "pi_missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestOffline_CancelIntent(t *testing.T) {
	p := NewOffline()
	ctx := context.Background()

	open, err := p.CreateIntent(ctx, decimal.NewFromInt(100), "EUR", nil)
	require.NoError(t, err)
	require.NoError(t, p.CancelIntent(ctx, open.ID))
	got, err := p.GetIntent(ctx, open.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentCanceled, got.Status)

	paid, err := p.CreateIntent(ctx, decimal.NewFromInt(100), "EUR", nil)
	require.NoError(t, err)
	require.NoError(t, p.SetStatus(paid.ID, domain.PaymentSucceeded))
	assert.ErrorIs(t, p.CancelIntent(ctx, paid.ID), ErrNotCancelable)

	assert.ErrorIs(t, p.CancelIntent(ctx, "pi_missing"), domain.ErrNotFound)
}
