package payment

import (
	"context"
	"io"
	"log"

	"dealership/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
)

type stripeProvider struct {
	client paymentintent.Client
	logger *log.Logger
}

// NewStripe returns a Provider backed by the Stripe PaymentIntents API.
func NewStripe(secretKey string, logger *log.Logger) Provider {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &stripeProvider{
		client: paymentintent.Client{B: stripe.GetBackend(stripe.APIBackend), Key: secretKey},
		logger: logger,
	}
}

func (p *stripeProvider) CreateIntent(ctx context.Context, amount decimal.Decimal, currency string, metadata map[string]string) (*Intent, error) {
	cents, err := MinorUnits(amount)
	if err != nil {
		return nil, err
	}
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(cents),
		Currency: stripe.String(normalizeCurrency(currency)),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}
	pi, err := p.client.New(params)
	if err != nil {
		p.logger.Printf("stripe: create intent amount=%d currency=%s error=%v", cents, currency, err)
		return nil, err
	}
	p.logger.Printf("stripe: created intent id=%s amount=%d", pi.ID, cents)
	return &Intent{ID: pi.ID, ClientSecret: pi.ClientSecret, Status: intentStatus(pi)}, nil
}

func (p *stripeProvider) GetIntent(ctx context.Context, id string) (*Intent, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx
	pi, err := p.client.Get(id, params)
	if err != nil {
		if stripeErr, ok := err.(*stripe.Error); ok && stripeErr.HTTPStatusCode == 404 {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &Intent{ID: pi.ID, ClientSecret: pi.ClientSecret, Status: intentStatus(pi)}, nil
}

func (p *stripeProvider) CancelIntent(ctx context.Context, id string) error {
	params := &stripe.PaymentIntentCancelParams{CancellationReason: stripe.String("abandoned")}
	params.Context = ctx
	if _, err := p.client.Cancel(id, params); err != nil {
		if stripeErr, ok := err.(*stripe.Error); ok && stripeErr.HTTPStatusCode == 404 {
			return domain.ErrNotFound
		}
		p.logger.Printf("stripe: cancel intent id=%s error=%v", id, err)
		return err
	}
	p.logger.Printf("stripe: canceled intent id=%s", id)
	return nil
}

// intentStatus maps a Stripe intent onto a payment status. A declined attempt
// sends the intent back to requires_payment_method with LastPaymentError set;
// that is reported as failed.
func intentStatus(pi *stripe.PaymentIntent) string {
	switch pi.Status {
	case stripe.PaymentIntentStatusSucceeded:
		return domain.PaymentSucceeded
	case stripe.PaymentIntentStatusProcessing, stripe.PaymentIntentStatusRequiresCapture:
		return domain.PaymentProcessing
	case stripe.PaymentIntentStatusCanceled:
		return domain.PaymentCanceled
	case stripe.PaymentIntentStatusRequiresPaymentMethod:
		if pi.LastPaymentError != nil {
			return domain.PaymentFailed
		}
		return domain.PaymentRequiresPayment
	default:
		return domain.PaymentRequiresPayment
	}
}
