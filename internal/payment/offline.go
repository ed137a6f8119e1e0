package payment

import (
	"context"
	"sync"

	"dealership/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Offline records intents in memory. It stands in for Stripe when no secret
// key is configured; SetStatus simulates provider-side progress.
type Offline struct {
	mu      sync.Mutex
	intents map[string]*Intent
}

func NewOffline() *Offline {
	return &Offline{intents: make(map[string]*Intent)}
}

func (o *Offline) CreateIntent(_ context.Context, amount decimal.Decimal, _ string, _ map[string]string) (*Intent, error) {
	if _, err := MinorUnits(amount); err != nil {
		return nil, err
	}
	id := "pi_" + uuid.NewString()
	in := &Intent{ID: id, ClientSecret: id + "_secret", Status: domain.PaymentRequiresPayment}
	o.mu.Lock()
	o.intents[id] = in
	o.mu.Unlock()
	copied := *in
	return &copied, nil
}

func (o *Offline) GetIntent(_ context.Context, id string) (*Intent, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	in, ok := o.intents[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *in
	return &copied, nil
}

// CancelIntent marks an intent canceled. Succeeded intents cannot be canceled.
func (o *Offline) CancelIntent(_ context.Context, id string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	in, ok := o.intents[id]
	if !ok {
		return domain.ErrNotFound
	}
	if in.Status == domain.PaymentSucceeded {
		return ErrNotCancelable
	}
	in.Status = domain.PaymentCanceled
	return nil
}

// SetStatus changes the recorded status of an intent.
func (o *Offline) SetStatus(id, status string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	in, ok := o.intents[id]
	if !ok {
		return domain.ErrNotFound
	}
	in.Status = status
	return nil
}
