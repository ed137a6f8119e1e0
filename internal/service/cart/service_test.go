package cart

import (
	"context"
	"errors"
	"testing"
	"time"

	cartstate "dealership/internal/cart"
	"dealership/internal/domain"
	"dealership/internal/session"
	"github.com/shopspring/decimal"
)

type stubAccessories map[string]domain.Accessory

func (s stubAccessories) GetByID(_ context.Context, id string) (*domain.Accessory, error) {
	a, ok := s[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &a, nil
}

func newFixture(t *testing.T) (*Service, *session.Store, string) {
	t.Helper()
	store := session.NewStore(time.Hour)
	token, _, err := store.Issue()
	if err != nil {
		t.Fatalf("issue session: %v", err)
	}
	accessories := stubAccessories{
		"mats": {ID: "mats", Name: "Floor mats", Price: decimal.NewFromInt(35)},
		"rack": {ID: "rack", Name: "Roof rack", Price: decimal.NewFromInt(420)},
	}
	return New(store, accessories, nil), store, token
}

func TestAddAccessory_MergesAndTotals(t *testing.T) {
	svc, _, token := newFixture(t)
	ctx := context.Background()

	if _, err := svc.AddAccessory(ctx, token, "mats", 1); err != nil {
		t.Fatalf("add: %v", err)
	}
	c, err := svc.AddAccessory(ctx, token, "mats", 1)
	if err != nil {
		t.Fatalf("add again: %v", err)
	}
	if len(c.Lines) != 1 || c.Lines[0].Quantity != 2 {
		t.Fatalf("expected one merged line with quantity 2, got %+v", c.Lines)
	}
	if !cartstate.Total(c).Equal(decimal.NewFromInt(70)) {
		t.Fatalf("expected total 70, got %s", cartstate.Total(c))
	}
}

func TestAddAccessory_Errors(t *testing.T) {
	svc, _, token := newFixture(t)
	ctx := context.Background()

	if _, err := svc.AddAccessory(ctx, token, "mats", 0); !errors.Is(err, cartstate.ErrInvalidQuantity) {
		t.Fatalf("expected ErrInvalidQuantity, got %v", err)
	}
	if _, err := svc.AddAccessory(ctx, token, "missing", 1); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := svc.AddAccessory(ctx, "bogus", "mats", 1); !errors.Is(err, session.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestSetQuantityRemoveAndClear(t *testing.T) {
	svc, _, token := newFixture(t)
	ctx := context.Background()

	c, err := svc.AddAccessory(ctx, token, "rack", 1)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	lineID := c.Lines[0].ID

	c, err = svc.SetQuantity(token, lineID, 3)
	if err != nil {
		t.Fatalf("set quantity: %v", err)
	}
	if !cartstate.Total(c).Equal(decimal.NewFromInt(1260)) {
		t.Fatalf("expected total 1260, got %s", cartstate.Total(c))
	}

	if _, err := svc.SetQuantity(token, lineID, 0); !errors.Is(err, cartstate.ErrInvalidQuantity) {
		t.Fatalf("expected ErrInvalidQuantity, got %v", err)
	}
	stored, err := svc.Get(token)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.Lines[0].Quantity != 3 {
		t.Fatalf("failed update must not change the cart, got quantity %d", stored.Lines[0].Quantity)
	}

	c, err = svc.Decrement(token, lineID, 1)
	if err != nil {
		t.Fatalf("decrement: %v", err)
	}
	if c.Lines[0].Quantity != 2 {
		t.Fatalf("expected quantity 2 after decrement, got %d", c.Lines[0].Quantity)
	}
	if _, err := svc.Decrement(token, "unknown", 1); !errors.Is(err, cartstate.ErrLineNotFound) {
		t.Fatalf("expected ErrLineNotFound, got %v", err)
	}

	if _, err := svc.Remove(token, "unknown"); err != nil {
		t.Fatalf("removing unknown line should be a no-op: %v", err)
	}
	c, err = svc.Remove(token, lineID)
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if len(c.Lines) != 0 {
		t.Fatalf("expected empty cart, got %+v", c.Lines)
	}

	if _, err := svc.AddAccessory(ctx, token, "mats", 2); err != nil {
		t.Fatalf("add: %v", err)
	}
	c, err = svc.Clear(token)
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if !cartstate.Total(c).IsZero() {
		t.Fatalf("expected zero total after clear, got %s", cartstate.Total(c))
	}
}
