package configurator

import (
	"context"
	"testing"
	"time"

	"dealership/internal/cart"
	wizard "dealership/internal/configurator"
	"dealership/internal/domain"
	"dealership/internal/session"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCatalog struct {
	variants map[string]domain.VehicleVariant
	options  map[string]domain.OptionItem
}

type variantLookup struct{ *stubCatalog }

func (s variantLookup) GetByID(_ context.Context, id string) (*domain.VehicleVariant, error) {
	v, ok := s.variants[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &v, nil
}

type optionLookup struct{ *stubCatalog }

func (s optionLookup) GetByID(_ context.Context, id string) (*domain.OptionItem, error) {
	o, ok := s.options[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &o, nil
}

func newFixture(t *testing.T) (*Service, string) {
	t.Helper()
	catalog := &stubCatalog{
		variants: map[string]domain.VehicleVariant{
			"911":  {ID: "911", Name: "911 Carrera S", Condition: domain.ConditionNew, BasePrice: decimal.NewFromInt(158500)},
			"used": {ID: "used", Name: "Cayman 2019", Condition: domain.ConditionUsed, BasePrice: decimal.NewFromInt(54000)},
		},
		options: map[string]domain.OptionItem{
			"red":   {ID: "red", Kind: domain.KindExteriorColor, Label: "Guards Red", Surcharge: decimal.NewFromInt(2000)},
			"black": {ID: "black", Kind: domain.KindInteriorColor, Label: "Black", Surcharge: decimal.Zero},
			"chalk": {ID: "chalk", Kind: domain.KindInteriorColor, Label: "Chalk", Surcharge: decimal.NewFromInt(450)},
			"rs":    {ID: "rs", Kind: domain.KindWheel, Label: "RS Spyder", Surcharge: decimal.NewFromInt(1800), DiameterInch: 21},
		},
	}
	store := session.NewStore(time.Hour)
	token, _, err := store.Issue()
	require.NoError(t, err)
	return New(store, variantLookup{catalog}, optionLookup{catalog}, nil), token
}

func TestStartSelectAndPrice(t *testing.T) {
	svc, token := newFixture(t)
	ctx := context.Background()

	cfg, err := svc.Start(ctx, token, "911")
	require.NoError(t, err)
	assert.True(t, cfg.Price().Equal(decimal.NewFromInt(158500)))

	_, err = svc.Select(ctx, token, cfg.ID, "red")
	require.NoError(t, err)
	cfg, err = svc.Select(ctx, token, cfg.ID, "rs")
	require.NoError(t, err)
	assert.True(t, cfg.Price().Equal(decimal.NewFromInt(162300)), "got %s", cfg.Price())

	cfg, err = svc.Select(ctx, token, cfg.ID, "chalk")
	require.NoError(t, err)
	cfg, err = svc.Select(ctx, token, cfg.ID, "black")
	require.NoError(t, err)
	assert.Len(t, cfg.Selection.InteriorColors, 2)

	cfg, err = svc.Deselect(token, cfg.ID, "chalk")
	require.NoError(t, err)
	assert.True(t, cfg.Price().Equal(decimal.NewFromInt(162300)))

	stored, err := svc.Get(token, cfg.ID)
	require.NoError(t, err)
	assert.True(t, stored.Price().Equal(cfg.Price()))
}

func TestSelect_UnknownOptionAndConfiguration(t *testing.T) {
	svc, token := newFixture(t)
	ctx := context.Background()

	cfg, err := svc.Start(ctx, token, "911")
	require.NoError(t, err)

	_, err = svc.Select(ctx, token, cfg.ID, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = svc.Select(ctx, token, "other", "red")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = svc.Start(ctx, token, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSelect_UsedVehicleRejectsOptions(t *testing.T) {
	svc, token := newFixture(t)
	ctx := context.Background()

	cfg, err := svc.Start(ctx, token, "used")
	require.NoError(t, err)
	_, err = svc.Select(ctx, token, cfg.ID, "red")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	stored, err := svc.Get(token, cfg.ID)
	require.NoError(t, err)
	assert.True(t, stored.Price().Equal(decimal.NewFromInt(54000)))
}

func TestNavigate(t *testing.T) {
	svc, token := newFixture(t)
	cfg, err := svc.Start(context.Background(), token, "911")
	require.NoError(t, err)

	cfg, err = svc.Navigate(token, cfg.ID, ActionPrevious, "")
	require.NoError(t, err)
	assert.Equal(t, wizard.StepExteriorColor, cfg.Step)

	cfg, err = svc.Navigate(token, cfg.ID, ActionNext, "")
	require.NoError(t, err)
	assert.Equal(t, wizard.StepInteriorColor, cfg.Step)

	cfg, err = svc.Navigate(token, cfg.ID, ActionJump, "summary")
	require.NoError(t, err)
	assert.Equal(t, wizard.StepSummary, cfg.Step)

	_, err = svc.Navigate(token, cfg.ID, ActionJump, "delivery")
	assert.ErrorIs(t, err, wizard.ErrUnknownStep)
	_, err = svc.Navigate(token, cfg.ID, "sideways", "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAddToCart_FreezesConfiguration(t *testing.T) {
	svc, token := newFixture(t)
	ctx := context.Background()

	cfg, err := svc.Start(ctx, token, "911")
	require.NoError(t, err)
	_, err = svc.Select(ctx, token, cfg.ID, "red")
	require.NoError(t, err)

	c, err := svc.AddToCart(token, cfg.ID)
	require.NoError(t, err)
	require.Len(t, c.Lines, 1)
	assert.Equal(t, cart.LineVehicle, c.Lines[0].Kind)
	assert.True(t, c.Lines[0].UnitPrice.Equal(decimal.NewFromInt(160500)))

	_, err = svc.Select(ctx, token, cfg.ID, "rs")
	require.NoError(t, err)
	sess, err := svc.sessions.Lookup(token)
	require.NoError(t, err)
	assert.True(t, cart.Total(sess.Cart).Equal(decimal.NewFromInt(160500)))
}

func TestDiscard(t *testing.T) {
	svc, token := newFixture(t)
	cfg, err := svc.Start(context.Background(), token, "911")
	require.NoError(t, err)

	require.NoError(t, svc.Discard(token, cfg.ID))
	assert.ErrorIs(t, svc.Discard(token, cfg.ID), domain.ErrNotFound)
	_, err = svc.Get(token, cfg.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestInvalidSessionToken(t *testing.T) {
	svc, _ := newFixture(t)
	_, err := svc.Start(context.Background(), "bogus", "911")
	assert.ErrorIs(t, err, session.ErrInvalidToken)
}
