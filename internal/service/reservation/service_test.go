package reservation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"dealership/internal/cart"
	"dealership/internal/configurator"
	"dealership/internal/domain"
	"dealership/internal/payment"
	reservationrepo "dealership/internal/repository/reservation"
	"dealership/internal/session"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryRepo struct {
	mu        sync.Mutex
	items     map[string]domain.Reservation
	createErr error
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{items: map[string]domain.Reservation{}}
}

func (r *memoryRepo) Create(_ context.Context, res domain.Reservation) (*domain.Reservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return nil, r.createErr
	}
	if _, held := r.pendingHold(res.HoldRef); held && res.Kind == domain.KindReservation && res.Status == domain.StatusPending {
		return nil, domain.ErrAlreadyExists
	}
	res.ID = fmt.Sprintf("r%d", len(r.items)+1)
	res.Total = decimal.Zero
	for i := range res.Lines {
		res.Lines[i].Total = res.Lines[i].UnitPrice.Mul(decimal.NewFromInt(int64(res.Lines[i].Quantity)))
		res.Total = res.Total.Add(res.Lines[i].Total)
	}
	res.ClientSecret = ""
	r.items[res.ID] = res
	return &res, nil
}

func (r *memoryRepo) GetByID(_ context.Context, id string) (*domain.Reservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	res, ok := r.items[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &res, nil
}

func (r *memoryRepo) GetByToken(_ context.Context, token string) (*domain.Reservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, res := range r.items {
		if res.Token == token {
			return &res, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memoryRepo) ActiveHold(_ context.Context, ref string) (*domain.Reservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	res, ok := r.pendingHold(ref)
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &res, nil
}

func (r *memoryRepo) pendingHold(ref string) (domain.Reservation, bool) {
	if ref == "" {
		return domain.Reservation{}, false
	}
	for _, res := range r.items {
		if res.HoldRef == ref && res.Kind == domain.KindReservation && res.Status == domain.StatusPending {
			return res, true
		}
	}
	return domain.Reservation{}, false
}

func (r *memoryRepo) orders() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, res := range r.items {
		if res.Kind == domain.KindOrder {
			n++
		}
	}
	return n
}

// recordingProvider wraps Offline, remembers created intent ids and runs
// beforeReturn once from inside the first CreateIntent call.
type recordingProvider struct {
	*payment.Offline
	created      []string
	beforeReturn func()
}

func (p *recordingProvider) CreateIntent(ctx context.Context, amount decimal.Decimal, currency string, metadata map[string]string) (*payment.Intent, error) {
	in, err := p.Offline.CreateIntent(ctx, amount, currency, metadata)
	if err == nil {
		p.created = append(p.created, in.ID)
	}
	if hook := p.beforeReturn; hook != nil {
		p.beforeReturn = nil
		hook()
	}
	return in, err
}

func (r *memoryRepo) List(_ context.Context, f reservationrepo.ListFilter) ([]domain.Reservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Reservation
	for _, res := range r.items {
		if (f.Kind == "" || res.Kind == f.Kind) && (f.Status == "" || res.Status == f.Status) {
			out = append(out, res)
		}
	}
	return out, nil
}

func (r *memoryRepo) UpdateStatus(_ context.Context, id, from, to string, decidedBy *string) (*domain.Reservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	res, ok := r.items[id]
	if !ok || res.Status != from {
		return nil, domain.ErrNotFound
	}
	res.Status = to
	if decidedBy != nil {
		res.DecidedBy = decidedBy
	}
	r.items[id] = res
	return &res, nil
}

func (r *memoryRepo) UpdatePayment(_ context.Context, id, status, paymentStatus string) (*domain.Reservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	res, ok := r.items[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	res.Status = status
	res.PaymentStatus = paymentStatus
	r.items[id] = res
	return &res, nil
}

type fixture struct {
	svc      *Service
	repo     *memoryRepo
	store    *session.Store
	payments *payment.Offline
	token    string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := session.NewStore(time.Hour)
	token, _, err := store.Issue()
	require.NoError(t, err)
	repo := newMemoryRepo()
	payments := payment.NewOffline()
	return &fixture{
		svc:      New(repo, store, payments, Options{Hold: 48 * time.Hour, Currency: "EUR"}, nil),
		repo:     repo,
		store:    store,
		payments: payments,
		token:    token,
	}
}

// use rebuilds the service around a different payment provider.
func (f *fixture) use(payments payment.Provider) {
	f.svc = New(f.repo, f.store, payments, Options{Hold: 48 * time.Hour, Currency: "EUR"}, nil)
}

func usedConfiguration() *configurator.Configuration {
	return configurator.New(domain.VehicleVariant{
		ID:        "used-911",
		Name:      "911 Carrera 2019",
		Condition: domain.ConditionUsed,
		BasePrice: decimal.NewFromInt(89000),
	})
}

func (f *fixture) openFor(t *testing.T, token string, cfg *configurator.Configuration) string {
	t.Helper()
	_, err := f.store.Update(token, func(s *session.Session) error {
		s.Configurations[cfg.ID] = cfg
		return nil
	})
	require.NoError(t, err)
	return cfg.ID
}

func configured() *configurator.Configuration {
	cfg := configurator.New(domain.VehicleVariant{
		ID:        "911",
		Name:      "911 Carrera S",
		Condition: domain.ConditionNew,
		BasePrice: decimal.NewFromInt(158500),
	})
	_ = cfg.Select(domain.OptionItem{ID: "red", Kind: domain.KindExteriorColor, Label: "Red", Surcharge: decimal.NewFromInt(2000)})
	_ = cfg.Select(domain.OptionItem{ID: "rs", Kind: domain.KindWheel, Label: "RS", Surcharge: decimal.NewFromInt(1800), DiameterInch: 21})
	return cfg
}

func (f *fixture) openConfiguration(t *testing.T) string {
	t.Helper()
	cfg := configured()
	_, err := f.store.Update(f.token, func(s *session.Session) error {
		s.Configurations[cfg.ID] = cfg
		return nil
	})
	require.NoError(t, err)
	return cfg.ID
}

func (f *fixture) fillCart(t *testing.T) {
	t.Helper()
	_, err := f.store.Update(f.token, func(s *session.Session) error {
		s.Cart = cart.AddVehicle(s.Cart, configured().Snapshot())
		next, err := cart.AddAccessory(s.Cart, domain.Accessory{ID: "mats", Name: "Mats", Price: decimal.NewFromInt(35)}, 2)
		s.Cart = next
		return err
	})
	require.NoError(t, err)
}

func TestSubmit_ConfigurationCreatesPendingHold(t *testing.T) {
	f := newFixture(t)
	cfgID := f.openConfiguration(t)

	sub, err := f.svc.Submit(context.Background(), f.token, SubmitInput{Source: SourceConfiguration, ConfigurationID: cfgID})
	require.NoError(t, err)
	assert.NotEmpty(t, sub.Token)
	assert.Empty(t, sub.ClientSecret)
	assert.Equal(t, domain.KindReservation, sub.Reservation.Kind)
	assert.Equal(t, domain.StatusPending, sub.Reservation.Status)
	assert.True(t, sub.Reservation.Total.Equal(decimal.NewFromInt(162300)), "got %s", sub.Reservation.Total)
	require.NotNil(t, sub.Reservation.ExpiresAt)

	_, err = f.svc.Submit(context.Background(), f.token, SubmitInput{Source: SourceConfiguration, ConfigurationID: "missing"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSubmit_CartCreatesOrderAndClearsCart(t *testing.T) {
	f := newFixture(t)
	f.fillCart(t)

	sub, err := f.svc.Submit(context.Background(), f.token, SubmitInput{Source: SourceCart})
	require.NoError(t, err)
	assert.NotEmpty(t, sub.ClientSecret)
	assert.Equal(t, domain.KindOrder, sub.Reservation.Kind)
	assert.Equal(t, domain.StatusAwaitingPayment, sub.Reservation.Status)
	assert.True(t, sub.Reservation.Total.Equal(decimal.NewFromInt(162370)), "got %s", sub.Reservation.Total)

	sess, err := f.store.Lookup(f.token)
	require.NoError(t, err)
	assert.Empty(t, sess.Cart.Lines)

	_, err = f.svc.Submit(context.Background(), f.token, SubmitInput{Source: SourceCart})
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestSubmit_RepricesTamperedVehicleLine(t *testing.T) {
	f := newFixture(t)
	_, err := f.store.Update(f.token, func(s *session.Session) error {
		s.Cart = cart.AddVehicle(s.Cart, configured().Snapshot())
		s.Cart.Lines[0].UnitPrice = decimal.NewFromInt(1)
		return nil
	})
	require.NoError(t, err)

	sub, err := f.svc.Submit(context.Background(), f.token, SubmitInput{Source: SourceCart})
	require.NoError(t, err)
	assert.True(t, sub.Reservation.Total.Equal(decimal.NewFromInt(162300)), "got %s", sub.Reservation.Total)
}

func TestSubmit_UnknownSource(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Submit(context.Background(), f.token, SubmitInput{Source: "wishlist"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.svc.Submit(context.Background(), "bogus", SubmitInput{Source: SourceCart})
	assert.ErrorIs(t, err, session.ErrInvalidToken)
}

func TestStatus_ExpiresPendingHold(t *testing.T) {
	f := newFixture(t)
	cfgID := f.openConfiguration(t)
	sub, err := f.svc.Submit(context.Background(), f.token, SubmitInput{Source: SourceConfiguration, ConfigurationID: cfgID})
	require.NoError(t, err)

	got, err := f.svc.Status(context.Background(), sub.Token)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, got.Status)

	f.svc.now = func() time.Time { return time.Now().Add(49 * time.Hour) }
	got, err = f.svc.Status(context.Background(), sub.Token)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusExpired, got.Status)
	assert.True(t, domain.TerminalStatus(got.Status))

	_, err = f.svc.Decide(context.Background(), "adv", got.ID, DecisionConfirm)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestStatus_FollowsPaymentProvider(t *testing.T) {
	f := newFixture(t)
	f.fillCart(t)
	sub, err := f.svc.Submit(context.Background(), f.token, SubmitInput{Source: SourceCart})
	require.NoError(t, err)

	stored, err := f.repo.GetByToken(context.Background(), sub.Token)
	require.NoError(t, err)
	require.NoError(t, f.payments.SetStatus(stored.PaymentIntentID, domain.PaymentSucceeded))

	got, err := f.svc.Status(context.Background(), sub.Token)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPaid, got.Status)
	assert.Equal(t, domain.PaymentSucceeded, got.PaymentStatus)
}

func TestDecide(t *testing.T) {
	f := newFixture(t)
	cfgID := f.openConfiguration(t)
	sub, err := f.svc.Submit(context.Background(), f.token, SubmitInput{Source: SourceConfiguration, ConfigurationID: cfgID})
	require.NoError(t, err)
	ctx := context.Background()

	_, err = f.svc.Decide(ctx, "adv-1", sub.Reservation.ID, "maybe")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	got, err := f.svc.Decide(ctx, "adv-1", sub.Reservation.ID, DecisionConfirm)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, got.Status)
	require.NotNil(t, got.DecidedBy)
	assert.Equal(t, "adv-1", *got.DecidedBy)

	_, err = f.svc.Decide(ctx, "adv-1", sub.Reservation.ID, DecisionReject)
	assert.True(t, errors.Is(err, ErrInvalidTransition))

	pending, err := f.svc.List(ctx, domain.KindReservation, domain.StatusPending)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestSubmit_CartClaimedBeforePayment(t *testing.T) {
	f := newFixture(t)
	f.fillCart(t)

	var secondErr error
	provider := &recordingProvider{Offline: payment.NewOffline()}
	provider.beforeReturn = func() {
		_, secondErr = f.svc.Submit(context.Background(), f.token, SubmitInput{Source: SourceCart})
	}
	f.use(provider)

	sub, err := f.svc.Submit(context.Background(), f.token, SubmitInput{Source: SourceCart})
	require.NoError(t, err)
	assert.True(t, sub.Reservation.Total.Equal(decimal.NewFromInt(162370)), "got %s", sub.Reservation.Total)
	assert.ErrorIs(t, secondErr, ErrEmptyCart)
	assert.Equal(t, 1, f.repo.orders())
	assert.Len(t, provider.created, 1)
}

func TestSubmit_StoreFailureCancelsIntentAndRestoresCart(t *testing.T) {
	f := newFixture(t)
	f.fillCart(t)
	provider := &recordingProvider{Offline: payment.NewOffline()}
	f.use(provider)
	f.repo.createErr = errors.New("connection reset")

	_, err := f.svc.Submit(context.Background(), f.token, SubmitInput{Source: SourceCart})
	require.Error(t, err)
	assert.Zero(t, f.repo.orders())

	require.Len(t, provider.created, 1)
	intent, err := provider.GetIntent(context.Background(), provider.created[0])
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentCanceled, intent.Status)

	sess, err := f.store.Lookup(f.token)
	require.NoError(t, err)
	require.Len(t, sess.Cart.Lines, 2)
	assert.True(t, cart.Total(sess.Cart).Equal(decimal.NewFromInt(162370)), "got %s", cart.Total(sess.Cart))

	f.repo.createErr = nil
	sub, err := f.svc.Submit(context.Background(), f.token, SubmitInput{Source: SourceCart})
	require.NoError(t, err)
	assert.Equal(t, domain.KindOrder, sub.Reservation.Kind)
}

func TestSubmit_UsedVehicleHeldOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	other, _, err := f.store.Issue()
	require.NoError(t, err)

	first, err := f.svc.Submit(ctx, f.token, SubmitInput{Source: SourceConfiguration, ConfigurationID: f.openFor(t, f.token, usedConfiguration())})
	require.NoError(t, err)
	assert.Equal(t, "used-911", first.Reservation.HoldRef)

	_, err = f.svc.Submit(ctx, other, SubmitInput{Source: SourceConfiguration, ConfigurationID: f.openFor(t, other, usedConfiguration())})
	assert.ErrorIs(t, err, ErrVehicleHeld)
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)

	f.svc.now = func() time.Time { return time.Now().Add(49 * time.Hour) }
	second, err := f.svc.Submit(ctx, other, SubmitInput{Source: SourceConfiguration, ConfigurationID: f.openFor(t, other, usedConfiguration())})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, second.Reservation.Status)

	lapsed, err := f.repo.GetByID(ctx, first.Reservation.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusExpired, lapsed.Status)
}

func TestSubmit_NewVehicleHoldsDoNotConflict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	other, _, err := f.store.Issue()
	require.NoError(t, err)

	for _, token := range []string{f.token, other} {
		sub, err := f.svc.Submit(ctx, token, SubmitInput{Source: SourceConfiguration, ConfigurationID: f.openFor(t, token, configured())})
		require.NoError(t, err)
		assert.Empty(t, sub.Reservation.HoldRef)
	}
}
