// Package reservation turns a session's configuration or cart into a stored
// reservation or order and tracks it to a terminal status.
package reservation

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"dealership/internal/cart"
	"dealership/internal/domain"
	"dealership/internal/payment"
	"dealership/internal/pricing"
	reservationrepo "dealership/internal/repository/reservation"
	"dealership/internal/session"
	"github.com/shopspring/decimal"
)

// Submission sources.
const (
	SourceConfiguration = "configuration"
	SourceCart          = "cart"
)

// Advisor decisions.
const (
	DecisionConfirm = "confirm"
	DecisionReject  = "reject"
)

var (
	ErrEmptyCart         = errors.New("cart is empty")
	ErrInvalidTransition = errors.New("reservation cannot change to the requested status")
	ErrVehicleHeld       = fmt.Errorf("%w: vehicle is held by another reservation", domain.ErrAlreadyExists)
)

// SubmitInput selects what is submitted. ConfigurationID is required for
// SourceConfiguration. AccountID links the submission to a signed-in account.
type SubmitInput struct {
	Source          string  `json:"source"`
	ConfigurationID string  `json:"configurationId"`
	AccountID       *string `json:"-"`
}

// Submission is returned to the submitter: a token to poll, plus the payment
// client secret for orders.
type Submission struct {
	Token        string              `json:"token"`
	ClientSecret string              `json:"clientSecret,omitempty"`
	Reservation  *domain.Reservation `json:"reservation"`
}

// Options tune a Service. Zero values fall back to defaults.
type Options struct {
	Hold     time.Duration
	Currency string
}

type Service struct {
	repo     reservationrepo.Repository
	sessions *session.Store
	payments payment.Provider
	hold     time.Duration
	currency string
	now      func() time.Time
	logger   *log.Logger
}

func New(repo reservationrepo.Repository, sessions *session.Store, payments payment.Provider, opts Options, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if opts.Hold <= 0 {
		opts.Hold = 48 * time.Hour
	}
	if opts.Currency == "" {
		opts.Currency = "EUR"
	}
	return &Service{
		repo:     repo,
		sessions: sessions,
		payments: payments,
		hold:     opts.Hold,
		currency: opts.Currency,
		now:      time.Now,
		logger:   logger,
	}
}

// Submit stores a reservation for a configuration or an order for the cart.
// Amounts are always rebuilt from the server-held session state.
func (s *Service) Submit(ctx context.Context, sessionToken string, in SubmitInput) (*Submission, error) {
	sess, err := s.sessions.Lookup(sessionToken)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(strings.TrimSpace(in.Source)) {
	case SourceConfiguration:
		return s.submitConfiguration(ctx, sess, in)
	case SourceCart:
		return s.submitCart(ctx, sessionToken, sess, in)
	default:
		return nil, fmt.Errorf("%w: source must be %q or %q", domain.ErrInvalidInput, SourceConfiguration, SourceCart)
	}
}

func (s *Service) submitConfiguration(ctx context.Context, sess session.Session, in SubmitInput) (*Submission, error) {
	cfg, ok := sess.Configuration(strings.TrimSpace(in.ConfigurationID))
	if !ok {
		return nil, domain.ErrNotFound
	}
	snap := cfg.Snapshot()
	price := pricing.Total(snap.Variant.BasePrice, snap.Options...)
	snap.Price = price

	// Only one pending hold may point at a used vehicle.
	var holdRef string
	if snap.Variant.Condition == domain.ConditionUsed {
		holdRef = snap.Variant.ID
		if err := s.ensureNotHeld(ctx, holdRef); err != nil {
			return nil, err
		}
	}

	token, err := newToken()
	if err != nil {
		return nil, err
	}
	expiresAt := s.now().UTC().Add(s.hold)
	created, err := s.repo.Create(ctx, domain.Reservation{
		Token:         token,
		Kind:          domain.KindReservation,
		Status:        domain.StatusPending,
		PaymentStatus: domain.PaymentNone,
		Currency:      s.currency,
		SessionID:     sess.ID,
		HoldRef:       holdRef,
		AccountID:     in.AccountID,
		ExpiresAt:     &expiresAt,
		Lines: []domain.ReservationLine{{
			Kind:          cart.LineVehicle,
			RefID:         snap.Variant.ID,
			Name:          snap.Variant.Name,
			UnitPrice:     price,
			Quantity:      1,
			Configuration: &snap,
		}},
	})
	if err != nil {
		if holdRef != "" && errors.Is(err, domain.ErrAlreadyExists) {
			return nil, ErrVehicleHeld
		}
		return nil, err
	}
	s.logger.Printf("reservation: hold created id=%s variant=%s total=%s expires=%s", created.ID, snap.Variant.ID, created.Total, expiresAt.Format(time.RFC3339))
	return &Submission{Token: created.Token, Reservation: created}, nil
}

// ensureNotHeld returns ErrVehicleHeld while another pending hold on ref is
// inside its window. A lapsed hold is expired here so ref becomes free.
func (s *Service) ensureNotHeld(ctx context.Context, ref string) error {
	held, err := s.repo.ActiveHold(ctx, ref)
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	current, err := s.refresh(ctx, held)
	if err != nil {
		return err
	}
	if current.Status == domain.StatusPending {
		return ErrVehicleHeld
	}
	return nil
}

// submitCart takes the cart out of the session before any payment work, so
// a concurrent submit for the same session finds it empty. The lines go back
// into the session if the order cannot be placed.
func (s *Service) submitCart(ctx context.Context, sessionToken string, sess session.Session, in SubmitInput) (*Submission, error) {
	var claimed cart.Cart
	if _, err := s.sessions.Update(sessionToken, func(live *session.Session) error {
		if len(live.Cart.Lines) == 0 {
			return ErrEmptyCart
		}
		claimed = live.Cart
		live.Cart = cart.Clear(live.Cart)
		return nil
	}); err != nil {
		return nil, err
	}

	sub, err := s.placeOrder(ctx, sess.ID, claimed, in)
	if err != nil {
		s.restoreCart(sessionToken, claimed)
		return nil, err
	}
	return sub, nil
}

func (s *Service) placeOrder(ctx context.Context, sessionID string, claimed cart.Cart, in SubmitInput) (*Submission, error) {
	lines, total := repriceCart(claimed)
	if !total.IsPositive() {
		return nil, fmt.Errorf("%w: order total must be positive", domain.ErrInvalidInput)
	}

	token, err := newToken()
	if err != nil {
		return nil, err
	}
	intent, err := s.payments.CreateIntent(ctx, total, s.currency, map[string]string{
		"reservation_token": token,
		"session_id":        sessionID,
	})
	if err != nil {
		return nil, fmt.Errorf("create payment intent: %w", err)
	}

	created, err := s.repo.Create(ctx, domain.Reservation{
		Token:           token,
		Kind:            domain.KindOrder,
		Status:          domain.StatusAwaitingPayment,
		PaymentStatus:   intent.Status,
		Currency:        s.currency,
		PaymentIntentID: intent.ID,
		SessionID:       sessionID,
		AccountID:       in.AccountID,
		Lines:           lines,
	})
	if err != nil {
		s.logger.Printf("reservation: store order failed intent=%s err=%v", intent.ID, err)
		if cerr := s.payments.CancelIntent(context.WithoutCancel(ctx), intent.ID); cerr != nil {
			s.logger.Printf("reservation: cancel orphaned intent=%s err=%v", intent.ID, cerr)
		} else {
			s.logger.Printf("reservation: canceled orphaned intent=%s", intent.ID)
		}
		return nil, err
	}
	created.ClientSecret = intent.ClientSecret
	s.logger.Printf("reservation: order created id=%s lines=%d total=%s intent=%s", created.ID, len(lines), created.Total, intent.ID)
	return &Submission{Token: created.Token, ClientSecret: intent.ClientSecret, Reservation: created}, nil
}

// restoreCart puts claimed lines back ahead of anything added since the claim.
func (s *Service) restoreCart(sessionToken string, claimed cart.Cart) {
	if _, err := s.sessions.Update(sessionToken, func(live *session.Session) error {
		live.Cart.Lines = append(append([]cart.Line(nil), claimed.Lines...), live.Cart.Lines...)
		return nil
	}); err != nil {
		s.logger.Printf("reservation: restore cart lines=%d err=%v", len(claimed.Lines), err)
	}
}

// Status returns the current state of a submission. Pending holds past their
// expiry are moved to expired and open orders are refreshed from the payment
// provider.
func (s *Service) Status(ctx context.Context, token string) (*domain.Reservation, error) {
	r, err := s.repo.GetByToken(ctx, strings.TrimSpace(token))
	if err != nil {
		return nil, err
	}
	return s.refresh(ctx, r)
}

// List returns submissions for the advisor dashboard.
func (s *Service) List(ctx context.Context, kind, status string) ([]domain.Reservation, error) {
	kind = strings.ToLower(strings.TrimSpace(kind))
	switch kind {
	case "", domain.KindReservation, domain.KindOrder:
	default:
		return nil, fmt.Errorf("%w: unknown kind %q", domain.ErrInvalidInput, kind)
	}
	return s.repo.List(ctx, reservationrepo.ListFilter{Kind: kind, Status: strings.ToLower(strings.TrimSpace(status))})
}

// Decide records an advisor's decision on a pending reservation.
func (s *Service) Decide(ctx context.Context, advisorID, id, decision string) (*domain.Reservation, error) {
	var to string
	switch strings.ToLower(strings.TrimSpace(decision)) {
	case DecisionConfirm:
		to = domain.StatusConfirmed
	case DecisionReject:
		to = domain.StatusRejected
	default:
		return nil, fmt.Errorf("%w: decision must be %q or %q", domain.ErrInvalidInput, DecisionConfirm, DecisionReject)
	}

	r, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if r, err = s.refresh(ctx, r); err != nil {
		return nil, err
	}
	if r.Kind != domain.KindReservation || r.Status != domain.StatusPending {
		return nil, fmt.Errorf("%w: %s %s", ErrInvalidTransition, r.Kind, r.Status)
	}

	var decidedBy *string
	if advisorID != "" {
		decidedBy = &advisorID
	}
	updated, err := s.repo.UpdateStatus(ctx, r.ID, domain.StatusPending, to, decidedBy)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrInvalidTransition
		}
		return nil, err
	}
	s.logger.Printf("reservation: decided id=%s status=%s advisor=%s", updated.ID, updated.Status, advisorID)
	return updated, nil
}

func (s *Service) refresh(ctx context.Context, r *domain.Reservation) (*domain.Reservation, error) {
	switch {
	case r.Kind == domain.KindReservation && r.Status == domain.StatusPending:
		if r.ExpiresAt == nil || !s.now().After(*r.ExpiresAt) {
			return r, nil
		}
		expired, err := s.repo.UpdateStatus(ctx, r.ID, domain.StatusPending, domain.StatusExpired, nil)
		if errors.Is(err, domain.ErrNotFound) {
			return s.repo.GetByID(ctx, r.ID)
		}
		if err != nil {
			return nil, err
		}
		s.logger.Printf("reservation: hold expired id=%s", r.ID)
		return expired, nil

	case r.Kind == domain.KindOrder && !domain.TerminalStatus(r.Status) && r.PaymentIntentID != "":
		intent, err := s.payments.GetIntent(ctx, r.PaymentIntentID)
		if err != nil {
			s.logger.Printf("reservation: payment lookup id=%s intent=%s err=%v", r.ID, r.PaymentIntentID, err)
			return r, nil
		}
		status := payment.OrderStatus(intent.Status)
		if intent.Status == r.PaymentStatus && status == r.Status {
			return r, nil
		}
		updated, err := s.repo.UpdatePayment(ctx, r.ID, status, intent.Status)
		if err != nil {
			return nil, err
		}
		s.logger.Printf("reservation: payment update id=%s status=%s payment=%s", r.ID, status, intent.Status)
		return updated, nil
	}
	return r, nil
}

// repriceCart rebuilds every line amount from the frozen line data. Vehicle
// lines are priced from their configuration snapshot, not from the stored
// unit price.
func repriceCart(c cart.Cart) ([]domain.ReservationLine, decimal.Decimal) {
	lines := make([]domain.ReservationLine, 0, len(c.Lines))
	total := decimal.Zero
	for _, l := range c.Lines {
		unit := l.UnitPrice
		var snap *domain.ConfigurationSnapshot
		if l.Kind == cart.LineVehicle && l.Configuration != nil {
			frozen := *l.Configuration
			frozen.Price = pricing.Total(frozen.Variant.BasePrice, frozen.Options...)
			unit = frozen.Price
			snap = &frozen
		}
		line := domain.ReservationLine{
			Kind:          l.Kind,
			RefID:         l.RefID,
			Name:          l.Name,
			UnitPrice:     unit,
			Quantity:      l.Quantity,
			Total:         unit.Mul(decimal.NewFromInt(int64(l.Quantity))),
			Configuration: snap,
		}
		total = total.Add(line.Total)
		lines = append(lines, line)
	}
	return lines, total
}

func newToken() (string, error) {
	b := make([]byte, 18)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return "rsv_" + base64.RawURLEncoding.EncodeToString(b), nil
}
