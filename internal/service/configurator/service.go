// Package configurator drives the per-session configuration wizard.
package configurator

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"

	"dealership/internal/cart"
	wizard "dealership/internal/configurator"
	"dealership/internal/domain"
	"dealership/internal/session"
)

// Navigation actions accepted by Navigate.
const (
	ActionNext     = "next"
	ActionPrevious = "previous"
	ActionJump     = "jump"
)

type variantSource interface {
	GetByID(ctx context.Context, id string) (*domain.VehicleVariant, error)
}

type optionSource interface {
	GetByID(ctx context.Context, id string) (*domain.OptionItem, error)
}

type Service struct {
	sessions *session.Store
	variants variantSource
	options  optionSource
	logger   *log.Logger
}

func New(sessions *session.Store, variants variantSource, options optionSource, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{sessions: sessions, variants: variants, options: options, logger: logger}
}

// Start opens a configuration of the variant in the caller's session.
func (s *Service) Start(ctx context.Context, token, variantID string) (*wizard.Configuration, error) {
	v, err := s.variants.GetByID(ctx, strings.TrimSpace(variantID))
	if err != nil {
		return nil, err
	}
	cfg := wizard.New(*v)
	if _, err := s.sessions.Update(token, func(sess *session.Session) error {
		sess.Configurations[cfg.ID] = cfg
		return nil
	}); err != nil {
		return nil, err
	}
	s.logger.Printf("configurator: started id=%s variant=%s", cfg.ID, v.ID)
	return cfg.Clone(), nil
}

func (s *Service) Get(token, id string) (*wizard.Configuration, error) {
	sess, err := s.sessions.Lookup(token)
	if err != nil {
		return nil, err
	}
	cfg, ok := sess.Configuration(id)
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cfg, nil
}

// List returns the session's open configurations.
func (s *Service) List(token string) ([]*wizard.Configuration, error) {
	sess, err := s.sessions.Lookup(token)
	if err != nil {
		return nil, err
	}
	out := make([]*wizard.Configuration, 0, len(sess.Configurations))
	for _, cfg := range sess.Configurations {
		out = append(out, cfg)
	}
	return out, nil
}

// Select looks the option up in the catalog and applies it to the configuration.
// Used vehicles are sold as listed and accept no options.
func (s *Service) Select(ctx context.Context, token, id, optionID string) (*wizard.Configuration, error) {
	item, err := s.options.GetByID(ctx, strings.TrimSpace(optionID))
	if err != nil {
		return nil, err
	}
	return s.mutate(token, id, func(cfg *wizard.Configuration) error {
		if cfg.Variant.Condition == domain.ConditionUsed {
			return fmt.Errorf("%w: used vehicles cannot be configured", domain.ErrInvalidInput)
		}
		return cfg.Select(*item)
	})
}

// Deselect removes an option. Removing an option that is not selected is a no-op.
func (s *Service) Deselect(token, id, optionID string) (*wizard.Configuration, error) {
	return s.mutate(token, id, func(cfg *wizard.Configuration) error {
		cfg.Deselect(optionID)
		return nil
	})
}

func (s *Service) ClearKind(token, id, kind string) (*wizard.Configuration, error) {
	k, err := domain.ParseOptionKind(kind)
	if err != nil {
		return nil, err
	}
	return s.mutate(token, id, func(cfg *wizard.Configuration) error {
		return cfg.ClearKind(k)
	})
}

// Navigate moves the wizard. step is only read for ActionJump.
func (s *Service) Navigate(token, id, action, step string) (*wizard.Configuration, error) {
	return s.mutate(token, id, func(cfg *wizard.Configuration) error {
		switch strings.ToLower(strings.TrimSpace(action)) {
		case ActionNext:
			cfg.Next()
		case ActionPrevious:
			cfg.Previous()
		case ActionJump:
			target, err := wizard.ParseStep(step)
			if err != nil {
				return err
			}
			return cfg.JumpTo(target)
		default:
			return fmt.Errorf("%w: unknown action %q", domain.ErrInvalidInput, action)
		}
		return nil
	})
}

// AddToCart freezes the configuration into a vehicle line. The configuration
// stays open and later edits do not reach the cart line.
func (s *Service) AddToCart(token, id string) (cart.Cart, error) {
	var out cart.Cart
	_, err := s.sessions.Update(token, func(sess *session.Session) error {
		cfg, ok := sess.Configuration(id)
		if !ok {
			return domain.ErrNotFound
		}
		sess.Cart = cart.AddVehicle(sess.Cart, cfg.Snapshot())
		out = sess.Cart
		return nil
	})
	if err != nil {
		return cart.Cart{}, err
	}
	s.logger.Printf("configurator: added to cart id=%s lines=%d", id, len(out.Lines))
	return out, nil
}

func (s *Service) Discard(token, id string) error {
	_, err := s.sessions.Update(token, func(sess *session.Session) error {
		if _, ok := sess.Configuration(id); !ok {
			return domain.ErrNotFound
		}
		delete(sess.Configurations, id)
		return nil
	})
	return err
}

func (s *Service) mutate(token, id string, fn func(*wizard.Configuration) error) (*wizard.Configuration, error) {
	var out *wizard.Configuration
	_, err := s.sessions.Update(token, func(sess *session.Session) error {
		cfg, ok := sess.Configuration(id)
		if !ok {
			return domain.ErrNotFound
		}
		if err := fn(cfg); err != nil {
			return err
		}
		out = cfg.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
