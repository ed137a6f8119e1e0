// Package cart applies cart updates to the cart held in a visitor session.
package cart

import (
	"context"
	"io"
	"log"
	"strings"

	cartstate "dealership/internal/cart"
	"dealership/internal/domain"
	"dealership/internal/session"
)

type accessorySource interface {
	GetByID(ctx context.Context, id string) (*domain.Accessory, error)
}

type Service struct {
	sessions    *session.Store
	accessories accessorySource
	logger      *log.Logger
}

func New(sessions *session.Store, accessories accessorySource, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{sessions: sessions, accessories: accessories, logger: logger}
}

func (s *Service) Get(token string) (cartstate.Cart, error) {
	sess, err := s.sessions.Lookup(token)
	if err != nil {
		return cartstate.Cart{}, err
	}
	return sess.Cart, nil
}

// AddAccessory adds qty units of a catalog accessory at its current price.
func (s *Service) AddAccessory(ctx context.Context, token, accessoryID string, qty int) (cartstate.Cart, error) {
	if qty < 1 {
		return cartstate.Cart{}, cartstate.ErrInvalidQuantity
	}
	acc, err := s.accessories.GetByID(ctx, strings.TrimSpace(accessoryID))
	if err != nil {
		return cartstate.Cart{}, err
	}
	return s.apply(token, func(c cartstate.Cart) (cartstate.Cart, error) {
		return cartstate.AddAccessory(c, *acc, qty)
	})
}

func (s *Service) SetQuantity(token, lineID string, qty int) (cartstate.Cart, error) {
	return s.apply(token, func(c cartstate.Cart) (cartstate.Cart, error) {
		return cartstate.SetQuantity(c, lineID, qty)
	})
}

// Decrement takes qty units off an accessory line, undoing one add.
func (s *Service) Decrement(token, lineID string, qty int) (cartstate.Cart, error) {
	return s.apply(token, func(c cartstate.Cart) (cartstate.Cart, error) {
		return cartstate.Decrement(c, lineID, qty)
	})
}

func (s *Service) Remove(token, lineID string) (cartstate.Cart, error) {
	return s.apply(token, func(c cartstate.Cart) (cartstate.Cart, error) {
		return cartstate.Remove(c, lineID), nil
	})
}

func (s *Service) Clear(token string) (cartstate.Cart, error) {
	return s.apply(token, func(c cartstate.Cart) (cartstate.Cart, error) {
		return cartstate.Clear(c), nil
	})
}

func (s *Service) apply(token string, fn func(cartstate.Cart) (cartstate.Cart, error)) (cartstate.Cart, error) {
	sess, err := s.sessions.Update(token, func(sess *session.Session) error {
		next, err := fn(sess.Cart)
		if err != nil {
			return err
		}
		sess.Cart = next
		return nil
	})
	if err != nil {
		return cartstate.Cart{}, err
	}
	s.logger.Printf("cart: session=%s lines=%d total=%s", sess.ID, len(sess.Cart.Lines), cartstate.Total(sess.Cart))
	return sess.Cart, nil
}
