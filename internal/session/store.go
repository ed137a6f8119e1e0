// Package session keeps per-visitor state (cart and open configurations)
// keyed by an anonymous session token.
package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"log"
	"sync"
	"time"

	"dealership/internal/cart"
	"dealership/internal/configurator"
	"github.com/google/uuid"
)

// ErrInvalidToken is returned for unknown or expired session tokens.
var ErrInvalidToken = errors.New("invalid session token")

// Session is the state owned by one browsing session.
type Session struct {
	ID             string                                 `json:"id"`
	Cart           cart.Cart                              `json:"cart"`
	Configurations map[string]*configurator.Configuration `json:"-"`
	CreatedAt      time.Time                              `json:"createdAt"`
	ExpiresAt      time.Time                              `json:"expiresAt"`
}

// Configuration returns the open configuration with id.
func (s *Session) Configuration(id string) (*configurator.Configuration, bool) {
	c, ok := s.Configurations[id]
	return c, ok
}

func (s Session) clone() Session {
	out := s
	out.Cart = cart.Cart{Lines: append([]cart.Line(nil), s.Cart.Lines...)}
	out.Configurations = make(map[string]*configurator.Configuration, len(s.Configurations))
	for id, c := range s.Configurations {
		out.Configurations[id] = c.Clone()
	}
	return out
}

type entry struct {
	mu      sync.Mutex
	session Session
}

// Store holds live sessions in memory. Expiry slides forward on every
// successful Lookup or Update. State does not survive a restart.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*entry
	ttl      time.Duration
	now      func() time.Time
}

// NewStore creates a Store whose sessions expire after ttl of inactivity.
func NewStore(ttl time.Duration) *Store {
	return &Store{
		sessions: make(map[string]*entry),
		ttl:      ttl,
		now:      time.Now,
	}
}

// TTL exposes the inactivity timeout.
func (s *Store) TTL() time.Duration {
	return s.ttl
}

// Issue creates an empty session and returns its token.
func (s *Store) Issue() (string, Session, error) {
	token, err := randomToken()
	if err != nil {
		return "", Session{}, err
	}
	now := s.now().UTC()
	sess := Session{
		ID:             uuid.NewString(),
		Configurations: map[string]*configurator.Configuration{},
		CreatedAt:      now,
		ExpiresAt:      now.Add(s.ttl),
	}
	s.mu.Lock()
	s.sessions[token] = &entry{session: sess}
	s.mu.Unlock()
	return token, sess.clone(), nil
}

// Lookup returns a copy of the session bound to token.
func (s *Store) Lookup(token string) (Session, error) {
	return s.Update(token, func(*Session) error { return nil })
}

// Update applies fn to a copy of the session and stores the result only when
// fn succeeds. Updates to one session are serialized.
func (s *Store) Update(token string, fn func(*Session) error) (Session, error) {
	s.mu.RLock()
	e, ok := s.sessions[token]
	s.mu.RUnlock()
	if !ok {
		return Session{}, ErrInvalidToken
	}

	e.mu.Lock()
	now := s.now().UTC()
	if now.After(e.session.ExpiresAt) {
		e.mu.Unlock()
		s.evict(token, e)
		return Session{}, ErrInvalidToken
	}
	defer e.mu.Unlock()
	draft := e.session.clone()
	if err := fn(&draft); err != nil {
		return e.session.clone(), err
	}
	draft.ExpiresAt = now.Add(s.ttl)
	e.session = draft
	return draft.clone(), nil
}

// Sweep removes expired sessions and returns how many were dropped.
func (s *Store) Sweep() int {
	now := s.now().UTC()
	s.mu.Lock()
	defer s.mu.Unlock()
	dropped := 0
	for token, e := range s.sessions {
		e.mu.Lock()
		expired := now.After(e.session.ExpiresAt)
		e.mu.Unlock()
		if expired {
			delete(s.sessions, token)
			dropped++
		}
	}
	return dropped
}

// Len is the number of sessions held, expired or not.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// RunSweeper sweeps every interval until ctx is done.
func (s *Store) RunSweeper(ctx context.Context, interval time.Duration, logger *log.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 && logger != nil {
				logger.Printf("session sweep: dropped=%d live=%d", n, s.Len())
			}
		}
	}
}

// evict must be called without e.mu held; Sweep locks the map before entries.
func (s *Store) evict(token string, e *entry) {
	s.mu.Lock()
	if s.sessions[token] == e {
		delete(s.sessions, token)
	}
	s.mu.Unlock()
}

func randomToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
