package session

import (
	"errors"
	"sync"
	"testing"
	"time"

	"dealership/internal/cart"
	"dealership/internal/configurator"
	"dealership/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newTestStore(ttl time.Duration) (*Store, *fakeClock) {
	clock := &fakeClock{t: time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC)}
	s := NewStore(ttl)
	s.now = clock.now
	return s, clock
}

func TestIssueAndLookup(t *testing.T) {
	s, _ := newTestStore(time.Hour)
	token, sess, err := s.Issue()
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.NotEmpty(t, sess.ID)

	got, err := s.Lookup(token)
	require.NoError(t, err)
	assert.Equal(t, sess.ID, got.ID)

	_, err = s.Lookup("unknown")
	assert.True(t, errors.Is(err, ErrInvalidToken))
}

func TestUpdate_PersistsOnlyOnSuccess(t *testing.T) {
	s, _ := newTestStore(time.Hour)
	token, _, err := s.Issue()
	require.NoError(t, err)
	acc := domain.Accessory{ID: "mat", Name: "Floor mats", Price: decimal.NewFromInt(120)}

	_, err = s.Update(token, func(sess *Session) error {
		next, err := cart.AddAccessory(sess.Cart, acc, 2)
		sess.Cart = next
		return err
	})
	require.NoError(t, err)

	boom := errors.New("boom")
	_, err = s.Update(token, func(sess *Session) error {
		sess.Cart = cart.Clear(sess.Cart)
		return boom
	})
	assert.True(t, errors.Is(err, boom))

	got, err := s.Lookup(token)
	require.NoError(t, err)
	assert.Equal(t, "240", cart.Total(got.Cart).String())
}

func TestLookup_ReturnsIndependentCopies(t *testing.T) {
	s, _ := newTestStore(time.Hour)
	token, _, _ := s.Issue()
	cfg := configurator.New(domain.VehicleVariant{ID: "taycan", BasePrice: decimal.NewFromInt(90000)})
	_, err := s.Update(token, func(sess *Session) error {
		sess.Configurations[cfg.ID] = cfg
		return nil
	})
	require.NoError(t, err)

	copy1, _ := s.Lookup(token)
	c, ok := copy1.Configuration(cfg.ID)
	require.True(t, ok)
	require.NoError(t, c.JumpTo(configurator.StepSummary))

	copy2, _ := s.Lookup(token)
	c2, _ := copy2.Configuration(cfg.ID)
	assert.Equal(t, configurator.StepExteriorColor, c2.Step)
}

func TestExpiry_SlidesAndEvicts(t *testing.T) {
	s, clock := newTestStore(30 * time.Minute)
	token, _, _ := s.Issue()

	clock.advance(20 * time.Minute)
	_, err := s.Lookup(token)
	require.NoError(t, err)

	clock.advance(20 * time.Minute)
	_, err = s.Lookup(token)
	require.NoError(t, err, "lookup should have extended the session")

	clock.advance(31 * time.Minute)
	_, err = s.Lookup(token)
	assert.True(t, errors.Is(err, ErrInvalidToken))
	assert.Equal(t, 0, s.Len())
}

func TestSweep(t *testing.T) {
	s, clock := newTestStore(time.Minute)
	_, _, _ = s.Issue()
	_, _, _ = s.Issue()
	clock.advance(30 * time.Second)
	live, _, _ := s.Issue()
	clock.advance(45 * time.Second)

	assert.Equal(t, 2, s.Sweep())
	assert.Equal(t, 1, s.Len())
	_, err := s.Lookup(live)
	assert.NoError(t, err)
}

func TestUpdate_ConcurrentWritersSerialize(t *testing.T) {
	s, _ := newTestStore(time.Hour)
	token, _, _ := s.Issue()
	acc := domain.Accessory{ID: "cap", Name: "Cap", Price: decimal.NewFromInt(35)}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.Update(token, func(sess *Session) error {
				next, err := cart.AddAccessory(sess.Cart, acc, 1)
				sess.Cart = next
				return err
			})
		}()
	}
	wg.Wait()

	got, err := s.Lookup(token)
	require.NoError(t, err)
	require.Len(t, got.Cart.Lines, 1)
	assert.Equal(t, 20, got.Cart.Lines[0].Quantity)
}
