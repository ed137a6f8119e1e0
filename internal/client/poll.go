package client

import (
	"context"
	"errors"
	"time"

	"dealership/internal/domain"
)

// ErrPollExhausted is returned when MaxAttempts reads saw no terminal status.
var ErrPollExhausted = errors.New("reservation status not final after max attempts")

// PollOptions bound a status poll. Zero MaxAttempts polls until ctx is done.
type PollOptions struct {
	Interval    time.Duration
	MaxAttempts int
	// OnStatus, when set, sees every fetched status.
	OnStatus func(*domain.Reservation)
}

// PollReservationStatus reads the status every Interval until it is terminal.
// It stops on a terminal status, after MaxAttempts reads, on any read error
// or when ctx is done. The last fetched reservation is returned alongside
// ErrPollExhausted and ctx errors.
func (c *Client) PollReservationStatus(ctx context.Context, token string, opts PollOptions) (*domain.Reservation, error) {
	interval := opts.Interval
	if interval <= 0 {
		interval = 3 * time.Second
	}

	timer := time.NewTimer(0)
	defer timer.Stop()

	var last *domain.Reservation
	for attempt := 1; ; attempt++ {
		select {
		case <-ctx.Done():
			return last, ctx.Err()
		case <-timer.C:
		}

		r, err := c.ReservationStatus(ctx, token)
		if err != nil {
			return last, err
		}
		last = r
		if opts.OnStatus != nil {
			opts.OnStatus(r)
		}
		if domain.TerminalStatus(r.Status) {
			return r, nil
		}
		if opts.MaxAttempts > 0 && attempt >= opts.MaxAttempts {
			return last, ErrPollExhausted
		}
		timer.Reset(interval)
	}
}
