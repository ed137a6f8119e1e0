package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"dealership/internal/client"
	"dealership/internal/config"
	"dealership/internal/domain"
)

func main() {
	cfg := config.FromEnv()
	baseURL := flag.String("api", cfg.APIBaseURL, "API base URL")
	maxAttempts := flag.Int("max-attempts", 0, "Stop after this many reads (0 polls until interrupted)")
	interval := flag.Duration("interval", cfg.PollInterval, "Delay between reads")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: watch [flags] <reservation-token>")
		os.Exit(2)
	}
	token := flag.Arg(0)

	logger := log.New(os.Stderr, "[watch] ", log.LstdFlags|log.LUTC)
	api := client.New(*baseURL,
		client.WithTimeout(cfg.APITimeout),
		client.WithLogger(logger),
		client.WithRetry(client.RetryPolicy{
			MaxAttempts: cfg.RetryMaxAttempts,
			BaseDelay:   cfg.RetryBaseDelay,
			Jitter:      cfg.RetryJitter,
		}),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	last := ""
	r, err := api.PollReservationStatus(ctx, token, client.PollOptions{
		Interval:    *interval,
		MaxAttempts: *maxAttempts,
		OnStatus: func(r *domain.Reservation) {
			if r.Status != last {
				logger.Printf("%s %s: status=%s payment=%s total=%s %s", r.Kind, r.Token, r.Status, r.PaymentStatus, r.Total, r.Currency)
				last = r.Status
			}
		},
	})
	switch {
	case errors.Is(err, client.ErrNotFound):
		logger.Fatalf("no reservation or order with token %s", token)
	case errors.Is(err, client.ErrPollExhausted):
		logger.Printf("gave up after %d reads, last status %s", *maxAttempts, r.Status)
		os.Exit(1)
	case errors.Is(err, context.Canceled):
		logger.Printf("interrupted")
		os.Exit(130)
	case err != nil:
		logger.Fatalf("poll: %v", err)
	}

	fmt.Println(r.Status)
}
