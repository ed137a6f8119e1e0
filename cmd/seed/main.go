package main

import (
	"context"
	"flag"
	"log"
	"os"

	"dealership/internal/client"
	"dealership/internal/config"
	"dealership/internal/seed"
)

func main() {
	cfg := config.FromEnv()
	baseURL := flag.String("api", cfg.APIBaseURL, "API base URL")
	email := flag.String("email", cfg.AdminEmail, "Admin account email")
	flag.Parse()

	logger := log.New(os.Stdout, "[seed] ", log.LstdFlags|log.LUTC|log.Lshortfile)
	if cfg.AdminPassword == "" {
		logger.Fatalf("ADMIN_PASSWORD must be set")
	}

	api := client.New(*baseURL,
		client.WithTimeout(cfg.APITimeout),
		client.WithLogger(logger),
		client.WithRetry(client.RetryPolicy{
			MaxAttempts: cfg.RetryMaxAttempts,
			BaseDelay:   cfg.RetryBaseDelay,
			Jitter:      cfg.RetryJitter,
		}),
	)

	ctx := context.Background()
	if _, err := api.Login(ctx, *email, cfg.AdminPassword); err != nil {
		logger.Fatalf("admin login: %v", err)
	}

	res, err := seed.Apply(ctx, api, seed.Default(), logger)
	if err != nil {
		logger.Fatalf("seed apply: %v", err)
	}

	logger.Printf("seed applied: created=%d skipped=%d", res.Created, res.Skipped)
}
