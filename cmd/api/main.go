package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"dealership/internal/config"
	"dealership/internal/db"
	"dealership/internal/domain"
	"dealership/internal/httpserver"
	"dealership/internal/migrate"
	"dealership/internal/payment"
	accessoryrepo "dealership/internal/repository/accessory"
	accountrepo "dealership/internal/repository/account"
	optionrepo "dealership/internal/repository/option"
	reservationrepo "dealership/internal/repository/reservation"
	variantrepo "dealership/internal/repository/variant"
	accountsvc "dealership/internal/service/account"
	cartsvc "dealership/internal/service/cart"
	catalogsvc "dealership/internal/service/catalog"
	configuratorsvc "dealership/internal/service/configurator"
	reservationsvc "dealership/internal/service/reservation"
	"dealership/internal/session"
)

func main() {
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[api] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbpool, err := db.Connect(ctx, cfg.DBConnString, db.Options{MaxConns: cfg.DBMaxConns})
	if err != nil {
		logger.Fatalf("connect to db: %v", err)
	}
	defer dbpool.Close()

	version, err := migrate.Apply(ctx, dbpool)
	if err != nil {
		logger.Fatalf("apply migrations: %v", err)
	}
	logger.Printf("schema at version %d", version)

	variantRepo := variantrepo.NewPostgres(dbpool, logger)
	optionRepo := optionrepo.NewPostgres(dbpool, logger)
	accessoryRepo := accessoryrepo.NewPostgres(dbpool, logger)
	reservationRepo := reservationrepo.NewPostgres(dbpool, logger)
	accountRepo := accountrepo.NewPostgres(dbpool, logger)

	var payments payment.Provider
	if cfg.StripeSecretKey != "" {
		payments = payment.NewStripe(cfg.StripeSecretKey, logger)
	} else {
		logger.Printf("STRIPE_SECRET_KEY not set, using offline payment provider")
		payments = payment.NewOffline()
	}

	sessions := session.NewStore(cfg.SessionTTL)
	go sessions.RunSweeper(ctx, cfg.SessionSweep, logger)

	accountService := accountsvc.New(accountRepo, cfg.JWTSecret, cfg.JWTTTL, logger)
	if cfg.AdminPassword != "" {
		if _, err := accountService.EnsureAccount(ctx, cfg.AdminEmail, cfg.AdminPassword, domain.RoleAdmin); err != nil {
			logger.Fatalf("ensure admin account: %v", err)
		}
		logger.Printf("admin account ready: %s", cfg.AdminEmail)
	}

	srv, err := httpserver.New(cfg.HTTPAddr, logger, dbpool, httpserver.Deps{
		Catalog:      catalogsvc.New(variantRepo, optionRepo, accessoryRepo, logger),
		Configurator: configuratorsvc.New(sessions, variantRepo, optionRepo, logger),
		Cart:         cartsvc.New(sessions, accessoryRepo, logger),
		Reservations: reservationsvc.New(reservationRepo, sessions, payments, reservationsvc.Options{
			Hold:     cfg.ReservationHold,
			Currency: cfg.Currency,
		}, logger),
		Accounts:    accountService,
		Sessions:    sessions,
		CORSOrigins: cfg.CORSOrigins,
	})
	if err != nil {
		logger.Fatalf("init server: %v", err)
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Printf("starting http server on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Printf("received shutdown signal")
	case err := <-serverErr:
		logger.Printf("server error: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Printf("graceful shutdown failed: %v", err)
	} else {
		logger.Printf("server stopped")
	}
}
