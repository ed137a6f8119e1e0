package account

import (
	"context"
	"errors"
	"os"
	"testing"

	"dealership/internal/domain"
	"dealership/internal/migrate"
	"github.com/jackc/pgx/v5/pgxpool"
)

func TestPostgres_CreateAndLookup(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	if _, err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	if _, err := pool.Exec(ctx, `TRUNCATE reservation_lines, reservations, accounts RESTART IDENTITY CASCADE`); err != nil {
		t.Fatalf("truncate tables: %v", err)
	}

	repo := NewPostgres(pool, nil)
	created, err := repo.Create(ctx, domain.Account{
		Email:        "Buyer@Example.com",
		PasswordHash: "hash",
		Role:         domain.RoleCustomer,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.Email != "buyer@example.com" {
		t.Fatalf("expected lowercased email, got %s", created.Email)
	}

	byEmail, err := repo.GetByEmail(ctx, "BUYER@example.com")
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if byEmail.ID != created.ID {
		t.Fatalf("lookup mismatch %+v", byEmail)
	}

	if _, err := repo.Create(ctx, domain.Account{Email: "buyer@example.com", PasswordHash: "x", Role: domain.RoleCustomer}); !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}

	promoted, err := repo.EnsureRole(ctx, domain.Account{Email: "buyer@example.com", PasswordHash: "new", Role: domain.RoleAdvisor})
	if err != nil {
		t.Fatalf("EnsureRole: %v", err)
	}
	if promoted.ID != created.ID || promoted.Role != domain.RoleAdvisor {
		t.Fatalf("unexpected promoted account %+v", promoted)
	}
}

func testPool(ctx context.Context, t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	return pool
}
