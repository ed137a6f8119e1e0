package accessory

import (
	"context"
	"errors"
	"io"
	"log"

	"dealership/internal/db"
	"dealership/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const selectColumns = `
SELECT id::text, name, category, description, price::text, photo, stock, created_at
FROM accessories
`

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

// NewPostgres returns a Repository backed by Postgres.
func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, logger: logger}
}

func (r *postgresRepo) List(ctx context.Context, category string) ([]domain.Accessory, error) {
	q := selectColumns + "WHERE ($1 = '' OR lower(category) = lower($1))\nORDER BY category, name"
	rows, err := r.pool.Query(ctx, q, category)
	if err != nil {
		r.logger.Printf("accessory repo: list category=%s error=%v", category, err)
		return nil, err
	}
	defer rows.Close()

	var result []domain.Accessory
	for rows.Next() {
		a, err := scanAccessory(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *a)
	}
	return result, rows.Err()
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Accessory, error) {
	if !db.ValidID(id) {
		return nil, domain.ErrNotFound
	}
	a, err := scanAccessory(r.pool.QueryRow(ctx, selectColumns+"WHERE id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return a, nil
}

func (r *postgresRepo) Create(ctx context.Context, a domain.Accessory) (*domain.Accessory, error) {
	const q = `
INSERT INTO accessories (name, category, description, price, photo, stock)
VALUES ($1, $2, $3, $4::numeric, $5, $6)
RETURNING id::text
`
	var id string
	if err := r.pool.QueryRow(ctx, q, a.Name, a.Category, a.Description, a.Price.String(), a.Photo, a.Stock).Scan(&id); err != nil {
		if db.IsUniqueViolation(err) {
			return nil, domain.ErrAlreadyExists
		}
		r.logger.Printf("accessory repo: create name=%s error=%v", a.Name, err)
		return nil, err
	}
	r.logger.Printf("accessory repo: created id=%s name=%s", id, a.Name)
	return r.GetByID(ctx, id)
}

func (r *postgresRepo) Update(ctx context.Context, a domain.Accessory) (*domain.Accessory, error) {
	if !db.ValidID(a.ID) {
		return nil, domain.ErrNotFound
	}
	const q = `
UPDATE accessories
SET name = $1, category = $2, description = $3, price = $4::numeric, photo = $5, stock = $6
WHERE id = $7
`
	cmd, err := r.pool.Exec(ctx, q, a.Name, a.Category, a.Description, a.Price.String(), a.Photo, a.Stock, a.ID)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, domain.ErrAlreadyExists
		}
		return nil, err
	}
	if cmd.RowsAffected() == 0 {
		return nil, domain.ErrNotFound
	}
	return r.GetByID(ctx, a.ID)
}

func (r *postgresRepo) Delete(ctx context.Context, id string) error {
	if !db.ValidID(id) {
		return domain.ErrNotFound
	}
	cmd, err := r.pool.Exec(ctx, `DELETE FROM accessories WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) Upsert(ctx context.Context, a domain.Accessory) (*domain.Accessory, error) {
	const q = `
INSERT INTO accessories (name, category, description, price, photo, stock)
VALUES ($1, $2, $3, $4::numeric, $5, $6)
ON CONFLICT (name) DO UPDATE SET
    category = EXCLUDED.category,
    description = EXCLUDED.description,
    price = EXCLUDED.price,
    photo = EXCLUDED.photo,
    stock = EXCLUDED.stock
RETURNING id::text
`
	var id string
	if err := r.pool.QueryRow(ctx, q, a.Name, a.Category, a.Description, a.Price.String(), a.Photo, a.Stock).Scan(&id); err != nil {
		r.logger.Printf("accessory repo: upsert name=%s error=%v", a.Name, err)
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func scanAccessory(row pgx.Row) (*domain.Accessory, error) {
	var (
		a     domain.Accessory
		price string
	)
	if err := row.Scan(&a.ID, &a.Name, &a.Category, &a.Description, &price, &a.Photo, &a.Stock, &a.CreatedAt); err != nil {
		return nil, err
	}
	var err error
	if a.Price, err = db.Numeric(price); err != nil {
		return nil, err
	}
	return &a, nil
}
