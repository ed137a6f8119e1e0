package option

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
SELECT id::text, kind, label, surcharge::text, description, photo, hex_code, material,
       diameter_inch, contents, created_at
FROM option_items
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

// List returns options of kind, or every option when kind is empty.
func (r *postgresRepo) List(ctx context.Context, kind domain.OptionKind) ([]domain.OptionItem, error) {
	q := selectColumns + "WHERE ($1 = '' OR kind = $1)\nORDER BY kind, surcharge, label"
	rows, err := r.pool.Query(ctx, q, string(kind))
	if err != nil {
		r.logger.Printf("option repo: list kind=%s error=%v", kind, err)
		return nil, err
	}
	defer rows.Close()

	var result []domain.OptionItem
	for rows.Next() {
		o, err := scanOption(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	r.logger.Printf("option repo: list kind=%s count=%d", kind, len(result))
	return result, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.OptionItem, error) {
	if !db.ValidID(id) {
		return nil, domain.ErrNotFound
	}
	o, err := scanOption(r.pool.QueryRow(ctx, selectColumns+"WHERE id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return o, nil
}

func (r *postgresRepo) Create(ctx context.Context, o domain.OptionItem) (*domain.OptionItem, error) {
	const q = `
INSERT INTO option_items (kind, label, surcharge, description, photo, hex_code, material, diameter_inch, contents)
VALUES ($1, $2, $3::numeric, $4, $5, $6, $7, $8, $9)
RETURNING id::text
`
	var id string
	if err := r.pool.QueryRow(ctx, q, writeArgs(o)...).Scan(&id); err != nil {
		if db.IsUniqueViolation(err) {
			return nil, domain.ErrAlreadyExists
		}
		r.logger.Printf("option repo: create kind=%s label=%s error=%v", o.Kind, o.Label, err)
		return nil, err
	}
	r.logger.Printf("option repo: created id=%s kind=%s label=%s", id, o.Kind, o.Label)
	return r.GetByID(ctx, id)
}

func (r *postgresRepo) Update(ctx context.Context, o domain.OptionItem) (*domain.OptionItem, error) {
	if !db.ValidID(o.ID) {
		return nil, domain.ErrNotFound
	}
	const q = `
UPDATE option_items
SET kind = $1, label = $2, surcharge = $3::numeric, description = $4, photo = $5,
    hex_code = $6, material = $7, diameter_inch = $8, contents = $9
WHERE id = $10
`
	cmd, err := r.pool.Exec(ctx, q, append(writeArgs(o), o.ID)...)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, domain.ErrAlreadyExists
		}
		return nil, err
	}
	if cmd.RowsAffected() == 0 {
		return nil, domain.ErrNotFound
	}
	return r.GetByID(ctx, o.ID)
}

func (r *postgresRepo) Delete(ctx context.Context, id string) error {
	if !db.ValidID(id) {
		return domain.ErrNotFound
	}
	cmd, err := r.pool.Exec(ctx, `DELETE FROM option_items WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) Upsert(ctx context.Context, o domain.OptionItem) (*domain.OptionItem, error) {
	const q = `
INSERT INTO option_items (kind, label, surcharge, description, photo, hex_code, material, diameter_inch, contents)
VALUES ($1, $2, $3::numeric, $4, $5, $6, $7, $8, $9)
ON CONFLICT (kind, label) DO UPDATE SET
    surcharge = EXCLUDED.surcharge,
    description = EXCLUDED.description,
    photo = EXCLUDED.photo,
    hex_code = EXCLUDED.hex_code,
    material = EXCLUDED.material,
    diameter_inch = EXCLUDED.diameter_inch,
    contents = EXCLUDED.contents
RETURNING id::text
`
	var id string
	if err := r.pool.QueryRow(ctx, q, writeArgs(o)...).Scan(&id); err != nil {
		r.logger.Printf("option repo: upsert kind=%s label=%s error=%v", o.Kind, o.Label, err)
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func writeArgs(o domain.OptionItem) []interface{} {
	contents := o.Contents
	if contents == nil {
		contents = []string{}
	}
	return []interface{}{
		string(o.Kind),
		o.Label,
		o.Surcharge.String(),
		o.Description,
		o.Photo,
		o.HexCode,
		o.Material,
		o.DiameterInch,
		contents,
	}
}

func scanOption(row pgx.Row) (*domain.OptionItem, error) {
	var (
		o         domain.OptionItem
		kind      string
		surcharge string
	)
	if err := row.Scan(
		&o.ID,
		&kind,
		&o.Label,
		&surcharge,
		&o.Description,
		&o.Photo,
		&o.HexCode,
		&o.Material,
		&o.DiameterInch,
		&o.Contents,
		&o.CreatedAt,
	); err != nil {
		return nil, err
	}
	o.Kind = domain.OptionKind(kind)
	var err error
	if o.Surcharge, err = db.Numeric(surcharge); err != nil {
		return nil, err
	}
	if len(o.Contents) == 0 {
		o.Contents = nil
	}
	return &o, nil
}
