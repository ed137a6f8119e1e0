package variant

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"dealership/internal/db"
	"dealership/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const selectColumns = `
SELECT id::text, model, name, body_type, condition, base_price::text,
       power_hp, torque_nm, acceleration_0_100::text, top_speed_kmh, consumption_l100::text,
       photos, created_at
FROM vehicle_variants
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

func (r *postgresRepo) List(ctx context.Context, filter domain.VariantFilter) ([]domain.VehicleVariant, error) {
	var (
		where []string
		args  []interface{}
	)
	add := func(clause string, arg interface{}) {
		args = append(args, arg)
		where = append(where, fmt.Sprintf(clause, len(args)))
	}
	if filter.Model != "" {
		add("lower(model) = lower($%d)", filter.Model)
	}
	if filter.Condition != "" {
		add("condition = $%d", filter.Condition)
	}
	if filter.BodyType != "" {
		add("lower(body_type) = lower($%d)", filter.BodyType)
	}
	if filter.MaxPrice != nil {
		add("base_price <= $%d::numeric", filter.MaxPrice.String())
	}

	q := selectColumns
	if len(where) > 0 {
		q += "WHERE " + strings.Join(where, " AND ") + "\n"
	}
	q += "ORDER BY model, base_price, name"

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		r.logger.Printf("variant repo: list error=%v", err)
		return nil, err
	}
	defer rows.Close()

	var result []domain.VehicleVariant
	for rows.Next() {
		v, err := scanVariant(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *v)
	}
	if err := rows.Err(); err != nil {
		r.logger.Printf("variant repo: list rows error=%v", err)
		return nil, err
	}
	return result, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.VehicleVariant, error) {
	if !db.ValidID(id) {
		return nil, domain.ErrNotFound
	}
	v, err := scanVariant(r.pool.QueryRow(ctx, selectColumns+"WHERE id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Printf("variant repo: get id=%s error=%v", id, err)
		return nil, err
	}
	return v, nil
}

func (r *postgresRepo) Create(ctx context.Context, v domain.VehicleVariant) (*domain.VehicleVariant, error) {
	const q = `
INSERT INTO vehicle_variants (model, name, body_type, condition, base_price,
    power_hp, torque_nm, acceleration_0_100, top_speed_kmh, consumption_l100, photos)
VALUES ($1, $2, $3, $4, $5::numeric, $6, $7, $8::numeric, $9, $10::numeric, $11)
RETURNING id::text
`
	var id string
	if err := r.pool.QueryRow(ctx, q, writeArgs(v)...).Scan(&id); err != nil {
		if db.IsUniqueViolation(err) {
			return nil, domain.ErrAlreadyExists
		}
		r.logger.Printf("variant repo: create model=%s name=%s error=%v", v.Model, v.Name, err)
		return nil, err
	}
	r.logger.Printf("variant repo: created id=%s model=%s name=%s", id, v.Model, v.Name)
	return r.GetByID(ctx, id)
}

func (r *postgresRepo) Update(ctx context.Context, v domain.VehicleVariant) (*domain.VehicleVariant, error) {
	if !db.ValidID(v.ID) {
		return nil, domain.ErrNotFound
	}
	const q = `
UPDATE vehicle_variants
SET model = $1, name = $2, body_type = $3, condition = $4, base_price = $5::numeric,
    power_hp = $6, torque_nm = $7, acceleration_0_100 = $8::numeric, top_speed_kmh = $9,
    consumption_l100 = $10::numeric, photos = $11
WHERE id = $12
`
	args := append(writeArgs(v), v.ID)
	cmd, err := r.pool.Exec(ctx, q, args...)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, domain.ErrAlreadyExists
		}
		return nil, err
	}
	if cmd.RowsAffected() == 0 {
		return nil, domain.ErrNotFound
	}
	return r.GetByID(ctx, v.ID)
}

func (r *postgresRepo) Delete(ctx context.Context, id string) error {
	if !db.ValidID(id) {
		return domain.ErrNotFound
	}
	cmd, err := r.pool.Exec(ctx, `DELETE FROM vehicle_variants WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	r.logger.Printf("variant repo: deleted id=%s", id)
	return nil
}

func (r *postgresRepo) Upsert(ctx context.Context, v domain.VehicleVariant) (*domain.VehicleVariant, error) {
	const q = `
INSERT INTO vehicle_variants (model, name, body_type, condition, base_price,
    power_hp, torque_nm, acceleration_0_100, top_speed_kmh, consumption_l100, photos)
VALUES ($1, $2, $3, $4, $5::numeric, $6, $7, $8::numeric, $9, $10::numeric, $11)
ON CONFLICT (model, name, condition) DO UPDATE SET
    body_type = EXCLUDED.body_type,
    base_price = EXCLUDED.base_price,
    power_hp = EXCLUDED.power_hp,
    torque_nm = EXCLUDED.torque_nm,
    acceleration_0_100 = EXCLUDED.acceleration_0_100,
    top_speed_kmh = EXCLUDED.top_speed_kmh,
    consumption_l100 = EXCLUDED.consumption_l100,
    photos = EXCLUDED.photos
RETURNING id::text
`
	var id string
	if err := r.pool.QueryRow(ctx, q, writeArgs(v)...).Scan(&id); err != nil {
		r.logger.Printf("variant repo: upsert model=%s name=%s error=%v", v.Model, v.Name, err)
		return nil, err
	}
	r.logger.Printf("variant repo: upserted id=%s model=%s name=%s", id, v.Model, v.Name)
	return r.GetByID(ctx, id)
}

func writeArgs(v domain.VehicleVariant) []interface{} {
	photos := v.Photos
	if photos == nil {
		photos = []string{}
	}
	condition := v.Condition
	if condition == "" {
		condition = domain.ConditionNew
	}
	return []interface{}{
		v.Model,
		v.Name,
		v.BodyType,
		condition,
		v.BasePrice.String(),
		v.Performance.PowerHP,
		v.Performance.TorqueNm,
		v.Performance.Acceleration0100.String(),
		v.Performance.TopSpeedKmh,
		v.Performance.ConsumptionL100.String(),
		photos,
	}
}

func scanVariant(row pgx.Row) (*domain.VehicleVariant, error) {
	var (
		v                         domain.VehicleVariant
		basePrice, accel, consume string
	)
	if err := row.Scan(
		&v.ID,
		&v.Model,
		&v.Name,
		&v.BodyType,
		&v.Condition,
		&basePrice,
		&v.Performance.PowerHP,
		&v.Performance.TorqueNm,
		&accel,
		&v.Performance.TopSpeedKmh,
		&consume,
		&v.Photos,
		&v.CreatedAt,
	); err != nil {
		return nil, err
	}
	var err error
	if v.BasePrice, err = db.Numeric(basePrice); err != nil {
		return nil, err
	}
	if v.Performance.Acceleration0100, err = db.Numeric(accel); err != nil {
		return nil, err
	}
	if v.Performance.ConsumptionL100, err = db.Numeric(consume); err != nil {
		return nil, err
	}
	return &v, nil
}
