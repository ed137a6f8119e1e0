package reservation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"

	"dealership/internal/db"
	"dealership/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const selectColumns = `
SELECT id::text, token, kind, status, payment_status, total::text, currency, payment_intent_id,
       session_id, hold_ref, account_id::text, decided_by::text, expires_at, created_at, updated_at
FROM reservations
`

const defaultListLimit = 100

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

// Create inserts the reservation and its lines in one transaction. The stored
// total is the sum of the line totals.
func (r *postgresRepo) Create(ctx context.Context, res domain.Reservation) (*domain.Reservation, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var id string
	err = tx.QueryRow(ctx, `
INSERT INTO reservations (token, kind, status, payment_status, total, currency, payment_intent_id,
                          session_id, hold_ref, account_id, expires_at)
VALUES ($1, $2, $3, $4, 0, $5, $6, $7, $8, $9, $10)
RETURNING id::text
`, res.Token, res.Kind, res.Status, res.PaymentStatus, res.Currency, res.PaymentIntentID,
		res.SessionID, res.HoldRef, res.AccountID, res.ExpiresAt).Scan(&id)
	if err != nil {
		if db.IsUniqueViolation(err) {
			r.logger.Printf("reservation repo: insert conflict kind=%s hold=%s", res.Kind, res.HoldRef)
			return nil, domain.ErrAlreadyExists
		}
		r.logger.Printf("reservation repo: insert kind=%s error=%v", res.Kind, err)
		return nil, err
	}

	for i, line := range res.Lines {
		var snapshot []byte
		if line.Configuration != nil {
			if snapshot, err = json.Marshal(line.Configuration); err != nil {
				return nil, fmt.Errorf("encode configuration snapshot: %w", err)
			}
		}
		total := line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity)))
		if _, err := tx.Exec(ctx, `
INSERT INTO reservation_lines (reservation_id, position, kind, ref_id, name, unit_price, quantity, total, configuration)
VALUES ($1, $2, $3, $4, $5, $6::numeric, $7, $8::numeric, $9)
`, id, i, line.Kind, line.RefID, line.Name, line.UnitPrice.String(), line.Quantity, total.String(), snapshot); err != nil {
			r.logger.Printf("reservation repo: insert line reservation=%s error=%v", id, err)
			return nil, err
		}
	}

	if err := updateTotal(ctx, tx, id); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	r.logger.Printf("reservation repo: created id=%s kind=%s lines=%d", id, res.Kind, len(res.Lines))
	return r.GetByID(ctx, id)
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Reservation, error) {
	if !db.ValidID(id) {
		return nil, domain.ErrNotFound
	}
	return r.fetch(ctx, selectColumns+"WHERE id = $1", id)
}

func (r *postgresRepo) GetByToken(ctx context.Context, token string) (*domain.Reservation, error) {
	if token == "" {
		return nil, domain.ErrNotFound
	}
	return r.fetch(ctx, selectColumns+"WHERE token = $1", token)
}

// ActiveHold returns the pending reservation holding ref, if any.
func (r *postgresRepo) ActiveHold(ctx context.Context, ref string) (*domain.Reservation, error) {
	if ref == "" {
		return nil, domain.ErrNotFound
	}
	return r.fetch(ctx, selectColumns+"WHERE hold_ref = $1 AND kind = 'reservation' AND status = 'pending'", ref)
}

// List returns reservations newest first without their lines.
func (r *postgresRepo) List(ctx context.Context, filter ListFilter) ([]domain.Reservation, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	q := selectColumns + `WHERE ($1 = '' OR kind = $1) AND ($2 = '' OR status = $2)
ORDER BY created_at DESC
LIMIT $3`
	rows, err := r.pool.Query(ctx, q, filter.Kind, filter.Status, limit)
	if err != nil {
		r.logger.Printf("reservation repo: list kind=%s status=%s error=%v", filter.Kind, filter.Status, err)
		return nil, err
	}
	defer rows.Close()

	var result []domain.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *res)
	}
	return result, rows.Err()
}

func (r *postgresRepo) UpdateStatus(ctx context.Context, id, from, to string, decidedBy *string) (*domain.Reservation, error) {
	if !db.ValidID(id) {
		return nil, domain.ErrNotFound
	}
	cmd, err := r.pool.Exec(ctx, `
UPDATE reservations
SET status = $1, decided_by = COALESCE($2::uuid, decided_by), updated_at = now()
WHERE id = $3 AND status = $4
`, to, decidedBy, id, from)
	if err != nil {
		r.logger.Printf("reservation repo: update status id=%s to=%s error=%v", id, to, err)
		return nil, err
	}
	if cmd.RowsAffected() == 0 {
		return nil, domain.ErrNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *postgresRepo) UpdatePayment(ctx context.Context, id, status, paymentStatus string) (*domain.Reservation, error) {
	if !db.ValidID(id) {
		return nil, domain.ErrNotFound
	}
	cmd, err := r.pool.Exec(ctx, `
UPDATE reservations
SET status = $1, payment_status = $2, updated_at = now()
WHERE id = $3
`, status, paymentStatus, id)
	if err != nil {
		return nil, err
	}
	if cmd.RowsAffected() == 0 {
		return nil, domain.ErrNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *postgresRepo) fetch(ctx context.Context, query string, args ...interface{}) (*domain.Reservation, error) {
	res, err := scanReservation(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	const linesQuery = `
SELECT id::text, reservation_id::text, kind, ref_id, name, unit_price::text, quantity, total::text, configuration
FROM reservation_lines
WHERE reservation_id = $1
ORDER BY position ASC
`
	rows, err := r.pool.Query(ctx, linesQuery, res.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			line      domain.ReservationLine
			unitPrice string
			total     string
			snapshot  []byte
		)
		if err := rows.Scan(
			&line.ID,
			&line.ReservationID,
			&line.Kind,
			&line.RefID,
			&line.Name,
			&unitPrice,
			&line.Quantity,
			&total,
			&snapshot,
		); err != nil {
			return nil, err
		}
		if line.UnitPrice, err = db.Numeric(unitPrice); err != nil {
			return nil, err
		}
		if line.Total, err = db.Numeric(total); err != nil {
			return nil, err
		}
		if len(snapshot) > 0 {
			line.Configuration = &domain.ConfigurationSnapshot{}
			if err := json.Unmarshal(snapshot, line.Configuration); err != nil {
				r.logger.Printf("reservation repo: decode snapshot line=%s err=%v", line.ID, err)
				return nil, err
			}
		}
		res.Lines = append(res.Lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

func scanReservation(row pgx.Row) (*domain.Reservation, error) {
	var (
		res   domain.Reservation
		total string
	)
	if err := row.Scan(
		&res.ID,
		&res.Token,
		&res.Kind,
		&res.Status,
		&res.PaymentStatus,
		&total,
		&res.Currency,
		&res.PaymentIntentID,
		&res.SessionID,
		&res.HoldRef,
		&res.AccountID,
		&res.DecidedBy,
		&res.ExpiresAt,
		&res.CreatedAt,
		&res.UpdatedAt,
	); err != nil {
		return nil, err
	}
	var err error
	if res.Total, err = db.Numeric(total); err != nil {
		return nil, err
	}
	return &res, nil
}

func updateTotal(ctx context.Context, tx pgx.Tx, id string) error {
	_, err := tx.Exec(ctx, `
UPDATE reservations
SET total = COALESCE((
	SELECT SUM(total)
	FROM reservation_lines
	WHERE reservation_id = $1
), 0)
WHERE id = $1
`, id)
	return err
}
