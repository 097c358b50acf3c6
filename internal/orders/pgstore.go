package orders

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists order snapshots as jsonb rows with a version column
// for optimistic concurrency.
type PostgresStore struct {
	pool    *pgxpool.Pool
	nowFunc func() time.Time
}

// NewPostgresStore wraps an existing pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool, nowFunc: time.Now}
}

// EnsureSchema creates the orders table if absent.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS orders (
  order_id text PRIMARY KEY,
  customer_email text NOT NULL,
  created_at timestamptz NOT NULL,
  version bigint NOT NULL,
  payload jsonb NOT NULL
);
CREATE INDEX IF NOT EXISTS orders_customer_email_idx ON orders (customer_email);`)
	return err
}

func (s *PostgresStore) Create(ctx context.Context, o Order) error {
	raw, err := json.Marshal(o)
	if err != nil {
		return fmt.Errorf("marshal order: %w", err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO orders(order_id, customer_email, created_at, version, payload) VALUES($1, $2, $3, $4, $5)`,
		o.ID, o.Customer.Email, o.CreatedAt, o.Version, raw)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return ErrDuplicateOrder
		}
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (Order, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx, `SELECT payload FROM orders WHERE order_id = $1`, id).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return Order{}, ErrOrderNotFound
	}
	if err != nil {
		return Order{}, fmt.Errorf("select order: %w", err)
	}
	var o Order
	if err := json.Unmarshal(raw, &o); err != nil {
		return Order{}, fmt.Errorf("unmarshal order: %w", err)
	}
	return o, nil
}

func (s *PostgresStore) GetByEmail(ctx context.Context, email string) ([]Order, error) {
	return s.query(ctx, `SELECT payload FROM orders WHERE lower(customer_email) = lower($1) ORDER BY created_at`, email)
}

func (s *PostgresStore) List(ctx context.Context) ([]Order, error) {
	return s.query(ctx, `SELECT payload FROM orders ORDER BY created_at`)
}

func (s *PostgresStore) query(ctx context.Context, sql string, args ...any) ([]Order, error) {
	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("select orders: %w", err)
	}
	defer rows.Close()
	var out []Order
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var o Order
		if err := json.Unmarshal(raw, &o); err != nil {
			return nil, fmt.Errorf("unmarshal order: %w", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Update(ctx context.Context, id string, mutate func(*Order) error) (Order, error) {
	var lastErr error
	for attempt := 0; attempt < casRetries; attempt++ {
		current, err := s.Get(ctx, id)
		if err != nil {
			return Order{}, err
		}
		expected := current.Version

		working := current.Clone()
		if err := mutate(&working); err != nil {
			return Order{}, err
		}
		working.UpdatedAt = s.nowFunc()
		working.Version = expected + 1

		raw, err := json.Marshal(working)
		if err != nil {
			return Order{}, fmt.Errorf("marshal order: %w", err)
		}
		tag, err := s.pool.Exec(ctx,
			`UPDATE orders SET payload = $1, version = $2 WHERE order_id = $3 AND version = $4`,
			raw, working.Version, id, expected)
		if err != nil {
			return Order{}, fmt.Errorf("update order: %w", err)
		}
		if tag.RowsAffected() == 1 {
			return working, nil
		}
		lastErr = fmt.Errorf("version %d no longer current", expected)
	}
	return Order{}, fmt.Errorf("update order %s: version conflict persisted after %d attempts: %w", id, casRetries, lastErr)
}
