package order

import (
	"context"
	"database/sql"
	"time"
)

const (
	pingTimeout  = 1 * time.Second
	queryTimeout = 5 * time.Second
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return withTimeout(ctx, pingTimeout, func(ctx context.Context) error {
		return s.db.PingContext(ctx)
	})
}

func (s *PostgresStore) List(ctx context.Context) ([]Order, error) {
	var out []Order

	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		rows, err := s.db.QueryContext(ctx, `
			SELECT id, customer, total_cents, status, date
			FROM orders
			ORDER BY id ASC
		`)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var o Order
			if err := rows.Scan(&o.ID, &o.Customer, &o.TotalCents, &o.Status, &o.Date); err != nil {
				return err
			}
			out = append(out, o)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (Order, bool, error) {
	var o Order

	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		return s.db.QueryRowContext(ctx, `
			SELECT id, customer, total_cents, status, date
			FROM orders
			WHERE id = $1
		`, id).Scan(&o.ID, &o.Customer, &o.TotalCents, &o.Status, &o.Date)
	})
	if err == sql.ErrNoRows {
		return Order{}, false, nil
	}
	if err != nil {
		return Order{}, false, err
	}

	return o, true, nil
}

func (s *PostgresStore) Create(ctx context.Context, o Order) error {
	return withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO orders (id, customer, total_cents, status, date)
			VALUES ($1, $2, $3, $4, $5)
		`, o.ID, o.Customer, o.TotalCents, o.Status, o.Date)
		return err
	})
}

func (s *PostgresStore) SetStatus(ctx context.Context, id string, status Status) (Order, error) {
	var o Order

	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		return s.db.QueryRowContext(ctx, `
			UPDATE orders SET status = $2 WHERE id = $1
			RETURNING id, customer, total_cents, status, date
		`, id, status).Scan(&o.ID, &o.Customer, &o.TotalCents, &o.Status, &o.Date)
	})
	if err == sql.ErrNoRows {
		return Order{}, ErrNotFound
	}
	if err != nil {
		return Order{}, err
	}

	return o, nil
}

func withTimeout(parent context.Context, d time.Duration, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(parent, d)
	defer cancel()
	return fn(ctx)
}
