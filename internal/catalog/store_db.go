package catalog

import (
	"context"
	"database/sql"
	"time"
)

const (
	pingTimeout  = 1 * time.Second
	queryTimeout = 3 * time.Second
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

func (s *PostgresStore) List(ctx context.Context) ([]Product, error) {
	var out []Product

	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		rows, err := s.db.QueryContext(ctx, `
			SELECT id, title, category, price_cents, stock, in_stock
			FROM products
			ORDER BY id ASC
		`)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var p Product
			if err := rows.Scan(&p.ID, &p.Title, &p.Category, &p.PriceCents, &p.Stock, &p.InStock); err != nil {
				return err
			}
			out = append(out, p)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (Product, bool, error) {
	var p Product

	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		return s.db.QueryRowContext(ctx, `
			SELECT id, title, category, price_cents, stock, in_stock
			FROM products
			WHERE id = $1
		`, id).Scan(&p.ID, &p.Title, &p.Category, &p.PriceCents, &p.Stock, &p.InStock)
	})
	if err == sql.ErrNoRows {
		return Product{}, false, nil
	}
	if err != nil {
		return Product{}, false, err
	}

	return p, true, nil
}

func (s *PostgresStore) Create(ctx context.Context, p Product) error {
	return withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO products (id, title, category, price_cents, stock, in_stock)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, p.ID, p.Title, p.Category, p.PriceCents, p.Stock, p.InStock)
		return err
	})
}

func (s *PostgresStore) Update(ctx context.Context, id string, patch ProductPatch) (Product, error) {
	var updated Product

	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback() }()

		var p Product
		err = tx.QueryRowContext(ctx, `
			SELECT id, title, category, price_cents, stock, in_stock
			FROM products
			WHERE id = $1
			FOR UPDATE
		`, id).Scan(&p.ID, &p.Title, &p.Category, &p.PriceCents, &p.Stock, &p.InStock)
		if err == sql.ErrNoRows {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		p = p.applyPatch(patch)

		_, err = tx.ExecContext(ctx, `
			UPDATE products
			SET title = $2, category = $3, price_cents = $4, stock = $5, in_stock = $6
			WHERE id = $1
		`, p.ID, p.Title, p.Category, p.PriceCents, p.Stock, p.InStock)
		if err != nil {
			return err
		}

		updated = p
		return tx.Commit()
	})
	if err != nil {
		return Product{}, err
	}

	return updated, nil
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	return withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		res, err := s.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
		if err != nil {
			return err
		}

		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func withTimeout(parent context.Context, d time.Duration, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(parent, d)
	defer cancel()
	return fn(ctx)
}
