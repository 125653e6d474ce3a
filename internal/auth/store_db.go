package auth

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"
)

const (
	pingTimeout  = 1 * time.Second
	queryTimeout = 3 * time.Second
	pgUniqueCode = "23505"
)

const accountCols = `id, email, name, avatar_url, role, active, pass_hash`

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

func scanAccount(row interface{ Scan(...any) error }) (Account, error) {
	var a Account
	err := row.Scan(&a.ID, &a.Email, &a.Name, &a.AvatarURL, &a.Role, &a.Active, &a.Hash)
	return a, err
}

func (s *PostgresStore) Create(ctx context.Context, email, password, name, role, id string) (Account, error) {
	email = normalizeEmail(email)
	password = strings.TrimSpace(password)
	role = NormalizeRole(role)

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return Account{}, err
	}

	a := Account{ID: id, Email: email, Name: name, Role: role, Active: true, Hash: hash}

	err = withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO users (id, email, name, avatar_url, role, active, pass_hash)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, a.ID, a.Email, a.Name, a.AvatarURL, a.Role, a.Active, a.Hash)

		if err == nil {
			return nil
		}
		if isUniqueViolation(err) {
			return ErrEmailExists
		}
		return err
	})
	if err != nil {
		return Account{}, err
	}

	return a, nil
}

func (s *PostgresStore) Verify(ctx context.Context, email, password string) (Account, error) {
	email = normalizeEmail(email)

	var a Account
	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		var err error
		a, err = scanAccount(s.db.QueryRowContext(ctx, `
			SELECT `+accountCols+` FROM users WHERE email = $1
		`, email))
		return err
	})
	if err == sql.ErrNoRows {
		return Account{}, ErrInvalidCredentials
	}
	if err != nil {
		return Account{}, err
	}

	if err := bcrypt.CompareHashAndPassword(a.Hash, []byte(password)); err != nil {
		return Account{}, ErrInvalidCredentials
	}

	return a, nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (Account, bool, error) {
	var a Account
	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		var err error
		a, err = scanAccount(s.db.QueryRowContext(ctx, `
			SELECT `+accountCols+` FROM users WHERE id = $1
		`, id))
		return err
	})
	if err == sql.ErrNoRows {
		return Account{}, false, nil
	}
	if err != nil {
		return Account{}, false, err
	}

	return a, true, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]Account, error) {
	var out []Account

	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		rows, err := s.db.QueryContext(ctx, `
			SELECT `+accountCols+` FROM users ORDER BY id ASC
		`)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			a, err := scanAccount(rows)
			if err != nil {
				return err
			}
			out = append(out, a)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

func (s *PostgresStore) Update(ctx context.Context, id string, patch AccountPatch) (Account, error) {
	var updated Account

	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback() }()

		a, err := scanAccount(tx.QueryRowContext(ctx, `
			SELECT `+accountCols+` FROM users WHERE id = $1 FOR UPDATE
		`, id))
		if err == sql.ErrNoRows {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		if patch.Email != nil {
			a.Email = normalizeEmail(*patch.Email)
		}
		if patch.Name != nil {
			a.Name = *patch.Name
		}
		if patch.AvatarURL != nil {
			a.AvatarURL = *patch.AvatarURL
		}
		if patch.Role != nil {
			a.Role = NormalizeRole(*patch.Role)
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE users
			SET email = $2, name = $3, avatar_url = $4, role = $5
			WHERE id = $1
		`, a.ID, a.Email, a.Name, a.AvatarURL, a.Role)
		if err != nil {
			if isUniqueViolation(err) {
				return ErrEmailExists
			}
			return err
		}

		updated = a
		return tx.Commit()
	})
	if err != nil {
		return Account{}, err
	}

	return updated, nil
}

func (s *PostgresStore) ChangePassword(ctx context.Context, id, current, next string) error {
	return withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		var hash []byte
		err := s.db.QueryRowContext(ctx, `
			SELECT pass_hash FROM users WHERE id = $1
		`, id).Scan(&hash)
		if err == sql.ErrNoRows {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		if err := bcrypt.CompareHashAndPassword(hash, []byte(current)); err != nil {
			return ErrWrongPassword
		}

		newHash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
		if err != nil {
			return err
		}

		_, err = s.db.ExecContext(ctx, `
			UPDATE users SET pass_hash = $2 WHERE id = $1
		`, id, newHash)
		return err
	})
}

func (s *PostgresStore) SetRole(ctx context.Context, id, role string) (Account, error) {
	role = NormalizeRole(role)

	var a Account
	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		var err error
		a, err = scanAccount(s.db.QueryRowContext(ctx, `
			UPDATE users SET role = $2 WHERE id = $1
			RETURNING `+accountCols+`
		`, id, role))
		return err
	})
	if err == sql.ErrNoRows {
		return Account{}, ErrNotFound
	}
	if err != nil {
		return Account{}, err
	}

	return a, nil
}

func (s *PostgresStore) ToggleActive(ctx context.Context, id string) (Account, error) {
	var a Account
	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		var err error
		a, err = scanAccount(s.db.QueryRowContext(ctx, `
			UPDATE users SET active = NOT active WHERE id = $1
			RETURNING `+accountCols+`
		`, id))
		return err
	})
	if err == sql.ErrNoRows {
		return Account{}, ErrNotFound
	}
	if err != nil {
		return Account{}, err
	}

	return a, nil
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	return withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		res, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
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

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueCode
}
