package ledger

import (
	"context"
	"database/sql"
	"time"
)

const (
	pingTimeout  = 1 * time.Second
	queryTimeout = 3 * time.Second
)

// PostgresStore keeps the pending cart in an order_lines table. The pos
// column only preserves insertion order; Save replaces every row in one
// transaction, matching the whole-collection contract.
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

func (s *PostgresStore) Load(ctx context.Context) ([]Line, error) {
	var out []Line

	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		rows, err := s.db.QueryContext(ctx, `
			SELECT name, quantity, total
			FROM order_lines
			ORDER BY pos ASC
		`)
		if err != nil {
			return err
		}
		defer rows.Close()

		out = make([]Line, 0, 8)
		for rows.Next() {
			var l Line
			if err := rows.Scan(&l.Name, &l.Quantity, &l.Total); err != nil {
				return err
			}
			out = append(out, l)
		}
		return rows.Err()
	})

	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *PostgresStore) Save(ctx context.Context, lines []Line) error {
	return withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback() }()

		if _, err := tx.ExecContext(ctx, `DELETE FROM order_lines`); err != nil {
			return err
		}

		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO order_lines (name, quantity, total)
			VALUES ($1, $2, $3)
		`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, l := range lines {
			if _, err := stmt.ExecContext(ctx, l.Name, l.Quantity, l.Total); err != nil {
				return err
			}
		}
		return tx.Commit()
	})
}

func withTimeout(parent context.Context, d time.Duration, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(parent, d)
	defer cancel()
	return fn(ctx)
}
