// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
)

// ErrNoRows is returned when a conditional update matched nothing.
var ErrNoRows = sql.ErrNoRows

// Queries runs statements against either the pool or an open transaction.
type Queries struct {
	q sqlx.ExtContext
}

// Store is the durable store for rooms, memberships, questions, votes and
// invites.
type Store struct {
	*Queries
	db *sqlx.DB
}

func New(db *sqlx.DB) *Store {
	return &Store{Queries: &Queries{q: db}, db: db}
}

// DB exposes the underlying pool.
func (s *Store) DB() *sqlx.DB { return s.db }

// WithTx runs fn in a transaction, committing if fn returns nil.
// fn must only use the Queries it is given.
func (s *Store) WithTx(ctx context.Context, fn func(q *Queries) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			slog.Warn("failed to roll back transaction", "error", err)
		}
	}()

	if err := fn(&Queries{q: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (q *Queries) get(ctx context.Context, dest any, query string, args ...any) error {
	return sqlx.GetContext(ctx, q.q, dest, q.q.Rebind(query), args...)
}

func (q *Queries) selectAll(ctx context.Context, dest any, query string, args ...any) error {
	return sqlx.SelectContext(ctx, q.q, dest, q.q.Rebind(query), args...)
}

func (q *Queries) exec(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := q.q.ExecContext(ctx, q.q.Rebind(query), args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
