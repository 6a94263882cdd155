// Package repository implements the durable entity store over
// Postgres. Driver errors never escape: absent rows and unique
// violations are translated into the shared fault taxonomy here so
// callers branch on kinds, not on pgx sentinels.
package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hack4impact-upenn/celf-sp25-sub001/internal/fault"
)

type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Store struct {
	pool *pgxpool.Pool
	db   querier
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool, db: pool}
}

// WithTx runs fn against a transaction-backed view of the store,
// committing on success and rolling back on error.
func (s *Store) WithTx(ctx context.Context, fn func(*Store) error) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fault.Internal("storage_error", err)
	}
	if err := fn(&Store{pool: s.pool, db: tx}); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fault.Internal("storage_error", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func translate(err error, notFoundCode, conflictCode string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, pgx.ErrNoRows):
		return fault.NotFound(notFoundCode, notFoundCode)
	case isUniqueViolation(err):
		return fault.Conflict(conflictCode, conflictCode)
	default:
		return fault.Internal("storage_error", err)
	}
}
