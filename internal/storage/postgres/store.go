// Package postgres implements storage.Store on PostgreSQL through the pgx
// database/sql driver.
//
// RunInTx opens a READ COMMITTED transaction bounded by the configured
// timeout and places it in the context, so the tracker journal and the
// outbox writes join it. Lock* methods use SELECT ... FOR UPDATE.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"dvi/internal/storage"
	"dvi/pkg/platform/sentinel"
	txctx "dvi/pkg/platform/tx"
)

const defaultTxTimeout = 10 * time.Second

// Store is the PostgreSQL storage.Store.
type Store struct {
	queries
	txTimeout time.Duration
}

var _ storage.Store = (*Store)(nil)

type Option func(*Store)

// WithTxTimeout bounds every unit of work.
func WithTxTimeout(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.txTimeout = d
		}
	}
}

func New(db *sql.DB, opts ...Option) *Store {
	s := &Store{queries: queries{db: db}, txTimeout: defaultTxTimeout}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context, tx storage.Tx) error) error {
	ctx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()
	err := txctx.Run(ctx, s.db, &sql.TxOptions{Isolation: sql.LevelReadCommitted}, func(ctx context.Context, t *sql.Tx) error {
		return fn(ctx, &pgTx{queries: queries{db: s.db, tx: t}})
	})
	return mapError(err)
}

// queries runs every statement on the bound transaction, the one carried by
// ctx, or the pool, in that order.
type queries struct {
	db *sql.DB
	tx *sql.Tx
}

func (q queries) ex(ctx context.Context) txctx.Execer {
	if q.tx != nil {
		return q.tx
	}
	return txctx.Executor(ctx, q.db)
}

type pgTx struct {
	queries
}

var _ storage.Tx = (*pgTx)(nil)

// PostgreSQL error codes mapped onto sentinel errors.
const (
	codeUniqueViolation      = "23505"
	codeForeignKeyViolation  = "23503"
	codeCheckViolation       = "23514"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeLockNotAvailable     = "55P03"
)

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return sentinel.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case codeUniqueViolation:
		return storage.Conflict(pgErr.ConstraintName)
	case codeForeignKeyViolation, codeCheckViolation:
		return fmt.Errorf("%s: %w", pgErr.ConstraintName, sentinel.ErrInvalidState)
	case codeSerializationFailure, codeDeadlockDetected, codeLockNotAvailable:
		return fmt.Errorf("%s: %w", pgErr.Message, storage.ErrConcurrentModification)
	}
	return err
}

// wrap keeps mapped sentinels intact and adds the failing step otherwise.
func wrap(step string, err error) error {
	mapped := mapError(err)
	if mapped == nil || errors.Is(mapped, sentinel.ErrNotFound) {
		return mapped
	}
	return fmt.Errorf("%s: %w", step, mapped)
}

// expectOne reports ErrNotFound when an UPDATE or DELETE matched no row.
func expectOne(res sql.Result, err error, step string) error {
	if err != nil {
		return wrap(step, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return wrap(step, err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func lockClause(lock bool) string {
	if lock {
		return " FOR UPDATE"
	}
	return ""
}

func utcPtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	u := t.Time.UTC()
	return &u
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}
