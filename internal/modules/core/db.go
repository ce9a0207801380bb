package core

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/eskrenkovic/tql"
	"github.com/lib/pq"
	pkgerrors "github.com/pkg/errors"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx so storage functions can run
// inside or outside a transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

var (
	_ DBTX = (*sql.DB)(nil)
	_ DBTX = (*sql.Tx)(nil)
)

const uniqueViolationCode = "23505"

type TransactionOption func(*sql.TxOptions)

// ReadSnapshot makes every read in the transaction see the same snapshot.
func ReadSnapshot() TransactionOption {
	return func(opts *sql.TxOptions) {
		WithIsolationLevel(sql.LevelRepeatableRead)(opts)
		opts.ReadOnly = true
	}
}

func WithIsolationLevel(isolationLevel sql.IsolationLevel) TransactionOption {
	return func(opts *sql.TxOptions) {
		opts.Isolation = isolationLevel
	}
}

// Tx runs transaction inside a database transaction. The transaction is
// rolled back when the function returns an error or panics.
func Tx(
	ctx context.Context,
	db *sql.DB,
	transaction func(context.Context, *sql.Tx) error,
	opts ...TransactionOption,
) (err error) {
	options := sql.TxOptions{}

	for _, opt := range opts {
		opt(&options)
	}

	tx, err := db.BeginTx(ctx, &options)
	if err != nil {
		return err
	}

	defer func() {
		if r := recover(); r != nil {
			panicErr := fmt.Errorf("transaction panicked with: %v", r)
			if rollbackErr := tx.Rollback(); rollbackErr != nil {
				err = pkgerrors.Wrap(panicErr, rollbackErr.Error())
				return
			}
			err = panicErr
		}
	}()

	if err = transaction(ctx, tx); err != nil {
		if rollbackErr := tx.Rollback(); rollbackErr != nil {
			return pkgerrors.Wrap(err, rollbackErr.Error())
		}

		return err
	}

	return tx.Commit()
}

func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == uniqueViolationCode
	}
	return false
}

// WarmRowType scans one literal row into T. tql fills its per type field
// cache on the first scan without a lock, so every row type is scanned once
// at boot, before requests can scan it concurrently.
func WarmRowType[T any](ctx context.Context, q DBTX, selectList string) error {
	if _, err := tql.QueryFirst[T](ctx, q, fmt.Sprintf("SELECT %s;", selectList)); err != nil {
		var zero T
		return fmt.Errorf("failed to warm row type %T: %w", zero, err)
	}
	return nil
}

// WarmParamType binds params once so tql caches the db tags of its type.
// bigintField must name a bigint field of params.
func WarmParamType(ctx context.Context, q DBTX, params any, bigintField string) error {
	stmt := fmt.Sprintf("SELECT CAST(:%s AS BIGINT);", bigintField)
	if _, err := tql.Exec(ctx, q, stmt, params); err != nil {
		return fmt.Errorf("failed to warm param type %T: %w", params, err)
	}
	return nil
}
