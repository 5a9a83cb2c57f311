// Package tx carries an open *sql.Tx through a context so stores join the
// caller's unit of work without taking it as a parameter.
package tx

import (
	"context"
	"database/sql"
)

type sqlTxKey struct{}

// Executor is what stores query through. Both *sql.DB and *sql.Tx satisfy it.
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func WithTx(ctx context.Context, tx *sql.Tx) context.Context {
	if tx == nil {
		return ctx
	}
	return context.WithValue(ctx, sqlTxKey{}, tx)
}

func From(ctx context.Context) (*sql.Tx, bool) {
	tx, ok := ctx.Value(sqlTxKey{}).(*sql.Tx)
	return tx, ok
}

// ExecutorFrom prefers the transaction in ctx and otherwise uses db directly.
func ExecutorFrom(ctx context.Context, db *sql.DB) Executor {
	if tx, ok := From(ctx); ok {
		return tx
	}
	return db
}

// InTx reports whether ctx already carries a transaction. FOR UPDATE row
// locks only hold inside one.
func InTx(ctx context.Context) bool {
	_, ok := From(ctx)
	return ok
}
