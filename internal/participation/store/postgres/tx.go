// Package postgres implements the participation stores on PostgreSQL with
// database/sql and lib/pq.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	dErrors "volunteerhub/pkg/domain-errors"
	"volunteerhub/pkg/platform/sentinel"
	txcontext "volunteerhub/pkg/platform/tx"
)

const defaultTxTimeout = 5 * time.Second

// Tx runs units of work in a READ COMMITTED transaction. Row locks taken
// with FOR UPDATE serialize competing writers.
type Tx struct {
	db      *sql.DB
	timeout time.Duration
}

func NewTx(db *sql.DB, timeout time.Duration) *Tx {
	if timeout <= 0 {
		timeout = defaultTxTimeout
	}
	return &Tx{db: db, timeout: timeout}
}

func (t *Tx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if txcontext.InTx(ctx) {
		return fn(ctx)
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	tx, err := t.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return wrapTxErr(ctx, err, "begin transaction")
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(txcontext.WithTx(ctx, tx)); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return wrapTxErr(ctx, err, "commit transaction")
	}
	return nil
}

func wrapTxErr(ctx context.Context, err error, op string) error {
	if ctx.Err() != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, op+": transaction timed out")
	}
	return fmt.Errorf("%s: %w", op, err)
}

const uniqueViolation = "23505"

// translate maps driver errors onto store sentinels.
func translate(err error, op string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return sentinel.ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return fmt.Errorf("%s: %w", op, sentinel.ErrAlreadyUsed)
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return dErrors.Wrap(err, dErrors.CodeTimeout, op+": timed out")
	}
	return fmt.Errorf("%s: %w", op, err)
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func timePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time.UTC()
	return &t
}

type rowScanner interface {
	Scan(dest ...any) error
}
