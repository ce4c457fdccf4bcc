package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/onticket/chainindexer/internal/logger"
	"github.com/russross/meddler"
)

// Querier is implemented by both *sql.DB and *sql.Tx.
type Querier interface {
	meddler.DB

	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// WithTx runs fn inside a transaction. The transaction is committed when fn returns nil
// and rolled back otherwise.
func WithTx(ctx context.Context, db *sql.DB, log *logger.Logger, fn func(tx *sql.Tx) error) (err error) {
	start := time.Now()
	defer func() {
		TxDurationLog(time.Since(start))
		if err != nil {
			TxOutcomeInc(outcomeRollback)
		} else {
			TxOutcomeInc(outcomeCommit)
		}
	}()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			log.Errorf("failed to rollback transaction: %v", rbErr)
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
