package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/bandpath/internal/platform/logger"
)

// TxFn runs inside a transaction. Returning nil commits; returning an error
// rolls back.
type TxFn func(ctx context.Context, tx *sql.Tx) error

// RunInTransaction executes fn within a transaction on db. The error from fn
// is returned unchanged after a clean rollback. A panic in fn rolls the
// transaction back and is re-raised.
func RunInTransaction(ctx context.Context, db TxBeginner, fn TxFn) (err error) {
	log := logger.FromContext(ctx)

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		log.ErrorContext(ctx, "begin transaction", slog.String("error", err.Error()))
		return fmt.Errorf("%w: begin: %w", ErrTransactionFailed, err)
	}

	committed := false
	defer func() {
		if committed {
			return
		}
		p := recover()
		rbErr := tx.Rollback()
		switch {
		case p != nil:
			log.ErrorContext(ctx, "transaction rolled back after panic",
				slog.Any("panic", p), slog.Any("rollback_error", rbErr))
			panic(p)
		case rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone):
			log.ErrorContext(ctx, "rollback transaction",
				slog.String("rollback_error", rbErr.Error()),
				slog.String("error", err.Error()))
			err = fmt.Errorf("rollback failed: %v (original error: %w)", rbErr, err)
		default:
			log.DebugContext(ctx, "transaction rolled back", slog.String("error", err.Error()))
		}
	}()

	if err = fn(ctx, tx); err != nil {
		return err
	}

	committed = true
	if err = tx.Commit(); err != nil {
		log.ErrorContext(ctx, "commit transaction", slog.String("error", err.Error()))
		return fmt.Errorf("%w: commit: %w", ErrTransactionFailed, err)
	}
	return nil
}
