package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/bandpath/internal/store"
)

// SQLSTATE codes for integrity violations.
const (
	uniqueViolationCode     = "23505"
	foreignKeyViolationCode = "23503"
	checkViolationCode      = "23514"
	notNullViolationCode    = "23502"
)

// activePathIndex is the partial unique index allowing one active path per user.
const activePathIndex = "learning_paths_one_active_per_user"

// integrityErrors describes the constraint classes that indicate a bad entity
// rather than a conflict.
var integrityErrors = map[string]string{
	foreignKeyViolationCode: "foreign key violation",
	checkViolationCode:      "check constraint violation",
	notNullViolationCode:    "not null violation",
}

// MapError translates driver errors into store sentinels. Errors it does not
// recognise are returned as is.
func MapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %v", store.ErrNotFound, err)
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	if pgErr.Code == uniqueViolationCode {
		if pgErr.ConstraintName == activePathIndex {
			return fmt.Errorf("%w: %v", store.ErrActivePathExists, err)
		}
		return fmt.Errorf("%w: %v", store.ErrDuplicate, err)
	}
	if kind, ok := integrityErrors[pgErr.Code]; ok {
		target := pgErr.ConstraintName
		if target == "" {
			target = pgErr.ColumnName
		}
		return fmt.Errorf("%w: %s (%s): %v", store.ErrInvalidEntity, kind, target, err)
	}
	return err
}

// CheckRowsAffected returns notFound, or store.ErrNotFound when notFound is
// nil, if result touched no rows.
func CheckRowsAffected(result sql.Result, notFound error) error {
	if result == nil {
		return errors.New("no result to check")
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n > 0 {
		return nil
	}
	if notFound != nil {
		return notFound
	}
	return store.ErrNotFound
}
