package repository

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Postgres unique_violation.
const codeUniqueViolation = "23505"

// MapError converts driver-level errors into the caller's domain errors:
// sql.ErrNoRows becomes notFound, a unique constraint violation becomes
// duplicate, and anything else passes through untouched.
func MapError(err error, notFound, duplicate error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return notFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == codeUniqueViolation {
		return duplicate
	}

	return err
}
