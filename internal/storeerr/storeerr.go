// Package storeerr defines the error kinds shared by the repository,
// service, and endpoint layers, and the mapping of raw driver errors
// into them.
package storeerr

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// ErrNotFound is returned when the referenced user does not exist.
var ErrNotFound = errors.New("user not found")

// ErrInvalidArgument is returned when a caller-supplied parameter fails a
// precondition, e.g. a non-positive id.
var ErrInvalidArgument = errors.New("invalid argument")

// ConflictError reports a unique constraint violation and names the field
// and the value that collided, so callers can produce a precise message.
type ConflictError struct {
	Field string
	Value string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s %q already exists", e.Field, e.Value)
}

// AsConflict returns the ConflictError wrapped in err, if any.
func AsConflict(err error) (*ConflictError, bool) {
	var conflict *ConflictError
	ok := errors.As(err, &conflict)
	return conflict, ok
}

const pgUniqueViolation = "23505"

// Unique constraint names from the users table migration. Relying on
// constraint names instead of error message text keeps the mapping stable
// across server versions and locales.
var constraintToField = map[string]string{
	"users_username_key": "username",
	"users_email_key":    "email",
}

// MapPostgresError translates a unique violation reported by the Postgres
// driver into a ConflictError carrying the offending field. values maps
// field name to the value that was being written. Other errors are
// returned unchanged.
func MapPostgresError(err error, values map[string]string) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgUniqueViolation {
		return err
	}

	field, ok := constraintToField[pgErr.ConstraintName]
	if !ok {
		return err
	}

	return &ConflictError{
		Field: field,
		Value: values[field],
	}
}
