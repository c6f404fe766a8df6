package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/patric-chuzhbe/usersvc/internal/storeerr"
)

// EntityMapper describes how an entity type maps onto its table: column
// names, the values written on insert/update, and how a row is scanned
// back. It is the single place that knows the column order.
type EntityMapper[T any] struct {
	// Table is the table name.
	Table string
	// IDColumn is the primary key column, used for lookups and ordering.
	IDColumn string
	// Columns lists every column in the order Scan expects.
	Columns []string
	// WritableColumns lists the caller-supplied columns, written on insert
	// and update. Storage-assigned columns (id, timestamps) are excluded.
	WritableColumns []string
	// WritableValues extracts the values for WritableColumns, same order.
	WritableValues func(rec *T) []any
	// Scan populates rec from a row selected with Columns.
	Scan func(r interface{ Scan(dest ...any) error }, rec *T) error
	// ConflictValues maps field name to the value being written, used to
	// build precise unique-violation errors.
	ConflictValues func(rec *T) map[string]string
}

// CrudRepository is a generic Postgres-backed repository exposing the five
// storage primitives over a single entity type. It issues queries through a
// Querier, so the same repository works against the pool or a transaction.
type CrudRepository[T any] struct {
	q      Querier
	mapper EntityMapper[T]
}

// NewCrudRepository returns a CrudRepository issuing queries through q.
func NewCrudRepository[T any](q Querier, mapper EntityMapper[T]) *CrudRepository[T] {
	return &CrudRepository[T]{q: q, mapper: mapper}
}

func (r *CrudRepository[T]) columnList() string {
	return strings.Join(r.mapper.Columns, ", ")
}

func placeholders(n int) string {
	ph := make([]string, n)
	for i := range ph {
		ph[i] = fmt.Sprintf("$%d", i+1)
	}
	return strings.Join(ph, ", ")
}

// AddOne inserts rec and returns the fully populated stored record,
// including the storage-assigned id and timestamp. A unique collision is
// returned as *storeerr.ConflictError naming the offending field.
func (r *CrudRepository[T]) AddOne(ctx context.Context, rec *T) (*T, error) {
	query := fmt.Sprintf(
		`INSERT INTO %s (%s) VALUES (%s) RETURNING %s`,
		r.mapper.Table,
		strings.Join(r.mapper.WritableColumns, ", "),
		placeholders(len(r.mapper.WritableColumns)),
		r.columnList(),
	)

	stored := new(T)
	err := r.mapper.Scan(
		r.q.QueryRowContext(ctx, query, r.mapper.WritableValues(rec)...),
		stored,
	)
	if err != nil {
		return nil, storeerr.MapPostgresError(err, r.mapper.ConflictValues(rec))
	}

	return stored, nil
}

// FindByID returns the record matching id. Absence is reported through the
// boolean, never as an error.
func (r *CrudRepository[T]) FindByID(ctx context.Context, id int64) (*T, bool, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM %s WHERE %s = $1`,
		r.columnList(),
		r.mapper.Table,
		r.mapper.IDColumn,
	)

	stored := new(T)
	err := r.mapper.Scan(r.q.QueryRowContext(ctx, query, id), stored)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}

	return stored, true, nil
}

// FindAll returns up to size records ordered by ascending id, skipping
// (page-1)*size records. Both page and size must be positive; the caller
// enforces that.
func (r *CrudRepository[T]) FindAll(ctx context.Context, page, size int) ([]T, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM %s ORDER BY %s LIMIT $1 OFFSET $2`,
		r.columnList(),
		r.mapper.Table,
		r.mapper.IDColumn,
	)

	rows, err := r.q.QueryContext(ctx, query, size, (page-1)*size)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []T
	for rows.Next() {
		var rec T
		if err := r.mapper.Scan(rows, &rec); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

// UpdateOne applies the writable field values of rec to the row matching id
// and returns the updated stored record. A missing id is reported as
// storeerr.ErrNotFound, a unique collision as *storeerr.ConflictError.
func (r *CrudRepository[T]) UpdateOne(ctx context.Context, id int64, rec *T) (*T, error) {
	set := make([]string, len(r.mapper.WritableColumns))
	for i, col := range r.mapper.WritableColumns {
		set[i] = fmt.Sprintf("%s = $%d", col, i+1)
	}

	query := fmt.Sprintf(
		`UPDATE %s SET %s WHERE %s = $%d RETURNING %s`,
		r.mapper.Table,
		strings.Join(set, ", "),
		r.mapper.IDColumn,
		len(r.mapper.WritableColumns)+1,
		r.columnList(),
	)

	args := append(r.mapper.WritableValues(rec), id)

	stored := new(T)
	err := r.mapper.Scan(r.q.QueryRowContext(ctx, query, args...), stored)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storeerr.ErrNotFound
		}
		return nil, storeerr.MapPostgresError(err, r.mapper.ConflictValues(rec))
	}

	return stored, nil
}

// DeleteByID removes the row matching id. Deleting a non-existent id is
// a no-op, mirroring idempotent-delete semantics.
func (r *CrudRepository[T]) DeleteByID(ctx context.Context, id int64) error {
	query := fmt.Sprintf(
		`DELETE FROM %s WHERE %s = $1`,
		r.mapper.Table,
		r.mapper.IDColumn,
	)

	_, err := r.q.ExecContext(ctx, query, id)
	return err
}
