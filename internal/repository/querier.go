// Package repository provides storage access for one entity type: a generic
// CRUD core parameterized by an entity mapper, and the user repository
// composing it with the user-specific analytic queries.
package repository

import (
	"context"
	"database/sql"
)

// Querier is the subset of database/sql used by repositories.
// Both *sql.DB and *sql.Tx satisfy it, so a repository can run either
// directly against the pool or bound to a unit-of-work transaction.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}
