// Package unitofwork defines the transactional scope contract shared by the
// storage backends. A unit of work is acquired from a Starter, exposes the
// repository bound to its transaction, and moves through exactly one of two
// paths: explicit Commit, or rollback via Close. Close releases the
// underlying resources on every exit path and is safe to defer
// unconditionally; after Commit it is a no-op.
package unitofwork

import (
	"context"
	"errors"

	"github.com/patric-chuzhbe/usersvc/internal/repository"
)

// ErrClosed is returned when Commit is called on a scope that has already
// been committed or closed. A unit of work cannot be re-entered.
var ErrClosed = errors.New("unit of work is closed")

// UnitOfWork is a single open transactional scope.
//
// The typical call shape mirrors the acquisition discipline:
//
//	uow, err := storage.Begin(ctx)
//	if err != nil { ... }
//	defer func() { _ = uow.Close() }()
//
//	// one or more calls through uow.Users()
//
//	if err := uow.Commit(ctx); err != nil { ... }
type UnitOfWork interface {
	// Users returns the user repository bound to this scope's transaction.
	Users() repository.Users

	// Commit makes the scope's writes durable and closes the scope.
	// Committing a closed scope returns ErrClosed.
	Commit(ctx context.Context) error

	// Close rolls the scope back unless it was committed and releases the
	// underlying connection. Closing an already-closed scope is a no-op.
	Close() error
}

// Starter opens unit-of-work scopes. It is the only storage capability the
// service needs for transactional work.
type Starter interface {
	Begin(ctx context.Context) (UnitOfWork, error)
}
