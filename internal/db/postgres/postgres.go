// Package postgres provides the PostgreSQL storage backend: it opens the
// connection pool through the pgx stdlib driver, owns the schema via
// embedded goose migrations, and hands out unit-of-work scopes bound to
// database transactions.
package postgres

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/patric-chuzhbe/usersvc/internal/repository"
	"github.com/patric-chuzhbe/usersvc/internal/unitofwork"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Storage is the PostgreSQL-backed storage. It satisfies the
// unitofwork.Starter contract consumed by the service.
type Storage struct {
	db                *sql.DB
	connectionTimeout time.Duration
}

// New opens the database, runs the embedded schema migrations, and returns
// a ready Storage.
func New(ctx context.Context, databaseDSN string, connectionTimeout time.Duration) (*Storage, error) {
	db, err := sql.Open("pgx", databaseDSN)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return nil, fmt.Errorf("set goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Storage{
		db:                db,
		connectionTimeout: connectionTimeout,
	}, nil
}

// Begin opens a new unit-of-work scope backed by a database transaction.
func (s *Storage) Begin(ctx context.Context) (unitofwork.UnitOfWork, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}

	return &unitOfWork{
		tx:    tx,
		users: repository.NewUserRepository(tx),
	}, nil
}

// Ping checks database reachability within the configured timeout.
func (s *Storage) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.connectionTimeout)
	defer cancel()

	return s.db.PingContext(ctx)
}

// Close releases the connection pool.
func (s *Storage) Close() error {
	return s.db.Close()
}

// unitOfWork is a single open transaction with the user repository bound
// to it. done flips on the first Commit or Close and the scope is never
// reused afterwards.
type unitOfWork struct {
	tx    *sql.Tx
	users *repository.UserRepository
	done  bool
}

func (u *unitOfWork) Users() repository.Users {
	return u.users
}

func (u *unitOfWork) Commit(_ context.Context) error {
	if u.done {
		return unitofwork.ErrClosed
	}
	u.done = true

	return u.tx.Commit()
}

func (u *unitOfWork) Close() error {
	if u.done {
		return nil
	}
	u.done = true

	return u.tx.Rollback()
}
