package repository

import (
	"context"
	"math"

	"github.com/patric-chuzhbe/usersvc/internal/user"
)

// Users is the storage contract for the user entity: the five CRUD
// primitives plus the read-only analytic queries. The service consumes it
// through this interface so tests can substitute an in-memory
// implementation.
type Users interface {
	AddOne(ctx context.Context, rec *user.User) (*user.User, error)
	FindByID(ctx context.Context, id int64) (*user.User, bool, error)
	FindAll(ctx context.Context, page, size int) ([]user.User, error)
	UpdateOne(ctx context.Context, id int64, rec *user.User) (*user.User, error)
	DeleteByID(ctx context.Context, id int64) error

	CountRegisteredLastSevenDays(ctx context.Context) (int64, error)
	TopFiveLongestUsernames(ctx context.Context) ([]string, error)
	EmailDomainShare(ctx context.Context, domain string) (int, error)
}

var userMapper = EntityMapper[user.User]{
	Table:           "users",
	IDColumn:        "id",
	Columns:         []string{"id", "username", "email", "registration_date"},
	WritableColumns: []string{"username", "email"},
	WritableValues: func(rec *user.User) []any {
		return []any{rec.Username, rec.Email}
	},
	Scan: func(r interface{ Scan(dest ...any) error }, rec *user.User) error {
		return r.Scan(&rec.ID, &rec.Username, &rec.Email, &rec.RegistrationDate)
	},
	ConflictValues: func(rec *user.User) map[string]string {
		return map[string]string{
			"username": rec.Username,
			"email":    rec.Email,
		}
	},
}

// UserRepository is the Postgres-backed Users implementation: the generic
// CRUD core over the users table plus the analytic queries.
type UserRepository struct {
	*CrudRepository[user.User]
	q Querier
}

// NewUserRepository returns a UserRepository issuing queries through q.
// q can be the pool or a unit-of-work transaction.
func NewUserRepository(q Querier) *UserRepository {
	return &UserRepository{
		CrudRepository: NewCrudRepository(q, userMapper),
		q:              q,
	}
}

// CountRegisteredLastSevenDays returns the number of users whose
// registration date falls within the trailing 7-day window. The window is
// computed by the database so it uses the same clock that assigned the
// registration dates.
func (r *UserRepository) CountRegisteredLastSevenDays(ctx context.Context) (int64, error) {
	var count int64
	err := r.q.QueryRowContext(
		ctx,
		`SELECT COUNT(*) FROM users WHERE registration_date >= now() - INTERVAL '7 days'`,
	).Scan(&count)
	if err != nil {
		return 0, err
	}

	return count, nil
}

// TopFiveLongestUsernames returns up to five usernames with the greatest
// character length. Equal lengths are tied-broken by ascending id to keep
// the result stable.
func (r *UserRepository) TopFiveLongestUsernames(ctx context.Context) ([]string, error) {
	rows, err := r.q.QueryContext(
		ctx,
		`SELECT username FROM users ORDER BY char_length(username) DESC, id LIMIT 5`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var usernames []string
	for rows.Next() {
		var username string
		if err := rows.Scan(&username); err != nil {
			return nil, err
		}
		usernames = append(usernames, username)
	}

	return usernames, rows.Err()
}

// EmailDomainShare returns the percentage, rounded to the nearest integer,
// of users whose email domain equals domain. Zero users total yields 0.
func (r *UserRepository) EmailDomainShare(ctx context.Context, domain string) (int, error) {
	var matched, total int64
	err := r.q.QueryRowContext(
		ctx,
		`SELECT COUNT(*) FILTER (WHERE split_part(email, '@', 2) = $1), COUNT(*) FROM users`,
		domain,
	).Scan(&matched, &total)
	if err != nil {
		return 0, err
	}

	return DomainSharePercentage(matched, total), nil
}

// DomainSharePercentage converts a matched/total pair into a percentage
// rounded to the nearest integer, returning 0 for an empty population.
// It is shared with the in-memory implementation so both backends round
// identically.
func DomainSharePercentage(matched, total int64) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(matched) * 100 / float64(total)))
}

var _ Users = (*UserRepository)(nil)
