// Package memstorage provides an in-memory storage backend implementing the
// same unit-of-work and repository contract as the PostgreSQL backend. It
// is selected when no database DSN is configured and doubles as the storage
// fake in service and handler tests.
//
// Each repository call is individually atomic under the store mutex, but a
// scope's writes are applied immediately: the backend offers no cross-call
// rollback. That is acceptable for a development backend and for tests,
// which only exercise single-write scopes.
package memstorage

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/patric-chuzhbe/usersvc/internal/repository"
	"github.com/patric-chuzhbe/usersvc/internal/storeerr"
	"github.com/patric-chuzhbe/usersvc/internal/unitofwork"
	"github.com/patric-chuzhbe/usersvc/internal/user"
)

// Storage is the in-memory storage backend. It satisfies the
// unitofwork.Starter contract consumed by the service.
type Storage struct {
	mu     sync.Mutex
	users  map[int64]user.User
	nextID int64

	// now is the clock used for registration dates; tests override it to
	// plant users at synthetic registration times.
	now func() time.Time
}

// New returns an empty in-memory storage.
func New() *Storage {
	return &Storage{
		users:  make(map[int64]user.User),
		nextID: 1,
		now:    time.Now,
	}
}

// Begin opens a new unit-of-work scope over the shared store.
func (s *Storage) Begin(_ context.Context) (unitofwork.UnitOfWork, error) {
	return &unitOfWork{users: &userRepository{store: s}}, nil
}

// Ping always succeeds: the store lives in process memory.
func (s *Storage) Ping(_ context.Context) error {
	return nil
}

// Close is a no-op; there is nothing to release.
func (s *Storage) Close() error {
	return nil
}

// SetClock replaces the registration-date clock. Intended for tests.
func (s *Storage) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

type unitOfWork struct {
	users *userRepository
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

	return nil
}

func (u *unitOfWork) Close() error {
	u.done = true
	return nil
}

type userRepository struct {
	store *Storage
}

func (r *userRepository) findConflict(rec *user.User, excludeID int64) error {
	for _, existing := range r.store.users {
		if existing.ID == excludeID {
			continue
		}
		if existing.Username == rec.Username {
			return &storeerr.ConflictError{Field: "username", Value: rec.Username}
		}
		if existing.Email == rec.Email {
			return &storeerr.ConflictError{Field: "email", Value: rec.Email}
		}
	}

	return nil
}

func (r *userRepository) AddOne(_ context.Context, rec *user.User) (*user.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if err := r.findConflict(rec, 0); err != nil {
		return nil, err
	}

	stored := user.User{
		ID:               r.store.nextID,
		Username:         rec.Username,
		Email:            rec.Email,
		RegistrationDate: r.store.now(),
	}
	r.store.nextID++
	r.store.users[stored.ID] = stored

	return &stored, nil
}

func (r *userRepository) FindByID(_ context.Context, id int64) (*user.User, bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	stored, found := r.store.users[id]
	if !found {
		return nil, false, nil
	}

	return &stored, true, nil
}

func (r *userRepository) FindAll(_ context.Context, page, size int) ([]user.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	all := make([]user.User, 0, len(r.store.users))
	for _, stored := range r.store.users {
		all = append(all, stored)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })

	offset := (page - 1) * size
	if offset >= len(all) {
		return nil, nil
	}
	end := offset + size
	if end > len(all) {
		end = len(all)
	}

	return all[offset:end], nil
}

func (r *userRepository) UpdateOne(_ context.Context, id int64, rec *user.User) (*user.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	stored, found := r.store.users[id]
	if !found {
		return nil, storeerr.ErrNotFound
	}

	if err := r.findConflict(rec, id); err != nil {
		return nil, err
	}

	stored.Username = rec.Username
	stored.Email = rec.Email
	r.store.users[id] = stored

	return &stored, nil
}

func (r *userRepository) DeleteByID(_ context.Context, id int64) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	delete(r.store.users, id)

	return nil
}

func (r *userRepository) CountRegisteredLastSevenDays(_ context.Context) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	cutoff := r.store.now().AddDate(0, 0, -7)
	var count int64
	for _, stored := range r.store.users {
		if !stored.RegistrationDate.Before(cutoff) {
			count++
		}
	}

	return count, nil
}

func (r *userRepository) TopFiveLongestUsernames(_ context.Context) ([]string, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	all := make([]user.User, 0, len(r.store.users))
	for _, stored := range r.store.users {
		all = append(all, stored)
	}
	sort.Slice(all, func(i, j int) bool {
		li := utf8.RuneCountInString(all[i].Username)
		lj := utf8.RuneCountInString(all[j].Username)
		if li != lj {
			return li > lj
		}
		return all[i].ID < all[j].ID
	})

	if len(all) > 5 {
		all = all[:5]
	}

	usernames := make([]string, 0, len(all))
	for _, stored := range all {
		usernames = append(usernames, stored.Username)
	}

	return usernames, nil
}

func (r *userRepository) EmailDomainShare(_ context.Context, domain string) (int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var matched int64
	for _, stored := range r.store.users {
		if _, d, found := strings.Cut(stored.Email, "@"); found && d == domain {
			matched++
		}
	}

	return repository.DomainSharePercentage(matched, int64(len(r.store.users))), nil
}

var _ repository.Users = (*userRepository)(nil)
var _ unitofwork.Starter = (*Storage)(nil)
