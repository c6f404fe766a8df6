// Package mockstorage provides testify-based mocks of the storage
// contracts (unit-of-work starter, unit of work, user repository) used to
// unit test the service and the HTTP handlers against simulated storage
// behavior.
package mockstorage

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/patric-chuzhbe/usersvc/internal/repository"
	"github.com/patric-chuzhbe/usersvc/internal/unitofwork"
	"github.com/patric-chuzhbe/usersvc/internal/user"
)

// StorageMock mocks the storage backend consumed by the service: it vends
// unit-of-work scopes and answers health checks.
type StorageMock struct {
	mock.Mock
}

// Begin mocks opening a unit-of-work scope.
func (m *StorageMock) Begin(ctx context.Context) (unitofwork.UnitOfWork, error) {
	args := m.Called(ctx)
	uow, _ := args.Get(0).(unitofwork.UnitOfWork)
	return uow, args.Error(1)
}

// Ping mocks the storage health check.
func (m *StorageMock) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// UnitOfWorkMock mocks a single transactional scope.
type UnitOfWorkMock struct {
	mock.Mock

	// UsersRepo is returned by Users. Assign it before use.
	UsersRepo repository.Users
}

// Users returns the repository configured in UsersRepo.
func (m *UnitOfWorkMock) Users() repository.Users {
	return m.UsersRepo
}

// Commit mocks committing the scope.
func (m *UnitOfWorkMock) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// Close mocks rolling back and releasing the scope.
func (m *UnitOfWorkMock) Close() error {
	args := m.Called()
	return args.Error(0)
}

// UsersMock mocks the user repository contract.
type UsersMock struct {
	mock.Mock
}

// AddOne mocks the insert primitive.
func (m *UsersMock) AddOne(ctx context.Context, rec *user.User) (*user.User, error) {
	args := m.Called(ctx, rec)
	stored, _ := args.Get(0).(*user.User)
	return stored, args.Error(1)
}

// FindByID mocks the lookup primitive.
func (m *UsersMock) FindByID(ctx context.Context, id int64) (*user.User, bool, error) {
	args := m.Called(ctx, id)
	stored, _ := args.Get(0).(*user.User)
	return stored, args.Bool(1), args.Error(2)
}

// FindAll mocks the paginated listing primitive.
func (m *UsersMock) FindAll(ctx context.Context, page, size int) ([]user.User, error) {
	args := m.Called(ctx, page, size)
	records, _ := args.Get(0).([]user.User)
	return records, args.Error(1)
}

// UpdateOne mocks the update primitive.
func (m *UsersMock) UpdateOne(ctx context.Context, id int64, rec *user.User) (*user.User, error) {
	args := m.Called(ctx, id, rec)
	stored, _ := args.Get(0).(*user.User)
	return stored, args.Error(1)
}

// DeleteByID mocks the delete primitive.
func (m *UsersMock) DeleteByID(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// CountRegisteredLastSevenDays mocks the trailing-window count query.
func (m *UsersMock) CountRegisteredLastSevenDays(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// TopFiveLongestUsernames mocks the longest-usernames query.
func (m *UsersMock) TopFiveLongestUsernames(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	usernames, _ := args.Get(0).([]string)
	return usernames, args.Error(1)
}

// EmailDomainShare mocks the domain-share query.
func (m *UsersMock) EmailDomainShare(ctx context.Context, domain string) (int, error) {
	args := m.Called(ctx, domain)
	return args.Int(0), args.Error(1)
}

var _ repository.Users = (*UsersMock)(nil)
var _ unitofwork.UnitOfWork = (*UnitOfWorkMock)(nil)
var _ unitofwork.Starter = (*StorageMock)(nil)
