// Package service implements the business rules of the user API. Every
// operation sequences repository calls inside a unit-of-work scope and
// translates persistence outcomes into the error kinds the endpoint layer
// maps onto HTTP statuses.
package service

import (
	"context"
	"fmt"

	"github.com/thoas/go-funk"

	"github.com/patric-chuzhbe/usersvc/internal/models"
	"github.com/patric-chuzhbe/usersvc/internal/storeerr"
	"github.com/patric-chuzhbe/usersvc/internal/unitofwork"
	"github.com/patric-chuzhbe/usersvc/internal/user"
)

type storage interface {
	unitofwork.Starter

	Ping(ctx context.Context) error
}

// Service orchestrates user operations over a storage backend.
type Service struct {
	storage storage
}

// New returns a Service over the given storage backend.
func New(storage storage) *Service {
	return &Service{storage: storage}
}

func toResponse(u user.User) models.UserResponse {
	return models.UserResponse{
		ID:               u.ID,
		Username:         u.Username,
		Email:            u.Email,
		RegistrationDate: u.RegistrationDate,
	}
}

// AddUser inserts a new user and returns the stored representation. A
// username or email collision is returned as *storeerr.ConflictError.
func (s *Service) AddUser(ctx context.Context, req models.CreateUserRequest) (models.UserResponse, error) {
	uow, err := s.storage.Begin(ctx)
	if err != nil {
		return models.UserResponse{}, err
	}
	defer func() { _ = uow.Close() }()

	stored, err := uow.Users().AddOne(ctx, &user.User{
		Username: req.Username,
		Email:    req.Email,
	})
	if err != nil {
		return models.UserResponse{}, err
	}

	if err := uow.Commit(ctx); err != nil {
		return models.UserResponse{}, err
	}

	return toResponse(*stored), nil
}

// GetUser returns the user matching id. It fails with
// storeerr.ErrInvalidArgument when id is not positive and with
// storeerr.ErrNotFound when no user matches.
func (s *Service) GetUser(ctx context.Context, id int64) (models.UserResponse, error) {
	stored, err := s.findExisting(ctx, id)
	if err != nil {
		return models.UserResponse{}, err
	}

	return toResponse(*stored), nil
}

// GetUsers returns the requested page of users ordered by ascending id.
// Both page and size must already be validated as positive by the caller.
func (s *Service) GetUsers(ctx context.Context, page, size int) ([]models.UserResponse, error) {
	uow, err := s.storage.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = uow.Close() }()

	users, err := uow.Users().FindAll(ctx, page, size)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(ctx); err != nil {
		return nil, err
	}

	return funk.Map(users, toResponse).([]models.UserResponse), nil
}

// UpdateUser replaces the username and email of the user matching id and
// returns the updated representation; id and registration date are
// untouched. The existence check and the update run in separate scopes, so
// a concurrent delete between them surfaces as storeerr.ErrNotFound from
// the update. That window is an accepted, documented limitation.
func (s *Service) UpdateUser(ctx context.Context, id int64, req models.CreateUserRequest) (models.UserResponse, error) {
	if _, err := s.findExisting(ctx, id); err != nil {
		return models.UserResponse{}, err
	}

	uow, err := s.storage.Begin(ctx)
	if err != nil {
		return models.UserResponse{}, err
	}
	defer func() { _ = uow.Close() }()

	stored, err := uow.Users().UpdateOne(ctx, id, &user.User{
		Username: req.Username,
		Email:    req.Email,
	})
	if err != nil {
		return models.UserResponse{}, err
	}

	if err := uow.Commit(ctx); err != nil {
		return models.UserResponse{}, err
	}

	return toResponse(*stored), nil
}

// DeleteUser removes the user matching id. The repository delete itself is
// idempotent; deleting an id that does not exist fails here, in the
// pre-check. The same race window as UpdateUser applies.
func (s *Service) DeleteUser(ctx context.Context, id int64) error {
	if _, err := s.findExisting(ctx, id); err != nil {
		return err
	}

	uow, err := s.storage.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = uow.Close() }()

	if err := uow.Users().DeleteByID(ctx, id); err != nil {
		return err
	}

	return uow.Commit(ctx)
}

// GetUsersInfo returns the registration count for the trailing seven days
// and the five longest usernames, read within a single scope.
func (s *Service) GetUsersInfo(ctx context.Context) (models.UsersInfoResponse, error) {
	uow, err := s.storage.Begin(ctx)
	if err != nil {
		return models.UsersInfoResponse{}, err
	}
	defer func() { _ = uow.Close() }()

	count, err := uow.Users().CountRegisteredLastSevenDays(ctx)
	if err != nil {
		return models.UsersInfoResponse{}, err
	}

	usernames, err := uow.Users().TopFiveLongestUsernames(ctx)
	if err != nil {
		return models.UsersInfoResponse{}, err
	}

	if err := uow.Commit(ctx); err != nil {
		return models.UsersInfoResponse{}, err
	}

	return models.UsersInfoResponse{
		CountUsersRegisteredLastSevenDays: count,
		TopFiveLongestUsernames:           usernames,
	}, nil
}

// EmailDomainShare returns the rounded percentage of users whose email
// domain equals domain.
func (s *Service) EmailDomainShare(ctx context.Context, domain string) (models.EmailDomainShareResponse, error) {
	uow, err := s.storage.Begin(ctx)
	if err != nil {
		return models.EmailDomainShareResponse{}, err
	}
	defer func() { _ = uow.Close() }()

	percentage, err := uow.Users().EmailDomainShare(ctx, domain)
	if err != nil {
		return models.EmailDomainShareResponse{}, err
	}

	if err := uow.Commit(ctx); err != nil {
		return models.EmailDomainShareResponse{}, err
	}

	return models.EmailDomainShareResponse{
		Domain:     domain,
		Percentage: percentage,
	}, nil
}

// Ping checks the health of the storage backend.
func (s *Service) Ping(ctx context.Context) error {
	return s.storage.Ping(ctx)
}

// findExisting validates id and returns the matching user from its own
// read scope. It backs GetUser and the update/delete pre-checks so all
// three fail with identical error kinds.
func (s *Service) findExisting(ctx context.Context, id int64) (*user.User, error) {
	if id <= 0 {
		return nil, fmt.Errorf("user id must be positive: %w", storeerr.ErrInvalidArgument)
	}

	uow, err := s.storage.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = uow.Close() }()

	stored, found, err := uow.Users().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, storeerr.ErrNotFound
	}

	if err := uow.Commit(ctx); err != nil {
		return nil, err
	}

	return stored, nil
}
