package memstorage

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patric-chuzhbe/usersvc/internal/repository"
	"github.com/patric-chuzhbe/usersvc/internal/storeerr"
	"github.com/patric-chuzhbe/usersvc/internal/unitofwork"
	"github.com/patric-chuzhbe/usersvc/internal/user"
)

func usersOf(t *testing.T, s *Storage) (unitofwork.UnitOfWork, repository.Users) {
	t.Helper()
	uow, err := s.Begin(context.Background())
	require.NoError(t, err)
	return uow, uow.Users()
}

func addUser(t *testing.T, s *Storage, username, email string) *user.User {
	t.Helper()
	uow, err := s.Begin(context.Background())
	require.NoError(t, err)
	defer func() { _ = uow.Close() }()

	stored, err := uow.Users().AddOne(context.Background(), &user.User{
		Username: username,
		Email:    email,
	})
	require.NoError(t, err)
	require.NoError(t, uow.Commit(context.Background()))

	return stored
}

func TestAddOneAssignsIDAndRegistrationDate(t *testing.T) {
	s := New()

	before := time.Now()
	stored := addUser(t, s, "johnsmith", "john@example.com")

	assert.Greater(t, stored.ID, int64(0))
	assert.WithinDuration(t, before, stored.RegistrationDate, time.Second)
}

func TestAddOneUniqueConflicts(t *testing.T) {
	testCases := []struct {
		name          string
		username      string
		email         string
		expectedField string
		expectedValue string
	}{
		{
			name:          "duplicate username",
			username:      "johnsmith",
			email:         "other@example.com",
			expectedField: "username",
			expectedValue: "johnsmith",
		},
		{
			name:          "duplicate email",
			username:      "othername",
			email:         "john@example.com",
			expectedField: "email",
			expectedValue: "john@example.com",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := New()
			first := addUser(t, s, "johnsmith", "john@example.com")

			uow, users := usersOf(t, s)
			defer func() { _ = uow.Close() }()

			_, err := users.AddOne(context.Background(), &user.User{
				Username: tc.username,
				Email:    tc.email,
			})

			conflict, ok := storeerr.AsConflict(err)
			require.True(t, ok)
			assert.Equal(t, tc.expectedField, conflict.Field)
			assert.Equal(t, tc.expectedValue, conflict.Value)

			// The first user stays persisted.
			uow2, err := s.Begin(context.Background())
			require.NoError(t, err)
			defer func() { _ = uow2.Close() }()
			_, found, err := uow2.Users().FindByID(context.Background(), first.ID)
			require.NoError(t, err)
			assert.True(t, found)
		})
	}
}

func TestFindByIDAbsence(t *testing.T) {
	s := New()

	uow, err := s.Begin(context.Background())
	require.NoError(t, err)
	defer func() { _ = uow.Close() }()

	stored, found, err := uow.Users().FindByID(context.Background(), 42)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, stored)
}

func TestFindAllPagination(t *testing.T) {
	s := New()
	for i := 1; i <= 3; i++ {
		addUser(t, s, fmt.Sprintf("username%d", i), fmt.Sprintf("user%d@example.com", i))
	}

	uow, err := s.Begin(context.Background())
	require.NoError(t, err)
	defer func() { _ = uow.Close() }()

	firstPage, err := uow.Users().FindAll(context.Background(), 1, 2)
	require.NoError(t, err)
	require.Len(t, firstPage, 2)
	assert.Equal(t, int64(1), firstPage[0].ID)
	assert.Equal(t, int64(2), firstPage[1].ID)

	secondPage, err := uow.Users().FindAll(context.Background(), 2, 2)
	require.NoError(t, err)
	require.Len(t, secondPage, 1)
	assert.Equal(t, int64(3), secondPage[0].ID)

	thirdPage, err := uow.Users().FindAll(context.Background(), 3, 2)
	require.NoError(t, err)
	assert.Empty(t, thirdPage)
}

func TestUpdateOne(t *testing.T) {
	s := New()
	stored := addUser(t, s, "johnsmith", "john@example.com")

	uow, err := s.Begin(context.Background())
	require.NoError(t, err)
	defer func() { _ = uow.Close() }()

	updated, err := uow.Users().UpdateOne(context.Background(), stored.ID, &user.User{
		Username: "johnupdated",
		Email:    "john.updated@example.com",
	})
	require.NoError(t, err)

	assert.Equal(t, stored.ID, updated.ID)
	assert.Equal(t, "johnupdated", updated.Username)
	assert.Equal(t, "john.updated@example.com", updated.Email)
	assert.Equal(t, stored.RegistrationDate, updated.RegistrationDate)
}

func TestUpdateOneMissingID(t *testing.T) {
	s := New()

	uow, err := s.Begin(context.Background())
	require.NoError(t, err)
	defer func() { _ = uow.Close() }()

	_, err = uow.Users().UpdateOne(context.Background(), 42, &user.User{
		Username: "johnsmith",
		Email:    "john@example.com",
	})
	assert.ErrorIs(t, err, storeerr.ErrNotFound)
}

func TestUpdateOneKeepsOwnUniqueValues(t *testing.T) {
	s := New()
	stored := addUser(t, s, "johnsmith", "john@example.com")

	uow, err := s.Begin(context.Background())
	require.NoError(t, err)
	defer func() { _ = uow.Close() }()

	// Re-writing the same values must not collide with the row itself.
	updated, err := uow.Users().UpdateOne(context.Background(), stored.ID, &user.User{
		Username: "johnsmith",
		Email:    "john@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, stored.ID, updated.ID)
}

func TestDeleteByIDIsIdempotent(t *testing.T) {
	s := New()
	stored := addUser(t, s, "johnsmith", "john@example.com")

	uow, err := s.Begin(context.Background())
	require.NoError(t, err)
	defer func() { _ = uow.Close() }()

	require.NoError(t, uow.Users().DeleteByID(context.Background(), stored.ID))

	_, found, err := uow.Users().FindByID(context.Background(), stored.ID)
	require.NoError(t, err)
	assert.False(t, found)

	// Deleting again is a no-op, not an error.
	assert.NoError(t, uow.Users().DeleteByID(context.Background(), stored.ID))
}

func TestCountRegisteredLastSevenDays(t *testing.T) {
	s := New()

	now := time.Now()
	s.SetClock(func() time.Time { return now.AddDate(0, 0, -8) })
	addUser(t, s, "oldtimer", "old@example.com")

	s.SetClock(func() time.Time { return now })
	addUser(t, s, "newcomer", "new@example.com")

	uow, err := s.Begin(context.Background())
	require.NoError(t, err)
	defer func() { _ = uow.Close() }()

	count, err := uow.Users().CountRegisteredLastSevenDays(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestTopFiveLongestUsernames(t *testing.T) {
	s := New()
	usernames := []string{
		"aaaaaaa",
		"bbbbbbbbb",
		"ccccc",
		"dddddddddddd",
		"eeeeee",
		"ffffffff",
		"gggggggggg",
	}
	for i, username := range usernames {
		addUser(t, s, username, fmt.Sprintf("user%d@example.com", i))
	}

	uow, err := s.Begin(context.Background())
	require.NoError(t, err)
	defer func() { _ = uow.Close() }()

	top, err := uow.Users().TopFiveLongestUsernames(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{
		"dddddddddddd",
		"gggggggggg",
		"bbbbbbbbb",
		"ffffffff",
		"aaaaaaa",
	}, top)
}

func TestEmailDomainShare(t *testing.T) {
	s := New()

	uowEmpty, err := s.Begin(context.Background())
	require.NoError(t, err)
	share, err := uowEmpty.Users().EmailDomainShare(context.Background(), "example.com")
	require.NoError(t, err)
	assert.Equal(t, 0, share)
	require.NoError(t, uowEmpty.Close())

	addUser(t, s, "username1", "one@example.com")
	addUser(t, s, "username2", "two@other.org")
	addUser(t, s, "username3", "three@other.org")
	addUser(t, s, "username4", "four@another.net")

	uow, err := s.Begin(context.Background())
	require.NoError(t, err)
	defer func() { _ = uow.Close() }()

	share, err = uow.Users().EmailDomainShare(context.Background(), "example.com")
	require.NoError(t, err)
	assert.Equal(t, 25, share)

	share, err = uow.Users().EmailDomainShare(context.Background(), "other.org")
	require.NoError(t, err)
	assert.Equal(t, 50, share)
}

func TestUnitOfWorkNoReentryAfterClose(t *testing.T) {
	s := New()

	uow, err := s.Begin(context.Background())
	require.NoError(t, err)

	require.NoError(t, uow.Commit(context.Background()))
	assert.ErrorIs(t, uow.Commit(context.Background()), unitofwork.ErrClosed)
	assert.NoError(t, uow.Close())

	uow2, err := s.Begin(context.Background())
	require.NoError(t, err)
	require.NoError(t, uow2.Close())
	assert.ErrorIs(t, uow2.Commit(context.Background()), unitofwork.ErrClosed)
}
