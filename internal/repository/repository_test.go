package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patric-chuzhbe/usersvc/internal/user"
)

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, "$1", placeholders(1))
	assert.Equal(t, "$1, $2, $3", placeholders(3))
}

func TestDomainSharePercentage(t *testing.T) {
	testCases := []struct {
		name     string
		matched  int64
		total    int64
		expected int
	}{
		{name: "zero users", matched: 0, total: 0, expected: 0},
		{name: "quarter", matched: 1, total: 4, expected: 25},
		{name: "all", matched: 3, total: 3, expected: 100},
		{name: "third rounds down", matched: 1, total: 3, expected: 33},
		{name: "two thirds rounds up", matched: 2, total: 3, expected: 67},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, DomainSharePercentage(tc.matched, tc.total))
		})
	}
}

type fakeRow struct {
	values []any
}

func (r *fakeRow) Scan(dest ...any) error {
	for i, d := range dest {
		switch target := d.(type) {
		case *int64:
			*target = r.values[i].(int64)
		case *string:
			*target = r.values[i].(string)
		case *time.Time:
			*target = r.values[i].(time.Time)
		}
	}
	return nil
}

func TestUserMapper(t *testing.T) {
	registered := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	var rec user.User
	err := userMapper.Scan(&fakeRow{values: []any{
		int64(7), "johnsmith", "john@example.com", registered,
	}}, &rec)
	require.NoError(t, err)

	assert.Equal(t, user.User{
		ID:               7,
		Username:         "johnsmith",
		Email:            "john@example.com",
		RegistrationDate: registered,
	}, rec)

	assert.Equal(t, []any{"johnsmith", "john@example.com"}, userMapper.WritableValues(&rec))
	assert.Equal(t, map[string]string{
		"username": "johnsmith",
		"email":    "john@example.com",
	}, userMapper.ConflictValues(&rec))
}
