package storeerr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapPostgresErrorUniqueViolation(t *testing.T) {
	testCases := []struct {
		name           string
		constraintName string
		expectedField  string
		expectedValue  string
	}{
		{
			name:           "username constraint",
			constraintName: "users_username_key",
			expectedField:  "username",
			expectedValue:  "johnsmith",
		},
		{
			name:           "email constraint",
			constraintName: "users_email_key",
			expectedField:  "email",
			expectedValue:  "john@example.com",
		},
	}

	values := map[string]string{
		"username": "johnsmith",
		"email":    "john@example.com",
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			pgErr := &pgconn.PgError{
				Code:           "23505",
				ConstraintName: tc.constraintName,
			}

			mapped := MapPostgresError(fmt.Errorf("insert user: %w", pgErr), values)

			conflict, ok := AsConflict(mapped)
			require.True(t, ok)
			assert.Equal(t, tc.expectedField, conflict.Field)
			assert.Equal(t, tc.expectedValue, conflict.Value)
		})
	}
}

func TestMapPostgresErrorPassesOtherErrorsThrough(t *testing.T) {
	plain := errors.New("connection reset")
	assert.Equal(t, plain, MapPostgresError(plain, nil))

	otherPgErr := &pgconn.PgError{Code: "23503"}
	assert.Equal(t, error(otherPgErr), MapPostgresError(otherPgErr, nil))

	unknownConstraint := &pgconn.PgError{Code: "23505", ConstraintName: "users_acct_key"}
	assert.Equal(t, error(unknownConstraint), MapPostgresError(unknownConstraint, nil))

	assert.NoError(t, MapPostgresError(nil, nil))
}

func TestConflictErrorMessage(t *testing.T) {
	err := &ConflictError{Field: "email", Value: "john@example.com"}
	assert.Equal(t, `email "john@example.com" already exists`, err.Error())
}
