// Package user defines the user entity persisted by the service and the
// field limits shared between the storage schema and input validation.
package user

import "time"

// Field limits. Minimum lengths are enforced at input validation time,
// maximum lengths by the storage schema.
const (
	UsernameMinLength = 5
	UsernameMaxLength = 50
	EmailMaxLength    = 100
)

// User represents a registered user.
//
// ID and RegistrationDate are assigned by the storage engine at insertion
// and never change afterwards. Username and Email are globally unique.
type User struct {
	ID               int64
	Username         string
	Email            string
	RegistrationDate time.Time
}
