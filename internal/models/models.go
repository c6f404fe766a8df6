// Package models contains the request and response shapes of the HTTP API.
package models

import "time"

// CreateUserRequest is the payload of POST /users and PUT /users/{id}.
// Username and email are validated before the service layer is reached.
type CreateUserRequest struct {
	Username string `json:"username" validate:"required,min=5,max=50"`
	Email    string `json:"email" validate:"required,email,max=100"`
}

// UserResponse is the user representation returned by all user endpoints.
type UserResponse struct {
	ID               int64     `json:"id"`
	Username         string    `json:"username"`
	Email            string    `json:"email"`
	RegistrationDate time.Time `json:"registration_date"`
}

// UsersInfoResponse is the body of GET /users/info.
type UsersInfoResponse struct {
	CountUsersRegisteredLastSevenDays int64    `json:"count_users_registered_last_seven_days"`
	TopFiveLongestUsernames           []string `json:"top_five_longest_usernames"`
}

// EmailDomainShareResponse is the body of GET /users/email-domain-share.
type EmailDomainShareResponse struct {
	Domain     string `json:"domain"`
	Percentage int    `json:"percentage"`
}

// ErrorResponse is the body returned with every non-2xx status.
type ErrorResponse struct {
	Detail string `json:"detail"`
}
