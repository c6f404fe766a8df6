// Package router wires the HTTP endpoints: it parses and validates request
// input, delegates to the service, and maps results and error kinds to
// HTTP statuses and JSON bodies.
package router

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	validator "github.com/go-playground/validator/v10"

	"github.com/patric-chuzhbe/usersvc/internal/logger"
	"github.com/patric-chuzhbe/usersvc/internal/models"
	"github.com/patric-chuzhbe/usersvc/internal/storeerr"
)

type userService interface {
	AddUser(ctx context.Context, req models.CreateUserRequest) (models.UserResponse, error)
	GetUser(ctx context.Context, id int64) (models.UserResponse, error)
	GetUsers(ctx context.Context, page, size int) ([]models.UserResponse, error)
	UpdateUser(ctx context.Context, id int64, req models.CreateUserRequest) (models.UserResponse, error)
	DeleteUser(ctx context.Context, id int64) error
	GetUsersInfo(ctx context.Context) (models.UsersInfoResponse, error)
	EmailDomainShare(ctx context.Context, domain string) (models.EmailDomainShareResponse, error)
	Ping(ctx context.Context) error
}

// Router holds the handler dependencies: the service, the request
// validator, and the configured pagination defaults.
type Router struct {
	service         userService
	validate        *validator.Validate
	defaultPage     int
	defaultPageSize int
}

// New builds the chi mux with all routes and middleware registered.
func New(service userService, defaultPage, defaultPageSize int) *chi.Mux {
	r := &Router{
		service:         service,
		validate:        validator.New(),
		defaultPage:     defaultPage,
		defaultPageSize: defaultPageSize,
	}

	mux := chi.NewRouter()
	mux.Use(logger.WithLoggingHTTPMiddleware)

	mux.Get(`/ping`, r.GetPing)

	mux.Route(`/users`, func(mux chi.Router) {
		mux.Get(`/info`, r.GetUsersInfo)
		mux.Get(`/email-domain-share`, r.GetEmailDomainShare)
		mux.Get(`/`, r.GetUsers)
		mux.Post(`/`, r.PostUser)
		mux.Get(`/{userID}`, r.GetUser)
		mux.Put(`/{userID}`, r.PutUser)
		mux.Delete(`/{userID}`, r.DeleteUser)
	})

	return mux
}

func writeJSON(res http.ResponseWriter, status int, body any) {
	res.Header().Set("Content-Type", "application/json")
	res.WriteHeader(status)
	if err := json.NewEncoder(res).Encode(body); err != nil {
		logger.Log.Errorln("error while encoding the response:", err)
	}
}

// writeError maps the service error taxonomy onto HTTP statuses. Anything
// outside the taxonomy is an infrastructure failure and surfaces as 500.
func writeError(res http.ResponseWriter, err error) {
	if conflict, ok := storeerr.AsConflict(err); ok {
		writeJSON(res, http.StatusBadRequest, models.ErrorResponse{
			Detail: fmt.Sprintf("%s already exists", conflict.Value),
		})
		return
	}

	switch {
	case errors.Is(err, storeerr.ErrInvalidArgument):
		writeJSON(res, http.StatusBadRequest, models.ErrorResponse{Detail: err.Error()})
	case errors.Is(err, storeerr.ErrNotFound):
		writeJSON(res, http.StatusNotFound, models.ErrorResponse{Detail: "user not found"})
	default:
		logger.Log.Errorln("unhandled error in handler:", err)
		writeJSON(res, http.StatusInternalServerError, models.ErrorResponse{Detail: "internal server error"})
	}
}

func (r *Router) decodeCreateUserRequest(req *http.Request) (models.CreateUserRequest, error) {
	var body models.CreateUserRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return models.CreateUserRequest{}, fmt.Errorf("invalid JSON body: %w", storeerr.ErrInvalidArgument)
	}

	if err := r.validate.Struct(body); err != nil {
		return models.CreateUserRequest{}, fmt.Errorf("%v: %w", err, storeerr.ErrInvalidArgument)
	}

	return body, nil
}

func userIDFromRequest(req *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(req, "userID"), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("user id must be an integer: %w", storeerr.ErrInvalidArgument)
	}

	return id, nil
}

// positiveQueryParam parses an optional positive integer query parameter,
// falling back to def when the parameter is absent.
func positiveQueryParam(req *http.Request, name string, def int) (int, error) {
	raw := req.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}

	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer: %w", name, storeerr.ErrInvalidArgument)
	}

	return value, nil
}

// GetPing reports storage health.
func (r *Router) GetPing(res http.ResponseWriter, req *http.Request) {
	if err := r.service.Ping(req.Context()); err != nil {
		writeError(res, err)
		return
	}

	res.WriteHeader(http.StatusOK)
}

// PostUser creates a user from the request body and responds 201 with the
// stored representation, or 400 naming the conflicting value.
func (r *Router) PostUser(res http.ResponseWriter, req *http.Request) {
	body, err := r.decodeCreateUserRequest(req)
	if err != nil {
		writeError(res, err)
		return
	}

	created, err := r.service.AddUser(req.Context(), body)
	if err != nil {
		writeError(res, err)
		return
	}

	writeJSON(res, http.StatusCreated, created)
}

// GetUser returns one user by id.
func (r *Router) GetUser(res http.ResponseWriter, req *http.Request) {
	id, err := userIDFromRequest(req)
	if err != nil {
		writeError(res, err)
		return
	}

	found, err := r.service.GetUser(req.Context(), id)
	if err != nil {
		writeError(res, err)
		return
	}

	writeJSON(res, http.StatusOK, found)
}

// GetUsers returns a page of users; page and size default to the
// configured values.
func (r *Router) GetUsers(res http.ResponseWriter, req *http.Request) {
	page, err := positiveQueryParam(req, "page", r.defaultPage)
	if err != nil {
		writeError(res, err)
		return
	}

	size, err := positiveQueryParam(req, "size", r.defaultPageSize)
	if err != nil {
		writeError(res, err)
		return
	}

	users, err := r.service.GetUsers(req.Context(), page, size)
	if err != nil {
		writeError(res, err)
		return
	}

	if users == nil {
		users = []models.UserResponse{}
	}

	writeJSON(res, http.StatusOK, users)
}

// PutUser applies a full-record update (username and email) to one user.
func (r *Router) PutUser(res http.ResponseWriter, req *http.Request) {
	id, err := userIDFromRequest(req)
	if err != nil {
		writeError(res, err)
		return
	}

	body, err := r.decodeCreateUserRequest(req)
	if err != nil {
		writeError(res, err)
		return
	}

	updated, err := r.service.UpdateUser(req.Context(), id, body)
	if err != nil {
		writeError(res, err)
		return
	}

	writeJSON(res, http.StatusOK, updated)
}

// DeleteUser removes one user and responds 204 with an empty body.
func (r *Router) DeleteUser(res http.ResponseWriter, req *http.Request) {
	id, err := userIDFromRequest(req)
	if err != nil {
		writeError(res, err)
		return
	}

	if err := r.service.DeleteUser(req.Context(), id); err != nil {
		writeError(res, err)
		return
	}

	res.WriteHeader(http.StatusNoContent)
}

// GetUsersInfo returns the registration count for the trailing seven days
// and the five longest usernames.
func (r *Router) GetUsersInfo(res http.ResponseWriter, req *http.Request) {
	info, err := r.service.GetUsersInfo(req.Context())
	if err != nil {
		writeError(res, err)
		return
	}

	if info.TopFiveLongestUsernames == nil {
		info.TopFiveLongestUsernames = []string{}
	}

	writeJSON(res, http.StatusOK, info)
}

// GetEmailDomainShare returns the share of users whose email domain equals
// the `domain` query parameter.
func (r *Router) GetEmailDomainShare(res http.ResponseWriter, req *http.Request) {
	domain := req.URL.Query().Get("domain")
	if domain == "" {
		writeError(res, fmt.Errorf("domain query parameter is required: %w", storeerr.ErrInvalidArgument))
		return
	}

	share, err := r.service.EmailDomainShare(req.Context(), domain)
	if err != nil {
		writeError(res, err)
		return
	}

	writeJSON(res, http.StatusOK, share)
}
