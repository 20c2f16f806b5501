// internal/service/users/users.go
package users

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"rbadmin/internal/domain/user"
	"rbadmin/internal/pkg/apiclient"
	xerrors "rbadmin/internal/pkg/errors"
)

// ValidationError carries per-field messages keyed by form field name.
type ValidationError struct {
	Message string
	Fields  map[string][]string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Unwrap() error { return xerrors.ErrInvalidInput }

type UserService struct {
	api    *apiclient.Client
	logger *zap.Logger
}

func NewUserService(api *apiclient.Client, logger *zap.Logger) *UserService {
	return &UserService{api: api, logger: logger}
}

// List returns one page of clients or members.
func (s *UserService) List(ctx context.Context, caller apiclient.Caller, q user.ListQuery) ([]user.Row, error) {
	if err := q.Normalize(); err != nil {
		return nil, xerrors.Wrap(xerrors.ErrBadRequest, err.Error())
	}
	data, err := s.api.Call(ctx, caller, http.MethodGet, q.Path(), q.Params())
	if err != nil {
		return nil, err
	}
	rows, err := user.DecodeRows(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}
	return rows, nil
}

func (s *UserService) Get(ctx context.Context, caller apiclient.Caller, id string) (json.RawMessage, error) {
	return s.api.Call(ctx, caller, http.MethodGet, "users/"+url.PathEscape(id), nil)
}

func (s *UserService) Update(ctx context.Context, caller apiclient.Caller, id string, form user.UpdateForm) (json.RawMessage, error) {
	return s.api.Call(ctx, caller, http.MethodPut, "users/"+url.PathEscape(id), form.Payload())
}

func (s *UserService) Balances(ctx context.Context, caller apiclient.Caller, id string) (json.RawMessage, error) {
	return s.api.Call(ctx, caller, http.MethodGet, "users/"+url.PathEscape(id)+"/balances", nil)
}

// Create registers a user from the admin form. Backend validation errors
// come back as a *ValidationError keyed by form field.
func (s *UserService) Create(ctx context.Context, caller apiclient.Caller, form user.RegisterForm) (json.RawMessage, error) {
	if fields := form.Validate(); fields != nil {
		return nil, &ValidationError{Message: "check the highlighted fields", Fields: fields}
	}

	payload := form.Payload()
	data, err := s.api.Call(ctx, caller, http.MethodPost, "users", payload)
	if err == nil {
		s.logger.Info("user created", zap.String("role", payload.Role))
		return data, nil
	}

	if fields := apiclient.FieldErrorsOf(err); apiclient.StatusOf(err) == http.StatusUnprocessableEntity && len(fields) > 0 {
		return nil, &ValidationError{
			Message: "check the highlighted fields",
			Fields:  user.FormFieldErrors(fields),
		}
	}
	return nil, err
}
