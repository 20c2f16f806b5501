// internal/service/courses/courses.go
package courses

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"rbadmin/internal/domain/course"
	"rbadmin/internal/pkg/apiclient"
	xerrors "rbadmin/internal/pkg/errors"
)

type CourseService struct {
	api    *apiclient.Client
	logger *zap.Logger
}

func NewCourseService(api *apiclient.Client, logger *zap.Logger) *CourseService {
	return &CourseService{api: api, logger: logger}
}

// List returns the backend's page object untouched.
func (s *CourseService) List(ctx context.Context, caller apiclient.Caller, q course.ListQuery) (json.RawMessage, error) {
	return s.api.Call(ctx, caller, http.MethodGet, "courses", q.Params())
}

func (s *CourseService) Get(ctx context.Context, caller apiclient.Caller, id string) (json.RawMessage, error) {
	return s.api.Call(ctx, caller, http.MethodGet, path(id), nil)
}

func (s *CourseService) Create(ctx context.Context, caller apiclient.Caller, form course.Form) (json.RawMessage, error) {
	payload, err := form.Payload()
	if err != nil {
		return nil, xerrors.Wrap(xerrors.ErrInvalidInput, err.Error())
	}
	return s.api.Call(ctx, caller, http.MethodPost, "courses", payload)
}

func (s *CourseService) Update(ctx context.Context, caller apiclient.Caller, id string, form course.Form) (json.RawMessage, error) {
	payload, err := form.Payload()
	if err != nil {
		return nil, xerrors.Wrap(xerrors.ErrInvalidInput, err.Error())
	}
	return s.api.Call(ctx, caller, http.MethodPut, path(id), payload)
}

func (s *CourseService) Delete(ctx context.Context, caller apiclient.Caller, id string) error {
	_, err := s.api.Call(ctx, caller, http.MethodDelete, path(id), nil)
	if err == nil {
		s.logger.Info("course deleted", zap.String("course_id", id))
	}
	return err
}

func (s *CourseService) Enroll(ctx context.Context, caller apiclient.Caller, id string, form course.EnrollForm) (json.RawMessage, error) {
	payload, err := form.Payload()
	if err != nil {
		return nil, xerrors.Wrap(xerrors.ErrInvalidInput, err.Error())
	}
	return s.api.Call(ctx, caller, http.MethodPost, path(id)+"/enroll", payload)
}

func path(id string) string {
	return "courses/" + url.PathEscape(id)
}
