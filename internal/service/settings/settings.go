// internal/service/settings/settings.go
package settings

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"rbadmin/internal/domain/settings"
	"rbadmin/internal/pkg/apiclient"
	xerrors "rbadmin/internal/pkg/errors"
)

type SettingsService struct {
	api    *apiclient.Client
	logger *zap.Logger
}

func NewSettingsService(api *apiclient.Client, logger *zap.Logger) *SettingsService {
	return &SettingsService{api: api, logger: logger}
}

func (s *SettingsService) Get(ctx context.Context, caller apiclient.Caller) (*settings.Settings, error) {
	var out settings.Settings
	if err := s.api.CallInto(ctx, caller, http.MethodGet, "config", nil, &out); err != nil {
		return nil, err
	}
	if err := out.Normalize(); err != nil {
		// A region the console does not know is shown as the default.
		s.logger.Warn("backend config out of range", zap.Error(err))
		out.StripeDefaultRegion = settings.DefaultRegion
	}
	return &out, nil
}

func (s *SettingsService) Update(ctx context.Context, caller apiclient.Caller, in settings.Settings) (*settings.Settings, error) {
	if err := in.Normalize(); err != nil {
		return nil, xerrors.Wrap(xerrors.ErrInvalidInput, err.Error())
	}
	if _, err := s.api.Call(ctx, caller, http.MethodPut, "config", in); err != nil {
		return nil, err
	}
	return &in, nil
}
