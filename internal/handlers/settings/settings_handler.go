// internal/handlers/settings/settings_handler.go
package settings

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"rbadmin/internal/domain/settings"
	"rbadmin/internal/middleware"
	"rbadmin/internal/pkg/response"
	settingssvc "rbadmin/internal/service/settings"
)

type SettingsHandler struct {
	settingsService *settingssvc.SettingsService
	logger          *zap.Logger
}

func NewSettingsHandler(settingsService *settingssvc.SettingsService, logger *zap.Logger) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsService, logger: logger}
}

func (h *SettingsHandler) GetSettings(c *gin.Context) {
	out, err := h.settingsService.Get(c.Request.Context(), middleware.MustGetHandle(c))
	if err != nil {
		response.FromError(c, err, "failed to load settings")
		return
	}
	response.Success(c, http.StatusOK, "settings retrieved", out)
}

func (h *SettingsHandler) UpdateSettings(c *gin.Context) {
	var in settings.Settings
	if err := c.ShouldBindJSON(&in); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}
	out, err := h.settingsService.Update(c.Request.Context(), middleware.MustGetHandle(c), in)
	if err != nil {
		response.FromError(c, err, "failed to save settings")
		return
	}
	h.logger.Info("settings updated", zap.String("region", out.StripeDefaultRegion))
	response.Success(c, http.StatusOK, "settings saved", out)
}
