// internal/handlers/audit/audit_handler.go
package audit

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"rbadmin/internal/domain/auth"
	"rbadmin/internal/pkg/response"
)

// Reader is satisfied by postgres.AuditRepository.
type Reader interface {
	Recent(ctx context.Context, email string, limit int) ([]auth.AuditEvent, error)
}

type AuditHandler struct {
	reader Reader
	logger *zap.Logger
}

// NewAuditHandler accepts a nil reader when no database is configured.
func NewAuditHandler(reader Reader, logger *zap.Logger) *AuditHandler {
	return &AuditHandler{reader: reader, logger: logger}
}

// ListEvents handles GET /audit?email=&limit=
func (h *AuditHandler) ListEvents(c *gin.Context) {
	if h.reader == nil {
		response.Error(c, http.StatusNotImplemented, "audit trail is not enabled", nil)
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	events, err := h.reader.Recent(c.Request.Context(), c.Query("email"), limit)
	if err != nil {
		h.logger.Error("failed to read audit trail", zap.Error(err))
		response.Error(c, http.StatusInternalServerError, "failed to read audit trail", err)
		return
	}
	response.Success(c, http.StatusOK, "audit events retrieved", events)
}
