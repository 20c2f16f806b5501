// internal/handlers/payments/payments_handler.go
package payments

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"rbadmin/internal/domain/payment"
	"rbadmin/internal/middleware"
	"rbadmin/internal/pkg/response"
	paymentsvc "rbadmin/internal/service/payments"
)

type PaymentHandler struct {
	paymentService *paymentsvc.PaymentService
	logger         *zap.Logger
}

func NewPaymentHandler(paymentService *paymentsvc.PaymentService, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService, logger: logger}
}

func (h *PaymentHandler) ListPayments(c *gin.Context) {
	var q payment.ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.ValidationError(c, "invalid query", err)
		return
	}
	data, err := h.paymentService.List(c.Request.Context(), middleware.MustGetHandle(c), q)
	if err != nil {
		response.FromError(c, err, "failed to list payments")
		return
	}
	response.Success(c, http.StatusOK, "payments retrieved", data)
}

func (h *PaymentHandler) CreatePayment(c *gin.Context) {
	var form payment.Form
	if err := c.ShouldBindJSON(&form); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}
	data, err := h.paymentService.Create(c.Request.Context(), middleware.MustGetHandle(c), form)
	if err != nil {
		response.FromError(c, err, "failed to create payment")
		return
	}
	response.Success(c, http.StatusCreated, "payment created", data)
}
