// internal/service/payments/payments.go
package payments

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"rbadmin/internal/domain/payment"
	"rbadmin/internal/pkg/apiclient"
	xerrors "rbadmin/internal/pkg/errors"
)

type PaymentService struct {
	api    *apiclient.Client
	now    func() time.Time
	logger *zap.Logger
}

func NewPaymentService(api *apiclient.Client, logger *zap.Logger) *PaymentService {
	return &PaymentService{api: api, now: time.Now, logger: logger}
}

func (s *PaymentService) List(ctx context.Context, caller apiclient.Caller, q payment.ListQuery) (json.RawMessage, error) {
	return s.api.Call(ctx, caller, http.MethodGet, "payments", q.Params())
}

func (s *PaymentService) Create(ctx context.Context, caller apiclient.Caller, form payment.Form) (json.RawMessage, error) {
	payload, err := form.Payload(s.now())
	if err != nil {
		return nil, xerrors.Wrap(xerrors.ErrInvalidInput, err.Error())
	}
	data, err := s.api.Call(ctx, caller, http.MethodPost, "payments", payload)
	if err != nil {
		return nil, err
	}
	s.logger.Info("payment recorded",
		zap.Int64("client_id", payload.ClientID),
		zap.Int64("amount_cents", payload.AmountCents),
		zap.String("status", string(payload.Status)),
	)
	return data, nil
}
