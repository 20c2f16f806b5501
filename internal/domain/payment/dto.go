// internal/domain/payment/dto.go
package payment

import (
	"errors"
	"strings"
	"time"

	"rbadmin/internal/domain/course"
)

var (
	ErrInvalidAmount = errors.New("amount must be at least 0.01")
	ErrInvalidClient = errors.New("client_id is required")
	ErrInvalidStatus = errors.New("status must be pending, paid or canceled")
	ErrInvalidPaidAt = errors.New("paid_at is not a valid date")
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusPaid     Status = "paid"
	StatusCanceled Status = "canceled"
)

const Currency = "EUR"

type ListQuery struct {
	ClientID int64 `form:"client_id"`
	PerPage  int   `form:"per_page"`
}

func (q ListQuery) Params() map[string]any {
	out := map[string]any{"per_page": q.PerPage}
	if q.PerPage < 1 {
		out["per_page"] = 100
	}
	if q.ClientID > 0 {
		out["client_id"] = q.ClientID
	}
	return out
}

// Form is the "new payment" dialog.
type Form struct {
	ClientID  int64  `json:"client_id"`
	CourseID  *int64 `json:"course_id"`
	AmountEUR string `json:"amount_eur"`
	Status    Status `json:"status"`
	PaidAt    string `json:"paid_at"`
	Method    string `json:"method"`
	Reference string `json:"reference"`
	Notes     string `json:"notes"`
}

type Payload struct {
	ClientID    int64   `json:"client_id"`
	CourseID    *int64  `json:"course_id"`
	AmountCents int64   `json:"amount_cents"`
	Currency    string  `json:"currency"`
	Status      Status  `json:"status"`
	Method      *string `json:"method"`
	Reference   *string `json:"reference"`
	Notes       *string `json:"notes"`
	PaidAt      string  `json:"paid_at,omitempty"`
}

// isoMillis matches what browsers produce for Date.toISOString.
const isoMillis = "2006-01-02T15:04:05.000Z"

var paidAtLayouts = []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02"}

// Payload converts the form; now supplies paid_at for paid payments that
// did not give one.
func (f Form) Payload(now time.Time) (*Payload, error) {
	if f.ClientID <= 0 {
		return nil, ErrInvalidClient
	}
	cents, err := course.EurosToCents(f.AmountEUR)
	if err != nil || cents < 1 {
		return nil, ErrInvalidAmount
	}

	status := f.Status
	switch status {
	case "":
		status = StatusPending
	case StatusPending, StatusPaid, StatusCanceled:
	default:
		return nil, ErrInvalidStatus
	}

	p := &Payload{
		ClientID:    f.ClientID,
		CourseID:    f.CourseID,
		AmountCents: cents,
		Currency:    Currency,
		Status:      status,
		Method:      orNil(f.Method),
		Reference:   orNil(f.Reference),
		Notes:       orNil(f.Notes),
	}

	if status == StatusPaid {
		at := now
		if s := strings.TrimSpace(f.PaidAt); s != "" {
			if at, err = parsePaidAt(s); err != nil {
				return nil, ErrInvalidPaidAt
			}
		}
		p.PaidAt = at.UTC().Format(isoMillis)
	}
	return p, nil
}

func parsePaidAt(s string) (time.Time, error) {
	var err error
	for _, layout := range paidAtLayouts {
		var t time.Time
		if t, err = time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, err
}

func orNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
