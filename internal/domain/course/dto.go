// internal/domain/course/dto.go
package course

import (
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
)

var (
	ErrNameRequired   = errors.New("name is required")
	ErrInvalidContent = errors.New("content must be valid JSON")
	ErrInvalidPrice   = errors.New("price must be a number greater than or equal to 0")
	ErrInvalidUser    = errors.New("user_id is required")
	ErrInvalidStatus  = errors.New("status must be active, completed or cancelled")
)

type ListQuery struct {
	Page    int    `form:"page"`
	PerPage int    `form:"per_page"`
	Search  string `form:"search"`
}

func (q ListQuery) Params() map[string]any {
	page, perPage := q.Page, q.PerPage
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 10
	}
	return map[string]any{
		"page":     page,
		"per_page": perPage,
		"search":   strings.TrimSpace(q.Search),
	}
}

// Form is the create/edit course form. Price and content arrive as the raw
// text of their inputs.
type Form struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       string `json:"price"`
	Content     string `json:"content"`
}

// Payload is the body sent to the backend's courses endpoint. A nil price
// lets the backend apply its configured default.
type Payload struct {
	Name        string          `json:"name"`
	Description *string         `json:"description"`
	Content     json.RawMessage `json:"content"`
	Price       *float64        `json:"price,omitempty"`
}

func (f Form) Payload() (*Payload, error) {
	p := &Payload{Name: strings.TrimSpace(f.Name)}
	if p.Name == "" {
		return nil, ErrNameRequired
	}

	if d := strings.TrimSpace(f.Description); d != "" {
		p.Description = &d
	}

	p.Content = json.RawMessage("null")
	if c := strings.TrimSpace(f.Content); c != "" {
		if !json.Valid([]byte(c)) {
			return nil, ErrInvalidContent
		}
		p.Content = json.RawMessage(c)
	}

	if s := strings.TrimSpace(f.Price); s != "" {
		n, err := strconv.ParseFloat(s, 64)
		if err != nil || n < 0 || math.IsNaN(n) || math.IsInf(n, 0) {
			return nil, ErrInvalidPrice
		}
		p.Price = &n
	}
	return p, nil
}

type EnrollStatus string

const (
	EnrollActive    EnrollStatus = "active"
	EnrollCompleted EnrollStatus = "completed"
	EnrollCancelled EnrollStatus = "cancelled"
)

// EnrollForm enrolls a user in a course, optionally at a custom price in
// euros.
type EnrollForm struct {
	UserID   int64        `json:"user_id"`
	Status   EnrollStatus `json:"status"`
	PriceEUR string       `json:"price_eur"`
}

type EnrollPayload struct {
	UserID     int64        `json:"user_id"`
	Status     EnrollStatus `json:"status"`
	PriceCents *int64       `json:"price_cents"`
}

func (f EnrollForm) Payload() (*EnrollPayload, error) {
	if f.UserID <= 0 {
		return nil, ErrInvalidUser
	}
	status := f.Status
	switch status {
	case "":
		status = EnrollActive
	case EnrollActive, EnrollCompleted, EnrollCancelled:
	default:
		return nil, ErrInvalidStatus
	}

	p := &EnrollPayload{UserID: f.UserID, Status: status}
	if strings.TrimSpace(f.PriceEUR) != "" {
		cents, err := EurosToCents(f.PriceEUR)
		if err != nil || cents < 0 {
			return nil, ErrInvalidPrice
		}
		p.PriceCents = &cents
	}
	return p, nil
}

// EurosToCents parses an amount typed by a person ("12,50" or "12.5") and
// rounds it to whole cents.
func EurosToCents(s string) (int64, error) {
	s = strings.Replace(strings.TrimSpace(s), ",", ".", 1)
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, strconv.ErrRange
	}
	return int64(math.Round(n * 100)), nil
}
