// internal/domain/settings/dto.go
package settings

import (
	"errors"
	"strings"
)

var (
	ErrInvalidRegion = errors.New("stripe_default_region must be es or us")
	ErrNegativePrice = errors.New("prices cannot be negative")
)

const DefaultRegion = "es"

// Settings is the backend's business config. Unset prices are null.
type Settings struct {
	PriceCourse         *float64 `json:"price_course"`
	PriceSession        *float64 `json:"price_session"`
	PriceBooking        *float64 `json:"price_booking"`
	StripeDefaultRegion string   `json:"stripe_default_region"`
}

// Normalize applies the default region and validates the values.
func (s *Settings) Normalize() error {
	s.StripeDefaultRegion = strings.ToLower(strings.TrimSpace(s.StripeDefaultRegion))
	switch s.StripeDefaultRegion {
	case "":
		s.StripeDefaultRegion = DefaultRegion
	case "es", "us":
	default:
		return ErrInvalidRegion
	}
	for _, p := range []*float64{s.PriceCourse, s.PriceSession, s.PriceBooking} {
		if p != nil && *p < 0 {
			return ErrNegativePrice
		}
	}
	return nil
}
