package settings

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	var s Settings
	require.NoError(t, json.Unmarshal([]byte(`{"price_course":120,"price_session":null}`), &s))
	require.NoError(t, s.Normalize())

	assert.Equal(t, "es", s.StripeDefaultRegion)
	assert.Equal(t, 120.0, *s.PriceCourse)
	assert.Nil(t, s.PriceSession)

	b, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `{"price_course":120,"price_session":null,"price_booking":null,"stripe_default_region":"es"}`, string(b))
}

func TestNormalize_Errors(t *testing.T) {
	s := Settings{StripeDefaultRegion: "mx"}
	assert.ErrorIs(t, s.Normalize(), ErrInvalidRegion)

	neg := -1.0
	s = Settings{StripeDefaultRegion: "US", PriceBooking: &neg}
	assert.ErrorIs(t, s.Normalize(), ErrNegativePrice)
	assert.Equal(t, "us", s.StripeDefaultRegion)
}
