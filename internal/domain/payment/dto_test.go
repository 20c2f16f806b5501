package payment

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC)

func TestForm_Payload(t *testing.T) {
	course := int64(4)
	p, err := Form{ClientID: 9, CourseID: &course, AmountEUR: "120,5", Method: "card"}.Payload(now)
	require.NoError(t, err)

	assert.Equal(t, int64(12050), p.AmountCents)
	assert.Equal(t, "EUR", p.Currency)
	assert.Equal(t, StatusPending, p.Status)
	assert.Equal(t, "card", *p.Method)
	assert.Nil(t, p.Notes)
	assert.Empty(t, p.PaidAt)
}

func TestForm_PaidDefaultsToNow(t *testing.T) {
	p, err := Form{ClientID: 9, AmountEUR: "10", Status: StatusPaid}.Payload(now)
	require.NoError(t, err)
	assert.Equal(t, "2026-03-01T10:30:00.000Z", p.PaidAt)

	p, err = Form{ClientID: 9, AmountEUR: "10", Status: StatusPaid, PaidAt: "2026-02-14"}.Payload(now)
	require.NoError(t, err)
	assert.Equal(t, "2026-02-14T00:00:00.000Z", p.PaidAt)
}

func TestForm_PayloadErrors(t *testing.T) {
	_, err := Form{AmountEUR: "10"}.Payload(now)
	assert.ErrorIs(t, err, ErrInvalidClient)

	for _, amount := range []string{"", "0", "0,001", "-5", "abc"} {
		_, err = Form{ClientID: 1, AmountEUR: amount}.Payload(now)
		assert.ErrorIs(t, err, ErrInvalidAmount, amount)
	}

	_, err = Form{ClientID: 1, AmountEUR: "1", Status: "refunded"}.Payload(now)
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, err = Form{ClientID: 1, AmountEUR: "1", Status: StatusPaid, PaidAt: "yesterday"}.Payload(now)
	assert.ErrorIs(t, err, ErrInvalidPaidAt)
}

func TestListQuery_Params(t *testing.T) {
	assert.Equal(t, map[string]any{"per_page": 100}, ListQuery{}.Params())
	assert.Equal(t, map[string]any{"per_page": 20, "client_id": int64(3)}, ListQuery{ClientID: 3, PerPage: 20}.Params())
}
