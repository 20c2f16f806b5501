package user

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterForm_Payload(t *testing.T) {
	f := RegisterForm{
		FirstName:      "  Ana ",
		LastName:       " Ruiz",
		Email:          " Ana@Example.COM ",
		Password:       "s3cret!",
		RepeatPassword: "s3cret!",
		Phone:          "+34 600 11 22 33",
		DNI:            " 12345678z ",
		BirthDate:      "1990-04-01",
		PostalCode:     " 28001 ",
	}
	require.Nil(t, f.Validate())

	p := f.Payload()
	assert.Equal(t, "Ana", p.FirstName)
	assert.Equal(t, "Ruiz", p.LastName)
	assert.Equal(t, "ana@example.com", p.Email)
	assert.Equal(t, "+34600112233", p.Phone)
	assert.Equal(t, "12345678Z", p.DNI)
	assert.Equal(t, "28001", p.PostalCode)
	assert.Equal(t, "client", p.Role)
	assert.Equal(t, "España", p.Country)
	assert.Equal(t, "s3cret!", p.PasswordConfirmation)
	assert.True(t, p.IsActive)

	b, err := json.Marshal(p)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"first_name":"Ana"`)
	assert.Contains(t, string(b), `"birth_date":"1990-04-01"`)
}

func TestRegisterForm_PasswordsMustMatch(t *testing.T) {
	errs := RegisterForm{Password: "a", RepeatPassword: "b"}.Validate()
	assert.Equal(t, []string{"passwords do not match"}, errs["repeatPassword"])
}

func TestFormFieldErrors(t *testing.T) {
	got := FormFieldErrors(map[string][]string{
		"first_name":            {"required", "too short"},
		"password_confirmation": {"mismatch"},
		"postal_code":           {"invalid"},
		"email":                 {"taken"},
		"dni":                   {},
	})
	assert.Equal(t, map[string][]string{
		"firstName":      {"required"},
		"repeatPassword": {"mismatch"},
		"postalCode":     {"invalid"},
		"email":          {"taken"},
	}, got)
	assert.Nil(t, FormFieldErrors(nil))
}

func TestUpdateForm_Payload(t *testing.T) {
	blank, name, email := "  ", " Ana ", "ANA@EXAMPLE.COM"
	p := UpdateForm{FirstName: &name, LastName: &blank, Email: &email, Role: "teacher"}.Payload()

	assert.Equal(t, map[string]any{
		"firstName": "Ana",
		"email":     "ana@example.com",
		"role":      "teacher",
		"isActive":  false,
	}, p)
}

func TestListQuery(t *testing.T) {
	q := ListQuery{Search: " ana "}
	require.NoError(t, q.Normalize())
	assert.Equal(t, "users/clients", q.Path())
	assert.Equal(t, map[string]any{"search": "ana", "page": 1, "per_page": 50}, q.Params())

	q = ListQuery{Type: Members, Page: 3, PerPage: 20}
	require.NoError(t, q.Normalize())
	assert.Equal(t, "users/members", q.Path())

	bad := ListQuery{Type: "admins"}
	assert.Error(t, bad.Normalize())
}

func TestDecodeRows(t *testing.T) {
	rows, err := DecodeRows(json.RawMessage(`[{"id":1,"firstName":"Ana"}]`))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Ana", rows[0].FirstName)

	rows, err = DecodeRows(json.RawMessage(`{"rows":[{"id":2},{"id":3}],"total":2}`))
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	rows, err = DecodeRows(json.RawMessage(`{"total":0}`))
	require.NoError(t, err)
	assert.Empty(t, rows)
	assert.NotNil(t, rows)

	rows, err = DecodeRows(nil)
	require.NoError(t, err)
	assert.Empty(t, rows)
}
