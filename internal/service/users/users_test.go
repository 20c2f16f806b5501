package users

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"rbadmin/internal/domain/user"
	"rbadmin/internal/pkg/apiclient"
	xerrors "rbadmin/internal/pkg/errors"
)

type staticCaller struct{ saved, cleared int }

func (staticCaller) Credential() (apiclient.Credential, bool) { return apiclient.Token("tok"), true }
func (c *staticCaller) Save(string)                          { c.saved++ }
func (c *staticCaller) Clear()                               { c.cleared++ }

func service(t *testing.T, h http.HandlerFunc) *UserService {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewUserService(apiclient.New(apiclient.Config{BaseURL: srv.URL}, zap.NewNop()), zap.NewNop())
}

func TestList_ClientsWithRowsShape(t *testing.T) {
	var gotPath, gotQuery, gotAuth string
	svc := service(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath, gotQuery, gotAuth = r.URL.Path, r.URL.RawQuery, r.Header.Get("Authorization")
		_, _ = io.WriteString(w, `{"success":true,"data":{"rows":[{"id":1,"firstName":"Ana","role":"client","isActive":true}]}}`)
	})

	rows, err := svc.List(context.Background(), &staticCaller{}, user.ListQuery{Search: "ana"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Ana", rows[0].FirstName)
	assert.Equal(t, "/users/clients", gotPath)
	assert.Equal(t, "page=1&per_page=50&search=ana", gotQuery)
	assert.Equal(t, "Bearer tok", gotAuth)
}

func TestList_RejectsUnknownType(t *testing.T) {
	svc := service(t, func(w http.ResponseWriter, r *http.Request) { t.Fatal("backend must not be called") })
	_, err := svc.List(context.Background(), &staticCaller{}, user.ListQuery{Type: "admins"})
	assert.ErrorIs(t, err, xerrors.ErrBadRequest)
}

func TestCreate_LocalValidation(t *testing.T) {
	svc := service(t, func(w http.ResponseWriter, r *http.Request) { t.Fatal("backend must not be called") })

	_, err := svc.Create(context.Background(), &staticCaller{}, user.RegisterForm{Password: "a", RepeatPassword: "b"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "repeatPassword")
	assert.ErrorIs(t, err, xerrors.ErrInvalidInput)
}

func TestCreate_MapsBackendFieldErrors(t *testing.T) {
	var sent map[string]any
	svc := service(t, func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(b, &sent)
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = io.WriteString(w, `{"message":"The given data was invalid.","errors":{"first_name":["required"],"postal_code":"invalid","email":["taken","again"]}}`)
	})

	_, err := svc.Create(context.Background(), &staticCaller{}, user.RegisterForm{
		Email: " Ana@Example.com ", Password: "pw", RepeatPassword: "pw",
	})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, map[string][]string{
		"firstName":  {"required"},
		"postalCode": {"invalid"},
		"email":      {"taken"},
	}, verr.Fields)
	assert.Equal(t, "ana@example.com", sent["email"])
	assert.Equal(t, "pw", sent["password_confirmation"])
}

func TestCreate_OtherErrorsPassThrough(t *testing.T) {
	svc := service(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = io.WriteString(w, `{"message":"Forbidden"}`)
	})
	_, err := svc.Create(context.Background(), &staticCaller{}, user.RegisterForm{Password: "x", RepeatPassword: "x"})
	assert.ErrorIs(t, err, xerrors.ErrForbidden)
}

func TestUpdate_SendsCleanedPayload(t *testing.T) {
	var method string
	var sent map[string]any
	svc := service(t, func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		b, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(b, &sent)
		_, _ = io.WriteString(w, `{"success":true,"data":{"id":5}}`)
	})

	empty, mail := "", "X@Y.COM"
	data, err := svc.Update(context.Background(), &staticCaller{}, "5", user.UpdateForm{City: &empty, Email: &mail, IsActive: true})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":5}`, string(data))
	assert.Equal(t, http.MethodPut, method)
	assert.Equal(t, map[string]any{"email": "x@y.com", "isActive": true}, sent)
}
