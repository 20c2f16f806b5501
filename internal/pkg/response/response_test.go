package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rbadmin/internal/pkg/apiclient"
	xerrors "rbadmin/internal/pkg/errors"
)

func init() { gin.SetMode(gin.TestMode) }

func run(t *testing.T, fn func(c *gin.Context)) (int, Response) {
	t.Helper()
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	fn(c)

	var body Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec.Code, body
}

func TestFromError_APIError(t *testing.T) {
	err := &apiclient.Error{
		Message: "The given data was invalid.",
		Status:  http.StatusUnprocessableEntity,
		Errors:  apiclient.FieldErrors{"email": {"taken"}},
	}
	code, body := run(t, func(c *gin.Context) { FromError(c, fmt.Errorf("create user: %w", err), "failed") })

	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.False(t, body.Success)
	assert.Equal(t, "The given data was invalid.", body.Message)
	assert.Equal(t, []string{"taken"}, body.Errors["email"])
}

func TestFromError_SuccessFalseBecomes400(t *testing.T) {
	code, body := run(t, func(c *gin.Context) {
		FromError(c, &apiclient.Error{Message: "nope", Status: http.StatusOK}, "failed")
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "nope", body.Message)
}

func TestFromError_Transport(t *testing.T) {
	code, body := run(t, func(c *gin.Context) { FromError(c, errors.New("dial tcp: refused"), "failed") })
	assert.Equal(t, http.StatusBadGateway, code)
	assert.Equal(t, xerrors.ErrUpstream.Error(), body.Message)
	assert.Empty(t, body.Error)
}

func TestFromError_Sentinel(t *testing.T) {
	code, body := run(t, func(c *gin.Context) {
		FromError(c, xerrors.Wrap(xerrors.ErrInvalidInput, "passwords differ"), "failed")
	})
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, "passwords differ: invalid input", body.Message)
}

func TestError_HidesInternalDetail(t *testing.T) {
	code, body := run(t, func(c *gin.Context) {
		Error(c, http.StatusInternalServerError, "internal server error", errors.New("secret dsn"))
	})
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Empty(t, body.Error)
}
