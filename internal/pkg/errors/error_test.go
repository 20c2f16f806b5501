package xerrors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusOK, HTTPStatus(nil))
	assert.Equal(t, http.StatusUnprocessableEntity, HTTPStatus(Wrap(ErrInvalidInput, "course price")))
	assert.Equal(t, http.StatusTooManyRequests, HTTPStatus(fmt.Errorf("login: %w", ErrRateLimited)))
	assert.Equal(t, http.StatusBadGateway, HTTPStatus(ErrUpstream))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(fmt.Errorf("boom")))
}

func TestWrapNil(t *testing.T) {
	assert.Nil(t, Wrap(nil, "ctx"))
	assert.Equal(t, "fallback", MessageOrDefault(nil, "fallback"))
}
