package apiclient

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	xerrors "rbadmin/internal/pkg/errors"
)

var (
	ErrUnsupportedMethod = errors.New("unsupported http method")
	ErrInvalidPayload    = errors.New("payload cannot be encoded as query parameters")
	ErrRefreshFailed     = errors.New("token refresh failed")
)

// FieldErrors maps a backend field name to its validation messages. The
// backend sends either a single string or a list per field; both decode here.
type FieldErrors map[string][]string

func (f *FieldErrors) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || b[0] != '{' {
		*f = nil
		return nil
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		*f = nil
		return nil
	}

	out := make(FieldErrors, len(raw))
	for field, msg := range raw {
		var list []string
		if err := json.Unmarshal(msg, &list); err == nil {
			out[field] = list
			continue
		}
		var one string
		if err := json.Unmarshal(msg, &one); err == nil {
			out[field] = []string{one}
			continue
		}
		out[field] = []string{string(msg)}
	}
	*f = out
	return nil
}

// First returns the first message reported for field.
func (f FieldErrors) First(field string) string {
	if msgs := f[field]; len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}

// Error is a non-2xx reply, or a 2xx reply whose envelope says success:false.
type Error struct {
	Message string
	Status  int
	Errors  FieldErrors
	Raw     json.RawMessage
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("HTTP %d", e.Status)
}

// Is lets callers match upstream failures against the xerrors sentinels.
func (e *Error) Is(target error) bool {
	switch target {
	case xerrors.ErrUnauthorized:
		return e.Status == http.StatusUnauthorized
	case xerrors.ErrForbidden:
		return e.Status == http.StatusForbidden
	case xerrors.ErrNotFound:
		return e.Status == http.StatusNotFound
	case xerrors.ErrConflict:
		return e.Status == http.StatusConflict
	case xerrors.ErrInvalidInput:
		return e.Status == http.StatusUnprocessableEntity
	case xerrors.ErrRateLimited:
		return e.Status == http.StatusTooManyRequests
	case xerrors.ErrBadRequest:
		return e.Status == http.StatusBadRequest
	}
	return false
}

// StatusOf returns the upstream HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// FieldErrorsOf returns the per-field errors carried by err, if any.
func FieldErrorsOf(err error) FieldErrors {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Errors
	}
	return nil
}
