// internal/pkg/jwt/claims.go
package jwt

import (
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is what the console reads out of a backend-issued access token.
// Backends disagree on where the role lives, so both shapes are accepted.
type Claims struct {
	Email string   `json:"email,omitempty"`
	Name  string   `json:"name,omitempty"`
	Role  string   `json:"role,omitempty"`
	Roles []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

// PrimaryRole returns the single role, or the first of the list.
func (c *Claims) PrimaryRole() string {
	if c.Role != "" {
		return strings.ToLower(c.Role)
	}
	if len(c.Roles) > 0 {
		return strings.ToLower(c.Roles[0])
	}
	return ""
}

// ExpiresUnix returns exp in epoch seconds, or 0 when the token has none.
func (c *Claims) ExpiresUnix() int64 {
	if c.ExpiresAt == nil {
		return 0
	}
	return c.ExpiresAt.Unix()
}

// SubjectOr returns sub, or fallback when sub is empty.
func (c *Claims) SubjectOr(fallback any) string {
	if c.Subject != "" {
		return c.Subject
	}
	if fallback == nil {
		return ""
	}
	switch v := fallback.(type) {
	case string:
		return v
	case float64:
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprint(fallback)
}
