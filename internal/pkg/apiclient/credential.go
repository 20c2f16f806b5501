package apiclient

import (
	"regexp"
	"strings"
)

// Credential authenticates a backend request. It is either a Token or a
// TenantScoped token; nothing else implements it.
type Credential interface {
	credential()
}

// Token is a bare bearer token, with or without the "Bearer" prefix.
type Token string

// TenantScoped is a bearer token bound to a tenant. The tenant id travels in
// the tenant header.
type TenantScoped struct {
	Token    string
	TenantID string
}

func (Token) credential()        {}
func (TenantScoped) credential() {}

var bearerPrefix = regexp.MustCompile(`(?i)^bearer\s+`)

// TokenOf returns the raw token carried by cred, or "" for a nil credential.
func TokenOf(cred Credential) string {
	switch c := cred.(type) {
	case Token:
		return string(c)
	case TenantScoped:
		return c.Token
	case *TenantScoped:
		if c != nil {
			return c.Token
		}
	}
	return ""
}

func tenantOf(cred Credential) string {
	switch c := cred.(type) {
	case TenantScoped:
		return strings.TrimSpace(c.TenantID)
	case *TenantScoped:
		if c != nil {
			return strings.TrimSpace(c.TenantID)
		}
	}
	return ""
}

// withToken keeps the shape of cred (and its tenant) while swapping the token.
func withToken(cred Credential, token string) Credential {
	switch c := cred.(type) {
	case TenantScoped:
		c.Token = token
		return c
	case *TenantScoped:
		if c != nil {
			return TenantScoped{Token: token, TenantID: c.TenantID}
		}
	}
	return Token(token)
}

// BearerHeader renders an Authorization header value. Surrounding quotes and
// whitespace are dropped and the "Bearer " prefix is added only when it is
// not already there (in any case). An empty token yields "".
func BearerHeader(raw string) string {
	t := strings.TrimSpace(raw)
	t = strings.TrimPrefix(t, `"`)
	t = strings.TrimPrefix(t, `'`)
	t = strings.TrimSuffix(t, `"`)
	t = strings.TrimSuffix(t, `'`)
	t = strings.TrimSpace(t)
	if t == "" {
		return ""
	}
	if bearerPrefix.MatchString(t) {
		return t
	}
	return "Bearer " + t
}
