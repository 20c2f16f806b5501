// internal/pkg/session/types.go
package session

import "time"

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleTeacher Role = "teacher"
	RoleClient  Role = "client"
)

// Cookie names read by the resolver. All are path "/" and SameSite=Lax.
const (
	CookieToken = "rb.token"
	CookieExp   = "rb.exp"
	CookieRole  = "rb.role"
	CookieEmail = "rb.email"
	CookieName  = "rb.name"
	CookieSub   = "rb.sub"
)

// Cookies lists every cookie that makes up a session.
var Cookies = []string{CookieToken, CookieExp, CookieRole, CookieEmail, CookieName, CookieSub}

// Session is the identity derived from the request's cookies. It lives for
// one request and is never stored server-side.
type Session struct {
	Sub   string `json:"sub"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
	Exp   int64  `json:"exp"` // epoch seconds
	Name  string `json:"name,omitempty"`
}

func (s *Session) ExpiresAt() time.Time {
	return time.Unix(s.Exp, 0)
}

// HasRole reports whether the session's role is one of roles.
func (s *Session) HasRole(roles ...Role) bool {
	for _, r := range roles {
		if s.Role == r {
			return true
		}
	}
	return false
}
