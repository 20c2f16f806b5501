// internal/domain/auth/entity.go
package auth

import "time"

type EventType string

const (
	EventSignIn       EventType = "sign_in"
	EventSignInFailed EventType = "sign_in_failed"
	EventRateLimited  EventType = "rate_limited"
	EventSignOut      EventType = "sign_out"
)

// AuditEvent is one row of the console's sign-in trail.
type AuditEvent struct {
	ID        int64     `json:"id"`
	Event     EventType `json:"event"`
	Email     string    `json:"email"`
	Subject   string    `json:"subject,omitempty"`
	Role      string    `json:"role,omitempty"`
	IPAddress string    `json:"ip_address,omitempty"`
	UserAgent string    `json:"user_agent,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
