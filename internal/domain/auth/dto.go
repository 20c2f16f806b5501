// internal/domain/auth/dto.go
package auth

import "strings"

// LoginRequest is the console's login form, posted as a form or as JSON.
type LoginRequest struct {
	Email     string `json:"email" form:"email" binding:"required,email"`
	Password  string `json:"password" form:"password" binding:"required"`
	Remember  bool   `json:"remember" form:"remember"`
	Redirect  string `json:"redirect" form:"redirect"`
	IPAddress string `json:"-" form:"-"`
	UserAgent string `json:"-" form:"-"`
	RequestID string `json:"-" form:"-"`
}

// Normalize trims the email. The password is sent verbatim.
func (r *LoginRequest) Normalize() {
	r.Email = strings.TrimSpace(r.Email)
}

// Credentials is the body of the backend's auth/login.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResult is what a successful sign-in hands back to the handler.
type LoginResult struct {
	Token    string         `json:"-"`
	User     map[string]any `json:"user"`
	Redirect string         `json:"redirect"`
}
