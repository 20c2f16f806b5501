// internal/pkg/session/resolver.go
package session

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	DefaultLoginPath     = "/login"
	DefaultForbiddenPath = "/403"

	// unknownExpiryGrace is the lifetime given to sessions without rb.exp.
	unknownExpiryGrace = 300 * time.Second

	contextKey = "session"
)

type Config struct {
	LoginPath     string
	ForbiddenPath string
	Now           func() time.Time
}

// Resolver derives sessions from request cookies and enforces them.
type Resolver struct {
	loginPath     string
	forbiddenPath string
	now           func() time.Time
}

func NewResolver(cfg Config) *Resolver {
	r := &Resolver{
		loginPath:     cfg.LoginPath,
		forbiddenPath: cfg.ForbiddenPath,
		now:           cfg.Now,
	}
	if r.loginPath == "" {
		r.loginPath = DefaultLoginPath
	}
	if r.forbiddenPath == "" {
		r.forbiddenPath = DefaultForbiddenPath
	}
	if r.now == nil {
		r.now = time.Now
	}
	return r
}

func (r *Resolver) LoginPath() string     { return r.loginPath }
func (r *Resolver) ForbiddenPath() string { return r.forbiddenPath }

// GetSession returns the session carried by req's cookies. There is none
// without a token cookie or when rb.exp lies in the past.
func (r *Resolver) GetSession(req *http.Request) (*Session, bool) {
	token := cookieValue(req, CookieToken)
	if strings.TrimSpace(token) == "" {
		return nil, false
	}

	now := r.now().Unix()
	exp, _ := strconv.ParseInt(cookieValue(req, CookieExp), 10, 64)
	if exp != 0 && exp <= now {
		return nil, false
	}
	if exp == 0 {
		exp = now + int64(unknownExpiryGrace.Seconds())
	}

	role := Role(cookieValue(req, CookieRole))
	if role == "" {
		role = RoleClient
	}

	return &Session{
		Sub:   cookieValue(req, CookieSub),
		Email: cookieValue(req, CookieEmail),
		Role:  role,
		Name:  cookieValue(req, CookieName),
		Exp:   exp,
	}, true
}

// RequireAuth returns the session or, when there is none, redirects to the
// login page with the referring path as ?redirect= and aborts.
func (r *Resolver) RequireAuth(c *gin.Context) (*Session, bool) {
	s, ok := r.GetSession(c.Request)
	if ok {
		return s, true
	}
	c.Redirect(http.StatusTemporaryRedirect, LoginURL(r.loginPath, currentPath(c.Request)))
	c.Abort()
	return nil, false
}

// RequireRole is RequireAuth plus a redirect to the forbidden page when the
// session's role is not one of roles.
func (r *Resolver) RequireRole(c *gin.Context, roles ...Role) (*Session, bool) {
	s, ok := r.RequireAuth(c)
	if !ok {
		return nil, false
	}
	if !s.HasRole(roles...) {
		c.Redirect(http.StatusTemporaryRedirect, r.forbiddenPath)
		c.Abort()
		return nil, false
	}
	return s, true
}

// Logout expires every session cookie and redirects to the login page.
func (r *Resolver) Logout(c *gin.Context) {
	ClearCookies(c.Writer)
	c.Redirect(http.StatusSeeOther, r.loginPath)
	c.Abort()
}

// Authenticated is RequireAuth as middleware; the session is available to
// later handlers through FromContext.
func (r *Resolver) Authenticated() gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := r.RequireAuth(c)
		if !ok {
			return
		}
		c.Set(contextKey, s)
		c.Next()
	}
}

// WithRole is RequireRole as middleware.
func (r *Resolver) WithRole(roles ...Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := r.RequireRole(c, roles...)
		if !ok {
			return
		}
		c.Set(contextKey, s)
		c.Next()
	}
}

func FromContext(c *gin.Context) (*Session, bool) {
	v, ok := c.Get(contextKey)
	if !ok {
		return nil, false
	}
	s, ok := v.(*Session)
	return s, ok
}

// Establish writes the identity cookies (rb.exp, rb.email, rb.name, rb.sub)
// that accompany the token. Token and role cookies belong to the token store.
func Establish(w http.ResponseWriter, s *Session, secure, remember bool) {
	values := map[string]string{
		CookieSub:   s.Sub,
		CookieEmail: s.Email,
		CookieName:  s.Name,
	}
	if s.Exp > 0 {
		values[CookieExp] = strconv.FormatInt(s.Exp, 10)
	}

	for _, name := range []string{CookieExp, CookieEmail, CookieName, CookieSub} {
		v, ok := values[name]
		if !ok || v == "" {
			continue
		}
		ck := &http.Cookie{
			Name:     name,
			Value:    url.QueryEscape(v),
			Path:     "/",
			Secure:   secure,
			SameSite: http.SameSiteLaxMode,
		}
		if remember {
			ck.MaxAge = int((30 * 24 * time.Hour).Seconds())
		}
		http.SetCookie(w, ck)
	}
}

// ClearCookies sets every session cookie to "" with Max-Age=0.
func ClearCookies(w http.ResponseWriter) {
	for _, name := range Cookies {
		http.SetCookie(w, &http.Cookie{
			Name:   name,
			Value:  "",
			Path:   "/",
			MaxAge: -1,
		})
	}
}

// LoginURL builds "<loginPath>?redirect=<target>".
func LoginURL(loginPath, target string) string {
	if target == "" {
		return loginPath
	}
	return loginPath + "?" + url.Values{"redirect": {target}}.Encode()
}

// currentPath recovers the page being visited from the Referer header.
func currentPath(req *http.Request) string {
	ref := req.Header.Get("Referer")
	if ref == "" {
		return "/"
	}
	u, err := url.Parse(ref)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "/"
	}
	p := u.EscapedPath()
	if p == "" {
		p = "/"
	}
	if u.RawQuery != "" {
		p += "?" + u.RawQuery
	}
	return p
}

func cookieValue(req *http.Request, name string) string {
	ck, err := req.Cookie(name)
	if err != nil {
		return ""
	}
	v, err := url.QueryUnescape(ck.Value)
	if err != nil {
		return ck.Value
	}
	return v
}
