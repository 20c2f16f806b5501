// Package tokenstore keeps the console's bearer token and role the way the
// browser did: in the rb.token / rb.role cookies, mirrored into a persistent
// tier (Redis) or a session tier (process memory) depending on "remember me".
//
// Store.Bind returns a Handle scoped to one request. Handlers pass the Handle
// (or the Credential it yields) explicitly; nothing reads ambient state.
package tokenstore

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"rbadmin/internal/pkg/apiclient"
)

const (
	CookieToken    = "rb.token"
	CookieRole     = "rb.role"
	CookieClientID = "rb.cid"

	KeyToken = "token"
	KeyUser  = "user"

	RememberFor       = 30 * 24 * time.Hour
	DefaultSessionTTL = 24 * time.Hour
)

// Stored is what Read finds.
type Stored struct {
	Token string
	Role  string
}

type Store struct {
	persistent Storage
	session    Storage
	sessionTTL time.Duration
	logger     *zap.Logger
}

type Option func(*Store)

// WithSessionTTL bounds how long session-tier entries live.
func WithSessionTTL(ttl time.Duration) Option {
	return func(s *Store) { s.sessionTTL = ttl }
}

func New(persistent, session Storage, logger *zap.Logger, opts ...Option) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	if session == nil {
		session = NewMemoryStorage()
	}
	if persistent == nil {
		persistent = session
	}
	s := &Store{
		persistent: persistent,
		session:    session,
		sessionTTL: DefaultSessionTTL,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Bind scopes the store to the request behind c.
func (s *Store) Bind(c *gin.Context) *Handle {
	return &Handle{store: s, c: c}
}

// Handle is the per-request view of the token store. It implements
// apiclient.TokenKeeper so refreshes land back in the same tiers.
type Handle struct {
	store    *Store
	c        *gin.Context
	clientID string
	written  *Stored
	cleared  bool
}

var _ apiclient.TokenKeeper = (*Handle)(nil)

// Read returns the token and role, looking at the cookie, then the
// persistent tier, then the session tier. Blank tokens count as absent.
func (h *Handle) Read() (Stored, bool) {
	if h.written != nil {
		return *h.written, true
	}

	var out Stored
	if !h.cleared {
		if v, err := h.c.Cookie(CookieToken); err == nil {
			out.Token = strings.TrimSpace(v)
		}
		if v, err := h.c.Cookie(CookieRole); err == nil {
			out.Role = strings.TrimSpace(v)
		}
	}

	if out.Token == "" {
		out.Token = h.lookup(KeyToken)
	}
	if out.Token == "" {
		return Stored{}, false
	}

	if out.Role == "" {
		var u storedUser
		if h.User(&u) {
			out.Role = u.Role
		}
	}
	return out, true
}

type storedUser struct {
	Role     string          `json:"role"`
	TenantID json.RawMessage `json:"tenant_id"`
}

// Credential turns the stored token into an apiclient credential, scoped to
// the stored user's tenant when there is one.
func (h *Handle) Credential() (apiclient.Credential, bool) {
	st, ok := h.Read()
	if !ok {
		return nil, false
	}

	var u storedUser
	if h.User(&u) {
		if tenant := tenantString(u.TenantID); tenant != "" {
			return apiclient.TenantScoped{Token: st.Token, TenantID: tenant}, true
		}
	}
	return apiclient.Token(st.Token), true
}

func tenantString(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

// Write stores the token (and role, when given) in the cookies and mirrors
// it into the tier chosen by remember. The other tier is emptied.
func (h *Handle) Write(token, role string, remember bool) {
	token = strings.TrimSpace(token)
	if token == "" {
		return
	}

	h.setCookie(CookieToken, token, remember)
	if role != "" {
		h.setCookie(CookieRole, role, remember)
	}

	target, other, ttl := h.tiers(remember)
	h.set(target, KeyToken, token, ttl)
	h.del(other, KeyToken, KeyUser)

	h.written = &Stored{Token: token, Role: role}
	h.cleared = false
}

// WriteUser stores the profile JSON next to the token.
func (h *Handle) WriteUser(user any, remember bool) {
	b, err := json.Marshal(user)
	if err != nil {
		h.store.logger.Warn("failed to encode user for storage", zap.Error(err))
		return
	}
	target, _, ttl := h.tiers(remember)
	h.set(target, KeyUser, string(b), ttl)
}

// User decodes the stored profile into out.
func (h *Handle) User(out any) bool {
	raw := h.lookup(KeyUser)
	if raw == "" {
		return false
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		h.store.logger.Debug("stored user is not valid json", zap.Error(err))
		return false
	}
	return true
}

// Save replaces the token after a refresh, keeping whatever persistence the
// current token had.
func (h *Handle) Save(token string) {
	token = strings.TrimSpace(token)
	if token == "" {
		return
	}

	remember := h.has(h.store.persistent, KeyToken) && h.store.persistent != h.store.session
	h.setCookie(CookieToken, token, remember)

	target, _, ttl := h.tiers(remember)
	h.set(target, KeyToken, token, ttl)

	role := ""
	if st, ok := h.Read(); ok {
		role = st.Role
	}
	h.written = &Stored{Token: token, Role: role}
	h.cleared = false
}

// Clear removes the token and role cookies and both storage tiers' entries.
func (h *Handle) Clear() {
	h.expireCookie(CookieToken)
	h.expireCookie(CookieRole)
	h.del(h.store.persistent, KeyToken, KeyUser)
	h.del(h.store.session, KeyToken, KeyUser)
	h.written = nil
	h.cleared = true
}

func (h *Handle) tiers(remember bool) (target, other Storage, ttl time.Duration) {
	if remember {
		return h.store.persistent, h.store.session, RememberFor
	}
	return h.store.session, h.store.persistent, h.store.sessionTTL
}

func (h *Handle) ctx() context.Context {
	if h.c.Request != nil {
		return h.c.Request.Context()
	}
	return context.Background()
}

// id returns the browser's client id, issuing one when create is set.
func (h *Handle) id(create bool) string {
	if h.clientID != "" {
		return h.clientID
	}
	if v, err := h.c.Cookie(CookieClientID); err == nil && strings.TrimSpace(v) != "" {
		h.clientID = strings.TrimSpace(v)
		return h.clientID
	}
	if !create {
		return ""
	}

	h.clientID = ulid.Make().String()
	http.SetCookie(h.c.Writer, &http.Cookie{
		Name:     CookieClientID,
		Value:    h.clientID,
		Path:     "/",
		MaxAge:   int(RememberFor.Seconds()),
		HttpOnly: true,
		Secure:   IsSecure(h.c.Request),
		SameSite: http.SameSiteLaxMode,
	})
	return h.clientID
}

// key wraps the client id in a hash tag so every key of one browser maps to
// the same Redis Cluster slot.
func (h *Handle) key(id, name string) string {
	return "rb:{" + id + "}:" + name
}

func (h *Handle) lookup(name string) string {
	id := h.id(false)
	if id == "" {
		return ""
	}
	for _, tier := range []Storage{h.store.persistent, h.store.session} {
		v, ok, err := tier.Get(h.ctx(), h.key(id, name))
		if err != nil {
			h.store.logger.Warn("token storage read failed", zap.String("key", name), zap.Error(err))
			continue
		}
		if ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func (h *Handle) has(tier Storage, name string) bool {
	id := h.id(false)
	if id == "" {
		return false
	}
	v, ok, err := tier.Get(h.ctx(), h.key(id, name))
	return err == nil && ok && strings.TrimSpace(v) != ""
}

func (h *Handle) set(tier Storage, name, value string, ttl time.Duration) {
	id := h.id(true)
	if err := tier.Set(h.ctx(), h.key(id, name), value, ttl); err != nil {
		h.store.logger.Warn("token storage write failed", zap.String("key", name), zap.Error(err))
	}
}

func (h *Handle) del(tier Storage, names ...string) {
	id := h.id(false)
	if id == "" {
		return
	}
	keys := make([]string, len(names))
	for i, n := range names {
		keys[i] = h.key(id, n)
	}
	if err := tier.Delete(h.ctx(), keys...); err != nil {
		h.store.logger.Warn("token storage delete failed", zap.Error(err))
	}
}

func (h *Handle) setCookie(name, value string, remember bool) {
	cookie := &http.Cookie{
		Name:     name,
		Value:    url.QueryEscape(value),
		Path:     "/",
		HttpOnly: name == CookieToken,
		Secure:   IsSecure(h.c.Request),
		SameSite: http.SameSiteLaxMode,
	}
	if remember {
		cookie.MaxAge = int(RememberFor.Seconds())
	}
	http.SetCookie(h.c.Writer, cookie)
}

func (h *Handle) expireCookie(name string) {
	http.SetCookie(h.c.Writer, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Secure:   IsSecure(h.c.Request),
		SameSite: http.SameSiteLaxMode,
	})
}

// IsSecure reports whether r arrived over TLS, directly or via a proxy.
func IsSecure(r *http.Request) bool {
	if r == nil {
		return false
	}
	if r.TLS != nil {
		return true
	}
	return strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}
