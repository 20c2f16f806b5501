// internal/middleware/guard_middleware.go
package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"rbadmin/internal/pkg/session"
)

// Scope selects which paths the route guard protects.
type Scope string

const (
	// ScopeAdminOnly guards the admin prefix and checks the admin role.
	ScopeAdminOnly Scope = "admin-only"
	// ScopeWholeSite guards everything except login, assets and the favicon.
	ScopeWholeSite Scope = "whole-site"
)

// ParseScope accepts the GUARD_SCOPE values.
func ParseScope(s string) (Scope, error) {
	switch Scope(strings.ToLower(strings.TrimSpace(s))) {
	case ScopeAdminOnly, "":
		return ScopeAdminOnly, nil
	case ScopeWholeSite:
		return ScopeWholeSite, nil
	}
	return "", fmt.Errorf("unknown guard scope %q", s)
}

type GuardConfig struct {
	Scope         Scope
	AdminPrefix   string
	LoginPath     string
	ForbiddenPath string
	AssetPrefix   string
	FaviconPath   string
	// APIPrefix, when set, is left to AuthMiddleware under both scopes so
	// fetch callers get a 401/403 envelope instead of a login redirect.
	APIPrefix string
}

func (cfg GuardConfig) withDefaults() GuardConfig {
	if cfg.Scope == "" {
		cfg.Scope = ScopeAdminOnly
	}
	if cfg.AdminPrefix == "" {
		cfg.AdminPrefix = "/admin"
	}
	cfg.AdminPrefix = strings.TrimRight(cfg.AdminPrefix, "/")
	if cfg.LoginPath == "" {
		cfg.LoginPath = session.DefaultLoginPath
	}
	if cfg.ForbiddenPath == "" {
		cfg.ForbiddenPath = session.DefaultForbiddenPath
	}
	if cfg.AssetPrefix == "" {
		cfg.AssetPrefix = "/static"
	}
	if cfg.FaviconPath == "" {
		cfg.FaviconPath = "/favicon.ico"
	}
	cfg.APIPrefix = strings.TrimRight(cfg.APIPrefix, "/")
	return cfg
}

// RouteGuard runs before any page handler. It only ever answers with a 307
// redirect; cookies are read, never written.
func RouteGuard(cfg GuardConfig, logger *zap.Logger) gin.HandlerFunc {
	cfg = cfg.withDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		if cfg.isAPI(c.Request.URL.Path) {
			c.Next()
			return
		}

		var target string
		switch cfg.Scope {
		case ScopeWholeSite:
			target = cfg.wholeSite(c.Request)
		default:
			target = cfg.adminOnly(c.Request)
		}

		if target == "" {
			c.Next()
			return
		}

		logger.Debug("route guard redirect",
			zap.String("scope", string(cfg.Scope)),
			zap.String("path", c.Request.URL.Path),
			zap.String("to", target),
		)
		c.Redirect(http.StatusTemporaryRedirect, target)
		c.Abort()
	}
}

func (cfg GuardConfig) isAPI(path string) bool {
	return cfg.APIPrefix != "" && (path == cfg.APIPrefix || strings.HasPrefix(path, cfg.APIPrefix+"/"))
}

// adminOnly returns the redirect target for req, or "" to let it through.
func (cfg GuardConfig) adminOnly(req *http.Request) string {
	path := req.URL.Path
	if path != cfg.AdminPrefix && !strings.HasPrefix(path, cfg.AdminPrefix+"/") {
		return ""
	}
	if cookie(req, session.CookieToken) == "" {
		return cfg.LoginPath
	}
	if strings.ToLower(cookie(req, session.CookieRole)) != string(session.RoleAdmin) {
		return cfg.ForbiddenPath
	}
	return ""
}

func (cfg GuardConfig) wholeSite(req *http.Request) string {
	path := req.URL.Path
	if strings.HasPrefix(path, cfg.LoginPath) ||
		strings.HasPrefix(path, cfg.AssetPrefix) ||
		path == cfg.FaviconPath {
		return ""
	}
	if cookie(req, session.CookieToken) != "" {
		return ""
	}
	original := path
	if req.URL.RawQuery != "" {
		original += "?" + req.URL.RawQuery
	}
	return session.LoginURL(cfg.LoginPath, original)
}

func cookie(req *http.Request, name string) string {
	c, err := req.Cookie(name)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(c.Value)
}
