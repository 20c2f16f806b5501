package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() { gin.SetMode(gin.TestMode) }

func guarded(scope Scope) *gin.Engine {
	r := gin.New()
	r.Use(RouteGuard(GuardConfig{Scope: scope}, zap.NewNop()))
	r.NoRoute(func(c *gin.Context) { c.String(http.StatusOK, "page") })
	return r
}

func navigate(r http.Handler, target string, cookies map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for k, v := range cookies {
		req.AddCookie(&http.Cookie{Name: k, Value: v})
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestRouteGuard_AdminOnly(t *testing.T) {
	r := guarded(ScopeAdminOnly)

	tests := []struct {
		name     string
		path     string
		cookies  map[string]string
		code     int
		location string
	}{
		{"no token", "/admin/dashboard", nil, http.StatusTemporaryRedirect, "/login"},
		{"blank token", "/admin/users", map[string]string{"rb.token": " "}, http.StatusTemporaryRedirect, "/login"},
		{"prefix itself", "/admin", nil, http.StatusTemporaryRedirect, "/login"},
		{"wrong role", "/admin/users", map[string]string{"rb.token": "t", "rb.role": "teacher"}, http.StatusTemporaryRedirect, "/403"},
		{"missing role", "/admin/users", map[string]string{"rb.token": "t"}, http.StatusTemporaryRedirect, "/403"},
		{"admin any case", "/admin/users", map[string]string{"rb.token": "t", "rb.role": "ADMIN"}, http.StatusOK, ""},
		{"outside prefix", "/courses", nil, http.StatusOK, ""},
		{"lookalike prefix", "/administrator", nil, http.StatusOK, ""},
		{"login page", "/login", nil, http.StatusOK, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := navigate(r, tt.path, tt.cookies)
			assert.Equal(t, tt.code, rec.Code)
			assert.Equal(t, tt.location, rec.Header().Get("Location"))
			assert.Empty(t, rec.Header().Values("Set-Cookie"))
		})
	}
}

func TestRouteGuard_WholeSite(t *testing.T) {
	r := guarded(ScopeWholeSite)

	tests := []struct {
		name     string
		target   string
		cookies  map[string]string
		code     int
		location string
	}{
		{"preserves path and query", "/courses/7?tab=students", nil, http.StatusTemporaryRedirect, "/login?redirect=%2Fcourses%2F7%3Ftab%3Dstudents"},
		{"root", "/", nil, http.StatusTemporaryRedirect, "/login?redirect=%2F"},
		{"login passes", "/login", nil, http.StatusOK, ""},
		{"login subpath passes", "/login/reset", nil, http.StatusOK, ""},
		{"assets pass", "/static/app.css", nil, http.StatusOK, ""},
		{"favicon passes", "/favicon.ico", nil, http.StatusOK, ""},
		{"token is enough", "/admin/users", map[string]string{"rb.token": "t", "rb.role": "client"}, http.StatusOK, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := navigate(r, tt.target, tt.cookies)
			assert.Equal(t, tt.code, rec.Code)
			assert.Equal(t, tt.location, rec.Header().Get("Location"))
		})
	}
}

func TestRouteGuard_CustomPaths(t *testing.T) {
	r := gin.New()
	r.Use(RouteGuard(GuardConfig{
		Scope:         ScopeAdminOnly,
		AdminPrefix:   "/console/",
		LoginPath:     "/signin",
		ForbiddenPath: "/denied",
	}, nil))
	r.NoRoute(func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, "/signin", navigate(r, "/console/x", nil).Header().Get("Location"))
	assert.Equal(t, "/denied", navigate(r, "/console", map[string]string{"rb.token": "t"}).Header().Get("Location"))
}

func TestRouteGuard_APIPrefixPassesThrough(t *testing.T) {
	for _, scope := range []Scope{ScopeAdminOnly, ScopeWholeSite} {
		t.Run(string(scope), func(t *testing.T) {
			r := gin.New()
			r.Use(RouteGuard(GuardConfig{Scope: scope, APIPrefix: "/admin/api/"}, zap.NewNop()))
			r.NoRoute(func(c *gin.Context) { c.String(http.StatusOK, "handler") })

			rec := navigate(r, "/admin/api/users", nil)
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "handler", rec.Body.String())

			rec = navigate(r, "/admin/apiary", nil)
			assert.Equal(t, http.StatusTemporaryRedirect, rec.Code)
		})
	}
}

func TestParseScope(t *testing.T) {
	s, err := ParseScope("")
	require.NoError(t, err)
	assert.Equal(t, ScopeAdminOnly, s)

	s, err = ParseScope(" Whole-Site ")
	require.NoError(t, err)
	assert.Equal(t, ScopeWholeSite, s)

	_, err = ParseScope("everything")
	assert.Error(t, err)
}
