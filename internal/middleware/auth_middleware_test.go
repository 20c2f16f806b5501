package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"rbadmin/internal/pkg/apiclient"
	"rbadmin/internal/pkg/tokenstore"
)

func apiRouter(store *tokenstore.Store) *gin.Engine {
	m := NewAuthMiddleware(store, zap.NewNop())
	r := gin.New()
	r.Use(m.Bind())
	r.GET("/me", m.Auth(), func(c *gin.Context) {
		cred, _ := GetCredential(c)
		c.JSON(http.StatusOK, gin.H{"token": apiclient.TokenOf(cred), "admin": GetRole(c) == "admin"})
	})
	r.GET("/admin", append(m.AdminOnly(), func(c *gin.Context) { c.Status(http.StatusNoContent) })...)
	return r
}

func TestAuth_MissingToken(t *testing.T) {
	rec := navigate(apiRouter(tokenstore.New(nil, nil, zap.NewNop())), "/me", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
}

func TestAuth_CookieToken(t *testing.T) {
	rec := navigate(apiRouter(tokenstore.New(nil, nil, zap.NewNop())), "/me", map[string]string{"rb.token": "abc", "rb.role": "Admin"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"token":"abc","admin":true}`, rec.Body.String())
}

func TestAdminOnly(t *testing.T) {
	r := apiRouter(tokenstore.New(nil, nil, zap.NewNop()))

	assert.Equal(t, http.StatusForbidden, navigate(r, "/admin", map[string]string{"rb.token": "abc", "rb.role": "client"}).Code)
	assert.Equal(t, http.StatusNoContent, navigate(r, "/admin", map[string]string{"rb.token": "abc", "rb.role": "admin"}).Code)
	assert.Equal(t, http.StatusUnauthorized, navigate(r, "/admin", nil).Code)
}

func TestLoggingMiddleware_RequestID(t *testing.T) {
	r := gin.New()
	r.Use(LoggingMiddleware(zap.NewNop()))
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, GetRequestID(c)) })

	rec := navigate(r, "/", nil)
	assert.NotEmpty(t, rec.Body.String())
	assert.Equal(t, rec.Body.String(), rec.Header().Get(HeaderRequestID))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, "6f1f2c1e-8a43-4c1e-9b59-0d6f6a0e8f11")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, "6f1f2c1e-8a43-4c1e-9b59-0d6f6a0e8f11", rec.Body.String())
}

func TestRecoveryMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(RecoveryMiddleware(zap.NewNop()))
	r.GET("/", func(c *gin.Context) { panic("boom") })

	rec := navigate(r, "/", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "internal server error")
}

func TestCORSMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(CORSMiddleware([]string{"https://console.example.com/"}))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "https://console.example.com")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://console.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
