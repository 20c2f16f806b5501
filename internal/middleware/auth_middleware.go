// internal/middleware/auth_middleware.go
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"rbadmin/internal/pkg/apiclient"
	"rbadmin/internal/pkg/response"
	"rbadmin/internal/pkg/tokenstore"
)

const (
	ctxHandle     = "token_handle"
	ctxCredential = "credential"
	ctxRole       = "role"
)

// AuthMiddleware protects the console's JSON API. Unlike the route guard it
// answers with the JSON envelope, since fetch callers cannot follow a login
// redirect usefully.
type AuthMiddleware struct {
	store  *tokenstore.Store
	logger *zap.Logger
}

func NewAuthMiddleware(store *tokenstore.Store, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{store: store, logger: logger}
}

// Bind attaches a token store handle to every request, authenticated or not.
func (m *AuthMiddleware) Bind() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ctxHandle, m.store.Bind(c))
		c.Next()
	}
}

// Auth requires a stored token and exposes it as a credential.
func (m *AuthMiddleware) Auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := handle(c, m.store)

		cred, ok := h.Credential()
		if !ok {
			response.Unauthorized(c, "missing authorization token")
			return
		}
		st, _ := h.Read()

		c.Set(ctxCredential, cred)
		c.Set(ctxRole, strings.ToLower(st.Role))
		c.Next()
	}
}

// RequireRole must run after Auth.
func (m *AuthMiddleware) RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := GetRole(c)
		for _, r := range roles {
			if strings.EqualFold(role, r) {
				c.Next()
				return
			}
		}

		m.logger.Info("role rejected",
			zap.String("path", c.Request.URL.Path),
			zap.String("role", role),
			zap.Strings("required", roles),
		)
		response.Error(c, http.StatusForbidden, "insufficient permissions", nil, map[string]interface{}{
			"required_roles": roles,
			"user_role":      role,
		})
	}
}

// AdminOnly returns Auth + RequireRole("admin").
func (m *AuthMiddleware) AdminOnly() []gin.HandlerFunc {
	return []gin.HandlerFunc{
		m.Auth(),
		m.RequireRole("admin"),
	}
}

func handle(c *gin.Context, store *tokenstore.Store) *tokenstore.Handle {
	if h, ok := GetHandle(c); ok {
		return h
	}
	h := store.Bind(c)
	c.Set(ctxHandle, h)
	return h
}

// GetHandle returns the request's token store handle.
func GetHandle(c *gin.Context) (*tokenstore.Handle, bool) {
	v, exists := c.Get(ctxHandle)
	if !exists {
		return nil, false
	}
	h, ok := v.(*tokenstore.Handle)
	return h, ok
}

// GetCredential returns the credential Auth resolved.
func GetCredential(c *gin.Context) (apiclient.Credential, bool) {
	v, exists := c.Get(ctxCredential)
	if !exists {
		return nil, false
	}
	cred, ok := v.(apiclient.Credential)
	return cred, ok
}

func GetRole(c *gin.Context) string {
	return c.GetString(ctxRole)
}
