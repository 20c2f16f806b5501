// internal/middleware/helpers.go
package middleware

import (
	"github.com/gin-gonic/gin"

	"rbadmin/internal/pkg/tokenstore"
)

// MustGetHandle gets the token store handle from context or panics
func MustGetHandle(c *gin.Context) *tokenstore.Handle {
	h, ok := GetHandle(c)
	if !ok {
		panic("token handle not found in context")
	}
	return h
}
