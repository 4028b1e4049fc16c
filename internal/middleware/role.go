package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/tablebook/backend/internal/auth"
	"github.com/tablebook/backend/pkg/response"
)

// RequireTenant lets through callers that act for a tenant or are admins. It runs
// after JWT.
func RequireTenant() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := c.Get(ContextScope); !ok {
			response.Unauthorized(c, "missing user context")
			c.Abort()
			return
		}
		scope := Scope(c)
		if !scope.IsAdmin && !scope.HasTenant() {
			response.Forbidden(c, "token carries no tenant")
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAdmin lets through admins only.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := c.Get(ContextUserRole)
		if !ok {
			response.Unauthorized(c, "missing user context")
			c.Abort()
			return
		}
		if r, _ := role.(string); r != auth.RoleAdmin {
			response.Forbidden(c, "insufficient permissions")
			c.Abort()
			return
		}
		c.Next()
	}
}
