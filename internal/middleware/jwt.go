package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tablebook/backend/internal/auth"
	"github.com/tablebook/backend/internal/tenancy"
	"github.com/tablebook/backend/pkg/response"
)

const (
	// ContextUserID is the key for user ID in gin context.
	ContextUserID = "user_id"
	// ContextUserRole is the key for user role in gin context.
	ContextUserRole = "user_role"
	// ContextScope is the key for the caller's tenancy.Scope in gin context.
	ContextScope = "tenant_scope"
)

// TokenValidator validates bearer tokens. *auth.JWTService satisfies it.
type TokenValidator interface {
	Validate(token string) (*auth.Claims, error)
}

// JWT validates the bearer token and stores the caller's identity and scope in context.
// The scope is built once here and never changed by later handlers.
func JWT(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Unauthorized(c, "missing authorization header")
			c.Abort()
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			response.Unauthorized(c, "invalid authorization header")
			c.Abort()
			return
		}
		claims, err := validator.Validate(parts[1])
		if err != nil {
			response.Unauthorized(c, "invalid or expired token")
			c.Abort()
			return
		}
		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextUserRole, claims.Role)
		c.Set(ContextScope, ScopeFor(claims))
		c.Next()
	}
}

// ScopeFor derives the tenant scope of a caller.
func ScopeFor(claims *auth.Claims) tenancy.Scope {
	return tenancy.Scope{TenantID: claims.TenantID, IsAdmin: claims.IsAdmin()}
}

// Scope returns the scope set by JWT. A request that skipped JWT gets the empty scope,
// which row-level security treats as seeing nothing.
func Scope(c *gin.Context) tenancy.Scope {
	if v, ok := c.Get(ContextScope); ok {
		if s, ok := v.(tenancy.Scope); ok {
			return s
		}
	}
	return tenancy.Scope{}
}

// UserID returns the authenticated user ID, or nil when absent.
func UserID(c *gin.Context) *string {
	id := c.GetString(ContextUserID)
	if id == "" {
		return nil
	}
	return &id
}
