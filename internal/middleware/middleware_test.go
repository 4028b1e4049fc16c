package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tablebook/backend/internal/auth"
	"github.com/tablebook/backend/internal/tenancy"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(jwtService *auth.JWTService, extra ...gin.HandlerFunc) (*gin.Engine, *tenancy.Scope) {
	seen := &tenancy.Scope{}
	r := gin.New()
	handlers := append([]gin.HandlerFunc{JWT(jwtService)}, extra...)
	handlers = append(handlers, func(c *gin.Context) {
		*seen = Scope(c)
		c.Status(http.StatusOK)
	})
	r.GET("/probe", handlers...)
	return r, seen
}

func get(t *testing.T, r http.Handler, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTBuildsTenantScope(t *testing.T) {
	svc := auth.NewJWTService("secret", 1)
	r, seen := newRouter(svc)

	token, err := svc.Generate("user-1", "5", "staff")
	require.NoError(t, err)

	w := get(t, r, token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, tenancy.Scope{TenantID: "5"}, *seen)
}

func TestJWTAdminScope(t *testing.T) {
	svc := auth.NewJWTService("secret", 1)
	r, seen := newRouter(svc)

	token, err := svc.Generate("root", "", auth.RoleAdmin)
	require.NoError(t, err)

	w := get(t, r, token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, seen.IsAdmin)
	assert.False(t, seen.HasTenant())
}

func TestJWTRejectsMissingOrBadToken(t *testing.T) {
	svc := auth.NewJWTService("secret", 1)
	r, _ := newRouter(svc)

	assert.Equal(t, http.StatusUnauthorized, get(t, r, "").Code)
	assert.Equal(t, http.StatusUnauthorized, get(t, r, "garbage").Code)
}

func TestRequireTenant(t *testing.T) {
	svc := auth.NewJWTService("secret", 1)
	r, _ := newRouter(svc, RequireTenant())

	noTenant, err := svc.Generate("user-1", "", "staff")
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, get(t, r, noTenant).Code)

	tenant, err := svc.Generate("user-1", "5", "staff")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, get(t, r, tenant).Code)

	admin, err := svc.Generate("root", "", auth.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, get(t, r, admin).Code)
}

func TestRequireAdmin(t *testing.T) {
	svc := auth.NewJWTService("secret", 1)
	r, _ := newRouter(svc, RequireAdmin())

	staff, err := svc.Generate("user-1", "5", "staff")
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, get(t, r, staff).Code)

	admin, err := svc.Generate("root", "", auth.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, get(t, r, admin).Code)
}

func TestLoggerSetsRequestID(t *testing.T) {
	r := gin.New()
	r.Use(Logger(zap.NewNop()))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.NotEmpty(t, w.Header().Get(HeaderRequestID))

	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(HeaderRequestID, "abc")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc", w.Header().Get(HeaderRequestID))
}

func TestCORSPreflight(t *testing.T) {
	r := gin.New()
	r.Use(CORS("http://app.example"))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/ping", nil)
	req.Header.Set("Origin", "http://app.example")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://app.example", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "http://evil.example")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
