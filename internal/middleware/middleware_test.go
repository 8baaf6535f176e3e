package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-portal-gateway/internal/models"
	"github.com/noah-isme/school-portal-gateway/internal/session"
	"github.com/noah-isme/school-portal-gateway/pkg/config"
	"github.com/noah-isme/school-portal-gateway/pkg/response"
)

func sessionCookie(t *testing.T, userID string, role models.UserRole) *http.Cookie {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, models.SessionClaims{UserID: userID, Role: role}).SignedString([]byte("secret"))
	require.NoError(t, err)
	return &http.Cookie{Name: "token", Value: token}
}

func guardedRouter(roles ...models.UserRole) *gin.Engine {
	gin.SetMode(gin.TestMode)
	manager := session.NewManager(config.SessionConfig{CookieName: "token", JWTSecret: "secret"})
	router := gin.New()
	group := router.Group("/", Session(manager, response.Message))
	handlers := []gin.HandlerFunc{}
	if len(roles) > 0 {
		handlers = append(handlers, RequireRoles(response.Message, roles...))
	}
	handlers = append(handlers, func(c *gin.Context) {
		s := CurrentSession(c)
		if session.FromContext(c.Request.Context()) != s {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.String(http.StatusOK, s.UserID())
	})
	group.GET("/gradebook/:student", handlers...)
	return router
}

func TestSessionGuardRejectsMissingCookie(t *testing.T) {
	router := guardedRouter()
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/gradebook/u1", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"message":"unauthorized"}`, rec.Body.String())
}

func TestSessionGuardAttachesSession(t *testing.T) {
	router := guardedRouter()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/gradebook/u1", nil)
	req.AddCookie(sessionCookie(t, "u1", models.RoleStudent))

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u1", rec.Body.String())
}

func TestRequireRoles(t *testing.T) {
	tests := []struct {
		name   string
		role   models.UserRole
		status int
	}{
		{name: "teacher allowed", role: models.RoleTeacher, status: http.StatusOK},
		{name: "admin allowed", role: models.RoleAdmin, status: http.StatusOK},
		{name: "parent forbidden", role: models.RoleParent, status: http.StatusForbidden},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			router := guardedRouter(models.RoleTeacher, models.RoleAdmin)
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/gradebook/u1", nil)
			req.AddCookie(sessionCookie(t, "someone", tc.role))

			router.ServeHTTP(rec, req)

			assert.Equal(t, tc.status, rec.Code)
		})
	}
}

func TestRBACAllowsSelf(t *testing.T) {
	gin.SetMode(gin.TestMode)
	manager := session.NewManager(config.SessionConfig{JWTSecret: "secret"})
	router := gin.New()
	router.GET("/students/:student", Session(manager, response.Error), RBAC(response.Error, string(models.RoleAdmin), "SELF"), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/students/u7", nil)
	req.AddCookie(sessionCookie(t, "u7", models.RoleStudent))
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/students/u8", nil)
	req.AddCookie(sessionCookie(t, "u7", models.RoleStudent))
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

type observerStub struct {
	mu    sync.Mutex
	paths []string
}

func (o *observerStub) ObserveHTTPRequest(_ string, path string, _ int, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.paths = append(o.paths, path)
}

func TestMetricsUsesRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	obs := &observerStub{}
	router := gin.New()
	router.Use(Metrics(obs))
	router.GET("/v1/gradebook/:school/:class", func(c *gin.Context) { c.Status(http.StatusOK) })

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/gradebook/s1/c1", nil))
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nope/123", nil))

	assert.Equal(t, []string{"/v1/gradebook/:school/:class", "unmatched"}, obs.paths)
}

func TestResponseMeta(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	var meta map[string]interface{}
	router.Use(WithResponseMeta())
	router.GET("/", func(c *gin.Context) {
		SetCacheHit(c, true)
		meta = ExtractMeta(c)
		c.Status(http.StatusOK)
	})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, true, meta["cache_hit"])
	assert.Contains(t, meta, "processing_time_ms")
	assert.NotContains(t, meta, "started_at")
}
