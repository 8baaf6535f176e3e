package handler

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-portal-gateway/internal/backend"
	"github.com/noah-isme/school-portal-gateway/internal/models"
	"github.com/noah-isme/school-portal-gateway/internal/service"
	"github.com/noah-isme/school-portal-gateway/internal/session"
	"github.com/noah-isme/school-portal-gateway/pkg/config"
)

const routesSecret = "routes-secret"

func TestRoutesIntegration(t *testing.T) {
	fwd := &forwarderMock{resp: &backend.Response{Status: http.StatusOK, ContentType: "application/json", Body: []byte(`{"data":{"data":[]}}`)}}
	router := buildRouter(fwd)

	t.Run("pass-through without cookie", func(t *testing.T) {
		resp := performRequest(router, newRequest(t, http.MethodGet, "/api/student/scores/score-list/s1/c1", "", nil))
		require.Equal(t, http.StatusUnauthorized, resp.Code)
		assert.JSONEq(t, `{"message":"unauthorized"}`, resp.Body.String())
	})

	t.Run("computed without cookie", func(t *testing.T) {
		resp := performRequest(router, newRequest(t, http.MethodGet, "/api/v1/session", "", nil))
		require.Equal(t, http.StatusUnauthorized, resp.Code)
		assert.Contains(t, resp.Body.String(), `"code":"UNAUTHORIZED"`)
	})

	t.Run("tampered cookie", func(t *testing.T) {
		token := signToken(t, "u1", models.RoleTeacher) + "x"
		resp := performRequest(router, newRequest(t, http.MethodGet, "/api/v1/session", token, nil))
		require.Equal(t, http.StatusUnauthorized, resp.Code)
	})

	t.Run("pass-through read", func(t *testing.T) {
		resp := performRequest(router, newRequest(t, http.MethodGet, "/api/student/scores/score-list/s1/c1", signToken(t, "st-1", models.RoleStudent), nil))
		require.Equal(t, http.StatusOK, resp.Code)
		assert.Equal(t, "/student/scores/score-list/s1/c1", fwd.path)
	})

	t.Run("student cannot assign scores", func(t *testing.T) {
		fwd.calls = 0
		resp := performRequest(router, newRequest(t, http.MethodPost, "/api/student/scores/assign/s1/c1", signToken(t, "st-1", models.RoleStudent), []byte(`{}`)))
		require.Equal(t, http.StatusForbidden, resp.Code)
		assert.JSONEq(t, `{"message":"forbidden"}`, resp.Body.String())
		assert.Zero(t, fwd.calls)
	})

	t.Run("teacher assigns subject scores", func(t *testing.T) {
		resp := performRequest(router, newRequest(t, http.MethodPost, "/api/student/scores/assign/s1/c1/math", signToken(t, "t-1", models.RoleTeacher), []byte(`{"scores":[]}`)))
		require.Equal(t, http.StatusOK, resp.Code)
		assert.Equal(t, "/student/scores/assign/s1/c1/math", fwd.path)
	})

	t.Run("teacher cannot submit attendance", func(t *testing.T) {
		resp := performRequest(router, newRequest(t, http.MethodPost, "/api/v1/attendance/manual/s1/2024/t1/c1", signToken(t, "t-1", models.RoleTeacher), []byte(`{"records":{"u1":3}}`)))
		require.Equal(t, http.StatusForbidden, resp.Code)
		assert.Contains(t, resp.Body.String(), `"code":"FORBIDDEN"`)
	})

	t.Run("class teacher submits attendance", func(t *testing.T) {
		resp := performRequest(router, newRequest(t, http.MethodPost, "/api/v1/attendance/manual/s1/2024/t1/c1", signToken(t, "ct-1", models.RoleClassTeacher), []byte(`{"records":{"u1":3}}`)))
		require.Equal(t, http.StatusOK, resp.Code)
	})

	t.Run("session info", func(t *testing.T) {
		resp := performRequest(router, newRequest(t, http.MethodGet, "/api/v1/session", signToken(t, "p-1", "parent"), nil))
		require.Equal(t, http.StatusOK, resp.Code)
		assert.Contains(t, resp.Body.String(), `"role":"PARENT"`)
	})

	t.Run("logout without session", func(t *testing.T) {
		resp := performRequest(router, newRequest(t, http.MethodPost, "/api/v1/session/logout", "", nil))
		require.Equal(t, http.StatusNoContent, resp.Code)
		assert.Contains(t, resp.Header().Get("Set-Cookie"), "token=;")
	})

	t.Run("generic proxy outside allowlist", func(t *testing.T) {
		resp := performRequest(router, newRequest(t, http.MethodGet, "/api/proxy/admin/users", signToken(t, "a-1", models.RoleAdmin), nil))
		require.Equal(t, http.StatusNotFound, resp.Code)
	})

	t.Run("health and readiness", func(t *testing.T) {
		resp := performRequest(router, newRequest(t, http.MethodGet, "/health", "", nil))
		require.Equal(t, http.StatusOK, resp.Code)

		resp = performRequest(router, newRequest(t, http.MethodGet, "/ready", "", nil))
		require.Equal(t, http.StatusServiceUnavailable, resp.Code)
		assert.Contains(t, resp.Body.String(), "redis")
	})
}

func buildRouter(fwd *forwarderMock) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	manager := session.NewManager(config.SessionConfig{JWTSecret: routesSecret})
	checks := map[string]Pinger{"redis": func(context.Context) error { return errors.New("connection refused") }}

	RegisterRoutes(router, "/api", manager, Handlers{
		Gradebook:    NewGradebookHandler(&gradebookServiceMock{}),
		Attendance:   NewAttendanceHandler(&attendanceServiceMock{}),
		GradeSetting: NewGradeSettingHandler(&gradeSettingServiceMock{}, "/api"),
		Report:       NewReportHandler(service.NewReportService(nil, nil)),
		Session:      NewSessionHandler(manager),
		Proxy:        NewProxyHandler(fwd, "/api", []string{"/messages"}),
		Metrics:      NewMetricsHandler(nil, checks),
	})
	return router
}

func signToken(t *testing.T, userID string, role models.UserRole) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, models.SessionClaims{UserID: userID, Role: role})
	signed, err := token.SignedString([]byte(routesSecret))
	require.NoError(t, err)
	return signed
}

func newRequest(t *testing.T, method, target, token string, body []byte) *http.Request {
	t.Helper()
	req, err := http.NewRequest(method, target, bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.AddCookie(&http.Cookie{Name: "token", Value: token})
	}
	return req
}

func performRequest(router *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}
