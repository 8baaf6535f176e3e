package handler

import (
	"context"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-portal-gateway/internal/backend"
	"github.com/noah-isme/school-portal-gateway/internal/middleware"
	"github.com/noah-isme/school-portal-gateway/internal/service"
	"github.com/noah-isme/school-portal-gateway/internal/session"
	"github.com/noah-isme/school-portal-gateway/pkg/response"
)

const (
	cacheHeader   = "X-Cache"
	warningHeader = "X-Grading-Warning"
)

type gradeSettingService interface {
	Get(ctx context.Context, sess *session.Session, path string, query url.Values) (*backend.Response, bool, error)
	Write(ctx context.Context, sess *session.Session, method, path string, body []byte) (*service.SettingWrite, error)
}

// GradeSettingHandler relays grading-component settings.
type GradeSettingHandler struct {
	settings  gradeSettingService
	apiPrefix string
}

// NewGradeSettingHandler constructs a grade setting handler.
func NewGradeSettingHandler(settings gradeSettingService, apiPrefix string) *GradeSettingHandler {
	return &GradeSettingHandler{settings: settings, apiPrefix: strings.TrimRight(apiPrefix, "/")}
}

// Get godoc
// @Summary Read grading components
// @Description Relayed from the backend, served from cache when enabled. X-Cache reports HIT or MISS.
// @Tags GradeSetting
// @Produce json
// @Param path path string true "Backend path below grade_setting"
// @Router /grade_setting/{path} [get]
func (h *GradeSettingHandler) Get(c *gin.Context) {
	resp, hit, err := h.settings.Get(c.Request.Context(), sessionFromContext(c), upstreamPath(c, h.apiPrefix), c.Request.URL.Query())
	if err != nil {
		response.Message(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	if hit {
		c.Header(cacheHeader, "HIT")
	} else {
		c.Header(cacheHeader, "MISS")
	}
	relay(c, resp, "Failed to fetch grading settings")
}

// Write godoc
// @Summary Create or replace grading components
// @Description Component names must be distinct and weights positive. A weight total above 100 is forwarded with an X-Grading-Warning header.
// @Tags GradeSetting
// @Accept json
// @Produce json
// @Param path path string true "Backend path below grade_setting"
// @Param payload body models.GradingSetting true "Components"
// @Router /grade_setting/{path} [post]
// @Router /grade_setting/{path} [put]
func (h *GradeSettingHandler) Write(c *gin.Context) {
	body, err := readBody(c)
	if err != nil {
		response.Message(c, err)
		return
	}
	result, err := h.settings.Write(c.Request.Context(), sessionFromContext(c), c.Request.Method, upstreamPath(c, h.apiPrefix), body)
	if err != nil {
		response.Message(c, err)
		return
	}
	for _, warning := range result.Warnings {
		c.Writer.Header().Add(warningHeader, warning)
	}
	relay(c, result.Response, "Failed to save grading settings")
}
