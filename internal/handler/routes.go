package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-portal-gateway/internal/middleware"
	"github.com/noah-isme/school-portal-gateway/internal/models"
	"github.com/noah-isme/school-portal-gateway/internal/session"
	"github.com/noah-isme/school-portal-gateway/pkg/response"
)

// Handlers groups everything RegisterRoutes mounts. Metrics may be nil.
type Handlers struct {
	Gradebook    *GradebookHandler
	Attendance   *AttendanceHandler
	GradeSetting *GradeSettingHandler
	Report       *ReportHandler
	Session      *SessionHandler
	Proxy        *ProxyHandler
	Metrics      *MetricsHandler
}

var (
	scoreWriters      = []models.UserRole{models.RoleTeacher, models.RoleClassTeacher, models.RoleAdmin}
	attendanceWriters = []models.UserRole{models.RoleClassTeacher, models.RoleAdmin}
)

// RegisterRoutes mounts the pass-through routes at apiPrefix and the
// computed ones at apiPrefix/v1. Pass-through failures use the backend's
// flat message body, computed ones the response envelope.
func RegisterRoutes(r *gin.Engine, apiPrefix string, manager *session.Manager, h Handlers) {
	if h.Metrics != nil {
		r.GET("/health", h.Metrics.Health)
		r.GET("/ready", h.Metrics.Ready)
		if h.Metrics.metrics != nil {
			r.GET("/metrics", h.Metrics.Prometheus)
			r.GET("/metrics/summary", h.Metrics.Summary)
		}
	}

	api := r.Group(apiPrefix)
	registerPassthrough(api, manager, h)
	registerComputed(api.Group("/v1"), manager, h)
}

func registerPassthrough(api *gin.RouterGroup, manager *session.Manager, h Handlers) {
	write := middleware.ErrorWriter(response.Message)
	proxy := h.Proxy

	g := api.Group("", middleware.Session(manager, write))
	canScore := middleware.RequireRoles(write, scoreWriters...)
	canMark := middleware.RequireRoles(write, attendanceWriters...)

	scores := g.Group("/student/scores")
	scores.GET("/score-list/:school/:scope", proxy.Pass("Failed to fetch scores"))
	scores.POST("/assign/:school/:class", canScore, proxy.Pass("Failed to assign scores"))
	scores.POST("/assign/:school/:class/:subject", canScore, proxy.Pass("Failed to assign scores"))
	scores.PATCH("/edit-student-scores/:school/:class", canScore, proxy.Pass("Failed to update scores"))
	scores.PATCH("/editBulk-student-scores/:school/:class", canScore, proxy.Pass("Failed to update scores"))
	scores.PATCH("/editBulk-student-scores/:school/:class/:subject", canScore, proxy.Pass("Failed to update scores"))

	g.GET("/grade_setting/*path", h.GradeSetting.Get)
	g.POST("/grade_setting/*path", canScore, h.GradeSetting.Write)
	g.PUT("/grade_setting/*path", canScore, h.GradeSetting.Write)

	att := g.Group("/attendance")
	att.GET("/daily/:school/:session/:term/:class/:date", proxy.Pass("Failed to fetch attendance"))
	att.PUT("/submit-daily/*path", canMark, proxy.Pass("Failed to submit attendance"))
	att.POST("/submit-bulk/:school/:session/:term/:class", canMark, proxy.Pass("Failed to submit attendance"))

	g.Any("/proxy/*path", proxy.Generic)
}

func registerComputed(v1 *gin.RouterGroup, manager *session.Manager, h Handlers) {
	write := middleware.ErrorWriter(response.Error)

	v1.POST("/session/logout", h.Session.Logout)

	g := v1.Group("", middleware.Session(manager, write))
	canScore := middleware.RequireRoles(write, scoreWriters...)
	canMark := middleware.RequireRoles(write, attendanceWriters...)

	g.GET("/session", h.Session.Me)

	book := g.Group("/gradebook")
	book.GET("/:school/:class", h.Gradebook.Sheet)
	book.GET("/:school/:class/:subject", h.Gradebook.Sheet)
	book.PUT("/:school/:class", canScore, h.Gradebook.Save)
	book.PUT("/:school/:class/:subject", canScore, h.Gradebook.Save)
	book.PATCH("/:school/:class/students/:student", canScore, h.Gradebook.SaveStudent)
	book.POST("/:school/:class/import", canScore, h.Gradebook.Import)
	book.POST("/:school/:class/:subject/import", canScore, h.Gradebook.Import)

	att := g.Group("/attendance")
	att.GET("/daily/:school/:session/:term/:class/:date", h.Attendance.Daily)
	att.PUT("/daily/:school/:session/:term/:class/:date", canMark, h.Attendance.SubmitDaily)
	att.POST("/manual/:school/:session/:term/:class", canMark, h.Attendance.SubmitManual)

	reports := g.Group("/reports")
	reports.POST("/class-stats", h.Report.ClassStats)
	reports.POST("/session-stats", h.Report.SessionStats)
}
