package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-portal-gateway/internal/dto"
	"github.com/noah-isme/school-portal-gateway/internal/middleware"
	"github.com/noah-isme/school-portal-gateway/internal/models"
	"github.com/noah-isme/school-portal-gateway/internal/service"
	"github.com/noah-isme/school-portal-gateway/internal/session"
	"github.com/noah-isme/school-portal-gateway/pkg/response"
)

type attendanceService interface {
	Daily(ctx context.Context, sess *session.Session, scope models.AttendanceScope, date string) (*service.DailySheet, error)
	SubmitDaily(ctx context.Context, sess *session.Session, scope models.AttendanceScope, date string, present map[string]bool) (*service.DailySubmitResult, error)
	SubmitManual(ctx context.Context, sess *session.Session, scope models.AttendanceScope, totalSchoolDays int, records map[string]int) (*service.ManualSubmitResult, error)
}

// AttendanceHandler exposes daily and manual attendance sheets.
type AttendanceHandler struct {
	service attendanceService
}

// NewAttendanceHandler constructs an attendance handler.
func NewAttendanceHandler(svc attendanceService) *AttendanceHandler {
	return &AttendanceHandler{service: svc}
}

func attendanceScope(c *gin.Context) models.AttendanceScope {
	return models.AttendanceScope{
		SchoolID:  c.Param("school"),
		SessionID: c.Param("session"),
		TermID:    c.Param("term"),
		ClassID:   c.Param("class"),
	}
}

// Daily godoc
// @Summary Daily attendance sheet
// @Description Roster merged with the stored marks for the date. Students without a record are absent.
// @Tags Attendance
// @Produce json
// @Param school path string true "School ID"
// @Param session path string true "Session ID"
// @Param term path string true "Term ID"
// @Param class path string true "Class ID"
// @Param date path string true "Date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /v1/attendance/daily/{school}/{session}/{term}/{class}/{date} [get]
func (h *AttendanceHandler) Daily(c *gin.Context) {
	sheet, err := h.service.Daily(c.Request.Context(), sessionFromContext(c), attendanceScope(c), c.Param("date"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sheet, middleware.ExtractMeta(c))
}

// SubmitDaily godoc
// @Summary Submit daily attendance
// @Description Sends one write per roster student. Any failed write fails the request; writes that succeeded are kept by the backend.
// @Tags Attendance
// @Accept json
// @Produce json
// @Param school path string true "School ID"
// @Param session path string true "Session ID"
// @Param term path string true "Term ID"
// @Param class path string true "Class ID"
// @Param date path string true "Date (YYYY-MM-DD)"
// @Param payload body dto.DailyAttendanceRequest true "Present marks by user_id"
// @Success 200 {object} response.Envelope
// @Router /v1/attendance/daily/{school}/{session}/{term}/{class}/{date} [put]
func (h *AttendanceHandler) SubmitDaily(c *gin.Context) {
	var req dto.DailyAttendanceRequest
	if !bindJSON(c, &req, "invalid attendance payload") {
		return
	}
	result, err := h.service.SubmitDaily(c.Request.Context(), sessionFromContext(c), attendanceScope(c), c.Param("date"), req.Present)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, middleware.ExtractMeta(c))
}

// SubmitManual godoc
// @Summary Submit term attendance counts
// @Description Sends every days-present count in one bulk write. Counts above total_school_days are reported, not rejected.
// @Tags Attendance
// @Accept json
// @Produce json
// @Param school path string true "School ID"
// @Param session path string true "Session ID"
// @Param term path string true "Term ID"
// @Param class path string true "Class ID"
// @Param payload body dto.ManualAttendanceRequest true "Days present by user_id"
// @Success 200 {object} response.Envelope
// @Router /v1/attendance/manual/{school}/{session}/{term}/{class} [post]
func (h *AttendanceHandler) SubmitManual(c *gin.Context) {
	var req dto.ManualAttendanceRequest
	if !bindJSON(c, &req, "invalid attendance payload") {
		return
	}
	result, err := h.service.SubmitManual(c.Request.Context(), sessionFromContext(c), attendanceScope(c), req.TotalSchoolDays, req.Records)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, middleware.ExtractMeta(c))
}
