package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-portal-gateway/internal/grading"
	"github.com/noah-isme/school-portal-gateway/internal/middleware"
	"github.com/noah-isme/school-portal-gateway/internal/service"
	"github.com/noah-isme/school-portal-gateway/pkg/response"
)

type reportService interface {
	ClassStats(req service.ClassStatsRequest) (*service.ClassStatsReport, error)
	SessionStats(req service.SessionStatsRequest) (*grading.SessionStats, error)
}

// ReportHandler exposes report-card statistics.
type ReportHandler struct {
	reports reportService
}

// NewReportHandler constructs handler.
func NewReportHandler(reports reportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// ClassStats godoc
// @Summary Term statistics of a report card
// @Tags Reports
// @Accept json
// @Produce json
// @Param payload body service.ClassStatsRequest true "Subject results"
// @Success 200 {object} response.Envelope
// @Router /v1/reports/class-stats [post]
func (h *ReportHandler) ClassStats(c *gin.Context) {
	var req service.ClassStatsRequest
	if !bindJSON(c, &req, "invalid class stats payload") {
		return
	}
	report, err := h.reports.ClassStats(req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, middleware.ExtractMeta(c))
}

// SessionStats godoc
// @Summary Session statistics of a report card
// @Tags Reports
// @Accept json
// @Produce json
// @Param payload body service.SessionStatsRequest true "Term results"
// @Success 200 {object} response.Envelope
// @Router /v1/reports/session-stats [post]
func (h *ReportHandler) SessionStats(c *gin.Context) {
	var req service.SessionStatsRequest
	if !bindJSON(c, &req, "invalid session stats payload") {
		return
	}
	stats, err := h.reports.SessionStats(req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, middleware.ExtractMeta(c))
}
