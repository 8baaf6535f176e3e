package handler

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-portal-gateway/internal/dto"
	"github.com/noah-isme/school-portal-gateway/internal/grading"
	"github.com/noah-isme/school-portal-gateway/internal/middleware"
	"github.com/noah-isme/school-portal-gateway/internal/models"
	"github.com/noah-isme/school-portal-gateway/internal/service"
	"github.com/noah-isme/school-portal-gateway/internal/session"
	appErrors "github.com/noah-isme/school-portal-gateway/pkg/errors"
	"github.com/noah-isme/school-portal-gateway/pkg/export"
	"github.com/noah-isme/school-portal-gateway/pkg/response"
)

type gradebookService interface {
	Sheet(ctx context.Context, sess *session.Session, scope service.GradebookScope) (*service.ResultSheet, error)
	Save(ctx context.Context, sess *session.Session, scope service.GradebookScope, form grading.FormState) (*service.SaveResult, error)
	SaveStudent(ctx context.Context, sess *session.Session, scope service.GradebookScope, userID string, scores map[grading.ComponentKey]float64) (*service.SaveResult, error)
	Import(ctx context.Context, sess *session.Session, scope service.GradebookScope, data []byte) (*service.ImportResult, error)
	Export(ctx context.Context, sess *session.Session, scope service.GradebookScope, format export.Format) (*service.ExportFile, error)
}

// GradebookHandler exposes computed result sheets and score saving.
type GradebookHandler struct {
	service gradebookService
}

// NewGradebookHandler constructs a gradebook handler.
func NewGradebookHandler(svc gradebookService) *GradebookHandler {
	return &GradebookHandler{service: svc}
}

func gradebookScope(c *gin.Context) service.GradebookScope {
	return service.GradebookScope{
		SchoolID:  c.Param("school"),
		ClassID:   c.Param("class"),
		SubjectID: c.Param("subject"),
	}
}

// Sheet godoc
// @Summary Class result sheet
// @Description Roster with component scores, totals, grades and the class average. format=csv|pdf|xlsx downloads the sheet instead.
// @Tags Gradebook
// @Produce json
// @Param school path string true "School ID"
// @Param class path string true "Class ID"
// @Param subject path string false "Subject ID"
// @Param format query string false "Export format"
// @Success 200 {object} response.Envelope
// @Router /v1/gradebook/{school}/{class}/{subject} [get]
func (h *GradebookHandler) Sheet(c *gin.Context) {
	sess := sessionFromContext(c)
	scope := gradebookScope(c)

	if raw := c.Query("format"); raw != "" {
		format, err := export.ParseFormat(raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, err.Error()))
			return
		}
		file, err := h.service.Export(c.Request.Context(), sess, scope, format)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.File(c, file.ContentType, file.Filename, file.Body)
		return
	}

	sheet, err := h.service.Sheet(c.Request.Context(), sess, scope)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sheet, middleware.ExtractMeta(c))
}

// Save godoc
// @Summary Save class scores
// @Description New (student, component) pairs are assigned, existing ones edited in bulk.
// @Tags Gradebook
// @Accept json
// @Produce json
// @Param school path string true "School ID"
// @Param class path string true "Class ID"
// @Param subject path string false "Subject ID"
// @Param payload body dto.SaveScoresRequest true "Scores by user_id and component"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /v1/gradebook/{school}/{class}/{subject} [put]
func (h *GradebookHandler) Save(c *gin.Context) {
	var req dto.SaveScoresRequest
	if !bindJSON(c, &req, "invalid scores payload") {
		return
	}
	result, err := h.service.Save(c.Request.Context(), sessionFromContext(c), gradebookScope(c), grading.NewFormState(req.Scores))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, middleware.ExtractMeta(c))
}

// SaveStudent godoc
// @Summary Save one student's scores
// @Tags Gradebook
// @Accept json
// @Produce json
// @Param school path string true "School ID"
// @Param class path string true "Class ID"
// @Param student path string true "Student user ID"
// @Param payload body dto.SaveStudentScoresRequest true "Scores by component"
// @Success 200 {object} response.Envelope
// @Router /v1/gradebook/{school}/{class}/students/{student} [patch]
func (h *GradebookHandler) SaveStudent(c *gin.Context) {
	var req dto.SaveStudentScoresRequest
	if !bindJSON(c, &req, "invalid scores payload") {
		return
	}
	userID := strings.TrimSpace(c.Param("student"))
	form := grading.NewFormState(map[string]map[string]models.ScoreValue{userID: req.Scores})
	result, err := h.service.SaveStudent(c.Request.Context(), sessionFromContext(c), gradebookScope(c), userID, form[userID])
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, middleware.ExtractMeta(c))
}

// Import godoc
// @Summary Import scores from a spreadsheet
// @Description First worksheet, a user_id column and one column per grading component.
// @Tags Gradebook
// @Accept mpfd
// @Produce json
// @Param school path string true "School ID"
// @Param class path string true "Class ID"
// @Param subject path string false "Subject ID"
// @Param file formData file true "xlsx workbook"
// @Success 200 {object} response.Envelope
// @Router /v1/gradebook/{school}/{class}/{subject}/import [post]
func (h *GradebookHandler) Import(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "file is required"))
		return
	}
	if fileHeader.Size > maxRequestBody {
		response.Error(c, errBodyTooLarge)
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "file is unreadable"))
		return
	}
	defer file.Close()

	data := make([]byte, fileHeader.Size)
	if _, err := io.ReadFull(file, data); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "file is unreadable"))
		return
	}

	result, err := h.service.Import(c.Request.Context(), sessionFromContext(c), gradebookScope(c), data)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, middleware.ExtractMeta(c))
}
