package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-portal-gateway/internal/grading"
	"github.com/noah-isme/school-portal-gateway/internal/middleware"
	"github.com/noah-isme/school-portal-gateway/internal/models"
	"github.com/noah-isme/school-portal-gateway/internal/service"
	"github.com/noah-isme/school-portal-gateway/internal/session"
	appErrors "github.com/noah-isme/school-portal-gateway/pkg/errors"
	"github.com/noah-isme/school-portal-gateway/pkg/export"
)

type gradebookServiceMock struct {
	sheet     *service.ResultSheet
	saveErr   error
	file      *service.ExportFile
	imported  []byte
	scope     service.GradebookScope
	form      grading.FormState
	studentID string
	student   map[grading.ComponentKey]float64
	format    export.Format
}

func (m *gradebookServiceMock) Sheet(ctx context.Context, sess *session.Session, scope service.GradebookScope) (*service.ResultSheet, error) {
	m.scope = scope
	return m.sheet, nil
}

func (m *gradebookServiceMock) Save(ctx context.Context, sess *session.Session, scope service.GradebookScope, form grading.FormState) (*service.SaveResult, error) {
	m.scope = scope
	m.form = form
	if m.saveErr != nil {
		return nil, m.saveErr
	}
	return &service.SaveResult{Created: 1}, nil
}

func (m *gradebookServiceMock) SaveStudent(ctx context.Context, sess *session.Session, scope service.GradebookScope, userID string, scores map[grading.ComponentKey]float64) (*service.SaveResult, error) {
	m.studentID = userID
	m.student = scores
	return &service.SaveResult{Updated: len(scores)}, nil
}

func (m *gradebookServiceMock) Import(ctx context.Context, sess *session.Session, scope service.GradebookScope, data []byte) (*service.ImportResult, error) {
	m.imported = data
	return &service.ImportResult{Students: 1, Saved: service.SaveResult{Updated: 1}}, nil
}

func (m *gradebookServiceMock) Export(ctx context.Context, sess *session.Session, scope service.GradebookScope, format export.Format) (*service.ExportFile, error) {
	m.format = format
	return m.file, nil
}

func newGinContext(method, path string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	middleware.WithResponseMeta()(c)
	c.Set(middleware.ContextSessionKey, &session.Session{Token: "tok", Claims: &models.SessionClaims{UserID: "teacher-1", Role: models.RoleTeacher}})
	return c, w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestGradebookHandlerSheet(t *testing.T) {
	mock := &gradebookServiceMock{sheet: &service.ResultSheet{TotalPossible: 100, PassedCount: 3}}
	h := NewGradebookHandler(mock)

	c, w := newGinContext(http.MethodGet, "/v1/gradebook/s1/c1/math", nil)
	c.Params = gin.Params{{Key: "school", Value: "s1"}, {Key: "class", Value: "c1"}, {Key: "subject", Value: "math"}}
	h.Sheet(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, service.GradebookScope{SchoolID: "s1", ClassID: "c1", SubjectID: "math"}, mock.scope)
	body := decodeEnvelope(t, w)
	data := body["data"].(map[string]interface{})
	assert.EqualValues(t, 3, data["passed_count"])
	require.Contains(t, body, "meta")
	assert.Contains(t, body["meta"], "processing_time_ms")
}

func TestGradebookHandlerSheetExport(t *testing.T) {
	mock := &gradebookServiceMock{file: &service.ExportFile{Filename: "results-s1-c1.csv", ContentType: "text/csv", Body: []byte("user_id\n")}}
	h := NewGradebookHandler(mock)

	c, w := newGinContext(http.MethodGet, "/v1/gradebook/s1/c1?format=CSV", nil)
	h.Sheet(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, export.FormatCSV, mock.format)
	assert.Equal(t, `attachment; filename="results-s1-c1.csv"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "user_id\n", w.Body.String())

	c, w = newGinContext(http.MethodGet, "/v1/gradebook/s1/c1?format=docx", nil)
	h.Sheet(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGradebookHandlerSave(t *testing.T) {
	mock := &gradebookServiceMock{}
	h := NewGradebookHandler(mock)

	c, w := newGinContext(http.MethodPut, "/v1/gradebook/s1/c1", []byte(`{"scores":{"u1":{"Mid Term":"12.5","Exam":40}}}`))
	h.Save(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, grading.FormState{"u1": {"mid_term": 12.5, "exam": 40}}, mock.form)
}

func TestGradebookHandlerSaveRejectsEmptyAndSurfacesErrors(t *testing.T) {
	h := NewGradebookHandler(&gradebookServiceMock{})
	c, w := newGinContext(http.MethodPut, "/v1/gradebook/s1/c1", []byte(`{"scores":{}}`))
	h.Save(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	h = NewGradebookHandler(&gradebookServiceMock{saveErr: appErrors.FromUpstream(http.StatusUnprocessableEntity, "term is closed", "Failed to assign scores")})
	c, w = newGinContext(http.MethodPut, "/v1/gradebook/s1/c1", []byte(`{"scores":{"u1":{"CA":1}}}`))
	h.Save(c)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	body := decodeEnvelope(t, w)
	assert.Equal(t, "term is closed", body["error"].(map[string]interface{})["message"])
}

func TestGradebookHandlerSaveStudent(t *testing.T) {
	mock := &gradebookServiceMock{}
	h := NewGradebookHandler(mock)

	c, w := newGinContext(http.MethodPatch, "/v1/gradebook/s1/c1/students/u9", []byte(`{"scores":{"CA":30}}`))
	c.Params = gin.Params{{Key: "student", Value: "u9"}}
	h.SaveStudent(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u9", mock.studentID)
	assert.Equal(t, map[grading.ComponentKey]float64{"ca": 30}, mock.student)
}

func TestGradebookHandlerImport(t *testing.T) {
	mock := &gradebookServiceMock{}
	h := NewGradebookHandler(mock)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "scores.xlsx")
	require.NoError(t, err)
	_, _ = part.Write([]byte("workbook"))
	require.NoError(t, mw.Close())

	c, w := newGinContext(http.MethodPost, "/v1/gradebook/s1/c1/import", buf.Bytes())
	c.Request.Header.Set("Content-Type", mw.FormDataContentType())
	h.Import(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []byte("workbook"), mock.imported)

	c, w = newGinContext(http.MethodPost, "/v1/gradebook/s1/c1/import", nil)
	h.Import(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func ginParam(key, value string) gin.Param {
	return gin.Param{Key: key, Value: value}
}
