package service

import (
	"context"
	"io"
	"net/url"
	"sync"

	"github.com/noah-isme/school-portal-gateway/internal/backend"
	"github.com/noah-isme/school-portal-gateway/internal/models"
	"github.com/noah-isme/school-portal-gateway/internal/session"
)

type forwardCall struct {
	Token  string
	Method string
	Path   string
	Body   []byte
}

// fakeBackend records every write and serves a fixed score sheet.
type fakeBackend struct {
	mu sync.Mutex

	sheet       *models.ScoreSheet
	sheetErr    error
	daily       []models.DailyAttendanceRecord
	assignErr   error
	editErr     error
	dailyErrFor map[string]error
	bulkErr     error
	forwardResp *backend.Response
	forwardErr  error

	scoreListCalls int
	assigned       []models.ScoreBatch
	bulkEdits      []models.ScoreBatch
	studentEdits   []models.StudentScores
	dailyWrites    []models.DailySubmission
	bulkWrites     []models.BulkAttendanceRequest
	forwards       []forwardCall
}

func (f *fakeBackend) ScoreList(ctx context.Context, token, school, class, subject string) (*models.ScoreSheet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scoreListCalls++
	if f.sheetErr != nil {
		return nil, f.sheetErr
	}
	return f.sheet, nil
}

func (f *fakeBackend) AssignScores(ctx context.Context, token, school, class, subject string, batch models.ScoreBatch) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.assignErr != nil {
		return f.assignErr
	}
	f.assigned = append(f.assigned, batch)
	return nil
}

func (f *fakeBackend) EditStudentScores(ctx context.Context, token, school, class string, scores models.StudentScores) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.editErr != nil {
		return f.editErr
	}
	f.studentEdits = append(f.studentEdits, scores)
	return nil
}

func (f *fakeBackend) EditBulkScores(ctx context.Context, token, school, class, subject string, batch models.ScoreBatch) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.editErr != nil {
		return f.editErr
	}
	f.bulkEdits = append(f.bulkEdits, batch)
	return nil
}

func (f *fakeBackend) DailyAttendance(ctx context.Context, token string, scope models.AttendanceScope, date string) ([]models.DailyAttendanceRecord, error) {
	return f.daily, nil
}

func (f *fakeBackend) SubmitDaily(ctx context.Context, token string, submission models.DailySubmission) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.dailyErrFor[submission.StudentID]; err != nil {
		return err
	}
	f.dailyWrites = append(f.dailyWrites, submission)
	return nil
}

func (f *fakeBackend) SubmitBulk(ctx context.Context, token string, scope models.AttendanceScope, req models.BulkAttendanceRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.bulkErr != nil {
		return f.bulkErr
	}
	f.bulkWrites = append(f.bulkWrites, req)
	return nil
}

func (f *fakeBackend) Forward(ctx context.Context, token, method, path string, query url.Values, body io.Reader, contentType string) (*backend.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	call := forwardCall{Token: token, Method: method, Path: path}
	if body != nil {
		call.Body, _ = io.ReadAll(body)
	}
	f.forwards = append(f.forwards, call)
	if f.forwardErr != nil {
		return nil, f.forwardErr
	}
	return f.forwardResp, nil
}

func testSession() *session.Session {
	return &session.Session{Token: "tok", Claims: &models.SessionClaims{UserID: "teacher-1", Role: models.RoleTeacher}}
}

// twoStudentSheet has Ada with a CA score on record and Bola with nothing.
func twoStudentSheet() *models.ScoreSheet {
	return &models.ScoreSheet{
		Grading: []models.GradingComponent{{Name: "CA", Weight: 40}, {Name: "Exam", Weight: 60}},
		Students: []models.ScoreListEntry{
			{Student: models.Student{UserID: "u1", FirstName: "Ada", LastName: "Obi", Scores: []models.ComponentScore{{ComponentName: "CA", Score: 30}}}},
			{Student: models.Student{UserID: "u2", FirstName: "Bola", LastName: "Ade"}},
		},
	}
}
