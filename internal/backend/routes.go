package backend

import (
	"context"
	"net/http"

	"github.com/noah-isme/school-portal-gateway/internal/models"
	appErrors "github.com/noah-isme/school-portal-gateway/pkg/errors"
)

// ScoreList reads the roster, its persisted scores and the grading components
// for a class, or for a subject when subject is set.
func (c *Client) ScoreList(ctx context.Context, token, school, class, subject string) (*models.ScoreSheet, error) {
	scope := class
	if subject != "" {
		scope = subject
	}
	var resp models.ScoreListResponse
	if err := c.doJSON(ctx, token, http.MethodGet, "score-list", Path("student", "scores", "score-list", school, scope), nil, &resp, "Failed to fetch scores"); err != nil {
		return nil, err
	}
	if len(resp.Data.Data) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no score sheet for this class")
	}
	sheet := resp.Data.Data[0]
	return &sheet, nil
}

// AssignScores creates scores for pairs that have no backend record yet.
func (c *Client) AssignScores(ctx context.Context, token, school, class, subject string, batch models.ScoreBatch) error {
	return c.doJSON(ctx, token, http.MethodPost, "assign", Path("student", "scores", "assign", school, class, subject), batch, nil, "Failed to assign scores")
}

// EditStudentScores updates existing scores of a single student.
func (c *Client) EditStudentScores(ctx context.Context, token, school, class string, scores models.StudentScores) error {
	return c.doJSON(ctx, token, http.MethodPatch, "edit-student-scores", Path("student", "scores", "edit-student-scores", school, class), scores, nil, "Failed to update scores")
}

// EditBulkScores updates existing scores of many students at once.
func (c *Client) EditBulkScores(ctx context.Context, token, school, class, subject string, batch models.ScoreBatch) error {
	return c.doJSON(ctx, token, http.MethodPatch, "editBulk-student-scores", Path("student", "scores", "editBulk-student-scores", school, class, subject), batch, nil, "Failed to update scores")
}

// DailyAttendance reads the stored marks of a class for one date.
func (c *Client) DailyAttendance(ctx context.Context, token string, scope models.AttendanceScope, date string) ([]models.DailyAttendanceRecord, error) {
	var resp models.DailyAttendanceResponse
	path := Path("attendance", "daily", scope.SchoolID, scope.SessionID, scope.TermID, scope.ClassID, date)
	if err := c.doJSON(ctx, token, http.MethodGet, "attendance-daily", path, nil, &resp, "Failed to fetch attendance"); err != nil {
		return nil, err
	}
	return resp.Data.Attendance, nil
}

// SubmitDaily writes one student's mark for one date.
func (c *Client) SubmitDaily(ctx context.Context, token string, submission models.DailySubmission) error {
	path := Path("attendance", "submit-daily", submission.SchoolID, submission.SessionID, submission.TermID, submission.ClassID)
	return c.doJSON(ctx, token, http.MethodPut, "submit-daily", path, submission, nil, "Failed to submit attendance")
}

// SubmitBulk writes every manual day count of a class in one request.
func (c *Client) SubmitBulk(ctx context.Context, token string, scope models.AttendanceScope, req models.BulkAttendanceRequest) error {
	path := Path("attendance", "submit-bulk", scope.SchoolID, scope.SessionID, scope.TermID, scope.ClassID)
	return c.doJSON(ctx, token, http.MethodPost, "submit-bulk", path, req, nil, "Failed to submit attendance")
}
