package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-portal-gateway/internal/models"
	"github.com/noah-isme/school-portal-gateway/pkg/config"
	appErrors "github.com/noah-isme/school-portal-gateway/pkg/errors"
	"github.com/noah-isme/school-portal-gateway/pkg/middleware/requestid"
)

type observerStub struct {
	mu      sync.Mutex
	samples []string
}

func (o *observerStub) ObserveUpstream(route string, status int, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.samples = append(o.samples, route)
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *observerStub) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	obs := &observerStub{}
	return NewClient(config.BackendConfig{BaseURL: srv.URL + "/", Timeout: time.Second}, obs, nil), obs
}

func TestScoreListForwardsTokenAndRequestID(t *testing.T) {
	client, obs := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/student/scores/score-list/sch-1/cls-1", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "req-1", r.Header.Get(requestid.Header))
		_, _ = io.WriteString(w, `{"data":{"data":[{"students":[{"student":{"user_id":"u1","first_name":"Ada","scores":[{"component_name":"CA","score":"35"}]}}],"grading":[{"name":"CA","weight":40}]}]}}`)
	})

	ctx := requestid.WithContext(context.Background(), "req-1")
	sheet, err := client.ScoreList(ctx, "tok", "sch-1", "cls-1", "")
	require.NoError(t, err)
	require.Len(t, sheet.Students, 1)
	assert.Equal(t, "u1", sheet.Students[0].Student.UserID)
	assert.Equal(t, models.ScoreValue(35), sheet.Students[0].Student.Scores[0].Score)
	assert.Equal(t, []models.GradingComponent{{Name: "CA", Weight: 40}}, sheet.Grading)
	assert.Equal(t, []string{"score-list"}, obs.samples)
}

func TestScoreListUsesSubjectScope(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/student/scores/score-list/sch-1/math", r.URL.Path)
		_, _ = io.WriteString(w, `{"data":{"data":[{"students":[],"grading":[]}]}}`)
	})

	_, err := client.ScoreList(context.Background(), "tok", "sch-1", "cls-1", "math")
	require.NoError(t, err)
}

func TestScoreListEmptyIsNotFound(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"data":{"data":[]}}`)
	})

	_, err := client.ScoreList(context.Background(), "tok", "s", "c", "")
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestBackendMessageIsKeptVerbatim(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = io.WriteString(w, `{"message":"score exceeds weight"}`)
	})

	err := client.AssignScores(context.Background(), "tok", "s", "c", "", models.ScoreBatch{})
	appErr := appErrors.FromError(err)
	assert.Equal(t, http.StatusUnprocessableEntity, appErr.Status)
	assert.Equal(t, "score exceeds weight", appErr.Message)
}

func TestBackendErrorWithoutMessageUsesFallback(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `<html>oops</html>`)
	})

	err := client.EditBulkScores(context.Background(), "tok", "s", "c", "math", models.ScoreBatch{})
	appErr := appErrors.FromError(err)
	assert.Equal(t, http.StatusInternalServerError, appErr.Status)
	assert.Equal(t, "Failed to update scores", appErr.Message)
}

func TestUnreachableBackendIsUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	client := NewClient(config.BackendConfig{BaseURL: url, Timeout: time.Second}, nil, nil)

	err := client.SubmitBulk(context.Background(), "tok", models.AttendanceScope{SchoolID: "s", SessionID: "se", TermID: "t", ClassID: "c"}, models.BulkAttendanceRequest{})
	appErr := appErrors.FromError(err)
	assert.Equal(t, http.StatusBadGateway, appErr.Status)
	assert.Equal(t, "Failed to submit attendance", appErr.Message)
}

func TestSubmitDailyBody(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/attendance/submit-daily/s/se/t/c", r.URL.Path)
		var body models.DailySubmission
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "u1", body.StudentID)
		assert.True(t, body.Present)
		assert.Equal(t, "2024-01-15", body.Date)
		w.WriteHeader(http.StatusOK)
	})

	err := client.SubmitDaily(context.Background(), "tok", models.DailySubmission{
		SchoolID: "s", SessionID: "se", TermID: "t", ClassID: "c",
		StudentID: "u1", Present: true, Date: "2024-01-15",
	})
	assert.NoError(t, err)
}

func TestDailyAttendance(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/attendance/daily/s/se/t/c/2024-01-15", r.URL.Path)
		_, _ = io.WriteString(w, `{"data":{"attendance":[{"student_id":"u1","present":true}]}}`)
	})

	records, err := client.DailyAttendance(context.Background(), "tok", models.AttendanceScope{SchoolID: "s", SessionID: "se", TermID: "t", ClassID: "c"}, "2024-01-15")
	require.NoError(t, err)
	assert.Equal(t, []models.DailyAttendanceRecord{{StudentID: "u1", Present: true}}, records)
}

func TestForwardRelaysStatusAndBody(t *testing.T) {
	client, obs := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "page=2", r.URL.RawQuery)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"message":"thread not found"}`)
	})

	resp, err := client.Forward(context.Background(), "tok", http.MethodGet, "/messages/threads/42", map[string][]string{"page": {"2"}}, nil, "")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.Status)
	assert.False(t, resp.OK())
	assert.Equal(t, "thread not found", resp.Message())
	assert.Equal(t, []string{"messages/threads/42"}, obs.samples)
}

func TestPathEscapesSegmentsAndSkipsEmpty(t *testing.T) {
	assert.Equal(t, "/student/scores/assign/s%201/c", Path("student", "scores", "assign", "s 1", "c", ""))
	assert.Equal(t, "", Path())
}

func TestRouteLabel(t *testing.T) {
	assert.Equal(t, "student/scores/score-list", routeLabel("/student/scores/score-list/s/c"))
	assert.Equal(t, "root", routeLabel("/"))
}
