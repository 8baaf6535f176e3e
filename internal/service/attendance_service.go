package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/school-portal-gateway/internal/attendance"
	"github.com/noah-isme/school-portal-gateway/internal/models"
	"github.com/noah-isme/school-portal-gateway/internal/session"
	appErrors "github.com/noah-isme/school-portal-gateway/pkg/errors"
)

// maxDailyWrites bounds how many submit-daily calls are in flight at once.
const maxDailyWrites = 8

const dateLayout = "2006-01-02"

type attendanceBackend interface {
	ScoreList(ctx context.Context, token, school, class, subject string) (*models.ScoreSheet, error)
	DailyAttendance(ctx context.Context, token string, scope models.AttendanceScope, date string) ([]models.DailyAttendanceRecord, error)
	SubmitDaily(ctx context.Context, token string, submission models.DailySubmission) error
	SubmitBulk(ctx context.Context, token string, scope models.AttendanceScope, req models.BulkAttendanceRequest) error
}

// DailyRow is one roster student with the mark shown on the daily sheet.
type DailyRow struct {
	UserID  string `json:"user_id"`
	Name    string `json:"name"`
	Present bool   `json:"present"`
}

// DailySheet is the daily attendance view of a class.
type DailySheet struct {
	Date     string                  `json:"date"`
	Students []DailyRow              `json:"students"`
	Summary  attendance.DailySummary `json:"summary"`
}

// DailySubmitResult reports a completed daily submission.
type DailySubmitResult struct {
	Submitted int                     `json:"submitted"`
	Summary   attendance.DailySummary `json:"summary"`
}

// ManualSubmitResult reports a completed manual submission. OutOfRange lists
// students whose count exceeds the school days of the term; they were still
// sent because the backend has the final say.
type ManualSubmitResult struct {
	Summary    attendance.ManualSummary `json:"summary"`
	OutOfRange []string                 `json:"out_of_range,omitempty"`
}

// AttendanceService reads and records class attendance.
type AttendanceService struct {
	backend attendanceBackend
	logger  *zap.Logger
}

// NewAttendanceService constructs the attendance service.
func NewAttendanceService(client attendanceBackend, logger *zap.Logger) *AttendanceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceService{backend: client, logger: logger}
}

// Daily merges the stored marks for date into the class roster. Students
// without a record are shown as absent.
func (s *AttendanceService) Daily(ctx context.Context, sess *session.Session, scope models.AttendanceScope, date string) (*DailySheet, error) {
	if err := validateDate(date); err != nil {
		return nil, err
	}
	roster, err := s.roster(ctx, sess, scope)
	if err != nil {
		return nil, err
	}
	records, err := s.backend.DailyAttendance(ctx, sess.Token, scope, date)
	if err != nil {
		return nil, err
	}

	present := attendance.MergeDailyRecords(roster, records)
	sheet := &DailySheet{
		Date:     date,
		Students: make([]DailyRow, 0, len(roster)),
		Summary:  attendance.DailyStats(roster, present),
	}
	for _, student := range roster {
		sheet.Students = append(sheet.Students, DailyRow{UserID: student.UserID, Name: student.FullName(), Present: present[student.UserID]})
	}
	return sheet, nil
}

// SubmitDaily sends one write per roster student and waits for all of them.
// Any failure fails the submission, but writes that already succeeded stay
// applied on the backend; the partial outcome is logged.
func (s *AttendanceService) SubmitDaily(ctx context.Context, sess *session.Session, scope models.AttendanceScope, date string, present map[string]bool) (*DailySubmitResult, error) {
	if err := validateDate(date); err != nil {
		return nil, err
	}
	roster, err := s.roster(ctx, sess, scope)
	if err != nil {
		return nil, err
	}
	if unknown := notOnRoster(roster, keysOfBool(present)); len(unknown) > 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "not on the class roster: "+strings.Join(unknown, ", "))
	}

	writes := attendance.BuildDailySubmission(roster, present, date, scope)
	var applied int64
	var g errgroup.Group
	g.SetLimit(maxDailyWrites)
	for _, write := range writes {
		write := write
		g.Go(func() error {
			if err := s.backend.SubmitDaily(ctx, sess.Token, write); err != nil {
				return err
			}
			atomic.AddInt64(&applied, 1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.logger.Warn("daily attendance partially applied",
			zap.String("class_id", scope.ClassID),
			zap.String("date", date),
			zap.Int64("applied", atomic.LoadInt64(&applied)),
			zap.Int("total", len(writes)),
			zap.Error(err),
		)
		return nil, err
	}

	s.logger.Info("daily attendance submitted", zap.String("class_id", scope.ClassID), zap.String("date", date), zap.Int("students", len(writes)))
	return &DailySubmitResult{Submitted: len(writes), Summary: attendance.DailyStats(roster, present)}, nil
}

// SubmitManual sends every day count of the class in a single bulk write.
func (s *AttendanceService) SubmitManual(ctx context.Context, sess *session.Session, scope models.AttendanceScope, totalSchoolDays int, records map[string]int) (*ManualSubmitResult, error) {
	if len(records) == 0 {
		return nil, appErrors.ErrNoChanges
	}
	var negative []string
	for id, days := range records {
		if days < 0 {
			negative = append(negative, id)
		}
	}
	if len(negative) > 0 {
		sort.Strings(negative)
		return nil, appErrors.Clone(appErrors.ErrValidation, "days_present cannot be negative for: "+strings.Join(negative, ", "))
	}

	roster, err := s.roster(ctx, sess, scope)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(records))
	for id := range records {
		ids = append(ids, id)
	}
	if unknown := notOnRoster(roster, ids); len(unknown) > 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "not on the class roster: "+strings.Join(unknown, ", "))
	}

	outOfRange := attendance.OutOfRange(records, totalSchoolDays)
	if len(outOfRange) > 0 {
		s.logger.Warn("days present above school days", zap.String("class_id", scope.ClassID), zap.Int("total_school_days", totalSchoolDays), zap.Strings("students", outOfRange))
	}

	if err := s.backend.SubmitBulk(ctx, sess.Token, scope, attendance.BuildManualSubmission(records)); err != nil {
		return nil, err
	}
	return &ManualSubmitResult{Summary: attendance.ManualStats(roster, records), OutOfRange: outOfRange}, nil
}

// roster reads the class list through the score-list route, the only backend
// read that returns it.
func (s *AttendanceService) roster(ctx context.Context, sess *session.Session, scope models.AttendanceScope) ([]models.Student, error) {
	sheet, err := s.backend.ScoreList(ctx, sess.Token, scope.SchoolID, scope.ClassID, "")
	if err != nil {
		return nil, err
	}
	return rosterOf(sheet), nil
}

func validateDate(date string) error {
	if _, err := time.Parse(dateLayout, date); err != nil {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("date %q must be formatted as YYYY-MM-DD", date))
	}
	return nil
}

func keysOfBool(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}

func notOnRoster(roster []models.Student, ids []string) []string {
	known := make(map[string]struct{}, len(roster))
	for _, student := range roster {
		known[student.UserID] = struct{}{}
	}
	var unknown []string
	for _, id := range ids {
		if _, ok := known[id]; !ok {
			unknown = append(unknown, id)
		}
	}
	sort.Strings(unknown)
	return unknown
}
