// Package attendance computes roster attendance statistics and builds the
// write payloads for the two recording modes: daily present/absent marks and
// manual term-long day counts.
package attendance

import (
	"fmt"
	"sort"

	"github.com/noah-isme/school-portal-gateway/internal/models"
)

// DailySummary is the header of the daily attendance sheet.
type DailySummary struct {
	Total   int    `json:"total"`
	Present int    `json:"present"`
	Absent  int    `json:"absent"`
	Rate    string `json:"rate"`
}

// ManualSummary is the header of the manual attendance sheet.
type ManualSummary struct {
	TotalStudents     int    `json:"total_students"`
	RecordedStudents  int    `json:"recorded_students"`
	TotalDaysRecorded int    `json:"total_days_recorded"`
	AverageAttendance string `json:"average_attendance"`
}

// DailyStats counts roster students marked present. A student missing from
// present counts as absent. Rate is a one-decimal percentage, "0" for an
// empty roster.
func DailyStats(roster []models.Student, present map[string]bool) DailySummary {
	summary := DailySummary{Total: len(roster), Rate: "0"}
	for _, student := range roster {
		if present[student.UserID] {
			summary.Present++
		}
	}
	summary.Absent = summary.Total - summary.Present
	if summary.Total > 0 {
		summary.Rate = oneDecimal(float64(summary.Present) / float64(summary.Total) * 100)
	}
	return summary
}

// MergeDailyRecords maps every roster student to its stored mark. Students
// with no record for the date are absent, not unknown.
func MergeDailyRecords(roster []models.Student, records []models.DailyAttendanceRecord) map[string]bool {
	byStudent := make(map[string]bool, len(records))
	for _, record := range records {
		byStudent[record.StudentID] = record.Present
	}
	merged := make(map[string]bool, len(roster))
	for _, student := range roster {
		merged[student.UserID] = byStudent[student.UserID]
	}
	return merged
}

// BuildDailySubmission produces one write per roster student, in roster
// order. Students absent from present are submitted as absent.
func BuildDailySubmission(roster []models.Student, present map[string]bool, date string, scope models.AttendanceScope) []models.DailySubmission {
	writes := make([]models.DailySubmission, 0, len(roster))
	for _, student := range roster {
		writes = append(writes, models.DailySubmission{
			SchoolID:  scope.SchoolID,
			SessionID: scope.SessionID,
			TermID:    scope.TermID,
			ClassID:   scope.ClassID,
			StudentID: student.UserID,
			Present:   present[student.UserID],
			Date:      date,
		})
	}
	return writes
}

// ManualStats summarises explicit day counts. Only students with a record are
// part of the average, unlike daily mode where unrecorded means absent.
// AverageAttendance is one decimal, "0" when nothing is recorded.
func ManualStats(roster []models.Student, records map[string]int) ManualSummary {
	summary := ManualSummary{
		TotalStudents:     len(roster),
		RecordedStudents:  len(records),
		AverageAttendance: "0",
	}
	for _, days := range records {
		summary.TotalDaysRecorded += days
	}
	if summary.RecordedStudents > 0 {
		summary.AverageAttendance = oneDecimal(float64(summary.TotalDaysRecorded) / float64(summary.RecordedStudents))
	}
	return summary
}

// BuildManualSubmission packs every record into the single bulk body, sorted
// by student ID.
func BuildManualSubmission(records map[string]int) models.BulkAttendanceRequest {
	ids := make([]string, 0, len(records))
	for id := range records {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	req := models.BulkAttendanceRequest{Attendances: make([]models.ManualAttendance, 0, len(ids))}
	for _, id := range ids {
		req.Attendances = append(req.Attendances, models.ManualAttendance{StudentID: id, DaysPresent: records[id]})
	}
	return req
}

// OutOfRange lists students whose count exceeds totalSchoolDays. The bound is
// advisory; the backend is the final arbiter. A non-positive total disables
// the check.
func OutOfRange(records map[string]int, totalSchoolDays int) []string {
	if totalSchoolDays <= 0 {
		return nil
	}
	var ids []string
	for id, days := range records {
		if days > totalSchoolDays {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

func oneDecimal(v float64) string {
	return fmt.Sprintf("%.1f", v)
}
