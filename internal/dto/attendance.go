package dto

// DailyAttendanceRequest marks students present for one date. Roster
// students missing from Present are submitted as absent.
type DailyAttendanceRequest struct {
	Present map[string]bool `json:"present"`
}

// ManualAttendanceRequest carries term-long day counts per student.
type ManualAttendanceRequest struct {
	Records         map[string]int `json:"records" validate:"required,min=1"`
	TotalSchoolDays int            `json:"total_school_days" validate:"gte=0"`
}
