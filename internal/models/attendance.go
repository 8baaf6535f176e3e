package models

// DailyAttendanceRecord is a stored present/absent mark for one student and date.
type DailyAttendanceRecord struct {
	StudentID string `json:"student_id"`
	Present   bool   `json:"present"`
}

// DailyAttendanceResponse mirrors the backend daily attendance read.
type DailyAttendanceResponse struct {
	Data struct {
		Attendance []DailyAttendanceRecord `json:"attendance"`
	} `json:"data"`
}

// DailySubmission is the body of one submit-daily write. One is sent per student.
type DailySubmission struct {
	SchoolID  string `json:"school_id"`
	SessionID string `json:"session_id"`
	TermID    string `json:"term_id"`
	ClassID   string `json:"class_id"`
	StudentID string `json:"student_id"`
	Present   bool   `json:"present"`
	Date      string `json:"date"`
}

// ManualAttendance is a term-long days-present count for one student.
type ManualAttendance struct {
	StudentID   string `json:"student_id"`
	DaysPresent int    `json:"days_present"`
}

// BulkAttendanceRequest is the single body of the submit-bulk write.
type BulkAttendanceRequest struct {
	Attendances []ManualAttendance `json:"attendances"`
}

// AttendanceScope identifies the class and calendar slot attendance belongs to.
type AttendanceScope struct {
	SchoolID  string
	SessionID string
	TermID    string
	ClassID   string
}
