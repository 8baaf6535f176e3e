package models

import "strings"

// Student is a roster entry as the backend returns it. UserID is the identity key.
type Student struct {
	UserID    string           `json:"user_id"`
	FirstName string           `json:"first_name"`
	LastName  string           `json:"last_name"`
	Email     string           `json:"email"`
	StudentID string           `json:"student_id,omitempty"`
	Scores    []ComponentScore `json:"scores,omitempty"`
}

// FullName joins first and last name, skipping empty parts.
func (s Student) FullName() string {
	return strings.TrimSpace(strings.Join([]string{strings.TrimSpace(s.FirstName), strings.TrimSpace(s.LastName)}, " "))
}
