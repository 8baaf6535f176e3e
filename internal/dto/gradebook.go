package dto

import "github.com/noah-isme/school-portal-gateway/internal/models"

// SaveScoresRequest is the whole-class score form: user_id -> component name -> score.
// Component names are normalised on arrival, so "Mid Term" and "mid_term" are the same column.
type SaveScoresRequest struct {
	Scores map[string]map[string]models.ScoreValue `json:"scores" validate:"required,min=1"`
}

// SaveStudentScoresRequest is the one-off edit sheet of a single student.
type SaveStudentScoresRequest struct {
	Scores map[string]models.ScoreValue `json:"scores" validate:"required,min=1"`
}
