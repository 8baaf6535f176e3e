package models

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// GradingComponent is one weighted part of a subject total. Weight is the
// maximum number of points the component can contribute.
type GradingComponent struct {
	Name   string  `json:"name" validate:"required"`
	Weight float64 `json:"weight" validate:"gt=0"`
}

// GradingSetting is the ordered component set configured for a class or subject.
type GradingSetting struct {
	Components []GradingComponent `json:"components" validate:"required,min=1,dive"`
}

// ScoreValue is a score as typed into a form or stored by the backend. It
// accepts JSON numbers, numeric strings, empty strings and null; anything
// non-numeric decodes to zero.
type ScoreValue float64

// UnmarshalJSON implements json.Unmarshaler.
func (v *ScoreValue) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "" || raw == "null" {
		*v = 0
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			*v = 0
			return nil
		}
		*v = ScoreValue(ParseScore(s))
		return nil
	}
	*v = ScoreValue(ParseScore(raw))
	return nil
}

// ParseScore converts free-form input to a score, treating anything that is
// not a finite number as zero.
func ParseScore(raw string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// ComponentScore is a persisted or submitted score for one component.
type ComponentScore struct {
	ComponentName string     `json:"component_name"`
	Score         ScoreValue `json:"score"`
}

// StudentScores groups component scores for one student. It is both the
// item of a bulk batch and the body of a single-student edit.
type StudentScores struct {
	UserID string           `json:"user_id"`
	Scores []ComponentScore `json:"scores"`
}

// ScoreBatch is the body of the assign and bulk-edit backend routes.
type ScoreBatch struct {
	Scores []StudentScores `json:"scores"`
}

// ScoreListEntry wraps a roster student in the score-list response.
type ScoreListEntry struct {
	Student Student `json:"student"`
}

// ScoreSheet is one element of the score-list response.
type ScoreSheet struct {
	Students []ScoreListEntry   `json:"students"`
	Grading  []GradingComponent `json:"grading"`
	Class    json.RawMessage    `json:"class,omitempty"`
}

// ScoreListResponse mirrors the nested backend envelope of the score-list route.
type ScoreListResponse struct {
	Data struct {
		Data []ScoreSheet `json:"data"`
	} `json:"data"`
}

// SubjectResult is a subject's aggregated outcome used by report statistics.
type SubjectResult struct {
	SubjectName  string  `json:"subject_name,omitempty"`
	TotalScore   float64 `json:"total_score" validate:"gte=0"`
	GradingTotal float64 `json:"grading_total" validate:"gte=0"`
}

// TermResult holds the subject results of one term.
type TermResult struct {
	TermName string          `json:"term_name,omitempty"`
	Scores   []SubjectResult `json:"scores" validate:"dive"`
}
