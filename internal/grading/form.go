// Package grading holds the score arithmetic shared by every gradebook
// surface: component key normalisation, clamped totals, grade banding,
// create/update partitioning and class/session statistics. Everything here is
// pure and synchronous.
package grading

import (
	"sort"
	"strings"

	"github.com/noah-isme/school-portal-gateway/internal/models"
)

// ComponentKey is the canonical lookup key of a grading component.
type ComponentKey string

// NormalizeKey trims the name, collapses every whitespace run into a single
// underscore and lowercases the result. It is applied both when scores are
// loaded and when they are saved, so "Mid Term", "mid  term" and "MID\tTERM"
// share one slot. NormalizeKey is idempotent.
func NormalizeKey(name string) ComponentKey {
	return ComponentKey(strings.ToLower(strings.Join(strings.Fields(name), "_")))
}

// FormState is the typed nested mapping user_id -> component key -> score.
type FormState map[string]map[ComponentKey]float64

// Set stores a score, creating the student's row on demand.
func (f FormState) Set(userID string, key ComponentKey, score float64) {
	row, ok := f[userID]
	if !ok {
		row = make(map[ComponentKey]float64)
		f[userID] = row
	}
	row[key] = score
}

// StudentIDs returns the students present in the form in a stable order.
func (f FormState) StudentIDs() []string {
	ids := make([]string, 0, len(f))
	for id := range f {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// NewFormState builds a form state from loosely keyed input such as a request
// body, normalising every component name. Rows for unknown students are kept;
// the backend decides whether they are valid.
func NewFormState(raw map[string]map[string]models.ScoreValue) FormState {
	form := make(FormState, len(raw))
	for userID, row := range raw {
		userID = strings.TrimSpace(userID)
		if userID == "" {
			continue
		}
		for name, value := range row {
			key := NormalizeKey(name)
			if key == "" {
				continue
			}
			form.Set(userID, key, float64(value))
		}
	}
	return form
}

// FormStateFromRoster seeds the form with the scores already persisted for
// each roster student.
func FormStateFromRoster(roster []models.Student) FormState {
	form := make(FormState, len(roster))
	for _, student := range roster {
		if _, ok := form[student.UserID]; !ok {
			form[student.UserID] = make(map[ComponentKey]float64)
		}
		for _, score := range student.Scores {
			form.Set(student.UserID, NormalizeKey(score.ComponentName), float64(score.Score))
		}
	}
	return form
}

// PriorScores indexes persisted scores as user_id -> set of component keys.
type PriorScores map[string]map[ComponentKey]struct{}

// Has reports whether a backend record already exists for the pair.
func (p PriorScores) Has(userID string, key ComponentKey) bool {
	row, ok := p[userID]
	if !ok {
		return false
	}
	_, ok = row[key]
	return ok
}

// PriorScoresFromRoster indexes the scores attached to roster students.
func PriorScoresFromRoster(roster []models.Student) PriorScores {
	prior := make(PriorScores, len(roster))
	for _, student := range roster {
		for _, score := range student.Scores {
			row, ok := prior[student.UserID]
			if !ok {
				row = make(map[ComponentKey]struct{})
				prior[student.UserID] = row
			}
			row[NormalizeKey(score.ComponentName)] = struct{}{}
		}
	}
	return prior
}
