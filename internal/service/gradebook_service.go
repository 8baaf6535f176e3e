package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/school-portal-gateway/internal/grading"
	"github.com/noah-isme/school-portal-gateway/internal/models"
	"github.com/noah-isme/school-portal-gateway/internal/session"
	appErrors "github.com/noah-isme/school-portal-gateway/pkg/errors"
)

type scoreBackend interface {
	ScoreList(ctx context.Context, token, school, class, subject string) (*models.ScoreSheet, error)
	AssignScores(ctx context.Context, token, school, class, subject string, batch models.ScoreBatch) error
	EditStudentScores(ctx context.Context, token, school, class string, scores models.StudentScores) error
	EditBulkScores(ctx context.Context, token, school, class, subject string, batch models.ScoreBatch) error
}

// GradebookScope addresses one class gradebook, or one subject within it.
type GradebookScope struct {
	SchoolID  string `json:"school_id"`
	ClassID   string `json:"class_id"`
	SubjectID string `json:"subject_id,omitempty"`
}

// StudentResult is one row of the result sheet.
type StudentResult struct {
	UserID     string                           `json:"user_id"`
	StudentID  string                           `json:"student_id,omitempty"`
	Name       string                           `json:"name"`
	Scores     map[grading.ComponentKey]float64 `json:"scores"`
	Total      float64                          `json:"total"`
	Percentage float64                          `json:"percentage"`
	Grade      string                           `json:"grade"`
	Remark     string                           `json:"remark"`
	Passed     bool                             `json:"passed"`
}

// ResultSheet is a class roster with every derived figure computed.
type ResultSheet struct {
	Scope         GradebookScope            `json:"scope"`
	Components    []models.GradingComponent `json:"components"`
	TotalPossible float64                   `json:"total_possible"`
	Students      []StudentResult           `json:"students"`
	ClassAverage  float64                   `json:"class_average"`
	AverageBadge  string                    `json:"average_badge"`
	PassedCount   int                       `json:"passed_count"`
	Form          grading.FormState         `json:"form"`
}

// SaveResult reports how many (student, component) pairs went to each route.
type SaveResult struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
}

// GradebookService loads result sheets and saves teacher-entered scores.
type GradebookService struct {
	backend scoreBackend
	logger  *zap.Logger
}

// NewGradebookService constructs a GradebookService.
func NewGradebookService(backend scoreBackend, logger *zap.Logger) *GradebookService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GradebookService{backend: backend, logger: logger}
}

// Sheet loads the roster and computes totals and grades for every student.
func (s *GradebookService) Sheet(ctx context.Context, sess *session.Session, scope GradebookScope) (*ResultSheet, error) {
	sheet, err := s.backend.ScoreList(ctx, sess.Token, scope.SchoolID, scope.ClassID, scope.SubjectID)
	if err != nil {
		return nil, err
	}
	return BuildResultSheet(scope, sheet), nil
}

// BuildResultSheet derives the result sheet from a backend score list.
func BuildResultSheet(scope GradebookScope, sheet *models.ScoreSheet) *ResultSheet {
	roster := rosterOf(sheet)
	form := grading.FormStateFromRoster(roster)
	possible := grading.TotalPossible(sheet.Grading)

	result := &ResultSheet{
		Scope:         scope,
		Components:    sheet.Grading,
		TotalPossible: possible,
		Students:      make([]StudentResult, 0, len(roster)),
		Form:          form,
	}

	var percentSum float64
	for _, student := range roster {
		scores := form[student.UserID]
		total := grading.ComputeStudentTotal(scores, sheet.Grading)
		class := grading.ClassifyScore(total, possible)
		row := StudentResult{
			UserID:     student.UserID,
			StudentID:  student.StudentID,
			Name:       student.FullName(),
			Scores:     scores,
			Total:      total,
			Percentage: grading.Percentage(total, possible),
			Grade:      class.Grade,
			Remark:     class.Remark,
			Passed:     grading.Passed(total, possible),
		}
		if row.Passed {
			result.PassedCount++
		}
		percentSum += row.Percentage
		result.Students = append(result.Students, row)
	}

	if len(result.Students) > 0 {
		result.ClassAverage = percentSum / float64(len(result.Students))
	}
	result.AverageBadge = grading.ClassifyAverage(result.ClassAverage)
	return result
}

// Save partitions submitted scores against the persisted ones and sends new
// pairs to the assign route and existing pairs to the bulk edit route. An
// empty partition is ErrNoChanges and nothing is sent.
func (s *GradebookService) Save(ctx context.Context, sess *session.Session, scope GradebookScope, form grading.FormState) (*SaveResult, error) {
	return s.save(ctx, sess, scope, form, s.bulkUpdate(ctx, sess, scope))
}

func (s *GradebookService) bulkUpdate(ctx context.Context, sess *session.Session, scope GradebookScope) func(grading.SavePlan) error {
	return func(plan grading.SavePlan) error {
		return s.backend.EditBulkScores(ctx, sess.Token, scope.SchoolID, scope.ClassID, scope.SubjectID, models.ScoreBatch{Scores: plan.ToUpdate})
	}
}

// SaveStudent saves the one-off edit sheet of a single student. Components
// the student already has go through the single-student edit route; the rest
// are assigned.
func (s *GradebookService) SaveStudent(ctx context.Context, sess *session.Session, scope GradebookScope, userID string, scores map[grading.ComponentKey]float64) (*SaveResult, error) {
	form := grading.FormState{}
	for key, value := range scores {
		form.Set(userID, key, value)
	}
	return s.save(ctx, sess, scope, form, func(plan grading.SavePlan) error {
		return s.backend.EditStudentScores(ctx, sess.Token, scope.SchoolID, scope.ClassID, plan.ToUpdate[0])
	})
}

func (s *GradebookService) save(ctx context.Context, sess *session.Session, scope GradebookScope, form grading.FormState, update func(grading.SavePlan) error) (*SaveResult, error) {
	sheet, err := s.backend.ScoreList(ctx, sess.Token, scope.SchoolID, scope.ClassID, scope.SubjectID)
	if err != nil {
		return nil, err
	}
	return s.saveSheet(ctx, sess, scope, sheet, form, update)
}

func (s *GradebookService) saveSheet(ctx context.Context, sess *session.Session, scope GradebookScope, sheet *models.ScoreSheet, form grading.FormState, update func(grading.SavePlan) error) (*SaveResult, error) {
	roster := rosterOf(sheet)
	if err := validateForm(form, roster, sheet.Grading); err != nil {
		return nil, err
	}

	plan := grading.PartitionForSave(form, sheet.Grading, grading.PriorScoresFromRoster(roster))
	if plan.Empty() {
		return nil, appErrors.ErrNoChanges
	}

	if len(plan.ToCreate) > 0 {
		if err := s.backend.AssignScores(ctx, sess.Token, scope.SchoolID, scope.ClassID, scope.SubjectID, models.ScoreBatch{Scores: plan.ToCreate}); err != nil {
			return nil, err
		}
	}
	if len(plan.ToUpdate) > 0 {
		if err := update(plan); err != nil {
			if len(plan.ToCreate) > 0 {
				s.logger.Warn("scores partially saved: assign succeeded, edit failed",
					zap.String("school_id", scope.SchoolID),
					zap.String("class_id", scope.ClassID),
					zap.String("user_id", sess.UserID()),
				)
			}
			return nil, err
		}
	}

	created, updated := plan.Counts()
	s.logger.Info("scores saved",
		zap.String("school_id", scope.SchoolID),
		zap.String("class_id", scope.ClassID),
		zap.String("subject_id", scope.SubjectID),
		zap.String("user_id", sess.UserID()),
		zap.Int("created", created),
		zap.Int("updated", updated),
	)
	return &SaveResult{Created: created, Updated: updated}, nil
}

func rosterOf(sheet *models.ScoreSheet) []models.Student {
	roster := make([]models.Student, 0, len(sheet.Students))
	for _, entry := range sheet.Students {
		roster = append(roster, entry.Student)
	}
	return roster
}

// validateForm rejects rows for students outside the roster and values
// outside [0, weight] for known components. NaN and infinities are never in range.
func validateForm(form grading.FormState, roster []models.Student, components []models.GradingComponent) error {
	known := make(map[string]struct{}, len(roster))
	for _, student := range roster {
		known[student.UserID] = struct{}{}
	}
	weights := make(map[grading.ComponentKey]models.GradingComponent, len(components))
	for _, component := range components {
		weights[grading.NormalizeKey(component.Name)] = component
	}

	var problems []string
	for _, userID := range form.StudentIDs() {
		if _, ok := known[userID]; !ok {
			problems = append(problems, fmt.Sprintf("%s is not on the class roster", userID))
			continue
		}
		keys := make([]string, 0, len(form[userID]))
		for key := range form[userID] {
			keys = append(keys, string(key))
		}
		sort.Strings(keys)
		for _, key := range keys {
			component, ok := weights[grading.ComponentKey(key)]
			if !ok {
				continue
			}
			value := form[userID][grading.ComponentKey(key)]
			if math.IsNaN(value) || math.IsInf(value, 0) || value < 0 || value > component.Weight {
				problems = append(problems, fmt.Sprintf("%s: %s must be between 0 and %g", userID, component.Name, component.Weight))
			}
		}
	}
	if len(problems) > 0 {
		return appErrors.Clone(appErrors.ErrValidation, strings.Join(problems, "; "))
	}
	return nil
}
