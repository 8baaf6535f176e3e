package service

import (
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/school-portal-gateway/internal/grading"
	"github.com/noah-isme/school-portal-gateway/internal/models"
	appErrors "github.com/noah-isme/school-portal-gateway/pkg/errors"
)

// ClassStatsRequest carries a student's subject results for one term.
type ClassStatsRequest struct {
	Subjects []models.SubjectResult `json:"subjects" validate:"dive"`
}

// ClassStatsReport adds the average badge to the class statistics.
type ClassStatsReport struct {
	grading.ClassStats
	Badge string `json:"badge"`
}

// SessionStatsRequest carries a student's results for every term of a session.
type SessionStatsRequest struct {
	Terms []models.TermResult `json:"terms" validate:"dive"`
}

// ReportService computes report-card statistics from submitted results.
type ReportService struct {
	validator *validator.Validate
	logger    *zap.Logger
}

// NewReportService constructs a ReportService.
func NewReportService(validate *validator.Validate, logger *zap.Logger) *ReportService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{validator: validate, logger: logger}
}

// ClassStats averages subject totals and counts passed subjects.
func (s *ReportService) ClassStats(req ClassStatsRequest) (*ClassStatsReport, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "scores cannot be negative")
	}
	stats := grading.AggregateClassStats(req.Subjects)
	return &ClassStatsReport{ClassStats: stats, Badge: grading.ClassifyAverage(stats.Average)}, nil
}

// SessionStats averages each term and reports the best term and the change
// from the first term to the last. Subjects are assumed to be out of 100.
func (s *ReportService) SessionStats(req SessionStatsRequest) (*grading.SessionStats, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "scores cannot be negative")
	}
	for _, term := range req.Terms {
		for _, subject := range term.Scores {
			if subject.GradingTotal > 0 && subject.GradingTotal != 100 {
				s.logger.Debug("session average assumes subjects out of 100", zap.String("subject", subject.SubjectName), zap.Float64("grading_total", subject.GradingTotal))
			}
		}
	}
	stats := grading.AggregateSessionStats(req.Terms)
	return &stats, nil
}
