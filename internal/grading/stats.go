package grading

import (
	"github.com/noah-isme/school-portal-gateway/internal/models"
)

// ClassStats summarises a student's subjects for one term.
type ClassStats struct {
	Average        float64 `json:"average"`
	TotalSubjects  int     `json:"total_subjects"`
	PassedSubjects int     `json:"passed_subjects"`
}

// SessionStats summarises a student's terms across an academic session.
type SessionStats struct {
	PerTermAverage []float64 `json:"per_term_average"`
	Overall        float64   `json:"overall"`
	BestTerm       float64   `json:"best_term"`
	Improvement    float64   `json:"improvement"`
}

// AggregateClassStats averages total_score across subjects and counts those at
// or above half of their grading total.
func AggregateClassStats(subjects []models.SubjectResult) ClassStats {
	stats := ClassStats{TotalSubjects: len(subjects)}
	if len(subjects) == 0 {
		return stats
	}
	var sum float64
	for _, subject := range subjects {
		sum += subject.TotalScore
		if Passed(subject.TotalScore, subject.GradingTotal) {
			stats.PassedSubjects++
		}
	}
	stats.Average = sum / float64(len(subjects))
	return stats
}

// AggregateSessionStats averages each term's subject totals as percentages,
// assuming every subject is scored out of 100. Improvement compares the last
// term to the first and is zero with fewer than two terms.
func AggregateSessionStats(terms []models.TermResult) SessionStats {
	stats := SessionStats{PerTermAverage: make([]float64, 0, len(terms))}
	if len(terms) == 0 {
		return stats
	}

	var sum float64
	for i, term := range terms {
		avg := termAverage(term)
		stats.PerTermAverage = append(stats.PerTermAverage, avg)
		sum += avg
		if i == 0 || avg > stats.BestTerm {
			stats.BestTerm = avg
		}
	}
	stats.Overall = sum / float64(len(terms))
	if len(terms) >= 2 {
		stats.Improvement = stats.PerTermAverage[len(terms)-1] - stats.PerTermAverage[0]
	}
	return stats
}

func termAverage(term models.TermResult) float64 {
	if len(term.Scores) == 0 {
		return 0
	}
	var sum float64
	for _, score := range term.Scores {
		sum += score.TotalScore / 100
	}
	return sum / float64(len(term.Scores)) * 100
}
