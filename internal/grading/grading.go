package grading

import (
	"math"

	"github.com/noah-isme/school-portal-gateway/internal/models"
)

// PassMark is the fraction of the attainable total needed to pass a subject.
const PassMark = 0.5

// Classification is a banded grade with its remark.
type Classification struct {
	Grade  string `json:"grade"`
	Remark string `json:"remark"`
}

type band struct {
	min float64
	Classification
}

// gradeBands is the nine-band secondary-school scale, highest first.
var gradeBands = []band{
	{75, Classification{"A1", "Excellent"}},
	{70, Classification{"B2", "Very Good"}},
	{65, Classification{"B3", "Good"}},
	{60, Classification{"C4", "Credit"}},
	{55, Classification{"C5", "Credit"}},
	{50, Classification{"C6", "Credit"}},
	{45, Classification{"D7", "Pass"}},
	{40, Classification{"E8", "Pass"}},
}

var failBand = Classification{"F9", "Fail"}

// ComputeStudentTotal sums a student's component scores, reading a missing
// component as zero and clamping each value into [0, weight]. The result
// never exceeds TotalPossible(components).
func ComputeStudentTotal(scores map[ComponentKey]float64, components []models.GradingComponent) float64 {
	var total float64
	for _, component := range components {
		total += clampScore(scores[NormalizeKey(component.Name)], component.Weight)
	}
	return total
}

// TotalPossible is the sum of all component weights.
func TotalPossible(components []models.GradingComponent) float64 {
	var total float64
	for _, component := range components {
		if component.Weight > 0 {
			total += component.Weight
		}
	}
	return total
}

func clampScore(value, weight float64) float64 {
	if math.IsNaN(value) || value <= 0 || weight <= 0 {
		return 0
	}
	return math.Min(value, weight)
}

// Percentage expresses total as a percentage of possible. A non-positive
// possible total yields zero.
func Percentage(total, possible float64) float64 {
	if possible <= 0 {
		return 0
	}
	return total * 100 / possible
}

// ClassifyScore bands a subject total on the nine-band scale. Lower bounds
// are inclusive: 75 is A1, 74.9 is B2.
func ClassifyScore(total, possible float64) Classification {
	pct := Percentage(total, possible)
	for _, b := range gradeBands {
		if pct >= b.min {
			return b.Classification
		}
	}
	return failBand
}

// ClassifyAverage is the coarse badge shown for class averages. It is a
// separate scale from ClassifyScore and takes a percentage directly.
func ClassifyAverage(average float64) string {
	switch {
	case average >= 80:
		return "A"
	case average >= 70:
		return "B"
	case average >= 60:
		return "C"
	case average >= 50:
		return "D"
	default:
		return "F"
	}
}

// Passed reports whether total reaches the pass mark of possible.
func Passed(total, possible float64) bool {
	return total >= possible*PassMark
}
