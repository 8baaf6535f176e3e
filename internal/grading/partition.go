package grading

import (
	"github.com/noah-isme/school-portal-gateway/internal/models"
)

// SavePlan splits submitted scores by the backend route that must receive
// them: pairs with no backend record go to the assign route, pairs that
// already have one go to the edit route.
type SavePlan struct {
	ToCreate []models.StudentScores `json:"to_create"`
	ToUpdate []models.StudentScores `json:"to_update"`
}

// Empty reports whether there is nothing to send.
func (p SavePlan) Empty() bool {
	return len(p.ToCreate) == 0 && len(p.ToUpdate) == 0
}

// Counts returns the number of (student, component) pairs per batch.
func (p SavePlan) Counts() (created, updated int) {
	for _, s := range p.ToCreate {
		created += len(s.Scores)
	}
	for _, s := range p.ToUpdate {
		updated += len(s.Scores)
	}
	return created, updated
}

// PartitionForSave walks every (student, component) pair of the form and
// places it in exactly one batch depending on whether prior already holds a
// record for it. Component names sent to the backend are the configured
// display names; keys the grading setting does not know are dropped.
// Students are emitted in sorted order and components in setting order.
func PartitionForSave(form FormState, components []models.GradingComponent, prior PriorScores) SavePlan {
	plan := SavePlan{}
	for _, userID := range form.StudentIDs() {
		row := form[userID]
		create := models.StudentScores{UserID: userID}
		update := models.StudentScores{UserID: userID}
		seen := make(map[ComponentKey]struct{}, len(components))

		for _, component := range components {
			key := NormalizeKey(component.Name)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}

			value, ok := row[key]
			if !ok {
				continue
			}
			entry := models.ComponentScore{ComponentName: component.Name, Score: models.ScoreValue(value)}
			if prior.Has(userID, key) {
				update.Scores = append(update.Scores, entry)
			} else {
				create.Scores = append(create.Scores, entry)
			}
		}

		if len(create.Scores) > 0 {
			plan.ToCreate = append(plan.ToCreate, create)
		}
		if len(update.Scores) > 0 {
			plan.ToUpdate = append(plan.ToUpdate, update)
		}
	}
	return plan
}
