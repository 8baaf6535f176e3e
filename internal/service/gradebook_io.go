package service

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/school-portal-gateway/internal/grading"
	"github.com/noah-isme/school-portal-gateway/internal/models"
	"github.com/noah-isme/school-portal-gateway/internal/session"
	appErrors "github.com/noah-isme/school-portal-gateway/pkg/errors"
	"github.com/noah-isme/school-portal-gateway/pkg/export"
)

// importIDColumn identifies the student column of an uploaded score sheet.
const importIDColumn = "user_id"

// ExportFile is a rendered result sheet ready to download.
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}

// ImportResult reports what an uploaded score sheet contained and how it was saved.
type ImportResult struct {
	Students int        `json:"students"`
	Ignored  []string   `json:"ignored_columns,omitempty"`
	Saved    SaveResult `json:"saved"`
}

// Export renders the result sheet in the requested format. The first column
// is user_id so an exported workbook can be edited and imported again.
func (s *GradebookService) Export(ctx context.Context, sess *session.Session, scope GradebookScope, format export.Format) (*ExportFile, error) {
	sheet, err := s.Sheet(ctx, sess, scope)
	if err != nil {
		return nil, err
	}
	renderer := export.RendererFor(format)
	body, err := renderer.Render(ResultDataset(sheet))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}
	return &ExportFile{
		Filename:    exportFilename(scope, renderer.Extension()),
		ContentType: renderer.ContentType(),
		Body:        body,
	}, nil
}

// ResultDataset lays a result sheet out as a table.
func ResultDataset(sheet *ResultSheet) export.Dataset {
	headers := []string{importIDColumn, "name"}
	for _, component := range sheet.Components {
		headers = append(headers, component.Name)
	}
	headers = append(headers, "total", "percentage", "grade", "remark")

	rows := make([][]string, 0, len(sheet.Students))
	for _, student := range sheet.Students {
		row := []string{student.UserID, student.Name}
		for _, component := range sheet.Components {
			value, ok := student.Scores[grading.NormalizeKey(component.Name)]
			if !ok {
				row = append(row, "")
				continue
			}
			row = append(row, formatScore(value))
		}
		row = append(row, formatScore(student.Total), formatScore(student.Percentage), student.Grade, student.Remark)
		rows = append(rows, row)
	}

	title := "Result sheet " + sheet.Scope.ClassID
	if sheet.Scope.SubjectID != "" {
		title += " / " + sheet.Scope.SubjectID
	}
	return export.Dataset{
		Title:   title,
		Headers: headers,
		Rows:    rows,
		Footer: []string{
			fmt.Sprintf("Class average: %s%% (%s)", formatScore(sheet.ClassAverage), sheet.AverageBadge),
			fmt.Sprintf("Passed: %d of %d", sheet.PassedCount, len(sheet.Students)),
		},
	}
}

// Import reads an xlsx score sheet and saves it like a submitted form.
// Columns are matched to grading components by normalised name; columns that
// match nothing are ignored and reported. Blank cells leave a score untouched.
func (s *GradebookService) Import(ctx context.Context, sess *session.Session, scope GradebookScope, data []byte) (*ImportResult, error) {
	rows, err := export.ReadRows(data)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid score sheet: "+err.Error())
	}
	sheet, err := s.backend.ScoreList(ctx, sess.Token, scope.SchoolID, scope.ClassID, scope.SubjectID)
	if err != nil {
		return nil, err
	}
	form, ignored, err := parseScoreRows(rows, sheet.Grading)
	if err != nil {
		return nil, err
	}

	saved, err := s.saveSheet(ctx, sess, scope, sheet, form, s.bulkUpdate(ctx, sess, scope))
	if err != nil {
		return nil, err
	}
	s.logger.Info("score sheet imported", zap.String("class_id", scope.ClassID), zap.Int("students", len(form)))
	return &ImportResult{Students: len(form), Ignored: ignored, Saved: *saved}, nil
}

// derivedColumns are written by Export and never imported.
var derivedColumns = map[grading.ComponentKey]struct{}{
	"name": {}, "total": {}, "percentage": {}, "grade": {}, "remark": {},
}

type scoreColumn struct {
	index int
	key   grading.ComponentKey
}

// parseScoreRows finds the header row (the first row with a user_id cell,
// so an exported sheet with a title line imports as is) and reads every row
// below it. Only columns naming one of components are read.
func parseScoreRows(rows [][]string, components []models.GradingComponent) (grading.FormState, []string, error) {
	headerRow, idCol := -1, -1
	for r, row := range rows {
		for i, name := range row {
			if grading.NormalizeKey(name) == importIDColumn {
				headerRow, idCol = r, i
				break
			}
		}
		if headerRow >= 0 {
			break
		}
	}
	if headerRow < 0 {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "missing required column: "+importIDColumn)
	}

	known := make(map[grading.ComponentKey]struct{}, len(components))
	for _, component := range components {
		known[grading.NormalizeKey(component.Name)] = struct{}{}
	}

	header := rows[headerRow]
	seen := make(map[grading.ComponentKey]string)
	var columns []scoreColumn
	var ignored []string
	for i, name := range header {
		key := grading.NormalizeKey(name)
		if i == idCol || key == "" {
			continue
		}
		if first, dup := seen[key]; dup {
			return nil, nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("duplicate column %q (same as %q)", strings.TrimSpace(name), first))
		}
		seen[key] = strings.TrimSpace(name)
		if _, ok := known[key]; !ok || isDerived(key) {
			ignored = append(ignored, strings.TrimSpace(name))
			continue
		}
		columns = append(columns, scoreColumn{index: i, key: key})
	}

	form := grading.FormState{}
	for n, row := range rows[headerRow+1:] {
		userID := ""
		if idCol < len(row) {
			userID = strings.TrimSpace(row[idCol])
		}
		if userID == "" {
			continue
		}
		for _, col := range columns {
			if col.index >= len(row) || strings.TrimSpace(row[col.index]) == "" {
				continue
			}
			value, err := strconv.ParseFloat(strings.TrimSpace(row[col.index]), 64)
			if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
				return nil, nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("row %d: invalid score %q in column %s", headerRow+n+2, row[col.index], header[col.index]))
			}
			form.Set(userID, col.key, value)
		}
	}
	return form, ignored, nil
}

func isDerived(key grading.ComponentKey) bool {
	_, ok := derivedColumns[key]
	return ok
}

func formatScore(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}

func exportFilename(scope GradebookScope, ext string) string {
	parts := []string{"results", scope.SchoolID, scope.ClassID}
	if scope.SubjectID != "" {
		parts = append(parts, scope.SubjectID)
	}
	return strings.Join(parts, "-") + "." + ext
}
