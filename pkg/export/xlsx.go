// Package export renders rubrics and grading results as xlsx workbooks.
package export

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/noah-isme/coachdesk-api/internal/models"
)

const maxColumnWidth = 50

// RubricWorkbook renders one rubric section as a workbook: a merged title
// row with the total weight, a spacer, then one row per criterion with its
// level descriptions laid out across the level columns.
func RubricWorkbook(header string, criteria []models.Criterion) (*excelize.File, error) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	if err := f.SetSheetName(sheet, header); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	sheet = header

	maxLevels := 0
	for _, criterion := range criteria {
		if len(criterion.Levels) > maxLevels {
			maxLevels = len(criterion.Levels)
		}
	}

	headers := []string{"Criteria", "Weight"}
	for i := 0; i < maxLevels; i++ {
		headers = append(headers, levelHeader(i, maxLevels))
	}

	title := fmt.Sprintf("%s (Total: %d points)", header, models.TotalWeight(criteria))
	if err := f.SetCellValue(sheet, "A1", title); err != nil {
		return nil, fmt.Errorf("write title: %w", err)
	}

	lastCol, err := excelize.ColumnNumberToName(len(headers))
	if err != nil {
		return nil, fmt.Errorf("resolve last column: %w", err)
	}
	if err := f.MergeCell(sheet, "A1", lastCol+"1"); err != nil {
		return nil, fmt.Errorf("merge title: %w", err)
	}

	titleStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 18},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
	})
	if err != nil {
		return nil, fmt.Errorf("build title style: %w", err)
	}
	if err := f.SetCellStyle(sheet, "A1", lastCol+"1", titleStyle); err != nil {
		return nil, fmt.Errorf("style title: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 13},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
	})
	if err != nil {
		return nil, fmt.Errorf("build header style: %w", err)
	}

	// Row 2 stays blank; headers go on row 3, data from row 4.
	if err := setRow(f, sheet, 3, toAny(headers)); err != nil {
		return nil, err
	}
	firstHeader, _ := excelize.CoordinatesToCellName(1, 3)
	lastHeader, _ := excelize.CoordinatesToCellName(len(headers), 3)
	if err := f.SetCellStyle(sheet, firstHeader, lastHeader, headerStyle); err != nil {
		return nil, fmt.Errorf("style headers: %w", err)
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}

	for rowIdx, criterion := range criteria {
		row := make([]any, len(headers))
		row[0] = criterion.Name
		row[1] = criterion.Weight
		for i := 0; i < maxLevels; i++ {
			if i < len(criterion.Levels) {
				row[i+2] = criterion.Levels[i].Description
			} else {
				row[i+2] = ""
			}
		}
		if err := setRow(f, sheet, 4+rowIdx, row); err != nil {
			return nil, err
		}
		for i, cell := range row {
			if l := len(fmt.Sprint(cell)); l > widths[i] {
				widths[i] = l
			}
		}
	}

	for i, width := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, fmt.Errorf("resolve column: %w", err)
		}
		fitted := width + 2
		if fitted > maxColumnWidth {
			fitted = maxColumnWidth
		}
		if err := f.SetColWidth(sheet, col, col, float64(fitted)); err != nil {
			return nil, fmt.Errorf("set column width: %w", err)
		}
	}

	return f, nil
}

// levelHeader names a level column with the percentage of the scale it
// starts at. A single-level rubric covers the whole scale.
func levelHeader(index, maxLevels int) string {
	percent := 100.0
	if maxLevels > 1 {
		percent = float64(index) * (100.0 / float64(maxLevels-1))
	}
	return fmt.Sprintf("Level %d (%g%%)", index, percent)
}

var resultColumns = []string{
	"user_id",
	"user_name",
	"user_email",
	"task_id",
	"scope_overall_grade",
	"scope_overall_comment",
	"quality_overall_grade",
	"quality_overall_comment",
	"scope_criteria",
	"quality_criteria",
}

// GradingResultsWorkbook renders all grading results for a task as one
// flat sheet, one row per learner. Criteria grades are flattened into a
// single delimited cell.
func GradingResultsWorkbook(taskID string, results []models.GradingResult, users []models.SubmissionUser) (*excelize.File, error) {
	byID := make(map[string]models.SubmissionUser, len(users))
	for _, user := range users {
		byID[user.UserID] = user
	}

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	if err := f.SetSheetName(sheet, "Grading Results"); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	sheet = "Grading Results"

	if err := setRow(f, sheet, 1, toAny(resultColumns)); err != nil {
		return nil, err
	}

	widths := make([]int, len(resultColumns))
	for i, column := range resultColumns {
		widths[i] = len(column)
	}

	for rowIdx, result := range results {
		name := "Unknown Username"
		email := "Unknown Email"
		if user, ok := byID[fmt.Sprint(result.UserID)]; ok {
			name = user.FullName
			email = user.Email
		}

		row := []any{
			result.UserID,
			name,
			email,
			taskID,
			result.Scope.OverallGrade,
			result.Scope.OverallComment,
			result.Quality.OverallGrade,
			result.Quality.OverallComment,
			joinCriteria(result.Scope.Criteria),
			joinCriteria(result.Quality.Criteria),
		}
		if err := setRow(f, sheet, 2+rowIdx, row); err != nil {
			return nil, err
		}
		for i, cell := range row {
			l := len(fmt.Sprint(cell))
			if l > maxColumnWidth {
				l = maxColumnWidth
			}
			if l > widths[i] {
				widths[i] = l
			}
		}
	}

	for i, width := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, fmt.Errorf("resolve column: %w", err)
		}
		if err := f.SetColWidth(sheet, col, col, float64(width)); err != nil {
			return nil, fmt.Errorf("set column width: %w", err)
		}
	}

	return f, nil
}

func joinCriteria(criteria []models.CriterionGrade) string {
	parts := make([]string, 0, len(criteria))
	for _, criterion := range criteria {
		parts = append(parts, fmt.Sprintf("%s: %d - %s", criterion.Name, criterion.Grade, criterion.Comment))
	}
	return strings.Join(parts, " | ")
}

// UserReportWorkbook renders one learner's graded rubric as a two-section
// report: scope then quality, each with its criteria table and overall
// verdict, closed by the combined final grade.
func UserReportWorkbook(result models.GradingResult) (*excelize.File, error) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	if err := f.SetSheetName(sheet, "Grading Report"); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	sheet = "Grading Report"

	row := 1
	var err error
	if row, err = writeReportSection(f, sheet, row, "Scope Grading Report", result.Scope); err != nil {
		return nil, err
	}
	row++ // spacer between sections
	if row, err = writeReportSection(f, sheet, row, "Quality Grading Report", result.Quality); err != nil {
		return nil, err
	}
	row++
	if err := setRow(f, sheet, row, []any{"Final Grade", result.FinalGrade(), "", ""}); err != nil {
		return nil, err
	}

	for i, width := range []float64{30, 10, 40, 50} {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, fmt.Errorf("resolve column: %w", err)
		}
		if err := f.SetColWidth(sheet, col, col, width); err != nil {
			return nil, fmt.Errorf("set column width: %w", err)
		}
	}

	return f, nil
}

func writeReportSection(f *excelize.File, sheet string, row int, title string, section models.GradingSection) (int, error) {
	titleStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"4472C4"}},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return row, fmt.Errorf("build section style: %w", err)
	}

	if err := setRow(f, sheet, row, []any{title, "", "", ""}); err != nil {
		return row, err
	}
	cell, _ := excelize.CoordinatesToCellName(1, row)
	if err := f.SetCellStyle(sheet, cell, cell, titleStyle); err != nil {
		return row, fmt.Errorf("style section title: %w", err)
	}
	row++

	if err := setRow(f, sheet, row, []any{"Criteria", "Grade", "Chosen Level", "Comment"}); err != nil {
		return row, err
	}
	row++

	for _, criterion := range section.Criteria {
		if err := setRow(f, sheet, row, []any{criterion.Name, criterion.Grade, criterion.ChosenLevel, criterion.Comment}); err != nil {
			return row, err
		}
		row++
	}

	if err := setRow(f, sheet, row, []any{"Overall Grade", section.OverallGrade, "", ""}); err != nil {
		return row, err
	}
	row++
	if err := setRow(f, sheet, row, []any{"Overall Comment", "", "", section.OverallComment}); err != nil {
		return row, err
	}
	row++

	return row, nil
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("resolve row %d: %w", row, err)
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write row %d: %w", row, err)
	}
	return nil
}

func toAny(values []string) []any {
	converted := make([]any, len(values))
	for i, v := range values {
		converted[i] = v
	}
	return converted
}
