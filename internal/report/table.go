package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/samber/lo"
)

const (
	ExportFile = "Reports.xlsx"

	SheetShapingGoals = "Shaping Goals"
	SheetInitiatives  = "Initiative Report"
	SheetProjects     = "Project Report"
)

// Table is a named grid of display strings.
type Table struct {
	Name    string     `json:"name"`
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

var (
	ShapingGoalHeaders = []string{"Driver", "Focus Area", "Initiative", "Projects"}

	InitiativeHeaders = []string{
		"ISCM Goal", "Functional Goal", "Initiative", "Exploration", "Evaluation", "POC", "Validation",
		"Estimation", "Decision", "IPR", "Certification", "Primary", "Associate", "Review Frequency", "Review Forum",
	}
	// InitiativeExportHeaders is the narrower column set of the exported sheet.
	InitiativeExportHeaders = []string{
		"ISCM Goal", "Functional Goal", "Initiative", "Exploration", "Evaluation", "POC", "Validation", "Primary", "Review Forum",
	}

	ProjectHeaders = []string{
		"Project Name", "Initiative", "Status", "Timeline", "Primary Responsibility",
		"Feasibility", "Design Validation", "Tech Data Release",
	}
)

func ShapingGoalsTable(rows []ShapingGoalRow) Table {
	return Table{
		Name:    SheetShapingGoals,
		Headers: ShapingGoalHeaders,
		Rows: lo.Map(rows, func(r ShapingGoalRow, _ int) []string {
			return []string{r.Driver, r.FocusArea, r.Initiative, r.Projects}
		}),
	}
}

func InitiativeTable(rows []InitiativeRow) Table {
	return Table{
		Name:    SheetInitiatives,
		Headers: InitiativeHeaders,
		Rows: lo.Map(rows, func(r InitiativeRow, _ int) []string {
			return []string{
				r.ISCMGoal, r.FunctionalGoal, r.Initiative, r.Exploration, r.Evaluation, r.POC, r.Validation,
				r.Estimation, r.Decision, r.IPR, r.Certification, r.Primary, r.Associate, r.ReviewFrequency, r.ReviewForum,
			}
		}),
	}
}

// InitiativeExportTable keeps only the exported initiative columns.
func InitiativeExportTable(rows []InitiativeRow) Table {
	return Table{
		Name:    SheetInitiatives,
		Headers: InitiativeExportHeaders,
		Rows: lo.Map(rows, func(r InitiativeRow, _ int) []string {
			return []string{r.ISCMGoal, r.FunctionalGoal, r.Initiative, r.Exploration, r.Evaluation, r.POC, r.Validation, r.Primary, r.ReviewForum}
		}),
	}
}

func ProjectTable(rows []ProjectRow) Table {
	return Table{
		Name:    SheetProjects,
		Headers: ProjectHeaders,
		Rows: lo.Map(rows, func(r ProjectRow, _ int) []string {
			return []string{r.ProjectName, r.Initiative, r.Status, r.Timeline, r.PrimaryResponsibility, r.Feasibility, r.DesignValidation, r.TechDataRelease}
		}),
	}
}

// Format selects the text rendering of a table.
type Format string

const (
	FormatTable    Format = "table"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
)

// Render writes t to w in the given format.
func Render(w io.Writer, t Table, format Format) error {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.AppendHeader(toRow(t.Headers))
	for _, r := range t.Rows {
		tw.AppendRow(toRow(r))
	}
	switch Format(strings.ToLower(string(format))) {
	case "", FormatTable:
		tw.SetTitle(t.Name)
		tw.Render()
	case FormatCSV:
		tw.RenderCSV()
	case FormatMarkdown:
		tw.RenderMarkdown()
	default:
		return fmt.Errorf("unknown format %q", format)
	}
	return nil
}

func toRow(cells []string) table.Row {
	row := make(table.Row, len(cells))
	for i, c := range cells {
		row[i] = c
	}
	return row
}
