package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"goalboard/internal/domain"
	"goalboard/internal/store"
)

func fixture(t *testing.T) *store.Store {
	t.Helper()
	s := store.New()
	in := domain.Initiative{
		ID:             "i1",
		Name:           "NPD Initiative 2025-26",
		InitiativeName: "Test",
		GoalYear:       "2025-26",
		Driver:         "innovation",
		Department:     "NPD",
		StatusUpdate:   "Not Started",
		FormData: domain.InitiativeFormData{
			Function:             "NPD",
			InitiativeMilestones: domain.InitiativeMilestones{Exploration: "2025-01", POC: "Completed"},
			Primary:              "Alice",
			ReviewFrequency:      domain.NewCadence("Monthly", "Yearly"),
			ReviewForum:          "NPD Review",
		},
		CreatedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, s.AppendInitiative(in))
	require.NoError(t, s.AppendInitiative(domain.Initiative{ID: "i2", Name: "QA Initiative 2026-27", Driver: "growth"}))
	return s
}

func TestShapingGoalsFallbackAndOrder(t *testing.T) {
	s := fixture(t)
	rows := ShapingGoals(s.Snapshot())
	require.Len(t, rows, 2)
	require.Equal(t, NoProjects, rows[0].Projects)
	require.Equal(t, "/initiative/i1", rows[0].Link)
	require.Equal(t, "QA Initiative 2026-27", rows[1].Initiative)
	require.Equal(t, NotAvailable, rows[1].FocusArea)

	require.NoError(t, s.AppendProject(domain.Project{ID: "p1", InitiativeID: "i1", InitiativeName: "Modular Design"}))
	require.NoError(t, s.AppendProject(domain.Project{ID: "p2", InitiativeID: "i2"}))
	require.NoError(t, s.AppendProject(domain.Project{ID: "p3", InitiativeID: "i1", InitiativeName: "Fastening"}))

	rows = ShapingGoals(s.Snapshot())
	require.Equal(t, "Modular Design, Fastening", rows[0].Projects)
	require.Equal(t, UnnamedProject, rows[1].Projects)
	require.Equal(t, "i2", rows[1].InitiativeID)
}

func TestInitiativeReportRoundTrip(t *testing.T) {
	s := fixture(t)
	rows := InitiativeReport(s.Snapshot(), Options{})
	r := rows[0]
	require.Equal(t, DefaultISCMGoal, r.ISCMGoal)
	require.Equal(t, "NPD", r.FunctionalGoal)
	require.Equal(t, "Test", r.Initiative)
	require.Equal(t, "2025-01", r.Exploration)
	require.Equal(t, NotAvailable, r.Evaluation)
	require.Equal(t, "Completed", r.POC)
	require.Equal(t, "Alice", r.Primary)
	require.Equal(t, NotAvailable, r.Associate)
	require.Equal(t, "Monthly, Yearly", r.ReviewFrequency)
	require.Equal(t, "NPD Review", r.ReviewForum)

	rows = InitiativeReport(s.Snapshot(), Options{ISCMGoal: "Cost"})
	require.Equal(t, "Cost", rows[1].ISCMGoal)
	require.Equal(t, NotAvailable, rows[1].ReviewFrequency)
}

func TestProjectReport(t *testing.T) {
	s := fixture(t)
	require.NoError(t, s.AppendProject(domain.Project{
		ID:                    "p1",
		InitiativeID:          "i2",
		StatusUpdate:          "In Progress",
		PrimaryResponsibility: "Bob",
		Milestones:            domain.ProjectMilestones{TimeForMass: "2026-03", Feasibility: "Completed"},
	}))
	rows := ProjectReport(s.Snapshot())
	require.Len(t, rows, 1)
	r := rows[0]
	require.Equal(t, UnnamedProject, r.ProjectName)
	require.Equal(t, "QA Initiative 2026-27", r.Initiative)
	require.Equal(t, "In Progress", r.Status)
	require.Equal(t, "2026-03", r.Timeline)
	require.Equal(t, "Bob", r.PrimaryResponsibility)
	require.Equal(t, "Completed", r.Feasibility)
	require.Equal(t, NotAvailable, r.DesignValidation)

	// a dangling reference renders N/A
	snap := s.Snapshot()
	snap.Initiatives = nil
	require.Equal(t, NotAvailable, ProjectReport(snap)[0].Initiative)
}

func TestExportRoundTrip(t *testing.T) {
	s := fixture(t)
	require.NoError(t, s.AppendProject(domain.Project{ID: "p1", InitiativeID: "i1", InitiativeName: "Modular Design"}))
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, s.Snapshot(), Options{}))

	tables, err := ReadXLSX(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.Len(t, tables, 3)
	require.Equal(t, []string{SheetShapingGoals, SheetInitiatives, SheetProjects}, []string{tables[0].Name, tables[1].Name, tables[2].Name})
	require.Equal(t, ShapingGoalHeaders, tables[0].Headers)
	require.Equal(t, InitiativeExportHeaders, tables[1].Headers)
	require.Equal(t, ProjectHeaders, tables[2].Headers)
	require.Equal(t, []string{"innovation", "NPD", "Test", "Modular Design"}, tables[0].Rows[0])
	require.Equal(t, []string{"Customer Satisfaction", "NPD", "Test", "2025-01", NotAvailable, "Completed", NotAvailable, "Alice", "NPD Review"}, tables[1].Rows[0])
	require.Len(t, tables[2].Rows, 1)
}

func TestRenderFormats(t *testing.T) {
	tbl := ShapingGoalsTable(ShapingGoals(fixture(t).Snapshot()))
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, tbl, FormatCSV))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.True(t, strings.EqualFold("Driver,Focus Area,Initiative,Projects", lines[0]), lines[0])
	require.Len(t, lines, 3)

	buf.Reset()
	require.NoError(t, Render(&buf, tbl, FormatMarkdown))
	require.Contains(t, strings.ToLower(buf.String()), "| driver |")

	buf.Reset()
	require.NoError(t, Render(&buf, tbl, ""))
	require.Contains(t, strings.ToLower(buf.String()), "shaping goals")
	require.Error(t, Render(&buf, tbl, "yaml"))
}

func TestDashboardAndDetail(t *testing.T) {
	s := fixture(t)
	require.NoError(t, s.AppendProject(domain.Project{ID: "p1", InitiativeID: "i1"}))
	sum := Dashboard(s.Snapshot())
	require.Equal(t, 2, sum.Initiatives)
	require.Equal(t, 1, sum.Projects)
	require.Equal(t, []Count{{Label: "growth", Count: 1}, {Label: "innovation", Count: 1}}, sum.ByDriver)
	require.Equal(t, []Count{{Label: "Test", Count: 1}, {Label: "QA Initiative 2026-27", Count: 0}}, sum.ProjectsPerInitiative)
	require.Len(t, sum.MilestoneStatus, 9)
	require.Equal(t, "POC", sum.MilestoneStatus[2].Stage)
	require.Equal(t, []Count{{Label: "Completed", Count: 1}, {Label: NotAvailable, Count: 1}}, sum.MilestoneStatus[2].Values)

	d, ok := InitiativeDetail(s.Snapshot(), "i1")
	require.True(t, ok)
	require.Len(t, d.Projects, 1)
	require.Equal(t, "Exploration", d.Timeline[0].Name)
	require.Equal(t, "2025-01", d.Timeline[0].Value)

	d, ok = InitiativeDetail(s.Snapshot(), "i2")
	require.True(t, ok)
	require.NotNil(t, d.Projects)
	_, ok = InitiativeDetail(s.Snapshot(), "missing")
	require.False(t, ok)
}
