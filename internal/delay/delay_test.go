package delay

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"goalboard/internal/domain"
	"goalboard/internal/store"
)

func TestParseDate(t *testing.T) {
	for _, v := range []string{"2025-06-01", "2025-06", "06-2025"} {
		d, ok := ParseDate(v)
		require.True(t, ok, v)
		require.Equal(t, 2025, d.Year())
		require.Equal(t, time.June, d.Month())
	}
	_, ok := ParseDate("Completed")
	require.False(t, ok)
}

func TestDescribe(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cases := map[string]time.Time{
		"0 months":            now.AddDate(0, 0, -10),
		"1 month":             now.AddDate(0, 0, -30),
		"5 months":            now.AddDate(0, -5, 0),
		"1 year":              now.AddDate(-1, 0, 0),
		"1 year and 2 months": now.AddDate(-1, -2, 0),
		"2 years and 1 month": now.AddDate(-2, -1, 0),
	}
	for want, deadline := range cases {
		require.Equal(t, want, Describe(deadline, now))
	}
}

func TestFind(t *testing.T) {
	s := store.New()
	in := domain.Initiative{ID: "i1", InitiativeName: "Thin Automatics", Department: "NPD", StatusUpdate: "In Progress"}
	in.FormData.Primary = "Alice"
	in.FormData.POC = "2025-06"
	in.FormData.Validation = "2027-01"
	in.FormData.Exploration = "WIP"
	require.NoError(t, s.AppendInitiative(in))
	done := domain.Initiative{ID: "i2", StatusUpdate: "Completed"}
	done.FormData.POC = "2020-01"
	require.NoError(t, s.AppendInitiative(done))
	require.NoError(t, s.AppendProject(domain.Project{
		ID:                    "p1",
		InitiativeID:          "i1",
		Function:              "Movement",
		PrimaryResponsibility: "Avinash",
		Milestones:            domain.ProjectMilestones{Certification: "2025-01-15"},
	}))

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	items := Find(s.Snapshot(), now)
	require.Len(t, items, 2)

	require.Equal(t, "project", items[0].Kind)
	require.Equal(t, "Certification", items[0].Milestone)
	require.Equal(t, "Thin Automatics", items[0].InitiativeName)
	require.Equal(t, "Movement", items[0].Department)
	require.Equal(t, StatusBehind, items[0].Status)

	require.Equal(t, "initiative", items[1].Kind)
	require.Equal(t, "POC", items[1].Milestone)
	require.Equal(t, "Alice", items[1].PrimaryResponsibility)
	require.Equal(t, "7 months", items[1].Delay)
}
