package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"goalboard/internal/domain"
)

func TestCadenceToggleKeepsInsertionOrder(t *testing.T) {
	var c domain.Cadence
	c = c.Toggle(domain.Yearly)
	c = c.Toggle(domain.Monthly)
	c = c.Toggle(domain.Quarterly)
	require.Equal(t, []string{"Yearly", "Monthly", "Quarterly"}, c.Strings())

	c = c.Toggle(domain.Monthly)
	require.Equal(t, "Yearly, Quarterly", c.Join())
	require.False(t, c.Has(domain.Monthly))
}

func TestCadenceAddIgnoresDuplicatesAndBlanks(t *testing.T) {
	c := domain.NewCadence("Monthly", " ", "Monthly", "Yearly")
	require.Equal(t, domain.Cadence{domain.Monthly, domain.Yearly}, c)
	require.Equal(t, "", domain.Cadence(nil).Join())
}

func TestCadenceAddDoesNotAliasReceiver(t *testing.T) {
	base := make(domain.Cadence, 1, 4)
	base[0] = domain.Monthly
	a := base.Add(domain.Yearly)
	b := base.Add(domain.Quarterly)
	require.Equal(t, domain.Cadence{domain.Monthly, domain.Yearly}, a)
	require.Equal(t, domain.Cadence{domain.Monthly, domain.Quarterly}, b)
}

func TestInitiativeFormDataFlattensMilestones(t *testing.T) {
	fd := domain.InitiativeFormData{Function: "NPD"}
	fd.Exploration = "2025-01"
	data, err := json.Marshal(fd)
	require.NoError(t, err)
	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	require.Equal(t, "2025-01", raw["exploration"])
	require.Equal(t, "NPD", raw["function"])
}

func TestInitiativeLabelFallsBackToName(t *testing.T) {
	i := domain.Initiative{Name: "NPD Initiative 2025-26"}
	require.Equal(t, "NPD Initiative 2025-26", i.Label())
	i.InitiativeName = "Thin automatics"
	require.Equal(t, "Thin automatics", i.Label())
}
