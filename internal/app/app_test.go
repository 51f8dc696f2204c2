package app

import (
	"bytes"
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"goalboard/internal/config"
	"goalboard/internal/db"
	"goalboard/internal/gateway"
	"goalboard/internal/repo"
	"goalboard/internal/wizard"
)

func TestBootstrapSQLite(t *testing.T) {
	dir := t.TempDir()
	var logs bytes.Buffer
	a, err := Bootstrap(context.Background(), config.Default(), Options{Workspace: dir, LogOutput: &logs, Registry: prometheus.NewRegistry()})
	require.NoError(t, err)

	w := wizard.NewInitiativeWizard()
	w.EditBasics(func(b *wizard.InitiativeBasics) {
		b.GoalYear, b.Driver, b.FocusIndicator, b.Department = "2025-26", "growth", "status-review", "QA"
	})
	require.NoError(t, a.Engine.AdvanceInitiative(w))
	w.EditDetails(func(d *wizard.InitiativeDetails) { d.InitiativeName, d.Primary = "Scrap", "Alice" })
	res, err := a.Engine.SubmitInitiative(context.Background(), w)
	require.NoError(t, err)
	require.NoError(t, a.Close())

	conn, err := db.Open(db.Config{Workspace: dir})
	require.NoError(t, err)
	defer conn.Close()
	goals, err := repo.Repo{DB: conn}.ListGoals(context.Background(), res.Initiative.ID)
	require.NoError(t, err)
	require.Len(t, goals, 1)
	require.Contains(t, logs.String(), "initiative created")
}

func TestBootstrapDrivers(t *testing.T) {
	cfg := config.Default()
	cfg.Gateway.Driver = config.DriverNone
	a, err := Bootstrap(context.Background(), cfg, Options{Registry: prometheus.NewRegistry()})
	require.NoError(t, err)
	require.IsType(t, gateway.Discard{}, a.Gateway.Sink)
	require.NoError(t, a.Close())

	cfg = config.Default()
	cfg.Gateway.Driver = config.DriverREST
	cfg.Gateway.REST.URL = "http://127.0.0.1:1"
	a, err = Bootstrap(context.Background(), cfg, Options{Registry: prometheus.NewRegistry()})
	require.NoError(t, err)
	require.IsType(t, &gateway.RESTSink{}, a.Gateway.Sink)
	require.NoError(t, a.Close())

	cfg = config.Default()
	cfg.Gateway.Driver = "bogus"
	_, err = Bootstrap(context.Background(), cfg, Options{})
	require.Error(t, err)
}
