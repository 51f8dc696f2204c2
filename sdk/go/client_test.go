package goalboardsdk

import (
	"bytes"
	"context"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"goalboard/internal/engine"
	"goalboard/internal/gateway"
	"goalboard/internal/report"
	"goalboard/internal/server"
	"goalboard/internal/store"
	"goalboard/internal/wizard"
)

func newClient(t *testing.T) *Client {
	t.Helper()
	return newClientWithSessions(t, wizard.NewSessions())
}

func newClientWithSessions(t *testing.T, sessions *wizard.Sessions) *Client {
	t.Helper()
	gw := gateway.New(gateway.Discard{}, nil, nil)
	e := engine.New(store.New(), gw, nil, nil)
	h, err := server.New(server.Config{Engine: e, Sessions: sessions, BasePath: "/v0"})
	require.NoError(t, err)
	ts := httptest.NewServer(h)
	t.Cleanup(func() {
		ts.Close()
		gw.Wait()
	})
	c := New(ts.URL)
	c.HTTPClient = ts.Client()
	return c
}

func TestCreateInitiativeAndProject(t *testing.T) {
	ctx := context.Background()
	c := newClient(t)

	in, err := c.CreateInitiative(ctx, InitiativeInput{
		Basics: map[string]any{
			"goalYear":           "2025-26",
			"driver":             "innovation",
			"forYourInformation": "status-review",
			"department":         "NPD",
		},
		Details:         map[string]any{"initiativeName": "Cost down", "primary": "Alice"},
		ReviewFrequency: []string{"Monthly"},
		Review:          map[string]string{"iscmLevel": "CMO"},
	})
	require.NoError(t, err)
	require.NotNil(t, in.Initiative)
	require.Equal(t, "NPD Initiative 2025-26", in.Initiative.Name)
	require.Contains(t, in.Message, `"NPD Initiative 2025-26"`)

	opts, err := c.InitiativeOptions(ctx)
	require.NoError(t, err)
	require.Len(t, opts, 1)

	p, err := c.CreateProject(ctx, ProjectInput{
		InitiativeID: in.Initiative.ID,
		Details:      map[string]any{"initiativeName": "Alpha", "primaryResponsibility": "Bob"},
	})
	require.NoError(t, err)
	require.Equal(t, in.Initiative.ID, p.Project.InitiativeID)

	projects, err := c.Projects(ctx, in.Initiative.ID)
	require.NoError(t, err)
	require.Len(t, projects, 1)

	rows, err := c.Report(ctx, "projects")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "Alpha", rows[0]["projectName"])

	var buf bytes.Buffer
	require.NoError(t, c.Export(ctx, &buf))
	tables, err := report.ReadXLSX(&buf)
	require.NoError(t, err)
	require.Len(t, tables, 3)
}

func TestRefusedStepsSurfaceAsErrors(t *testing.T) {
	ctx := context.Background()
	c := newClient(t)

	_, err := c.CreateInitiative(ctx, InitiativeInput{Basics: map[string]any{"department": "NPD"}})
	var refused *RefusedError
	require.True(t, errors.As(err, &refused))
	require.Equal(t, "next", refused.Step)

	_, err = c.CreateProject(ctx, ProjectInput{InitiativeID: "ghost"})
	require.True(t, errors.As(err, &refused))
	require.Equal(t, "project", refused.Wizard)

	_, err = c.Report(ctx, "unknown")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, 404, apiErr.StatusCode)
}

func TestCreateRecoversAfterRefusedSubmit(t *testing.T) {
	ctx := context.Background()
	sessions := wizard.NewSessions()
	c := newClientWithSessions(t, sessions)
	basics := map[string]any{
		"goalYear":           "2025-26",
		"driver":             "innovation",
		"forYourInformation": "status-review",
		"department":         "NPD",
	}

	_, err := c.CreateInitiative(ctx, InitiativeInput{
		Basics:          basics,
		Details:         map[string]any{"primary": "Alice"},
		ReviewFrequency: []string{"Monthly", "Yearly"},
	})
	var refused *RefusedError
	require.True(t, errors.As(err, &refused))
	require.Equal(t, "submit", refused.Step)
	require.Zero(t, sessions.Len())

	out, err := c.CreateInitiative(ctx, InitiativeInput{
		Basics:          basics,
		Details:         map[string]any{"initiativeName": "Cost down", "primary": "Alice"},
		ReviewFrequency: []string{"Quarterly"},
	})
	require.NoError(t, err)
	require.True(t, out.Accepted)
	require.Equal(t, "Cost down", out.Initiative.InitiativeName)
	require.Zero(t, sessions.Len())

	rows, err := c.Report(ctx, "initiatives")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "Quarterly", rows[0]["reviewFrequency"])

	_, err = c.CreateProject(ctx, ProjectInput{InitiativeID: out.Initiative.ID})
	require.True(t, errors.As(err, &refused))
	require.Equal(t, "submit", refused.Step)

	p, err := c.CreateProject(ctx, ProjectInput{
		InitiativeID: out.Initiative.ID,
		Details:      map[string]any{"primaryResponsibility": "Bob"},
	})
	require.NoError(t, err)
	require.Equal(t, out.Initiative.ID, p.Project.InitiativeID)
	require.Zero(t, sessions.Len())
}

func TestCreateLeavesCallerSessionAlone(t *testing.T) {
	ctx := context.Background()
	sessions := wizard.NewSessions()
	c := newClientWithSessions(t, sessions)
	c.Session = "desk"
	require.NoError(t, sessions.With("desk", func(s *wizard.Session) error {
		s.Initiative.EditBasics(func(b *wizard.InitiativeBasics) { b.Department = "QA" })
		return nil
	}))

	_, err := c.CreateInitiative(ctx, InitiativeInput{Basics: map[string]any{"department": "NPD"}})
	require.Error(t, err)
	require.Equal(t, 1, sessions.Len())
	require.NoError(t, sessions.With("desk", func(s *wizard.Session) error {
		require.Equal(t, "QA", s.Initiative.Form().Basics.Department)
		return nil
	}))
}
