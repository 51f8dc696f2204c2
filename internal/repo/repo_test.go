package repo

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"goalboard/internal/db"
	"goalboard/internal/events"
	"goalboard/internal/gateway"
	"goalboard/internal/migrate"
)

func newRepo(t *testing.T) Repo {
	t.Helper()
	conn, err := db.Open(db.Config{Workspace: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, migrate.Migrate(context.Background(), conn))
	now := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	return Repo{DB: conn, Now: func() time.Time { return now }}
}

func TestInsertGoalAndReview(t *testing.T) {
	ctx := context.Background()
	r := newRepo(t)
	require.NoError(t, r.InsertReviewMetadata(ctx, gateway.ReviewRecord{InitiativeID: "i1", ISCMLevel: "CMO"}))
	require.NoError(t, r.InsertGoal(ctx, gateway.GoalRecord{InitiativeID: "i1", GoalYear: "2025-26", StatusUpdate: "Not Started", Driver: "innovation", Department: "NPD"}))

	goals, err := r.ListGoals(ctx, "i1")
	require.NoError(t, err)
	require.Equal(t, []gateway.GoalRecord{{InitiativeID: "i1", GoalYear: "2025-26", StatusUpdate: "Not Started", Driver: "innovation", Department: "NPD"}}, goals)

	rec, err := r.GetReviewMetadata(ctx, "i1")
	require.NoError(t, err)
	require.Equal(t, "CMO", rec.ISCMLevel)
	require.Empty(t, rec.FunctionalLevel)

	_, err = r.GetReviewMetadata(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)

	evts, err := r.LatestEvents(ctx, 10, "", "i1")
	require.NoError(t, err)
	require.Len(t, evts, 2)
	require.Equal(t, events.TypeGoalInserted, evts[0].Type)
	require.Equal(t, events.TypeReviewMetadataInserted, evts[1].Type)
	require.Equal(t, "2025-05-01T10:00:00Z", evts[0].TS)

	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(evts[0].Payload), &payload))
	require.Equal(t, "NPD", payload["department"])

	goalsOnly, err := r.LatestEvents(ctx, 10, events.TypeGoalInserted, "")
	require.NoError(t, err)
	require.Len(t, goalsOnly, 1)
}

func TestRepoAsGatewaySink(t *testing.T) {
	r := newRepo(t)
	g := gateway.New(r, nil, nil)
	var wg sync.WaitGroup
	for _, id := range []string{"a", "b", "c"} {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			g.Dispatch(context.Background(), gateway.Batch{
				Kind:   "initiative",
				Review: gateway.ReviewRecord{InitiativeID: id},
				Goal:   gateway.GoalRecord{InitiativeID: id},
			})
		}(id)
	}
	wg.Wait()
	g.Wait()

	goals, err := r.ListGoals(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, goals, 3)
}
