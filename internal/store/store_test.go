package store

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"goalboard/internal/domain"
)

func TestAppendAndRead(t *testing.T) {
	s := New()
	require.False(t, s.HasInitiative("i1"))
	require.NoError(t, s.AppendInitiative(domain.Initiative{ID: "i1", Name: "NPD Initiative 2025-26"}))
	require.True(t, s.HasInitiative("i1"))
	require.False(t, s.HasInitiative(""))

	got, err := s.Initiative("i1")
	require.NoError(t, err)
	require.Equal(t, "NPD Initiative 2025-26", got.Name)
	_, err = s.Initiative("nope")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.AppendProject(domain.Project{ID: "p1", InitiativeID: "i1"}))
	require.NoError(t, s.AppendProject(domain.Project{ID: "p2", InitiativeID: "i1"}))
	snap := s.Snapshot()
	require.Len(t, snap.Initiatives, 1)
	require.Equal(t, []string{"p1", "p2"}, []string{snap.Projects[0].ID, snap.Projects[1].ID})
	require.Len(t, snap.ProjectsFor("i1"), 2)
	require.Empty(t, snap.ProjectsFor("other"))
}

func TestAppendProjectRequiresInitiative(t *testing.T) {
	s := New()
	err := s.AppendProject(domain.Project{ID: "p1", InitiativeID: "missing"})
	require.ErrorIs(t, err, ErrUnknownInitiative)
	require.Empty(t, s.Projects())
}

func TestDuplicateIDsRejected(t *testing.T) {
	s := New()
	require.NoError(t, s.AppendInitiative(domain.Initiative{ID: "x"}))
	require.ErrorIs(t, s.AppendInitiative(domain.Initiative{ID: "x"}), ErrDuplicateID)
	require.ErrorIs(t, s.AppendProject(domain.Project{ID: "x", InitiativeID: "x"}), ErrDuplicateID)
	require.Len(t, s.Initiatives(), 1)
}

func TestReadersGetCopies(t *testing.T) {
	s := New()
	meta := &domain.ReviewMetadata{ISCMLevel: "CMO"}
	in := domain.Initiative{ID: "i1", ReviewMetadata: meta}
	in.FormData.ReviewFrequency = domain.NewCadence("Monthly")
	require.NoError(t, s.AppendInitiative(in))

	meta.ISCMLevel = "changed"
	in.FormData.ReviewFrequency[0] = domain.Yearly

	out := s.Initiatives()
	require.Equal(t, "CMO", out[0].ReviewMetadata.ISCMLevel)
	require.Equal(t, domain.Cadence{domain.Monthly}, out[0].FormData.ReviewFrequency)

	out[0].FormData.ReviewFrequency[0] = domain.Quarterly
	require.Equal(t, domain.Monthly, s.Initiatives()[0].FormData.ReviewFrequency[0])
}

func TestConcurrentAppends(t *testing.T) {
	s := New()
	require.NoError(t, s.AppendInitiative(domain.Initiative{ID: "root"}))
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			require.NoError(t, s.AppendProject(domain.Project{ID: fmt.Sprintf("p%d", n), InitiativeID: "root"}))
			_ = s.Snapshot()
		}(i)
	}
	wg.Wait()
	require.Len(t, s.Projects(), 100)
}
