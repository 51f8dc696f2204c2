// Package store keeps the in-memory initiative and project collections for
// the lifetime of the process.
package store

import (
	"errors"
	"fmt"
	"sync"

	"github.com/samber/lo"

	"goalboard/internal/domain"
)

var (
	ErrUnknownInitiative = errors.New("unknown initiative")
	ErrDuplicateID       = errors.New("duplicate id")
	ErrNotFound          = errors.New("not found")
)

// Store is append-only and safe for concurrent use. Readers always get copies.
type Store struct {
	mu          sync.RWMutex
	initiatives []domain.Initiative
	projects    []domain.Project
	ids         map[string]struct{}
}

func New() *Store {
	return &Store{ids: make(map[string]struct{})}
}

// Snapshot is a consistent copy of both collections.
type Snapshot struct {
	Initiatives []domain.Initiative `json:"initiatives"`
	Projects    []domain.Project    `json:"projects"`
}

// ProjectsFor returns the projects linked to one initiative, in insertion order.
func (s Snapshot) ProjectsFor(initiativeID string) []domain.Project {
	return lo.Filter(s.Projects, func(p domain.Project, _ int) bool {
		return p.InitiativeID == initiativeID
	})
}

// Initiative looks up an initiative in the snapshot.
func (s Snapshot) Initiative(id string) (domain.Initiative, bool) {
	return lo.Find(s.Initiatives, func(i domain.Initiative) bool { return i.ID == id })
}

func (s *Store) AppendInitiative(i domain.Initiative) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.ids[i.ID]; ok {
		return fmt.Errorf("initiative %s: %w", i.ID, ErrDuplicateID)
	}
	s.ids[i.ID] = struct{}{}
	s.initiatives = append(s.initiatives, cloneInitiative(i))
	return nil
}

// AppendProject stores p; its InitiativeID must name a stored initiative.
func (s *Store) AppendProject(p domain.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hasInitiative(p.InitiativeID) {
		return fmt.Errorf("project %s -> %s: %w", p.ID, p.InitiativeID, ErrUnknownInitiative)
	}
	if _, ok := s.ids[p.ID]; ok {
		return fmt.Errorf("project %s: %w", p.ID, ErrDuplicateID)
	}
	s.ids[p.ID] = struct{}{}
	s.projects = append(s.projects, cloneProject(p))
	return nil
}

func (s *Store) HasInitiative(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hasInitiative(id)
}

func (s *Store) hasInitiative(id string) bool {
	if id == "" {
		return false
	}
	_, found := lo.Find(s.initiatives, func(i domain.Initiative) bool { return i.ID == id })
	return found
}

func (s *Store) Initiative(id string) (domain.Initiative, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, i := range s.initiatives {
		if i.ID == id {
			return cloneInitiative(i), nil
		}
	}
	return domain.Initiative{}, ErrNotFound
}

func (s *Store) Initiatives() []domain.Initiative {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return lo.Map(s.initiatives, func(i domain.Initiative, _ int) domain.Initiative { return cloneInitiative(i) })
}

func (s *Store) Projects() []domain.Project {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return lo.Map(s.projects, func(p domain.Project, _ int) domain.Project { return cloneProject(p) })
}

func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Initiatives: lo.Map(s.initiatives, func(i domain.Initiative, _ int) domain.Initiative { return cloneInitiative(i) }),
		Projects:    lo.Map(s.projects, func(p domain.Project, _ int) domain.Project { return cloneProject(p) }),
	}
}

func cloneInitiative(i domain.Initiative) domain.Initiative {
	i.FormData.ReviewFrequency = i.FormData.ReviewFrequency.Clone()
	if i.ReviewMetadata != nil {
		m := *i.ReviewMetadata
		i.ReviewMetadata = &m
	}
	return i
}

func cloneProject(p domain.Project) domain.Project {
	p.ReviewFrequency = p.ReviewFrequency.Clone()
	if p.ReviewMetadata != nil {
		m := *p.ReviewMetadata
		p.ReviewMetadata = &m
	}
	return p
}
