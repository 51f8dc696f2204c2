// Package wizard holds the two-step form state of the initiative and project
// creation flows. A wizard only tracks fields and the current step; building
// and storing records is the engine's job.
package wizard

import (
	"errors"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// ErrRefused is returned when a step guard does not hold. Callers treat it as
// a silent no-op.
var ErrRefused = errors.New("wizard transition refused")

// Step is the wizard position.
type Step int

const (
	Step1 Step = 1
	Step2 Step = 2
)

func (s Step) String() string {
	switch s {
	case Step1:
		return "step1"
	case Step2:
		return "step2"
	default:
		return "unknown"
	}
}

// InitiativeResolver answers whether an initiative id is live.
type InitiativeResolver interface {
	HasInitiative(id string) bool
}

func present(values ...string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			return false
		}
	}
	return true
}

// DefaultSession is used when a caller does not name its session.
const DefaultSession = "default"

// Session pairs one initiative wizard with one project wizard.
type Session struct {
	mu         sync.Mutex
	Initiative *InitiativeWizard
	Project    *ProjectWizard
}

// DefaultMaxSessions bounds the live sessions kept by NewSessions.
const DefaultMaxSessions = 1024

// Sessions keeps independent wizard pairs keyed by session id. Once the cap
// is reached the least recently used session is forgotten.
type Sessions struct {
	mu    sync.Mutex
	cache *lru.Cache[string, *Session]
}

func NewSessions() *Sessions {
	return NewSessionsSize(DefaultMaxSessions)
}

// NewSessionsSize keeps at most size sessions. A non-positive size falls back
// to DefaultMaxSessions.
func NewSessionsSize(size int) *Sessions {
	if size <= 0 {
		size = DefaultMaxSessions
	}
	// lru.New only fails for a non-positive size.
	cache, _ := lru.New[string, *Session](size)
	return &Sessions{cache: cache}
}

func normalizeID(id string) string {
	id = strings.TrimSpace(id)
	if id == "" {
		return DefaultSession
	}
	return id
}

// With runs fn while holding the session lock, creating the session on first use.
func (s *Sessions) With(id string, fn func(*Session) error) error {
	id = normalizeID(id)
	s.mu.Lock()
	sess, ok := s.cache.Get(id)
	if !ok {
		sess = &Session{Initiative: NewInitiativeWizard(), Project: NewProjectWizard()}
		s.cache.Add(id, sess)
	}
	s.mu.Unlock()

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return fn(sess)
}

// Drop forgets a session.
func (s *Sessions) Drop(id string) {
	s.cache.Remove(normalizeID(id))
}

// Len reports the number of live sessions.
func (s *Sessions) Len() int {
	return s.cache.Len()
}
