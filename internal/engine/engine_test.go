package engine_test

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"testing"
	"time"

	"goalboard/internal/domain"
	"goalboard/internal/engine"
	"goalboard/internal/gateway"
	"goalboard/internal/store"
	"goalboard/internal/wizard"
)

type memSink struct {
	mu      sync.Mutex
	reviews []gateway.ReviewRecord
	goals   []gateway.GoalRecord
}

func (s *memSink) InsertReviewMetadata(_ context.Context, r gateway.ReviewRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reviews = append(s.reviews, r)
	return nil
}

func (s *memSink) InsertGoal(_ context.Context, g gateway.GoalRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.goals = append(s.goals, g)
	return nil
}

type failingSink struct{}

func (failingSink) InsertReviewMetadata(context.Context, gateway.ReviewRecord) error {
	return errors.New("unreachable")
}
func (failingSink) InsertGoal(context.Context, gateway.GoalRecord) error {
	return errors.New("unreachable")
}

type testEnv struct {
	Engine engine.Engine
	Sink   *memSink
	Ctx    context.Context
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	sink := &memSink{}
	eng := engine.New(store.New(), gateway.New(sink, nil, nil), nil, nil)
	eng.Now = func() time.Time { return time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC) }
	n := 0
	eng.NewID = func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
	return testEnv{Engine: eng, Sink: sink, Ctx: context.Background()}
}

func scenarioInitiative(t *testing.T, env testEnv) engine.InitiativeResult {
	t.Helper()
	w := wizard.NewInitiativeWizard()
	w.EditBasics(func(b *wizard.InitiativeBasics) {
		b.GoalYear = "2025-26"
		b.Driver = "innovation"
		b.FocusIndicator = "status-review"
		b.Department = "NPD"
	})
	if err := env.Engine.AdvanceInitiative(w); err != nil {
		t.Fatalf("advance: %v", err)
	}
	w.EditDetails(func(d *wizard.InitiativeDetails) {
		d.InitiativeName = "Test"
		d.Primary = "Alice"
	})
	res, err := env.Engine.SubmitInitiative(env.Ctx, w)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if w.Step() != wizard.Step1 || w.Form().Details.InitiativeName != "" {
		t.Fatalf("wizard not cleared: %+v", w.Form())
	}
	return res
}

func TestInitiativeScenario(t *testing.T) {
	env := newTestEnv(t)
	res := scenarioInitiative(t, env)
	if res.Initiative.Name != "NPD Initiative 2025-26" {
		t.Fatalf("name = %q", res.Initiative.Name)
	}
	want := `Initiative "NPD Initiative 2025-26" has been successfully created and saved to the database.`
	if res.Message != want {
		t.Fatalf("message = %q", res.Message)
	}
	got := env.Engine.Store.Initiatives()
	if len(got) != 1 || got[0].ID != res.Initiative.ID || got[0].Label() != "Test" {
		t.Fatalf("store = %+v", got)
	}
	if got[0].ReviewMetadata != nil {
		t.Fatalf("empty review metadata should be nil")
	}

	env.Engine.Gateway.Wait()
	if len(env.Sink.goals) != 1 || env.Sink.goals[0] != (gateway.GoalRecord{
		InitiativeID: res.Initiative.ID, GoalYear: "2025-26", StatusUpdate: "Not Started", Driver: "innovation", Department: "NPD",
	}) {
		t.Fatalf("goals = %+v", env.Sink.goals)
	}
	if len(env.Sink.reviews) != 1 || env.Sink.reviews[0].InitiativeID != res.Initiative.ID {
		t.Fatalf("reviews = %+v", env.Sink.reviews)
	}
}

func TestSubmitRefusedLeavesWizard(t *testing.T) {
	env := newTestEnv(t)
	w := wizard.NewInitiativeWizard()
	w.EditDetails(func(d *wizard.InitiativeDetails) { d.InitiativeName = "x" })
	if _, err := env.Engine.SubmitInitiative(env.Ctx, w); !errors.Is(err, wizard.ErrRefused) {
		t.Fatalf("expected refusal, got %v", err)
	}
	if w.Form().Details.InitiativeName != "x" {
		t.Fatalf("refusal must not clear the wizard")
	}
	if len(env.Engine.Store.Initiatives()) != 0 {
		t.Fatalf("nothing should be stored")
	}
}

func TestBuilderDeterministic(t *testing.T) {
	form := wizard.InitiativeForm{
		Step:   wizard.Step2,
		Basics: wizard.InitiativeBasics{GoalYear: "2025-26", Driver: "growth", FocusIndicator: "status-review", Department: "QA", StatusUpdate: "In Progress"},
		Details: wizard.InitiativeDetails{
			InitiativeName:  "Cut scrap",
			Primary:         "Alice",
			Milestones:      domain.InitiativeMilestones{POC: "2025-06"},
			ReviewFrequency: domain.NewCadence("Quarterly", "Monthly"),
		},
		Review: domain.ReviewMetadata{ISCMLevel: "CMO"},
	}
	a := engine.BuildInitiative(form, "a", time.Unix(1, 0))
	b := engine.BuildInitiative(form, "b", time.Unix(2, 0))
	if a.ID == b.ID || a.CreatedAt.Equal(b.CreatedAt) {
		t.Fatalf("id and createdAt should differ")
	}
	b.ID, b.CreatedAt = a.ID, a.CreatedAt
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("records differ:\n%+v\n%+v", a, b)
	}
	if a.FormData.ReviewFrequency.Join() != "Quarterly, Monthly" {
		t.Fatalf("cadence = %q", a.FormData.ReviewFrequency.Join())
	}
	// the record must not alias the form
	form.Details.ReviewFrequency[0] = domain.Yearly
	if a.FormData.ReviewFrequency[0] != domain.Quarterly {
		t.Fatalf("record aliases form cadence")
	}
}

func TestIDsAreUnique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 1000; i++ {
		id := engine.NewID()
		if seen[id] {
			t.Fatalf("duplicate id %s", id)
		}
		seen[id] = true
	}
}

func TestProjectRefusedWithEmptyStore(t *testing.T) {
	env := newTestEnv(t)
	w := wizard.NewProjectWizard()
	for _, id := range []string{"", "id-1", "anything"} {
		w.Select(id)
		if err := env.Engine.AdvanceProject(w); !errors.Is(err, wizard.ErrRefused) {
			t.Fatalf("select %q: expected refusal, got %v", id, err)
		}
	}
}

func TestProjectSubmit(t *testing.T) {
	env := newTestEnv(t)
	parent := scenarioInitiative(t, env).Initiative

	w := wizard.NewProjectWizard()
	w.Select(parent.ID)
	if err := env.Engine.AdvanceProject(w); err != nil {
		t.Fatalf("advance: %v", err)
	}
	w.EditDetails(func(d *wizard.ProjectDetails) {
		d.Driver = "Movement"
		d.Function = "Movement"
		d.InitiativeName = "Modular Design"
		d.PrimaryResponsibility = "Bob"
	})
	w.ToggleFrequency(domain.Monthly)
	w.EditReview(func(m *domain.ReviewMetadata) { m.DepartmentLevel = "HOD" })
	res, err := env.Engine.SubmitProject(env.Ctx, w)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if res.Project.InitiativeID != parent.ID || res.Project.Tag != "BAU" || res.Project.StatusUpdate != "Not Started" {
		t.Fatalf("project = %+v", res.Project)
	}
	if res.Message != `Project for "NPD Initiative 2025-26" has been successfully created and saved to the database.` {
		t.Fatalf("message = %q", res.Message)
	}
	if res.Project.ReviewMetadata == nil || res.Project.ReviewMetadata.DepartmentLevel != "HOD" {
		t.Fatalf("review metadata = %+v", res.Project.ReviewMetadata)
	}

	env.Engine.Gateway.Wait()
	g := env.Sink.goals[len(env.Sink.goals)-1]
	if g.InitiativeID != res.Project.ID || g.GoalYear != "2025" || g.Department != "Movement" {
		t.Fatalf("project goal row = %+v", g)
	}
	r := env.Sink.reviews[len(env.Sink.reviews)-1]
	if r.InitiativeID != res.Project.ID || r.DepartmentLevel != "HOD" {
		t.Fatalf("project review row = %+v", r)
	}
}

func TestProjectSubmitUnresolved(t *testing.T) {
	env := newTestEnv(t)
	w := wizard.NewProjectWizard()
	// reach step 2 against a resolver that knows the id, then submit against the empty store
	w.Select("ghost")
	_ = w.Next(resolver{"ghost"})
	w.EditDetails(func(d *wizard.ProjectDetails) { d.PrimaryResponsibility = "Bob" })
	_, err := env.Engine.SubmitProject(env.Ctx, w)
	if !errors.Is(err, engine.ErrUnresolvedInitiative) {
		t.Fatalf("expected unresolved, got %v", err)
	}
	if len(env.Engine.Store.Projects()) != 0 || w.Step() != wizard.Step2 {
		t.Fatalf("abort must not change state")
	}
}

func TestGatewayFailureDoesNotSurface(t *testing.T) {
	env := newTestEnv(t)
	env.Engine.Gateway = gateway.New(failingSink{}, nil, nil)
	res := scenarioInitiative(t, env)
	env.Engine.Gateway.Wait()
	if res.Message == "" || len(env.Engine.Store.Initiatives()) != 1 {
		t.Fatalf("local append must survive gateway failure")
	}
}

func TestTwoProjectsKeepCreationOrder(t *testing.T) {
	env := newTestEnv(t)
	parent := scenarioInitiative(t, env).Initiative
	for _, label := range []string{"First", "Second"} {
		w := wizard.NewProjectWizard()
		w.Select(parent.ID)
		if err := env.Engine.AdvanceProject(w); err != nil {
			t.Fatalf("advance: %v", err)
		}
		w.EditDetails(func(d *wizard.ProjectDetails) {
			d.InitiativeName = label
			d.PrimaryResponsibility = "Bob"
		})
		if _, err := env.Engine.SubmitProject(env.Ctx, w); err != nil {
			t.Fatalf("submit %s: %v", label, err)
		}
	}
	ps := env.Engine.Store.Snapshot().ProjectsFor(parent.ID)
	if len(ps) != 2 || ps[0].InitiativeName != "First" || ps[1].InitiativeName != "Second" {
		t.Fatalf("projects = %+v", ps)
	}
}

type resolver struct{ id string }

func (r resolver) HasInitiative(id string) bool { return id == r.id }
