// Package engine runs the submit flows: guard, build, store, dispatch to the
// gateway and clear the wizard.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"goalboard/internal/domain"
	"goalboard/internal/gateway"
	"goalboard/internal/observability"
	"goalboard/internal/store"
	"goalboard/internal/wizard"
)

// ErrUnresolvedInitiative aborts a project submit whose initiative is not in
// the store. Nothing is built or stored.
var ErrUnresolvedInitiative = errors.New("initiative not found")

type Engine struct {
	Store   *store.Store
	Gateway *gateway.Gateway
	Metrics *observability.Metrics
	Log     *slog.Logger
	Now     func() time.Time
	NewID   func() string
}

func New(st *store.Store, gw *gateway.Gateway, metrics *observability.Metrics, log *slog.Logger) Engine {
	return Engine{
		Store:   st,
		Gateway: gw,
		Metrics: metrics,
		Log:     observability.OrDiscard(log),
		Now:     time.Now,
		NewID:   NewID,
	}
}

// NewID returns a time ordered UUIDv7, falling back to a random UUID if the
// clock source fails.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

func (e Engine) now() time.Time {
	if e.Now != nil {
		return e.Now().UTC()
	}
	return time.Now().UTC()
}

func (e Engine) newID() string {
	if e.NewID != nil {
		return e.NewID()
	}
	return NewID()
}

func (e Engine) log() *slog.Logger {
	return observability.OrDiscard(e.Log)
}

type InitiativeResult struct {
	Initiative domain.Initiative `json:"initiative"`
	Message    string            `json:"message"`
}

type ProjectResult struct {
	Project    domain.Project    `json:"project"`
	Initiative domain.Initiative `json:"initiative"`
	Message    string            `json:"message"`
}

// AdvanceInitiative runs the step 1 transition of an initiative wizard.
func (e Engine) AdvanceInitiative(w *wizard.InitiativeWizard) error {
	if err := w.Next(); err != nil {
		e.Metrics.Refused("initiative", "next")
		return err
	}
	return nil
}

// AdvanceProject runs the step 1 transition of a project wizard against the
// current store contents.
func (e Engine) AdvanceProject(w *wizard.ProjectWizard) error {
	if err := w.Next(e.Store); err != nil {
		e.Metrics.Refused("project", "next")
		return err
	}
	return nil
}

// SubmitInitiative builds and stores an initiative from w, hands it to the
// gateway and clears w. A failed guard returns wizard.ErrRefused and leaves w
// untouched.
func (e Engine) SubmitInitiative(ctx context.Context, w *wizard.InitiativeWizard) (InitiativeResult, error) {
	if !w.CanSubmit() {
		e.Metrics.Refused("initiative", "submit")
		return InitiativeResult{}, wizard.ErrRefused
	}
	in := BuildInitiative(w.Form(), e.newID(), e.now())
	if err := e.Store.AppendInitiative(in); err != nil {
		return InitiativeResult{}, fmt.Errorf("store initiative: %w", err)
	}
	e.Metrics.RecordCreated("initiative")
	e.dispatch(ctx, InitiativeBatch(in))
	w.Complete()
	e.log().Info("initiative created", "id", in.ID, "name", in.Name)
	return InitiativeResult{
		Initiative: in,
		Message:    fmt.Sprintf("Initiative %q has been successfully created and saved to the database.", in.Name),
	}, nil
}

// SubmitProject builds and stores a project from w. The selected initiative
// must still resolve; otherwise ErrUnresolvedInitiative is returned and w is
// left as is.
func (e Engine) SubmitProject(ctx context.Context, w *wizard.ProjectWizard) (ProjectResult, error) {
	if !w.CanSubmit() {
		e.Metrics.Refused("project", "submit")
		return ProjectResult{}, wizard.ErrRefused
	}
	form := w.Form()
	parent, err := e.Store.Initiative(form.InitiativeID)
	if err != nil {
		return ProjectResult{}, fmt.Errorf("project %q: %w", form.InitiativeID, ErrUnresolvedInitiative)
	}
	p := BuildProject(form, e.newID(), e.now())
	if err := e.Store.AppendProject(p); err != nil {
		if errors.Is(err, store.ErrUnknownInitiative) {
			return ProjectResult{}, fmt.Errorf("%w: %v", ErrUnresolvedInitiative, err)
		}
		return ProjectResult{}, fmt.Errorf("store project: %w", err)
	}
	e.Metrics.RecordCreated("project")
	e.dispatch(ctx, ProjectBatch(p))
	w.Complete()
	e.log().Info("project created", "id", p.ID, "initiative", parent.ID)
	return ProjectResult{
		Project:    p,
		Initiative: parent,
		Message:    fmt.Sprintf("Project for %q has been successfully created and saved to the database.", parent.Name),
	}, nil
}

func (e Engine) dispatch(ctx context.Context, b gateway.Batch) {
	if e.Gateway == nil {
		return
	}
	e.Gateway.Dispatch(ctx, b)
}
