package wizard

import (
	"fmt"

	"goalboard/internal/catalog"
	"goalboard/internal/domain"
)

// ProjectDetails are the step 2 fields of the project flow.
type ProjectDetails struct {
	Driver                  string                   `json:"driver"`
	FocusArea               string                   `json:"focusArea"`
	Function                string                   `json:"function"`
	InitiativeName          string                   `json:"initiativeName"`
	Tag                     string                   `json:"tag"`
	StatusUpdate            string                   `json:"statusUpdate"`
	Milestones              domain.ProjectMilestones `json:"milestones"`
	UOM                     string                   `json:"uom"`
	Deliverables2526        string                   `json:"deliverables2526"`
	Deliverables2627        string                   `json:"deliverables2627"`
	PrimaryResponsibility   string                   `json:"primaryResponsibility"`
	AssociateResponsibility string                   `json:"associateResponsibility"`
	ReviewFrequency         domain.Cadence           `json:"reviewFrequency"`
	ReviewForum             string                   `json:"reviewForum"`
}

func defaultProjectDetails() ProjectDetails {
	return ProjectDetails{Tag: catalog.DefaultTag, StatusUpdate: catalog.DefaultStatus}
}

// ProjectForm is a point-in-time copy of a project wizard.
type ProjectForm struct {
	Step         Step                  `json:"step"`
	InitiativeID string                `json:"initiativeId"`
	Details      ProjectDetails        `json:"details"`
	Review       domain.ReviewMetadata `json:"reviewMetadata"`
}

// ProjectWizard is the form state store and state machine of the project
// creation flow.
type ProjectWizard struct {
	form ProjectForm
}

func NewProjectWizard() *ProjectWizard {
	w := &ProjectWizard{}
	w.Complete()
	return w
}

func (w *ProjectWizard) Step() Step { return w.form.Step }

// Form returns a copy of the current state.
func (w *ProjectWizard) Form() ProjectForm {
	f := w.form
	f.Details.ReviewFrequency = f.Details.ReviewFrequency.Clone()
	return f
}

// Select records the chosen parent initiative. The choice is fixed once the
// wizard has left step 1; Back is the way to change it.
func (w *ProjectWizard) Select(initiativeID string) error {
	if w.form.Step != Step1 {
		return ErrRefused
	}
	w.form.InitiativeID = initiativeID
	return nil
}

func (w *ProjectWizard) EditDetails(fn func(*ProjectDetails)) { fn(&w.form.Details) }

func (w *ProjectWizard) EditReview(fn func(*domain.ReviewMetadata)) { fn(&w.form.Review) }

// ToggleFrequency flips one review cadence checkbox.
func (w *ProjectWizard) ToggleFrequency(f domain.Frequency) {
	w.form.Details.ReviewFrequency = w.form.Details.ReviewFrequency.Toggle(f)
}

// CanAdvance is the step 1 guard: a selection that resolves to a live initiative.
func (w *ProjectWizard) CanAdvance(r InitiativeResolver) bool {
	if w.form.Step != Step1 || !present(w.form.InitiativeID) {
		return false
	}
	return r != nil && r.HasInitiative(w.form.InitiativeID)
}

// Next moves from step 1 to step 2.
func (w *ProjectWizard) Next(r InitiativeResolver) error {
	if !w.CanAdvance(r) {
		return ErrRefused
	}
	w.form.Step = Step2
	return nil
}

// Back returns to step 1 and drops the selected initiative.
func (w *ProjectWizard) Back() {
	w.form.Step = Step1
	w.form.InitiativeID = ""
}

// Reset restores the step 2 fields to their defaults. It does nothing on step 1.
func (w *ProjectWizard) Reset() {
	if w.form.Step != Step2 {
		return
	}
	w.form.Details = defaultProjectDetails()
	w.form.Review = domain.ReviewMetadata{}
}

// CanSubmit is the step 2 guard.
func (w *ProjectWizard) CanSubmit() bool {
	return w.form.Step == Step2 && present(w.form.Details.PrimaryResponsibility)
}

// Complete returns the wizard to its initial state.
func (w *ProjectWizard) Complete() {
	w.form = ProjectForm{Step: Step1, Details: defaultProjectDetails()}
}

// InitiativeOptions builds the step 1 picker, one entry per initiative.
func InitiativeOptions(initiatives []domain.Initiative) []catalog.Option {
	out := make([]catalog.Option, 0, len(initiatives))
	for _, i := range initiatives {
		out = append(out, catalog.Option{
			Value: i.ID,
			Label: fmt.Sprintf("%s (%s • %s)", i.Name, i.Department, i.GoalYear),
		})
	}
	return out
}
