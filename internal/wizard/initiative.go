package wizard

import (
	"goalboard/internal/catalog"
	"goalboard/internal/domain"
)

// InitiativeBasics are the step 1 selections.
type InitiativeBasics struct {
	GoalYear       string `json:"goalYear"`
	Driver         string `json:"driver"`
	FocusIndicator string `json:"forYourInformation"`
	Department     string `json:"department"`
	StatusUpdate   string `json:"statusUpdate"`
}

// InitiativeDetails are the step 2 fields.
type InitiativeDetails struct {
	InitiativeName  string                      `json:"initiativeName"`
	Function        string                      `json:"function"`
	Milestones      domain.InitiativeMilestones `json:"milestones"`
	Year2526        string                      `json:"year2526"`
	Year2627        string                      `json:"year2627"`
	Primary         string                      `json:"primary"`
	Associate       string                      `json:"associate"`
	ReviewFrequency domain.Cadence              `json:"reviewFrequency"`
	ReviewForum     string                      `json:"reviewForum"`
	Tracking        domain.Tracking             `json:"tracking"`
}

// InitiativeForm is a point-in-time copy of an initiative wizard.
type InitiativeForm struct {
	Step    Step                  `json:"step"`
	Basics  InitiativeBasics      `json:"basics"`
	Details InitiativeDetails     `json:"details"`
	Review  domain.ReviewMetadata `json:"reviewMetadata"`
}

// InitiativeWizard is the form state store and state machine of the
// initiative creation flow.
type InitiativeWizard struct {
	form InitiativeForm
}

func NewInitiativeWizard() *InitiativeWizard {
	w := &InitiativeWizard{}
	w.Complete()
	return w
}

func (w *InitiativeWizard) Step() Step { return w.form.Step }

// Form returns a copy of the current state.
func (w *InitiativeWizard) Form() InitiativeForm {
	f := w.form
	f.Details.ReviewFrequency = f.Details.ReviewFrequency.Clone()
	return f
}

func (w *InitiativeWizard) EditBasics(fn func(*InitiativeBasics)) { fn(&w.form.Basics) }

func (w *InitiativeWizard) EditDetails(fn func(*InitiativeDetails)) { fn(&w.form.Details) }

func (w *InitiativeWizard) EditReview(fn func(*domain.ReviewMetadata)) { fn(&w.form.Review) }

// ToggleFrequency flips one review cadence checkbox.
func (w *InitiativeWizard) ToggleFrequency(f domain.Frequency) {
	w.form.Details.ReviewFrequency = w.form.Details.ReviewFrequency.Toggle(f)
}

// CanAdvance is the step 1 guard.
func (w *InitiativeWizard) CanAdvance() bool {
	b := w.form.Basics
	return w.form.Step == Step1 && present(b.GoalYear, b.Driver, b.FocusIndicator, b.Department)
}

// Next moves from step 1 to step 2.
func (w *InitiativeWizard) Next() error {
	if !w.CanAdvance() {
		return ErrRefused
	}
	w.form.Step = Step2
	return nil
}

// Back returns to step 1 keeping every field.
func (w *InitiativeWizard) Back() {
	w.form.Step = Step1
}

// Reset clears the step 2 fields. It does nothing on step 1.
func (w *InitiativeWizard) Reset() {
	if w.form.Step != Step2 {
		return
	}
	w.form.Details = InitiativeDetails{}
	w.form.Review = domain.ReviewMetadata{}
}

// CanSubmit is the step 2 guard.
func (w *InitiativeWizard) CanSubmit() bool {
	d := w.form.Details
	return w.form.Step == Step2 && present(d.InitiativeName, d.Primary)
}

// Complete returns the wizard to its initial state with every field cleared.
func (w *InitiativeWizard) Complete() {
	w.form = InitiativeForm{
		Step:   Step1,
		Basics: InitiativeBasics{StatusUpdate: catalog.DefaultStatus},
	}
}
