package server

import (
	"goalboard/internal/catalog"
	"goalboard/internal/delay"
	"goalboard/internal/domain"
	"goalboard/internal/nav"
	"goalboard/internal/report"
	"goalboard/internal/wizard"
)

// Request payloads

// InitiativeWizardPatch is merged onto the current form: only keys present in
// basics or details change. toggleFrequency flips each listed cadence tag.
type InitiativeWizardPatch struct {
	Basics          map[string]any `json:"basics,omitempty" doc:"Partial step 1 fields"`
	Details         map[string]any `json:"details,omitempty" doc:"Partial step 2 fields"`
	ToggleFrequency []string       `json:"toggleFrequency,omitempty" doc:"Cadence tags to flip: Monthly, Quarterly, Yearly"`
}

type ProjectWizardPatch struct {
	InitiativeID    *string        `json:"initiativeId,omitempty" doc:"Selected parent initiative"`
	Details         map[string]any `json:"details,omitempty" doc:"Partial step 2 fields"`
	ToggleFrequency []string       `json:"toggleFrequency,omitempty" doc:"Cadence tags to flip: Monthly, Quarterly, Yearly"`
}

type ReviewPatch struct {
	ISCMLevel       *string `json:"iscmLevel,omitempty"`
	FunctionalLevel *string `json:"functionalLevel,omitempty"`
	DepartmentLevel *string `json:"departmentLevel,omitempty"`
}

func (p ReviewPatch) apply(m *domain.ReviewMetadata) {
	if p.ISCMLevel != nil {
		m.ISCMLevel = *p.ISCMLevel
	}
	if p.FunctionalLevel != nil {
		m.FunctionalLevel = *p.FunctionalLevel
	}
	if p.DepartmentLevel != nil {
		m.DepartmentLevel = *p.DepartmentLevel
	}
}

// Responses

type InitiativeWizardResponse struct {
	Session    string                `json:"session"`
	Form       wizard.InitiativeForm `json:"form"`
	CanAdvance bool                  `json:"canAdvance"`
	CanSubmit  bool                  `json:"canSubmit"`
}

type ProjectWizardResponse struct {
	Session    string             `json:"session"`
	Form       wizard.ProjectForm `json:"form"`
	CanAdvance bool               `json:"canAdvance"`
	CanSubmit  bool               `json:"canSubmit"`
}

// InitiativeTransitionResponse reports whether a step transition happened. A
// refused transition is not an error.
type InitiativeTransitionResponse struct {
	Accepted bool                     `json:"accepted"`
	Wizard   InitiativeWizardResponse `json:"wizard"`
}

type ProjectTransitionResponse struct {
	Accepted bool                  `json:"accepted"`
	Wizard   ProjectWizardResponse `json:"wizard"`
}

type InitiativeSubmitResponse struct {
	Accepted   bool                     `json:"accepted"`
	Message    string                   `json:"message,omitempty"`
	Initiative *domain.Initiative       `json:"initiative,omitempty"`
	Wizard     InitiativeWizardResponse `json:"wizard"`
}

type ProjectSubmitResponse struct {
	Accepted bool                  `json:"accepted"`
	Reason   string                `json:"reason,omitempty"`
	Message  string                `json:"message,omitempty"`
	Project  *domain.Project       `json:"project,omitempty"`
	Wizard   ProjectWizardResponse `json:"wizard"`
}

type NavigationResponse struct {
	Home   string      `json:"home"`
	Routes []nav.Route `json:"routes"`
}

type CatalogResponse struct {
	Lists map[string][]catalog.Option `json:"lists"`
}

type InitiativeList struct {
	Items []domain.Initiative `json:"items"`
}

type ProjectList struct {
	Items []domain.Project `json:"items"`
}

type OptionList struct {
	Items []catalog.Option `json:"items"`
}

type DelayList struct {
	Items []delay.Item `json:"items"`
}

type ShapingGoalList struct {
	Items []report.ShapingGoalRow `json:"items"`
}

type InitiativeReportList struct {
	Items []report.InitiativeRow `json:"items"`
}

type ProjectReportList struct {
	Items []report.ProjectRow `json:"items"`
}

func initiativeView(session string, w *wizard.InitiativeWizard) InitiativeWizardResponse {
	return InitiativeWizardResponse{Session: session, Form: w.Form(), CanAdvance: w.CanAdvance(), CanSubmit: w.CanSubmit()}
}

func projectView(session string, w *wizard.ProjectWizard, r wizard.InitiativeResolver) ProjectWizardResponse {
	return ProjectWizardResponse{Session: session, Form: w.Form(), CanAdvance: w.CanAdvance(r), CanSubmit: w.CanSubmit()}
}

func orEmpty[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
