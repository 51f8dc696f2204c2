package domain

import (
	"strings"
	"time"
)

// Frequency is one review cadence tag.
type Frequency string

const (
	Monthly   Frequency = "Monthly"
	Quarterly Frequency = "Quarterly"
	Yearly    Frequency = "Yearly"
)

// Cadence is an insertion-ordered set of review frequencies.
type Cadence []Frequency

// Has reports whether f is part of the cadence.
func (c Cadence) Has(f Frequency) bool {
	for _, v := range c {
		if v == f {
			return true
		}
	}
	return false
}

// Add appends f unless it is already present.
func (c Cadence) Add(f Frequency) Cadence {
	if f == "" || c.Has(f) {
		return c
	}
	return append(c.Clone(), f)
}

// Toggle removes f when present and appends it otherwise.
func (c Cadence) Toggle(f Frequency) Cadence {
	if !c.Has(f) {
		return c.Add(f)
	}
	out := make(Cadence, 0, len(c)-1)
	for _, v := range c {
		if v != f {
			out = append(out, v)
		}
	}
	return out
}

// Clone returns an independent copy; nil stays nil.
func (c Cadence) Clone() Cadence {
	if c == nil {
		return nil
	}
	out := make(Cadence, len(c))
	copy(out, c)
	return out
}

// Strings returns the tags in order.
func (c Cadence) Strings() []string {
	out := make([]string, len(c))
	for i, v := range c {
		out[i] = string(v)
	}
	return out
}

// Join renders the cadence for reports and exports.
func (c Cadence) Join() string {
	return strings.Join(c.Strings(), ", ")
}

// NewCadence builds a cadence from raw tags, dropping blanks and duplicates.
func NewCadence(tags ...string) Cadence {
	var c Cadence
	for _, t := range tags {
		c = c.Add(Frequency(strings.TrimSpace(t)))
	}
	return c
}

// ReviewMetadata holds the three informational approval levels.
type ReviewMetadata struct {
	ISCMLevel       string `json:"iscmLevel"`
	FunctionalLevel string `json:"functionalLevel"`
	DepartmentLevel string `json:"departmentLevel"`
}

// IsZero reports whether no level was selected.
func (m ReviewMetadata) IsZero() bool {
	return m.ISCMLevel == "" && m.FunctionalLevel == "" && m.DepartmentLevel == ""
}

// InitiativeMilestones are the nine stage fields of an initiative. Values are
// free text, usually a date or a status.
type InitiativeMilestones struct {
	Exploration   string `json:"exploration"`
	Evaluation    string `json:"evaluation"`
	POC           string `json:"poc"`
	Validation    string `json:"validation"`
	Estimation    string `json:"estimation"`
	Decision      string `json:"decision"`
	IPR           string `json:"ipr"`
	Watch         string `json:"watch"`
	Certification string `json:"certification"`
}

// Stages lists the milestones with their display names in timeline order.
func (m InitiativeMilestones) Stages() []Stage {
	return []Stage{
		{Name: "Exploration", Value: m.Exploration},
		{Name: "Evaluation", Value: m.Evaluation},
		{Name: "POC", Value: m.POC},
		{Name: "Validation", Value: m.Validation},
		{Name: "Estimation", Value: m.Estimation},
		{Name: "Decision", Value: m.Decision},
		{Name: "IPR", Value: m.IPR},
		{Name: "Watch", Value: m.Watch},
		{Name: "Certification", Value: m.Certification},
	}
}

// Stage is one named milestone value.
type Stage struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// InitiativeFormData is the detail block of an initiative.
type InitiativeFormData struct {
	Function string `json:"function"`
	InitiativeMilestones
	Year2526        string  `json:"year2526"`
	Year2627        string  `json:"year2627"`
	Primary         string  `json:"primary"`
	Associate       string  `json:"associate"`
	ReviewFrequency Cadence `json:"reviewFrequency"`
	ReviewForum     string  `json:"reviewForum"`
}

// Tracking carries the secondary planning fields collected on the detail form.
type Tracking struct {
	OriginalPlan       string `json:"originalPlan,omitempty"`
	Metrics            string `json:"metrics,omitempty"`
	InitCategory       string `json:"initCategory,omitempty"`
	UOM                string `json:"uom,omitempty"`
	StatusOfCompletion string `json:"statusOfCompletion,omitempty"`
	SocReason          string `json:"socReason,omitempty"`
	SocTimeline        string `json:"socTimeline,omitempty"`
	ActualPlan         string `json:"actualPlan,omitempty"`
	SubFunction        string `json:"subFunction,omitempty"`
	SupportingDocument string `json:"supportingDocument,omitempty"`
}

// Initiative is one strategic goal entry. It is immutable once stored.
type Initiative struct {
	ID             string             `json:"id"`
	Name           string             `json:"name"`
	InitiativeName string             `json:"initiativeName"`
	GoalYear       string             `json:"goalYear"`
	Driver         string             `json:"driver"`
	FocusIndicator string             `json:"forYourInformation"`
	Department     string             `json:"department"`
	StatusUpdate   string             `json:"statusUpdate"`
	FormData       InitiativeFormData `json:"formData"`
	Tracking       Tracking           `json:"tracking"`
	ReviewMetadata *ReviewMetadata    `json:"reviewMetadata,omitempty"`
	CreatedAt      time.Time          `json:"createdAt" format:"date-time"`
}

// Label is the initiative text when given, else the synthesized name.
func (i Initiative) Label() string {
	if i.InitiativeName != "" {
		return i.InitiativeName
	}
	return i.Name
}

// ProjectMilestones are the nine stage fields of a project.
type ProjectMilestones struct {
	Feasibility      string `json:"feasibility"`
	DesignValidation string `json:"designValidation"`
	TechDataRelease  string `json:"techDataRelease"`
	POCManufacturing string `json:"pocManufacturing"`
	MvtValidation    string `json:"mvtValidation"`
	POCWatchAssembly string `json:"pocWatchAssly"`
	Certification    string `json:"certification"`
	MassProduction   string `json:"massProduction"`
	TimeForMass      string `json:"timeForMass"`
}

// Stages lists the milestones with their display names in timeline order.
func (m ProjectMilestones) Stages() []Stage {
	return []Stage{
		{Name: "Feasibility", Value: m.Feasibility},
		{Name: "Design Validation", Value: m.DesignValidation},
		{Name: "Tech Data Release", Value: m.TechDataRelease},
		{Name: "POC Manufacturing", Value: m.POCManufacturing},
		{Name: "Mvt Validation", Value: m.MvtValidation},
		{Name: "POC Watch Assembly", Value: m.POCWatchAssembly},
		{Name: "Certification", Value: m.Certification},
		{Name: "Mass Production", Value: m.MassProduction},
		{Name: "Time for Mass", Value: m.TimeForMass},
	}
}

// Project is one execution workstream under an initiative.
type Project struct {
	ID           string `json:"id"`
	InitiativeID string `json:"initiativeId"`
	Driver       string `json:"driver"`
	FocusArea    string `json:"focusArea"`
	Function     string `json:"function"`
	// InitiativeName is a display label picked by the user; it need not match
	// the linked initiative.
	InitiativeName          string            `json:"initiativeName"`
	Tag                     string            `json:"tag"`
	StatusUpdate            string            `json:"statusUpdate"`
	Milestones              ProjectMilestones `json:"milestones"`
	UOM                     string            `json:"uom,omitempty"`
	Deliverables2526        string            `json:"deliverables2526"`
	Deliverables2627        string            `json:"deliverables2627"`
	PrimaryResponsibility   string            `json:"primaryResponsibility"`
	AssociateResponsibility string            `json:"associateResponsibility"`
	ReviewFrequency         Cadence           `json:"reviewFrequency"`
	ReviewForum             string            `json:"reviewForum"`
	ReviewMetadata          *ReviewMetadata   `json:"reviewMetadata,omitempty"`
	CreatedAt               time.Time         `json:"createdAt" format:"date-time"`
}
