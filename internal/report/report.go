// Package report projects the collection store into the Shaping Goals,
// Initiative Report and Project Report tables. Every function here is pure
// and recomputed on each call.
package report

import (
	"strings"

	"github.com/samber/lo"

	"goalboard/internal/domain"
	"goalboard/internal/nav"
	"goalboard/internal/store"
)

const (
	NotAvailable   = "N/A"
	NoProjects     = "No Projects"
	UnnamedProject = "Unnamed Project"

	DefaultISCMGoal = "Customer Satisfaction"
)

// Options are the configurable constants of the projections.
type Options struct {
	ISCMGoal string
}

func (o Options) iscmGoal() string {
	if strings.TrimSpace(o.ISCMGoal) == "" {
		return DefaultISCMGoal
	}
	return o.ISCMGoal
}

func orNA(v string) string {
	if strings.TrimSpace(v) == "" {
		return NotAvailable
	}
	return v
}

// ProjectLabel is the display label of a project in the reports.
func ProjectLabel(p domain.Project) string {
	if strings.TrimSpace(p.InitiativeName) == "" {
		return UnnamedProject
	}
	return p.InitiativeName
}

type ShapingGoalRow struct {
	InitiativeID string `json:"initiativeId"`
	Link         string `json:"link"`
	Driver       string `json:"driver"`
	FocusArea    string `json:"focusArea"`
	Initiative   string `json:"initiative"`
	Projects     string `json:"projects"`
}

// ShapingGoals returns one row per initiative, in store order. Rows link to
// their initiative by id.
func ShapingGoals(snap store.Snapshot) []ShapingGoalRow {
	byInitiative := lo.GroupBy(snap.Projects, func(p domain.Project) string { return p.InitiativeID })
	return lo.Map(snap.Initiatives, func(in domain.Initiative, _ int) ShapingGoalRow {
		projects := NoProjects
		if linked := byInitiative[in.ID]; len(linked) > 0 {
			projects = strings.Join(lo.Map(linked, func(p domain.Project, _ int) string { return ProjectLabel(p) }), ", ")
		}
		return ShapingGoalRow{
			InitiativeID: in.ID,
			Link:         nav.InitiativePath(in.ID),
			Driver:       orNA(in.Driver),
			FocusArea:    orNA(in.FormData.Function),
			Initiative:   orNA(in.Label()),
			Projects:     projects,
		}
	})
}

type InitiativeRow struct {
	InitiativeID    string `json:"initiativeId"`
	ISCMGoal        string `json:"iscmGoal"`
	FunctionalGoal  string `json:"functionalGoal"`
	Initiative      string `json:"initiative"`
	Exploration     string `json:"exploration"`
	Evaluation      string `json:"evaluation"`
	POC             string `json:"poc"`
	Validation      string `json:"validation"`
	Estimation      string `json:"estimation"`
	Decision        string `json:"decision"`
	IPR             string `json:"ipr"`
	Certification   string `json:"certification"`
	Primary         string `json:"primary"`
	Associate       string `json:"associate"`
	ReviewFrequency string `json:"reviewFrequency"`
	ReviewForum     string `json:"reviewForum"`
}

func InitiativeReport(snap store.Snapshot, opts Options) []InitiativeRow {
	goal := opts.iscmGoal()
	return lo.Map(snap.Initiatives, func(in domain.Initiative, _ int) InitiativeRow {
		fd := in.FormData
		return InitiativeRow{
			InitiativeID:    in.ID,
			ISCMGoal:        goal,
			FunctionalGoal:  orNA(fd.Function),
			Initiative:      orNA(in.Label()),
			Exploration:     orNA(fd.Exploration),
			Evaluation:      orNA(fd.Evaluation),
			POC:             orNA(fd.POC),
			Validation:      orNA(fd.Validation),
			Estimation:      orNA(fd.Estimation),
			Decision:        orNA(fd.Decision),
			IPR:             orNA(fd.IPR),
			Certification:   orNA(fd.Certification),
			Primary:         orNA(fd.Primary),
			Associate:       orNA(fd.Associate),
			ReviewFrequency: orNA(fd.ReviewFrequency.Join()),
			ReviewForum:     orNA(fd.ReviewForum),
		}
	})
}

type ProjectRow struct {
	ProjectID             string `json:"projectId"`
	InitiativeID          string `json:"initiativeId"`
	ProjectName           string `json:"projectName"`
	Initiative            string `json:"initiative"`
	Status                string `json:"status"`
	Timeline              string `json:"timeline"`
	PrimaryResponsibility string `json:"primaryResponsibility"`
	Feasibility           string `json:"feasibility"`
	DesignValidation      string `json:"designValidation"`
	TechDataRelease       string `json:"techDataRelease"`
}

// ProjectReport returns one row per project. The parent initiative is
// resolved by id; an unresolved parent shows N/A.
func ProjectReport(snap store.Snapshot) []ProjectRow {
	parents := lo.SliceToMap(snap.Initiatives, func(in domain.Initiative) (string, domain.Initiative) { return in.ID, in })
	return lo.Map(snap.Projects, func(p domain.Project, _ int) ProjectRow {
		initiative := NotAvailable
		if parent, ok := parents[p.InitiativeID]; ok {
			initiative = orNA(parent.Label())
		}
		return ProjectRow{
			ProjectID:             p.ID,
			InitiativeID:          p.InitiativeID,
			ProjectName:           ProjectLabel(p),
			Initiative:            initiative,
			Status:                orNA(p.StatusUpdate),
			Timeline:              orNA(p.Milestones.TimeForMass),
			PrimaryResponsibility: orNA(p.PrimaryResponsibility),
			Feasibility:           orNA(p.Milestones.Feasibility),
			DesignValidation:      orNA(p.Milestones.DesignValidation),
			TechDataRelease:       orNA(p.Milestones.TechDataRelease),
		}
	})
}
