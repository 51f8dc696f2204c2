package engine

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"goalboard/internal/domain"
	"goalboard/internal/gateway"
	"goalboard/internal/wizard"
)

// InitiativeName is the fixed display name of an initiative.
func InitiativeName(department, goalYear string) string {
	return fmt.Sprintf("%s Initiative %s", department, goalYear)
}

// BuildInitiative turns a submitted initiative form into a record. It does not
// check the submit guard.
func BuildInitiative(f wizard.InitiativeForm, id string, createdAt time.Time) domain.Initiative {
	b, d := f.Basics, f.Details
	return domain.Initiative{
		ID:             id,
		Name:           InitiativeName(b.Department, b.GoalYear),
		InitiativeName: strings.TrimSpace(d.InitiativeName),
		GoalYear:       b.GoalYear,
		Driver:         b.Driver,
		FocusIndicator: b.FocusIndicator,
		Department:     b.Department,
		StatusUpdate:   b.StatusUpdate,
		FormData: domain.InitiativeFormData{
			Function:             d.Function,
			InitiativeMilestones: d.Milestones,
			Year2526:             d.Year2526,
			Year2627:             d.Year2627,
			Primary:              strings.TrimSpace(d.Primary),
			Associate:            d.Associate,
			ReviewFrequency:      d.ReviewFrequency.Clone(),
			ReviewForum:          d.ReviewForum,
		},
		Tracking:       d.Tracking,
		ReviewMetadata: reviewMetadata(f.Review),
		CreatedAt:      createdAt,
	}
}

// BuildProject turns a submitted project form into a record linked to the
// selected initiative. It does not check the initiative exists.
func BuildProject(f wizard.ProjectForm, id string, createdAt time.Time) domain.Project {
	d := f.Details
	return domain.Project{
		ID:                      id,
		InitiativeID:            f.InitiativeID,
		Driver:                  d.Driver,
		FocusArea:               d.FocusArea,
		Function:                d.Function,
		InitiativeName:          d.InitiativeName,
		Tag:                     d.Tag,
		StatusUpdate:            d.StatusUpdate,
		Milestones:              d.Milestones,
		UOM:                     d.UOM,
		Deliverables2526:        d.Deliverables2526,
		Deliverables2627:        d.Deliverables2627,
		PrimaryResponsibility:   strings.TrimSpace(d.PrimaryResponsibility),
		AssociateResponsibility: d.AssociateResponsibility,
		ReviewFrequency:         d.ReviewFrequency.Clone(),
		ReviewForum:             d.ReviewForum,
		ReviewMetadata:          reviewMetadata(f.Review),
		CreatedAt:               createdAt,
	}
}

func reviewMetadata(m domain.ReviewMetadata) *domain.ReviewMetadata {
	if m.IsZero() {
		return nil
	}
	return &m
}

func reviewRecord(id string, m *domain.ReviewMetadata) gateway.ReviewRecord {
	rec := gateway.ReviewRecord{InitiativeID: id}
	if m != nil {
		rec.ISCMLevel = m.ISCMLevel
		rec.FunctionalLevel = m.FunctionalLevel
		rec.DepartmentLevel = m.DepartmentLevel
	}
	return rec
}

// InitiativeBatch maps an initiative onto its gateway rows.
func InitiativeBatch(i domain.Initiative) gateway.Batch {
	return gateway.Batch{
		Kind:   "initiative",
		Review: reviewRecord(i.ID, i.ReviewMetadata),
		Goal: gateway.GoalRecord{
			InitiativeID: i.ID,
			GoalYear:     i.GoalYear,
			StatusUpdate: i.StatusUpdate,
			Driver:       i.Driver,
			Department:   i.Department,
		},
	}
}

// ProjectBatch maps a project onto its gateway rows. Both rows are keyed by
// the project id; the goal year is the calendar year of creation and the
// function stands in for the department.
func ProjectBatch(p domain.Project) gateway.Batch {
	return gateway.Batch{
		Kind:   "project",
		Review: reviewRecord(p.ID, p.ReviewMetadata),
		Goal: gateway.GoalRecord{
			InitiativeID: p.ID,
			GoalYear:     strconv.Itoa(p.CreatedAt.Year()),
			StatusUpdate: p.StatusUpdate,
			Driver:       p.Driver,
			Department:   p.Function,
		},
	}
}
