package report

import (
	"sort"

	"github.com/samber/lo"

	"goalboard/internal/domain"
	"goalboard/internal/store"
)

// Count is one labelled tally.
type Count struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// StageCounts tallies the values entered for one milestone stage.
type StageCounts struct {
	Stage  string  `json:"stage"`
	Values []Count `json:"values"`
}

// Summary feeds the dashboard view.
type Summary struct {
	Initiatives           int           `json:"initiatives"`
	Projects              int           `json:"projects"`
	ByDriver              []Count       `json:"byDriver"`
	ByDepartment          []Count       `json:"byDepartment"`
	ByStatus              []Count       `json:"byStatus"`
	ProjectsPerInitiative []Count       `json:"projectsPerInitiative"`
	MilestoneStatus       []StageCounts `json:"milestoneStatus"`
}

func tally[T any](items []T, key func(T) string) []Count {
	counts := lo.CountValuesBy(items, func(item T) string { return orNA(key(item)) })
	out := lo.MapToSlice(counts, func(k string, v int) Count { return Count{Label: k, Count: v} })
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Label < out[j].Label
	})
	return out
}

func Dashboard(snap store.Snapshot) Summary {
	perInitiative := lo.Map(snap.Initiatives, func(in domain.Initiative, _ int) Count {
		return Count{Label: orNA(in.Label()), Count: len(snap.ProjectsFor(in.ID))}
	})

	var stages []StageCounts
	if len(snap.Initiatives) > 0 {
		names := lo.Map(snap.Initiatives[0].FormData.Stages(), func(s domain.Stage, _ int) string { return s.Name })
		for i, name := range names {
			idx := i
			stages = append(stages, StageCounts{
				Stage: name,
				Values: tally(snap.Initiatives, func(in domain.Initiative) string {
					return in.FormData.Stages()[idx].Value
				}),
			})
		}
	}

	return Summary{
		Initiatives:           len(snap.Initiatives),
		Projects:              len(snap.Projects),
		ByDriver:              tally(snap.Initiatives, func(in domain.Initiative) string { return in.Driver }),
		ByDepartment:          tally(snap.Initiatives, func(in domain.Initiative) string { return in.Department }),
		ByStatus:              tally(snap.Initiatives, func(in domain.Initiative) string { return in.StatusUpdate }),
		ProjectsPerInitiative: perInitiative,
		MilestoneStatus:       stages,
	}
}

// Detail is the initiative detail view.
type Detail struct {
	Initiative domain.Initiative `json:"initiative"`
	Projects   []domain.Project  `json:"projects"`
	Timeline   []domain.Stage    `json:"timeline"`
}

// InitiativeDetail looks up one initiative by id with its linked projects.
func InitiativeDetail(snap store.Snapshot, id string) (Detail, bool) {
	in, ok := snap.Initiative(id)
	if !ok {
		return Detail{}, false
	}
	projects := snap.ProjectsFor(id)
	if projects == nil {
		projects = []domain.Project{}
	}
	return Detail{Initiative: in, Projects: projects, Timeline: in.FormData.Stages()}, true
}
