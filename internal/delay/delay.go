// Package delay finds milestones whose date has passed on records that are
// not completed.
package delay

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"goalboard/internal/catalog"
	"goalboard/internal/domain"
	"goalboard/internal/store"
)

const StatusBehind = "Behind Schedule"

const daysPerMonth = 30.42

// Milestone dates are entered as full dates or as months in either order.
var layouts = []string{"2006-01-02", "2006-01", "01-2006"}

// ParseDate reads a milestone value as a date. Free text returns false.
func ParseDate(v string) (time.Time, bool) {
	v = strings.TrimSpace(v)
	for _, l := range layouts {
		if t, err := time.Parse(l, v); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Item is one overdue milestone.
type Item struct {
	Kind                  string    `json:"kind"`
	RecordID              string    `json:"recordId"`
	InitiativeName        string    `json:"initiativeName"`
	Milestone             string    `json:"milestone"`
	Deadline              time.Time `json:"deadline" format:"date-time"`
	PrimaryResponsibility string    `json:"primaryResponsibility"`
	Department            string    `json:"department"`
	Status                string    `json:"status"`
	Delay                 string    `json:"delay"`
}

// Find lists overdue milestones of every record, oldest deadline first.
func Find(snap store.Snapshot, now time.Time) []Item {
	var out []Item
	for _, in := range snap.Initiatives {
		if in.StatusUpdate == catalog.StatusCompleted {
			continue
		}
		out = append(out, overdue(in.FormData.Stages(), now, Item{
			Kind:                  "initiative",
			RecordID:              in.ID,
			InitiativeName:        in.Label(),
			PrimaryResponsibility: in.FormData.Primary,
			Department:            in.Department,
		})...)
	}
	for _, p := range snap.Projects {
		if p.StatusUpdate == catalog.StatusCompleted {
			continue
		}
		name := p.InitiativeName
		if name == "" {
			if parent, ok := snap.Initiative(p.InitiativeID); ok {
				name = parent.Label()
			}
		}
		out = append(out, overdue(p.Milestones.Stages(), now, Item{
			Kind:                  "project",
			RecordID:              p.ID,
			InitiativeName:        name,
			PrimaryResponsibility: p.PrimaryResponsibility,
			Department:            p.Function,
		})...)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Deadline.Before(out[j].Deadline) })
	return out
}

func overdue(stages []domain.Stage, now time.Time, base Item) []Item {
	var out []Item
	for _, s := range stages {
		deadline, ok := ParseDate(s.Value)
		if !ok || !deadline.Before(now) {
			continue
		}
		it := base
		it.Milestone = s.Name
		it.Deadline = deadline
		it.Status = StatusBehind
		it.Delay = Describe(deadline, now)
		out = append(out, it)
	}
	return out
}

// Describe renders how long ago deadline was, in whole years and months.
func Describe(deadline, now time.Time) string {
	days := now.Sub(deadline).Hours() / 24
	months := int(math.Round(days / daysPerMonth))
	years, rest := months/12, months%12
	if years > 0 {
		s := plural(years, "year")
		if rest > 0 {
			s += " and " + plural(rest, "month")
		}
		return s
	}
	return plural(rest, "month")
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
