// Package nav lists the logical routes of the dashboard.
package nav

import (
	"net/url"
	"strings"
)

type Route struct {
	Name  string `json:"name"`
	Path  string `json:"path"`
	Title string `json:"title"`
}

const (
	Dashboard        = "/dashboard"
	CreateInitiative = "/create-initiative"
	CreateProject    = "/create-project"
	DelayManagement  = "/delay-management"
	Reports          = "/reports"
	InitiativeDetail = "/initiative/{id}"

	// Home redirects to Dashboard.
	Home = "/"
)

// Routes returns every route in menu order. None of them is guarded.
func Routes() []Route {
	return []Route{
		{Name: "dashboard", Path: Dashboard, Title: "Dashboard"},
		{Name: "create-initiative", Path: CreateInitiative, Title: "Create Initiative"},
		{Name: "create-project", Path: CreateProject, Title: "Create Project"},
		{Name: "delay-management", Path: DelayManagement, Title: "Delay Management"},
		{Name: "reports", Path: Reports, Title: "Reports"},
		{Name: "initiative-detail", Path: InitiativeDetail, Title: "Initiative Details"},
	}
}

// InitiativePath is the detail route of one initiative.
func InitiativePath(id string) string {
	return strings.Replace(InitiativeDetail, "{id}", url.PathEscape(id), 1)
}

// Resolve maps a request path to its route, following the home redirect.
func Resolve(path string) (Route, bool) {
	if path == "" || path == Home {
		path = Dashboard
	}
	for _, r := range Routes() {
		if r.Path == path {
			return r, true
		}
	}
	if id, ok := strings.CutPrefix(path, "/initiative/"); ok && id != "" && !strings.Contains(id, "/") {
		return Routes()[len(Routes())-1], true
	}
	return Route{}, false
}
