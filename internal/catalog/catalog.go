// Package catalog holds the static option lists offered by the wizards.
// Values are stored verbatim on records; labels are for display only.
package catalog

// Option is one selectable value.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// DefaultStatus is the status update preselected on both wizards.
const DefaultStatus = "Not Started"

// DefaultTag is the project tag preselected on the project wizard.
const DefaultTag = "BAU"

// StatusCompleted marks a record whose milestones can no longer be late.
const StatusCompleted = "Completed"

func same(values ...string) []Option {
	out := make([]Option, len(values))
	for i, v := range values {
		out[i] = Option{Value: v, Label: v}
	}
	return out
}

var (
	GoalYears = same("2024-25", "2025-26", "2026-27", "2027-28")

	StatusUpdates = same(DefaultStatus, "In Progress", StatusCompleted, "Delayed")

	Drivers = []Option{
		{Value: "innovation", Label: "Innovation"},
		{Value: "efficiency", Label: "Efficiency"},
		{Value: "growth", Label: "Growth"},
		{Value: "compliance", Label: "Compliance"},
	}

	FocusIndicators = []Option{
		{Value: "stakeholder-update", Label: "Stakeholder Update"},
		{Value: "status-review", Label: "Status Review"},
		{Value: "milestone-tracking", Label: "Milestone Tracking"},
	}

	Departments = []Option{
		{Value: "ASSEMBLY", Label: "Assembly"},
		{Value: "ASSY- HSR/ASSY -UNITS", Label: "Assy- HSR/Assy -Units"},
		{Value: "CASE PLANT/PLATING/NEBULA", Label: "Case Plant/Plating/Nebula"},
		{Value: "CENTRAL PLANNING", Label: "Central Planning"},
		{Value: "DATE", Label: "Date"},
		{Value: "ESG", Label: "ESG"},
		{Value: "INNOVATION FUNCTION", Label: "Innovation Function"},
		{Value: "L&D", Label: "L&D"},
		{Value: "MOVT PLANT/OEM/R&D", Label: "Movt Plant/OEM/R&D"},
		{Value: "NPD", Label: "NPD"},
		{Value: "PEOPLE FUNCTION", Label: "People Function"},
		{Value: "QUALITY", Label: "Quality"},
		{Value: "SERVICES", Label: "Services"},
		{Value: "SOURCING", Label: "Sourcing"},
		{Value: "SS CASE PLANT", Label: "SS Case Plant"},
		{Value: "TOOL MFG", Label: "Tool Mfg"},
		{Value: "VENDOR PLATING", Label: "Vendor Plating"},
	}

	ReviewForums = []Option{
		{Value: "ASSY- HSR/ASSY -UNITS", Label: "Assy- HSR/Assy -Units"},
		{Value: "BOUGHT OUT QRM", Label: "Bought Out QRM"},
		{Value: "Case plant/plating/Nebula", Label: "Case plant/plating/Nebula"},
		{Value: "CSF CONNECT", Label: "CSF Connect"},
		{Value: "DATE", Label: "Date"},
		{Value: "DEFECT GROUP CFT", Label: "Defect Group CFT"},
		{Value: "ESG", Label: "ESG"},
		{Value: "ESG REVIEW", Label: "ESG Review"},
		{Value: "INTERNAL AUDIT", Label: "Internal Audit"},
		{Value: "ISCM DIGITALIZATIONA REVIEW", Label: "ISCM Digitalization Review"},
		{Value: "L&D", Label: "L&D"},
		{Value: "MONTHLY REVIEW", Label: "Monthly Review"},
		{Value: "MONTHLY REVIEW/CEO", Label: "Monthly Review/CEO"},
		{Value: "MOVT & ASSY QRM", Label: "Movt & Assy QRM"},
		{Value: "Movt Plant/OEM/R&D", Label: "Movt Plant/OEM/R&D"},
		{Value: "OGQ -QRM", Label: "OGQ -QRM"},
		{Value: "PEOPLE FUNCTION", Label: "People Function"},
		{Value: "PLANNERS MEET", Label: "Planners Meet"},
		{Value: "PLATING CFT", Label: "Plating CFT"},
		{Value: "QEMS MRM", Label: "QEMS MRM"},
		{Value: "SIX SIGMA REVIEW", Label: "Six Sigma Review"},
	}

	ISCMLevels       = same("CMO")
	FunctionalLevels = same("Function Head")
	DepartmentLevels = same("HOD")

	InitCategories = same("Running Goal", "Shaping Goal")

	CompletionStatuses = []Option{
		{Value: "Yet_to_start", Label: "Yet to start"},
		{Value: "Ongoing", Label: "Ongoing"},
		{Value: StatusCompleted, Label: StatusCompleted},
		{Value: "WIP", Label: "WIP"},
		{Value: "Dropped", Label: "Dropped"},
		{Value: "Deferred", Label: "Deferred"},
	}

	MilestoneStatuses = []Option{
		{Value: "Yet_to_Start", Label: "Yet to Start"},
		{Value: "WIP", Label: "WIP"},
		{Value: StatusCompleted, Label: StatusCompleted},
		{Value: "Dropped", Label: "Dropped"},
	}

	ReviewFrequencies = same("Monthly", "Quarterly", "Yearly")

	ProjectDrivers    = same("Movement")
	ProjectFocusAreas = same("Movement - Mechanical Mainline")
	ProjectFunctions  = same("Movement")
	ProjectTags       = same(DefaultTag)
	ProjectForums     = same("Plant Level")

	ProjectInitiativeNames = same(
		"World time (through City Disc) with India Time focus",
		"Increased Power Reserve (60hrs+) in Mainline Movement",
		"Multifunction Mechanical movement with pushers",
		"Power Reserve Indicator at 12H Position",
		"Perpetual Moonphase Complication (accurate to x days)",
		"Hour / Minute hands at center + Small Seconds @ 6H",
		"Jumping Hours through disc & Minute Indication through Hands",
		"3 Hands at Center + Big Date (2 discs at same level)",
		"Thin Automatics ; 3.60 mm ~ 3.80 mm thickness",
	)
)

// All returns every list keyed by the form field it feeds.
func All() map[string][]Option {
	return map[string][]Option{
		"goalYear":              GoalYears,
		"statusUpdate":          StatusUpdates,
		"driver":                Drivers,
		"forYourInformation":    FocusIndicators,
		"department":            Departments,
		"reviewForum":           ReviewForums,
		"iscmLevel":             ISCMLevels,
		"functionalLevel":       FunctionalLevels,
		"departmentLevel":       DepartmentLevels,
		"initCategory":          InitCategories,
		"statusOfCompletion":    CompletionStatuses,
		"milestoneStatus":       MilestoneStatuses,
		"reviewFrequency":       ReviewFrequencies,
		"projectDriver":         ProjectDrivers,
		"projectFocusArea":      ProjectFocusAreas,
		"projectFunction":       ProjectFunctions,
		"projectInitiativeName": ProjectInitiativeNames,
		"projectTag":            ProjectTags,
		"projectReviewForum":    ProjectForums,
	}
}

// Label returns the display label for value, or value itself when unknown.
func Label(options []Option, value string) string {
	for _, o := range options {
		if o.Value == value {
			return o.Label
		}
	}
	return value
}
