package model

// ProjectTotalLevel is the Level sentinel carried by a project-total
// row, distinguishing it from any real nesting depth (which is ≥ 0).
const ProjectTotalLevel = -1

// PlanFactRow is one row of the flat plan-vs-fact ledger. Detail rows
// describe a single task; summary rows close out a user group and carry
// that user's accumulated totals.
type PlanFactRow struct {
	ProjectName  string
	UserName     string
	TaskTitle    string
	ActualHours  float64
	PlannedHours float64

	// IsSummary marks the per-user totals row that follows the user's
	// detail rows.
	IsSummary bool
}

// ResourceRow is one row of the depth-bounded project hierarchy view.
// Root tasks carry their title in TaskTitle; nested tasks carry it in
// SubtaskTitle instead, with Level giving the nesting depth.
type ResourceRow struct {
	ProjectName  string
	TaskTitle    string
	SubtaskTitle string
	UserName     string
	ActualHours  float64
	PlannedHours float64

	// Level is the nesting depth (0 for roots) or ProjectTotalLevel
	// for the trailing totals row.
	Level int

	// IsProjectTotal marks the single project-wide totals row.
	IsProjectTotal bool
}
