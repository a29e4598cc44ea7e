package report

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/stepanpomazov/resource-management/internal/model"
)

// TotalLabel is the task-title shown on a user's summary row.
const TotalLabel = "Total across all tasks"

// planFactGroup accumulates one (project, user) section of the ledger.
type planFactGroup struct {
	projectName string
	userName    string
	details     []model.PlanFactRow
	actual      float64
	planned     float64
}

// PlanVsFact builds the flat plan-vs-fact ledger: one detail row per
// task, grouped by project and user, each user group closed by exactly
// one summary row carrying that user's accumulated totals. The caller
// pre-filters tasks (completed status, period) and users (department);
// this function only reshapes. It never fails: malformed records shrink
// the output instead of producing an error.
func PlanVsFact(
	tasks []model.Task,
	users []model.User,
	projects map[model.ID]model.Project,
) []model.PlanFactRow {
	userIdx := model.UserIndex(users)

	type groupKey struct{ project, user model.ID }
	groups := make(map[groupKey]*planFactGroup)
	var order []*planFactGroup

	for _, t := range tasks {
		// A task attached to neither a project nor a person has no
		// place in either grouping axis.
		if t.GroupID == 0 && t.ResponsibleID == 0 {
			continue
		}

		key := groupKey{project: t.GroupID, user: t.ResponsibleID}
		g, ok := groups[key]
		if !ok {
			g = &planFactGroup{
				projectName: model.ProjectDisplayName(projects, t.GroupID),
				userName:    model.UserDisplayName(userIdx, t.ResponsibleID),
			}
			groups[key] = g
			order = append(order, g)
		}

		actual := t.TimeSpentInLogs.Hours()
		planned := t.TimeEstimate.Hours()
		g.details = append(g.details, model.PlanFactRow{
			ProjectName:  g.projectName,
			UserName:     g.userName,
			TaskTitle:    t.Title,
			ActualHours:  actual,
			PlannedHours: planned,
		})
		g.actual += actual
		g.planned += planned
	}

	coll := collate.New(language.Und)

	// Total order: project name, then user name, then detail rows by
	// task title with the summary row closing the group. The grouped
	// rendering relies on exactly this ordering for section breaks.
	sort.SliceStable(order, func(i, j int) bool {
		if c := coll.CompareString(order[i].projectName, order[j].projectName); c != 0 {
			return c < 0
		}
		return coll.CompareString(order[i].userName, order[j].userName) < 0
	})

	var rows []model.PlanFactRow
	for _, g := range order {
		sort.SliceStable(g.details, func(i, j int) bool {
			return coll.CompareString(g.details[i].TaskTitle, g.details[j].TaskTitle) < 0
		})
		rows = append(rows, g.details...)
		rows = append(rows, model.PlanFactRow{
			ProjectName:  g.projectName,
			UserName:     g.userName,
			TaskTitle:    TotalLabel,
			ActualHours:  g.actual,
			PlannedHours: g.planned,
			IsSummary:    true,
		})
	}
	return rows
}
