package report

import (
	"sort"

	"github.com/stepanpomazov/resource-management/internal/model"
)

// ProjectTotalLabel is the title carried by the project-wide totals row.
const ProjectTotalLabel = "Project total"

// resourceNode is a task augmented with its children for the hierarchy
// walk.
type resourceNode struct {
	task     model.Task
	children []*resourceNode
}

// ProjectResourceTree builds the depth-bounded hierarchy view for a
// single project's tasks. Tasks whose parent id is missing from the set
// are treated as roots, so the result is a forest; multiple roots are
// expected. detailLevel bounds how many nesting levels are expanded:
// rows above it are never emitted, and branches stop being walked one
// level before the cutoff. The trailing project-total row sums every
// input task regardless of depth or detailLevel. Pure and total: bad
// links or values shrink or zero the output, never fail it.
func ProjectResourceTree(
	tasks []model.Task,
	users []model.User,
	project model.Project,
	detailLevel int,
) []model.ResourceRow {
	if detailLevel < 0 {
		detailLevel = 0
	}

	userIdx := model.UserIndex(users)
	projectName := project.Name
	if projectName == "" {
		projectName = model.FallbackProjectName(project.ID)
	}

	nodes := make(map[model.ID]*resourceNode, len(tasks))
	order := make([]*resourceNode, 0, len(tasks))
	for _, t := range tasks {
		n := &resourceNode{task: t}
		nodes[t.ID] = n
		order = append(order, n)
	}

	var roots []*resourceNode
	for _, n := range order {
		parent, ok := nodes[n.task.ParentID]
		if n.task.ParentID == 0 || !ok || parent == n {
			roots = append(roots, n)
			continue
		}
		parent.children = append(parent.children, n)
	}

	// Project-wide totals cover every task, independent of the
	// depth-bounded walk below.
	var totalActual, totalPlanned float64
	for _, t := range tasks {
		totalActual += t.TimeSpentInLogs.Hours()
		totalPlanned += t.TimeEstimate.Hours()
	}

	var rows []model.ResourceRow
	var walk func(n *resourceNode, level int)
	walk = func(n *resourceNode, level int) {
		row := model.ResourceRow{
			ProjectName:  projectName,
			UserName:     model.UserDisplayName(userIdx, n.task.ResponsibleID),
			ActualHours:  n.task.TimeSpentInLogs.Hours(),
			PlannedHours: n.task.TimeEstimate.Hours(),
			Level:        level,
		}
		if level == 0 {
			row.TaskTitle = n.task.Title
		} else {
			row.SubtaskTitle = n.task.Title
		}
		rows = append(rows, row)

		// Stop expanding one level before emission stops: a child one
		// past the cutoff is never visited at all.
		if level < detailLevel {
			for _, child := range n.children {
				walk(child, level+1)
			}
		}
	}
	for _, root := range roots {
		walk(root, 0)
	}

	rows = append(rows, model.ResourceRow{
		ProjectName:    projectName,
		TaskTitle:      ProjectTotalLabel,
		ActualHours:    totalActual,
		PlannedHours:   totalPlanned,
		Level:          model.ProjectTotalLevel,
		IsProjectTotal: true,
	})

	// Traversal order is kept; only total-vs-non-total pairs relocate.
	sort.SliceStable(rows, func(i, j int) bool {
		return !rows[i].IsProjectTotal && rows[j].IsProjectTotal
	})
	return rows
}
