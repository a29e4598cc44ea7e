// Package render prints report row sequences as styled text tables.
// It is presentation glue on top of the core: rows arrive already
// ordered, and the section breaks below rely on that ordering.
package render

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"

	"github.com/stepanpomazov/resource-management/internal/model"
)

// Adaptive color pairs (dark terminal value, light terminal value).
var (
	colorBlue = lipgloss.AdaptiveColor{Dark: "#5B9BD5", Light: "#2B6CB0"}
	colorGray = lipgloss.AdaptiveColor{Dark: "#868E96", Light: "#718096"}
)

// projectStyle marks a project section header.
var projectStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(colorBlue)

// userStyle marks a user sub-section header.
var userStyle = lipgloss.NewStyle().
	Bold(true)

// summaryStyle marks per-user summary and project-total lines.
var summaryStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(colorGray)

// PlanFact prints the plan-vs-fact ledger with project and user section
// breaks.
func PlanFact(w io.Writer, rows []model.PlanFactRow) {
	if len(rows) == 0 {
		fmt.Fprintln(w, "No data for the selected filters.")
		return
	}

	tw := tabwriter.NewWriter(w, 2, 4, 2, ' ', 0)
	var project, user string
	for _, row := range rows {
		if row.ProjectName != project {
			project = row.ProjectName
			user = ""
			fmt.Fprintf(tw, "%s\n", projectStyle.Render(project))
		}
		if row.UserName != user {
			user = row.UserName
			fmt.Fprintf(tw, "  %s\n", userStyle.Render(user))
		}

		line := fmt.Sprintf("    %s\t%s\t%s", row.TaskTitle,
			hours(row.ActualHours), hours(row.PlannedHours))
		if row.IsSummary {
			line = summaryStyle.Render(line)
		}
		fmt.Fprintln(tw, line)
	}
	tw.Flush()
}

// Resources prints the depth-bounded project hierarchy, indenting by
// nesting level, with the project total closing the table.
func Resources(w io.Writer, rows []model.ResourceRow) {
	if len(rows) == 0 {
		fmt.Fprintln(w, "No data for the selected filters.")
		return
	}

	fmt.Fprintf(w, "%s\n", projectStyle.Render(rows[0].ProjectName))

	tw := tabwriter.NewWriter(w, 2, 4, 2, ' ', 0)
	for _, row := range rows {
		if row.IsProjectTotal {
			fmt.Fprintln(tw, summaryStyle.Render(fmt.Sprintf("%s\t\t%s\t%s",
				row.TaskTitle, hours(row.ActualHours), hours(row.PlannedHours))))
			continue
		}

		title := row.TaskTitle
		if title == "" {
			title = row.SubtaskTitle
		}
		indent := strings.Repeat("  ", row.Level)
		fmt.Fprintf(tw, "%s%s\t%s\t%s\t%s\n", indent, title,
			row.UserName, hours(row.ActualHours), hours(row.PlannedHours))
	}
	tw.Flush()
}

// hours renders fractional hours with two decimals.
func hours(h float64) string {
	return fmt.Sprintf("%.2fh", h)
}
