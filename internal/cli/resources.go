package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/stepanpomazov/resource-management/internal/model"
	"github.com/stepanpomazov/resource-management/internal/render"
	"github.com/stepanpomazov/resource-management/internal/report"
)

var (
	resProject int64
	resLevel   int
)

var resourcesCmd = &cobra.Command{
	Use:   "resources",
	Short: "Print the task hierarchy for one project with rollups",
	Args:  cobra.NoArgs,
	RunE:  runResources,
}

func init() {
	resourcesCmd.Flags().Int64Var(&resProject, "project", 0,
		"Project id (required)")
	resourcesCmd.Flags().IntVar(&resLevel, "level", 0,
		"Maximum nesting depth to expand")
	resourcesCmd.MarkFlagRequired("project")
}

func runResources(cmd *cobra.Command, args []string) error {
	svc, err := newService()
	if err != nil {
		return err
	}

	rows, err := svc.ResourceTree(cmd.Context(), report.Options{
		ProjectID:   model.ID(resProject),
		DetailLevel: resLevel,
	})
	if err != nil {
		return err
	}

	render.Resources(os.Stdout, rows)
	return nil
}
