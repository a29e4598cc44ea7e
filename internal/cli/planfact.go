package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/stepanpomazov/resource-management/internal/model"
	"github.com/stepanpomazov/resource-management/internal/render"
	"github.com/stepanpomazov/resource-management/internal/report"
)

var (
	pfPeriod     string
	pfFrom       string
	pfTo         string
	pfProject    int64
	pfDepartment int64
	pfStatus     int64
	pfDateField  string
)

var planFactCmd = &cobra.Command{
	Use:   "planfact",
	Short: "Print the plan-vs-fact effort ledger",
	Args:  cobra.NoArgs,
	RunE:  runPlanFact,
}

func init() {
	planFactCmd.Flags().StringVar(&pfPeriod, "period", "month",
		"Named period: week, month, quarter, year, custom")
	planFactCmd.Flags().StringVar(&pfFrom, "from", "",
		"Start date (YYYY-MM-DD, with --period custom)")
	planFactCmd.Flags().StringVar(&pfTo, "to", "",
		"End date (YYYY-MM-DD, with --period custom)")
	planFactCmd.Flags().Int64Var(&pfProject, "project", 0,
		"Limit to one project id (0 = all)")
	planFactCmd.Flags().Int64Var(&pfDepartment, "department", 0,
		"Limit users to one department id (0 = all)")
	planFactCmd.Flags().Int64Var(&pfStatus, "status", 0,
		"Status code meaning completed (0 = configured default)")
	planFactCmd.Flags().StringVar(&pfDateField, "date-field", "",
		"Task date field the period applies to (default from config)")
}

func runPlanFact(cmd *cobra.Command, args []string) error {
	svc, err := newService()
	if err != nil {
		return err
	}

	rows, err := svc.PlanFact(cmd.Context(), report.Options{
		Period:          report.Period(pfPeriod),
		DateFrom:        pfFrom,
		DateTo:          pfTo,
		ProjectID:       model.ID(pfProject),
		DepartmentID:    model.ID(pfDepartment),
		CompletedStatus: model.ID(pfStatus),
		DateField:       pfDateField,
	})
	if err != nil {
		return err
	}

	render.PlanFact(os.Stdout, rows)
	return nil
}
