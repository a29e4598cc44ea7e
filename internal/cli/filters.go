package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var filtersCmd = &cobra.Command{
	Use:   "filters",
	Short: "List available projects and departments",
	Args:  cobra.NoArgs,
	RunE:  runFilters,
}

func runFilters(cmd *cobra.Command, args []string) error {
	svc, err := newService()
	if err != nil {
		return err
	}

	projects, departments, err := svc.Filters(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Println("Projects:")
	for _, p := range projects {
		fmt.Printf("  %6d  %s\n", p.ID, p.Name)
	}
	fmt.Println("Departments:")
	for _, d := range departments {
		fmt.Printf("  %6d  %s\n", d.ID, d.Name)
	}
	return nil
}
