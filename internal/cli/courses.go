package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/noah-isme/intelliplan-api/internal/catalog"
)

func newCoursesCmd(global *globalOptions) *cobra.Command {
	var (
		catalogPath string
		search      string
	)
	cmd := &cobra.Command{
		Use:   "courses",
		Short: "List the courses in an enrollment export",
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := catalog.NewLoader(global.logger()).LoadFile(catalogPath)
			if err != nil {
				return fmt.Errorf("load catalog: %w", err)
			}
			snapshot := catalog.NewStore().Replace(parsed, catalogPath)
			courses := snapshot.Courses(search)
			if global.json {
				return writeJSON(cmd.OutOrStdout(), courses)
			}
			for _, course := range courses {
				fmt.Fprintf(cmd.OutOrStdout(), "%-10s %-40s %d credits, %d slot(s)\n", course.CourseCode, course.CourseName, course.Credits, course.AvailableSlots)
			}
			stats := snapshot.Stats()
			fmt.Fprintf(cmd.OutOrStdout(), "\n%d courses, %d slots\n", stats.TotalCourses, stats.TotalSlots)
			return nil
		},
	}
	cmd.Flags().StringVarP(&catalogPath, "catalog", "c", "", "enrollment export (.csv or .xlsx)")
	cmd.Flags().StringVarP(&search, "search", "s", "", "filter by code or name")
	_ = cmd.MarkFlagRequired("catalog")
	return cmd
}
