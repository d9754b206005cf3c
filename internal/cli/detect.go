package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/noah-isme/intelliplan-api/internal/constraint"
	"github.com/noah-isme/intelliplan-api/internal/models"
)

func newDetectCmd(global *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "detect TEXT",
		Short: "Show the constraints recognised in a sentence",
		Long: `Interpret a plain-English scheduling preference.

Examples:
  intelliplanctl detect "no classes on monday or friday"
  intelliplanctl detect "nothing before 9am and I prefer mornings" --json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			constraints := constraint.Detect(strings.Join(args, " "))
			if global.json {
				return writeJSON(cmd.OutOrStdout(), constraints)
			}
			for _, c := range constraints {
				fmt.Fprintf(cmd.OutOrStdout(), "%-20s %.1f  %s\n", c.Intent, c.Confidence, describeEntities(c.Entities))
			}
			return nil
		},
	}
}

func describeEntities(e models.ConstraintEntities) string {
	var parts []string
	if len(e.Days) > 0 {
		days := make([]string, len(e.Days))
		for i, d := range e.Days {
			days[i] = string(d)
		}
		parts = append(parts, "days="+strings.Join(days, ","))
	}
	if e.MaxTime != "" {
		parts = append(parts, "before="+e.MaxTime)
	}
	if e.MinTime != "" {
		parts = append(parts, "after="+e.MinTime)
	}
	if e.StartTime != "" && e.EndTime != "" {
		parts = append(parts, fmt.Sprintf("between=%s-%s", e.StartTime, e.EndTime))
	}
	if e.RawInput != "" {
		parts = append(parts, fmt.Sprintf("text=%q", e.RawInput))
	}
	return strings.Join(parts, " ")
}
