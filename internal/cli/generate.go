package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/noah-isme/intelliplan-api/internal/catalog"
	"github.com/noah-isme/intelliplan-api/internal/constraint"
	"github.com/noah-isme/intelliplan-api/internal/models"
	"github.com/noah-isme/intelliplan-api/internal/scheduler"
)

type generateOptions struct {
	catalogPath   string
	courses       []string
	prefer        []string
	rank          bool
	preferMorning bool
	constraint    string
	limit         int
	noMemo        bool
}

type generateOutput struct {
	Count       int                 `json:"count"`
	Constraints []models.Constraint `json:"constraints_applied,omitempty"`
	Timetables  []scoredTimetable   `json:"timetables"`
}

type scoredTimetable struct {
	models.Schedule
	Score *scheduler.ScoreBreakdown `json:"score,omitempty"`
}

func newGenerateCmd(global *globalOptions) *cobra.Command {
	opts := &generateOptions{}
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "List conflict-free timetables for a set of courses",
		Long: `Enumerate every timetable that takes one slot of each course without two
classes starting at the same day and time.

Examples:
  intelliplanctl generate --catalog ENROLLMENT.csv --course CS101 --course MA102
  intelliplanctl generate --catalog ENROLLMENT.xlsx --course CS101,MA102 --prefer CS101=2 --rank
  intelliplanctl generate --catalog ENROLLMENT.csv --course CS101 --constraint "no classes on friday"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, global, opts)
		},
	}
	cmd.Flags().StringVarP(&opts.catalogPath, "catalog", "c", "", "enrollment export (.csv or .xlsx)")
	cmd.Flags().StringSliceVar(&opts.courses, "course", nil, "course code, repeatable or comma separated")
	cmd.Flags().StringArrayVar(&opts.prefer, "prefer", nil, "preferred slot as CODE=SLOT, repeatable")
	cmd.Flags().BoolVar(&opts.rank, "rank", false, "order timetables by score")
	cmd.Flags().BoolVar(&opts.preferMorning, "prefer-morning", false, "reward morning classes when ranking")
	cmd.Flags().StringVar(&opts.constraint, "constraint", "", "plain-English constraint to filter by")
	cmd.Flags().IntVarP(&opts.limit, "limit", "n", 0, "print at most N timetables")
	cmd.Flags().BoolVar(&opts.noMemo, "no-memo", false, "disable search memoization")
	_ = cmd.MarkFlagRequired("catalog")
	_ = cmd.MarkFlagRequired("course")
	return cmd
}

func runGenerate(cmd *cobra.Command, global *globalOptions, opts *generateOptions) error {
	preferred, err := parsePreferences(opts.prefer)
	if err != nil {
		return err
	}
	parsed, err := catalog.NewLoader(global.logger()).LoadFile(opts.catalogPath)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}

	codes := make([]string, 0, len(opts.courses))
	for _, code := range opts.courses {
		if code = strings.TrimSpace(code); code != "" {
			codes = append(codes, code)
		}
	}
	schedules, _, err := scheduler.Generate(parsed, codes, preferred, scheduler.Options{Memoize: !opts.noMemo})
	if err != nil {
		return err
	}

	var constraints []models.Constraint
	if strings.TrimSpace(opts.constraint) != "" {
		constraints = constraint.Detect(opts.constraint)
		schedules = constraint.Apply(schedules, constraints)
	}
	rankOpts := scheduler.RankOptions{PreferMorning: opts.preferMorning}
	if opts.rank {
		schedules = scheduler.Rank(schedules, rankOpts)
	}

	out := generateOutput{Count: len(schedules), Constraints: constraints, Timetables: []scoredTimetable{}}
	visible := schedules
	if opts.limit > 0 && len(visible) > opts.limit {
		visible = visible[:opts.limit]
	}
	for _, schedule := range visible {
		item := scoredTimetable{Schedule: schedule}
		if opts.rank {
			score := scheduler.Score(schedule, rankOpts)
			item.Score = &score
		}
		out.Timetables = append(out.Timetables, item)
	}

	if global.json {
		return writeJSON(cmd.OutOrStdout(), out)
	}
	printTimetables(cmd.OutOrStdout(), codes, out)
	return nil
}

func parsePreferences(values []string) (map[string][]string, error) {
	if len(values) == 0 {
		return nil, nil
	}
	preferred := make(map[string][]string, len(values))
	for _, value := range values {
		code, slot, ok := strings.Cut(value, "=")
		code, slot = strings.TrimSpace(code), strings.TrimSpace(slot)
		if !ok || code == "" || slot == "" {
			return nil, fmt.Errorf("invalid --prefer %q, expected CODE=SLOT", value)
		}
		preferred[code] = append(preferred[code], slot)
	}
	return preferred, nil
}

func printTimetables(w io.Writer, codes []string, out generateOutput) {
	for _, c := range out.Constraints {
		fmt.Fprintf(w, "Constraint: %s (confidence %.1f)\n", c.Intent, c.Confidence)
	}
	if out.Count == 0 {
		fmt.Fprintf(w, "No conflict-free timetables for %s.\n", strings.Join(codes, ", "))
		return
	}
	fmt.Fprintf(w, "%d timetable(s) for %s\n", out.Count, strings.Join(codes, ", "))
	for i, timetable := range out.Timetables {
		fmt.Fprintf(w, "\n#%d  %d credits", i+1, timetable.TotalCredits)
		if timetable.Score != nil {
			fmt.Fprintf(w, "  score %.0f", timetable.Score.Total)
		}
		fmt.Fprintln(w)
		for _, slot := range timetable.Slots {
			fmt.Fprintf(w, "  %-8s slot %-3s %s\n", slot.CourseCode, slot.SlotNumber, describeBlocks(slot.TimeBlocks))
		}
	}
	if len(out.Timetables) < out.Count {
		fmt.Fprintf(w, "\n%d more not shown\n", out.Count-len(out.Timetables))
	}
}

func describeBlocks(blocks []models.TimeBlock) string {
	if len(blocks) == 0 {
		return "(no scheduled meetings)"
	}
	parts := make([]string, 0, len(blocks))
	for _, b := range blocks {
		parts = append(parts, fmt.Sprintf("%s %s-%s", b.Day, b.Start, b.End))
	}
	return strings.Join(parts, ", ")
}
