package scheduler

import (
	"sort"

	"github.com/noah-isme/intelliplan-api/internal/models"
)

const (
	maxGapScore     = 10.0
	maxMorningScore = 10.0
	balanceScore    = 5.0
	noonHour        = 12
)

// RankOptions selects the optional scoring terms.
type RankOptions struct {
	PreferMorning bool `json:"prefer_morning"`
}

// ScoreBreakdown lists the terms that make up a schedule score.
type ScoreBreakdown struct {
	Gap     float64 `json:"gap"`
	Morning float64 `json:"morning"`
	Balance float64 `json:"balance"`
	Total   float64 `json:"total"`
}

// Score computes the desirability of a schedule under the given options.
func Score(schedule models.Schedule, opts RankOptions) ScoreBreakdown {
	var result ScoreBreakdown
	gaps := float64(GapHours(schedule))
	if gaps > maxGapScore {
		gaps = maxGapScore
	}
	result.Gap = maxGapScore - gaps
	if opts.PreferMorning {
		result.Morning = float64(2 * MorningBlocks(schedule))
		if result.Morning > maxMorningScore {
			result.Morning = maxMorningScore
		}
	}
	if len(activeDays(schedule)) > 1 {
		result.Balance = balanceScore
	}
	result.Total = result.Gap + result.Morning + result.Balance
	return result
}

// Rank orders schedules by descending score. Equal scores keep their input order.
func Rank(schedules []models.Schedule, opts RankOptions) []models.Schedule {
	type scored struct {
		schedule models.Schedule
		score    float64
	}
	items := make([]scored, len(schedules))
	for i, schedule := range schedules {
		items[i] = scored{schedule: schedule, score: Score(schedule, opts).Total}
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].score > items[j].score
	})
	ranked := make([]models.Schedule, len(items))
	for i, item := range items {
		ranked[i] = item.schedule
	}
	return ranked
}

// GapHours sums, per day, the idle hours between consecutive distinct start times.
// Adjacent hours contribute nothing.
func GapHours(schedule models.Schedule) int {
	total := 0
	for _, times := range schedule.StartTimesByDay() {
		for i := 0; i < len(times)-1; i++ {
			diff := models.ClockHour(times[i+1]) - models.ClockHour(times[i])
			if diff > 1 {
				total += diff - 1
			}
		}
	}
	return total
}

// MorningBlocks counts time blocks that start before noon.
func MorningBlocks(schedule models.Schedule) int {
	count := 0
	for _, block := range schedule.Blocks() {
		if block.StartHour() < noonHour {
			count++
		}
	}
	return count
}

func activeDays(schedule models.Schedule) map[models.Weekday]struct{} {
	days := make(map[models.Weekday]struct{})
	for _, block := range schedule.Blocks() {
		days[block.Day] = struct{}{}
	}
	return days
}
