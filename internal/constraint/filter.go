package constraint

import "github.com/noah-isme/intelliplan-api/internal/models"

type predicate func(schedule models.Schedule, entities models.ConstraintEntities) bool

// predicates holds one acceptance rule per intent. UNKNOWN accepts everything.
var predicates = map[models.Intent]predicate{
	models.IntentAvoidDay:         avoidsDays,
	models.IntentMaxTime:          startsNoLaterThan,
	models.IntentMinTime:          startsNoEarlierThan,
	models.IntentNoClassesBetween: avoidsWindow,
	models.IntentPreferMorning:    mostlyMorning,
	models.IntentAvoidConsecutive: avoidsConsecutive,
	models.IntentUnknown:          acceptAll,
}

// Apply keeps the schedules accepted by every constraint. With no constraints the
// input slice is returned as is.
func Apply(schedules []models.Schedule, constraints []models.Constraint) []models.Schedule {
	if len(constraints) == 0 {
		return schedules
	}
	filtered := schedules
	for _, c := range constraints {
		if c.Intent == models.IntentUnknown {
			continue
		}
		next := make([]models.Schedule, 0, len(filtered))
		for _, schedule := range filtered {
			if Accepts(schedule, c) {
				next = append(next, schedule)
			}
		}
		filtered = next
	}
	return filtered
}

// Accepts evaluates a single constraint against a schedule.
func Accepts(schedule models.Schedule, c models.Constraint) bool {
	accept, ok := predicates[c.Intent]
	if !ok {
		return true
	}
	return accept(schedule, c.Entities)
}

func avoidsDays(schedule models.Schedule, entities models.ConstraintEntities) bool {
	if len(entities.Days) == 0 {
		return true
	}
	avoid := make(map[models.Weekday]bool, len(entities.Days))
	for _, day := range entities.Days {
		avoid[day] = true
	}
	for _, block := range schedule.Blocks() {
		if avoid[block.Day] {
			return false
		}
	}
	return true
}

func startsNoLaterThan(schedule models.Schedule, entities models.ConstraintEntities) bool {
	if entities.MaxTime == "" {
		return true
	}
	for _, block := range schedule.Blocks() {
		if block.Start > entities.MaxTime {
			return false
		}
	}
	return true
}

func startsNoEarlierThan(schedule models.Schedule, entities models.ConstraintEntities) bool {
	if entities.MinTime == "" {
		return true
	}
	for _, block := range schedule.Blocks() {
		if block.Start < entities.MinTime {
			return false
		}
	}
	return true
}

func avoidsWindow(schedule models.Schedule, entities models.ConstraintEntities) bool {
	if entities.StartTime == "" || entities.EndTime == "" {
		return true
	}
	for _, block := range schedule.Blocks() {
		if block.Start >= entities.StartTime && block.Start <= entities.EndTime {
			return false
		}
	}
	return true
}

// mostlyMorning requires morning blocks to reach 60% of the slot count.
func mostlyMorning(schedule models.Schedule, _ models.ConstraintEntities) bool {
	morning := 0
	for _, block := range schedule.Blocks() {
		if block.StartHour() < 12 {
			morning++
		}
	}
	return morning*5 >= len(schedule.Slots)*3
}

func avoidsConsecutive(schedule models.Schedule, _ models.ConstraintEntities) bool {
	for _, times := range schedule.StartTimesByDay() {
		hours := distinctHours(times)
		for i := 0; i < len(hours)-1; i++ {
			if hours[i+1]-hours[i] == 1 {
				return false
			}
		}
	}
	return true
}

func acceptAll(models.Schedule, models.ConstraintEntities) bool {
	return true
}

// distinctHours collapses sorted "HH:MM" values into sorted distinct hours.
func distinctHours(times []string) []int {
	hours := make([]int, 0, len(times))
	for _, value := range times {
		hour := models.ClockHour(value)
		if len(hours) > 0 && hours[len(hours)-1] == hour {
			continue
		}
		hours = append(hours, hour)
	}
	return hours
}
