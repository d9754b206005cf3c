package constraint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/intelliplan-api/internal/models"
)

func TestDetectAvoidDays(t *testing.T) {
	constraints := Detect("No classes on Monday or Friday")

	require.Len(t, constraints, 1)
	c := constraints[0]
	assert.Equal(t, models.IntentAvoidDay, c.Intent)
	assert.Equal(t, []models.Weekday{models.Monday, models.Friday}, c.Entities.Days)
	assert.Equal(t, "No classes on Monday or Friday", c.RawText)
	assert.Equal(t, 0.9, c.Confidence)
}

func TestDetectWeekendExpandsToDays(t *testing.T) {
	constraints := Detect("avoid weekends")

	require.Len(t, constraints, 1)
	assert.Equal(t, []models.Weekday{models.Saturday, models.Sunday}, constraints[0].Entities.Days)
}

func TestDetectTimes(t *testing.T) {
	maxTime := Detect("no classes after 5 pm")
	require.Len(t, maxTime, 1)
	assert.Equal(t, models.IntentMaxTime, maxTime[0].Intent)
	assert.Equal(t, "17:00", maxTime[0].Entities.MaxTime)

	minTime := Detect("No classes before 9am please")
	require.Len(t, minTime, 1)
	assert.Equal(t, models.IntentMinTime, minTime[0].Intent)
	assert.Equal(t, "09:00", minTime[0].Entities.MinTime)

	between := Detect("no classes between 12 and 2 pm")
	require.Len(t, between, 1)
	assert.Equal(t, models.IntentNoClassesBetween, between[0].Intent)
	assert.Equal(t, "12:00", between[0].Entities.StartTime)
	assert.Equal(t, "14:00", between[0].Entities.EndTime)
}

func TestDetectMultipleIntentsInLibraryOrder(t *testing.T) {
	constraints := Detect("I prefer morning slots and no back to back classes")

	require.Len(t, constraints, 2)
	assert.Equal(t, models.IntentPreferMorning, constraints[0].Intent)
	assert.True(t, constraints[0].Entities.IsMorning)
	assert.Equal(t, models.IntentAvoidConsecutive, constraints[1].Intent)
	assert.True(t, constraints[1].Entities.AvoidConsecutive)
}

func TestDetectWeakConfidenceWithoutEntities(t *testing.T) {
	unparsable := Detect("no classes after 25")
	require.Len(t, unparsable, 1)
	assert.Equal(t, models.IntentMaxTime, unparsable[0].Intent)
	assert.Empty(t, unparsable[0].Entities.MaxTime)
	assert.Equal(t, 0.5, unparsable[0].Confidence)
}

// An avoid-day phrase that names no known day carries no entities. It is reported as a
// weak match rather than a confident one, and it removes nothing when applied.
func TestDetectAvoidDayWithoutKnownDayIsWeak(t *testing.T) {
	for _, text := range []string{"skip the lab", "avoid someday", "no classes on holidays"} {
		constraints := Detect(text)
		require.Len(t, constraints, 1, text)
		c := constraints[0]
		assert.Equal(t, models.IntentAvoidDay, c.Intent, text)
		assert.Empty(t, c.Entities.Days, text)
		assert.True(t, c.Entities.Empty(), text)
		assert.Equal(t, 0.5, c.Confidence, text)

		schedules := []models.Schedule{scheduleOf(block(models.Monday, "08:00", "09:00"))}
		assert.Equal(t, schedules, Apply(schedules, constraints), text)
	}
}

func TestDetectMinTimeAcceptsSingularAndPlural(t *testing.T) {
	for _, text := range []string{"no class before 10am", "no classes before 10am", "all classes before 10am"} {
		constraints := Detect(text)
		require.Len(t, constraints, 1, text)
		assert.Equal(t, models.IntentMinTime, constraints[0].Intent, text)
		assert.Equal(t, "10:00", constraints[0].Entities.MinTime, text)
		assert.Equal(t, 0.9, constraints[0].Confidence, text)
	}
}

func TestDetectUnknown(t *testing.T) {
	constraints := Detect("something vague")

	require.Len(t, constraints, 1)
	assert.Equal(t, models.IntentUnknown, constraints[0].Intent)
	assert.Equal(t, "something vague", constraints[0].Entities.RawInput)
	assert.Zero(t, constraints[0].Confidence)
}

func TestParseDaysDropsUnknownTokens(t *testing.T) {
	days := ParseDays("Mondays or someday or weekday")

	assert.Equal(t, []models.Weekday{
		models.Monday, models.Tuesday, models.Wednesday, models.Thursday, models.Friday,
	}, days)
}
