package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/intelliplan-api/internal/models"
)

func TestParseTimings(t *testing.T) {
	blocks, rejected := ParseTimings("Monday: 08:00 - 09:00, Wednesday:10:00-11:30")

	assert.Empty(t, rejected)
	assert.Equal(t, []models.TimeBlock{
		{Day: models.Monday, Start: "08:00", End: "09:00"},
		{Day: models.Wednesday, Start: "10:00", End: "11:30"},
	}, blocks)
}

func TestParseTimingsRejectsInvalidBlocks(t *testing.T) {
	blocks, rejected := ParseTimings("Funday: 08:00 - 09:00, Monday: 25:00 - 26:00, Tuesday: 10:00 - 09:00, Friday: 14:00 - 15:00")

	assert.Equal(t, []models.TimeBlock{{Day: models.Friday, Start: "14:00", End: "15:00"}}, blocks)
	assert.Len(t, rejected, 3)
}

func TestParseTimingsMalformedYieldsNoBlocks(t *testing.T) {
	blocks, _ := ParseTimings("TBA")
	assert.Empty(t, blocks)

	blocks, _ = ParseTimings("")
	assert.Empty(t, blocks)
}
