// Package catalog ingests course offerings from CSV or XLSX files and holds the active
// catalog snapshot.
package catalog

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/noah-isme/intelliplan-api/internal/models"
)

var timingPattern = regexp.MustCompile(`(\w+):\s*(\d{2}:\d{2})\s*-\s*(\d{2}:\d{2})`)

// ParseTimings reads "Monday: 08:00 - 09:00, Tuesday: 09:00 - 10:00" into time blocks.
// Blocks with an unknown day, an invalid clock value or start >= end are returned in
// rejected instead.
func ParseTimings(raw string) (blocks []models.TimeBlock, rejected []string) {
	for _, match := range timingPattern.FindAllStringSubmatch(raw, -1) {
		block := models.TimeBlock{Day: models.Weekday(match[1]), Start: match[2], End: match[3]}
		if !block.Day.Valid() || !validClock(block.Start) || !validClock(block.End) || block.Start >= block.End {
			rejected = append(rejected, match[0])
			continue
		}
		blocks = append(blocks, block)
	}
	return blocks, rejected
}

func validClock(value string) bool {
	hourPart, minutePart, ok := strings.Cut(value, ":")
	if !ok {
		return false
	}
	hour, err := strconv.Atoi(hourPart)
	if err != nil || hour < 0 || hour > 23 {
		return false
	}
	minute, err := strconv.Atoi(minutePart)
	return err == nil && minute >= 0 && minute <= 59
}
