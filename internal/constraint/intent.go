// Package constraint turns informal scheduling phrases into structured constraints and
// filters timetables with them.
package constraint

import (
	"regexp"
	"strings"

	"github.com/noah-isme/intelliplan-api/internal/models"
)

const (
	dayList   = `(\w+(?:\s+or\s+\w+)*)`
	timeToken = `(\d{1,2}(?::\d{2})?\s*(?:am|pm)?)`

	confidenceMatched = 0.9
	confidenceWeak    = 0.5
)

type extractor func(groups []string) models.ConstraintEntities

type intentPatterns struct {
	intent   models.Intent
	patterns []*regexp.Regexp
	extract  extractor
}

// library is tried in order; at most one constraint is emitted per intent.
var library = []intentPatterns{
	{
		intent: models.IntentAvoidDay,
		patterns: compile(
			`no\s+class(?:es)?\s+on\s+`+dayList,
			`avoid\s+`+dayList,
			`(?:not\s+on|skip)\s+`+dayList,
		),
		extract: extractDays,
	},
	{
		intent: models.IntentMaxTime,
		patterns: compile(
			`(?:no\s+classes?|all\s+classes?)\s+after\s+`+timeToken,
			`(?:end|finish)\s+(?:before|by)\s+`+timeToken,
		),
		extract: func(groups []string) models.ConstraintEntities {
			return models.ConstraintEntities{MaxTime: parseOrEmpty(groups[0])}
		},
	},
	{
		intent: models.IntentMinTime,
		patterns: compile(
			`(?:no\s+classes?|all\s+classes?)\s+before\s+`+timeToken,
			`start\s+(?:from|after)\s+`+timeToken,
		),
		extract: func(groups []string) models.ConstraintEntities {
			return models.ConstraintEntities{MinTime: parseOrEmpty(groups[0])}
		},
	},
	{
		intent: models.IntentNoClassesBetween,
		patterns: compile(
			`no\s+class(?:es)?\s+(?:from|between)\s+` + timeToken + `\s+(?:to|and)\s+` + timeToken,
		),
		extract: func(groups []string) models.ConstraintEntities {
			start, end := parseOrEmpty(groups[0]), parseOrEmpty(groups[1])
			if start == "" || end == "" {
				return models.ConstraintEntities{}
			}
			return models.ConstraintEntities{StartTime: start, EndTime: end}
		},
	},
	{
		intent: models.IntentPreferMorning,
		patterns: compile(
			`(?:all|only)\s+morning\s+classes?`,
			`prefer\s+morning`,
		),
		extract: func([]string) models.ConstraintEntities {
			return models.ConstraintEntities{IsMorning: true}
		},
	},
	{
		intent: models.IntentAvoidConsecutive,
		patterns: compile(
			`no\s+(?:back\s+to\s+back|consecutive|continuous)\s+classes?`,
			`avoid\s+(?:back\s+to\s+back|consecutive)`,
		),
		extract: func([]string) models.ConstraintEntities {
			return models.ConstraintEntities{AvoidConsecutive: true}
		},
	},
}

var dayTable = map[string][]models.Weekday{
	"monday":    {models.Monday},
	"tuesday":   {models.Tuesday},
	"wednesday": {models.Wednesday},
	"thursday":  {models.Thursday},
	"friday":    {models.Friday},
	"saturday":  {models.Saturday},
	"sunday":    {models.Sunday},
	"weekday":   {models.Monday, models.Tuesday, models.Wednesday, models.Thursday, models.Friday},
	"weekend":   {models.Saturday, models.Sunday},
}

var orSeparator = regexp.MustCompile(`\s+or\s+`)

// Detect scans text against the phrase library and returns the matching constraints.
// Text that matches nothing yields a single UNKNOWN constraint with zero confidence.
func Detect(text string) []models.Constraint {
	normalized := strings.ToLower(strings.TrimSpace(text))

	var constraints []models.Constraint
	for _, entry := range library {
		for _, pattern := range entry.patterns {
			match := pattern.FindStringSubmatch(normalized)
			if match == nil {
				continue
			}
			entities := entry.extract(match[1:])
			// A day phrase with no known day extracts nothing and stays weak.
			confidence := confidenceWeak
			if !entities.Empty() {
				confidence = confidenceMatched
			}
			constraints = append(constraints, models.Constraint{
				Intent:     entry.intent,
				Entities:   entities,
				RawText:    text,
				Confidence: confidence,
			})
			break
		}
	}

	if len(constraints) == 0 {
		return []models.Constraint{{
			Intent:     models.IntentUnknown,
			Entities:   models.ConstraintEntities{RawInput: text},
			RawText:    text,
			Confidence: 0,
		}}
	}
	return constraints
}

// ParseDays maps a phrase such as "monday or friday" to weekdays, dropping tokens it
// does not recognise.
func ParseDays(phrase string) []models.Weekday {
	var days []models.Weekday
	seen := make(map[models.Weekday]bool)
	for _, token := range orSeparator.Split(strings.ToLower(strings.TrimSpace(phrase)), -1) {
		token = strings.TrimSpace(token)
		mapped, ok := dayTable[token]
		if !ok {
			mapped, ok = dayTable[strings.TrimSuffix(token, "s")]
		}
		if !ok {
			continue
		}
		for _, day := range mapped {
			if seen[day] {
				continue
			}
			seen[day] = true
			days = append(days, day)
		}
	}
	return days
}

func extractDays(groups []string) models.ConstraintEntities {
	return models.ConstraintEntities{Days: ParseDays(groups[0])}
}

func parseOrEmpty(raw string) string {
	value, err := ParseTime(raw)
	if err != nil {
		return ""
	}
	return value
}

func compile(expressions ...string) []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, 0, len(expressions))
	for _, expr := range expressions {
		patterns = append(patterns, regexp.MustCompile(expr))
	}
	return patterns
}
