package models

// Intent is the closed set of constraint categories the detector can emit.
type Intent string

const (
	IntentAvoidDay         Intent = "avoid_day"
	IntentMaxTime          Intent = "max_time"
	IntentMinTime          Intent = "min_time"
	IntentNoClassesBetween Intent = "no_classes_between"
	IntentPreferMorning    Intent = "prefer_morning"
	IntentAvoidConsecutive Intent = "avoid_consecutive"
	IntentUnknown          Intent = "unknown"
)

// Intents lists the matchable intents in detection order.
var Intents = []Intent{
	IntentAvoidDay,
	IntentMaxTime,
	IntentMinTime,
	IntentNoClassesBetween,
	IntentPreferMorning,
	IntentAvoidConsecutive,
}

// Valid reports whether the intent is part of the closed set, UNKNOWN included.
func (i Intent) Valid() bool {
	if i == IntentUnknown {
		return true
	}
	for _, known := range Intents {
		if known == i {
			return true
		}
	}
	return false
}

// ConstraintEntities holds the parameters extracted for a constraint.
type ConstraintEntities struct {
	Days             []Weekday `json:"days,omitempty"`
	MaxTime          string    `json:"max_time,omitempty"`
	MinTime          string    `json:"min_time,omitempty"`
	StartTime        string    `json:"start_time,omitempty"`
	EndTime          string    `json:"end_time,omitempty"`
	IsMorning        bool      `json:"is_morning,omitempty"`
	AvoidConsecutive bool      `json:"avoid_consecutive,omitempty"`
	RawInput         string    `json:"raw_input,omitempty"`
}

// Empty reports whether no entity was extracted.
func (e ConstraintEntities) Empty() bool {
	return len(e.Days) == 0 &&
		e.MaxTime == "" &&
		e.MinTime == "" &&
		e.StartTime == "" &&
		e.EndTime == "" &&
		!e.IsMorning &&
		!e.AvoidConsecutive &&
		e.RawInput == ""
}

// Constraint is a structured filter derived from free text.
type Constraint struct {
	Intent     Intent             `json:"intent"`
	Entities   ConstraintEntities `json:"entities"`
	RawText    string             `json:"raw_text"`
	Confidence float64            `json:"confidence"`
}
