package export

import (
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
)

const (
	productID        = "-//IntelliPlan//Timetable//EN"
	localStampFormat = "20060102T150405"
)

// Event is one calendar entry. Weekly events repeat every week for Weeks occurrences,
// or indefinitely when Weeks is zero. Start and End are written as wall-clock times in
// their location so recurrences keep the same local hour across DST changes.
type Event struct {
	UID         string
	Summary     string
	Description string
	Location    string
	Start       time.Time
	End         time.Time
	Weekly      bool
	Weeks       int
}

// ICSExporter renders events as an iCalendar document.
type ICSExporter struct {
	now func() time.Time
}

// NewICSExporter constructs an iCalendar exporter.
func NewICSExporter() *ICSExporter {
	return &ICSExporter{now: time.Now}
}

// Render serializes the events into a VCALENDAR with METHOD:PUBLISH.
func (e *ICSExporter) Render(events []Event) ([]byte, error) {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(productID)

	stamp := e.now().UTC()
	if zone := zoneName(events); zone != "" {
		cal.SetXWRTimezone(zone)
	}
	for _, ev := range events {
		if !ev.End.After(ev.Start) {
			return nil, fmt.Errorf("event %q ends before it starts", ev.UID)
		}
		event := cal.AddEvent(ev.UID)
		event.SetDtStampTime(stamp)
		setLocalTime(event, ics.ComponentPropertyDtStart, ev.Start)
		setLocalTime(event, ics.ComponentPropertyDtEnd, ev.End)
		event.SetSummary(ev.Summary)
		if ev.Description != "" {
			event.SetDescription(ev.Description)
		}
		if ev.Location != "" {
			event.SetLocation(ev.Location)
		}
		if ev.Weekly {
			event.AddProperty(ics.ComponentPropertyRrule, weeklyRule(ev))
		}
	}
	return []byte(cal.Serialize()), nil
}

func weeklyRule(ev Event) string {
	day := strings.ToUpper(ev.Start.Weekday().String()[:2])
	rule := "FREQ=WEEKLY;BYDAY=" + day
	if ev.Weeks > 0 {
		rule += fmt.Sprintf(";COUNT=%d", ev.Weeks)
	}
	return rule
}

// setLocalTime writes t with a TZID parameter, or in UTC form when t has no named zone.
func setLocalTime(event *ics.VEvent, property ics.ComponentProperty, t time.Time) {
	zone := tzid(t.Location())
	if zone == "" {
		event.SetProperty(property, t.UTC().Format(localStampFormat+"Z"))
		return
	}
	event.SetProperty(property, t.Format(localStampFormat), &ics.KeyValues{
		Key:   string(ics.ParameterTzid),
		Value: []string{zone},
	})
}

func tzid(loc *time.Location) string {
	switch name := loc.String(); name {
	case "UTC", "Local", "":
		return ""
	default:
		return name
	}
}

func zoneName(events []Event) string {
	for _, ev := range events {
		if zone := tzid(ev.Start.Location()); zone != "" {
			return zone
		}
	}
	return ""
}
