package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDataset() Dataset {
	return Dataset{
		Title:    "Timetable",
		Subtitle: "CS101, MA102",
		Headers:  []string{"Course", "Slot", "Day"},
		Rows: [][]string{
			{"CS101", "1", "Monday"},
			{"MA102", "2", "Tuesday"},
		},
	}
}

func TestCSVExporterRender(t *testing.T) {
	out, err := NewCSVExporter().Render(sampleDataset())
	require.NoError(t, err)

	assert.Equal(t, "Course,Slot,Day\nCS101,1,Monday\nMA102,2,Tuesday\n", string(out))
}

func TestCSVExporterRejectsRaggedRows(t *testing.T) {
	data := sampleDataset()
	data.Rows = append(data.Rows, []string{"only-one"})

	_, err := NewCSVExporter().Render(data)
	assert.Error(t, err)

	_, err = NewCSVExporter().Render(Dataset{})
	assert.Error(t, err)
}

func TestPDFExporterRender(t *testing.T) {
	out, err := NewPDFExporter().Render(sampleDataset())
	require.NoError(t, err)

	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
}

func TestColumnWidthsFillPage(t *testing.T) {
	widths := columnWidths(sampleDataset())

	sum := 0.0
	for _, w := range widths {
		sum += w
	}
	assert.InDelta(t, pageWidth, sum, 0.001)
	assert.Greater(t, widths[2], widths[1])
}

func TestICSExporterRender(t *testing.T) {
	exporter := NewICSExporter()
	exporter.now = func() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) }
	start := time.Date(2024, 1, 8, 8, 0, 0, 0, time.UTC)

	out, err := exporter.Render([]Event{{
		UID:     "cs101-1-monday-0800@intelliplan",
		Summary: "CS101 Intro to CS",
		Start:   start,
		End:     start.Add(time.Hour),
		Weekly:  true,
		Weeks:   14,
	}})
	require.NoError(t, err)

	text := string(out)
	assert.True(t, strings.HasPrefix(text, "BEGIN:VCALENDAR"))
	assert.Contains(t, text, "METHOD:PUBLISH")
	assert.Contains(t, text, "SUMMARY:CS101 Intro to CS")
	assert.Contains(t, text, "RRULE:FREQ=WEEKLY;BYDAY=MO;COUNT=14")
	assert.Contains(t, text, "DTSTART:20240108T080000Z")
}

func TestICSExporterAnchorsRecurrenceInLocalZone(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	exporter := NewICSExporter()
	exporter.now = func() time.Time { return time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC) }
	start := time.Date(2024, 3, 4, 8, 0, 0, 0, loc)

	out, err := exporter.Render([]Event{{
		UID:    "cs101-1-monday-0800@intelliplan",
		Start:  start,
		End:    start.Add(90 * time.Minute),
		Weekly: true,
		Weeks:  4,
	}})
	require.NoError(t, err)

	text := string(out)
	assert.Contains(t, text, "DTSTART;TZID=America/New_York:20240304T080000")
	assert.Contains(t, text, "DTEND;TZID=America/New_York:20240304T093000")
	assert.Contains(t, text, "X-WR-TIMEZONE:America/New_York")
	assert.Contains(t, text, "RRULE:FREQ=WEEKLY;BYDAY=MO;COUNT=4")
	assert.NotContains(t, text, "DTSTART:20240304T130000Z")
}

func TestICSExporterRejectsInvertedEvents(t *testing.T) {
	start := time.Date(2024, 1, 8, 8, 0, 0, 0, time.UTC)

	_, err := NewICSExporter().Render([]Event{{UID: "x", Start: start, End: start}})
	assert.Error(t, err)
}
