package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/intelliplan-api/internal/dto"
	"github.com/noah-isme/intelliplan-api/internal/models"
	"github.com/noah-isme/intelliplan-api/pkg/export"
)

type capturingICS struct {
	events []export.Event
}

func (c *capturingICS) Render(events []export.Event) ([]byte, error) {
	c.events = events
	return []byte("BEGIN:VCALENDAR"), nil
}

func exportSchedule() models.Schedule {
	return models.Schedule{
		CourseCodes:  []string{"CS101", "MA102"},
		TotalCredits: 6,
		Slots: []models.Slot{
			slot("MA102", "2", block(models.Wednesday, "14:00", "15:00"), block(models.Monday, "13:00", "14:00")),
			slot("CS101", "1", block(models.Monday, "08:00", "09:00")),
		},
	}
}

func TestExportServiceCSVOrdersRowsByDayAndStart(t *testing.T) {
	svc, err := NewExportService("UTC", nil, nil, nil, nil, nil)
	require.NoError(t, err)

	result, err := svc.Export(context.Background(), dto.ExportTimetableRequest{Schedule: exportSchedule(), Format: dto.ExportCSV})
	require.NoError(t, err)
	assert.Equal(t, "timetable-cs101-ma102.csv", result.Filename)
	assert.Equal(t, "text/csv", result.ContentType)

	records, err := csv.NewReader(bytes.NewReader(result.Body)).ReadAll()
	require.NoError(t, err)

	var days []string
	for _, record := range records {
		if len(record) == len(exportHeaders) && record[0] != "Course Code" {
			days = append(days, record[5]+" "+record[6])
		}
	}
	assert.Equal(t, []string{"Monday 08:00", "Monday 13:00", "Wednesday 14:00"}, days)
}

func TestExportServicePDF(t *testing.T) {
	svc, err := NewExportService("", nil, nil, nil, nil, nil)
	require.NoError(t, err)

	result, err := svc.Export(context.Background(), dto.ExportTimetableRequest{Schedule: exportSchedule(), Format: dto.ExportPDF})
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", result.ContentType)
	assert.True(t, bytes.HasPrefix(result.Body, []byte("%PDF")))
}

func TestExportServiceICSAnchorsOnMonday(t *testing.T) {
	ics := &capturingICS{}
	svc, err := NewExportService("Asia/Kolkata", nil, nil, nil, nil, ics)
	require.NoError(t, err)

	result, err := svc.Export(context.Background(), dto.ExportTimetableRequest{
		Schedule: exportSchedule(),
		Format:   dto.ExportICS,
		WeekOf:   "2026-10-15",
		Weeks:    12,
	})
	require.NoError(t, err)
	assert.Equal(t, "timetable-cs101-ma102.ics", result.Filename)
	require.Len(t, ics.events, 3)

	loc, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)

	wednesday := ics.events[0]
	assert.Equal(t, time.Date(2026, 10, 14, 14, 0, 0, 0, loc), wednesday.Start)
	assert.Equal(t, time.Date(2026, 10, 14, 15, 0, 0, 0, loc), wednesday.End)
	assert.Equal(t, "ma102-2-wednesday-1400@intelliplan", wednesday.UID)
	assert.True(t, wednesday.Weekly)
	assert.Equal(t, 12, wednesday.Weeks)

	assert.Equal(t, time.Date(2026, 10, 12, 8, 0, 0, 0, loc), ics.events[2].Start)
}

func TestExportServiceICSRendersCalendar(t *testing.T) {
	svc, err := NewExportService("UTC", nil, nil, nil, nil, nil)
	require.NoError(t, err)

	result, err := svc.Export(context.Background(), dto.ExportTimetableRequest{
		Schedule: exportSchedule(),
		Format:   dto.ExportICS,
		WeekOf:   "2026-10-12",
	})
	require.NoError(t, err)
	assert.Contains(t, string(result.Body), "BEGIN:VCALENDAR")
	assert.Contains(t, string(result.Body), "FREQ=WEEKLY;BYDAY=MO")
}

func TestExportServiceICSKeepsLocalHourAcrossDST(t *testing.T) {
	svc, err := NewExportService("America/New_York", nil, nil, nil, nil, nil)
	require.NoError(t, err)

	schedule := models.Schedule{
		CourseCodes: []string{"CS101"},
		Slots:       []models.Slot{slot("CS101", "1", block(models.Monday, "08:00", "09:00"))},
	}
	result, err := svc.Export(context.Background(), dto.ExportTimetableRequest{
		Schedule: schedule,
		Format:   dto.ExportICS,
		WeekOf:   "2024-03-04",
		Weeks:    4,
	})
	require.NoError(t, err)

	body := string(result.Body)
	assert.Contains(t, body, "DTSTART;TZID=America/New_York:20240304T080000")
	assert.Contains(t, body, "RRULE:FREQ=WEEKLY;BYDAY=MO;COUNT=4")
	assert.NotContains(t, body, "DTSTART:")
}

func TestExportServiceRejectsInvertedBlocks(t *testing.T) {
	svc, err := NewExportService("UTC", nil, nil, nil, nil, nil)
	require.NoError(t, err)

	inverted := models.Schedule{Slots: []models.Slot{slot("CS101", "1", block(models.Monday, "10:00", "09:00"))}}
	_, err = svc.Export(context.Background(), dto.ExportTimetableRequest{Schedule: inverted, Format: dto.ExportICS})
	appErr := requireAppError(t, err, "VALIDATION_ERROR")
	assert.Equal(t, http.StatusBadRequest, appErr.Status)
}

func TestExportServiceRejectsInvalidRequests(t *testing.T) {
	svc, err := NewExportService("UTC", nil, nil, nil, nil, nil)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = svc.Export(ctx, dto.ExportTimetableRequest{Format: dto.ExportCSV})
	requireAppError(t, err, "VALIDATION_ERROR")

	_, err = svc.Export(ctx, dto.ExportTimetableRequest{Schedule: exportSchedule(), Format: "xml"})
	requireAppError(t, err, "VALIDATION_ERROR")

	_, err = svc.Export(ctx, dto.ExportTimetableRequest{Schedule: exportSchedule(), Format: dto.ExportICS, WeekOf: "15/10/2026"})
	requireAppError(t, err, "VALIDATION_ERROR")

	untimed := models.Schedule{Slots: []models.Slot{slot("CS101", "1")}}
	_, err = svc.Export(ctx, dto.ExportTimetableRequest{Schedule: untimed, Format: dto.ExportICS})
	requireAppError(t, err, "VALIDATION_ERROR")
}

func TestNewExportServiceRejectsUnknownTimezone(t *testing.T) {
	_, err := NewExportService("Mars/Olympus", nil, nil, nil, nil, nil)
	require.Error(t, err)
}

func TestWeekStart(t *testing.T) {
	sunday := time.Date(2026, 10, 18, 20, 30, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 10, 12, 0, 0, 0, 0, time.UTC), weekStart(sunday))

	monday := time.Date(2026, 10, 12, 9, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 10, 12, 0, 0, 0, 0, time.UTC), weekStart(monday))
}
