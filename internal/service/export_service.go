package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/intelliplan-api/internal/dto"
	"github.com/noah-isme/intelliplan-api/internal/models"
	appErrors "github.com/noah-isme/intelliplan-api/pkg/errors"
	"github.com/noah-isme/intelliplan-api/pkg/export"
)

var exportHeaders = []string{"Course Code", "Course Name", "Faculty", "Slot", "Credits", "Day", "Start", "End"}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type icsRenderer interface {
	Render(events []export.Event) ([]byte, error)
}

// ExportService renders a single timetable as CSV, PDF or iCalendar.
type ExportService struct {
	csv       csvRenderer
	pdf       pdfRenderer
	ics       icsRenderer
	location  *time.Location
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewExportService constructs an ExportService. Calendar events are placed in timezone.
func NewExportService(timezone string, validate *validator.Validate, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer, ics icsRenderer) (*ExportService, error) {
	location := time.UTC
	if timezone != "" {
		loc, err := time.LoadLocation(timezone)
		if err != nil {
			return nil, fmt.Errorf("load export timezone %q: %w", timezone, err)
		}
		location = loc
	}
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	if ics == nil {
		ics = export.NewICSExporter()
	}
	return &ExportService{
		csv:       csv,
		pdf:       pdf,
		ics:       ics,
		location:  location,
		validator: validate,
		logger:    logger,
		now:       time.Now,
	}, nil
}

// Export renders the schedule in the requested format.
func (s *ExportService) Export(ctx context.Context, req dto.ExportTimetableRequest) (*dto.ExportResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Invalid(err, "invalid export payload")
	}
	if len(req.Schedule.Slots) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "schedule must contain at least one slot")
	}

	base := "timetable-" + strings.ToLower(strings.Join(scheduleCodes(req.Schedule), "-"))
	var (
		result dto.ExportResult
		err    error
	)
	switch req.Format {
	case dto.ExportCSV:
		result = dto.ExportResult{Filename: base + ".csv", ContentType: "text/csv"}
		result.Body, err = s.csv.Render(buildDataset(req.Schedule))
	case dto.ExportPDF:
		result = dto.ExportResult{Filename: base + ".pdf", ContentType: "application/pdf"}
		result.Body, err = s.pdf.Render(buildDataset(req.Schedule))
	case dto.ExportICS:
		var events []export.Event
		events, err = s.buildEvents(req)
		if err == nil {
			result = dto.ExportResult{Filename: base + ".ics", ContentType: "text/calendar; charset=utf-8"}
			result.Body, err = s.ics.Render(events)
		}
	}
	if err != nil {
		var appErr *appErrors.Error
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render timetable export")
	}

	s.logger.Debug("timetable exported",
		zap.String("format", string(req.Format)),
		zap.Int("bytes", len(result.Body)),
	)
	return &result, nil
}

// buildEvents anchors each weekly block on the week containing WeekOf, today by default.
func (s *ExportService) buildEvents(req dto.ExportTimetableRequest) ([]export.Event, error) {
	anchor := s.now().In(s.location)
	if req.WeekOf != "" {
		parsed, err := time.ParseInLocation("2006-01-02", req.WeekOf, s.location)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "week_of must be YYYY-MM-DD")
		}
		anchor = parsed
	}
	monday := weekStart(anchor)

	var events []export.Event
	for _, slot := range req.Schedule.Slots {
		for _, block := range slot.TimeBlocks {
			if !block.Day.Valid() {
				continue
			}
			day := monday.AddDate(0, 0, block.Day.Index()-1)
			start, err := clockOn(day, block.Start)
			if err != nil {
				return nil, err
			}
			end, err := clockOn(day, block.End)
			if err != nil {
				return nil, err
			}
			if !end.After(start) {
				return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%s slot %s: %s block %s-%s must end after it starts", slot.CourseCode, slot.SlotNumber, block.Day, block.Start, block.End))
			}
			events = append(events, export.Event{
				UID:         eventUID(slot, block),
				Summary:     strings.TrimSpace(slot.CourseCode + " " + slot.CourseName),
				Description: fmt.Sprintf("Faculty: %s\nSlot: %s\nCredits: %d", slot.FacultyName, slot.SlotNumber, slot.Credits),
				Start:       start,
				End:         end,
				Weekly:      true,
				Weeks:       req.Weeks,
			})
		}
	}
	if len(events) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "schedule has no timed blocks to export")
	}
	return events, nil
}

// buildDataset flattens the schedule into one row per block ordered by day and start.
func buildDataset(schedule models.Schedule) export.Dataset {
	type row struct {
		day   int
		start string
		cells []string
	}
	var rows []row
	for _, slot := range schedule.Slots {
		base := []string{slot.CourseCode, slot.CourseName, slot.FacultyName, slot.SlotNumber, strconv.Itoa(slot.Credits)}
		if len(slot.TimeBlocks) == 0 {
			rows = append(rows, row{day: 8, cells: append(append([]string{}, base...), "", "", "")})
			continue
		}
		for _, block := range slot.TimeBlocks {
			cells := append(append([]string{}, base...), string(block.Day), block.Start, block.End)
			rows = append(rows, row{day: block.Day.Index(), start: block.Start, cells: cells})
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].day != rows[j].day {
			return rows[i].day < rows[j].day
		}
		return rows[i].start < rows[j].start
	})

	data := export.Dataset{
		Title:    "IntelliPlan Timetable",
		Subtitle: fmt.Sprintf("Courses: %s | Total credits: %d", strings.Join(scheduleCodes(schedule), ", "), schedule.TotalCredits),
		Headers:  exportHeaders,
		Rows:     make([][]string, 0, len(rows)),
	}
	for _, r := range rows {
		data.Rows = append(data.Rows, r.cells)
	}
	return data
}

func scheduleCodes(schedule models.Schedule) []string {
	if len(schedule.CourseCodes) > 0 {
		return schedule.CourseCodes
	}
	codes := make([]string, 0, len(schedule.Slots))
	for _, slot := range schedule.Slots {
		codes = append(codes, slot.CourseCode)
	}
	return codes
}

func weekStart(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	day := t.AddDate(0, 0, -offset)
	return time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, t.Location())
}

func clockOn(day time.Time, clock string) (time.Time, error) {
	parsed, err := time.Parse("15:04", clock)
	if err != nil {
		return time.Time{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, fmt.Sprintf("invalid time %q", clock))
	}
	return time.Date(day.Year(), day.Month(), day.Day(), parsed.Hour(), parsed.Minute(), 0, 0, day.Location()), nil
}

func eventUID(slot models.Slot, block models.TimeBlock) string {
	raw := fmt.Sprintf("%s-%s-%s-%s", slot.CourseCode, slot.SlotNumber, block.Day, strings.ReplaceAll(block.Start, ":", ""))
	return strings.ToLower(raw) + "@intelliplan"
}
