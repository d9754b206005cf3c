package dto

import (
	"time"

	"github.com/noah-isme/intelliplan-api/internal/models"
	"github.com/noah-isme/intelliplan-api/internal/scheduler"
)

// GenerateTimetableRequest asks for every conflict-free timetable over the given courses.
type GenerateTimetableRequest struct {
	CourseCodes     []string            `json:"course_codes" validate:"required,min=1,unique,dive,required,max=32"`
	SlotPreferences map[string][]string `json:"slot_preferences" validate:"omitempty,dive,dive,required"`
	Rank            bool                `json:"rank"`
	PreferMorning   bool                `json:"prefer_morning"`
	Limit           int                 `json:"limit" validate:"omitempty,min=1,max=1000"`
}

// ScoredSchedule is a schedule with its optimizer score when ranking was requested.
type ScoredSchedule struct {
	models.Schedule
	Score *scheduler.ScoreBreakdown `json:"score,omitempty"`
}

// SearchStats reports the work done by the backtracking search.
type SearchStats struct {
	NodesVisited int     `json:"nodes_visited"`
	MemoHits     int     `json:"memo_hits"`
	MemoEntries  int     `json:"memo_entries"`
	DurationMs   float64 `json:"duration_ms"`
}

// GenerateTimetableResponse returns the generated timetables. Schedules may be truncated
// by Limit while Count always reports the full result size.
type GenerateTimetableResponse struct {
	ResultID       string           `json:"result_id"`
	CatalogVersion string           `json:"catalog_version"`
	Count          int              `json:"count"`
	Ranked         bool             `json:"ranked"`
	Cached         bool             `json:"cached"`
	Schedules      []ScoredSchedule `json:"timetables"`
	Stats          SearchStats      `json:"stats"`
	ExpiresAt      time.Time        `json:"expires_at"`
}

// FilterTimetablesRequest narrows a stored result set or an explicit list of schedules.
// One of ResultID or Schedules must be set; ResultID wins when both are.
type FilterTimetablesRequest struct {
	ResultID       string            `json:"result_id" validate:"omitempty,uuid"`
	Schedules      []models.Schedule `json:"schedules"`
	ConstraintText string            `json:"constraint_text" validate:"max=500"`
	Limit          int               `json:"limit" validate:"omitempty,min=1,max=1000"`
}

// FilterTimetablesResponse lists the accepted schedules and the constraints applied.
type FilterTimetablesResponse struct {
	Schedules          []models.Schedule   `json:"filtered_timetables"`
	ConstraintsApplied []models.Constraint `json:"constraints_applied"`
	Count              int                 `json:"count"`
	TotalBefore        int                 `json:"total_before"`
}

// DetectConstraintsRequest carries free text to interpret.
type DetectConstraintsRequest struct {
	Text string `json:"text" validate:"required,max=500"`
}

// ExportFormat enumerates downloadable timetable formats.
type ExportFormat string

const (
	ExportCSV ExportFormat = "csv"
	ExportPDF ExportFormat = "pdf"
	ExportICS ExportFormat = "ics"
)

// ExportTimetableRequest renders one schedule. WeekOf anchors calendar events on the
// week containing that date (YYYY-MM-DD); Weeks bounds the recurrence.
type ExportTimetableRequest struct {
	Schedule models.Schedule `json:"schedule"`
	Format   ExportFormat    `json:"-" validate:"required,oneof=csv pdf ics"`
	WeekOf   string          `json:"week_of" validate:"omitempty,datetime=2006-01-02"`
	Weeks    int             `json:"weeks" validate:"omitempty,min=1,max=52"`
}

// ExportResult is a rendered file.
type ExportResult struct {
	Filename    string
	ContentType string
	Body        []byte
}

// CourseListQuery pages through the catalog.
type CourseListQuery struct {
	Page   int    `form:"page" validate:"omitempty,min=1"`
	Limit  int    `form:"limit" validate:"omitempty,min=1,max=200"`
	Search string `form:"search" validate:"max=64"`
}

// CatalogReloadResponse describes a freshly published catalog.
type CatalogReloadResponse struct {
	models.CatalogStats
	Format string `json:"format,omitempty"`
}
