package models

import (
	"sort"
	"time"
)

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}

// CourseSummary describes a course and its offered slots for listings.
type CourseSummary struct {
	CourseCode     string `json:"course_code"`
	CourseName     string `json:"course_name"`
	FacultyName    string `json:"faculty_name"`
	Credits        int    `json:"credits"`
	AvailableSlots int    `json:"available_slots"`
	Slots          []Slot `json:"slots,omitempty"`
}

// CatalogStats summarises the active catalog snapshot.
type CatalogStats struct {
	TotalCourses int       `json:"total_courses"`
	TotalSlots   int       `json:"total_slots"`
	Source       string    `json:"data_file"`
	Version      string    `json:"version"`
	LoadedAt     time.Time `json:"loaded_at"`
	Status       string    `json:"status"`
}

// SystemMetrics is a lightweight snapshot of process-level counters.
type SystemMetrics struct {
	CacheHitRatio            float64   `json:"cache_hit_ratio"`
	CacheHits                uint64    `json:"cache_hits"`
	CacheMisses              uint64    `json:"cache_misses"`
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"average_request_duration_ms"`
	SearchesTotal            uint64    `json:"searches_total"`
	SchedulesGenerated       uint64    `json:"schedules_generated"`
	MemoHits                 uint64    `json:"memo_hits"`
	CatalogReloads           uint64    `json:"catalog_reloads"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}

func sortStrings(values []string) {
	sort.Strings(values)
}
