package catalog

import (
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/intelliplan-api/internal/models"
)

// Snapshot is an immutable, versioned catalog. Callers must not modify Catalog.
type Snapshot struct {
	Catalog  models.Catalog
	Version  string
	Source   string
	LoadedAt time.Time
}

// Store holds the active snapshot. Replacing it never affects readers of the previous one.
type Store struct {
	current atomic.Pointer[Snapshot]
	now     func() time.Time
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{now: time.Now}
}

// Current returns the active snapshot, or nil before the first load.
func (s *Store) Current() *Snapshot {
	return s.current.Load()
}

// Replace publishes a new snapshot under a fresh version.
func (s *Store) Replace(catalog models.Catalog, source string) *Snapshot {
	if catalog == nil {
		catalog = models.Catalog{}
	}
	snapshot := &Snapshot{
		Catalog:  catalog,
		Version:  uuid.NewString(),
		Source:   source,
		LoadedAt: s.now().UTC(),
	}
	s.current.Store(snapshot)
	return snapshot
}

// Stats summarises the snapshot.
func (s *Snapshot) Stats() models.CatalogStats {
	return models.CatalogStats{
		TotalCourses: len(s.Catalog),
		TotalSlots:   s.Catalog.SlotCount(),
		Source:       s.Source,
		Version:      s.Version,
		LoadedAt:     s.LoadedAt,
		Status:       "loaded",
	}
}

// Course returns the summary of one course including its slots.
func (s *Snapshot) Course(code string) (models.CourseSummary, bool) {
	slots, ok := s.Catalog[code]
	if !ok {
		return models.CourseSummary{}, false
	}
	summary := summarize(code, slots)
	summary.Slots = slots
	return summary, true
}

// Courses lists course summaries sorted by code. A non-empty search matches the code or
// the course name case-insensitively.
func (s *Snapshot) Courses(search string) []models.CourseSummary {
	needle := strings.ToLower(strings.TrimSpace(search))
	summaries := make([]models.CourseSummary, 0, len(s.Catalog))
	for code, slots := range s.Catalog {
		summary := summarize(code, slots)
		if needle != "" &&
			!strings.Contains(strings.ToLower(summary.CourseCode), needle) &&
			!strings.Contains(strings.ToLower(summary.CourseName), needle) {
			continue
		}
		summaries = append(summaries, summary)
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].CourseCode < summaries[j].CourseCode
	})
	return summaries
}

func summarize(code string, slots []models.Slot) models.CourseSummary {
	summary := models.CourseSummary{CourseCode: code, AvailableSlots: len(slots)}
	if len(slots) > 0 {
		summary.CourseName = slots[0].CourseName
		summary.FacultyName = slots[0].FacultyName
		summary.Credits = slots[0].Credits
	}
	return summary
}
