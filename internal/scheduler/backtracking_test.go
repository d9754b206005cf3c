package scheduler

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/intelliplan-api/internal/models"
)

func TestGenerateSingleCourseYieldsOnePerSlot(t *testing.T) {
	catalog := fixtureCatalog()

	schedules, _, err := Generate(catalog, []string{"19AI404"}, nil, Options{})
	require.NoError(t, err)
	require.Len(t, schedules, 2)
	assert.Equal(t, "4W2-2", schedules[0].Slots[0].SlotNumber)
	assert.Equal(t, "4W2-1", schedules[1].Slots[0].SlotNumber)
	assert.Equal(t, []string{"19AI404"}, schedules[0].CourseCodes)
	assert.Equal(t, 3, schedules[0].TotalCredits)
}

func TestGenerateMultipleCoursesDepthFirstOrder(t *testing.T) {
	catalog := fixtureCatalog()

	schedules, _, err := Generate(catalog, []string{"19AI404", "19AI409"}, nil, Options{})
	require.NoError(t, err)
	require.Len(t, schedules, 4)

	got := make([]string, 0, len(schedules))
	for _, schedule := range schedules {
		got = append(got, schedule.Slots[0].SlotNumber+"/"+schedule.Slots[1].SlotNumber)
	}
	assert.Equal(t, []string{"4W2-2/4K1-1", "4W2-2/4K1-2", "4W2-1/4K1-1", "4W2-1/4K1-2"}, got)
	for _, schedule := range schedules {
		assert.Equal(t, 6, schedule.TotalCredits)
		assert.Equal(t, []string{"19AI404", "19AI409"}, schedule.CourseCodes)
	}
}

func TestGeneratePrunesConflicts(t *testing.T) {
	catalog := models.Catalog{
		"A": {
			slot("A", "A1", block(models.Monday, "08:00", "09:00")),
			slot("A", "A2", block(models.Tuesday, "08:00", "09:00")),
		},
		"B": {
			slot("B", "B1", block(models.Monday, "08:00", "09:00")),
		},
		"C": {
			slot("C", "C1", block(models.Tuesday, "08:00", "09:00")),
			slot("C", "C2", block(models.Friday, "08:00", "09:00")),
		},
	}

	schedules, _, err := Generate(catalog, []string{"A", "B", "C"}, nil, Options{})
	require.NoError(t, err)
	require.Len(t, schedules, 1)
	assert.Equal(t, "A2", schedules[0].Slots[0].SlotNumber)
	assert.Equal(t, "B1", schedules[0].Slots[1].SlotNumber)
	assert.Equal(t, "C2", schedules[0].Slots[2].SlotNumber)
}

func TestGenerateChecksAgainstWholePrefix(t *testing.T) {
	// C1 only clashes with the first course, not its immediate predecessor.
	catalog := models.Catalog{
		"A": {slot("A", "A1", block(models.Monday, "08:00", "09:00"))},
		"B": {slot("B", "B1", block(models.Tuesday, "08:00", "09:00"))},
		"C": {
			slot("C", "C1", block(models.Monday, "08:00", "09:00")),
			slot("C", "C2", block(models.Wednesday, "08:00", "09:00")),
		},
	}

	schedules, _, err := Generate(catalog, []string{"A", "B", "C"}, nil, Options{})
	require.NoError(t, err)
	require.Len(t, schedules, 1)
	assert.Equal(t, "C2", schedules[0].Slots[2].SlotNumber)
}

func TestGenerateUnknownCourse(t *testing.T) {
	schedules, stats, err := Generate(fixtureCatalog(), []string{"19AI404", "INVALID"}, nil, Options{})
	require.Error(t, err)
	assert.Nil(t, schedules)
	assert.Zero(t, stats.NodesVisited)

	var notFound *CourseNotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, "INVALID", notFound.Code)
	assert.True(t, errors.Is(err, ErrCourseNotFound))
}

func TestGenerateEmptyRequest(t *testing.T) {
	schedules, _, err := Generate(fixtureCatalog(), nil, nil, Options{Memoize: true})
	require.NoError(t, err)
	assert.NotNil(t, schedules)
	assert.Empty(t, schedules)
}

func TestGenerateSlotPreferences(t *testing.T) {
	catalog := fixtureCatalog()

	schedules, _, err := Generate(catalog, []string{"19AI404", "19AI409"}, map[string][]string{
		"19AI404": {"4W2-1"},
	}, Options{})
	require.NoError(t, err)
	require.Len(t, schedules, 2)
	for _, schedule := range schedules {
		assert.Equal(t, "4W2-1", schedule.Slots[0].SlotNumber)
	}
}

func TestGenerateSlotPreferencesFallBackWhenNothingMatches(t *testing.T) {
	catalog := fixtureCatalog()

	schedules, _, err := Generate(catalog, []string{"19AI404"}, map[string][]string{
		"19AI404": {"does-not-exist"},
	}, Options{})
	require.NoError(t, err)
	assert.Len(t, schedules, 2)
}

func TestGenerateSlotsWithoutTimingsNeverConflict(t *testing.T) {
	catalog := models.Catalog{
		"A": {slot("A", "A1", block(models.Monday, "08:00", "09:00"))},
		"B": {slot("B", "B1")},
	}

	schedules, _, err := Generate(catalog, []string{"A", "B"}, nil, Options{})
	require.NoError(t, err)
	assert.Len(t, schedules, 1)
}

func TestGenerateMemoizedMatchesExhaustive(t *testing.T) {
	catalog := deadEndCatalog()
	codes := []string{"A", "B", "T", "C"}

	plain, plainStats, err := Generate(catalog, codes, nil, Options{})
	require.NoError(t, err)
	memo, memoStats, err := Generate(catalog, codes, nil, Options{Memoize: true})
	require.NoError(t, err)

	require.NotEmpty(t, plain)
	assert.Equal(t, plain, memo)
	assert.Greater(t, memoStats.MemoHits, 0)
	assert.Greater(t, memoStats.MemoEntries, 0)
	assert.Less(t, memoStats.NodesVisited, plainStats.NodesVisited)
	for _, schedule := range memo {
		assert.Equal(t, "10:00", schedule.Slots[0].TimeBlocks[0].Start)
	}
}

// Catalogs without shared start times have no dead ends, so the memo stays empty and
// the walk is the same size as the plain one.
func TestGenerateMemoizedStoresNothingWithoutCollisions(t *testing.T) {
	catalog := models.Catalog{}
	var codes []string
	for c := 0; c < 4; c++ {
		code := fmt.Sprintf("D%d", c)
		codes = append(codes, code)
		for section := 0; section < 3; section++ {
			start := fmt.Sprintf("%02d:00", 8+c*3+section)
			catalog[code] = append(catalog[code], slot(code, fmt.Sprintf("%s-%d", code, section), block(models.Monday, start, "23:00")))
		}
	}

	plain, plainStats, err := Generate(catalog, codes, nil, Options{})
	require.NoError(t, err)
	memo, memoStats, err := Generate(catalog, codes, nil, Options{Memoize: true})
	require.NoError(t, err)

	assert.Len(t, memo, 81)
	assert.Equal(t, plain, memo)
	assert.Zero(t, memoStats.MemoHits)
	assert.Zero(t, memoStats.MemoEntries)
	assert.Equal(t, plainStats.NodesVisited, memoStats.NodesVisited)
}

func TestGeneratedSchedulesAreConflictFree(t *testing.T) {
	catalog := denseCatalog()

	schedules, _, err := Generate(catalog, []string{"C0", "C1", "C2", "C3", "C4"}, nil, Options{Memoize: true})
	require.NoError(t, err)
	for _, schedule := range schedules {
		found, pair := FindConflict(schedule.Slots)
		assert.False(t, found, "unexpected conflict %+v", pair)
	}
}

func TestSlotOptions(t *testing.T) {
	slots := fixtureCatalog()["19AI409"]

	assert.Equal(t, slots, SlotOptions(slots, nil))
	assert.Equal(t, slots[1:], SlotOptions(slots, []string{"4K1-2"}))
	assert.Equal(t, slots, SlotOptions(slots, []string{"missing"}))
}

// --- Fixtures ---

func fixtureCatalog() models.Catalog {
	return models.Catalog{
		"19AI404": {
			slot("19AI404", "4W2-2", block(models.Monday, "08:00", "09:00")),
			slot("19AI404", "4W2-1", block(models.Tuesday, "08:00", "09:00")),
		},
		"19AI409": {
			slot("19AI409", "4K1-1", block(models.Monday, "13:00", "14:00")),
			slot("19AI409", "4K1-2", block(models.Wednesday, "08:00", "09:00")),
		},
	}
}

// denseCatalog offers several sections per course at identical times.
func denseCatalog() models.Catalog {
	catalog := models.Catalog{}
	hours := []string{"08:00", "09:00", "10:00"}
	for c := 0; c < 5; c++ {
		code := fmt.Sprintf("C%d", c)
		for i, hour := range hours {
			for section := 0; section < 2; section++ {
				number := fmt.Sprintf("%s-%d%c", code, i, 'a'+section)
				catalog[code] = append(catalog[code], slot(code, number, block(models.Weekdays[c%3], hour, "11:00")))
			}
		}
	}
	return catalog
}

// deadEndCatalog makes C unplaceable whenever A and B take Monday 08:00 and 09:00.
// T sits on Tuesday, so the dead end repeats for each of its sections.
func deadEndCatalog() models.Catalog {
	catalog := models.Catalog{}
	add := func(code string, day models.Weekday, hours ...string) {
		for i, hour := range hours {
			for section := 0; section < 2; section++ {
				number := fmt.Sprintf("%s-%d%c", code, i, 'a'+section)
				catalog[code] = append(catalog[code], slot(code, number, block(day, hour, "11:00")))
			}
		}
	}
	add("A", models.Monday, "08:00", "09:00", "10:00")
	add("B", models.Monday, "08:00", "09:00")
	add("T", models.Tuesday, "08:00", "09:00", "10:00")
	add("C", models.Monday, "08:00", "09:00")
	return catalog
}
