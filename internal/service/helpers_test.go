package service

import (
	"context"
	"encoding/json"
	"errors"
	"path"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/intelliplan-api/internal/catalog"
	"github.com/noah-isme/intelliplan-api/internal/models"
	appErrors "github.com/noah-isme/intelliplan-api/pkg/errors"
)

type memoryCacheRepo struct {
	mu       sync.Mutex
	items    map[string][]byte
	sets     int
	patterns []string
}

func newMemoryCacheRepo() *memoryCacheRepo {
	return &memoryCacheRepo{items: make(map[string][]byte)}
}

func (r *memoryCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	raw, ok := r.items[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (r *memoryCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[key] = raw
	r.sets++
	return nil
}

func (r *memoryCacheRepo) DeleteByPattern(ctx context.Context, pattern string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.patterns = append(r.patterns, pattern)
	for key := range r.items {
		if ok, _ := path.Match(pattern, key); ok {
			delete(r.items, key)
		}
	}
	return nil
}

func block(day models.Weekday, start, end string) models.TimeBlock {
	return models.TimeBlock{Day: day, Start: start, End: end}
}

func slot(code, number string, blocks ...models.TimeBlock) models.Slot {
	return models.Slot{
		CourseCode:  code,
		CourseName:  code + " course",
		FacultyName: "Dr. " + code,
		SlotNumber:  number,
		Credits:     3,
		TimeBlocks:  blocks,
	}
}

// fixtureCatalog yields three timetables for CS101+MA102; CS101-1 and MA102-1 collide.
func fixtureCatalog() models.Catalog {
	return models.Catalog{
		"CS101": {
			slot("CS101", "1", block(models.Monday, "08:00", "09:00")),
			slot("CS101", "2", block(models.Tuesday, "10:00", "11:00")),
		},
		"MA102": {
			slot("MA102", "1", block(models.Monday, "08:00", "09:00")),
			slot("MA102", "2", block(models.Wednesday, "14:00", "15:00")),
		},
	}
}

func loadedStore() *catalog.Store {
	store := catalog.NewStore()
	store.Replace(fixtureCatalog(), "fixture.csv")
	return store
}

func requireAppError(t *testing.T, err error, code string) *appErrors.Error {
	t.Helper()
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr), "expected *errors.Error, got %T", err)
	require.Equal(t, code, appErr.Code)
	return appErr
}
