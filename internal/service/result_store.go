package service

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/intelliplan-api/internal/models"
)

// resultSet is a generated timetable list kept for follow-up filtering.
type resultSet struct {
	ID             string
	CatalogVersion string
	Schedules      []models.Schedule
	ExpiresAt      time.Time
}

// resultStore keeps result sets in memory for a fixed TTL.
type resultStore struct {
	ttl   time.Duration
	now   func() time.Time
	mu    sync.RWMutex
	items map[string]resultSet
}

func newResultStore(ttl time.Duration) *resultStore {
	return &resultStore{
		ttl:   ttl,
		now:   time.Now,
		items: make(map[string]resultSet),
	}
}

// Save stores schedules under a new id and drops expired sets.
func (s *resultStore) Save(catalogVersion string, schedules []models.Schedule) resultSet {
	now := s.now()
	set := resultSet{
		ID:             uuid.NewString(),
		CatalogVersion: catalogVersion,
		Schedules:      schedules,
		ExpiresAt:      now.Add(s.ttl),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for id, item := range s.items {
		if now.After(item.ExpiresAt) {
			delete(s.items, id)
		}
	}
	s.items[set.ID] = set
	return set
}

func (s *resultStore) Get(id string) (resultSet, bool) {
	s.mu.RLock()
	set, ok := s.items[id]
	s.mu.RUnlock()
	if !ok {
		return resultSet{}, false
	}
	if s.now().After(set.ExpiresAt) {
		s.Delete(id)
		return resultSet{}, false
	}
	return set, true
}

func (s *resultStore) Delete(id string) {
	s.mu.Lock()
	delete(s.items, id)
	s.mu.Unlock()
}

func (s *resultStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}
