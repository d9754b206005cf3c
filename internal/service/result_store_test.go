package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/intelliplan-api/internal/models"
)

func TestResultStoreExpiry(t *testing.T) {
	store := newResultStore(time.Minute)
	now := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	set := store.Save("v1", []models.Schedule{{CourseCodes: []string{"CS101"}}})
	got, ok := store.Get(set.ID)
	require.True(t, ok)
	assert.Equal(t, "v1", got.CatalogVersion)

	now = now.Add(2 * time.Minute)
	_, ok = store.Get(set.ID)
	assert.False(t, ok)
	assert.Zero(t, store.Len())
}

func TestResultStoreSweepsExpiredOnSave(t *testing.T) {
	store := newResultStore(time.Minute)
	now := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	store.Save("v1", nil)
	store.Save("v1", nil)
	now = now.Add(time.Hour)
	store.Save("v2", nil)

	assert.Equal(t, 1, store.Len())
}
