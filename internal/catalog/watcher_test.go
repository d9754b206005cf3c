package catalog

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingReloader struct {
	calls atomic.Int32
	store *Store
}

func (r *countingReloader) Reload(context.Context) (*Snapshot, error) {
	r.calls.Add(1)
	return r.store.Replace(sampleCatalog(), "watched.csv"), nil
}

func TestWatcherRelevantEvents(t *testing.T) {
	w := NewWatcher("/data/enrollment.csv", &countingReloader{store: NewStore()}, nil)

	tests := []struct {
		name  string
		event fsnotify.Event
		want  bool
	}{
		{"write", fsnotify.Event{Name: "/data/enrollment.csv", Op: fsnotify.Write}, true},
		{"create", fsnotify.Event{Name: "/data/enrollment.csv", Op: fsnotify.Create}, true},
		{"rename", fsnotify.Event{Name: "/data/enrollment.csv", Op: fsnotify.Rename}, true},
		{"write and chmod", fsnotify.Event{Name: "/data/enrollment.csv", Op: fsnotify.Write | fsnotify.Chmod}, true},
		{"chmod only", fsnotify.Event{Name: "/data/enrollment.csv", Op: fsnotify.Chmod}, false},
		{"sibling file", fsnotify.Event{Name: "/data/other.csv", Op: fsnotify.Write}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, w.relevant(tt.event))
		})
	}
}

func TestWatcherReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "enrollment.csv")
	require.NoError(t, os.WriteFile(path, []byte("COURSE_CODE\n"), 0o644))

	reloader := &countingReloader{store: NewStore()}
	w := NewWatcher(path, reloader, nil)
	w.debounce = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	require.Eventually(t, func() bool {
		_ = os.WriteFile(path, []byte("COURSE_CODE\nCS101\n"), 0o644)
		return reloader.calls.Load() > 0
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
	assert.NotNil(t, reloader.store.Current())
}
