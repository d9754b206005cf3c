package catalog

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const defaultDebounce = 500 * time.Millisecond

// Reloader rebuilds the catalog from its configured source.
type Reloader interface {
	Reload(ctx context.Context) (*Snapshot, error)
}

// Watcher reloads the catalog whenever its source file changes on disk.
type Watcher struct {
	path     string
	reloader Reloader
	logger   *zap.Logger
	debounce time.Duration
}

// NewWatcher constructs a watcher for path.
func NewWatcher(path string, reloader Reloader, logger *zap.Logger) *Watcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{
		path:     filepath.Clean(path),
		reloader: reloader,
		logger:   logger,
		debounce: defaultDebounce,
	}
}

// Run blocks until ctx is cancelled. The parent directory is watched so that editors
// replacing the file through a rename are still observed.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create catalog watcher: %w", err)
	}
	defer fsw.Close()

	if err := fsw.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(w.path), err)
	}
	w.logger.Info("watching catalog file", zap.String("path", w.path))

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(w.debounce)
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("catalog watcher error", zap.Error(err))
		case <-timer.C:
			snapshot, err := w.reloader.Reload(ctx)
			if err != nil {
				w.logger.Warn("catalog reload failed", zap.String("path", w.path), zap.Error(err))
				continue
			}
			w.logger.Info("catalog reloaded from disk",
				zap.String("path", w.path),
				zap.String("version", snapshot.Version),
			)
		}
	}
}

// relevant reports whether the event may have changed the catalog contents.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.path {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename)
}
