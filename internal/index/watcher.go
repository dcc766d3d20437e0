package index

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/munin/internal/models"
	"github.com/starford/munin/internal/storage"
)

// SyncCallback is called after a watcher-driven re-sync so downstream
// caches (tag retrieval, event streams) can refresh.
type SyncCallback func()

// Watch starts an fsnotify watcher on the knowledge root and re-syncs the
// search cache whenever a YAML index file changes, until ctx is cancelled.
// Changes are debounced so a burst of writes triggers one sync. New
// directories created at runtime (topic dirs on first write) are added to
// the watch list automatically.
func Watch(ctx context.Context, db *DB, store storage.Provider, root, urlIndexFile string, topics map[string]models.TopicConfig, logger *slog.Logger, cb SyncCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := addDirsRecursive(w, root); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("root", root))

	var syncTimer *time.Timer
	var syncCh <-chan time.Time

	scheduleSync := func() {
		if syncTimer == nil {
			syncTimer = time.NewTimer(200 * time.Millisecond)
			syncCh = syncTimer.C
		} else {
			syncTimer.Reset(200 * time.Millisecond)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if syncTimer != nil {
				syncTimer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-syncCh:
			if err := Sync(db, store, urlIndexFile, topics, logger); err != nil {
				logger.Warn("watcher: sync failed", slog.String("error", err.Error()))
			} else if cb != nil {
				cb()
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(w, ev.Name); addErr != nil {
						logger.Warn("watcher: add new dir failed",
							slog.String("path", ev.Name),
							slog.String("error", addErr.Error()))
					}
					continue
				}
			}

			// Only index files feed the cache; note bodies and the
			// context document are not searched here.
			if strings.HasSuffix(ev.Name, ".yaml") && !strings.HasPrefix(filepath.Base(ev.Name), ".") {
				scheduleSync()
			}

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher: error", slog.String("error", err.Error()))
		}
	}
}

func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(p)
		}
		return nil
	})
}
