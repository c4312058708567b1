package transport

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/pdrpinto/gridplanner/internal/msgs"
)

// DirWatcher turns *.json files created or rewritten in a directory into
// snapshots.
type DirWatcher struct {
	dir    string
	logger *zap.Logger
}

// NewDirWatcher watches dir.
func NewDirWatcher(dir string, logger *zap.Logger) *DirWatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DirWatcher{dir: dir, logger: logger}
}

// Subscribe starts watching. The returned channel closes when ctx is done.
func (w *DirWatcher) Subscribe(ctx context.Context) (<-chan msgs.OccupancyGrid, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(w.dir); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", w.dir, err)
	}
	w.logger.Info("Watching directory", zap.String("dir", w.dir))

	out := make(chan msgs.OccupancyGrid)
	go func() {
		defer close(out)
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
					continue
				}
				if filepath.Ext(event.Name) != ".json" {
					continue
				}
				grid, err := ReadSnapshotFile(event.Name)
				if err != nil {
					// Partial writes fail here and are picked up by the next
					// write event.
					w.logger.Debug("Skipping unreadable snapshot", zap.String("file", event.Name), zap.Error(err))
					continue
				}
				select {
				case out <- grid:
				case <-ctx.Done():
					return
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				w.logger.Warn("Watcher error", zap.Error(err))
			}
		}
	}()
	return out, nil
}

// ReadSnapshotFile reads one JSON occupancy grid from disk.
func ReadSnapshotFile(path string) (msgs.OccupancyGrid, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return msgs.OccupancyGrid{}, fmt.Errorf("read snapshot: %w", err)
	}
	return msgs.DecodeOccupancyGrid(data)
}
