package gallery

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/fsnotify/fsnotify"
)

// Watch adds image files created under dir to the queue until ctx is
// cancelled. onAdd is invoked for every item added this way.
func (g *Gallery) Watch(ctx context.Context, dir string, onAdd func(*Item)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer w.Close()

	if err := w.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	slog.Info("Watching for new images", "dir", dir)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			slog.Debug("Watch event", "event", event)
			if !event.Has(fsnotify.Create) || !IsImage(event.Name) {
				continue
			}
			item, err := g.Add(event.Name)
			if err != nil {
				slog.Warn("Failed to queue new image", "path", event.Name, "error", err)
				continue
			}
			if onAdd != nil {
				onAdd(item)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			slog.Warn("Watcher error", "error", err)
		}
	}
}
