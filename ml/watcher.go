package ml

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// WatchArtifact watches the artifact file and logs a warning when it changes
// on disk. The loaded artifact is immutable for the process lifetime, so this
// never reloads anything; it only tells the operator a restart is needed to
// pick up the new model. Blocks until ctx is cancelled.
func WatchArtifact(ctx context.Context, path string, logger *zap.Logger) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	// Watch the directory: editors and atomic writers replace the file,
	// which would drop a watch on the file itself.
	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		return err
	}
	target := filepath.Clean(path)

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) != 0 {
				logger.Warn("model artifact changed on disk; restart the service to load it",
					zap.String("path", path),
					zap.String("op", event.Op.String()))
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("artifact watcher error", zap.Error(err))

		case <-ctx.Done():
			return nil
		}
	}
}
