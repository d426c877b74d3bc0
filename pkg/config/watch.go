package config

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/meridianworks/meridian/pkg/observability"
)

// WatchSettings reloads the settings file whenever it changes on disk and
// publishes each valid snapshot atomically into the store. Invalid edits
// are logged and skipped so a typo never takes the current settings down.
// The watcher stops when ctx is cancelled.
func WatchSettings(ctx context.Context, path string, store *SettingsStore, logger *observability.Logger) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create settings watcher: %w", err)
	}

	// Watch the directory, not the file: editors replace files on save,
	// which would otherwise drop the watch.
	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	go func() {
		defer watcher.Close()

		target := filepath.Clean(path)
		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}

				settings, err := LoadSettings(path)
				if err != nil {
					logger.WithError(err).Warn("settings reload failed, keeping current settings")
					continue
				}
				store.Replace(settings)
				logger.WithField("owner_email", settings.OwnerEmail).Info("settings reloaded")

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.WithError(err).Warn("settings watcher error")
			}
		}
	}()

	return nil
}
