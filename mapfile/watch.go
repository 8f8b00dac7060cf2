package mapfile

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/soaklib/soak/metadata"
)

// watchDebounce is how long the watcher waits after the last relevant event
// before reloading, so one editor save burst produces one reload.
const watchDebounce = 100 * time.Millisecond

// Watch reloads the mapping set under dir whenever mapping files change and
// hands the result to fn: the freshly loaded definitions, or nil and the
// load error. Watcher errors are delivered the same way. Directories created
// under dir while watching are picked up. Watch blocks until ctx is done.
func Watch(ctx context.Context, dir string, fn func([]*metadata.Def, error)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := addRecursive(watcher, dir); err != nil {
		return err
	}

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if event.Has(fsnotify.Create) {
				if info, statErr := os.Stat(event.Name); statErr == nil && info.IsDir() {
					if addErr := addRecursive(watcher, event.Name); addErr != nil {
						fn(nil, addErr)
					}
				}
			}
			if !relevantEvent(event) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(watchDebounce)
				fire = timer.C
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(watchDebounce)
			}

		case watchErr, ok := <-watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			fn(nil, watchErr)

		case <-fire:
			timer, fire = nil, nil
			fn(LoadDir(dir))
		}
	}
}

// relevantEvent reports whether an event should trigger a reload: a change
// to a file carrying a mapping suffix.
func relevantEvent(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}
	_, err := FormatForPath(event.Name)
	return err == nil
}

// addRecursive registers dir and every directory below it with the watcher.
func addRecursive(watcher *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if err := watcher.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}
