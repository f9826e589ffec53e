package cli

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long the watcher waits for further changes before
// re-resolving.
const DefaultDebounce = 200 * time.Millisecond

const specOps = fsnotify.Create | fsnotify.Write | fsnotify.Remove | fsnotify.Rename

// watchSpecs calls onChange after CUE files under dir change, until ctx is done.
// Bursts of events within debounce collapse into one call.
func watchSpecs(ctx context.Context, dir string, debounce time.Duration, logger *slog.Logger, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to start watcher", err)
	}
	defer watcher.Close()

	if err := addWatchDirs(watcher, dir); err != nil {
		return WrapExitError(ExitCommandError, "failed to watch specs directory", err)
	}
	logger.Info("watching specs", "dir", dir)

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Create) && isDir(event.Name) {
				if !watchNewDir(watcher, event.Name, logger) {
					continue
				}
			} else if filepath.Ext(event.Name) != ".cue" || event.Op&specOps == 0 {
				continue
			}
			logger.Debug("spec changed", "file", event.Name, "op", event.Op.String())
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			onChange()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", "error", err)
		}
	}
}

// watchNewDir watches a directory created after startup. Files written into
// it before the watch was added produce no events, so it reports whether the
// directory already holds CUE files.
func watchNewDir(watcher *fsnotify.Watcher, dir string, logger *slog.Logger) bool {
	if err := addWatchDirs(watcher, dir); err != nil {
		logger.Warn("failed to watch new directory", "dir", dir, "error", err)
		return false
	}
	logger.Debug("watching new directory", "dir", dir)
	files, err := FindCUEFiles(dir)
	return err == nil && len(files) > 0
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// addWatchDirs watches dir and every directory below it.
func addWatchDirs(watcher *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
}
