// Package watch implements the file-watch loop: re-running a build
// whenever the input file changes, debounced and collapsed to a single
// path.
package watch

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/fbeamer/fbeamer/internal/debug"
)

// Loop watches inputFile for writes and renames, invoking run after each
// burst of activity settles for debounce. Editors commonly replace a file
// by writing a temp file and renaming it over the original, which fsnotify
// on some platforms reports against the containing directory rather than
// the file itself, so the directory is watched and events are filtered to
// inputFile's basename.
//
// Loop blocks until ctx is cancelled. run returns nothing, so a failing
// run never stops the loop; reporting its error is left to run itself.
// Calls to run are serialised: a debounced run that fires while an earlier
// one is still in progress waits for it to finish.
func Loop(ctx context.Context, inputFile string, debounce time.Duration, run func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	dir := filepath.Dir(inputFile)
	if err := watcher.Add(dir); err != nil {
		return err
	}
	base := filepath.Base(inputFile)

	var mu sync.Mutex
	var timer *time.Timer
	var runMu sync.Mutex
	runSafely := func() {
		runMu.Lock()
		defer runMu.Unlock()
		debug.Info("watch", "input changed, rebuilding")
		run()
	}

	for {
		select {
		case <-ctx.Done():
			mu.Lock()
			if timer != nil {
				timer.Stop()
			}
			mu.Unlock()
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != base {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			mu.Lock()
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounce, runSafely)
			mu.Unlock()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			debug.Error("watch", "watcher error: %v", err)
		}
	}
}
