package tui

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// WatchTheme watches the user theme file and invokes onChange whenever it
// is written or replaced. Returns a stop function. Watching is best-effort:
// when the config directory does not exist, the returned stop function is a
// no-op and onChange never fires.
func WatchTheme(path string, onChange func()) (stop func()) {
	if path == "" {
		return func() {}
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return func() {}
	}

	// Watch the directory, not the file: editors replace files on save,
	// which drops a direct file watch.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return func() {}
	}

	done := make(chan struct{})
	go func() {
		for {
			select {
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if ev.Name != path {
					continue
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
					onChange()
				}
			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
			case <-done:
				return
			}
		}
	}()

	return func() {
		close(done)
		watcher.Close()
	}
}
