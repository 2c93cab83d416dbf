// Package watch triggers rebuilds when files under the site root change.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce collapses the burst of events an editor save produces.
const DefaultDebounce = 100 * time.Millisecond

// IgnoreFunc reports whether a path relative to the root should not trigger
// a rebuild. Ignored directories are not watched at all.
type IgnoreFunc func(relPath string) bool

// Watcher watches a directory tree recursively.
type Watcher struct {
	root     string
	ignore   IgnoreFunc
	debounce time.Duration
	fsw      *fsnotify.Watcher
}

// New starts watching every directory under root that ignore lets through.
func New(root string, ignore IgnoreFunc, debounce time.Duration) (*Watcher, error) {
	if ignore == nil {
		ignore = func(string) bool { return false }
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: %w", err)
	}
	w := &Watcher{root: root, ignore: ignore, debounce: debounce, fsw: fsw}
	if err := w.addRecursive(root); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

func (w *Watcher) addRecursive(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return fmt.Errorf("watch: %w", err)
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if w.ignored(path) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}

func (w *Watcher) ignored(path string) bool {
	rel, err := filepath.Rel(w.root, path)
	if err != nil || rel == "." {
		return false
	}
	return w.ignore(filepath.ToSlash(rel))
}

// Run calls onChange once per burst of changes until ctx is done. Calls to
// onChange never overlap.
func (w *Watcher) Run(ctx context.Context, onChange func()) error {
	defer w.fsw.Close()

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			if w.ignored(event.Name) {
				continue
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addRecursive(event.Name); err != nil {
						log.Printf("watch: %v", err)
					}
				}
			}
			timer.Reset(w.debounce)

		case <-timer.C:
			onChange()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			log.Printf("watch: %v", err)
		}
	}
}

// Close stops watching without running.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}
