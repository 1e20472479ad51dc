package cmd

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/Ayymoose/PC-Lint-GUI-sub000/log"
)

// defaultDebounce coalesces an editor's burst of writes into one re-run.
const defaultDebounce = 500 * time.Millisecond

// sourceWatcher reports changes to files selected by include/exclude
// under root. fsnotify is not recursive, so every directory is added and
// new directories are picked up as they appear.
type sourceWatcher struct {
	root     string
	include  []string
	exclude  []string
	debounce time.Duration
	logger   *log.Logger
	watcher  *fsnotify.Watcher
}

func newSourceWatcher(root string, include, exclude []string, logger *log.Logger) (*sourceWatcher, error) {
	if root == "" {
		root = "."
	}
	if logger == nil {
		logger = log.NewNopLogger()
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	sw := &sourceWatcher{
		root:     root,
		include:  include,
		exclude:  exclude,
		debounce: defaultDebounce,
		logger:   logger,
		watcher:  w,
	}
	if err := sw.addTree(root); err != nil {
		_ = w.Close()
		return nil, err
	}
	return sw, nil
}

// addTree watches dir and every directory below it, skipping hidden ones.
func (sw *sourceWatcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return sw.watcher.Add(path)
	})
}

// Run calls fn with the changed files after each quiet period, until ctx
// is done. fn runs on the watch goroutine; events arriving meanwhile are
// batched into the next call.
func (sw *sourceWatcher) Run(ctx context.Context, fn func(changed []string)) error {
	defer sw.watcher.Close()

	pending := make(map[string]struct{})
	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-sw.watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := sw.addTree(event.Name); err != nil {
						sw.logger.Warn("failed to watch new directory", map[string]any{
							"dir":   event.Name,
							"error": err.Error(),
						})
					}
					continue
				}
			}
			if !sw.relevant(event) {
				continue
			}
			pending[event.Name] = struct{}{}
			timer.Reset(sw.debounce)

		case err, ok := <-sw.watcher.Errors:
			if !ok {
				return nil
			}
			sw.logger.Warn("watch error", map[string]any{"error": err.Error()})

		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			changed := make([]string, 0, len(pending))
			for name := range pending {
				changed = append(changed, name)
			}
			sort.Strings(changed)
			clear(pending)
			fn(changed)
		}
	}
}

func (sw *sourceWatcher) relevant(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	rel, err := filepath.Rel(sw.root, event.Name)
	if err != nil {
		return false
	}
	return matchesSources(rel, sw.include, sw.exclude)
}
