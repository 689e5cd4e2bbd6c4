// Package watcher watches feature model files and reports, debounced, which
// of them changed.
package watcher

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/zjrosen/featmodel/internal/log"
)

// Watcher monitors model files for changes and sends notifications.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	files     map[string]struct{} // absolute, cleaned paths
	dirs      []string
	debounce  time.Duration
	onChange  chan []string
	done      chan struct{}
	stopOnce  sync.Once
	stopErr   error
}

// Config holds watcher configuration options.
type Config struct {
	Paths       []string
	DebounceDur time.Duration
}

// DefaultConfig returns sensible defaults for the watcher.
func DefaultConfig(paths ...string) Config {
	return Config{
		Paths:       paths,
		DebounceDur: 100 * time.Millisecond,
	}
}

// New creates a watcher for the files in cfg.Paths. The files need not exist
// yet but their directories must.
func New(cfg Config) (*Watcher, error) {
	if len(cfg.Paths) == 0 {
		return nil, errors.New("no files to watch")
	}

	files := make(map[string]struct{}, len(cfg.Paths))
	dirSet := make(map[string]struct{})
	var dirs []string
	for _, p := range cfg.Paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("resolving %s: %w", p, err)
		}
		files[abs] = struct{}{}
		dir := filepath.Dir(abs)
		if _, ok := dirSet[dir]; !ok {
			dirSet[dir] = struct{}{}
			dirs = append(dirs, dir)
		}
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}

	return &Watcher{
		fsWatcher: fsw,
		files:     files,
		dirs:      dirs,
		debounce:  cfg.DebounceDur,
		onChange:  make(chan []string, 1),
		done:      make(chan struct{}),
	}, nil
}

// Start begins watching. Directories are watched rather than files so that
// editors replacing a file by rename are still seen. The returned channel
// receives the sorted paths that changed during each quiet period.
func (w *Watcher) Start() (<-chan []string, error) {
	for _, dir := range w.dirs {
		if err := w.fsWatcher.Add(dir); err != nil {
			return nil, fmt.Errorf("watching directory %s: %w", dir, err)
		}
	}
	log.Debug(log.CatWatcher, "watching", "files", len(w.files), "dirs", len(w.dirs))

	go w.loop()

	return w.onChange, nil
}

// Stop terminates the watcher and releases resources. Calls after the first
// return the first call's result.
func (w *Watcher) Stop() error {
	w.stopOnce.Do(func() {
		close(w.done)
		w.stopErr = w.fsWatcher.Close()
	})
	return w.stopErr
}

// loop processes file system events with debouncing.
func (w *Watcher) loop() {
	var (
		timer   *time.Timer
		pending = make(map[string]struct{})
	)

	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}

			name, relevant := w.relevant(event)
			if !relevant {
				continue
			}
			pending[name] = struct{}{}

			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}

		case <-func() <-chan time.Time {
			if timer != nil {
				return timer.C
			}
			return nil
		}():
			if len(pending) == 0 {
				continue
			}
			changed := make([]string, 0, len(pending))
			for name := range pending {
				changed = append(changed, name)
			}
			sort.Strings(changed)

			select {
			case w.onChange <- changed:
				pending = make(map[string]struct{})
			default:
				// Receiver is behind; keep the set and retry after the next event.
				log.Debug(log.CatWatcher, "change notification dropped", "files", len(changed))
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			log.ErrorErr(log.CatWatcher, "watch error", err)

		case <-w.done:
			if timer != nil {
				timer.Stop()
			}
			return
		}
	}
}

// relevant reports whether the event touches a watched file and returns the
// file's path.
func (w *Watcher) relevant(event fsnotify.Event) (string, bool) {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return "", false
	}
	name, err := filepath.Abs(event.Name)
	if err != nil {
		return "", false
	}
	_, ok := w.files[name]
	return name, ok
}
