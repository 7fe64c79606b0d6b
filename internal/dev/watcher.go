package dev

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// WatcherConfig configures the file watcher.
type WatcherConfig struct {
	// Dirs to watch recursively.
	Dirs []string
	// Ignore patterns (substring match on path).
	Ignore []string
	// Debounce interval to coalesce rapid changes.
	Debounce time.Duration
}

// Watcher watches route source files and reports changes.
type Watcher struct {
	config   WatcherConfig
	notifier *fsnotify.Watcher
	onChange func(path string)
}

// NewWatcher creates a watcher over the configured directories.
func NewWatcher(config WatcherConfig, onChange func(path string)) (*Watcher, error) {
	if config.Debounce == 0 {
		config.Debounce = 100 * time.Millisecond
	}

	notifier, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		config:   config,
		notifier: notifier,
		onChange: onChange,
	}

	for _, dir := range config.Dirs {
		if err := w.addRecursive(dir); err != nil {
			notifier.Close()
			return nil, err
		}
	}
	return w, nil
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if w.ignored(path) {
			return filepath.SkipDir
		}
		return w.notifier.Add(path)
	})
}

func (w *Watcher) ignored(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") && base != "." {
		return true
	}
	for _, pat := range w.config.Ignore {
		if strings.Contains(path, pat) {
			return true
		}
	}
	return false
}

// Run processes filesystem events until the context is canceled.
// Changes within the debounce window collapse into a single callback.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.notifier.Close()

	var (
		timer   *time.Timer
		timerC  <-chan time.Time
		pending string
	)

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return ctx.Err()

		case event, ok := <-w.notifier.Events:
			if !ok {
				return nil
			}
			if w.ignored(event.Name) {
				continue
			}
			if event.Op&fsnotify.Create != 0 {
				// New directories need to be watched too.
				info, err := os.Stat(event.Name)
				if err == nil && info.IsDir() {
					_ = w.addRecursive(event.Name)
					continue
				}
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if !strings.HasSuffix(event.Name, ".go") {
				continue
			}
			pending = event.Name
			if timer == nil {
				timer = time.NewTimer(w.config.Debounce)
				timerC = timer.C
			} else {
				timer.Reset(w.config.Debounce)
			}

		case <-timerC:
			timer = nil
			timerC = nil
			if w.onChange != nil {
				w.onChange(pending)
			}

		case _, ok := <-w.notifier.Errors:
			if !ok {
				return nil
			}
		}
	}
}
