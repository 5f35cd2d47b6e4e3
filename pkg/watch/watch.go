package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// DefaultDelay is the quiet period after the last change before a merge runs.
const DefaultDelay = 500 * time.Millisecond

// ReloadFunc runs one fresh merge.
type ReloadFunc func(ctx context.Context) error

// Watcher re-runs a merge whenever a manifest under the watched tree changes.
type Watcher struct {
	logger  zerolog.Logger
	delay   time.Duration
	skip    map[string]bool
	ignore  map[string]bool
	watcher *fsnotify.Watcher
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDelay sets the debounce delay.
func WithDelay(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.delay = d
		}
	}
}

// WithSkipDirs replaces the directory names that are never watched.
func WithSkipDirs(names ...string) Option {
	return func(w *Watcher) {
		w.skip = make(map[string]bool, len(names))
		for _, n := range names {
			w.skip[n] = true
		}
	}
}

// WithIgnoreFiles excludes files from triggering a reload, typically the
// merge output written by the reload itself.
func WithIgnoreFiles(paths ...string) Option {
	return func(w *Watcher) {
		for _, p := range paths {
			if abs, err := filepath.Abs(p); err == nil {
				w.ignore[abs] = true
			}
		}
	}
}

// New creates a watcher.
func New(logger zerolog.Logger, opts ...Option) *Watcher {
	w := &Watcher{
		logger: logger,
		delay:  DefaultDelay,
		skip:   map[string]bool{".git": true, "vendor": true, "node_modules": true},
		ignore: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Watch watches root recursively and calls reload after each burst of
// changes to .json files. It blocks until ctx is cancelled. Reload errors are
// logged and watching continues.
func (w *Watcher) Watch(ctx context.Context, root string, reload ReloadFunc) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	w.watcher = watcher
	defer func() { _ = watcher.Close() }()

	if err := w.watchDirectory(root); err != nil {
		return fmt.Errorf("failed to watch %s: %w", root, err)
	}

	w.logger.Info().
		Str("root", root).
		Dur("delay", w.delay).
		Msg("Started watching manifests")

	return w.processEvents(ctx, reload)
}

// watchDirectory adds dirPath and its subdirectories to the watcher.
func (w *Watcher) watchDirectory(dirPath string) error {
	return filepath.WalkDir(dirPath, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dirPath && w.skip[d.Name()] {
			return filepath.SkipDir
		}
		return w.watcher.Add(path)
	})
}

func (w *Watcher) processEvents(ctx context.Context, reload ReloadFunc) error {
	// fire is nil while no change is pending
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Debug().
				Str("file", event.Name).
				Str("op", event.Op.String()).
				Msg("Manifest changed")

			fire = time.After(w.delay)

		case <-fire:
			fire = nil
			w.logger.Info().Msg("Re-running merge")
			if err := reload(ctx); err != nil {
				w.logger.Error().Err(err).Msg("Merge failed")
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error().Err(err).Msg("Watcher error")
		}
	}
}

// relevant filters events down to manifest changes. Newly created
// directories are added to the watch list.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.watchDirectory(event.Name); err != nil {
				w.logger.Warn().Err(err).Str("path", event.Name).Msg("Failed to watch directory")
			}
			return false
		}
	}
	if !strings.HasSuffix(event.Name, ".json") {
		return false
	}
	if abs, err := filepath.Abs(event.Name); err == nil && w.ignore[abs] {
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0
}
