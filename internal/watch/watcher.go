// SPDX-License-Identifier: MPL-2.0

// Package watch re-runs a build when files under a directory change.
//
// Filesystem events are filtered through doublestar glob patterns and
// coalesced: the callback fires once per quiet period with every path that
// changed. Callbacks run on the event loop, one at a time.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"sync/atomic"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
)

const defaultDebounce = 500 * time.Millisecond

// defaultIgnores are never watched: VCS metadata and editor scratch files.
var defaultIgnores = []string{
	"**/.git/**",
	"**/.hg/**",
	"**/*.swp",
	"**/*.swo",
	"**/*~",
	"**/.DS_Store",
}

// ErrAlreadyRunning is returned by a second call to Run.
var ErrAlreadyRunning = errors.New("watch: Run called more than once")

type (
	// Config holds the parameters for a Watcher.
	Config struct {
		// BaseDir is the watched tree. Empty means the working directory.
		BaseDir string
		// Patterns select the files that trigger a re-run. Empty matches all.
		Patterns []string
		// Ignore extends the default ignore patterns.
		Ignore []string
		// Debounce is the quiet period after the last event.
		Debounce time.Duration
		// OnChange receives the sorted paths, relative to BaseDir, that
		// changed during the last quiet period.
		OnChange func(ctx context.Context, changed []string) error
		// Logger receives non-fatal watcher problems. Nil uses slog.Default.
		Logger *slog.Logger
	}

	// Watcher monitors a directory tree and calls OnChange after changes settle.
	Watcher struct {
		cfg      Config
		fsw      *fsnotify.Watcher
		ignores  []string
		debounce time.Duration
		baseDir  string
		logger   *slog.Logger
		started  atomic.Bool
	}
)

// New validates cfg and registers every non-ignored directory under BaseDir.
func New(cfg Config) (*Watcher, error) {
	if err := validatePatterns(cfg.Patterns, "watch"); err != nil {
		return nil, err
	}
	if err := validatePatterns(cfg.Ignore, "ignore"); err != nil {
		return nil, err
	}

	baseDir := cfg.BaseDir
	if baseDir == "" {
		baseDir = "."
	}
	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("watch: resolve base directory: %w", err)
	}

	if info, err := os.Stat(absBase); err != nil {
		return nil, fmt.Errorf("watch: %w", err)
	} else if !info.IsDir() {
		return nil, fmt.Errorf("watch: %s is not a directory", absBase)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: create fsnotify watcher: %w", err)
	}

	w := &Watcher{
		cfg:      cfg,
		fsw:      fsw,
		ignores:  slices.Concat(defaultIgnores, cfg.Ignore),
		debounce: cfg.Debounce,
		baseDir:  absBase,
		logger:   cfg.Logger,
	}
	if w.debounce <= 0 {
		w.debounce = defaultDebounce
	}
	if w.logger == nil {
		w.logger = slog.Default()
	}

	if err := w.addTree(absBase); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	return w, nil
}

// BaseDir returns the absolute watched directory.
func (w *Watcher) BaseDir() string { return w.baseDir }

// Run processes events until ctx is canceled. It returns nil on
// cancellation and an error when the underlying watcher breaks.
// After each OnChange call, events are dropped until a full debounce window
// passes without any, so files written by the build itself do not trigger
// another run.
func (w *Watcher) Run(ctx context.Context) error {
	if !w.started.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer func() {
		if err := w.fsw.Close(); err != nil {
			w.logger.Warn("close watcher", "error", err)
		}
	}()

	pending := make(map[string]struct{})
	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case evt, ok := <-w.fsw.Events:
			if !ok {
				return errEventsClosed
			}
			rel, relevant := w.track(evt)
			if !relevant {
				continue
			}
			pending[rel] = struct{}{}
			timer.Reset(w.debounce)

		case err, ok := <-w.fsw.Errors:
			if fatal := w.handleError(err, ok); fatal != nil {
				return fatal
			}

		case <-timer.C:
			if len(pending) == 0 || ctx.Err() != nil {
				continue
			}
			changed := slices.Sorted(maps.Keys(pending))
			clear(pending)
			if w.cfg.OnChange != nil {
				if err := w.cfg.OnChange(ctx, changed); err != nil {
					w.logger.Warn("change handler failed", "error", err)
				}
			}
			if err := w.settle(ctx); err != nil {
				return err
			}
		}
	}
}

var errEventsClosed = errors.New("watch: event channel closed")

// settle drops events until one debounce window passes with none arriving.
// Directories created meanwhile are still added to the watch.
func (w *Watcher) settle(ctx context.Context) error {
	quiet := time.NewTimer(w.debounce)
	defer quiet.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case evt, ok := <-w.fsw.Events:
			if !ok {
				return errEventsClosed
			}
			w.track(evt)
			quiet.Reset(w.debounce)
		case err, ok := <-w.fsw.Errors:
			if fatal := w.handleError(err, ok); fatal != nil {
				return fatal
			}
		case <-quiet.C:
			return nil
		}
	}
}

// track extends the watch to newly created directories and reports whether
// evt should trigger a run.
func (w *Watcher) track(evt fsnotify.Event) (string, bool) {
	if evt.Has(fsnotify.Create) {
		w.maybeAddDir(evt.Name)
	}
	return w.relevant(evt.Name)
}

func (w *Watcher) handleError(err error, ok bool) error {
	if !ok {
		return errors.New("watch: error channel closed")
	}
	if isFatalFsnotifyError(err) {
		return fmt.Errorf("watch: fatal fsnotify error: %w", err)
	}
	w.logger.Warn("fsnotify error", "error", err)
	return nil
}

// relevant reports whether path should trigger a run, and returns it
// relative to the base directory.
func (w *Watcher) relevant(path string) (string, bool) {
	rel, err := filepath.Rel(w.baseDir, path)
	if err != nil {
		rel = path
	}
	if w.isIgnored(rel) || !w.matchesPatterns(rel) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

func (w *Watcher) addTree(root string) error {
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			w.logger.Warn("skipping inaccessible path", "path", path, "error", walkErr)
			return nil //nolint:nilerr // unreadable directories are skipped
		}
		if !d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(w.baseDir, path)
		if err != nil {
			return nil //nolint:nilerr // outside the base directory
		}
		if rel != "." && (w.isIgnored(rel) || w.isIgnored(rel+"/")) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			return fmt.Errorf("watch: add directory %q: %w", path, err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("watch: walk %s: %w", root, err)
	}
	return nil
}

// maybeAddDir extends the watch to directories created after startup.
func (w *Watcher) maybeAddDir(path string) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return
	}
	if err := w.addTree(path); err != nil {
		w.logger.Warn("watch new directory", "path", path, "error", err)
	}
}

func (w *Watcher) isIgnored(rel string) bool {
	return matchAny(w.ignores, rel)
}

func (w *Watcher) matchesPatterns(rel string) bool {
	return len(w.cfg.Patterns) == 0 || matchAny(w.cfg.Patterns, rel)
}

func matchAny(patterns []string, rel string) bool {
	normalized := filepath.ToSlash(rel)
	for _, pat := range patterns {
		if matched, err := doublestar.Match(pat, normalized); err == nil && matched {
			return true
		}
	}
	return false
}

// DefaultIgnores returns a copy of the built-in ignore patterns.
func DefaultIgnores() []string {
	return slices.Clone(defaultIgnores)
}

func validatePatterns(patterns []string, label string) error {
	for _, pat := range patterns {
		if !doublestar.ValidatePattern(pat) {
			return fmt.Errorf("watch: invalid %s pattern %q", label, pat)
		}
	}
	return nil
}
