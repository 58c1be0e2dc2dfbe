// SPDX-License-Identifier: MPL-2.0

package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/modhook/modhook/internal/logging"
	"github.com/modhook/modhook/pkg/fspath"
	"github.com/modhook/modhook/pkg/types"
)

// DefaultDebounce is the quiet period used when Config.Debounce is not set.
const DefaultDebounce = 500 * time.Millisecond

// defaultIgnores are never watched: VCS metadata, editor swap files and OS
// metadata produce events that never change a module.
var defaultIgnores = []string{
	"**/.git",
	"**/.git/**",
	"**/node_modules/**",
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
		// BaseDir is the tree to watch. Empty means the working directory.
		BaseDir types.FilesystemPath

		// Ignore are doublestar patterns, relative to BaseDir, of paths that
		// never trigger OnChange. They are added to the built-in ignores.
		Ignore []string

		// Debounce is the quiet period after the last event before OnChange
		// fires. Zero or negative values mean DefaultDebounce.
		Debounce time.Duration

		// OnChange receives the changed paths, relative to BaseDir, in the
		// order they were first seen since the previous call. It never runs
		// concurrently with itself.
		OnChange func(ctx context.Context, changed []types.FilesystemPath) error

		// Logger receives watcher diagnostics. Nil discards them.
		Logger *slog.Logger
	}

	// Watcher monitors a directory tree and calls OnChange once per burst of
	// filesystem events.
	Watcher struct {
		cfg      Config
		fsw      *fsnotify.Watcher
		ignores  []string
		debounce time.Duration
		baseDir  types.FilesystemPath
		logger   *slog.Logger
		started  atomic.Bool
	}

	// pendingSet keeps changed paths in first-seen order.
	pendingSet struct {
		order []types.FilesystemPath
		seen  map[types.FilesystemPath]struct{}
	}
)

// New creates a Watcher and registers every non-ignored directory under
// BaseDir.
func New(cfg Config) (*Watcher, error) {
	baseDir := cfg.BaseDir
	if baseDir == "" {
		baseDir = "."
	}
	absBase, err := fspath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("watch: resolve base directory: %w", err)
	}

	for _, pat := range cfg.Ignore {
		if !doublestar.ValidatePattern(pat) {
			return nil, fmt.Errorf("watch: invalid ignore pattern %q: %w", pat, doublestar.ErrBadPattern)
		}
	}

	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: create fsnotify watcher: %w", err)
	}

	w := &Watcher{
		cfg:      cfg,
		fsw:      fsw,
		ignores:  append(DefaultIgnores(), cfg.Ignore...),
		debounce: debounce,
		baseDir:  absBase,
		logger:   logger,
	}

	if err := w.addDirectories(); err != nil {
		_ = fsw.Close() // The walk error is the one worth reporting.
		return nil, err
	}
	return w, nil
}

// Run processes events until ctx is canceled. It returns nil on cancellation
// and an error when the underlying watcher breaks.
func (w *Watcher) Run(ctx context.Context) error {
	if !w.started.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}

	var (
		mu      sync.Mutex
		pending = newPendingSet()
		timer   *time.Timer
		running atomic.Bool
		// inflight tracks the OnChange call so Run returns only after it.
		inflight sync.WaitGroup
		stopped  bool
	)

	fire := func() {
		if ctx.Err() != nil {
			return
		}
		// Skip if busy and retry after another debounce period, so events
		// that arrived during a long run are not lost.
		if !running.CompareAndSwap(false, true) {
			w.logger.Debug("previous run still in progress, postponing")
			mu.Lock()
			if timer != nil && !stopped {
				timer.Reset(w.debounce)
			}
			mu.Unlock()
			return
		}
		defer running.Store(false)

		mu.Lock()
		if stopped {
			mu.Unlock()
			return
		}
		inflight.Add(1)
		changed := pending.drain()
		mu.Unlock()
		defer inflight.Done()

		if len(changed) == 0 || w.cfg.OnChange == nil {
			return
		}

		if err := w.cfg.OnChange(ctx, changed); err != nil {
			w.logger.Error("change handler failed", "err", err)
		}
	}

	defer func() {
		mu.Lock()
		stopped = true
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
		inflight.Wait()
		if err := w.fsw.Close(); err != nil {
			w.logger.Warn("close watcher", "err", err)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case evt, ok := <-w.fsw.Events:
			if !ok {
				return errors.New("watch: event channel closed unexpectedly")
			}
			rel, ok := w.relative(evt.Name)
			if !ok || w.isIgnored(rel) {
				continue
			}
			if evt.Has(fsnotify.Create) {
				w.maybeAddDir(evt.Name)
			}

			mu.Lock()
			pending.add(rel)
			if timer == nil {
				timer = time.AfterFunc(w.debounce, fire)
			} else {
				timer.Reset(w.debounce)
			}
			mu.Unlock()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return errors.New("watch: error channel closed unexpectedly")
			}
			if isFatal(err) {
				return fmt.Errorf("watch: %w", err)
			}
			w.logger.Warn("watcher error", "err", err)
		}
	}
}

// addDirectories registers BaseDir and every non-ignored directory below it.
// Unreadable directories are skipped.
func (w *Watcher) addDirectories() error {
	err := filepath.WalkDir(w.baseDir.String(), func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			w.logger.Warn("skipping inaccessible path", "path", path, "err", walkErr)
			return nil //nolint:nilerr // Best-effort walk.
		}
		if !d.IsDir() {
			return nil
		}
		if rel, ok := w.relative(path); ok && rel != "." && w.isIgnored(rel) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			return fmt.Errorf("watch: add directory %q: %w", path, err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("watch: walk directory tree: %w", err)
	}
	return nil
}

// maybeAddDir extends the watch to a directory created after startup.
func (w *Watcher) maybeAddDir(path string) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return
	}
	if err := w.fsw.Add(path); err != nil {
		w.logger.Warn("watch new directory", "path", path, "err", err)
	}
}

func (w *Watcher) relative(path string) (types.FilesystemPath, bool) {
	rel, err := filepath.Rel(w.baseDir.String(), path)
	if err != nil {
		return "", false
	}
	return types.FilesystemPath(rel), true
}

func (w *Watcher) isIgnored(rel types.FilesystemPath) bool {
	return matchAny(w.ignores, fspath.ToSlash(rel))
}

// DefaultIgnores returns a copy of the built-in ignore patterns.
func DefaultIgnores() []string {
	out := make([]string, len(defaultIgnores))
	copy(out, defaultIgnores)
	return out
}

func matchAny(patterns []string, name string) bool {
	for _, pat := range patterns {
		if ok, err := doublestar.Match(pat, name); err == nil && ok {
			return true
		}
	}
	return false
}

func newPendingSet() *pendingSet {
	return &pendingSet{seen: make(map[types.FilesystemPath]struct{})}
}

func (p *pendingSet) add(path types.FilesystemPath) {
	if _, dup := p.seen[path]; dup {
		return
	}
	p.seen[path] = struct{}{}
	p.order = append(p.order, path)
}

func (p *pendingSet) drain() []types.FilesystemPath {
	out := p.order
	p.order = nil
	clear(p.seen)
	return out
}
