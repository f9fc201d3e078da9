// SPDX-License-Identifier: MPL-2.0

// Package watch re-runs a callback when import map documents change on disk.
//
// The watcher observes the directories that hold the watched documents, so
// editors that save through a temporary file and a rename are still seen.
// Events inside the debounce window are coalesced into one callback with the
// full set of changed paths.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period used when Config.Debounce is not set.
const DefaultDebounce = 300 * time.Millisecond

// defaultIgnores are matched against the base name of every changed file.
// They cover editor swap and backup files written next to the document.
var defaultIgnores = []string{
	"*.swp",
	"*.swo",
	"*~",
	".#*",
	"4913",
}

var (
	// ErrNothingToWatch is returned by New when Config names no files and
	// no patterns with directories to search.
	ErrNothingToWatch = errors.New("watch: no files or patterns to watch")

	// ErrAlreadyRunning is returned by a second call to Run.
	ErrAlreadyRunning = errors.New("watch: Run called more than once")

	// ErrInvalidPattern is returned by New for a malformed glob.
	ErrInvalidPattern = errors.New("watch: invalid pattern")
)

type (
	// Config holds the parameters for a Watcher.
	Config struct {
		// Files are the documents whose changes trigger OnChange.
		Files []string

		// Patterns are doublestar globs matched against the base name of files
		// in Dirs, e.g. "import_map*.json".
		Patterns []string

		// Dirs are directories searched with Patterns, in addition to the
		// directories holding Files.
		Dirs []string

		// Ignore are extra base-name globs that never trigger OnChange.
		Ignore []string

		// Debounce is the quiet period after the last event before OnChange
		// fires. Zero or negative means DefaultDebounce.
		Debounce time.Duration

		// ClearScreen writes an ANSI clear sequence to Stdout before each
		// callback.
		ClearScreen bool

		// OnChange receives the sorted, absolute paths that changed.
		OnChange func(ctx context.Context, changed []string) error

		// Stdout and Stderr default to os.Stdout and os.Stderr.
		Stdout io.Writer
		Stderr io.Writer
	}

	// Watcher monitors import map documents and fires a debounced callback.
	Watcher struct {
		cfg      Config
		fsw      *fsnotify.Watcher
		files    map[string]struct{}
		dirs     []string
		ignores  []string
		debounce time.Duration
		stdout   io.Writer
		stderr   io.Writer
		started  atomic.Bool
	}

	// batch accumulates changed paths until the debounce timer fires.
	batch struct {
		mu      sync.Mutex
		pending map[string]struct{}
		timer   *time.Timer
		closed  bool
		running sync.WaitGroup
		busy    atomic.Bool
	}
)

// New validates cfg and registers the watched directories with fsnotify.
func New(cfg Config) (*Watcher, error) {
	if len(cfg.Files) == 0 && (len(cfg.Patterns) == 0 || len(cfg.Dirs) == 0) {
		return nil, ErrNothingToWatch
	}
	if err := validatePatterns(cfg.Patterns); err != nil {
		return nil, err
	}
	if err := validatePatterns(cfg.Ignore); err != nil {
		return nil, err
	}

	files := make(map[string]struct{}, len(cfg.Files))
	dirSet := make(map[string]struct{})
	for _, f := range cfg.Files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return nil, fmt.Errorf("watch: resolve %q: %w", f, err)
		}
		files[abs] = struct{}{}
		dirSet[filepath.Dir(abs)] = struct{}{}
	}
	for _, d := range cfg.Dirs {
		abs, err := filepath.Abs(d)
		if err != nil {
			return nil, fmt.Errorf("watch: resolve %q: %w", d, err)
		}
		dirSet[abs] = struct{}{}
	}
	dirs := slices.Sorted(maps.Keys(dirSet))

	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	stdout := cfg.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}
	stderr := cfg.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: create fsnotify watcher: %w", err)
	}
	for _, d := range dirs {
		if err := fsw.Add(d); err != nil {
			if closeErr := fsw.Close(); closeErr != nil {
				fmt.Fprintf(stderr, "watch: close after init failure: %v\n", closeErr)
			}
			return nil, fmt.Errorf("watch: add directory %q: %w", d, err)
		}
	}

	return &Watcher{
		cfg:      cfg,
		fsw:      fsw,
		files:    files,
		dirs:     dirs,
		ignores:  append(slices.Clone(defaultIgnores), cfg.Ignore...),
		debounce: debounce,
		stdout:   stdout,
		stderr:   stderr,
	}, nil
}

// Dirs returns the directories registered with fsnotify.
func (w *Watcher) Dirs() []string {
	return slices.Clone(w.dirs)
}

// Run processes filesystem events until ctx is cancelled. It returns nil on
// cancellation and an error when the underlying watcher breaks. A callback
// in progress finishes before Run returns.
func (w *Watcher) Run(ctx context.Context) error {
	if !w.started.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}

	b := &batch{pending: make(map[string]struct{})}
	fire := func() { w.fire(ctx, b) }

	defer func() {
		b.stop()
		if err := w.fsw.Close(); err != nil {
			fmt.Fprintf(w.stderr, "watch: close fsnotify: %v\n", err)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case evt, ok := <-w.fsw.Events:
			if !ok {
				return errors.New("watch: fsnotify event channel closed unexpectedly")
			}
			if evt.Op == fsnotify.Chmod || !w.relevant(evt.Name) {
				continue
			}
			b.add(filepath.Clean(evt.Name), w.debounce, fire)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return errors.New("watch: fsnotify error channel closed unexpectedly")
			}
			if isFatalFsnotifyError(err) {
				return fmt.Errorf("watch: fatal fsnotify error: %w", err)
			}
			fmt.Fprintf(w.stderr, "watch: fsnotify error: %v\n", err)
		}
	}
}

// fire runs OnChange with the drained batch. A run that overlaps a previous
// one is postponed by another debounce period instead of dropped.
func (w *Watcher) fire(ctx context.Context, b *batch) {
	if !b.begin() {
		return
	}
	defer b.running.Done()

	if ctx.Err() != nil {
		return
	}
	if !b.busy.CompareAndSwap(false, true) {
		b.reschedule(w.debounce)
		return
	}
	defer b.busy.Store(false)

	changed := b.drain()
	if len(changed) == 0 {
		return
	}

	if w.cfg.ClearScreen {
		fmt.Fprint(w.stdout, "\033[2J\033[H")
	}
	if w.cfg.OnChange == nil {
		return
	}
	if err := w.cfg.OnChange(ctx, changed); err != nil {
		fmt.Fprintf(w.stderr, "watch: callback error: %v\n", err)
	}
}

// relevant reports whether an event on name should trigger the callback.
func (w *Watcher) relevant(name string) bool {
	base := filepath.Base(name)
	if matchAny(w.ignores, base) {
		return false
	}
	abs, err := filepath.Abs(name)
	if err != nil {
		abs = filepath.Clean(name)
	}
	if _, ok := w.files[abs]; ok {
		return true
	}
	return matchAny(w.cfg.Patterns, base)
}

func (b *batch) add(name string, d time.Duration, fire func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pending[name] = struct{}{}
	if b.timer == nil {
		b.timer = time.AfterFunc(d, fire)
		return
	}
	b.timer.Reset(d)
}

// begin registers a callback run. It fails once the batch is stopped.
func (b *batch) begin() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return false
	}
	b.running.Add(1)
	return true
}

func (b *batch) reschedule(d time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.closed && b.timer != nil {
		b.timer.Reset(d)
	}
}

func (b *batch) drain() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	changed := slices.Sorted(maps.Keys(b.pending))
	clear(b.pending)
	return changed
}

// stop cancels the pending timer and waits for a running callback.
func (b *batch) stop() {
	b.mu.Lock()
	b.closed = true
	if b.timer != nil {
		b.timer.Stop()
	}
	b.mu.Unlock()

	b.running.Wait()
}

// DefaultIgnores returns a copy of the built-in ignore globs.
func DefaultIgnores() []string {
	return slices.Clone(defaultIgnores)
}

func matchAny(patterns []string, name string) bool {
	for _, pat := range patterns {
		if matched, err := doublestar.Match(pat, name); err == nil && matched {
			return true
		}
	}
	return false
}

func validatePatterns(patterns []string) error {
	for _, pat := range patterns {
		if pat == "" || !doublestar.ValidatePattern(pat) {
			return fmt.Errorf("%w: %q", ErrInvalidPattern, pat)
		}
	}
	return nil
}
