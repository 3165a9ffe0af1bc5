package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"

	"emwin_parser/internal/observability"
)

// Watcher feeds files from a set of directory trees to an Ingester.
type Watcher struct {
	dirs     []string
	ingester *Ingester
	workers  int
	settle   time.Duration
	metrics  *observability.Metrics
	logger   *slog.Logger
	clock    clockwork.Clock
}

// WatcherOptions configures a Watcher.
type WatcherOptions struct {
	Dirs    []string
	Workers int
	// Settle is how long a file must go without events before it is handed
	// over, so that files still being written are not read early.
	Settle  time.Duration
	Metrics *observability.Metrics
	Logger  *slog.Logger
	Clock   clockwork.Clock
}

// NewWatcher returns a Watcher for the non-empty entries of opts.Dirs.
func NewWatcher(in *Ingester, opts WatcherOptions) *Watcher {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.Settle <= 0 {
		opts.Settle = time.Second
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	var dirs []string
	for _, d := range opts.Dirs {
		if d != "" {
			dirs = append(dirs, d)
		}
	}
	return &Watcher{
		dirs:     dirs,
		ingester: in,
		workers:  opts.Workers,
		settle:   opts.Settle,
		metrics:  opts.Metrics,
		logger:   opts.Logger,
		clock:    opts.Clock,
	}
}

// Run processes the files already present, then new ones as they settle,
// until ctx is cancelled. Per-file errors are logged, not returned.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() { _ = fsw.Close() }()

	var backlog []string
	for _, dir := range w.dirs {
		files, err := w.addTree(fsw, dir)
		if err != nil {
			return err
		}
		backlog = append(backlog, files...)
	}
	sort.Strings(backlog)

	w.metrics.WatcherRunning.Set(1)
	defer w.metrics.WatcherRunning.Set(0)
	w.logger.Info("watching", "dirs", w.dirs, "workers", w.workers, "backlog", len(backlog))

	jobs := make(chan string, 64)
	g, gctx := errgroup.WithContext(ctx)

	for i := 0; i < w.workers; i++ {
		g.Go(func() error {
			for path := range jobs {
				_ = w.ingester.Process(gctx, path)
			}
			return nil
		})
	}

	g.Go(func() error {
		defer close(jobs)
		send := func(path string) bool {
			select {
			case jobs <- path:
				return true
			case <-gctx.Done():
				return false
			}
		}
		for _, path := range backlog {
			if !send(path) {
				return nil
			}
		}
		return w.loop(gctx, fsw, send)
	})

	return g.Wait()
}

func (w *Watcher) loop(ctx context.Context, fsw *fsnotify.Watcher, send func(string) bool) error {
	pending := newSettler(w.settle)
	ticker := w.clock.NewTicker(w.settle / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			info, err := os.Stat(event.Name)
			if err != nil {
				continue
			}
			if info.IsDir() {
				files, err := w.addTree(fsw, event.Name)
				if err != nil {
					w.logger.Error("failed to watch new directory", "path", event.Name, "error", err)
				}
				for _, f := range files {
					pending.touch(f, w.clock.Now())
				}
				continue
			}
			pending.touch(event.Name, w.clock.Now())
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("filesystem watch error", "error", err)
		case now := <-ticker.Chan():
			for _, path := range pending.due(now) {
				if !send(path) {
					return nil
				}
			}
		}
	}
}

// addTree watches dir and every directory below it, returning the regular
// files found.
func (w *Watcher) addTree(fsw *fsnotify.Watcher, dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if err := fsw.Add(path); err != nil {
				return fmt.Errorf("watch %s: %w", path, err)
			}
			return nil
		}
		if d.Type().IsRegular() {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", dir, err)
	}
	return files, nil
}

// settler tracks the last event time of each path.
type settler struct {
	quiet time.Duration
	last  map[string]time.Time
}

func newSettler(quiet time.Duration) *settler {
	return &settler{quiet: quiet, last: make(map[string]time.Time)}
}

func (s *settler) touch(path string, now time.Time) {
	s.last[path] = now
}

// due removes and returns, in name order, the paths quiet for at least the
// settle time.
func (s *settler) due(now time.Time) []string {
	var out []string
	for path, at := range s.last {
		if now.Sub(at) >= s.quiet {
			out = append(out, path)
			delete(s.last, path)
		}
	}
	sort.Strings(out)
	return out
}
