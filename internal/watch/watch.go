// Package watch triggers full index rebuilds in response to filesystem
// changes under the indexed root. It never performs a partial or
// incremental update: every trigger re-runs the same Indexer.Build path a
// one-shot `docdex build` would, preserving the "index is rebuilt from
// sources" invariant (spec.md §4.3).
package watch

import (
	"context"
	"fmt"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/time/rate"

	"github.com/basalt-docs/docdex/internal/logger"
)

// pollInterval is how often a pending change is checked against the
// debounce limiter. Small enough that a rebuild fires promptly once the
// limiter allows it, large enough to not busy-loop.
const pollInterval = 200 * time.Millisecond

// Rebuilder runs one full rebuild. Supplied by the caller (the CLI watch
// command), which owns the store and lock.
type Rebuilder func(ctx context.Context) error

// Options configures debouncing.
type Options struct {
	// Root is the directory tree to watch, recursively.
	Root string

	// Debounce bounds how often Rebuild may fire, smoothing bursts of
	// filesystem events from a single save or a git checkout into one
	// rebuild. Defaults to one rebuild per second.
	Debounce rate.Limit
}

// Run watches Root and calls rebuild once per debounced burst of changes,
// until ctx is cancelled. The first rebuild happens immediately on start so
// callers see an up-to-date index before the first file change.
func Run(ctx context.Context, opts Options, rebuild Rebuilder) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: creating fsnotify watcher: %w", err)
	}
	defer watcher.Close() //nolint:errcheck

	dirs, err := collectDirs(opts.Root)
	if err != nil {
		return fmt.Errorf("watch: walking %s: %w", opts.Root, err)
	}
	for _, d := range dirs {
		if err := watcher.Add(d); err != nil {
			return fmt.Errorf("watch: watching %s: %w", d, err)
		}
	}

	limit := opts.Debounce
	if limit <= 0 {
		limit = rate.Every(time.Second)
	}
	limiter := rate.NewLimiter(limit, 1)

	if err := rebuild(ctx); err != nil {
		return err
	}
	logger.Info("watch: initial build complete, watching %s", opts.Root)

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	pending := false
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if relevantEvent(event) {
				pending = true
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch: fsnotify error: %v", err)
		case <-ticker.C:
			if pending && limiter.Allow() {
				pending = false
				logger.Info("watch: change detected, rebuilding")
				if err := rebuild(ctx); err != nil {
					logger.Warn("watch: rebuild failed: %v", err)
				}
			}
		}
	}
}

func relevantEvent(event fsnotify.Event) bool {
	return event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0
}
