// Package watch implements the Watcher port: a debounced filesystem
// observer on the three live planning files that drives the Merge Engine.
package watch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/hydra-dynamix/erasmus/internal/core/entities"
	"github.com/hydra-dynamix/erasmus/internal/core/usecases"
)

// debounceWindow is the wall-clock window within which repeated events on
// the same path collapse into a single merge.
const debounceWindow = 100 * time.Millisecond

// Watcher monitors the three live planning files and invokes a MergeEngine
// on settled changes. One dispatch goroutine owns the fsnotify source and
// schedules a debounce timer per path; Merge is called from the timer's own
// goroutine when it fires, not from the dispatch goroutine, so settled
// changes on distinct paths can call Merge concurrently and rely on the
// engine's own serialization.
type Watcher struct {
	resolver usecases.PathResolver
	engine   usecases.MergeEngine
	logger   usecases.Logger
	debounce time.Duration

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

var _ usecases.Watcher = (*Watcher)(nil)

// New constructs a Watcher over resolver's three live planning files,
// invoking engine on every debounced change. debounce overrides
// debounceWindow when positive; a zero or negative value keeps the default.
func New(resolver usecases.PathResolver, engine usecases.MergeEngine, logger usecases.Logger, debounce time.Duration) *Watcher {
	if debounce <= 0 {
		debounce = debounceWindow
	}
	return &Watcher{resolver: resolver, engine: engine, logger: logger, debounce: debounce}
}

// Start creates the OS watcher and begins dispatch in the background,
// returning once dispatch has started; dispatch runs until ctx is canceled
// or Stop is called. A reentrant Start on an already-running watcher is a
// no-op, logged as a warning.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		w.logger.Warn("watcher already running, ignoring reentrant Start")
		return nil
	}
	w.running = true
	runCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.done = make(chan struct{})
	w.mu.Unlock()

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		return fmt.Errorf("creating filesystem watcher: %w", err)
	}

	watched := make(map[string]bool, len(entities.Kinds))
	for _, k := range entities.Kinds {
		path := w.resolver.LiveFile(k)
		if err := fsWatcher.Add(path); err != nil {
			_ = fsWatcher.Close()
			w.mu.Lock()
			w.running = false
			w.mu.Unlock()
			return fmt.Errorf("watching %s: %w", path, err)
		}
		watched[path] = true
	}

	ignored := w.ignoredPaths()

	go w.dispatch(runCtx, fsWatcher, watched, ignored)
	return nil
}

// ignoredPaths lists paths the watcher must never act on even if the OS
// reports events for them: the rules file and the editor's global rules
// file.
func (w *Watcher) ignoredPaths() map[string]bool {
	editor := w.resolver.Editor()
	ignored := map[string]bool{
		w.resolver.RulesFile(): true,
	}
	if editor.GlobalRulesPath != "" {
		ignored[editor.GlobalRulesPath] = true
	}
	return ignored
}

// dispatch runs a debounce timer per watched path, so that a burst of
// events on one live file collapses into a single merge without delaying
// a concurrent, independent change to another live file.
func (w *Watcher) dispatch(ctx context.Context, fsWatcher *fsnotify.Watcher, watched, ignored map[string]bool) {
	defer close(w.done)
	defer fsWatcher.Close()

	var timersMu sync.Mutex
	timers := make(map[string]*time.Timer)
	var inFlight sync.WaitGroup

	fire := func(path string) {
		defer inFlight.Done()
		timersMu.Lock()
		delete(timers, path)
		timersMu.Unlock()
		if err := w.engine.Merge(ctx); err != nil {
			w.logger.Error("merge failed", err)
		}
	}

	defer func() {
		timersMu.Lock()
		for _, t := range timers {
			if t.Stop() {
				inFlight.Done()
			}
		}
		timersMu.Unlock()
		inFlight.Wait()
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-fsWatcher.Events:
			if !ok {
				return
			}
			if ignored[event.Name] || !watched[event.Name] {
				continue
			}
			path := event.Name
			timersMu.Lock()
			if t, exists := timers[path]; exists {
				t.Reset(w.debounce)
			} else {
				inFlight.Add(1)
				timers[path] = time.AfterFunc(w.debounce, func() { fire(path) })
			}
			timersMu.Unlock()

		case err, ok := <-fsWatcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watcher error", "error", err)
		}
	}
}

// Stop halts dispatch and releases the OS watcher, draining any in-flight
// merge first.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	cancel := w.cancel
	done := w.done
	w.running = false
	w.mu.Unlock()

	cancel()
	<-done
	return nil
}
