// Package watcher reloads the state file into the observed document when it
// changes on disk.
package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/brianly1003/observe/internal/state"
	"github.com/brianly1003/observe/internal/sync"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

// Target receives the decoded contents of the state file.
type Target interface {
	Apply(values map[string]any) []string
}

// Watcher watches a single state file. It watches the parent directory so
// that editors which save by renaming a temp file over the original are
// still picked up.
type Watcher struct {
	path       string
	target     Target
	debounceMS int

	mu        sync.Mutex
	watcher   *fsnotify.Watcher
	debouncer *Debouncer
	running   bool
	cancel    context.CancelFunc
	done      chan struct{}

	reloads atomic.Int64
}

// NewWatcher creates a watcher for the state file at path.
func NewWatcher(path string, target Target, debounceMS int) *Watcher {
	return &Watcher{
		path:       path,
		target:     target,
		debounceMS: debounceMS,
	}
}

// Start loads the file once and then watches it for changes. A missing
// file is not an error; it is picked up when it appears.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}

	abs, err := filepath.Abs(w.path)
	if err != nil {
		w.mu.Unlock()
		return fmt.Errorf("resolve state file path: %w", err)
	}
	w.path = abs

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		w.mu.Unlock()
		return err
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		_ = fsw.Close()
		w.mu.Unlock()
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	watchCtx, cancel := context.WithCancel(ctx)
	w.watcher = fsw
	w.cancel = cancel
	w.debouncer = NewDebouncer(time.Duration(w.debounceMS)*time.Millisecond, w.handleDebounced)
	w.done = make(chan struct{})
	w.running = true
	w.mu.Unlock()

	if err := w.Reload(); err != nil {
		log.Warn().Err(err).Str("path", abs).Msg("initial state load failed")
	}

	go w.eventLoop(watchCtx, fsw, w.debouncer, w.done)

	log.Info().
		Str("path", abs).
		Int("debounce_ms", w.debounceMS).
		Msg("state watcher started")

	return nil
}

// Stop terminates watching and waits for the event loop to exit.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = false
	fsw, debouncer, cancel, done := w.watcher, w.debouncer, w.cancel, w.done
	w.watcher = nil
	w.mu.Unlock()

	cancel()
	debouncer.Stop()
	err := fsw.Close()
	<-done

	log.Info().Msg("state watcher stopped")
	return err
}

// IsRunning returns true if the watcher is active.
func (w *Watcher) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

// Reloads returns the number of successful reloads.
func (w *Watcher) Reloads() int64 {
	return w.reloads.Load()
}

// Reload reads the state file and applies it to the target.
func (w *Watcher) Reload() error {
	values, err := state.LoadFile(w.path)
	if err != nil {
		return err
	}

	changed := w.target.Apply(values)
	w.reloads.Add(1)

	log.Debug().
		Str("path", w.path).
		Int("changed", len(changed)).
		Msg("state file reloaded")
	return nil
}

func (w *Watcher) eventLoop(ctx context.Context, fsw *fsnotify.Watcher, debouncer *Debouncer, done chan struct{}) {
	defer close(done)

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				debouncer.Add(w.path)
			} else if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				log.Debug().Str("path", w.path).Msg("state file removed, keeping last values")
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			log.Warn().Err(err).Msg("state watcher error")
		}
	}
}

func (w *Watcher) handleDebounced(string) {
	if err := w.Reload(); err != nil {
		log.Warn().Err(err).Str("path", w.path).Msg("state reload failed")
	}
}
