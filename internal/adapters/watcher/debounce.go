package watcher

import (
	"time"

	"github.com/brianly1003/observe/internal/sync"
)

// pendingFire is a scheduled callback for one path.
type pendingFire struct {
	path  string
	timer *time.Timer
}

// Debouncer coalesces rapid file system events per path. The callback runs
// once the path has been quiet for the configured window.
type Debouncer struct {
	window   time.Duration
	callback func(path string)

	mu      sync.Mutex
	pending map[string]*pendingFire
	stopped bool
}

// NewDebouncer creates a new debouncer with the given window and callback.
func NewDebouncer(window time.Duration, callback func(path string)) *Debouncer {
	return &Debouncer{
		window:   window,
		callback: callback,
		pending:  make(map[string]*pendingFire),
	}
}

// Add schedules the callback for path, pushing back any pending one.
func (d *Debouncer) Add(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}

	if existing, ok := d.pending[path]; ok {
		existing.timer.Stop()
		existing.timer = time.AfterFunc(d.window, func() {
			d.fire(path)
		})
		return
	}

	d.pending[path] = &pendingFire{
		path: path,
		timer: time.AfterFunc(d.window, func() {
			d.fire(path)
		}),
	}
}

// fire executes the callback for a path.
func (d *Debouncer) fire(path string) {
	d.mu.Lock()
	p, ok := d.pending[path]
	if !ok {
		d.mu.Unlock()
		return
	}
	delete(d.pending, path)
	stopped := d.stopped
	d.mu.Unlock()

	if !stopped && d.callback != nil {
		d.callback(p.path)
	}
}

// Pending returns the number of paths waiting to fire.
func (d *Debouncer) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}

// Stop cancels all pending callbacks. Add is a no-op afterwards.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	for _, p := range d.pending {
		p.timer.Stop()
	}
	d.pending = make(map[string]*pendingFire)
}
