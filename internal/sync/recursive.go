package sync

import (
	"sync/atomic"

	"github.com/petermattis/goid"
)

// RecursiveMutex is a mutex that the holding goroutine may lock again.
// Each Lock must be paired with an Unlock from the same goroutine; the
// underlying Mutex is released when the outermost Unlock returns.
//
// The zero value is an unlocked mutex.
type RecursiveMutex struct {
	mu    Mutex
	owner atomic.Int64
	depth int
}

// Lock acquires the mutex, or deepens the hold if the calling goroutine
// already owns it.
func (m *RecursiveMutex) Lock() {
	id := goid.Get()
	if m.owner.Load() == id {
		m.depth++
		return
	}
	m.mu.Lock()
	m.owner.Store(id)
	m.depth = 1
}

// Unlock releases one level of the hold. It panics when called by a
// goroutine that does not own the mutex.
func (m *RecursiveMutex) Unlock() {
	if m.owner.Load() != goid.Get() {
		panic("sync: unlock of RecursiveMutex by non-owner goroutine")
	}
	m.depth--
	if m.depth > 0 {
		return
	}
	m.owner.Store(0)
	m.mu.Unlock()
}

// Held reports whether the calling goroutine currently owns the mutex.
func (m *RecursiveMutex) Held() bool {
	return m.owner.Load() == goid.Get()
}
