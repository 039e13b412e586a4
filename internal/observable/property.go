package observable

import (
	"github.com/brianly1003/observe/internal/sync"
)

// Property is a value whose mutations are announced through its owner.
type Property[T any] struct {
	owner *Object
	id    string

	// writeMu serializes writers across the notify-then-store sequence.
	// It is reentrant so a subscriber may write the property from inside
	// its own will-change callback.
	writeMu sync.RecursiveMutex

	mu    sync.RWMutex
	value T
}

// NewProperty registers id on owner and returns a property holding initial.
func NewProperty[T any](owner *Object, id string, initial T) (*Property[T], error) {
	if err := owner.Register(id); err != nil {
		return nil, err
	}
	return &Property[T]{
		owner: owner,
		id:    id,
		value: initial,
	}, nil
}

// MustProperty is NewProperty for use in constructors with fixed ids.
// It panics if the id is empty or already registered.
func MustProperty[T any](owner *Object, id string, initial T) *Property[T] {
	p, err := NewProperty(owner, id, initial)
	if err != nil {
		panic(err)
	}
	return p
}

// ID returns the property id.
func (p *Property[T]) ID() string {
	return p.id
}

// Get returns the current value.
func (p *Property[T]) Get() T {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.value
}

// Set announces the change and then stores v. Subscribers notified by Set
// still observe the previous value.
func (p *Property[T]) Set(v T) {
	p.writeMu.Lock()
	defer p.writeMu.Unlock()

	p.owner.NotifyWillChange(p.id)

	p.mu.Lock()
	p.value = v
	p.mu.Unlock()
}

// Update announces the change and then replaces the value with fn applied
// to it. fn runs with the property locked and must not call back into p.
func (p *Property[T]) Update(fn func(T) T) {
	p.writeMu.Lock()
	defer p.writeMu.Unlock()

	p.owner.NotifyWillChange(p.id)

	p.mu.Lock()
	p.value = fn(p.value)
	p.mu.Unlock()
}

// CompareAndSet stores v only if equal reports it differs from the current
// value, announcing the change first. The comparison and the store happen
// without another writer in between. It reports whether v was stored.
func (p *Property[T]) CompareAndSet(v T, equal func(current, next T) bool) bool {
	p.writeMu.Lock()
	defer p.writeMu.Unlock()

	if equal(p.Get(), v) {
		return false
	}

	p.owner.NotifyWillChange(p.id)

	p.mu.Lock()
	p.value = v
	p.mu.Unlock()
	return true
}
