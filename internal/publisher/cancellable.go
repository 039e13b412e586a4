package publisher

import (
	"runtime"

	"github.com/brianly1003/observe/internal/domain/demand"
	"github.com/brianly1003/observe/internal/domain/ports"
	"github.com/brianly1003/observe/internal/sync"
)

// Cancellable is a cancellation token that also cancels its target once the
// token itself becomes unreachable. Hold on to it for as long as the work
// should continue.
type Cancellable struct {
	target  ports.Cancellable
	once    sync.Once
	cleanup runtime.Cleanup
}

// NewCancellable wraps target so that it is cancelled either by an explicit
// Cancel or when the returned token is garbage collected.
func NewCancellable(target ports.Cancellable) *Cancellable {
	c := &Cancellable{target: target}
	c.cleanup = runtime.AddCleanup(c, func(t ports.Cancellable) {
		t.Cancel()
	}, target)
	return c
}

// Cancel cancels the target. Further calls are no-ops.
func (c *Cancellable) Cancel() {
	c.once.Do(func() {
		c.cleanup.Stop()
		c.target.Cancel()
	})
}

// sink is a closure subscriber that asks for unlimited demand as soon as it
// is subscribed.
type sink struct {
	receive func()

	mu        sync.Mutex
	sub       ports.Subscription
	cancelled bool
}

func (k *sink) OnSubscribe(sub ports.Subscription) {
	k.mu.Lock()
	if k.cancelled {
		k.mu.Unlock()
		sub.Cancel()
		return
	}
	k.sub = sub
	k.mu.Unlock()

	sub.Request(demand.Unlimited)
}

func (k *sink) OnWillChange() {
	k.receive()
}

func (k *sink) Cancel() {
	k.mu.Lock()
	k.cancelled = true
	sub := k.sub
	k.sub = nil
	k.mu.Unlock()

	if sub != nil {
		sub.Cancel()
	}
}

// Sink subscribes receive to p with unlimited demand. Delivery stops when the
// returned token is cancelled or dropped.
//
//	token := publisher.Sink(obj.WillChange(), func() { dirty.Store(true) })
//	defer token.Cancel()
func Sink(p ports.WillChangePublisher, receive func()) *Cancellable {
	k := &sink{receive: receive}
	p.Subscribe(k)
	return NewCancellable(k)
}
