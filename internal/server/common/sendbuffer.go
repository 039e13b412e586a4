package common

import (
	"errors"

	"github.com/brianly1003/observe/internal/sync"
	"github.com/rs/zerolog/log"
)

// ErrBufferFull is returned when the send buffer is full.
var ErrBufferFull = errors.New("send buffer full")

// ErrClosed is returned when operations are attempted on a closed resource.
var ErrClosed = errors.New("closed")

// SendBuffer is the outbound queue of one connection. It holds two kinds of
// message: ordinary ones, queued in order up to a fixed capacity, and a
// single coalescing slot in which a newer message replaces an unsent older
// one. Will-change notifications go through the slot, so a slow reader
// receives the latest one instead of a backlog.
//
// Writers never block. The reader waits on Ready and then calls Drain.
type SendBuffer struct {
	id       string
	capacity int
	ready    chan struct{}
	done     chan struct{}

	mu        sync.Mutex
	queue     [][]byte
	latest    []byte
	closed    bool
	dropped   int
	coalesced int
}

// NewSendBuffer creates a send buffer holding at most capacity ordinary
// messages.
func NewSendBuffer(id string, capacity int) *SendBuffer {
	return &SendBuffer{
		id:       id,
		capacity: capacity,
		ready:    make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
}

// Send queues data. Returns ErrBufferFull if the queue is at capacity, or
// ErrClosed if the buffer has been closed.
func (b *SendBuffer) Send(data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrClosed
	}
	if len(b.queue) >= b.capacity {
		b.dropped++
		log.Warn().Str("id", b.id).Int("dropped", b.dropped).Msg("send buffer full, dropping message")
		return ErrBufferFull
	}

	b.queue = append(b.queue, data)
	b.signal()
	return nil
}

// SendLatest puts data in the coalescing slot, replacing a message that has
// not been drained yet. Returns ErrClosed if the buffer has been closed.
func (b *SendBuffer) SendLatest(data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrClosed
	}
	if b.latest != nil {
		b.coalesced++
		log.Trace().Str("id", b.id).Int("coalesced", b.coalesced).Msg("replaced pending message")
	}

	b.latest = data
	b.signal()
	return nil
}

// signal wakes the reader. Caller holds b.mu.
func (b *SendBuffer) signal() {
	select {
	case b.ready <- struct{}{}:
	default:
	}
}

// Ready returns a channel that receives when there is something to drain.
func (b *SendBuffer) Ready() <-chan struct{} {
	return b.ready
}

// Drain removes and returns every pending message: the ordinary ones in
// order, then the coalescing slot.
func (b *SendBuffer) Drain() [][]byte {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := b.queue
	b.queue = nil
	if b.latest != nil {
		out = append(out, b.latest)
		b.latest = nil
	}
	return out
}

// Close closes the send buffer. It is safe to call more than once.
func (b *SendBuffer) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	close(b.done)
}

// Done returns a channel that's closed when the buffer is closed.
func (b *SendBuffer) Done() <-chan struct{} {
	return b.done
}

// IsClosed returns true if the buffer is closed.
func (b *SendBuffer) IsClosed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closed
}

// Dropped returns how many ordinary messages were discarded because the
// queue was full.
func (b *SendBuffer) Dropped() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dropped
}

// Coalesced returns how many slot messages were replaced before being sent.
func (b *SendBuffer) Coalesced() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.coalesced
}
