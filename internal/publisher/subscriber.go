package publisher

import (
	"sync/atomic"

	"github.com/brianly1003/observe/internal/domain/demand"
	"github.com/brianly1003/observe/internal/domain/ports"
	"github.com/brianly1003/observe/internal/sync"
	"github.com/rs/zerolog/log"
)

// ChannelSubscriber turns notifications into channel signals.
//
// The channel has room for a single pending signal. A notification that
// arrives while one is already pending is folded into it, so a slow reader
// observes "something changed since you last looked" rather than a backlog.
type ChannelSubscriber struct {
	ch chan struct{}

	mu     sync.Mutex
	sub    ports.Subscription
	closed bool
}

// NewChannelSubscriber creates a channel subscriber.
func NewChannelSubscriber() *ChannelSubscriber {
	return &ChannelSubscriber{
		ch: make(chan struct{}, 1),
	}
}

// OnSubscribe stores the subscription and starts delivery.
func (s *ChannelSubscriber) OnSubscribe(sub ports.Subscription) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		sub.Cancel()
		return
	}
	s.sub = sub
	s.mu.Unlock()

	sub.Request(demand.Unlimited)
}

// OnWillChange signals the channel without blocking.
func (s *ChannelSubscriber) OnWillChange() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	select {
	case s.ch <- struct{}{}:
	default:
	}
}

// C returns the signal channel. It is closed by Close.
func (s *ChannelSubscriber) C() <-chan struct{} {
	return s.ch
}

// Close cancels the subscription and closes the channel.
func (s *ChannelSubscriber) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	close(s.ch)
	sub := s.sub
	s.sub = nil
	s.mu.Unlock()

	if sub != nil {
		sub.Cancel()
	}
}

// LogSubscriber logs every notification it receives. Useful for debugging
// which objects are churning.
type LogSubscriber struct {
	name   string
	demand demand.Demand
	count  atomic.Int64

	mu  sync.Mutex
	sub ports.Subscription
}

// NewLogSubscriber creates a log subscriber that requests d on subscribe.
func NewLogSubscriber(name string, d demand.Demand) *LogSubscriber {
	return &LogSubscriber{
		name:   name,
		demand: d,
	}
}

// OnSubscribe requests the configured demand.
func (s *LogSubscriber) OnSubscribe(sub ports.Subscription) {
	s.mu.Lock()
	s.sub = sub
	s.mu.Unlock()

	log.Debug().
		Str("subscriber", s.name).
		Str("demand", s.demand.String()).
		Msg("log subscriber attached")

	sub.Request(s.demand)
}

// OnWillChange logs the notification.
func (s *LogSubscriber) OnWillChange() {
	n := s.count.Add(1)
	log.Debug().
		Str("subscriber", s.name).
		Int64("seq", n).
		Msg("will change")
}

// Count returns the number of notifications received.
func (s *LogSubscriber) Count() int64 {
	return s.count.Load()
}

// Cancel cancels the underlying subscription, if any.
func (s *LogSubscriber) Cancel() {
	s.mu.Lock()
	sub := s.sub
	s.sub = nil
	s.mu.Unlock()

	if sub != nil {
		sub.Cancel()
	}
}
