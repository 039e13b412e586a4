package websocket

import (
	"sync/atomic"

	"github.com/brianly1003/observe/internal/domain/demand"
	"github.com/brianly1003/observe/internal/domain/events"
	"github.com/brianly1003/observe/internal/domain/ports"
	"github.com/brianly1003/observe/internal/sync"
	"github.com/rs/zerolog/log"
)

// ClientSubscriber adapts a WebSocket client to ports.Subscriber. Every
// delivery becomes one will_change event on the wire.
type ClientSubscriber struct {
	client *Client
	seq    atomic.Int64

	mu        sync.Mutex
	sub       ports.Subscription
	cancelled bool
}

// NewClientSubscriber creates a subscriber from a WebSocket client.
func NewClientSubscriber(client *Client) *ClientSubscriber {
	return &ClientSubscriber{client: client}
}

// OnSubscribe stores the subscription and opens unlimited demand. A
// subscription arriving after Cancel is cancelled straight away.
func (s *ClientSubscriber) OnSubscribe(sub ports.Subscription) {
	s.mu.Lock()
	if s.cancelled || s.client.IsClosed() {
		s.mu.Unlock()
		sub.Cancel()
		return
	}
	s.sub = sub
	s.mu.Unlock()

	sub.Request(demand.Unlimited)
}

// OnWillChange queues a will_change event for the client. An event the
// client has not been sent yet is replaced, so seq may skip values.
func (s *ClientSubscriber) OnWillChange() {
	seq := s.seq.Add(1)
	data, err := events.NewWillChangeEvent(s.client.Scope(), seq).ToJSON()
	if err != nil {
		log.Warn().Err(err).Str("client_id", s.client.ID()).Msg("failed to serialize will_change")
		return
	}
	s.client.SendLatest(data)
}

// Delivered returns the number of notifications forwarded to the client.
func (s *ClientSubscriber) Delivered() int64 {
	return s.seq.Load()
}

// Cancel cancels the underlying subscription. Safe to call more than once.
func (s *ClientSubscriber) Cancel() {
	s.mu.Lock()
	if s.cancelled {
		s.mu.Unlock()
		return
	}
	s.cancelled = true
	sub := s.sub
	s.mu.Unlock()

	if sub != nil {
		sub.Cancel()
	}
}

var _ ports.Subscriber = (*ClientSubscriber)(nil)
