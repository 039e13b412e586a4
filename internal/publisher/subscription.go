package publisher

import (
	"weak"

	"github.com/brianly1003/observe/internal/domain/demand"
	"github.com/brianly1003/observe/internal/domain/ports"
	"github.com/brianly1003/observe/internal/sync"
	"github.com/google/uuid"
)

// State is the lifecycle stage of a subscription.
type State int

const (
	// StateInitialized is a registered subscription that has not requested demand.
	StateInitialized State = iota
	// StateActive is a subscription that receives every Send.
	StateActive
	// StateTerminal is a cancelled subscription. It is absorbing.
	StateTerminal
)

func (s State) String() string {
	switch s {
	case StateInitialized:
		return "initialized"
	case StateActive:
		return "active"
	case StateTerminal:
		return "terminal"
	default:
		return "unknown"
	}
}

// subscription binds one subscriber to one publisher.
//
// mu guards state and requested. deliveryMu serializes calls into the
// subscriber; it is reentrant so the subscriber may call back into this
// subscription, or Send on the publisher, from inside OnWillChange.
// Lock order is deliveryMu before mu; mu is never held while calling out.
type subscription struct {
	id         uuid.UUID
	parent     weak.Pointer[Publisher]
	downstream ports.Subscriber

	mu        sync.Mutex
	state     State
	requested demand.Demand

	deliveryMu sync.RecursiveMutex
}

var (
	_ Conduit            = (*subscription)(nil)
	_ ports.Subscription = (*subscription)(nil)
)

func newSubscription(parent *Publisher, downstream ports.Subscriber) *subscription {
	return &subscription{
		id:         uuid.New(),
		parent:     weak.Make(parent),
		downstream: downstream,
	}
}

// ID returns the subscription's identity key.
func (s *subscription) ID() uuid.UUID {
	return s.id
}

// Request activates the subscription. Any amount, including zero, counts;
// demand is recorded but never consumed.
func (s *subscription) Request(d demand.Demand) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StateInitialized:
		s.state = StateActive
		s.requested = d
	case StateActive:
		s.requested = s.requested.Add(d)
	}
}

// Forward delivers one notification if the subscription is active.
func (s *subscription) Forward() {
	s.deliveryMu.Lock()
	defer s.deliveryMu.Unlock()

	s.mu.Lock()
	active := s.state == StateActive
	s.mu.Unlock()

	if !active {
		return
	}
	s.downstream.OnWillChange()
}

// Cancel moves the subscription to StateTerminal and detaches it from the
// publisher. Once Cancel returns no further notification reaches the
// subscriber, unless Cancel was called from inside that subscriber's own
// OnWillChange, in which case the current delivery completes first.
func (s *subscription) Cancel() {
	s.mu.Lock()
	first := s.state != StateTerminal
	s.state = StateTerminal
	s.mu.Unlock()

	// Wait for a delivery already running on another goroutine. A repeated
	// Cancel waits too, so every caller gets the same guarantee.
	s.deliveryMu.Lock()
	s.deliveryMu.Unlock()

	if !first {
		return
	}
	if p := s.parent.Value(); p != nil {
		p.remove(s)
	}
}

// State returns the current lifecycle stage.
func (s *subscription) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Demand returns the accumulated demand requested so far.
func (s *subscription) Demand() demand.Demand {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requested
}
