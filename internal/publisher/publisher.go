// Package publisher implements the multicast will-change publisher that
// observable objects use to announce upcoming mutations.
//
// A Publisher keeps a registry of conduits, one per subscriber. Send takes a
// snapshot of the registry under the publisher lock and forwards outside of
// it, so subscribers may subscribe, cancel or even Send again from inside
// their callback without deadlocking.
package publisher

import (
	"github.com/brianly1003/observe/internal/domain/ports"
	"github.com/brianly1003/observe/internal/sync"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Conduit is the publisher's view of one subscriber connection.
type Conduit interface {
	// ID returns the identity key under which the conduit is registered.
	ID() uuid.UUID

	// Forward delivers one notification to the subscriber if the
	// connection is eligible to receive it.
	Forward()
}

// Publisher broadcasts will-change notifications to its subscribers.
// The zero value is not usable; create one with New.
type Publisher struct {
	mu       sync.Mutex
	conduits map[uuid.UUID]Conduit
}

var _ ports.WillChangePublisher = (*Publisher)(nil)

// New creates a publisher with no subscribers.
func New() *Publisher {
	return &Publisher{
		conduits: make(map[uuid.UUID]Conduit),
	}
}

// Subscribe registers sub and then hands it its subscription. The
// subscriber receives nothing until it calls Request on that subscription.
func (p *Publisher) Subscribe(sub ports.Subscriber) {
	s := newSubscription(p, sub)

	p.mu.Lock()
	p.conduits[s.ID()] = s
	count := len(p.conduits)
	p.mu.Unlock()

	log.Trace().
		Str("subscription_id", s.ID().String()).
		Int("subscribers", count).
		Msg("subscriber registered")

	sub.OnSubscribe(s)
}

// Send notifies every subscriber in a snapshot of the registry taken at call
// time. Each conduit rechecks its own state before delivering.
func (p *Publisher) Send() {
	p.mu.Lock()
	snapshot := make([]Conduit, 0, len(p.conduits))
	for _, c := range p.conduits {
		snapshot = append(snapshot, c)
	}
	p.mu.Unlock()

	for _, c := range snapshot {
		c.Forward()
	}

	log.Trace().Int("recipients", len(snapshot)).Msg("will-change sent")
}

// NotifyAll is Send under the name owning objects call right before they
// mutate observed state.
func (p *Publisher) NotifyAll() {
	p.Send()
}

// SubscriberCount returns the number of registered conduits.
func (p *Publisher) SubscriberCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.conduits)
}

// remove drops c from the registry. Removing an absent conduit is a no-op.
func (p *Publisher) remove(c Conduit) {
	p.mu.Lock()
	_, ok := p.conduits[c.ID()]
	delete(p.conduits, c.ID())
	p.mu.Unlock()

	if ok {
		log.Trace().Str("subscription_id", c.ID().String()).Msg("subscription removed")
	}
}
