package ports

import (
	"github.com/brianly1003/observe/internal/domain/demand"
)

// Subscription is the handle a subscriber receives when it subscribes.
type Subscription interface {
	// Request signals demand. The first call, of any amount, starts delivery.
	Request(d demand.Demand)

	// Cancel stops delivery and detaches the subscriber from its publisher.
	// Calling Cancel more than once is a no-op.
	Cancel()
}

// Subscriber receives will-change notifications.
type Subscriber interface {
	// OnSubscribe hands the subscriber its subscription. Nothing is delivered
	// until the subscriber calls Request on it.
	OnSubscribe(sub Subscription)

	// OnWillChange is called once per publisher Send while the
	// subscription is active.
	OnWillChange()
}

// Cancellable is anything whose work can be cancelled.
type Cancellable interface {
	Cancel()
}

// WillChangePublisher broadcasts "about to change" notifications.
type WillChangePublisher interface {
	// Subscribe attaches a subscriber and hands it a Subscription.
	Subscribe(sub Subscriber)

	// Send notifies every active subscriber.
	Send()

	// SubscriberCount returns the number of registered subscriptions.
	SubscriberCount() int
}
