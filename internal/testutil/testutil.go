// Package testutil provides shared test utilities and mocks for observe tests.
package testutil

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/brianly1003/observe/internal/domain/demand"
	"github.com/brianly1003/observe/internal/domain/ports"
)

// MockSubscriber implements ports.Subscriber for testing.
//
// By default it stores the subscription and requests nothing, so tests decide
// when delivery starts. Use RequestOnSubscribe to activate immediately.
type MockSubscriber struct {
	id string

	mu           sync.Mutex
	sub          ports.Subscription
	subscribed   int
	received     int
	onSubscribe  *demand.Demand
	onWillChange func(sub ports.Subscription)
}

// NewMockSubscriber creates a new mock subscriber.
func NewMockSubscriber(id string) *MockSubscriber {
	return &MockSubscriber{id: id}
}

// ID returns the subscriber ID.
func (m *MockSubscriber) ID() string {
	return m.id
}

// RequestOnSubscribe makes the subscriber request d as soon as it is subscribed.
func (m *MockSubscriber) RequestOnSubscribe(d demand.Demand) *MockSubscriber {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onSubscribe = &d
	return m
}

// SetOnWillChange installs a hook that runs on every delivery, after the
// delivery has been counted. The hook runs without the mock's lock held.
func (m *MockSubscriber) SetOnWillChange(fn func(sub ports.Subscription)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onWillChange = fn
}

// OnSubscribe records the subscription.
func (m *MockSubscriber) OnSubscribe(sub ports.Subscription) {
	m.mu.Lock()
	m.sub = sub
	m.subscribed++
	d := m.onSubscribe
	m.mu.Unlock()

	if d != nil {
		sub.Request(*d)
	}
}

// OnWillChange counts the delivery.
func (m *MockSubscriber) OnWillChange() {
	m.mu.Lock()
	m.received++
	fn := m.onWillChange
	sub := m.sub
	m.mu.Unlock()

	if fn != nil {
		fn(sub)
	}
}

// Subscription returns the last subscription handed to the subscriber.
func (m *MockSubscriber) Subscription() ports.Subscription {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sub
}

// Request requests d on the stored subscription.
func (m *MockSubscriber) Request(d demand.Demand) {
	if sub := m.Subscription(); sub != nil {
		sub.Request(d)
	}
}

// Cancel cancels the stored subscription.
func (m *MockSubscriber) Cancel() {
	if sub := m.Subscription(); sub != nil {
		sub.Cancel()
	}
}

// Received returns the number of notifications delivered.
func (m *MockSubscriber) Received() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.received
}

// SubscribeCount returns how many times OnSubscribe was called.
func (m *MockSubscriber) SubscribeCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.subscribed
}

var _ ports.Subscriber = (*MockSubscriber)(nil)

// MockPublisher implements ports.WillChangePublisher for testing. Subscribe
// records the subscriber without handing it a subscription; tests call
// Attach to do that at a time of their choosing.
type MockPublisher struct {
	mu          sync.Mutex
	subscribers []ports.Subscriber
	sends       int
}

// NewMockPublisher creates a new mock publisher.
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

// Subscribe records sub.
func (m *MockPublisher) Subscribe(sub ports.Subscriber) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subscribers = append(m.subscribers, sub)
}

// Send counts the call.
func (m *MockPublisher) Send() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sends++
}

// SubscriberCount returns the number of recorded subscribers.
func (m *MockPublisher) SubscriberCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.subscribers)
}

// Sends returns how many times Send was called.
func (m *MockPublisher) Sends() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sends
}

// Attach hands sub to the i-th recorded subscriber.
func (m *MockPublisher) Attach(i int, sub ports.Subscription) {
	m.mu.Lock()
	s := m.subscribers[i]
	m.mu.Unlock()
	s.OnSubscribe(sub)
}

var _ ports.WillChangePublisher = (*MockPublisher)(nil)

// MockSubscription implements ports.Subscription for testing.
type MockSubscription struct {
	mu        sync.Mutex
	requests  []demand.Demand
	cancelled int
}

// Request records d.
func (m *MockSubscription) Request(d demand.Demand) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, d)
}

// Cancel counts the call.
func (m *MockSubscription) Cancel() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cancelled++
}

// Requests returns the recorded demand requests.
func (m *MockSubscription) Requests() []demand.Demand {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]demand.Demand, len(m.requests))
	copy(out, m.requests)
	return out
}

// Cancelled returns how many times Cancel was called.
func (m *MockSubscription) Cancelled() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cancelled
}

var _ ports.Subscription = (*MockSubscription)(nil)

// Eventually polls cond until it holds or timeout elapses.
func Eventually(t *testing.T, timeout time.Duration, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	if !cond() {
		t.Fatalf("%s: condition not met within %v", msg, timeout)
	}
}

// AssertEqual is a simple equality assertion helper.
func AssertEqual(t *testing.T, expected, actual interface{}, msg string) {
	t.Helper()
	if expected != actual {
		t.Errorf("%s: expected %v, got %v", msg, expected, actual)
	}
}

// AssertTrue asserts that a condition is true.
func AssertTrue(t *testing.T, condition bool, msg string) {
	t.Helper()
	if !condition {
		t.Errorf("%s: expected true, got false", msg)
	}
}

// AssertFalse asserts that a condition is false.
func AssertFalse(t *testing.T, condition bool, msg string) {
	t.Helper()
	if condition {
		t.Errorf("%s: expected false, got true", msg)
	}
}

// AssertNil asserts that a value is nil.
func AssertNil(t *testing.T, value interface{}, msg string) {
	t.Helper()
	if value != nil {
		t.Errorf("%s: expected nil, got %v", msg, value)
	}
}

// AssertNoError asserts that an error is nil.
func AssertNoError(t *testing.T, err error, msg string) {
	t.Helper()
	if err != nil {
		t.Errorf("%s: unexpected error: %v", msg, err)
	}
}

// AssertError asserts that an error is not nil.
func AssertError(t *testing.T, err error, msg string) {
	t.Helper()
	if err == nil {
		t.Errorf("%s: expected error, got nil", msg)
	}
}

// AssertContains checks if a string contains a substring.
func AssertContains(t *testing.T, s, substr, msg string) {
	t.Helper()
	if !strings.Contains(s, substr) {
		t.Errorf("%s: string %q does not contain %q", msg, s, substr)
	}
}
