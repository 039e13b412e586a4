// Package events defines the event envelopes observe sends to clients.
package events

import (
	"encoding/json"
	"time"
)

// EventType represents the type of event.
type EventType string

const (
	// EventTypeWillChange announces that an observed object is about to change.
	EventTypeWillChange EventType = "will_change"

	// EventTypeSubscribed confirms a client's subscription.
	EventTypeSubscribed EventType = "subscribed"

	// EventTypeHeartbeat is the application-level keepalive.
	EventTypeHeartbeat EventType = "heartbeat"

	// EventTypeError reports a request failure.
	EventTypeError EventType = "error"
)

// Event is the base interface for all events.
type Event interface {
	// Type returns the event type.
	Type() EventType

	// Timestamp returns when the event occurred.
	Timestamp() time.Time

	// ToJSON serializes the event to JSON.
	ToJSON() ([]byte, error)
}

// BaseEvent contains common fields for all events.
type BaseEvent struct {
	EventType EventType   `json:"event"`
	EventTime time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// Type returns the event type.
func (e *BaseEvent) Type() EventType {
	return e.EventType
}

// Timestamp returns when the event occurred.
func (e *BaseEvent) Timestamp() time.Time {
	return e.EventTime
}

// ToJSON serializes the event to JSON.
func (e *BaseEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// NewEvent creates a new base event with the given type and payload.
func NewEvent(eventType EventType, payload interface{}) *BaseEvent {
	return &BaseEvent{
		EventType: eventType,
		EventTime: time.Now().UTC(),
		Payload:   payload,
	}
}

// WillChangePayload is the payload of will_change events.
type WillChangePayload struct {
	// Scope is the property id the client subscribed to, or empty for
	// the whole object.
	Scope string `json:"scope,omitempty"`
	Seq   int64  `json:"seq"`
}

// NewWillChangeEvent creates a will_change event.
func NewWillChangeEvent(scope string, seq int64) *BaseEvent {
	return NewEvent(EventTypeWillChange, WillChangePayload{Scope: scope, Seq: seq})
}

// SubscribedPayload is the payload of subscribed events.
type SubscribedPayload struct {
	ClientID string `json:"client_id"`
	Scope    string `json:"scope,omitempty"`
}

// NewSubscribedEvent creates a subscribed event.
func NewSubscribedEvent(clientID, scope string) *BaseEvent {
	return NewEvent(EventTypeSubscribed, SubscribedPayload{ClientID: clientID, Scope: scope})
}

// HeartbeatPayload is the payload of heartbeat events.
type HeartbeatPayload struct {
	Seq           int64 `json:"seq"`
	Subscribers   int   `json:"subscribers"`
	UptimeSeconds int64 `json:"uptime_seconds"`
}

// NewHeartbeatEvent creates a heartbeat event.
func NewHeartbeatEvent(seq int64, subscribers int, uptimeSeconds int64) *BaseEvent {
	return NewEvent(EventTypeHeartbeat, HeartbeatPayload{
		Seq:           seq,
		Subscribers:   subscribers,
		UptimeSeconds: uptimeSeconds,
	})
}

// ErrorPayload is the payload of error events.
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewErrorEvent creates an error event.
func NewErrorEvent(code, message string) *BaseEvent {
	return NewEvent(EventTypeError, ErrorPayload{Code: code, Message: message})
}
