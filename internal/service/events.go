package service

import (
	"sync"

	"github.com/google/uuid"
)

// EventType defines the type of event
type EventType string

const (
	EventPostCreated  EventType = "post_created"
	EventPostDeleted  EventType = "post_deleted"
	EventTagCreated   EventType = "tag_created"
	EventTagDeleted   EventType = "tag_deleted"
	EventPostTagged   EventType = "post_tagged"
	EventPostUntagged EventType = "post_untagged"
)

// Event represents a change that occurred in the system
type Event struct {
	ID      string      `json:"id"`
	Type    EventType   `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// EventBus allows publishing and subscribing to events. Subscribers
// come and go with SSE connections, so the subscriber list is guarded.
type EventBus struct {
	mu          sync.RWMutex
	subscribers []chan<- Event
}

// NewEventBus creates a new event bus
func NewEventBus() *EventBus {
	return &EventBus{
		subscribers: make([]chan<- Event, 0),
	}
}

// Subscribe adds a subscriber to receive events
func (eb *EventBus) Subscribe(ch chan<- Event) {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	eb.subscribers = append(eb.subscribers, ch)
}

// Unsubscribe removes a subscriber. The channel is not closed.
func (eb *EventBus) Unsubscribe(ch chan<- Event) {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	for i, sub := range eb.subscribers {
		if sub == ch {
			eb.subscribers = append(eb.subscribers[:i], eb.subscribers[i+1:]...)
			return
		}
	}
}

// Publish assigns the event an ID and sends it to all subscribers.
// Slow subscribers are skipped rather than blocked on.
func (eb *EventBus) Publish(event Event) {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	eb.mu.RLock()
	defer eb.mu.RUnlock()
	for _, ch := range eb.subscribers {
		select {
		case ch <- event:
		default:
			// Subscriber is slow, skip
		}
	}
}
