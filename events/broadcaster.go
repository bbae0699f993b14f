// Package events implements the Server-Sent Events plumbing behind the admin
// dashboard: a broadcaster that fans notifications out to every subscribed
// client. Subscribers that stop draining their channel are skipped rather
// than allowed to block the publisher.
package events

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Event is a single Server-Sent Event.
type Event struct {
	// Name is the SSE event type, e.g. "application.submitted".
	Name string
	// Data is the payload written on the data: line.
	Data string
}

// NewJSONEvent builds an Event whose payload is the JSON encoding of v.
func NewJSONEvent(name string, v interface{}) (Event, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return Event{}, err
	}
	return Event{Name: name, Data: string(data)}, nil
}

// subscriber holds the delivery channel for one connected client.
type subscriber struct {
	ch chan Event
}

// Broadcaster manages SSE subscribers and fans events out to all of them.
type Broadcaster struct {
	mu          sync.RWMutex
	subscribers map[string]*subscriber
}

// NewBroadcaster creates an empty Broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		subscribers: make(map[string]*subscriber),
	}
}

// Subscribe registers a new client and returns its ID together with the
// channel events will be delivered on. The channel is buffered; a client
// that falls more than the buffer behind starts missing events.
func (b *Broadcaster) Subscribe() (string, <-chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := uuid.New().String()
	sub := &subscriber{ch: make(chan Event, 32)}
	b.subscribers[id] = sub
	return id, sub.ch
}

// Unsubscribe removes a client and closes its channel.
func (b *Broadcaster) Unsubscribe(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if sub, ok := b.subscribers[id]; ok {
		close(sub.ch)
		delete(b.subscribers, id)
	}
}

// Publish delivers the event to every subscriber. A subscriber whose buffer
// is full is skipped; delivery is best-effort.
func (b *Broadcaster) Publish(event Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, sub := range b.subscribers {
		select {
		case sub.ch <- event:
		default:
			// Slow client; drop this event for them.
		}
	}
}

// SubscriberCount reports the number of connected clients.
func (b *Broadcaster) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}

// Heartbeat returns a comment-only keepalive event carrying the given time.
func Heartbeat(at time.Time) Event {
	return Event{Name: "heartbeat", Data: at.UTC().Format(time.RFC3339)}
}
