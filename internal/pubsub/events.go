// Package pubsub provides a generic publish/subscribe event system.
//
// The board uses it for three streams: debug log lines, watcher
// notifications and settled remote operations (which feed the journal).
package pubsub

import (
	"context"
	"time"
)

// EventType says what happened to an event's payload.
type EventType string

const (
	// UpdatedEvent marks an operation that GitLab accepted.
	UpdatedEvent EventType = "updated"
	// FailedEvent marks an operation that was attempted and rejected.
	FailedEvent EventType = "failed"
	// ChangedEvent marks a watched file that was written or replaced.
	ChangedEvent EventType = "changed"
	// LoggedEvent carries one formatted debug log line.
	LoggedEvent EventType = "logged"
)

// Event is a published payload stamped with its type and publish time.
type Event[T any] struct {
	Type      EventType
	Payload   T
	Timestamp time.Time
}

// Subscriber hands out subscription channels that close with ctx.
type Subscriber[T any] interface {
	Subscribe(ctx context.Context) <-chan Event[T]
}

// Publisher fans a payload out to every current subscriber.
type Publisher[T any] interface {
	Publish(eventType EventType, payload T)
}
