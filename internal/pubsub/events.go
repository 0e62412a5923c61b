// Package pubsub provides a generic publish/subscribe event system.
package pubsub

import (
	"context"
	"time"
)

// EventType represents the type of event being published.
type EventType string

const (
	// ContentChangedEvent signals that a watched script file was modified.
	ContentChangedEvent EventType = "content_changed"
	// ContentRemovedEvent signals that a watched script file was removed or renamed.
	ContentRemovedEvent EventType = "content_removed"
	// ReadingEvent signals a reading controller state change.
	ReadingEvent EventType = "reading"
	// SettingsEvent signals a settings mutation.
	SettingsEvent EventType = "settings"
	// LogEntryEvent signals an emitted log entry.
	LogEntryEvent EventType = "log_entry"
)

// Event represents a published event with a typed payload.
type Event[T any] struct {
	Type      EventType
	Payload   T
	Timestamp time.Time
}

// Subscriber provides a subscription channel for events.
type Subscriber[T any] interface {
	Subscribe(ctx context.Context) <-chan Event[T]
}

// Publisher allows publishing events with a typed payload.
type Publisher[T any] interface {
	Publish(eventType EventType, payload T)
}
