package shared

import "context"

// EventHandler consumes domain events published after a commit.
type EventHandler interface {
	Handle(ctx context.Context, event DomainEvent) error
	// EventTypes lists the event types the handler wants. Empty means all.
	EventTypes() []string
}

// EventBus fans published events out to subscribed handlers.
type EventBus interface {
	EventPublisher
	// Subscribe registers the handler for the given event types, or for the
	// handler's own EventTypes when none are given.
	Subscribe(handler EventHandler, eventTypes ...string)
	Unsubscribe(handler EventHandler)
}
