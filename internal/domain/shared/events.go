package shared

import (
	"errors"
	"sync"
	"time"
)

// DomainEvent represents an event that has occurred in the domain
type DomainEvent interface {
	EventName() string
	OccurredAt() time.Time
}

// EventDispatcher dispatches domain events to handlers
type EventDispatcher interface {
	Dispatch(event DomainEvent) error
	Register(eventName string, handler EventHandler)
}

// EventHandler handles domain events
type EventHandler func(event DomainEvent) error

// AggregateRoot is the base type for aggregate roots
type AggregateRoot struct {
	events []DomainEvent
}

// AddEvent adds a domain event to be dispatched
func (a *AggregateRoot) AddEvent(event DomainEvent) {
	a.events = append(a.events, event)
}

// Events returns and clears pending domain events
func (a *AggregateRoot) Events() []DomainEvent {
	events := a.events
	a.events = nil
	return events
}

// SyncDispatcher runs handlers inline, in registration order
type SyncDispatcher struct {
	mu       sync.RWMutex
	handlers map[string][]EventHandler
}

// NewSyncDispatcher creates an empty dispatcher
func NewSyncDispatcher() *SyncDispatcher {
	return &SyncDispatcher{handlers: make(map[string][]EventHandler)}
}

// Register adds a handler for an event name
func (d *SyncDispatcher) Register(eventName string, handler EventHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[eventName] = append(d.handlers[eventName], handler)
}

// Dispatch calls every handler for the event. All handlers run; their
// errors are joined.
func (d *SyncDispatcher) Dispatch(event DomainEvent) error {
	d.mu.RLock()
	handlers := append([]EventHandler{}, d.handlers[event.EventName()]...)
	d.mu.RUnlock()

	var errs []error
	for _, h := range handlers {
		if err := h(event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
