package events

import "time"

// DomainEvent is a fact recorded by an aggregate during a state change.
type DomainEvent interface {
	EventName() string
	AggregateID() string
	OccurredAt() time.Time
}

// EventRecorder collects pending events on an aggregate until the application
// layer drains them into the outbox. Embed by value.
type EventRecorder struct {
	pending []DomainEvent
}

// Record appends an event to the pending list.
func (r *EventRecorder) Record(ev DomainEvent) {
	r.pending = append(r.pending, ev)
}

// PendingEvents returns the events recorded since the last ClearEvents call.
func (r *EventRecorder) PendingEvents() []DomainEvent {
	out := make([]DomainEvent, len(r.pending))
	copy(out, r.pending)
	return out
}

// ClearEvents drops all pending events.
func (r *EventRecorder) ClearEvents() {
	r.pending = nil
}
