package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"staybook/internal/domain/shared/events"
)

var ErrEncoderRequired = errors.New("outbox: event encoder required")

// EventRecord is a domain event serialised for delivery.
type EventRecord struct {
	ID         string
	Name       string
	Aggregate  string
	Payload    []byte
	Headers    map[string]string
	OccurredAt time.Time
}

// Outbox buffers event records inside the current transaction; Flush hands
// them to the delivery side after commit.
type Outbox interface {
	Add(ctx context.Context, record EventRecord) error
	Flush(ctx context.Context) error
}

// EventEncoder turns a domain event into a transportable record.
type EventEncoder interface {
	Encode(ev events.DomainEvent) (EventRecord, error)
}

// JSONEventEncoder marshals the event struct as-is.
type JSONEventEncoder struct{}

func (JSONEventEncoder) Encode(ev events.DomainEvent) (EventRecord, error) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return EventRecord{}, err
	}
	return EventRecord{
		ID:         uuid.NewString(),
		Name:       ev.EventName(),
		Aggregate:  ev.AggregateID(),
		Payload:    payload,
		OccurredAt: ev.OccurredAt(),
	}, nil
}

// RecordDomainEvents encodes and stores a batch of pending aggregate events.
func RecordDomainEvents(ctx context.Context, box Outbox, enc EventEncoder, evs []events.DomainEvent) error {
	if box == nil || len(evs) == 0 {
		return nil
	}
	if enc == nil {
		return ErrEncoderRequired
	}
	for _, ev := range evs {
		record, err := enc.Encode(ev)
		if err != nil {
			return err
		}
		if err := box.Add(ctx, record); err != nil {
			return err
		}
	}
	return nil
}
