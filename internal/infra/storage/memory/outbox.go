package memory

import (
	"context"
	"sync"
	"time"

	appoutbox "staybook/internal/app/outbox"
	infraoutbox "staybook/internal/infra/outbox"
)

// Outbox keeps event records in memory. Add stages records inside the
// transaction; Flush publishes them to the delivery queue the worker claims
// from, which stands in for the post-commit visibility a real store gives.
type Outbox struct {
	mu      sync.Mutex
	staged  []appoutbox.EventRecord
	pending []*infraoutbox.EventDocument
}

func NewOutbox() *Outbox {
	return &Outbox{}
}

func (o *Outbox) Add(ctx context.Context, record appoutbox.EventRecord) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.staged = append(o.staged, record)
	return nil
}

func (o *Outbox) Flush(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, record := range o.staged {
		o.pending = append(o.pending, &infraoutbox.EventDocument{
			ID:          record.ID,
			Name:        record.Name,
			Payload:     record.Payload,
			OccurredAt:  record.OccurredAt,
			Aggregate:   record.Aggregate,
			Headers:     record.Headers,
			State:       infraoutbox.StateNew,
			NextAttempt: time.Now().UTC(),
		})
	}
	o.staged = nil
	return nil
}

// Claim hands the worker the oldest dispatchable document.
func (o *Outbox) Claim(ctx context.Context, workerID string) (*infraoutbox.EventDocument, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	now := time.Now().UTC()
	for _, doc := range o.pending {
		if doc.State != infraoutbox.StateNew && doc.State != infraoutbox.StateFailed {
			continue
		}
		if doc.NextAttempt.After(now) {
			continue
		}
		doc.State = infraoutbox.StateClaimed
		doc.ClaimedBy = workerID
		doc.ClaimedAt = now
		return doc, nil
	}
	return nil, nil
}

func (o *Outbox) MarkSent(ctx context.Context, id string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, doc := range o.pending {
		if doc.ID == id {
			doc.State = infraoutbox.StateSent
			doc.SentAt = time.Now().UTC()
			return nil
		}
	}
	return nil
}

func (o *Outbox) MarkFailed(ctx context.Context, id string, next time.Time, errMsg string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, doc := range o.pending {
		if doc.ID == id {
			doc.State = infraoutbox.StateFailed
			doc.NextAttempt = next
			doc.LastError = errMsg
			doc.Attempts++
			return nil
		}
	}
	return nil
}

var (
	_ appoutbox.Outbox  = (*Outbox)(nil)
	_ infraoutbox.Store = (*Outbox)(nil)
)
