package kafka

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/IBM/sarama"
)

// cloudEvent is the envelope the outbox worker publishes.
type cloudEvent struct {
	ID     string         `json:"id"`
	Type   string         `json:"type"`
	Source string         `json:"source"`
	Time   string         `json:"time"`
	Data   map[string]any `json:"data"`
}

// AuditHandler logs booking lifecycle events consumed back from the broker.
// It gives operators a tail of every settled checkout and refund without
// touching the write path.
type AuditHandler struct {
	Logger *slog.Logger
}

func (h AuditHandler) Handle(ctx context.Context, msg *sarama.ConsumerMessage) error {
	var evt cloudEvent
	if err := json.Unmarshal(msg.Value, &evt); err != nil {
		h.Logger.Warn("audit: undecodable event",
			slog.String("topic", msg.Topic),
			slog.Int64("offset", msg.Offset),
			slog.String("error", err.Error()))
		return nil
	}
	attrs := []any{
		slog.String("event_id", evt.ID),
		slog.String("type", evt.Type),
		slog.String("topic", msg.Topic),
	}
	if id, ok := evt.Data["BookingID"].(string); ok {
		attrs = append(attrs, slog.String("booking_id", id))
	}
	if refund, ok := evt.Data["Refund"].(map[string]any); ok {
		if amount, ok := refund["Amount"].(float64); ok {
			attrs = append(attrs, slog.Int64("refund_amount", int64(amount)))
		}
	}
	h.Logger.Info("audit: booking event", attrs...)
	return nil
}

var _ MessageHandler = AuditHandler{}
