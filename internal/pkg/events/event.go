package events

import (
	"context"
	"time"
)

// Event is a domain notification delivered to subscribers of its topic.
type Event struct {
	Topic      string      `json:"topic"`
	Key        string      `json:"key"` // usually the affected employee
	Payload    interface{} `json:"payload"`
	OccurredAt time.Time   `json:"occurred_at"`
}

// Publisher hands events to the notification consumer.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Multi fans an event out to several publishers and returns the first error.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, event Event) error {
	var firstErr error
	for _, p := range m {
		if err := p.Publish(ctx, event); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
