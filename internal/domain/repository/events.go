package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// StreamEventType distinguishes lifecycle events on the event exchange.
type StreamEventType string

const (
	StreamStarted StreamEventType = "stream.started"
	StreamStopped StreamEventType = "stream.stopped"
)

// StreamEvent announces a liveness transition to downstream consumers
// (follower notification, analytics). Events are advisory: the registry
// record remains the source of truth for liveness.
type StreamEvent struct {
	EventID    uuid.UUID       `json:"event_id"`
	Type       StreamEventType `json:"type"`
	Creator    string          `json:"creator"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// NewStreamEvent builds an event for a creator's liveness transition.
func NewStreamEvent(t StreamEventType, creator string) StreamEvent {
	return StreamEvent{
		EventID:    uuid.New(),
		Type:       t,
		Creator:    creator,
		OccurredAt: time.Now(),
	}
}

// EventPublisher publishes stream lifecycle events.
// Implementations should be provided by the infrastructure layer (e.g., RabbitMQ).
type EventPublisher interface {
	// PublishStreamEvent sends a lifecycle event to the exchange.
	PublishStreamEvent(ctx context.Context, event StreamEvent) error

	// Close gracefully closes the connection to the broker.
	Close() error
}
