package outbox

import (
	"context"

	"github.com/google/uuid"
)

// EventTypeRecordBroken is written when a run beats the trail's best time.
const EventTypeRecordBroken = "RecordBroken"

// Event is one pending notification.
type Event struct {
	ID        uuid.UUID
	TrailName string
	EventType string
	Payload   []byte
}

// EventPublisher delivers an event payload for a trail.
type EventPublisher interface {
	Publish(ctx context.Context, trailName string, payload []byte) error
}
