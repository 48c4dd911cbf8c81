// Package events delivers account lifecycle notifications to an external
// broker. Publishing is fire-and-forget: failures are logged by callers and
// never fail the originating request. Nothing in this server consumes the
// events; they feed external audit or notification pipelines.
package events

import (
	"context"
	"encoding/json"
	"time"
)

// Lifecycle event types.
const (
	TypeAccountRegistered = "account.registered"
	TypeAccountDeleted    = "account.deleted"
	TypeAccountPurged     = "account.purged"
)

// Event is one account lifecycle notification.
type Event struct {
	Type       string    `json:"type"`
	Username   string    `json:"username"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewEvent constructs an event stamped with the current time.
func NewEvent(eventType, username string) Event {
	return Event{
		Type:       eventType,
		Username:   username,
		OccurredAt: time.Now().UTC(),
	}
}

func (e Event) payload() ([]byte, error) {
	return json.Marshal(e)
}

// Publisher delivers events to a broker backend.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// NopPublisher discards events. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(ctx context.Context, event Event) error { return nil }

func (NopPublisher) Close() error { return nil }
