// Package events announces inventory writes on the message bus. Each write becomes one
// message on the topic "<resource>.<op>", e.g. "variant.created".
package events

import (
	"context"
	"log"
	"strings"
	"time"
)

type Op string

const (
	OpCreated Op = "created"
	OpUpdated Op = "updated"
	OpDeleted Op = "deleted"
)

type Event struct {
	Type       string    `json:"event_type"`
	Resource   string    `json:"resource"`
	ID         uint      `json:"id"`
	Data       any       `json:"data,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// New builds the event for a write of op on resource row id.
func New(resource string, op Op, id uint, data any) Event {
	return Event{
		Type:       Topic(resource, op),
		Resource:   strings.ToLower(resource),
		ID:         id,
		Data:       data,
		OccurredAt: time.Now().UTC(),
	}
}

func Topic(resource string, op Op) string {
	return strings.ToLower(resource) + "." + string(op)
}

type Publisher interface {
	Publish(ctx context.Context, ev Event) error
	Close() error
}

// Log is the Publisher used when no broker is configured.
type Log struct{}

func (Log) Publish(_ context.Context, ev Event) error {
	log.Printf("event %s id=%d", ev.Type, ev.ID)
	return nil
}

func (Log) Close() error { return nil }
