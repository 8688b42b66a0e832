package event

import (
	"errors"
	"time"
)

// Source is the external system that issued an event
type Source string

const (
	SourceClerk  Source = "clerk"
	SourceStripe Source = "stripe"
)

// ProcessedEvent records that an external event was handled. EventID is the
// provider's idempotency token and the table's primary key.
type ProcessedEvent struct {
	EventID     string    `json:"event_id" db:"event_id"`
	Source      Source    `json:"source" db:"source"`
	ProcessedAt time.Time `json:"processed_at" db:"processed_at"`
}

// ErrAlreadyProcessed is returned when an event id has been recorded before.
var ErrAlreadyProcessed = errors.New("event already processed")

// ErrNotFound is returned when no event with the id was recorded.
var ErrNotFound = errors.New("processed event not found")
