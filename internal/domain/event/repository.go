package event

import (
	"context"
	"time"
)

// Repository defines the interface for the processed-event ledger
type Repository interface {
	// Claim inserts the event. A second claim of the same id returns ErrAlreadyProcessed.
	Claim(ctx context.Context, e *ProcessedEvent) error

	// Release deletes a claim whose processing failed so that a redelivery can run.
	Release(ctx context.Context, eventID string) error

	// Get returns the recorded event
	Get(ctx context.Context, eventID string) (*ProcessedEvent, error)

	// PruneBefore deletes events processed before cutoff and returns how many were removed
	PruneBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
