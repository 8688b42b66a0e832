package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/pratik-mahalle/sitevoice/internal/domain/event"
	apperrors "github.com/pratik-mahalle/sitevoice/internal/pkg/errors"
)

// EventRepository implements event.Repository
type EventRepository struct {
	db *sqlx.DB
}

// NewEventRepository creates a new processed-event repository
func NewEventRepository(db *sqlx.DB) event.Repository {
	return &EventRepository{db: db}
}

// Claim records the event. The primary key on event_id rejects a second claim.
func (r *EventRepository) Claim(ctx context.Context, e *event.ProcessedEvent) error {
	if e.ProcessedAt.IsZero() {
		e.ProcessedAt = now()
	}

	query := `
		INSERT INTO processed_events (event_id, source, processed_at)
		VALUES (:event_id, :source, :processed_at)
	`

	if _, err := r.db.NamedExecContext(ctx, query, e); err != nil {
		if isUniqueViolation(err) {
			return event.ErrAlreadyProcessed
		}
		return apperrors.DatabaseError("Failed to record event", err)
	}
	return nil
}

// Release deletes a claim so that a redelivery of the event is processed
func (r *EventRepository) Release(ctx context.Context, eventID string) error {
	query := r.db.Rebind(`DELETE FROM processed_events WHERE event_id = ?`)

	result, err := r.db.ExecContext(ctx, query, eventID)
	if err != nil {
		return apperrors.DatabaseError("Failed to release event", err)
	}
	return expectOneRow(result, event.ErrNotFound)
}

// Get returns the recorded event
func (r *EventRepository) Get(ctx context.Context, eventID string) (*event.ProcessedEvent, error) {
	query := r.db.Rebind(`SELECT event_id, source, processed_at FROM processed_events WHERE event_id = ?`)

	var e event.ProcessedEvent
	err := r.db.GetContext(ctx, &e, query, eventID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, event.ErrNotFound
	}
	if err != nil {
		return nil, apperrors.DatabaseError("Failed to get event", err)
	}
	e.ProcessedAt = e.ProcessedAt.UTC()
	return &e, nil
}

// PruneBefore deletes events processed before cutoff
func (r *EventRepository) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	query := r.db.Rebind(`DELETE FROM processed_events WHERE processed_at < ?`)

	result, err := r.db.ExecContext(ctx, query, cutoff.UTC())
	if err != nil {
		return 0, apperrors.DatabaseError("Failed to prune events", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.DatabaseError("Failed to get affected rows", err)
	}
	return n, nil
}
