package events

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// EventLog persists events to SQLite so past batches can be inspected.
type EventLog struct {
	db *sql.DB
}

// NewEventLog creates an event log over db. The events table must exist.
func NewEventLog(db *sql.DB) *EventLog {
	return &EventLog{db: db}
}

// RawEvent is a persisted event with its JSON payload.
type RawEvent struct {
	ID         int64     `json:"id"`
	EventType  string    `json:"type"`
	EntityType string    `json:"entity_type"`
	EntityID   int64     `json:"entity_id"`
	BatchID    string    `json:"batch_id"`
	Payload    string    `json:"payload"`
	OccurredAt time.Time `json:"occurred_at"`
	CreatedAt  time.Time `json:"created_at"`
}

// BatchSummary describes one batch run found in the log.
type BatchSummary struct {
	BatchID  string `json:"batch_id"`
	Events   int    `json:"events"`
	Failed   int    `json:"failed"`
	Finished bool   `json:"finished"`
}

// Append persists e and returns its row id.
func (l *EventLog) Append(ctx context.Context, e Event) (int64, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return 0, fmt.Errorf("marshal event: %w", err)
	}

	// Persist even if the batch was canceled; the event describes the cancel.
	result, err := l.db.ExecContext(context.WithoutCancel(ctx), `
		INSERT INTO events (event_type, entity_type, entity_id, batch_id, payload, occurred_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		e.EventType(), e.EntityType(), e.EntityID(), e.BatchID(), string(payload), e.OccurredAt(),
	)
	if err != nil {
		return 0, fmt.Errorf("insert event: %w", err)
	}

	return result.LastInsertId()
}

const selectEvents = `
	SELECT id, event_type, entity_type, entity_id, batch_id, payload, occurred_at, created_at
	FROM events`

// Since returns events that occurred at or after t, oldest first.
func (l *EventLog) Since(ctx context.Context, t time.Time) ([]RawEvent, error) {
	return l.query(ctx, selectEvents+` WHERE occurred_at >= ? ORDER BY id ASC`, t)
}

// ForBatch returns the events of one batch run, oldest first.
func (l *EventLog) ForBatch(ctx context.Context, batchID string) ([]RawEvent, error) {
	return l.query(ctx, selectEvents+` WHERE batch_id = ? ORDER BY id ASC`, batchID)
}

// Batches lists the most recent batch runs, newest first.
func (l *EventLog) Batches(ctx context.Context, limit int) ([]BatchSummary, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT batch_id,
		       COUNT(*),
		       COALESCE(SUM(event_type = ?), 0),
		       COALESCE(SUM(event_type = ?), 0)
		FROM events
		WHERE batch_id != ''
		GROUP BY batch_id
		ORDER BY MAX(id) DESC
		LIMIT ?`,
		EventJobFailed, EventBatchFinished, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query batches: %w", err)
	}
	defer rows.Close()

	var batches []BatchSummary
	for rows.Next() {
		var b BatchSummary
		var finished int
		if err := rows.Scan(&b.BatchID, &b.Events, &b.Failed, &finished); err != nil {
			return nil, fmt.Errorf("scan batch: %w", err)
		}
		b.Finished = finished > 0
		batches = append(batches, b)
	}
	return batches, rows.Err()
}

// Prune removes events older than olderThan.
func (l *EventLog) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	result, err := l.db.ExecContext(ctx, `DELETE FROM events WHERE occurred_at < ?`, time.Now().Add(-olderThan))
	if err != nil {
		return 0, fmt.Errorf("prune events: %w", err)
	}
	return result.RowsAffected()
}

func (l *EventLog) query(ctx context.Context, q string, args ...any) ([]RawEvent, error) {
	rows, err := l.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var events []RawEvent
	for rows.Next() {
		var e RawEvent
		if err := rows.Scan(&e.ID, &e.EventType, &e.EntityType, &e.EntityID, &e.BatchID, &e.Payload, &e.OccurredAt, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
