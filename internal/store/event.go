package store

import (
	"database/sql"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

// EventRecord is a persisted gesture event, including the outcome of
// the trigger it fired.
type EventRecord struct {
	ID          string    `json:"id"`
	Kind        string    `json:"kind"`
	Confidence  float64   `json:"confidence"`
	DetectedAt  time.Time `json:"detected_at"`
	TriggerName string    `json:"trigger,omitempty"`
	TriggerOK   bool      `json:"trigger_ok"`
}

// EventRepository provides queries over persisted gesture events.
type EventRepository struct {
	db *sql.DB
}

// Events returns the event repository for this store.
func (s *Store) Events() *EventRepository {
	return &EventRepository{db: s.db}
}

// Insert records a gesture event.
func (r *EventRepository) Insert(e *EventRecord) error {
	_, err := r.db.Exec(
		`INSERT INTO events (id, kind, confidence, detected_at, trigger_name, trigger_ok)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, e.Kind, e.Confidence, e.DetectedAt, e.TriggerName, e.TriggerOK,
	)
	return err
}

// GetByID retrieves a single event.
func (r *EventRepository) GetByID(id string) (*EventRecord, error) {
	e := &EventRecord{}
	err := r.db.QueryRow(
		`SELECT id, kind, confidence, detected_at, trigger_name, trigger_ok
		 FROM events WHERE id = ?`,
		id,
	).Scan(&e.ID, &e.Kind, &e.Confidence, &e.DetectedAt, &e.TriggerName, &e.TriggerOK)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

// List retrieves the most recent events, newest first. A non-empty
// kind filters by gesture kind; limit <= 0 means no limit.
func (r *EventRepository) List(kind string, limit int) ([]*EventRecord, error) {
	query := `SELECT id, kind, confidence, detected_at, trigger_name, trigger_ok
		 FROM events`
	var args []any
	if kind != "" {
		query += ` WHERE kind = ?`
		args = append(args, kind)
	}
	query += ` ORDER BY detected_at DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*EventRecord
	for rows.Next() {
		e := &EventRecord{}
		if err := rows.Scan(&e.ID, &e.Kind, &e.Confidence, &e.DetectedAt, &e.TriggerName, &e.TriggerOK); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// CountSince returns the number of events detected at or after t.
func (r *EventRepository) CountSince(t time.Time) (int, error) {
	var n int
	err := r.db.QueryRow(
		`SELECT COUNT(*) FROM events WHERE detected_at >= ?`, t,
	).Scan(&n)
	return n, err
}

// DeleteOlderThan removes events detected before t and returns the
// number deleted. Used to keep the history bounded.
func (r *EventRepository) DeleteOlderThan(t time.Time) (int64, error) {
	res, err := r.db.Exec(`DELETE FROM events WHERE detected_at < ?`, t)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
