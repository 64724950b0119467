package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dukerupert/daybook/internal/caltime"
	"github.com/dukerupert/daybook/internal/model"
)

type EventStore struct {
	db *sql.DB
}

func NewEventStore(db *sql.DB) *EventStore {
	return &EventStore{db: db}
}

const eventCols = `id, title, description, date, time_start, time_end, source_type, todo_id, is_dismissed, completed_at, created_at, updated_at`

func scanEvent(scanner interface{ Scan(...any) error }) (*model.Event, error) {
	var e model.Event
	var todoID sql.NullString
	var dismissed int
	var completedAt sql.NullTime

	err := scanner.Scan(&e.ID, &e.Title, &e.Description, &e.Date, &e.Duration.Start, &e.Duration.End,
		&e.SourceType, &todoID, &dismissed, &completedAt, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}

	e.TodoID = todoID.String
	e.IsDismissed = dismissed != 0
	if completedAt.Valid {
		at := completedAt.Time
		e.CompletedAt = &at
	}
	return &e, nil
}

func (s *EventStore) Create(n model.NewEvent) (*model.Event, error) {
	if n.SourceType == "" {
		n.SourceType = model.SourceManual
	}
	if !n.SourceType.Valid() {
		return nil, fmt.Errorf("%w: source type %q", caltime.ErrInvalidFormat, n.SourceType)
	}
	if strings.TrimSpace(n.Title) == "" {
		return nil, fmt.Errorf("%w: event title is empty", caltime.ErrInvalidFormat)
	}
	if err := n.Date.Validate(); err != nil {
		return nil, err
	}
	if err := n.Duration.Validate(); err != nil {
		return nil, err
	}

	var todoID sql.NullString
	if n.TodoID != "" {
		todoID = sql.NullString{String: n.TodoID, Valid: true}
	}
	var completedAt sql.NullTime
	if n.CompletedAt != nil {
		completedAt = sql.NullTime{Time: n.CompletedAt.UTC(), Valid: true}
	}

	id := uuid.NewString()
	now := time.Now().UTC()
	_, err := s.db.Exec(
		`INSERT INTO events (`+eventCols+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, n.Title, n.Description, n.Date, n.Duration.Start, n.Duration.End,
		string(n.SourceType), todoID, boolInt(n.IsDismissed), completedAt, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert event: %w", err)
	}

	return s.GetByID(id)
}

func (s *EventStore) GetByID(id string) (*model.Event, error) {
	row := s.db.QueryRow(`SELECT `+eventCols+` FROM events WHERE id = ?`, id)
	e, err := scanEvent(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}
	return e, nil
}

// ListForDate returns the events on date ordered by start time.
func (s *EventStore) ListForDate(date caltime.Date) ([]model.Event, error) {
	return s.list(`WHERE date = ? ORDER BY time_start ASC, created_at ASC`, date)
}

// ListByDateRange returns events with start <= date <= end.
func (s *EventStore) ListByDateRange(start, end caltime.Date) ([]model.Event, error) {
	return s.list(`WHERE date >= ? AND date <= ? ORDER BY date ASC, time_start ASC, created_at ASC`, start, end)
}

func (s *EventStore) list(where string, args ...any) ([]model.Event, error) {
	rows, err := s.db.Query(`SELECT `+eventCols+` FROM events `+where, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}

// ExistsForTodo reports whether any event on date references todoID,
// dismissed or not.
func (s *EventStore) ExistsForTodo(todoID string, date caltime.Date) (bool, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM events WHERE todo_id = ? AND date = ?`, todoID, date).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check event exists: %w", err)
	}
	return n > 0, nil
}

// FindForTodo returns the first event on date that references todoID, or nil.
func (s *EventStore) FindForTodo(todoID string, date caltime.Date) (*model.Event, error) {
	row := s.db.QueryRow(`SELECT `+eventCols+` FROM events WHERE todo_id = ? AND date = ? ORDER BY created_at ASC LIMIT 1`, todoID, date)
	e, err := scanEvent(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find event for todo: %w", err)
	}
	return e, nil
}

func (s *EventStore) Update(id string, p model.EventPatch) (*model.Event, error) {
	var sets []string
	var args []any
	set := func(col string, v any) {
		sets = append(sets, col+" = ?")
		args = append(args, v)
	}

	if p.Title != nil {
		if strings.TrimSpace(*p.Title) == "" {
			return nil, fmt.Errorf("%w: event title is empty", caltime.ErrInvalidFormat)
		}
		set("title", *p.Title)
	}
	if p.Description != nil {
		set("description", *p.Description)
	}
	if p.Date != nil {
		if err := p.Date.Validate(); err != nil {
			return nil, err
		}
		set("date", *p.Date)
	}
	if p.Duration != nil {
		if err := p.Duration.Validate(); err != nil {
			return nil, err
		}
		set("time_start", p.Duration.Start)
		set("time_end", p.Duration.End)
	}
	if p.IsDismissed != nil {
		set("is_dismissed", boolInt(*p.IsDismissed))
	}
	set("updated_at", time.Now().UTC())

	args = append(args, id)
	result, err := s.db.Exec(`UPDATE events SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}
	if err := requireRow(result, "event", id); err != nil {
		return nil, err
	}

	return s.GetByID(id)
}

func (s *EventStore) MarkCompleted(id string, at time.Time) error {
	result, err := s.db.Exec(
		`UPDATE events SET completed_at = ?, updated_at = ? WHERE id = ?`,
		at.UTC(), time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("complete event: %w", err)
	}
	return requireRow(result, "event", id)
}

// Dismiss hides an event without deleting it, so it keeps superseding its
// todo's ghost and is not generated again.
func (s *EventStore) Dismiss(id string) error {
	dismissed := true
	_, err := s.Update(id, model.EventPatch{IsDismissed: &dismissed})
	return err
}

func (s *EventStore) Delete(id string) error {
	result, err := s.db.Exec("DELETE FROM events WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	return requireRow(result, "event", id)
}

// DeleteBefore hard-deletes every event dated strictly before cutoff.
func (s *EventStore) DeleteBefore(cutoff caltime.Date) (int64, error) {
	result, err := s.db.Exec(`DELETE FROM events WHERE date < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete old events: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}
