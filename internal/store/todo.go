package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dukerupert/daybook/internal/caltime"
	"github.com/dukerupert/daybook/internal/model"
)

// ErrNotFound is returned by mutations on an id that does not exist.
var ErrNotFound = errors.New("not found")

type TodoStore struct {
	db *sql.DB
}

func NewTodoStore(db *sql.DB) *TodoStore {
	return &TodoStore{db: db}
}

const todoCols = `id, title, description, is_template, date_start, date_end, time_start, time_end, created_at, updated_at`

func scanTodo(scanner interface{ Scan(...any) error }) (*model.Todo, error) {
	var t model.Todo
	var isTemplate int
	var dateStart, dateEnd sql.NullString

	err := scanner.Scan(&t.ID, &t.Title, &t.Description, &isTemplate, &dateStart, &dateEnd,
		&t.Duration.Start, &t.Duration.End, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	t.IsTemplate = isTemplate != 0

	dr, err := dateRangeFromColumns(dateStart, dateEnd)
	if err != nil {
		return nil, fmt.Errorf("todo %s: %w", t.ID, err)
	}
	t.DateRange = dr
	return &t, nil
}

func (s *TodoStore) Create(n model.NewTodo) (*model.Todo, error) {
	if err := validateTodo(n.Title, n.Duration, n.RepeatOn, n.DateRange); err != nil {
		return nil, err
	}

	id := uuid.NewString()
	now := time.Now().UTC()
	dateStart, dateEnd := dateRangeColumns(n.DateRange)

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO todos (id, title, description, is_template, date_start, date_end, time_start, time_end, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, n.Title, n.Description, boolInt(n.IsTemplate), dateStart, dateEnd,
		n.Duration.Start, n.Duration.End, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert todo: %w", err)
	}
	if err := replaceWeekdays(tx, id, n.RepeatOn); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit todo: %w", err)
	}

	return s.GetByID(id)
}

func (s *TodoStore) GetByID(id string) (*model.Todo, error) {
	row := s.db.QueryRow(`SELECT `+todoCols+` FROM todos WHERE id = ?`, id)
	t, err := scanTodo(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get todo: %w", err)
	}

	days, err := s.weekdays(`WHERE todo_id = ?`, id)
	if err != nil {
		return nil, err
	}
	t.RepeatOn = days[id]
	return t, nil
}

// List returns every todo, newest first.
func (s *TodoStore) List() ([]model.Todo, error) {
	rows, err := s.db.Query(`SELECT ` + todoCols + ` FROM todos ORDER BY created_at DESC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	defer rows.Close()

	var todos []model.Todo
	for rows.Next() {
		t, err := scanTodo(rows)
		if err != nil {
			return nil, fmt.Errorf("scan todo: %w", err)
		}
		todos = append(todos, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	days, err := s.weekdays("")
	if err != nil {
		return nil, err
	}
	for i := range todos {
		todos[i].RepeatOn = days[todos[i].ID]
	}
	return todos, nil
}

func (s *TodoStore) Update(id string, p model.TodoPatch) (*model.Todo, error) {
	current, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, fmt.Errorf("update todo %s: %w", id, ErrNotFound)
	}

	var sets []string
	var args []any
	set := func(col string, v any) {
		sets = append(sets, col+" = ?")
		args = append(args, v)
	}

	title, duration, repeatOn, dateRange := current.Title, current.Duration, current.RepeatOn, current.DateRange
	if p.Title != nil {
		title = *p.Title
		set("title", title)
	}
	if p.Description != nil {
		set("description", *p.Description)
	}
	if p.IsTemplate != nil {
		set("is_template", boolInt(*p.IsTemplate))
	}
	if p.Duration != nil {
		duration = *p.Duration
		set("time_start", duration.Start)
		set("time_end", duration.End)
	}
	if p.ClearDateRange {
		dateRange = nil
		set("date_start", nil)
		set("date_end", nil)
	} else if p.DateRange != nil {
		dateRange = p.DateRange
		start, end := dateRangeColumns(p.DateRange)
		set("date_start", start)
		set("date_end", end)
	}
	if p.RepeatOn != nil {
		repeatOn = *p.RepeatOn
	}
	if err := validateTodo(title, duration, repeatOn, dateRange); err != nil {
		return nil, err
	}
	set("updated_at", time.Now().UTC())

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	args = append(args, id)
	if _, err := tx.Exec(`UPDATE todos SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...); err != nil {
		return nil, fmt.Errorf("update todo: %w", err)
	}
	if p.RepeatOn != nil {
		if err := replaceWeekdays(tx, id, repeatOn); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit todo: %w", err)
	}

	return s.GetByID(id)
}

// Delete removes a todo. Events generated from it are kept.
func (s *TodoStore) Delete(id string) error {
	result, err := s.db.Exec(`DELETE FROM todos WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete todo: %w", err)
	}
	return requireRow(result, "todo", id)
}

func (s *TodoStore) weekdays(where string, args ...any) (map[string][]time.Weekday, error) {
	rows, err := s.db.Query(`SELECT todo_id, weekday FROM todo_weekdays `+where+` ORDER BY todo_id, weekday`, args...)
	if err != nil {
		return nil, fmt.Errorf("query weekdays: %w", err)
	}
	defer rows.Close()

	days := make(map[string][]time.Weekday)
	for rows.Next() {
		var todoID string
		var wd int
		if err := rows.Scan(&todoID, &wd); err != nil {
			return nil, fmt.Errorf("scan weekday: %w", err)
		}
		days[todoID] = append(days[todoID], time.Weekday(wd))
	}
	return days, rows.Err()
}

func replaceWeekdays(tx *sql.Tx, todoID string, days []time.Weekday) error {
	if _, err := tx.Exec(`DELETE FROM todo_weekdays WHERE todo_id = ?`, todoID); err != nil {
		return fmt.Errorf("clear weekdays: %w", err)
	}
	for _, d := range days {
		if _, err := tx.Exec(`INSERT OR IGNORE INTO todo_weekdays (todo_id, weekday) VALUES (?, ?)`, todoID, int(d)); err != nil {
			return fmt.Errorf("insert weekday: %w", err)
		}
	}
	return nil
}

func validateTodo(title string, duration caltime.TimeRange, days []time.Weekday, dr *caltime.DateRange) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("%w: todo title is empty", caltime.ErrInvalidFormat)
	}
	if err := duration.Validate(); err != nil {
		return err
	}
	for _, d := range days {
		if _, err := caltime.WeekdayFromIndex(int(d)); err != nil {
			return err
		}
	}
	return validateDateRange(dr)
}

// validateDateRange rejects bounds that would be stored but could not be
// read back.
func validateDateRange(dr *caltime.DateRange) error {
	if dr == nil {
		return nil
	}
	if dr.Start != nil {
		if err := dr.Start.Validate(); err != nil {
			return err
		}
	}
	if dr.End != nil {
		if err := dr.End.Validate(); err != nil {
			return err
		}
	}
	if dr.Start != nil && dr.End != nil && dr.End.Before(*dr.Start) {
		return fmt.Errorf("%w: date range ends %s before it starts %s", caltime.ErrInvalidFormat, *dr.End, *dr.Start)
	}
	return nil
}

func dateRangeColumns(r *caltime.DateRange) (start, end sql.NullString) {
	if r == nil {
		return start, end
	}
	if r.Start != nil {
		start = sql.NullString{String: r.Start.String(), Valid: true}
	}
	if r.End != nil {
		end = sql.NullString{String: r.End.String(), Valid: true}
	}
	return start, end
}

func dateRangeFromColumns(start, end sql.NullString) (*caltime.DateRange, error) {
	if !start.Valid && !end.Valid {
		return nil, nil
	}
	var r caltime.DateRange
	if start.Valid {
		d, err := caltime.ParseDate(start.String)
		if err != nil {
			return nil, err
		}
		r.Start = &d
	}
	if end.Valid {
		d, err := caltime.ParseDate(end.String)
		if err != nil {
			return nil, err
		}
		r.End = &d
	}
	return &r, nil
}

func requireRow(result sql.Result, kind, id string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
	}
	return nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
