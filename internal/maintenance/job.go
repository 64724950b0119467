// Package maintenance materializes todos into events and prunes old ones.
package maintenance

import (
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/dukerupert/daybook/internal/caltime"
	"github.com/dukerupert/daybook/internal/model"
	"github.com/dukerupert/daybook/internal/recurrence"
	"github.com/dukerupert/daybook/internal/store"
)

// TodoStore is the subset of store.TodoStore the job needs.
type TodoStore interface {
	List() ([]model.Todo, error)
	GetByID(id string) (*model.Todo, error)
}

// EventStore is the subset of store.EventStore the job needs.
type EventStore interface {
	Create(n model.NewEvent) (*model.Event, error)
	ExistsForTodo(todoID string, date caltime.Date) (bool, error)
	FindForTodo(todoID string, date caltime.Date) (*model.Event, error)
	DeleteBefore(cutoff caltime.Date) (int64, error)
}

// SettingsStore is the subset of store.SettingsStore the job needs.
type SettingsStore interface {
	GetOr(key, def string) (string, error)
	Set(key, value string) error
}

// Policy controls what RunDaily does.
type Policy struct {
	AutoCleanup    bool
	KeepEventsDays int
	AutoGenerate   bool
	WeeksAhead     int
}

// DefaultPolicy matches the seeded settings rows.
var DefaultPolicy = Policy{
	AutoCleanup:    true,
	KeepEventsDays: 30,
	AutoGenerate:   true,
	WeeksAhead:     2,
}

// PeriodError reports where GenerateEventsForPeriod stopped. Events created
// before the failure stay committed; a rerun picks up where it left off.
type PeriodError struct {
	// Completed is the last day fully processed, nil if none was.
	Completed *caltime.Date
	Day       caltime.Date
	TodoID    string
	Created   int
	Err       error
}

func (e *PeriodError) Error() string {
	done := "none"
	if e.Completed != nil {
		done = e.Completed.String()
	}
	if e.TodoID == "" {
		return fmt.Sprintf("generate events on %s (completed through %s): %v", e.Day, done, e.Err)
	}
	return fmt.Sprintf("generate events on %s for todo %s (completed through %s): %v", e.Day, e.TodoID, done, e.Err)
}

func (e *PeriodError) Unwrap() error {
	return e.Err
}

type Job struct {
	todos    TodoStore
	events   EventStore
	settings SettingsStore
	logger   *slog.Logger
	loc      *time.Location
	now      func() time.Time
}

type Option func(*Job)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(j *Job) { j.now = now }
}

func WithLocation(loc *time.Location) Option {
	return func(j *Job) { j.loc = loc }
}

func WithLogger(logger *slog.Logger) Option {
	return func(j *Job) { j.logger = logger }
}

func NewJob(todos TodoStore, events EventStore, settings SettingsStore, opts ...Option) *Job {
	j := &Job{
		todos:    todos,
		events:   events,
		settings: settings,
		logger:   slog.Default(),
		loc:      time.Local,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// Today is the calendar date in the job's location.
func (j *Job) Today() caltime.Date {
	return caltime.Today(j.now(), j.loc)
}

// GenerateEventsForPeriod creates a generated event for every applicable
// todo on every day in [start, end] that has no event for that todo yet.
// It returns the number of events created. The first failure aborts the run
// with a *PeriodError.
func (j *Job) GenerateEventsForPeriod(start, end caltime.Date) (int, error) {
	if err := start.Validate(); err != nil {
		return 0, err
	}
	if err := end.Validate(); err != nil {
		return 0, err
	}

	today := j.Today()
	todos, err := j.todos.List()
	if err != nil {
		return 0, &PeriodError{Day: start, Err: fmt.Errorf("list todos: %w", err)}
	}

	created := 0
	var completed *caltime.Date
	for day := start; day.BeforeOrEqual(end); day = day.AddDays(1) {
		for _, todo := range recurrence.Applicable(todos, day, today) {
			ok, err := j.materialize(todo, day)
			if err != nil {
				return created, &PeriodError{Completed: completed, Day: day, TodoID: todo.ID, Created: created, Err: err}
			}
			if ok {
				created++
			}
		}
		d := day
		completed = &d
	}

	j.logger.Info("generated events", "start", start, "end", end, "created", created)
	return created, nil
}

// GenerateEventsForNextWeeks materializes [today, today + weeks*7].
func (j *Job) GenerateEventsForNextWeeks(weeks int) (int, error) {
	if weeks < 0 {
		return 0, fmt.Errorf("%w: weeks ahead %d is negative", caltime.ErrInvalidFormat, weeks)
	}
	today := j.Today()
	return j.GenerateEventsForPeriod(today, today.AddDays(weeks*7))
}

func (j *Job) materialize(todo model.Todo, day caltime.Date) (bool, error) {
	exists, err := j.events.ExistsForTodo(todo.ID, day)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}
	_, err = j.events.Create(model.NewEvent{
		Title:       todo.Title,
		Description: todo.Description,
		Date:        day,
		Duration:    todo.Duration,
		SourceType:  model.SourceGenerated,
		TodoID:      todo.ID,
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

// CleanupOldEvents hard-deletes events dated before today - daysToKeep.
// Dismissed events inside the window are kept: they are what stops the job
// from generating the same occurrence again.
func (j *Job) CleanupOldEvents(daysToKeep int) (int64, error) {
	if daysToKeep < 0 {
		return 0, fmt.Errorf("%w: days to keep %d is negative", caltime.ErrInvalidFormat, daysToKeep)
	}
	cutoff := j.Today().AddDays(-daysToKeep)
	n, err := j.events.DeleteBefore(cutoff)
	if err != nil {
		return 0, fmt.Errorf("cleanup before %s: %w", cutoff, err)
	}
	j.logger.Info("cleaned up old events", "cutoff", cutoff, "deleted", n)
	return n, nil
}

// RenderGhost turns a todo's ghost on date into a real event. If the todo
// already has an event on that date it is returned unchanged.
func (j *Job) RenderGhost(todoID string, date caltime.Date) (*model.Event, error) {
	todo, err := j.todos.GetByID(todoID)
	if err != nil {
		return nil, err
	}
	if todo == nil {
		return nil, fmt.Errorf("render ghost: todo %s: %w", todoID, store.ErrNotFound)
	}

	existing, err := j.events.FindForTodo(todoID, date)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	e, err := j.events.Create(model.NewEvent{
		Title:       todo.Title,
		Description: todo.Description,
		Date:        date,
		Duration:    todo.Duration,
		SourceType:  model.SourceManual,
		TodoID:      todo.ID,
	})
	if err != nil {
		return nil, fmt.Errorf("render ghost: %w", err)
	}
	return e, nil
}

// Policy reads the maintenance settings, falling back to DefaultPolicy for
// any key that is unset. Unparseable values are an error.
func (j *Job) Policy() (Policy, error) {
	p := DefaultPolicy
	var err error
	if p.AutoCleanup, err = j.boolSetting(store.KeyAutoCleanup, p.AutoCleanup); err != nil {
		return p, err
	}
	if p.KeepEventsDays, err = j.intSetting(store.KeyKeepEventsDays, p.KeepEventsDays); err != nil {
		return p, err
	}
	if p.AutoGenerate, err = j.boolSetting(store.KeyAutoGenerate, p.AutoGenerate); err != nil {
		return p, err
	}
	if p.WeeksAhead, err = j.intSetting(store.KeyWeeksAhead, p.WeeksAhead); err != nil {
		return p, err
	}
	return p, nil
}

// RunDaily runs cleanup and generation at most once per calendar day. It
// reports whether any work was done. The last-run marker only advances once
// both steps succeed, so a failed day is retried on the next call.
func (j *Job) RunDaily() (bool, error) {
	return j.runDaily(false)
}

// ForceRun ignores the last-run marker.
func (j *Job) ForceRun() error {
	_, err := j.runDaily(true)
	return err
}

func (j *Job) runDaily(force bool) (bool, error) {
	today := j.Today()

	last, err := j.settings.GetOr(store.KeyLastEventJob, "")
	if err != nil {
		return false, err
	}
	if !force && last == today.String() {
		j.logger.Debug("daily maintenance already ran", "date", today)
		return false, nil
	}

	p, err := j.Policy()
	if err != nil {
		return false, err
	}

	if p.AutoCleanup {
		if _, err := j.CleanupOldEvents(p.KeepEventsDays); err != nil {
			return false, err
		}
	}
	if p.AutoGenerate {
		if _, err := j.GenerateEventsForNextWeeks(p.WeeksAhead); err != nil {
			return false, err
		}
	}

	if err := j.settings.Set(store.KeyLastEventJob, today.String()); err != nil {
		return false, fmt.Errorf("advance last run marker: %w", err)
	}
	j.logger.Info("daily maintenance complete", "date", today)
	return true, nil
}

func (j *Job) boolSetting(key string, def bool) (bool, error) {
	v, err := j.settings.GetOr(key, strconv.FormatBool(def))
	if err != nil {
		return def, err
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def, fmt.Errorf("%w: setting %s = %q is not a bool", caltime.ErrInvalidFormat, key, v)
	}
	return b, nil
}

func (j *Job) intSetting(key string, def int) (int, error) {
	v, err := j.settings.GetOr(key, strconv.Itoa(def))
	if err != nil {
		return def, err
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def, fmt.Errorf("%w: setting %s = %q is not a non-negative integer", caltime.ErrInvalidFormat, key, v)
	}
	return n, nil
}
