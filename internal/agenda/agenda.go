// Package agenda assembles the laid-out timeline for a single day.
package agenda

import (
	"fmt"
	"time"

	"github.com/dukerupert/daybook/internal/caltime"
	"github.com/dukerupert/daybook/internal/ghost"
	"github.com/dukerupert/daybook/internal/model"
	"github.com/dukerupert/daybook/internal/timeline"
)

type EventLister interface {
	ListForDate(date caltime.Date) ([]model.Event, error)
}

type Service struct {
	events EventLister
	ghosts *ghost.Generator
	loc    *time.Location
	now    func() time.Time
}

type Option func(*Service)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(events EventLister, todos ghost.TodoLister, loc *time.Location, opts ...Option) *Service {
	if loc == nil {
		loc = time.Local
	}
	s := &Service{
		events: events,
		ghosts: ghost.NewGenerator(todos),
		loc:    loc,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Day is one date's timeline.
type Day struct {
	Date  caltime.Date    `json:"date"`
	Items []timeline.Item `json:"items"`
}

// Ghosts counts the items that are previews rather than stored events.
func (d Day) Ghosts() int {
	n := 0
	for _, it := range d.Items {
		if it.IsGhost() {
			n++
		}
	}
	return n
}

// Day fetches date's events, projects ghosts for its todos, and lays both
// out on the timeline.
func (s *Service) Day(date caltime.Date) (*Day, error) {
	if err := date.Validate(); err != nil {
		return nil, err
	}

	events, err := s.events.ListForDate(date)
	if err != nil {
		return nil, fmt.Errorf("events for %s: %w", date, err)
	}
	ghosts, err := s.ghosts.ForDate(date, caltime.Today(s.now(), s.loc))
	if err != nil {
		return nil, fmt.Errorf("ghosts for %s: %w", date, err)
	}

	return &Day{Date: date, Items: timeline.Build(events, ghosts)}, nil
}

// Today is Day for the current date in the service's location.
func (s *Service) Today() (*Day, error) {
	return s.Day(caltime.Today(s.now(), s.loc))
}
