package ghost

import (
	"fmt"

	"github.com/dukerupert/daybook/internal/caltime"
	"github.com/dukerupert/daybook/internal/model"
	"github.com/dukerupert/daybook/internal/recurrence"
)

const idPrefix = "ghost_"

type TodoLister interface {
	List() ([]model.Todo, error)
}

// Generator projects todos onto a day as ghost events. It does not look at
// persisted events; suppressing ghosts that already have a real event is
// the timeline's job.
type Generator struct {
	todos TodoLister
}

func NewGenerator(todos TodoLister) *Generator {
	return &Generator{todos: todos}
}

// ForDate returns one ghost for every todo that applies to date as of today.
// The result is in store order, not sorted.
func (g *Generator) ForDate(date, today caltime.Date) ([]model.GhostEvent, error) {
	todos, err := g.todos.List()
	if err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}

	var ghosts []model.GhostEvent
	for _, t := range todos {
		if recurrence.AppliesToDate(t, date, today) {
			ghosts = append(ghosts, FromTodo(t))
		}
	}
	return ghosts, nil
}

func FromTodo(t model.Todo) model.GhostEvent {
	return model.GhostEvent{
		ID:          ID(t.ID),
		TodoID:      t.ID,
		Title:       t.Title,
		Description: t.Description,
		Duration:    t.Duration,
	}
}

// ID derives the ghost id for a todo.
func ID(todoID string) string {
	return idPrefix + todoID
}
