package model

import (
	"time"

	"github.com/dukerupert/daybook/internal/caltime"
)

type SourceType string

const (
	SourceManual    SourceType = "manual"
	SourceGenerated SourceType = "generated"
	SourceTemplate  SourceType = "template"
)

func (s SourceType) Valid() bool {
	switch s {
	case SourceManual, SourceGenerated, SourceTemplate:
		return true
	}
	return false
}

// Event is a concrete, persisted occurrence on one day. TodoID is a
// non-owning reference and may name a todo that no longer exists.
type Event struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Date        caltime.Date      `json:"date"`
	Duration    caltime.TimeRange `json:"duration"`
	SourceType  SourceType        `json:"source_type"`
	TodoID      string            `json:"todo_id,omitempty"`
	IsDismissed bool              `json:"is_dismissed"`
	CompletedAt *time.Time        `json:"completed_at,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

func (e Event) IsCompleted() bool {
	return e.CompletedAt != nil
}

type NewEvent struct {
	Title       string
	Description string
	Date        caltime.Date
	Duration    caltime.TimeRange
	SourceType  SourceType
	TodoID      string
	IsDismissed bool
	CompletedAt *time.Time
}

// EventPatch holds a partial update. Nil fields are left unchanged.
type EventPatch struct {
	Title       *string
	Description *string
	Date        *caltime.Date
	Duration    *caltime.TimeRange
	IsDismissed *bool
}

// GhostEvent is a computed preview of a todo on a day. It is never stored.
type GhostEvent struct {
	ID          string            `json:"id"`
	TodoID      string            `json:"todo_id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Duration    caltime.TimeRange `json:"duration"`
}
