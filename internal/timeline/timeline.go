// Package timeline lays out a day's events and ghost events into columns
// on a minute grid.
package timeline

import (
	"sort"
	"strconv"

	"github.com/dukerupert/daybook/internal/caltime"
	"github.com/dukerupert/daybook/internal/model"
)

const (
	// HeaderOffset is added to every item's top so 00:00 clears the day header.
	HeaderOffset = 7
	// MinHeight keeps very short items tappable.
	MinHeight = 30

	soloWidth = 95.0
	soloLeft  = 2.5
	minLeft   = 2.5
)

type Kind int

const (
	KindEvent Kind = iota
	KindGhost
)

func (k Kind) String() string {
	if k == KindGhost {
		return "ghost"
	}
	return "event"
}

// Item is either a persisted event or a ghost, plus its layout. Exactly one
// of Event and Ghost is set, as named by Kind.
type Item struct {
	Kind  Kind
	Event *model.Event
	Ghost *model.GhostEvent

	Top    int
	Height int
	Left   float64 // percent
	Width  float64 // percent
}

func (it Item) IsGhost() bool {
	return it.Kind == KindGhost
}

func (it Item) ID() string {
	if it.IsGhost() {
		return it.Ghost.ID
	}
	return it.Event.ID
}

func (it Item) TodoID() string {
	if it.IsGhost() {
		return it.Ghost.TodoID
	}
	return it.Event.TodoID
}

func (it Item) Title() string {
	if it.IsGhost() {
		return it.Ghost.Title
	}
	return it.Event.Title
}

func (it Item) Duration() caltime.TimeRange {
	if it.IsGhost() {
		return it.Ghost.Duration
	}
	return it.Event.Duration
}

// LeftString returns Left in CSS percent form, e.g. "33.333333333333336%".
func (it Item) LeftString() string {
	return percent(it.Left)
}

func (it Item) WidthString() string {
	return percent(it.Width)
}

// Build merges events with the ghosts they do not supersede and lays them
// out. A ghost is dropped when any event carries the same todo id.
//
// Items are sorted by start time. On equal starts events come before ghosts
// and otherwise input order is kept.
//
// Every item that overlaps n-1 others gets width 100/n and is placed at the
// column given by how many of its overlappers start before it. This can use
// more columns than a full interval colouring would; day sizes are small.
func Build(events []model.Event, ghosts []model.GhostEvent) []Item {
	superseded := make(map[string]bool, len(events))
	for _, e := range events {
		if e.TodoID != "" {
			superseded[e.TodoID] = true
		}
	}

	items := make([]Item, 0, len(events)+len(ghosts))
	for _, e := range events {
		items = append(items, Item{Kind: KindEvent, Event: &e})
	}
	for _, g := range ghosts {
		if superseded[g.TodoID] {
			continue
		}
		items = append(items, Item{Kind: KindGhost, Ghost: &g})
	}

	sort.SliceStable(items, func(i, j int) bool {
		c := items[i].Duration().Start.Compare(items[j].Duration().Start)
		if c != 0 {
			return c < 0
		}
		return items[i].Kind < items[j].Kind
	})

	for i := range items {
		layout(items, i)
	}
	return items
}

func layout(items []Item, idx int) {
	it := &items[idx]
	d := it.Duration()

	it.Top = d.Start.Minutes() + HeaderOffset
	it.Height = max(d.Minutes(), MinHeight)

	overlapping, earlier := 0, 0
	for j := range items {
		if j == idx {
			continue
		}
		od := items[j].Duration()
		if !d.Overlaps(od) {
			continue
		}
		overlapping++
		// Same-instant starts are ordered by sorted position so tied
		// items land in distinct columns.
		if c := od.Start.Compare(d.Start); c < 0 || (c == 0 && j < idx) {
			earlier++
		}
	}

	if overlapping == 0 {
		it.Width = soloWidth
		it.Left = soloLeft
		return
	}

	n := float64(overlapping + 1)
	it.Width = 100 / n
	it.Left = max(float64(earlier)*100/n, minLeft)
}

func percent(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "%"
}
