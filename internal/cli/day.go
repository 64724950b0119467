package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/dukerupert/daybook/internal/agenda"
	"github.com/dukerupert/daybook/internal/timeline"
)

func addDay(topLevel *cobra.Command, a *app) {
	cmd := &cobra.Command{
		Use:   "day [date]",
		Short: "Show a day's timeline, ghosts included",
		Example: `
daybook day
daybook day tomorrow
daybook day 2025-01-10
`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				day, err := a.agenda.Today()
				if err != nil {
					return err
				}
				printDay(cmd, day)
				return nil
			}
			date, err := parseDay(args[0], a.today())
			if err != nil {
				return err
			}
			day, err := a.agenda.Day(date)
			if err != nil {
				return err
			}
			printDay(cmd, day)
			return nil
		},
	}
	topLevel.AddCommand(cmd)
}

func printDay(cmd *cobra.Command, day *agenda.Day) {
	bold := color.New(color.Bold)
	faint := color.New(color.Faint)
	done := color.New(color.FgGreen)

	w := output(cmd)
	header := fmt.Sprintf("%s  %s", bold.Sprint(day.Date.String()), day.Date.Weekday())
	if n := day.Ghosts(); n > 0 {
		header += faint.Sprintf("  %d not yet generated", n)
	}
	fmt.Fprintln(w, header)

	if len(day.Items) == 0 {
		fmt.Fprintln(w, faint.Sprint("nothing scheduled"))
		return
	}

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(bold.Sprint("Time"), bold.Sprint("Title"), bold.Sprint("Kind"), bold.Sprint("Left"), bold.Sprint("Width"), bold.Sprint("ID"))
	for _, it := range day.Items {
		row := []interface{}{it.Duration().String(), it.Title(), kindLabel(it), it.LeftString(), it.WidthString(), it.ID()}
		paint := func(v interface{}) interface{} { return v }
		switch {
		case it.IsGhost() || it.Event.IsDismissed:
			paint = func(v interface{}) interface{} { return faint.Sprint(v) }
		case it.Event.IsCompleted():
			paint = func(v interface{}) interface{} { return done.Sprint(v) }
		}
		for i, v := range row {
			row[i] = paint(v)
		}
		tbl.AddRow(row...)
	}
	fmt.Fprintln(w, tbl)
}

func kindLabel(it timeline.Item) string {
	if it.IsGhost() {
		return it.Kind.String()
	}
	switch {
	case it.Event.IsDismissed:
		return "dismissed"
	case it.Event.IsCompleted():
		return "done"
	}
	return string(it.Event.SourceType)
}
