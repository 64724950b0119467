package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/dukerupert/daybook/internal/model"
)

type eventOptions struct {
	On          string
	Slot        string
	Description string
	From        string
	To          string
}

func addEvent(topLevel *cobra.Command, a *app) {
	cmd := &cobra.Command{
		Use:   "event",
		Short: "Manage dated events",
	}

	o := &eventOptions{}
	add := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a one-off event",
		Example: `
daybook event add Dentist --on 2025-01-10 --at 14:00-15:00
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := parseDay(o.On, a.today())
			if err != nil {
				return err
			}
			slot, err := parseSlot(o.Slot)
			if err != nil {
				return err
			}
			e, err := a.events.Create(model.NewEvent{
				Title:       args[0],
				Description: o.Description,
				Date:        date,
				Duration:    slot,
				SourceType:  model.SourceManual,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(output(cmd), "%s %s on %s %s\n", e.ID, e.Title, e.Date, e.Duration)
			return nil
		},
	}
	add.Flags().StringVar(&o.On, "on", "today", "Date of the event.")
	add.Flags().StringVar(&o.Slot, "at", "", `Time slot, e.g. "14:00-15:00".`)
	add.Flags().StringVar(&o.Description, "desc", "", "Description.")
	_ = add.MarkFlagRequired("at")

	list := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List events in a date range",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			today := a.today()
			from, err := parseDay(o.From, today)
			if err != nil {
				return err
			}
			to := from.AddDays(6)
			if o.To != "" {
				if to, err = parseDay(o.To, today); err != nil {
					return err
				}
			}
			events, err := a.events.ListByDateRange(from, to)
			if err != nil {
				return err
			}
			printEvents(cmd, events)
			return nil
		},
	}
	list.Flags().StringVar(&o.From, "from", "today", "First date.")
	list.Flags().StringVar(&o.To, "to", "", "Last date, default a week after --from.")

	done := &cobra.Command{
		Use:     "done <id>",
		Aliases: []string{"complete"},
		Short:   "Mark an event completed",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.events.MarkCompleted(args[0], a.now()); err != nil {
				return err
			}
			fmt.Fprintf(output(cmd), "completed %s\n", args[0])
			return nil
		},
	}

	dismiss := &cobra.Command{
		Use:   "dismiss <id>",
		Short: "Hide an event without deleting it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.events.Dismiss(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(output(cmd), "dismissed %s\n", args[0])
			return nil
		},
	}

	rm := &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete an event",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.events.Delete(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(output(cmd), "deleted event %s\n", args[0])
			return nil
		},
	}

	cmd.AddCommand(add, list, done, dismiss, rm)
	topLevel.AddCommand(cmd)
}

func printEvents(cmd *cobra.Command, events []model.Event) {
	bold := color.New(color.Bold)
	faint := color.New(color.Faint)

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(bold.Sprint("ID"), bold.Sprint("Date"), bold.Sprint("Time"), bold.Sprint("Title"), bold.Sprint("Status"))
	for _, e := range events {
		status := string(e.SourceType)
		switch {
		case e.IsDismissed:
			status = "dismissed"
		case e.IsCompleted():
			status = "done"
		}
		row := []interface{}{e.ID, e.Date.String(), e.Duration.String(), e.Title, status}
		if e.IsDismissed {
			for i, v := range row {
				row[i] = faint.Sprint(v)
			}
		}
		tbl.AddRow(row...)
	}
	fmt.Fprintln(output(cmd), tbl)
}
