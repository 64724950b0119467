package cli

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/dukerupert/daybook/internal/caltime"
	"github.com/dukerupert/daybook/internal/model"
	"github.com/dukerupert/daybook/internal/recurrence"
)

type todoOptions struct {
	Days        string
	Slot        string
	From        string
	Until       string
	Description string
	Template    bool
}

func addTodo(topLevel *cobra.Command, a *app) {
	cmd := &cobra.Command{
		Use:   "todo",
		Short: "Manage recurring todos",
	}

	o := &todoOptions{}
	add := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a todo",
		Example: `
daybook todo add Stretch --days mon,wed,fri --at 09:00-09:30
daybook todo add "Water plants" --days sat --at 08:00-08:15 --until 2025-09-30
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := o.newTodo(args[0], a.today())
			if err != nil {
				return err
			}
			todo, err := a.todos.Create(n)
			if err != nil {
				return err
			}
			fmt.Fprintf(output(cmd), "%s %s (%s, %s)\n", todo.ID, todo.Title, todo.Duration, recurrence.Describe(*todo))
			return nil
		},
	}
	add.Flags().StringVar(&o.Days, "days", "", `Repeat days, e.g. "mon,wed,fri", "1,3,5", "daily" or "weekdays".`)
	add.Flags().StringVar(&o.Slot, "at", "", `Time slot, e.g. "09:00-09:30".`)
	add.Flags().StringVar(&o.From, "from", "", "First date the todo applies to.")
	add.Flags().StringVar(&o.Until, "until", "", "Last date the todo applies to.")
	add.Flags().StringVar(&o.Description, "desc", "", "Description.")
	add.Flags().BoolVar(&o.Template, "template", false, "Store as a template that is never scheduled.")
	_ = add.MarkFlagRequired("at")

	list := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List todos",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			todos, err := a.todos.List()
			if err != nil {
				return err
			}
			bold := color.New(color.Bold)
			tbl := uitable.New()
			tbl.Separator = "  "
			tbl.AddRow(bold.Sprint("ID"), bold.Sprint("Title"), bold.Sprint("Time"), bold.Sprint("Pattern"))
			for _, t := range todos {
				tbl.AddRow(t.ID, t.Title, t.Duration.String(), recurrence.Describe(t))
			}
			fmt.Fprintln(output(cmd), tbl)
			return nil
		},
	}

	rm := &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a todo. Its events are kept.",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.todos.Delete(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(output(cmd), "deleted todo %s\n", args[0])
			return nil
		},
	}

	cmd.AddCommand(add, list, rm)
	topLevel.AddCommand(cmd)
}

func (o *todoOptions) newTodo(title string, today caltime.Date) (model.NewTodo, error) {
	days, err := parseWeekdays(o.Days)
	if err != nil {
		return model.NewTodo{}, err
	}
	slot, err := parseSlot(o.Slot)
	if err != nil {
		return model.NewTodo{}, err
	}
	from, err := parseOptionalDay(o.From, today)
	if err != nil {
		return model.NewTodo{}, err
	}
	until, err := parseOptionalDay(o.Until, today)
	if err != nil {
		return model.NewTodo{}, err
	}
	if from != nil && until != nil && until.Before(*from) {
		return model.NewTodo{}, errors.New("--until is before --from")
	}

	n := model.NewTodo{
		Title:       title,
		Description: o.Description,
		RepeatOn:    days,
		IsTemplate:  o.Template,
		Duration:    slot,
	}
	if from != nil || until != nil {
		n.DateRange = &caltime.DateRange{Start: from, End: until}
	}
	return n, nil
}
