package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/dukerupert/daybook/internal/ics"
)

func addICS(topLevel *cobra.Command, a *app) {
	var out string
	export := &cobra.Command{
		Use:   "export <start> <end>",
		Short: "Write events in a date range, and all recurring todos, as iCalendar",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			today := a.today()
			start, err := parseDay(args[0], today)
			if err != nil {
				return err
			}
			end, err := parseDay(args[1], today)
			if err != nil {
				return err
			}
			events, err := a.events.ListByDateRange(start, end)
			if err != nil {
				return err
			}
			todos, err := a.todos.List()
			if err != nil {
				return err
			}

			var w io.Writer = cmd.OutOrStdout()
			if out != "" && out != "-" {
				f, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("create %s: %w", out, err)
				}
				defer f.Close()
				w = f
			}
			return ics.Export(w, events, todos, start, a.loc, a.now())
		},
	}
	export.Flags().StringVarP(&out, "output", "o", "", "Write to a file instead of stdout.")

	var dryRun bool
	imp := &cobra.Command{
		Use:   "import <file.ics>",
		Short: "Import timed events as events and weekly recurring events as todos",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open %s: %w", args[0], err)
			}
			defer f.Close()

			res, err := ics.Parse(f, a.loc)
			if err != nil {
				return err
			}
			if !dryRun {
				for _, n := range res.Events {
					if _, err := a.events.Create(n); err != nil {
						return err
					}
				}
				for _, n := range res.Todos {
					if _, err := a.todos.Create(n); err != nil {
						return err
					}
				}
			}
			fmt.Fprintf(output(cmd), "imported %d events and %d todos, skipped %d\n", len(res.Events), len(res.Todos), res.Skipped)
			return nil
		},
	}
	imp.Flags().BoolVar(&dryRun, "dry-run", false, "Parse only, do not store anything.")

	topLevel.AddCommand(export, imp)
}
