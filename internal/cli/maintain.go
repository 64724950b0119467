package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/dukerupert/daybook/internal/caltime"
	"github.com/dukerupert/daybook/internal/store"
)

func addGhost(topLevel *cobra.Command, a *app) {
	cmd := &cobra.Command{
		Use:   "ghost",
		Short: "Work with projected todo occurrences",
	}

	render := &cobra.Command{
		Use:   "render <todo-id> [date]",
		Short: "Turn a todo's ghost into a real event",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var arg string
			if len(args) == 2 {
				arg = args[1]
			}
			date, err := parseDay(arg, a.today())
			if err != nil {
				return err
			}
			e, err := a.job.RenderGhost(args[0], date)
			if err != nil {
				return err
			}
			fmt.Fprintf(output(cmd), "%s %s on %s %s\n", e.ID, e.Title, e.Date, e.Duration)
			return nil
		},
	}

	cmd.AddCommand(render)
	topLevel.AddCommand(cmd)
}

func addMaintain(topLevel *cobra.Command, a *app) {
	var force bool
	maintain := &cobra.Command{
		Use:   "maintain",
		Short: "Run daily cleanup and generation if it has not run today",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if force {
				if err := a.job.ForceRun(); err != nil {
					return err
				}
				fmt.Fprintln(output(cmd), "maintenance complete")
				return nil
			}
			ran, err := a.job.RunDaily()
			if err != nil {
				return err
			}
			if !ran {
				fmt.Fprintln(output(cmd), "maintenance already ran today")
				return nil
			}
			fmt.Fprintln(output(cmd), "maintenance complete")
			return nil
		},
	}
	maintain.Flags().BoolVar(&force, "force", false, "Run even if maintenance already ran today.")

	generate := &cobra.Command{
		Use:   "generate <start> <end>",
		Short: "Materialize todos into events for an inclusive date range",
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
			days := start.DaysUntil(end) + 1
			if days < 1 {
				return fmt.Errorf("%w: end %s is before start %s", caltime.ErrInvalidFormat, end, start)
			}
			n, err := a.job.GenerateEventsForPeriod(start, end)
			if err != nil {
				return err
			}
			fmt.Fprintf(output(cmd), "created %d events over %d days\n", n, days)
			return nil
		},
	}

	cleanup := &cobra.Command{
		Use:   "cleanup <days-to-keep>",
		Short: "Delete events older than the given number of days",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			days, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("%w: days to keep %q", caltime.ErrInvalidFormat, args[0])
			}
			n, err := a.job.CleanupOldEvents(days)
			if err != nil {
				return err
			}
			fmt.Fprintf(output(cmd), "deleted %d events\n", n)
			return nil
		},
	}

	settings := &cobra.Command{
		Use:   "settings [key] [value]",
		Short: "Show or change maintenance settings",
		Args:  cobra.RangeArgs(0, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch len(args) {
			case 2:
				if err := validateSetting(args[0], args[1]); err != nil {
					return err
				}
				if err := a.settings.Set(args[0], args[1]); err != nil {
					return err
				}
			case 1:
				v, err := a.settings.Get(args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(output(cmd), v)
				return nil
			}
			all, err := a.settings.GetMaintenanceSettings()
			if err != nil {
				return err
			}
			p, err := a.job.Policy()
			if err != nil {
				return err
			}
			w := output(cmd)
			fmt.Fprintf(w, "auto_cleanup      %t\n", p.AutoCleanup)
			fmt.Fprintf(w, "keep_events_days  %d\n", p.KeepEventsDays)
			fmt.Fprintf(w, "auto_generate     %t\n", p.AutoGenerate)
			fmt.Fprintf(w, "weeks_ahead       %d\n", p.WeeksAhead)
			if last, ok := all[store.KeyLastEventJob]; ok {
				fmt.Fprintf(w, "last_event_job    %s\n", last)
			}
			return nil
		},
	}

	topLevel.AddCommand(maintain, generate, cleanup, settings)
}

func validateSetting(key, value string) error {
	switch key {
	case store.KeyAutoCleanup, store.KeyAutoGenerate:
		if _, err := strconv.ParseBool(value); err != nil {
			return fmt.Errorf("%w: %s must be true or false", caltime.ErrInvalidFormat, key)
		}
	case store.KeyKeepEventsDays, store.KeyWeeksAhead:
		if n, err := strconv.Atoi(value); err != nil || n < 0 {
			return fmt.Errorf("%w: %s must be a non-negative integer", caltime.ErrInvalidFormat, key)
		}
	case store.KeyLastEventJob:
		if _, err := caltime.ParseDate(value); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown setting %q", key)
	}
	return nil
}
