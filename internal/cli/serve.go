package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dukerupert/daybook/internal/maintenance"
)

func addServe(topLevel *cobra.Command, a *app) {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run daily maintenance on a schedule until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sched, err := maintenance.NewScheduler(a.job, a.cfg.Schedule, a.loc, a.logger)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			sched.Start(ctx)
			a.logger.Info("scheduler started", "schedule", a.cfg.Schedule, "next", sched.Next())

			<-ctx.Done()
			a.logger.Info("shutting down")
			sched.Stop()
			return nil
		},
	}
	topLevel.AddCommand(cmd)
}
