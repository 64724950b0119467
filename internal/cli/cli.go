// Package cli wires the daybook command tree.
package cli

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dukerupert/daybook/internal/agenda"
	"github.com/dukerupert/daybook/internal/caltime"
	"github.com/dukerupert/daybook/internal/config"
	"github.com/dukerupert/daybook/internal/database"
	"github.com/dukerupert/daybook/internal/logging"
	"github.com/dukerupert/daybook/internal/maintenance"
	"github.com/dukerupert/daybook/internal/store"
)

type rootOptions struct {
	ConfigPath string
	DBPath     string
	LogLevel   string
	Timezone   string
}

// app is everything a command needs, built once per invocation.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	loc      *time.Location
	db       *sql.DB
	todos    *store.TodoStore
	events   *store.EventStore
	settings *store.SettingsStore
	job      *maintenance.Job
	agenda   *agenda.Service
	now      func() time.Time
}

// New returns the root command.
func New() *cobra.Command {
	return newRoot(&app{now: time.Now})
}

// Execute runs the command tree with ctx.
func Execute(ctx context.Context) error {
	return New().ExecuteContext(ctx)
}

func newRoot(a *app) *cobra.Command {
	o := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "daybook",
		Short:         "Recurring todos and a day timeline on the command line.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "help" || cmd.Name() == "daybook" {
				return nil
			}
			return a.open(o)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.close()
		},
	}

	cmd.CompletionOptions.DisableDefaultCmd = true

	cmd.PersistentFlags().StringVar(&o.ConfigPath, "config", config.DefaultPath, "Path to the config file.")
	cmd.PersistentFlags().StringVar(&o.DBPath, "db", "", "Override the database path.")
	cmd.PersistentFlags().StringVar(&o.LogLevel, "log-level", "", "Override the log level (debug, info, warn, error).")
	cmd.PersistentFlags().StringVar(&o.Timezone, "tz", "", "Override the timezone used for today.")

	addTodo(cmd, a)
	addEvent(cmd, a)
	addDay(cmd, a)
	addGhost(cmd, a)
	addMaintain(cmd, a)
	addICS(cmd, a)
	addBackup(cmd, a)
	addServe(cmd, a)
	return cmd
}

func (a *app) open(o *rootOptions) error {
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return err
	}
	cfg.ApplyEnv(os.Getenv)
	if o.DBPath != "" {
		cfg.DBPath = o.DBPath
	}
	if o.LogLevel != "" {
		cfg.LogLevel = o.LogLevel
	}
	if o.Timezone != "" {
		cfg.Timezone = o.Timezone
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	a.logger = logging.Setup(cfg.LogLevel, cfg.LogFormat)
	if a.loc, err = cfg.Location(); err != nil {
		return err
	}

	dbPath, err := cfg.DatabasePath()
	if err != nil {
		return err
	}
	a.db, err = database.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}

	a.todos = store.NewTodoStore(a.db)
	a.events = store.NewEventStore(a.db)
	a.settings = store.NewSettingsStore(a.db)
	a.job = maintenance.NewJob(a.todos, a.events, a.settings,
		maintenance.WithLocation(a.loc),
		maintenance.WithLogger(a.logger),
		maintenance.WithClock(a.now),
	)
	a.agenda = agenda.NewService(a.events, a.todos, a.loc, agenda.WithClock(a.now))
	return nil
}

func (a *app) close() error {
	if a.db == nil {
		return nil
	}
	err := a.db.Close()
	a.db = nil
	return err
}

func (a *app) today() caltime.Date {
	return caltime.Today(a.now(), a.loc)
}

// output returns where commands print. Real stdout goes through
// color.Output so escapes work on every terminal.
func output(cmd *cobra.Command) io.Writer {
	w := cmd.OutOrStdout()
	if w == os.Stdout {
		return color.Output
	}
	return w
}
