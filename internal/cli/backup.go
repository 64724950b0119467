package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dukerupert/daybook/internal/backup"
)

const passphraseEnv = "DAYBOOK_BACKUP_PASSPHRASE"

func addBackup(topLevel *cobra.Command, a *app) {
	var passphrase string
	passphraseFlag := func(cmd *cobra.Command) {
		cmd.Flags().StringVar(&passphrase, "passphrase", "", "Encryption passphrase (default $"+passphraseEnv+").")
	}
	resolve := func() (string, error) {
		if passphrase != "" {
			return passphrase, nil
		}
		if p := os.Getenv(passphraseEnv); p != "" {
			return p, nil
		}
		return "", errors.New("a passphrase is required: pass --passphrase or set " + passphraseEnv)
	}

	snap := &cobra.Command{
		Use:     "backup <file>",
		Short:   "Write an encrypted snapshot of the database",
		Example: "  daybook backup ~/daybook.db.enc --passphrase hunter2",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := resolve()
			if err != nil {
				return err
			}
			if err := backup.Snapshot(cmd.Context(), a.db, args[0], p); err != nil {
				return err
			}
			fmt.Fprintf(output(cmd), "backup written to %s\n", args[0])
			return nil
		},
	}
	passphraseFlag(snap)

	restore := &cobra.Command{
		Use:   "restore <file>",
		Short: "Replace the database with an encrypted snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := resolve()
			if err != nil {
				return err
			}
			dbPath, err := a.cfg.DatabasePath()
			if err != nil {
				return err
			}
			if dbPath == ":memory:" {
				return errors.New("cannot restore into an in-memory database")
			}
			if err := a.close(); err != nil {
				return err
			}
			if err := backup.Restore(cmd.Context(), args[0], dbPath, p); err != nil {
				return err
			}
			fmt.Fprintf(output(cmd), "restored %s\n", dbPath)
			return nil
		},
	}
	passphraseFlag(restore)

	topLevel.AddCommand(snap, restore)
}
