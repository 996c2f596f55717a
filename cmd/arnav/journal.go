package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kunalpal97/ar-indoor-nav/internal/config"
	"github.com/kunalpal97/ar-indoor-nav/internal/database"
	"github.com/kunalpal97/ar-indoor-nav/internal/storage/gormstore"
	"github.com/spf13/cobra"
)

var (
	flagJournalDB       string
	flagJournalSession  string
	flagJournalPostgres bool
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Print a journaled session as JSON",
	Long: `Reads one session back from a SQLite journal file, or from Postgres with
--postgres, and prints its placements, attachments and uploads. Without
--session the most recent session is printed.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr := database.NewManager(Zlog)
		var err error
		if flagJournalPostgres {
			err = mgr.ConnectPostgres(config.GetStorageConfig().DB)
		} else {
			path := flagJournalDB
			if path == "" {
				path = config.GetStorageConfig().SQLite.Path
			}
			if path == "" {
				return errors.New("--db is required when storage.sqlite.path is empty")
			}
			err = mgr.ConnectSQLite(path)
		}
		if err != nil {
			return err
		}
		defer mgr.Close()

		h, err := gormstore.LoadHistory(mgr.DB, flagJournalSession)
		if err != nil {
			return fmt.Errorf("load journal: %w", err)
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(h)
	},
}

func init() {
	journalCmd.Flags().StringVar(&flagJournalDB, "db", "", "SQLite journal file (default: storage.sqlite.path)")
	journalCmd.Flags().StringVar(&flagJournalSession, "session", "", "session ID (default: most recent)")
	journalCmd.Flags().BoolVar(&flagJournalPostgres, "postgres", false, "read from the configured Postgres database")
}
