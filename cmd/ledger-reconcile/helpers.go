package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/ledger-reconcile/internal/cli"
	"github.com/Veraticus/ledger-reconcile/internal/storage"
)

// getStorage opens the configured database and brings the schema up to date.
// The returned cleanup must be deferred.
func getStorage(ctx context.Context) (*storage.SQLiteStorage, func(), error) {
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		dbPath = filepath.Join(home, ".local", "share", "ledger-reconcile", "ledger.db")
	}

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	cleanup := func() { _ = store.Close() }
	return store, cleanup, nil
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database schema migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, cleanup, err := getStorage(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()
			fmt.Println(cli.FormatSuccess("Database schema is up to date"))
			return nil
		},
	}
}
