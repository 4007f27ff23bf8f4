package main

import (
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/granabot/granabot/internal/storage"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := storage.NewLedgerStorage(viper.GetString("storage.path"))
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Migrate(cmd.Context()); err != nil {
				return err
			}

			slog.Info("Database schema is up to date",
				"path", viper.GetString("storage.path"),
				"version", storage.ExpectedSchemaVersion)
			return nil
		},
	}
}
