package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/granabot/granabot/internal/ofx"
)

const importBatchSize = 100

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import external data into the ledger",
	}
	cmd.AddCommand(importOFXCmd())
	return cmd
}

func importOFXCmd() *cobra.Command {
	var conversationID string
	var payer string

	cmd := &cobra.Command{
		Use:   "ofx <file>",
		Short: "Import an OFX/QFX bank statement as expense records",
		Long: `Parses an OFX or QFX bank statement and writes its debit transactions
into a conversation's ledger. Credits are skipped; each memo is scanned
for a category mention and falls back to Diversos.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			importer, err := ofx.NewImporter(conversationID, payer)
			if err != nil {
				return err
			}

			file, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open OFX file: %w", err)
			}
			defer file.Close()

			records, err := importer.Parse(file)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				slog.Info("No debit transactions found in statement")
				return nil
			}

			store, err := newStorage(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			bar := progressbar.Default(int64(len(records)), "importing")
			for start := 0; start < len(records); start += importBatchSize {
				end := min(start+importBatchSize, len(records))
				if err := store.InsertMany(ctx, records[start:end]); err != nil {
					return fmt.Errorf("failed to insert records: %w", err)
				}
				_ = bar.Add(end - start)
			}
			_ = bar.Finish()

			first, last := ofx.Window(records)
			slog.Info("Import complete",
				"records", len(records),
				"from", first.Format("2006-01-02"),
				"to", last.Format("2006-01-02"),
				"conversation", conversationID)
			return nil
		},
	}

	cmd.Flags().StringVar(&conversationID, "conversation", "", "conversation id to import into (required)")
	cmd.Flags().StringVar(&payer, "payer", "", "payer name for the imported records")
	_ = cmd.MarkFlagRequired("conversation")

	return cmd
}
