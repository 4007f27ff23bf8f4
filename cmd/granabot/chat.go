package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/granabot/granabot/internal/tui"
)

func chatCmd() *cobra.Command {
	var conversationID string
	var sender string

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Open a local chat with the ledger interpreter",
		Long: `Starts an interactive terminal chat that runs messages through the
same interpreter the webhook transport uses. Useful for trying grammars
and inspecting the ledger without a messaging platform.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			r, store, err := newRouter(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			if conversationID == "" {
				conversationID = uuid.NewString()
			}

			if err := tui.Run(r, conversationID, sender); err != nil {
				return fmt.Errorf("chat session failed: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&conversationID, "conversation", "", "conversation id to chat in (default: a fresh one)")
	cmd.Flags().StringVar(&sender, "sender", "local", "sender identity, mapped to a payer via ledger.payers")

	return cmd
}
