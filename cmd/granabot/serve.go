package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/granabot/granabot/internal/model"
	"github.com/granabot/granabot/internal/router"
)

// inboundMessage is the webhook payload posted by the chat transport.
type inboundMessage struct {
	ConversationID string `json:"conversationId"`
	Sender         string `json:"sender"`
	Text           string `json:"text"`
	FromSelf       bool   `json:"fromSelf"`
}

type outboundReplies struct {
	Replies []string `json:"replies"`
}

// replyBuffer implements service.Messenger by collecting replies for the
// HTTP response body.
type replyBuffer struct {
	replies []string
}

func (b *replyBuffer) Reply(_ context.Context, _ string, text string) error {
	b.replies = append(b.replies, text)
	return nil
}

func serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the webhook server for a chat transport",
		Long: `Listens for POST /message webhook calls carrying inbound chat messages
and answers with the interpreter's replies. Messages from conversations
outside ledger.allowed_conversations are ignored.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			r, store, err := newRouter(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			allowed := allowedConversations()

			mux := http.NewServeMux()
			mux.HandleFunc("/message", messageHandler(r, allowed))
			mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusOK)
			})

			server := &http.Server{
				Addr:              addr,
				Handler:           mux,
				ReadHeaderTimeout: 10 * time.Second,
			}

			errChan := make(chan error, 1)
			go func() {
				slog.Info("Webhook server listening", "addr", addr)
				errChan <- server.ListenAndServe()
			}()

			select {
			case <-ctx.Done():
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				return server.Shutdown(shutdownCtx)
			case err := <-errChan:
				return err
			}
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8420", "listen address")

	return cmd
}

func allowedConversations() map[string]bool {
	allowed := make(map[string]bool)
	for _, id := range viper.GetStringSlice("ledger.allowed_conversations") {
		allowed[id] = true
	}
	return allowed
}

// messageHandler processes one inbound message synchronously and returns
// the replies. Self-echoes and unlisted conversations are acknowledged
// with an empty reply set, never an error: the transport must not retry
// them.
func messageHandler(r *router.Router, allowed map[string]bool) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var inbound inboundMessage
		if err := json.NewDecoder(req.Body).Decode(&inbound); err != nil {
			http.Error(w, "invalid JSON body", http.StatusBadRequest)
			return
		}
		if inbound.ConversationID == "" || inbound.Text == "" {
			http.Error(w, "conversationId and text are required", http.StatusBadRequest)
			return
		}

		out := &replyBuffer{}
		if !inbound.FromSelf && (len(allowed) == 0 || allowed[inbound.ConversationID]) {
			r.Handle(req.Context(), model.Message{
				ConversationID: inbound.ConversationID,
				Sender:         inbound.Sender,
				Text:           inbound.Text,
			}, out)
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(outboundReplies{Replies: out.replies}); err != nil {
			slog.Error("Failed to encode webhook response", "error", err)
		}
	}
}
