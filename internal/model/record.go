// Package model defines the domain types for the conversational ledger.
package model

import (
	"strings"
	"time"
)

// Record is a single expense entry in the ledger. ID and Timestamp are
// immutable once persisted; Amount and Category may change through edit
// commands. OriginalText keeps the verbatim source message for auditing.
type Record struct {
	Timestamp      time.Time
	ID             string
	ConversationID string
	Category       string
	Payer          string
	OriginalText   string
	Amount         float64
}

// ShortIDLength is the number of trailing hex characters shown next to a
// listing row so users can reference the record in edit commands.
const ShortIDLength = 6

// ShortID returns the trailing hex characters of the record identifier,
// lowercased. Returns the whole ID when it is shorter than that.
func (r *Record) ShortID() string {
	id := strings.ToLower(r.ID)
	if len(id) <= ShortIDLength {
		return id
	}
	return id[len(id)-ShortIDLength:]
}

// Message is one inbound chat message as delivered by the transport.
type Message struct {
	ConversationID string
	Sender         string
	Text           string
	FromSelf       bool
}
