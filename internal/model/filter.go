package model

import "time"

// Period is a half-open time window [Start, End) in the ledger's
// configured time zone. Label is the human name shown in replies.
type Period struct {
	Start time.Time
	End   time.Time
	Label string
}

// Contains reports whether t falls inside the window.
func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.Start) && t.Before(p.End)
}

// Filter selects records in the store. Zero-valued fields are ignored.
// ConversationID is required for every operation except the full-identifier
// recovery lookup.
type Filter struct {
	Period         *Period
	ID             string
	ConversationID string
	Category       string // matched case-insensitively against the canonical value
	Payer          string
}

// Sort orders query results. Field must be one of the store's sortable
// columns; Desc selects descending order.
type Sort struct {
	Field string
	Desc  bool
}

// SortNewestFirst is the default listing order.
var SortNewestFirst = Sort{Field: "timestamp", Desc: true}

// Patch holds the mutable record fields for an update. Nil fields are
// left untouched.
type Patch struct {
	Category *string
	Amount   *float64
}

// Summary is the result of an aggregate query.
type Summary struct {
	Count int64
	Total float64
}
