package model

// OracleAction is the intent inferred by the external classifier when
// the local grammars do not conclusively match.
type OracleAction string

const (
	// ActionRecord means the message describes a new expense.
	ActionRecord OracleAction = "record"
	// ActionQuery means the message asks about recorded expenses.
	ActionQuery OracleAction = "query"
	// ActionOther means no ledger operation applies.
	ActionOther OracleAction = "other"
)

// Classification is the oracle's advisory verdict for one message.
// Amount and Category are only meaningful for ActionRecord; Filters only
// for ActionQuery.
type Classification struct {
	Action   OracleAction
	Category string
	Filters  OracleFilters
	Amount   float64
}

// OracleFilters carries free-text filter hints extracted by the oracle.
// They are re-normalized locally before touching storage.
type OracleFilters struct {
	Category string
	Payer    string
	Period   string
}

// OracleHints gives the oracle context about the sender and the
// canonical vocabulary.
type OracleHints struct {
	Payer      string
	Categories []string
}
