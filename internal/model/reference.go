package model

// RefKind discriminates the reference grammar forms a user can write
// after a listing.
type RefKind int

const (
	// RefNone means no reference was recognized.
	RefNone RefKind = iota
	// RefOrdinal is a 1-indexed position into the last listing (#3).
	RefOrdinal
	// RefShortID is the trailing 6 hex characters of a record id.
	RefShortID
	// RefFullID is a complete 24 hex character record id.
	RefFullID
)

// Reference is a user-supplied pointer to a previously shown record.
// Hex is set for short and full forms, Ordinal for the #n form.
type Reference struct {
	Hex     string
	Ordinal int
	Kind    RefKind
}
