package parse

import "regexp"

// Entry is one (category, amount) pair extracted from free text.
type Entry struct {
	Category string
	Amount   float64
}

var (
	// A category-like token (letters, spaces, hyphen/underscore/slash,
	// bounded length) followed by an optional separator and an amount.
	singleEntryRe = regexp.MustCompile(`(?i)^\s*([\p{L}][\p{L} \-_/]{0,39}?)\s*[:\-]?\s*(?:r\$\s*)?(-?\d[\d.,]*)\s*$`)

	// Chunk separators for multi-record messages: conjunctions and
	// punctuation. A comma glued to digits is a decimal separator, so the
	// comma form requires trailing whitespace.
	chunkSeparatorRe = regexp.MustCompile(`(?i)\s+e\s+|\s*&\s*|\s*\+\s*|\s*;\s*|,\s+`)
)

// ExtractSingle parses one "category amount" message. The category goes
// through NormalizeCategory (so it is always canonical) and the amount
// through Amount; either failing yields no entry.
func ExtractSingle(text string) (Entry, bool) {
	m := singleEntryRe.FindStringSubmatch(text)
	if m == nil {
		return Entry{}, false
	}
	amount, err := Amount(m[2])
	if err != nil {
		return Entry{}, false
	}
	return Entry{Category: NormalizeCategory(m[1]), Amount: amount}, true
}

// ExtractMultiple splits a message on conjunctions ("e", "&", "+") or
// punctuation and extracts each chunk with the single-record rule.
// Chunks that do not parse are discarded; zero, one or many entries are
// all valid outcomes.
func ExtractMultiple(text string) []Entry {
	var entries []Entry
	for _, chunk := range chunkSeparatorRe.Split(text, -1) {
		if entry, ok := ExtractSingle(chunk); ok {
			entries = append(entries, entry)
		}
	}
	return entries
}
