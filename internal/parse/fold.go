// Package parse implements the local grammars of the ledger interpreter:
// amount and category normalization, free-text record extraction, period
// resolution and the admin command grammar. Everything here is
// deterministic and runs before any classifier fallback.
package parse

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold lowercases s and strips combining marks, so "Farmácia" and
// "farmacia" compare equal. Transformers are stateful, so a fresh chain
// is built per call.
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, strings.ToLower(s))
	if err != nil {
		return strings.ToLower(s)
	}
	return folded
}
