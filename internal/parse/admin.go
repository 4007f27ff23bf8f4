package parse

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/granabot/granabot/internal/model"
)

// AdminOp tags the admin command variants.
type AdminOp int

const (
	// OpNone means the message is not an admin command.
	OpNone AdminOp = iota
	// OpMoveCategory re-categorizes a referenced record.
	OpMoveCategory
	// OpChangeAmount edits a referenced record's amount.
	OpChangeAmount
	// OpDelete removes a referenced record.
	OpDelete
	// OpListShortcut is the "listar gastos diversos" phrase, mapped
	// straight to a category listing.
	OpListShortcut
)

// AdminCommand is the parsed form of an admin message. Ref is syntactic
// only — resolution against the cached listing happens later.
type AdminCommand struct {
	Category string
	Ref      model.Reference
	Amount   float64
	Op       AdminOp
}

// refPattern accepts #n, a 6 or 24 hex character token, optionally
// prefixed with the word "id".
const refPattern = `(?:id\s+)?(#\d+|[0-9a-f]{24}|[0-9a-f]{6})`

var (
	deleteRe = regexp.MustCompile(`^\s*(?:apagar|excluir|deletar|remover)\s+(?:o\s+|a\s+)?` + refPattern + `\s*$`)
	changeRe = regexp.MustCompile(`^\s*(?:alterar|editar|mudar)\s+(?:o\s+|a\s+)?` + refPattern + `\s+(?:valor\s+|para\s+|pra\s+|=\s*)?(-?[\d.,]+)\s*$`)
	moveRe   = regexp.MustCompile(`^\s*(?:mover|mudar|trocar|colocar)\s+(?:o\s+|a\s+)?` + refPattern + `\s+(?:para|pra)\s+(.+?)\s*$`)
	listRe   = regexp.MustCompile(`(?:listar|lista|liste|mostrar|mostra|mostre|ver|exibir)\s+(?:os\s+|as\s+)?gastos\s+(?:de\s+|do\s+|da\s+|com\s+|em\s+)?(?:diversos|outros|misc)\b`)
)

// adminMatchers are tried in order. "mudar" appears in both the
// change-amount and move-category templates, so change-amount runs first
// and only claims the message when its operand parses as an amount;
// otherwise the move matcher gets its chance.
var adminMatchers = []func(string) (AdminCommand, bool){
	matchDelete,
	matchChangeAmount,
	matchMoveCategory,
	matchListShortcut,
}

// ParseAdmin recognizes the admin command grammar. It performs no cache
// or storage lookups.
func ParseAdmin(text string) (AdminCommand, bool) {
	folded := Fold(text)
	for _, match := range adminMatchers {
		if cmd, ok := match(folded); ok {
			return cmd, true
		}
	}
	return AdminCommand{Op: OpNone}, false
}

func matchDelete(folded string) (AdminCommand, bool) {
	m := deleteRe.FindStringSubmatch(folded)
	if m == nil {
		return AdminCommand{}, false
	}
	ref, ok := ParseReference(m[1])
	if !ok {
		return AdminCommand{}, false
	}
	return AdminCommand{Op: OpDelete, Ref: ref}, true
}

func matchChangeAmount(folded string) (AdminCommand, bool) {
	m := changeRe.FindStringSubmatch(folded)
	if m == nil {
		return AdminCommand{}, false
	}
	ref, ok := ParseReference(m[1])
	if !ok {
		return AdminCommand{}, false
	}
	amount, err := Amount(m[2])
	if err != nil {
		return AdminCommand{}, false
	}
	return AdminCommand{Op: OpChangeAmount, Ref: ref, Amount: amount}, true
}

func matchMoveCategory(folded string) (AdminCommand, bool) {
	m := moveRe.FindStringSubmatch(folded)
	if m == nil {
		return AdminCommand{}, false
	}
	ref, ok := ParseReference(m[1])
	if !ok {
		return AdminCommand{}, false
	}
	return AdminCommand{Op: OpMoveCategory, Ref: ref, Category: NormalizeCategory(m[2])}, true
}

func matchListShortcut(folded string) (AdminCommand, bool) {
	if !listRe.MatchString(folded) {
		return AdminCommand{}, false
	}
	return AdminCommand{Op: OpListShortcut, Category: model.CategoryMisc}, true
}

var hexTokenRe = regexp.MustCompile(`^[0-9a-f]+$`)

// ParseReference classifies a single reference token: ordinal (#n with
// n ≥ 1), short id (6 hex chars) or full id (24 hex chars).
func ParseReference(token string) (model.Reference, bool) {
	token = strings.ToLower(strings.TrimSpace(token))
	token = strings.TrimSpace(strings.TrimPrefix(token, "id "))

	if rest, ok := strings.CutPrefix(token, "#"); ok {
		n, err := strconv.Atoi(rest)
		if err != nil || n < 1 {
			return model.Reference{}, false
		}
		return model.Reference{Kind: model.RefOrdinal, Ordinal: n}, true
	}

	if !hexTokenRe.MatchString(token) {
		return model.Reference{}, false
	}
	switch len(token) {
	case model.ShortIDLength:
		return model.Reference{Kind: model.RefShortID, Hex: token}, true
	case 24:
		return model.Reference{Kind: model.RefFullID, Hex: token}, true
	}
	return model.Reference{}, false
}
