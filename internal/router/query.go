package router

import (
	"context"
	"strings"

	"github.com/granabot/granabot/internal/model"
	"github.com/granabot/granabot/internal/parse"
	"github.com/granabot/granabot/internal/service"
)

var listVerbs = []string{"listar", "lista", "liste", "mostrar", "mostra", "mostre", "ver", "exibir", "exibe"}
var listNouns = []string{"gastos", "lancamentos", "despesas"}

// isListRequest detects a listing verb plus an expenses noun.
func isListRequest(text string) bool {
	folded := parse.Fold(text)
	hasVerb := false
	for _, verb := range listVerbs {
		if containsWord(folded, verb) {
			hasVerb = true
			break
		}
	}
	if !hasVerb {
		return false
	}
	for _, noun := range listNouns {
		if containsWord(folded, noun) {
			return true
		}
	}
	return false
}

func containsWord(folded, word string) bool {
	return indexWord(folded, word) != -1
}

// indexWord returns the position of the first word-bounded occurrence of
// word in folded, or -1.
func indexWord(folded, word string) int {
	idx := strings.Index(folded, word)
	for idx != -1 {
		before := idx == 0 || !isLetter(folded[idx-1])
		afterIdx := idx + len(word)
		after := afterIdx >= len(folded) || !isLetter(folded[afterIdx])
		if before && after {
			return idx
		}
		next := strings.Index(folded[idx+1:], word)
		if next == -1 {
			return -1
		}
		idx += 1 + next
	}
	return -1
}

func isLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

// buildFilter assembles the storage filter for queries and listings.
// Conversation scoping is unconditional. The payer filter applies only
// when explicitly requested in the text — the default is both payers.
// The period is the resolved keyword window or the current-month default,
// never all time.
func (r *Router) buildFilter(msg model.Message, category, periodHint string) model.Filter {
	now := r.cfg.Now().In(r.cfg.Location)

	period, ok := parse.ResolvePeriod(msg.Text, now)
	if !ok && periodHint != "" {
		period, ok = parse.ResolvePeriod(periodHint, now)
	}
	if !ok {
		period = parse.CurrentMonth(now)
	}

	return model.Filter{
		ConversationID: msg.ConversationID,
		Category:       category,
		Payer:          r.explicitPayer(msg),
		Period:         &period,
	}
}

// explicitPayer returns a payer name only when the message names one:
// a configured alias ("da esposa"), a payer's own name, or a first-person
// possessive mapping to the sender. When several payers are mentioned the
// earliest mention wins; equal positions break on the payer name, so the
// result never depends on map iteration order.
func (r *Router) explicitPayer(msg model.Message) string {
	folded := parse.Fold(msg.Text)

	best := ""
	bestPos := -1
	consider := func(mention, payer string) {
		idx := indexWord(folded, parse.Fold(mention))
		if idx == -1 {
			return
		}
		if bestPos == -1 || idx < bestPos || (idx == bestPos && payer < best) {
			best, bestPos = payer, idx
		}
	}

	for alias, payer := range r.cfg.PayerAliases {
		consider(alias, payer)
	}
	for _, payer := range r.cfg.Payers {
		consider(payer, payer)
	}
	if bestPos != -1 {
		return best
	}

	for _, possessive := range []string{"meus", "meu", "minhas", "minha"} {
		if containsWord(folded, possessive) {
			return r.payerOf(msg.Sender)
		}
	}
	return ""
}

// listCategory produces the detail listing: ordered rows with short-id
// hints, paginated into transport-sized chunks, and the reference cache
// replaced with the displayed order.
func (r *Router) listCategory(ctx context.Context, msg model.Message, category string, out service.Messenger) error {
	filter := r.buildFilter(msg, category, "")

	records, err := r.storage.Find(ctx, filter, model.SortNewestFirst, r.cfg.MaxRows)
	if err != nil {
		return err
	}

	if len(records) == 0 {
		return r.replyErr(ctx, out, msg.ConversationID, formatEmptyListing(category, filter.Period.Label))
	}

	ids := make([]string, len(records))
	for i := range records {
		ids[i] = records[i].ID
	}
	r.cache.Put(msg.ConversationID, ids)

	for _, chunk := range formatListing(records, category, filter.Period.Label, r.cfg.PageChars) {
		if err := out.Reply(ctx, msg.ConversationID, chunk); err != nil {
			return err
		}
	}
	return nil
}

// sumQuery produces the summation form: count plus total via an
// aggregate, no rows and no cache population.
func (r *Router) sumQuery(ctx context.Context, msg model.Message, c model.Classification, out service.Messenger) error {
	// Prefer the oracle's filter hint when it maps to a canonical
	// category; otherwise scan the message. No match means no category
	// filter at all, not a Diversos fallback.
	category := ""
	if found, ok := parse.FindCategory(c.Filters.Category); ok {
		category = found
	} else if found, ok := parse.FindCategory(msg.Text); ok {
		category = found
	}

	filter := r.buildFilter(msg, category, c.Filters.Period)

	summary, err := r.storage.AggregateSum(ctx, filter)
	if err != nil {
		return err
	}

	return r.replyErr(ctx, out, msg.ConversationID, formatSummary(summary, category, filter.Period.Label))
}
