// Package router orchestrates the ledger interpreter: a single pass per
// inbound message through the local grammars in strict precedence order,
// with the classifier oracle as last resort. The first matching branch
// is terminal.
package router

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/granabot/granabot/internal/common"
	"github.com/granabot/granabot/internal/model"
	"github.com/granabot/granabot/internal/parse"
	"github.com/granabot/granabot/internal/refcache"
	"github.com/granabot/granabot/internal/service"
)

// Config carries the router's external knobs.
type Config struct {
	// Now is injectable for tests; defaults to time.Now in Location.
	Now func() time.Time
	// Location is the ledger time zone all period windows are computed in.
	Location *time.Location
	// Payers maps transport sender identities to payer names.
	Payers map[string]string
	// PayerAliases maps free-text mentions ("esposa") to payer names,
	// for explicit payer filters in queries.
	PayerAliases map[string]string
	// PageChars bounds each reply chunk, matching the transport's limit.
	PageChars int
	// MaxRows caps listing size.
	MaxRows int
}

// Router classifies inbound messages and dispatches ledger operations.
type Router struct {
	storage  service.Storage
	oracle   service.Oracle
	cache    *refcache.Cache
	logger   *slog.Logger
	cfg      Config
	convLock sync.Map // conversationID -> *sync.Mutex
}

// New creates a router. The reference cache is passed in, never a
// process-wide singleton, so its lifecycle is explicit and testable.
func New(storage service.Storage, oracle service.Oracle, cache *refcache.Cache, cfg Config, logger *slog.Logger) *Router {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Now == nil {
		loc := cfg.Location
		cfg.Now = func() time.Time { return time.Now().In(loc) }
	}
	if cfg.PageChars <= 0 {
		cfg.PageChars = 3500
	}
	if cfg.MaxRows <= 0 {
		cfg.MaxRows = 50
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{
		storage: storage,
		oracle:  oracle,
		cache:   cache,
		cfg:     cfg,
		logger:  logger,
	}
}

// Handle processes one inbound message to completion. Failures are
// contained per message: the user gets natural-language guidance and the
// error is logged, never propagated to the transport loop. Messages of
// the same conversation are serialized so the cache write of a listing
// lands before a dependent edit runs.
func (r *Router) Handle(ctx context.Context, msg model.Message, out service.Messenger) {
	mu := r.lockFor(msg.ConversationID)
	mu.Lock()
	defer mu.Unlock()

	if err := r.handle(ctx, msg, out); err != nil {
		r.logger.Error("message handling failed",
			"conversation", msg.ConversationID,
			"error", err)
		r.reply(ctx, out, msg.ConversationID, common.UserMessage(err, replyStorageTrouble))
	}
}

func (r *Router) lockFor(conversationID string) *sync.Mutex {
	actual, _ := r.convLock.LoadOrStore(conversationID, &sync.Mutex{})
	return actual.(*sync.Mutex)
}

// handle runs the precedence-ordered state machine. Each numbered stage
// is terminal when it matches.
func (r *Router) handle(ctx context.Context, msg model.Message, out service.Messenger) error {
	// 1. Admin commands beat everything else.
	if cmd, ok := parse.ParseAdmin(msg.Text); ok {
		return r.dispatchAdmin(ctx, msg, cmd, out)
	}

	// 2. List requests are resolved locally; no oracle fallback here.
	if isListRequest(msg.Text) {
		if category, ok := parse.FindCategory(msg.Text); ok {
			return r.listCategory(ctx, msg, category, out)
		}
		return r.replyErr(ctx, out, msg.ConversationID, replyNeedCategory)
	}

	// 3. Two or more locally extracted records are an authoritative
	// multi-record write; the oracle is bypassed for determinism.
	if entries := parse.ExtractMultiple(msg.Text); len(entries) >= 2 {
		return r.recordEntries(ctx, msg, entries, out)
	}

	// 4. Local grammars were inconclusive; consult the oracle.
	return r.classifyAndDispatch(ctx, msg, out)
}

// classifyAndDispatch delegates to the oracle. Any oracle failure maps
// explicitly to the "other" action — a visible branch, not a swallowed
// exception.
func (r *Router) classifyAndDispatch(ctx context.Context, msg model.Message, out service.Messenger) error {
	hints := model.OracleHints{
		Payer:      r.payerOf(msg.Sender),
		Categories: model.Categories,
	}

	classification, err := r.oracle.Classify(ctx, msg.Text, hints)
	if err != nil {
		r.logger.Warn("oracle failed, degrading to other",
			"conversation", msg.ConversationID,
			"error", err)
		classification = model.Classification{Action: model.ActionOther}
	}

	switch classification.Action {
	case model.ActionRecord:
		return r.recordFromClassification(ctx, msg, classification, out)
	case model.ActionQuery:
		return r.sumQuery(ctx, msg, classification, out)
	default:
		return r.replyErr(ctx, out, msg.ConversationID, replyHelp)
	}
}

// recordFromClassification writes a single record. Local extraction has
// priority; the oracle's own fields are the fallback.
func (r *Router) recordFromClassification(ctx context.Context, msg model.Message, c model.Classification, out service.Messenger) error {
	entry, ok := parse.ExtractSingle(msg.Text)
	if !ok {
		if c.Amount == 0 {
			return r.replyErr(ctx, out, msg.ConversationID, replyRecordHint)
		}
		category := c.Category
		if category == "" {
			category = c.Filters.Category
		}
		entry = parse.Entry{Category: parse.NormalizeCategory(category), Amount: c.Amount}
	}
	return r.recordEntries(ctx, msg, []parse.Entry{entry}, out)
}

// recordEntries persists the extracted entries as new records and
// confirms them to the conversation.
func (r *Router) recordEntries(ctx context.Context, msg model.Message, entries []parse.Entry, out service.Messenger) error {
	now := r.cfg.Now()
	records := make([]model.Record, len(entries))
	for i, entry := range entries {
		records[i] = model.Record{
			ConversationID: msg.ConversationID,
			Timestamp:      now,
			Amount:         entry.Amount,
			Category:       entry.Category,
			Payer:          r.payerOf(msg.Sender),
			OriginalText:   msg.Text,
		}
	}

	if err := r.storage.InsertMany(ctx, records); err != nil {
		return err
	}

	return r.replyErr(ctx, out, msg.ConversationID, formatRecorded(records))
}

// payerOf maps a transport sender identity to a payer name.
func (r *Router) payerOf(sender string) string {
	if payer, ok := r.cfg.Payers[sender]; ok {
		return payer
	}
	return model.PayerUnknown
}

func (r *Router) reply(ctx context.Context, out service.Messenger, conversationID, text string) {
	if err := out.Reply(ctx, conversationID, text); err != nil {
		r.logger.Error("reply delivery failed",
			"conversation", conversationID,
			"error", err)
	}
}

func (r *Router) replyErr(ctx context.Context, out service.Messenger, conversationID, text string) error {
	return out.Reply(ctx, conversationID, text)
}
