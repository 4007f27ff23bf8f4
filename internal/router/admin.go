package router

import (
	"context"

	"github.com/granabot/granabot/internal/model"
	"github.com/granabot/granabot/internal/parse"
	"github.com/granabot/granabot/internal/service"
)

// dispatchAdmin executes a parsed admin command. Reference resolution
// runs against the conversation's cached listing only; when it fails,
// the user is told to list again and no storage call is made.
func (r *Router) dispatchAdmin(ctx context.Context, msg model.Message, cmd parse.AdminCommand, out service.Messenger) error {
	if cmd.Op == parse.OpListShortcut {
		return r.listCategory(ctx, msg, cmd.Category, out)
	}

	id, ok := r.cache.Resolve(msg.ConversationID, cmd.Ref)
	if !ok {
		return r.replyErr(ctx, out, msg.ConversationID, replyRefNotFound)
	}

	record, err := r.lookupRecord(ctx, msg.ConversationID, id, cmd.Ref.Kind)
	if err != nil {
		return err
	}
	if record == nil {
		return r.replyErr(ctx, out, msg.ConversationID, replyRecordGone)
	}

	target := model.Filter{ID: record.ID, ConversationID: record.ConversationID}

	switch cmd.Op {
	case parse.OpDelete:
		deleted, err := r.storage.DeleteOne(ctx, target)
		if err != nil {
			return err
		}
		if !deleted {
			return r.replyErr(ctx, out, msg.ConversationID, replyRecordGone)
		}
		return r.replyErr(ctx, out, msg.ConversationID, formatDeleted(record))

	case parse.OpMoveCategory:
		updated, err := r.storage.UpdateOne(ctx, target, model.Patch{Category: &cmd.Category})
		if err != nil {
			return err
		}
		if !updated {
			return r.replyErr(ctx, out, msg.ConversationID, replyRecordGone)
		}
		return r.replyErr(ctx, out, msg.ConversationID, formatMoved(record, cmd.Category))

	case parse.OpChangeAmount:
		amount := cmd.Amount
		updated, err := r.storage.UpdateOne(ctx, target, model.Patch{Amount: &amount})
		if err != nil {
			return err
		}
		if !updated {
			return r.replyErr(ctx, out, msg.ConversationID, replyRecordGone)
		}
		return r.replyErr(ctx, out, msg.ConversationID, formatAmountChanged(record, amount))
	}

	return r.replyErr(ctx, out, msg.ConversationID, replyHelp)
}

// lookupRecord fetches the referenced record, scoped to the conversation.
// A full-identifier miss retries unscoped: cross-conversation recovery is
// an intentional fallback, never the primary path.
func (r *Router) lookupRecord(ctx context.Context, conversationID, id string, kind model.RefKind) (*model.Record, error) {
	record, err := r.storage.FindOne(ctx, model.Filter{ID: id, ConversationID: conversationID})
	if err != nil {
		return nil, err
	}
	if record == nil && kind == model.RefFullID {
		record, err = r.storage.FindOne(ctx, model.Filter{ID: id})
		if err != nil {
			return nil, err
		}
	}
	return record, nil
}
