// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/granabot/granabot/internal/model"
)

// Storage is the document-store contract for the ledger. Every filter is
// scoped by conversation except the explicit full-identifier recovery
// lookup performed by the router.
type Storage interface {
	InsertMany(ctx context.Context, records []model.Record) error
	FindOne(ctx context.Context, filter model.Filter) (*model.Record, error)
	Find(ctx context.Context, filter model.Filter, sort model.Sort, limit int) ([]model.Record, error)
	UpdateOne(ctx context.Context, filter model.Filter, patch model.Patch) (bool, error)
	DeleteOne(ctx context.Context, filter model.Filter) (bool, error)
	AggregateSum(ctx context.Context, filter model.Filter) (model.Summary, error)

	Migrate(ctx context.Context) error
	Close() error
}

// Oracle is the best-effort external classifier. Callers must treat any
// error as a degradation to the "other" action, never as fatal.
type Oracle interface {
	Classify(ctx context.Context, text string, hints model.OracleHints) (model.Classification, error)
}

// Messenger delivers replies back through the chat transport. A single
// inbound message may produce several replies (listing chunks).
type Messenger interface {
	Reply(ctx context.Context, conversationID, text string) error
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
