// Package storage provides the data persistence layer for the ledger.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/granabot/granabot/internal/model"
)

// Validation errors.
var (
	ErrNilContext    = errors.New("context cannot be nil")
	ErrEmptyString   = errors.New("string parameter cannot be empty")
	ErrNilParameter  = errors.New("parameter cannot be nil")
	ErrEmptySlice    = errors.New("slice cannot be empty")
	ErrInvalidRecord = errors.New("invalid record")
	ErrInvalidFilter = errors.New("invalid filter")
	ErrInvalidSort   = errors.New("invalid sort field")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateRecords validates a slice of records before insertion.
func validateRecords(records []model.Record) error {
	if records == nil {
		return fmt.Errorf("%w: records", ErrNilParameter)
	}
	if len(records) == 0 {
		return fmt.Errorf("%w: records", ErrEmptySlice)
	}
	for i := range records {
		if err := validateRecord(&records[i]); err != nil {
			return fmt.Errorf("record at index %d: %w", i, err)
		}
	}
	return nil
}

// validateRecord enforces the write invariants: conversation scoping, a
// timestamp, and a category that is a member of the canonical set — a
// raw, unnormalized category is never persisted.
func validateRecord(r *model.Record) error {
	if r == nil {
		return fmt.Errorf("%w: record", ErrNilParameter)
	}
	if r.ConversationID == "" {
		return fmt.Errorf("%w: missing conversation id", ErrInvalidRecord)
	}
	if r.Timestamp.IsZero() {
		return fmt.Errorf("%w: missing timestamp", ErrInvalidRecord)
	}
	if !model.IsCanonicalCategory(r.Category) {
		return fmt.Errorf("%w: category %q is not canonical", ErrInvalidRecord, r.Category)
	}
	if r.Payer == "" {
		return fmt.Errorf("%w: missing payer", ErrInvalidRecord)
	}
	return nil
}

// validateMutationFilter guards update/delete filters: an unbounded
// mutation (no id and no conversation scope) is a programming error.
func validateMutationFilter(f model.Filter) error {
	if f.ID == "" && f.ConversationID == "" {
		return fmt.Errorf("%w: mutation requires an id or conversation scope", ErrInvalidFilter)
	}
	return nil
}

// validatePatch requires at least one field to change.
func validatePatch(p model.Patch) error {
	if p.Category == nil && p.Amount == nil {
		return fmt.Errorf("%w: patch", ErrNilParameter)
	}
	if p.Category != nil && !model.IsCanonicalCategory(*p.Category) {
		return fmt.Errorf("%w: category %q is not canonical", ErrInvalidRecord, *p.Category)
	}
	return nil
}
