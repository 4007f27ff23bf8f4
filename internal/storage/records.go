package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/granabot/granabot/internal/model"
)

const recordColumns = "id, conversation_id, timestamp, amount, category, payer, original_text"

// InsertMany persists the records in a single transaction, minting an
// identifier for any record that has none.
func (s *LedgerStorage) InsertMany(ctx context.Context, records []model.Record) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateRecords(records); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO records (`+recordColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i := range records {
		if records[i].ID == "" {
			id, idErr := newRecordID()
			if idErr != nil {
				return idErr
			}
			records[i].ID = id
		}
		r := &records[i]
		// Timestamps are stored in UTC: the driver binds time.Time as text
		// including the offset, and SQLite compares that text lexically, so
		// mixed offsets would break range filters and ORDER BY.
		if _, err := stmt.ExecContext(ctx,
			strings.ToLower(r.ID), r.ConversationID, r.Timestamp.UTC(),
			r.Amount, r.Category, r.Payer, r.OriginalText); err != nil {
			return fmt.Errorf("failed to insert record %s: %w", r.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit insert: %w", err)
	}

	slog.Debug("inserted records", "count", len(records))
	return nil
}

// FindOne returns the first record matching the filter, or nil when none
// matches.
func (s *LedgerStorage) FindOne(ctx context.Context, filter model.Filter) (*model.Record, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	where, args := buildWhere(filter)
	query := "SELECT " + recordColumns + " FROM records" + where + " LIMIT 1"

	var r model.Record
	err := s.db.QueryRowContext(ctx, query, args...).Scan(
		&r.ID, &r.ConversationID, &r.Timestamp,
		&r.Amount, &r.Category, &r.Payer, &r.OriginalText)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query record: %w", err)
	}
	return &r, nil
}

// sortColumns whitelists the sortable fields.
var sortColumns = map[string]string{
	"timestamp": "timestamp",
	"amount":    "amount",
	"category":  "category",
}

// Find returns up to limit records matching the filter, ordered by sort.
// A non-positive limit means no cap.
func (s *LedgerStorage) Find(ctx context.Context, filter model.Filter, sort model.Sort, limit int) ([]model.Record, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	column, ok := sortColumns[sort.Field]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSort, sort.Field)
	}
	direction := "ASC"
	if sort.Desc {
		direction = "DESC"
	}

	where, args := buildWhere(filter)
	query := "SELECT " + recordColumns + " FROM records" + where +
		" ORDER BY " + column + " " + direction
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []model.Record
	for rows.Next() {
		var r model.Record
		if err := rows.Scan(&r.ID, &r.ConversationID, &r.Timestamp,
			&r.Amount, &r.Category, &r.Payer, &r.OriginalText); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating records: %w", err)
	}

	slog.Debug("retrieved records", "count", len(records))
	return records, nil
}

// UpdateOne applies the patch to the first record matching the filter.
// Returns false when nothing matched.
func (s *LedgerStorage) UpdateOne(ctx context.Context, filter model.Filter, patch model.Patch) (bool, error) {
	if err := validateContext(ctx); err != nil {
		return false, err
	}
	if err := validateMutationFilter(filter); err != nil {
		return false, err
	}
	if err := validatePatch(patch); err != nil {
		return false, err
	}

	var sets []string
	var args []any
	if patch.Category != nil {
		sets = append(sets, "category = ?")
		args = append(args, *patch.Category)
	}
	if patch.Amount != nil {
		sets = append(sets, "amount = ?")
		args = append(args, *patch.Amount)
	}

	where, whereArgs := buildWhere(filter)
	query := "UPDATE records SET " + strings.Join(sets, ", ") +
		" WHERE id = (SELECT id FROM records" + where + " LIMIT 1)"
	args = append(args, whereArgs...)

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to update record: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read update result: %w", err)
	}
	return affected > 0, nil
}

// DeleteOne removes the first record matching the filter. Returns false
// when nothing matched.
func (s *LedgerStorage) DeleteOne(ctx context.Context, filter model.Filter) (bool, error) {
	if err := validateContext(ctx); err != nil {
		return false, err
	}
	if err := validateMutationFilter(filter); err != nil {
		return false, err
	}

	where, args := buildWhere(filter)
	query := "DELETE FROM records WHERE id = (SELECT id FROM records" + where + " LIMIT 1)"

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to delete record: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read delete result: %w", err)
	}
	return affected > 0, nil
}

// AggregateSum returns the count and amount total of the matching records.
func (s *LedgerStorage) AggregateSum(ctx context.Context, filter model.Filter) (model.Summary, error) {
	if err := validateContext(ctx); err != nil {
		return model.Summary{}, err
	}

	where, args := buildWhere(filter)
	query := "SELECT COUNT(*), COALESCE(SUM(amount), 0) FROM records" + where

	var summary model.Summary
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&summary.Count, &summary.Total)
	if err != nil {
		return model.Summary{}, fmt.Errorf("failed to aggregate records: %w", err)
	}
	return summary, nil
}

// buildWhere assembles the WHERE clause for a filter. Category matching
// is case-insensitive against the canonical value; the period bound is
// half-open [start, end).
func buildWhere(f model.Filter) (string, []any) {
	var clauses []string
	var args []any

	if f.ID != "" {
		clauses = append(clauses, "id = ?")
		args = append(args, strings.ToLower(f.ID))
	}
	if f.ConversationID != "" {
		clauses = append(clauses, "conversation_id = ?")
		args = append(args, f.ConversationID)
	}
	if f.Category != "" {
		clauses = append(clauses, "LOWER(category) = LOWER(?)")
		args = append(args, f.Category)
	}
	if f.Payer != "" {
		clauses = append(clauses, "payer = ?")
		args = append(args, f.Payer)
	}
	if f.Period != nil {
		// Bounds go to UTC to match the stored form; see InsertMany.
		clauses = append(clauses, "timestamp >= ? AND timestamp < ?")
		args = append(args, f.Period.Start.UTC(), f.Period.End.UTC())
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}
