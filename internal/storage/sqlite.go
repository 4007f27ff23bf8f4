package storage

import (
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// LedgerStorage implements the service.Storage document-store contract
// on SQLite.
type LedgerStorage struct {
	db     *sql.DB
	dbPath string
}

// NewLedgerStorage opens (or creates) the ledger database at dbPath.
func NewLedgerStorage(dbPath string) (*LedgerStorage, error) {
	if err := validateString(dbPath, "dbPath"); err != nil {
		return nil, err
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite doesn't benefit from multiple connections, and a single one
	// serializes the lookup-then-mutate sequences of the edit handlers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &LedgerStorage{db: db, dbPath: dbPath}, nil
}

// Close closes the database connection.
func (s *LedgerStorage) Close() error {
	return s.db.Close()
}

// newRecordID mints a 24 lowercase hex character identifier, the full-id
// form of the reference grammar.
func newRecordID() (string, error) {
	var buf [12]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "", fmt.Errorf("failed to generate record id: %w", err)
	}
	return hex.EncodeToString(buf[:]), nil
}
