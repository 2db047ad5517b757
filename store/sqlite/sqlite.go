/*
Package sqlite provides SQLite-backed persistence for the engine's external
state.

PURPOSE:
  The core computation is stateless - every load recomputes derived entities
  from raw rows. Only two things outlive a process and belong here:

  1. The lotação override table. Persisted as a flat
     {normalizedOriginal: canonicalReplacement} JSON object under a single
     settings key, so the shape round-trips unchanged with any key-value
     host the dashboard is deployed against.
  2. Import audit entries: when a sheet was loaded, how many rows, how many
     were flagged. Operators use these to answer "is this data current?".

KEY TABLES:
  settings: Generic key -> JSON value store
  imports:  Append-only audit log of row loads

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging):
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  store, err := sqlite.New("./data/licenca.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  rules, err := store.LoadLotacaoRules(ctx)

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper migration
  tool (golang-migrate, goose) with versioned migrations.
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// settingsKeyLotacaoRules is the single named key the override mapping
// lives under. External consumers depend on this name; do not rename.
const settingsKeyLotacaoRules = "lotacao_custom_rules"

// Store persists override rules and import audit entries.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Generic key/value settings; values are JSON documents
	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value_json TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	-- Append-only audit of spreadsheet imports
	CREATE TABLE IF NOT EXISTS imports (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		loaded_at TEXT NOT NULL,
		row_count INTEGER NOT NULL,
		flagged_rows INTEGER NOT NULL,
		employee_count INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_imports_loaded_at ON imports(loaded_at DESC);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// LOTACAO OVERRIDE RULES
// =============================================================================

// SaveLotacaoRules persists the override mapping wholesale. Last-writer-wins.
func (s *Store) SaveLotacaoRules(ctx context.Context, rules map[string]string) error {
	payload, err := json.Marshal(rules)
	if err != nil {
		return fmt.Errorf("failed to encode rules: %w", err)
	}
	return s.putSetting(ctx, settingsKeyLotacaoRules, string(payload))
}

// LoadLotacaoRules returns the persisted override mapping, or an empty map
// when none has been saved yet.
func (s *Store) LoadLotacaoRules(ctx context.Context) (map[string]string, error) {
	raw, err := s.getSetting(ctx, settingsKeyLotacaoRules)
	if err != nil {
		return nil, err
	}
	if raw == "" {
		return map[string]string{}, nil
	}
	var rules map[string]string
	if err := json.Unmarshal([]byte(raw), &rules); err != nil {
		return nil, fmt.Errorf("failed to decode rules: %w", err)
	}
	return rules, nil
}

func (s *Store) putSetting(ctx context.Context, key, valueJSON string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO settings (key, value_json, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value_json = excluded.value_json,
		                               updated_at = excluded.updated_at`,
		key, valueJSON, time.Now().UTC().Format(time.RFC3339))
	return err
}

func (s *Store) getSetting(ctx context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value_json FROM settings WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

// =============================================================================
// IMPORT AUDIT LOG
// =============================================================================

// ImportEntry is one audit record of a spreadsheet load.
type ImportEntry struct {
	ID            int64
	LoadedAt      time.Time
	RowCount      int
	FlaggedRows   int
	EmployeeCount int
}

// RecordImport appends an audit entry for a completed load.
func (s *Store) RecordImport(ctx context.Context, rowCount, flaggedRows, employeeCount int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO imports (loaded_at, row_count, flagged_rows, employee_count)
		VALUES (?, ?, ?, ?)`,
		time.Now().UTC().Format(time.RFC3339), rowCount, flaggedRows, employeeCount)
	return err
}

// ListImports returns the most recent audit entries, newest first.
func (s *Store) ListImports(ctx context.Context, limit int) ([]ImportEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, loaded_at, row_count, flagged_rows, employee_count
		FROM imports ORDER BY loaded_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []ImportEntry
	for rows.Next() {
		var e ImportEntry
		var loadedAt string
		if err := rows.Scan(&e.ID, &loadedAt, &e.RowCount, &e.FlaggedRows, &e.EmployeeCount); err != nil {
			return nil, err
		}
		e.LoadedAt, _ = time.Parse(time.RFC3339, loadedAt)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
