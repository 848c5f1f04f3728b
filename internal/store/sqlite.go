package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "embed"

	_ "github.com/mattn/go-sqlite3"
	"github.com/tripflowai/tripflow/internal/models"
)

// DefaultDirPermissions defines the default permissions for database directories.
const DefaultDirPermissions = 0755

//go:embed migrations_sqlite.sql
var sqliteMigrations string

// SQLiteStore persists state and records in an SQLite database file.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store with the given DSN.
// The DSN is a file path; the containing directory is created if missing.
func NewSQLiteStore(opts ...Option) (*SQLiteStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("NewSQLiteStore invoked", "DSN_set", cfg.DSN != "")

	if cfg.DSN == "" {
		slog.Error("SQLiteStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	dir := filepath.Dir(cfg.DSN)
	if err := os.MkdirAll(dir, DefaultDirPermissions); err != nil {
		slog.Error("Failed to create database directory", "error", err, "dir", dir)
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", cfg.DSN)
	if err != nil {
		slog.Error("Failed to open SQLite connection", "error", err)
		return nil, err
	}
	if err := db.Ping(); err != nil {
		slog.Error("SQLite ping failed", "error", err)
		return nil, err
	}

	slog.Debug("Running SQLite migrations")
	if _, err := db.Exec(sqliteMigrations); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("SQLite migrations applied successfully")

	return &SQLiteStore{db: db}, nil
}

// SaveConversationState upserts the JSON snapshot for a session.
func (s *SQLiteStore) SaveConversationState(state models.ConversationState) error {
	payload, err := json.Marshal(state)
	if err != nil {
		slog.Error("SQLiteStore SaveConversationState marshal failed", "error", err, "sessionID", state.SessionID)
		return fmt.Errorf("failed to marshal state for %s: %w", state.SessionID, err)
	}
	_, err = s.db.Exec(
		`INSERT INTO conversation_states (session_id, user_id, state_json, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(session_id) DO UPDATE SET user_id = excluded.user_id, state_json = excluded.state_json, updated_at = excluded.updated_at`,
		state.SessionID, state.UserID, string(payload), state.LastUpdate,
	)
	if err != nil {
		slog.Error("SQLiteStore SaveConversationState failed", "error", err, "sessionID", state.SessionID)
		return fmt.Errorf("failed to save state for %s: %w", state.SessionID, err)
	}
	slog.Debug("SQLiteStore SaveConversationState succeeded", "sessionID", state.SessionID)
	return nil
}

// GetConversationState loads the snapshot for a session, or nil when absent.
func (s *SQLiteStore) GetConversationState(sessionID string) (*models.ConversationState, error) {
	var payload string
	err := s.db.QueryRow(`SELECT state_json FROM conversation_states WHERE session_id = ?`, sessionID).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		slog.Error("SQLiteStore GetConversationState query failed", "error", err, "sessionID", sessionID)
		return nil, fmt.Errorf("failed to query state for %s: %w", sessionID, err)
	}
	var state models.ConversationState
	if err := json.Unmarshal([]byte(payload), &state); err != nil {
		slog.Error("SQLiteStore GetConversationState unmarshal failed", "error", err, "sessionID", sessionID)
		return nil, fmt.Errorf("failed to unmarshal state for %s: %w", sessionID, err)
	}
	return &state, nil
}

// DeleteConversationState removes the snapshot for a session.
func (s *SQLiteStore) DeleteConversationState(sessionID string) error {
	_, err := s.db.Exec(`DELETE FROM conversation_states WHERE session_id = ?`, sessionID)
	if err != nil {
		slog.Error("SQLiteStore DeleteConversationState failed", "error", err, "sessionID", sessionID)
		return fmt.Errorf("failed to delete state for %s: %w", sessionID, err)
	}
	return nil
}

// SaveEffectivenessRecord upserts a record by ID.
func (s *SQLiteStore) SaveEffectivenessRecord(record models.EffectivenessRecord) error {
	payload, err := json.Marshal(record)
	if err != nil {
		slog.Error("SQLiteStore SaveEffectivenessRecord marshal failed", "error", err, "id", record.ID)
		return fmt.Errorf("failed to marshal record %s: %w", record.ID, err)
	}
	scored := 0
	if record.Scored {
		scored = 1
	}
	_, err = s.db.Exec(
		`INSERT INTO effectiveness_records (id, session_id, record_json, effectiveness, scored, created_at) VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET record_json = excluded.record_json, effectiveness = excluded.effectiveness, scored = excluded.scored`,
		record.ID, record.SessionID, string(payload), record.Effectiveness, scored, record.Timestamp,
	)
	if err != nil {
		slog.Error("SQLiteStore SaveEffectivenessRecord failed", "error", err, "id", record.ID)
		return fmt.Errorf("failed to save record %s: %w", record.ID, err)
	}
	slog.Debug("SQLiteStore SaveEffectivenessRecord succeeded", "id", record.ID, "sessionID", record.SessionID)
	return nil
}

// ListEffectivenessRecords returns up to limit records, most recent first.
func (s *SQLiteStore) ListEffectivenessRecords(limit int) ([]models.EffectivenessRecord, error) {
	query := `SELECT record_json FROM effectiveness_records ORDER BY created_at DESC`
	var rows *sql.Rows
	var err error
	if limit > 0 {
		rows, err = s.db.Query(query+` LIMIT ?`, limit)
	} else {
		rows, err = s.db.Query(query)
	}
	if err != nil {
		slog.Error("SQLiteStore ListEffectivenessRecords query failed", "error", err)
		return nil, fmt.Errorf("failed to query effectiveness records: %w", err)
	}
	defer rows.Close()

	var records []models.EffectivenessRecord
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			slog.Error("SQLiteStore ListEffectivenessRecords scan failed", "error", err)
			return nil, fmt.Errorf("failed to scan record row: %w", err)
		}
		var record models.EffectivenessRecord
		if err := json.Unmarshal([]byte(payload), &record); err != nil {
			slog.Error("SQLiteStore ListEffectivenessRecords unmarshal failed", "error", err)
			return nil, fmt.Errorf("failed to unmarshal record: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		slog.Error("SQLiteStore ListEffectivenessRecords rows iteration failed", "error", err)
		return nil, fmt.Errorf("failed to iterate record rows: %w", err)
	}
	slog.Debug("SQLiteStore ListEffectivenessRecords succeeded", "count", len(records))
	return records, nil
}

// Close closes the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
