package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	_ "github.com/lib/pq"
	"github.com/tripflowai/tripflow/internal/models"
)

const postgresMigrations = `
CREATE TABLE IF NOT EXISTS conversation_states (
    session_id TEXT PRIMARY KEY,
    user_id    TEXT,
    state_json TEXT NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS effectiveness_records (
    id            TEXT PRIMARY KEY,
    session_id    TEXT NOT NULL,
    record_json   TEXT NOT NULL,
    effectiveness DOUBLE PRECISION NOT NULL DEFAULT 0,
    scored        BOOLEAN NOT NULL DEFAULT FALSE,
    created_at    TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_effectiveness_session
    ON effectiveness_records (session_id, created_at);
`

// PostgresStore persists state and records in a PostgreSQL database.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new PostgreSQL store with the given DSN.
func NewPostgresStore(opts ...Option) (*PostgresStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("NewPostgresStore invoked", "DSN_set", cfg.DSN != "")

	if cfg.DSN == "" {
		slog.Error("PostgresStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		slog.Error("Failed to open PostgreSQL connection", "error", err)
		return nil, err
	}
	if err := db.Ping(); err != nil {
		slog.Error("PostgreSQL ping failed", "error", err)
		return nil, err
	}

	slog.Debug("Running PostgreSQL migrations")
	if _, err := db.Exec(postgresMigrations); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("PostgreSQL migrations applied successfully")

	return &PostgresStore{db: db}, nil
}

// SaveConversationState upserts the JSON snapshot for a session.
func (s *PostgresStore) SaveConversationState(state models.ConversationState) error {
	payload, err := json.Marshal(state)
	if err != nil {
		slog.Error("PostgresStore SaveConversationState marshal failed", "error", err, "sessionID", state.SessionID)
		return fmt.Errorf("failed to marshal state for %s: %w", state.SessionID, err)
	}
	_, err = s.db.Exec(
		`INSERT INTO conversation_states (session_id, user_id, state_json, updated_at) VALUES ($1, $2, $3, $4)
		 ON CONFLICT (session_id) DO UPDATE SET user_id = EXCLUDED.user_id, state_json = EXCLUDED.state_json, updated_at = EXCLUDED.updated_at`,
		state.SessionID, state.UserID, string(payload), state.LastUpdate,
	)
	if err != nil {
		slog.Error("PostgresStore SaveConversationState failed", "error", err, "sessionID", state.SessionID)
		return fmt.Errorf("failed to save state for %s: %w", state.SessionID, err)
	}
	slog.Debug("PostgresStore SaveConversationState succeeded", "sessionID", state.SessionID)
	return nil
}

// GetConversationState loads the snapshot for a session, or nil when absent.
func (s *PostgresStore) GetConversationState(sessionID string) (*models.ConversationState, error) {
	var payload string
	err := s.db.QueryRow(`SELECT state_json FROM conversation_states WHERE session_id = $1`, sessionID).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		slog.Error("PostgresStore GetConversationState query failed", "error", err, "sessionID", sessionID)
		return nil, fmt.Errorf("failed to query state for %s: %w", sessionID, err)
	}
	var state models.ConversationState
	if err := json.Unmarshal([]byte(payload), &state); err != nil {
		slog.Error("PostgresStore GetConversationState unmarshal failed", "error", err, "sessionID", sessionID)
		return nil, fmt.Errorf("failed to unmarshal state for %s: %w", sessionID, err)
	}
	return &state, nil
}

// DeleteConversationState removes the snapshot for a session.
func (s *PostgresStore) DeleteConversationState(sessionID string) error {
	_, err := s.db.Exec(`DELETE FROM conversation_states WHERE session_id = $1`, sessionID)
	if err != nil {
		slog.Error("PostgresStore DeleteConversationState failed", "error", err, "sessionID", sessionID)
		return fmt.Errorf("failed to delete state for %s: %w", sessionID, err)
	}
	return nil
}

// SaveEffectivenessRecord upserts a record by ID.
func (s *PostgresStore) SaveEffectivenessRecord(record models.EffectivenessRecord) error {
	payload, err := json.Marshal(record)
	if err != nil {
		slog.Error("PostgresStore SaveEffectivenessRecord marshal failed", "error", err, "id", record.ID)
		return fmt.Errorf("failed to marshal record %s: %w", record.ID, err)
	}
	_, err = s.db.Exec(
		`INSERT INTO effectiveness_records (id, session_id, record_json, effectiveness, scored, created_at) VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (id) DO UPDATE SET record_json = EXCLUDED.record_json, effectiveness = EXCLUDED.effectiveness, scored = EXCLUDED.scored`,
		record.ID, record.SessionID, string(payload), record.Effectiveness, record.Scored, record.Timestamp,
	)
	if err != nil {
		slog.Error("PostgresStore SaveEffectivenessRecord failed", "error", err, "id", record.ID)
		return fmt.Errorf("failed to save record %s: %w", record.ID, err)
	}
	slog.Debug("PostgresStore SaveEffectivenessRecord succeeded", "id", record.ID, "sessionID", record.SessionID)
	return nil
}

// ListEffectivenessRecords returns up to limit records, most recent first.
func (s *PostgresStore) ListEffectivenessRecords(limit int) ([]models.EffectivenessRecord, error) {
	query := `SELECT record_json FROM effectiveness_records ORDER BY created_at DESC`
	var rows *sql.Rows
	var err error
	if limit > 0 {
		rows, err = s.db.Query(query+` LIMIT $1`, limit)
	} else {
		rows, err = s.db.Query(query)
	}
	if err != nil {
		slog.Error("PostgresStore ListEffectivenessRecords query failed", "error", err)
		return nil, fmt.Errorf("failed to query effectiveness records: %w", err)
	}
	defer rows.Close()

	var records []models.EffectivenessRecord
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			slog.Error("PostgresStore ListEffectivenessRecords scan failed", "error", err)
			return nil, fmt.Errorf("failed to scan record row: %w", err)
		}
		var record models.EffectivenessRecord
		if err := json.Unmarshal([]byte(payload), &record); err != nil {
			slog.Error("PostgresStore ListEffectivenessRecords unmarshal failed", "error", err)
			return nil, fmt.Errorf("failed to unmarshal record: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		slog.Error("PostgresStore ListEffectivenessRecords rows iteration failed", "error", err)
		return nil, fmt.Errorf("failed to iterate record rows: %w", err)
	}
	slog.Debug("PostgresStore ListEffectivenessRecords succeeded", "count", len(records))
	return records, nil
}

// Close closes the underlying database handle.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
