// Package store provides storage backends for TripFlow conversation state and
// effectiveness records.
//
// It includes an in-memory store (the default), an SQLite-backed store, and a
// PostgreSQL-backed store behind the same interface. The persisted layout
// carries no cross-version compatibility promise; state is snapshotted as JSON.
package store

import (
	"sort"
	"sync"

	"github.com/tripflowai/tripflow/internal/models"
)

// Opts holds configuration options for store backends.
type Opts struct {
	DSN string
}

// Option defines a configuration option for store backends.
type Option func(*Opts)

// WithSQLiteDSN sets the SQLite database file path.
func WithSQLiteDSN(dsn string) Option {
	return func(o *Opts) { o.DSN = dsn }
}

// WithPostgresDSN sets the PostgreSQL connection string.
func WithPostgresDSN(dsn string) Option {
	return func(o *Opts) { o.DSN = dsn }
}

// StateStore persists conversation state snapshots and effectiveness records.
// All implementations are safe for concurrent use.
type StateStore interface {
	SaveConversationState(state models.ConversationState) error
	GetConversationState(sessionID string) (*models.ConversationState, error)
	DeleteConversationState(sessionID string) error
	SaveEffectivenessRecord(record models.EffectivenessRecord) error
	ListEffectivenessRecords(limit int) ([]models.EffectivenessRecord, error)
	Close() error
}

// InMemoryStore is a simple map-backed store used when no DSN is configured.
type InMemoryStore struct {
	mu      sync.RWMutex
	states  map[string]models.ConversationState
	records []models.EffectivenessRecord
}

// NewInMemoryStore creates an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{states: make(map[string]models.ConversationState)}
}

// SaveConversationState stores a deep copy of the state snapshot.
func (s *InMemoryStore) SaveConversationState(state models.ConversationState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[state.SessionID] = *state.Clone()
	return nil
}

// GetConversationState returns the stored snapshot, or nil when absent.
func (s *InMemoryStore) GetConversationState(sessionID string) (*models.ConversationState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.states[sessionID]
	if !ok {
		return nil, nil
	}
	return state.Clone(), nil
}

// DeleteConversationState removes the snapshot for a session.
func (s *InMemoryStore) DeleteConversationState(sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, sessionID)
	return nil
}

// SaveEffectivenessRecord inserts or updates a record by ID.
func (s *InMemoryStore) SaveEffectivenessRecord(record models.EffectivenessRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.records {
		if s.records[i].ID == record.ID {
			s.records[i] = record
			return nil
		}
	}
	s.records = append(s.records, record)
	return nil
}

// ListEffectivenessRecords returns up to limit records, most recent first.
// A non-positive limit returns all records.
func (s *InMemoryStore) ListEffectivenessRecords(limit int) ([]models.EffectivenessRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := append([]models.EffectivenessRecord(nil), s.records...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Close is a no-op for the in-memory store.
func (s *InMemoryStore) Close() error {
	return nil
}
