// Package tracker owns per-session conversation state: it extracts slots from
// each message, advances the conversation phase, scores conversion probability
// and urgency, and predicts next actions. Update never fails; every external
// failure resolves to a safe default so turn processing always completes.
package tracker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/tripflowai/tripflow/internal/catalog"
	"github.com/tripflowai/tripflow/internal/intent"
	"github.com/tripflowai/tripflow/internal/models"
	"github.com/tripflowai/tripflow/internal/store"
)

// Default retention bounds for the in-process session map.
const (
	DefaultMaxSessions = 10000
	DefaultSessionTTL  = 24 * time.Hour
)

// Opts holds configuration options for the tracker.
type Opts struct {
	MaxSessions int
	SessionTTL  time.Duration
	Store       store.StateStore
	Catalog     *catalog.Catalog
}

// Option defines a configuration option for the tracker.
type Option func(*Opts)

// WithMaxSessions bounds the number of in-memory sessions; the least recently
// used session is evicted when the bound is exceeded.
func WithMaxSessions(n int) Option {
	return func(o *Opts) { o.MaxSessions = n }
}

// WithSessionTTL sets the idle lifetime after which a session is evicted.
func WithSessionTTL(ttl time.Duration) Option {
	return func(o *Opts) { o.SessionTTL = ttl }
}

// WithStore attaches a persistence backend. Snapshots are written after every
// update and sessions are restored from it after eviction or restart.
func WithStore(st store.StateStore) Option {
	return func(o *Opts) { o.Store = st }
}

// WithCatalog overrides the compiled-in flow catalog.
func WithCatalog(c *catalog.Catalog) Option {
	return func(o *Opts) { o.Catalog = c }
}

// UpdateRequest is the per-turn input to the tracker.
type UpdateRequest struct {
	SessionID   string
	UserID      string
	UserMessage string
	BotResponse string
}

// session pairs a state with its own mutex so concurrent updates to the same
// session serialize while different sessions proceed in parallel.
type session struct {
	mu         sync.Mutex
	state      *models.ConversationState
	lastAccess time.Time
}

// Tracker is the conversation state tracker. Safe for concurrent use.
type Tracker struct {
	mu          sync.RWMutex
	sessions    map[string]*session
	classifier  intent.Classifier
	catalog     *catalog.Catalog
	store       store.StateStore
	maxSessions int
	sessionTTL  time.Duration
	now         func() time.Time
}

// New creates a tracker using the given intent classifier collaborator.
func New(classifier intent.Classifier, opts ...Option) *Tracker {
	cfg := Opts{
		MaxSessions: DefaultMaxSessions,
		SessionTTL:  DefaultSessionTTL,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Catalog == nil {
		cfg.Catalog = catalog.Default()
	}
	slog.Debug("tracker.New creating tracker", "maxSessions", cfg.MaxSessions, "sessionTTL", cfg.SessionTTL, "hasStore", cfg.Store != nil)
	return &Tracker{
		sessions:    make(map[string]*session),
		classifier:  classifier,
		catalog:     cfg.Catalog,
		store:       cfg.Store,
		maxSessions: cfg.MaxSessions,
		sessionTTL:  cfg.SessionTTL,
		now:         time.Now,
	}
}

// Update processes one conversation turn and returns a deep copy of the
// resulting state. It never fails: an unseen session is created with defaults
// and a classifier failure falls back to the neutral intent.
func (t *Tracker) Update(ctx context.Context, req UpdateRequest) *models.ConversationState {
	sess := t.getOrCreateSession(req.SessionID, req.UserID)

	sess.mu.Lock()
	defer sess.mu.Unlock()

	state := sess.state
	now := t.now()
	state.MessageCount++
	state.PhaseMessageCount++

	// Step 1: intent classification with fallback.
	userIntent := t.classify(ctx, req.UserMessage)
	state.LastIntent = userIntent

	// Step 2: additive slot extraction.
	extractSlots(&state.CollectedInfo, req.UserMessage)
	infoScore := state.CollectedInfo.CompletenessScore()

	// Step 3: phase transition.
	t.advancePhase(state, req.UserMessage, userIntent, infoScore)

	// Step 4: conversion probability. Uses the urgency level as of the
	// previous turn; urgency for this turn is classified in step 5.
	state.ConversionProbability = conversionProbability(state, userIntent, infoScore)

	// Step 5: urgency classification.
	state.UrgencyLevel = classifyUrgency(req.UserMessage, state.CurrentPhase, state.CollectedInfo.Timeframe)

	// Step 6: next-action prediction.
	state.PredictedNextActions = predictNextActions(state)

	state.LastUpdate = now

	t.persist(state)

	slog.Debug("Tracker.Update completed",
		"sessionID", state.SessionID,
		"phase", state.CurrentPhase,
		"messageCount", state.MessageCount,
		"conversionProbability", state.ConversionProbability,
		"urgency", state.UrgencyLevel,
		"intent", userIntent.Primary)

	return state.Clone()
}

// GetState returns a copy of the current state for a session, or nil when the
// session is unknown both in memory and in the store.
func (t *Tracker) GetState(sessionID string) *models.ConversationState {
	t.mu.RLock()
	sess, ok := t.sessions[sessionID]
	t.mu.RUnlock()
	if ok {
		sess.mu.Lock()
		defer sess.mu.Unlock()
		return sess.state.Clone()
	}
	if t.store != nil {
		restored, err := t.store.GetConversationState(sessionID)
		if err != nil {
			slog.Warn("Tracker.GetState store lookup failed", "error", err, "sessionID", sessionID)
			return nil
		}
		return restored
	}
	return nil
}

// SessionCount returns the number of sessions currently held in memory.
func (t *Tracker) SessionCount() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.sessions)
}

// classify runs the collaborator classifier; any failure resolves to the
// neutral default intent rather than propagating.
func (t *Tracker) classify(ctx context.Context, message string) models.Intent {
	if t.classifier == nil {
		return models.DefaultIntent()
	}
	userIntent, err := t.classifier.Classify(ctx, message)
	if err != nil {
		slog.Warn("Tracker classifier failed, falling back to default intent", "error", err)
		return models.DefaultIntent()
	}
	return userIntent
}

// getOrCreateSession returns the session entry, restoring it from the store
// or creating it with defaults when missing. Eviction runs under the same
// map lock.
func (t *Tracker) getOrCreateSession(sessionID, userID string) *session {
	now := t.now()

	t.mu.RLock()
	sess, ok := t.sessions[sessionID]
	t.mu.RUnlock()
	if ok {
		t.mu.Lock()
		sess.lastAccess = now
		t.mu.Unlock()
		return sess
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if sess, ok := t.sessions[sessionID]; ok {
		sess.lastAccess = now
		return sess
	}

	t.evictLocked(now)

	state := t.restoreOrDefault(sessionID, userID, now)
	sess = &session{state: state, lastAccess: now}
	t.sessions[sessionID] = sess
	slog.Info("Tracker created session", "sessionID", sessionID, "phase", state.CurrentPhase, "restored", state.MessageCount > 0)
	return sess
}

// restoreOrDefault loads a persisted snapshot when a store is attached,
// otherwise builds the default initial state.
func (t *Tracker) restoreOrDefault(sessionID, userID string, now time.Time) *models.ConversationState {
	if t.store != nil {
		restored, err := t.store.GetConversationState(sessionID)
		if err != nil {
			slog.Warn("Tracker failed to restore session from store", "error", err, "sessionID", sessionID)
		} else if restored != nil {
			slog.Debug("Tracker restored session from store", "sessionID", sessionID, "phase", restored.CurrentPhase)
			return restored
		}
	}
	return &models.ConversationState{
		SessionID:             sessionID,
		UserID:                userID,
		CurrentPhase:          models.PhaseGreeting,
		ConversionProbability: 0.1,
		UrgencyLevel:          models.UrgencyLow,
		CreatedAt:             now,
		LastUpdate:            now,
	}
}

// evictLocked removes expired sessions and, if the map is still full, the
// least recently used one. Caller holds the map write lock.
func (t *Tracker) evictLocked(now time.Time) {
	if t.sessionTTL > 0 {
		for id, sess := range t.sessions {
			if now.Sub(sess.lastAccess) > t.sessionTTL {
				delete(t.sessions, id)
				slog.Debug("Tracker evicted expired session", "sessionID", id)
			}
		}
	}
	if t.maxSessions <= 0 {
		return
	}
	for len(t.sessions) >= t.maxSessions {
		oldestID := ""
		var oldest time.Time
		for id, sess := range t.sessions {
			if oldestID == "" || sess.lastAccess.Before(oldest) {
				oldestID = id
				oldest = sess.lastAccess
			}
		}
		if oldestID == "" {
			return
		}
		delete(t.sessions, oldestID)
		slog.Debug("Tracker evicted LRU session", "sessionID", oldestID)
	}
}

// persist snapshots the state through the store. Failures are logged and
// never fail the turn.
func (t *Tracker) persist(state *models.ConversationState) {
	if t.store == nil {
		return
	}
	if err := t.store.SaveConversationState(*state.Clone()); err != nil {
		slog.Warn("Tracker failed to persist session state", "error", err, "sessionID", state.SessionID)
	}
}

// intentTransitions is the fixed intent-based transition map consulted when
// no trigger keyword matched. Every target is a forward catalog candidate.
var intentTransitions = map[models.Phase]map[models.IntentType]models.Phase{
	models.PhaseGreeting: {
		models.IntentDiscovery: models.PhaseDiscovery,
	},
	models.PhaseDiscovery: {
		models.IntentExploration: models.PhaseExploration,
	},
	models.PhaseExploration: {
		models.IntentComparison: models.PhaseComparison,
	},
	models.PhaseComparison: {
		models.IntentBooking: models.PhaseBooking,
	},
	models.PhaseDecision: {
		models.IntentBooking: models.PhaseBooking,
	},
}

// advancePhase applies the transition rules in precedence order: trigger
// keyword, intent mapping, information-completeness thresholds, duration
// overrun. First match wins; the terminal phase never transitions.
func (t *Tracker) advancePhase(state *models.ConversationState, message string, userIntent models.Intent, infoScore float64) {
	if state.CurrentPhase.IsTerminal() {
		return
	}

	if next, keyword, ok := t.catalog.MatchTrigger(state.CurrentPhase, message); ok {
		t.transition(state, next, "trigger:"+keyword)
		return
	}

	if targets, ok := intentTransitions[state.CurrentPhase]; ok {
		if next, ok := targets[userIntent.Primary]; ok {
			t.transition(state, next, "intent:"+string(userIntent.Primary))
			return
		}
	}

	if infoScore > 0.7 && state.CurrentPhase == models.PhaseDiscovery {
		t.transition(state, models.PhaseExploration, "info-completeness")
		return
	}
	if infoScore > 0.8 && state.CurrentPhase == models.PhaseExploration {
		t.transition(state, models.PhaseComparison, "info-completeness")
		return
	}

	if expected := t.catalog.ExpectedDuration(state.CurrentPhase); expected > 0 && state.PhaseMessageCount > 2*expected {
		if next, ok := t.catalog.ForceAdvanceTarget(state.CurrentPhase); ok {
			t.transition(state, next, "duration-overrun")
		}
	}
}

// transition moves the session to the next phase and resets the per-phase
// message counter.
func (t *Tracker) transition(state *models.ConversationState, next models.Phase, reason string) {
	if next == state.CurrentPhase {
		return
	}
	slog.Info("Tracker phase transition",
		"sessionID", state.SessionID,
		"from", state.CurrentPhase,
		"to", next,
		"reason", reason)
	state.CurrentPhase = next
	state.PhaseMessageCount = 1
}
