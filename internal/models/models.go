// Package models defines core data types shared across TripFlow components.
package models

import "time"

// Phase represents a discrete stage of the conversation state machine.
type Phase string

const (
	// PhaseGreeting is the initial phase for every new session.
	PhaseGreeting Phase = "greeting"
	// PhaseDiscovery gathers the traveler's basic needs.
	PhaseDiscovery Phase = "discovery"
	// PhaseExploration presents and refines travel options.
	PhaseExploration Phase = "exploration"
	// PhaseComparison weighs shortlisted options against each other.
	PhaseComparison Phase = "comparison"
	// PhaseDecision converges on a single option.
	PhaseDecision Phase = "decision"
	// PhaseBooking collects booking details.
	PhaseBooking Phase = "booking"
	// PhaseConfirmation is the terminal phase; it has no outgoing transitions.
	PhaseConfirmation Phase = "confirmation"
)

// AllPhases lists every phase in conversational order.
var AllPhases = []Phase{
	PhaseGreeting,
	PhaseDiscovery,
	PhaseExploration,
	PhaseComparison,
	PhaseDecision,
	PhaseBooking,
	PhaseConfirmation,
}

// IsValid reports whether p is a known phase.
func (p Phase) IsValid() bool {
	for _, known := range AllPhases {
		if p == known {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the phase has no outgoing transitions.
func (p Phase) IsTerminal() bool {
	return p == PhaseConfirmation
}

// UrgencyLevel classifies how time-sensitive the user's request appears.
type UrgencyLevel string

const (
	// UrgencyLow indicates no time pressure was detected.
	UrgencyLow UrgencyLevel = "low"
	// UrgencyMedium indicates mild time pressure (late phase or a stated timeframe).
	UrgencyMedium UrgencyLevel = "medium"
	// UrgencyHigh indicates explicit near-term time pressure.
	UrgencyHigh UrgencyLevel = "high"
	// UrgencyUrgent indicates the user explicitly asked for immediate handling.
	UrgencyUrgent UrgencyLevel = "urgent"
)

// OptimizationLevel is a tier controlling how many instruction templates are
// composed into the final prompt.
type OptimizationLevel string

const (
	// OptimizationBasic allows up to 2 templates.
	OptimizationBasic OptimizationLevel = "basic"
	// OptimizationStandard allows up to 4 templates.
	OptimizationStandard OptimizationLevel = "standard"
	// OptimizationAdvanced allows up to 6 templates.
	OptimizationAdvanced OptimizationLevel = "advanced"
	// OptimizationExpert allows up to 8 templates.
	OptimizationExpert OptimizationLevel = "expert"
)

// MaxTemplates returns the template cap for the level.
func (l OptimizationLevel) MaxTemplates() int {
	switch l {
	case OptimizationExpert:
		return 8
	case OptimizationAdvanced:
		return 6
	case OptimizationStandard:
		return 4
	default:
		return 2
	}
}

// IntentType is the vocabulary of the intent classifier collaborator.
type IntentType string

const (
	// IntentGreeting covers salutations and small talk.
	IntentGreeting IntentType = "greeting"
	// IntentDiscovery covers expressions of travel needs and wishes.
	IntentDiscovery IntentType = "discovery"
	// IntentExploration covers requests for options and suggestions.
	IntentExploration IntentType = "exploration"
	// IntentComparison covers requests to weigh options against each other.
	IntentComparison IntentType = "comparison"
	// IntentBooking covers purchase and reservation signals.
	IntentBooking IntentType = "booking"
	// IntentSupport covers help requests and complaints.
	IntentSupport IntentType = "support"
	// IntentDefault is the neutral fallback when classification fails.
	IntentDefault IntentType = "default"
)

// AllIntents lists the classifier vocabulary.
var AllIntents = []IntentType{
	IntentGreeting,
	IntentDiscovery,
	IntentExploration,
	IntentComparison,
	IntentBooking,
	IntentSupport,
	IntentDefault,
}

// IsValid reports whether i is a known intent.
func (i IntentType) IsValid() bool {
	for _, known := range AllIntents {
		if i == known {
			return true
		}
	}
	return false
}

// Intent is the result of classifying a single user message.
type Intent struct {
	Primary    IntentType `json:"primary"`
	Confidence float64    `json:"confidence"`
}

// DefaultIntent is the neutral intent used when the classifier fails.
func DefaultIntent() Intent {
	return Intent{Primary: IntentDefault, Confidence: 0.0}
}

// CollectedInfo holds the slot values extracted from user messages over a
// session. Set-valued slots are deduplicated and only grow; scalar slots take
// the latest detected value.
type CollectedInfo struct {
	Destinations []string `json:"destinations,omitempty"`
	Budget       string   `json:"budget,omitempty"`
	TravelStyle  string   `json:"travel_style,omitempty"`
	GroupSize    int      `json:"group_size,omitempty"`
	Timeframe    string   `json:"timeframe,omitempty"`
	Preferences  []string `json:"preferences,omitempty"`
	Concerns     []string `json:"concerns,omitempty"`
}

// TrackedSlotCategories is the number of slot categories counted by the
// information-completeness score: destinations, budget, travel style, group
// size, timeframe, and preferences. Concerns are tracked but not counted.
const TrackedSlotCategories = 6

// CompletenessScore returns the fraction of tracked slot categories that are
// populated, in [0,1].
func (c CollectedInfo) CompletenessScore() float64 {
	filled := 0
	if len(c.Destinations) > 0 {
		filled++
	}
	if c.Budget != "" {
		filled++
	}
	if c.TravelStyle != "" {
		filled++
	}
	if c.GroupSize > 0 {
		filled++
	}
	if c.Timeframe != "" {
		filled++
	}
	if len(c.Preferences) > 0 {
		filled++
	}
	return float64(filled) / float64(TrackedSlotCategories)
}

// Clone returns a deep copy of the collected info.
func (c CollectedInfo) Clone() CollectedInfo {
	out := c
	out.Destinations = append([]string(nil), c.Destinations...)
	out.Preferences = append([]string(nil), c.Preferences...)
	out.Concerns = append([]string(nil), c.Concerns...)
	return out
}

// NextAction is a predicted follow-up the bot should take.
type NextAction struct {
	Type       string  `json:"type"`
	Content    string  `json:"content"`
	Confidence float64 `json:"confidence"`
	Trigger    string  `json:"trigger"`
	Priority   int     `json:"priority"`
}

// ConversationState is the per-session state owned by the state tracker.
// Callers receive deep copies; only the tracker mutates it.
type ConversationState struct {
	SessionID             string        `json:"session_id"`
	UserID                string        `json:"user_id,omitempty"`
	CurrentPhase          Phase         `json:"current_phase"`
	MessageCount          int           `json:"message_count"`
	PhaseMessageCount     int           `json:"phase_message_count"`
	CollectedInfo         CollectedInfo `json:"collected_info"`
	ConversionProbability float64       `json:"conversion_probability"`
	UrgencyLevel          UrgencyLevel  `json:"urgency_level"`
	PredictedNextActions  []NextAction  `json:"predicted_next_actions,omitempty"`
	LastIntent            Intent        `json:"last_intent"`
	CreatedAt             time.Time     `json:"created_at"`
	LastUpdate            time.Time     `json:"last_update"`
}

// Clone returns a deep copy safe to hand to callers.
func (s *ConversationState) Clone() *ConversationState {
	out := *s
	out.CollectedInfo = s.CollectedInfo.Clone()
	out.PredictedNextActions = append([]NextAction(nil), s.PredictedNextActions...)
	return &out
}
