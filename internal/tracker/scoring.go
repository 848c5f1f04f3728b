package tracker

import (
	"sort"
	"strings"

	"github.com/tripflowai/tripflow/internal/models"
)

// phaseBonus is the monotonically increasing base conversion probability per
// phase.
var phaseBonus = map[models.Phase]float64{
	models.PhaseGreeting:     0.1,
	models.PhaseDiscovery:    0.2,
	models.PhaseExploration:  0.4,
	models.PhaseComparison:   0.6,
	models.PhaseDecision:     0.8,
	models.PhaseBooking:      0.9,
	models.PhaseConfirmation: 1.0,
}

// messageCountThresholds each add 0.1 to the conversion probability once the
// session passes them.
var messageCountThresholds = []int{3, 6, 10}

// conversionProbability computes the heuristic conversion score for the
// current turn, clamped to [0,1].
func conversionProbability(state *models.ConversationState, userIntent models.Intent, infoScore float64) float64 {
	score := phaseBonus[state.CurrentPhase]
	score += infoScore * 0.3

	for _, threshold := range messageCountThresholds {
		if state.MessageCount >= threshold {
			score += 0.1
		}
	}

	if userIntent.Confidence > 0.8 {
		score += 0.1
	}

	switch state.UrgencyLevel {
	case models.UrgencyHigh:
		score += 0.15
	case models.UrgencyUrgent:
		score += 0.25
	}

	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}
	return score
}

// urgentKeywords force the urgent level regardless of phase.
var urgentKeywords = []string{
	"acil", "asap", "hemen", "urgent", "immediately", "right now", "bugün",
}

// highUrgencyKeywords force the high level.
var highUrgencyKeywords = []string{
	"yakında", "soon", "bu hafta", "this week", "çabuk", "quickly", "en kısa",
}

// nearTermTimeframes mark an already-captured timeframe as time-sensitive.
var nearTermTimeframes = []string{
	"yarın", "tomorrow", "hafta", "week", "gün", "day", "weekend",
}

// classifyUrgency applies the urgency rules in precedence order: explicit
// urgent keywords, explicit high-urgency keywords, late phase, near-term
// timeframe, else low.
func classifyUrgency(message string, phase models.Phase, timeframe string) models.UrgencyLevel {
	lowered := strings.ToLower(message)

	for _, keyword := range urgentKeywords {
		if strings.Contains(lowered, keyword) {
			return models.UrgencyUrgent
		}
	}
	for _, keyword := range highUrgencyKeywords {
		if strings.Contains(lowered, keyword) {
			return models.UrgencyHigh
		}
	}
	if phase == models.PhaseBooking || phase == models.PhaseDecision {
		return models.UrgencyMedium
	}
	if timeframe != "" {
		loweredTimeframe := strings.ToLower(timeframe)
		for _, marker := range nearTermTimeframes {
			if strings.Contains(loweredTimeframe, marker) {
				return models.UrgencyMedium
			}
		}
	}
	return models.UrgencyLow
}

// predictNextActions produces phase-specific suggestions plus a universal
// expedite action under high urgency, sorted by priority ascending then
// confidence descending.
func predictNextActions(state *models.ConversationState) []models.NextAction {
	var actions []models.NextAction
	info := state.CollectedInfo

	switch state.CurrentPhase {
	case models.PhaseGreeting:
		actions = append(actions, models.NextAction{
			Type:       "ask_destination",
			Content:    "Ask where the traveler would like to go",
			Confidence: 0.8,
			Trigger:    "phase",
			Priority:   1,
		})
	case models.PhaseDiscovery:
		if info.Budget == "" {
			actions = append(actions, models.NextAction{
				Type:       "ask_budget",
				Content:    "Ask about the travel budget",
				Confidence: 0.9,
				Trigger:    "missing_slot",
				Priority:   1,
			})
		}
		if info.GroupSize == 0 {
			actions = append(actions, models.NextAction{
				Type:       "ask_group_size",
				Content:    "Ask how many people are traveling",
				Confidence: 0.8,
				Trigger:    "missing_slot",
				Priority:   2,
			})
		}
		if info.Timeframe == "" {
			actions = append(actions, models.NextAction{
				Type:       "ask_timeframe",
				Content:    "Ask when the trip should happen",
				Confidence: 0.75,
				Trigger:    "missing_slot",
				Priority:   2,
			})
		}
		if len(actions) == 0 {
			actions = append(actions, models.NextAction{
				Type:       "suggest_options",
				Content:    "Suggest destinations matching the collected profile",
				Confidence: 0.7,
				Trigger:    "phase",
				Priority:   3,
			})
		}
	case models.PhaseExploration:
		actions = append(actions, models.NextAction{
			Type:       "present_options",
			Content:    "Present a short list of concrete options",
			Confidence: 0.8,
			Trigger:    "phase",
			Priority:   1,
		})
		if len(info.Preferences) == 0 {
			actions = append(actions, models.NextAction{
				Type:       "ask_preferences",
				Content:    "Ask what matters most in the trip",
				Confidence: 0.7,
				Trigger:    "missing_slot",
				Priority:   2,
			})
		}
	case models.PhaseComparison:
		actions = append(actions, models.NextAction{
			Type:       "highlight_differences",
			Content:    "Highlight the key differences between shortlisted options",
			Confidence: 0.8,
			Trigger:    "phase",
			Priority:   1,
		})
		if len(info.Concerns) > 0 {
			actions = append(actions, models.NextAction{
				Type:       "address_concerns",
				Content:    "Address the stated concerns: " + strings.Join(info.Concerns, ", "),
				Confidence: 0.75,
				Trigger:    "concerns",
				Priority:   2,
			})
		}
	case models.PhaseDecision:
		actions = append(actions,
			models.NextAction{
				Type:       "reinforce_choice",
				Content:    "Reinforce the traveler's leading choice",
				Confidence: 0.8,
				Trigger:    "phase",
				Priority:   1,
			},
			models.NextAction{
				Type:       "offer_booking",
				Content:    "Offer to start the booking",
				Confidence: 0.75,
				Trigger:    "phase",
				Priority:   2,
			})
	case models.PhaseBooking:
		actions = append(actions,
			models.NextAction{
				Type:       "collect_booking_details",
				Content:    "Collect remaining booking details",
				Confidence: 0.85,
				Trigger:    "phase",
				Priority:   1,
			},
			models.NextAction{
				Type:       "confirm_summary",
				Content:    "Summarize the booking for confirmation",
				Confidence: 0.8,
				Trigger:    "phase",
				Priority:   2,
			})
	case models.PhaseConfirmation:
		actions = append(actions, models.NextAction{
			Type:       "send_confirmation",
			Content:    "Send the booking confirmation and next steps",
			Confidence: 0.9,
			Trigger:    "phase",
			Priority:   1,
		})
	}

	if state.UrgencyLevel == models.UrgencyHigh || state.UrgencyLevel == models.UrgencyUrgent {
		actions = append(actions, models.NextAction{
			Type:       "expedite_response",
			Content:    "Prioritize a fast, concrete answer",
			Confidence: 0.9,
			Trigger:    "urgency",
			Priority:   0,
		})
	}

	sort.SliceStable(actions, func(i, j int) bool {
		if actions[i].Priority != actions[j].Priority {
			return actions[i].Priority < actions[j].Priority
		}
		return actions[i].Confidence > actions[j].Confidence
	})
	return actions
}
