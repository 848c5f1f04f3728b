package tracker

import (
	"testing"

	"github.com/tripflowai/tripflow/internal/models"
)

func TestConversionProbability_ExplorationScenario(t *testing.T) {
	state := &models.ConversationState{
		CurrentPhase: models.PhaseExploration,
		MessageCount: 4,
		UrgencyLevel: models.UrgencyLow,
	}
	// phase bonus 0.4 + infoScore 0.5 * 0.3 + one message threshold = 0.65
	got := conversionProbability(state, models.Intent{Primary: models.IntentDefault, Confidence: 0.5}, 0.5)
	if got < 0.64 || got > 0.66 {
		t.Errorf("expected ~0.65, got %f", got)
	}
}

func TestConversionProbability_ClampedToOne(t *testing.T) {
	state := &models.ConversationState{
		CurrentPhase: models.PhaseConfirmation,
		MessageCount: 20,
		UrgencyLevel: models.UrgencyUrgent,
	}
	got := conversionProbability(state, models.Intent{Confidence: 0.95}, 1.0)
	if got != 1.0 {
		t.Errorf("expected clamp to 1.0, got %f", got)
	}
}

func TestConversionProbability_MessageCountThresholds(t *testing.T) {
	base := &models.ConversationState{CurrentPhase: models.PhaseGreeting, UrgencyLevel: models.UrgencyLow}
	neutral := models.Intent{Primary: models.IntentDefault}

	cases := []struct {
		count int
		want  float64
	}{
		{1, 0.1},
		{3, 0.2},
		{6, 0.3},
		{10, 0.4},
	}
	for _, tc := range cases {
		base.MessageCount = tc.count
		got := conversionProbability(base, neutral, 0)
		if got < tc.want-0.001 || got > tc.want+0.001 {
			t.Errorf("messageCount %d: expected %f, got %f", tc.count, tc.want, got)
		}
	}
}

func TestClassifyUrgency_UrgentKeywordWinsRegardlessOfPhase(t *testing.T) {
	for _, phase := range models.AllPhases {
		got := classifyUrgency("Bu iş acil, yardım edin", phase, "")
		if got != models.UrgencyUrgent {
			t.Errorf("phase %s: expected urgent for 'acil', got %s", phase, got)
		}
	}
}

func TestClassifyUrgency_Precedence(t *testing.T) {
	cases := []struct {
		name      string
		message   string
		phase     models.Phase
		timeframe string
		want      models.UrgencyLevel
	}{
		{"high keyword", "we need this quickly please", models.PhaseGreeting, "", models.UrgencyHigh},
		{"booking phase", "devam edelim", models.PhaseBooking, "", models.UrgencyMedium},
		{"decision phase", "devam edelim", models.PhaseDecision, "", models.UrgencyMedium},
		{"near-term timeframe", "devam edelim", models.PhaseGreeting, "gelecek hafta", models.UrgencyMedium},
		{"default low", "devam edelim", models.PhaseGreeting, "", models.UrgencyLow},
	}
	for _, tc := range cases {
		if got := classifyUrgency(tc.message, tc.phase, tc.timeframe); got != tc.want {
			t.Errorf("%s: expected %s, got %s", tc.name, tc.want, got)
		}
	}
}

func TestPredictNextActions_DiscoveryAsksForMissingBudget(t *testing.T) {
	state := &models.ConversationState{
		CurrentPhase: models.PhaseDiscovery,
		UrgencyLevel: models.UrgencyLow,
	}
	actions := predictNextActions(state)
	if len(actions) == 0 {
		t.Fatal("expected actions for discovery phase")
	}
	if actions[0].Type != "ask_budget" {
		t.Errorf("expected ask_budget first, got %s", actions[0].Type)
	}
}

func TestPredictNextActions_UrgencyActionSortsFirst(t *testing.T) {
	state := &models.ConversationState{
		CurrentPhase: models.PhaseDiscovery,
		UrgencyLevel: models.UrgencyUrgent,
	}
	actions := predictNextActions(state)
	if len(actions) == 0 {
		t.Fatal("expected actions")
	}
	if actions[0].Type != "expedite_response" {
		t.Errorf("expected expedite_response first under urgency, got %s", actions[0].Type)
	}
}

func TestPredictNextActions_Sorted(t *testing.T) {
	state := &models.ConversationState{
		CurrentPhase: models.PhaseDiscovery,
		UrgencyLevel: models.UrgencyHigh,
	}
	actions := predictNextActions(state)
	for i := 1; i < len(actions); i++ {
		prev, cur := actions[i-1], actions[i]
		if prev.Priority > cur.Priority {
			t.Fatalf("actions not sorted by priority: %v", actions)
		}
		if prev.Priority == cur.Priority && prev.Confidence < cur.Confidence {
			t.Fatalf("ties not sorted by confidence desc: %v", actions)
		}
	}
}
