package instruction

import (
	"testing"

	"github.com/tripflowai/tripflow/internal/models"
)

func testContext() *models.GenerationContext {
	return &models.GenerationContext{
		ConversationPhase:     models.PhaseDecision,
		MessageCount:          6,
		UrgencyLevel:          models.UrgencyHigh,
		DetectedLanguage:      "tr",
		ConversionProbability: 0.75,
	}
}

func TestEvaluateCondition_PhaseEquality(t *testing.T) {
	ctx := testContext()
	cond := models.Condition{Field: models.FieldConversationPhase, Operator: models.OpEq, Value: "decision"}
	if !evaluateCondition(cond, ctx) {
		t.Error("expected phase equality to hold")
	}
	cond.Value = "booking"
	if evaluateCondition(cond, ctx) {
		t.Error("expected phase equality to fail for other phase")
	}
}

func TestEvaluateCondition_VisionPresence(t *testing.T) {
	ctx := testContext()
	cond := models.Condition{Field: models.FieldVisionAnalysis, Operator: models.OpPresent}
	if evaluateCondition(cond, ctx) {
		t.Error("expected false when visionAnalysis is absent")
	}
	ctx.VisionAnalysis = &models.VisionAnalysis{Mood: "serene", Confidence: 90}
	if !evaluateCondition(cond, ctx) {
		t.Error("expected true when visionAnalysis is present")
	}
}

func TestEvaluateCondition_NumericComparisons(t *testing.T) {
	ctx := testContext()
	cases := []struct {
		cond models.Condition
		want bool
	}{
		{models.Condition{Field: models.FieldMessageCount, Operator: models.OpGt, Value: "5"}, true},
		{models.Condition{Field: models.FieldMessageCount, Operator: models.OpGt, Value: "6"}, false},
		{models.Condition{Field: models.FieldMessageCount, Operator: models.OpGte, Value: "6"}, true},
		{models.Condition{Field: models.FieldConversionProbability, Operator: models.OpGt, Value: "0.7"}, true},
		{models.Condition{Field: models.FieldConversionProbability, Operator: models.OpLt, Value: "0.7"}, false},
	}
	for i, tc := range cases {
		if got := evaluateCondition(tc.cond, ctx); got != tc.want {
			t.Errorf("case %d (%+v): expected %v, got %v", i, tc.cond, tc.want, got)
		}
	}
}

func TestEvaluateCondition_FailsClosed(t *testing.T) {
	ctx := testContext()
	cases := []models.Condition{
		{Field: "unknownField", Operator: models.OpEq, Value: "x"},
		{Field: models.FieldMessageCount, Operator: "weird", Value: "5"},
		{Field: models.FieldMessageCount, Operator: models.OpGt, Value: "not-a-number"},
		{Field: models.FieldVisionAnalysis, Operator: models.OpEq, Value: "serene"},
		{Operator: models.OpInvalid},
	}
	for i, cond := range cases {
		if evaluateCondition(cond, ctx) {
			t.Errorf("case %d (%+v): expected fail-closed false", i, cond)
		}
	}
}

func TestEvaluateCondition_MissingOptionalSignals(t *testing.T) {
	ctx := testContext()
	emotion := models.Condition{Field: models.FieldEmotionPrimary, Operator: models.OpEq, Value: "happy"}
	if evaluateCondition(emotion, ctx) {
		t.Error("expected false when emotional state is absent")
	}
	ctx.EmotionalState = &models.EmotionalState{Primary: "happy", Confidence: 0.9}
	if !evaluateCondition(emotion, ctx) {
		t.Error("expected true once emotional state is present and matching")
	}
}

func TestEvaluateConditions_AllMustHold(t *testing.T) {
	ctx := testContext()
	conds := []models.Condition{
		{Field: models.FieldConversationPhase, Operator: models.OpEq, Value: "decision"},
		{Field: models.FieldUrgencyLevel, Operator: models.OpEq, Value: "high"},
	}
	if !evaluateConditions(conds, ctx) {
		t.Error("expected all conditions to hold")
	}
	conds = append(conds, models.Condition{Field: models.FieldDetectedLanguage, Operator: models.OpEq, Value: "de"})
	if evaluateConditions(conds, ctx) {
		t.Error("expected conjunction to fail when one condition fails")
	}
	if !evaluateConditions(nil, ctx) {
		t.Error("expected empty condition list to hold")
	}
}

func TestParseCondition(t *testing.T) {
	cond, err := ParseCondition("conversationPhase == booking")
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if cond.Field != models.FieldConversationPhase || cond.Operator != models.OpEq || cond.Value != "booking" {
		t.Errorf("unexpected condition: %+v", cond)
	}

	cond, err = ParseCondition("visionAnalysis != null")
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if cond.Operator != models.OpPresent {
		t.Errorf("expected presence operator for '!= null', got %s", cond.Operator)
	}

	cond, err = ParseCondition("conversionProbability > 0.7")
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if cond.Operator != models.OpGt || cond.Value != "0.7" {
		t.Errorf("unexpected condition: %+v", cond)
	}
}

func TestParseCondition_MalformedAlwaysEvaluatesFalse(t *testing.T) {
	for _, raw := range []string{"", "garbage", "a ~~ b", "field ==", "visionAnalysis == null"} {
		cond, err := ParseCondition(raw)
		if err == nil {
			t.Errorf("%q: expected parse error", raw)
		}
		if evaluateCondition(cond, testContext()) {
			t.Errorf("%q: malformed condition must evaluate false", raw)
		}
	}
}
