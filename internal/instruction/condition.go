// Package instruction holds the template registry, the condition-driven rule
// engine that composes the final prompt, and the effectiveness feedback log.
package instruction

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/tripflowai/tripflow/internal/models"
)

// evaluateConditions reports whether every condition on a template holds for
// the context. An empty condition list always holds.
func evaluateConditions(conditions []models.Condition, ctx *models.GenerationContext) bool {
	for _, cond := range conditions {
		if !evaluateCondition(cond, ctx) {
			return false
		}
	}
	return true
}

// evaluateCondition interprets a single structured predicate. Anything
// unrecognized fails closed: it evaluates false and is logged, never an error.
func evaluateCondition(cond models.Condition, ctx *models.GenerationContext) bool {
	switch cond.Field {
	case models.FieldConversationPhase:
		return compareString(string(ctx.ConversationPhase), cond)
	case models.FieldEmotionPrimary:
		if ctx.EmotionalState == nil {
			return false
		}
		return compareString(ctx.EmotionalState.Primary, cond)
	case models.FieldCommunicationStyle:
		if ctx.PersonalityProfile == nil {
			return false
		}
		return compareString(ctx.PersonalityProfile.CommunicationStyle, cond)
	case models.FieldDecisionMaking:
		if ctx.PersonalityProfile == nil {
			return false
		}
		return compareString(ctx.PersonalityProfile.DecisionMaking, cond)
	case models.FieldUrgencyLevel:
		return compareString(string(ctx.UrgencyLevel), cond)
	case models.FieldDetectedLanguage:
		return compareString(ctx.DetectedLanguage, cond)
	case models.FieldVisionAnalysis:
		if cond.Operator != models.OpPresent {
			slog.Warn("Condition evaluation failed closed: visionAnalysis supports only presence checks", "operator", cond.Operator)
			return false
		}
		return ctx.VisionAnalysis != nil
	case models.FieldMessageCount:
		return compareNumber(float64(ctx.MessageCount), cond)
	case models.FieldConversionProbability:
		return compareNumber(ctx.ConversionProbability, cond)
	default:
		slog.Warn("Condition evaluation failed closed: unknown field", "field", cond.Field)
		return false
	}
}

// compareString applies a string operator; non-string operators fail closed.
func compareString(actual string, cond models.Condition) bool {
	switch cond.Operator {
	case models.OpEq:
		return strings.EqualFold(actual, cond.Value)
	case models.OpNeq:
		return !strings.EqualFold(actual, cond.Value)
	case models.OpPresent:
		return actual != ""
	default:
		slog.Warn("Condition evaluation failed closed: operator not valid for string field", "field", cond.Field, "operator", cond.Operator)
		return false
	}
}

// compareNumber applies a numeric operator; an unparseable literal or a
// non-numeric operator fails closed.
func compareNumber(actual float64, cond models.Condition) bool {
	if cond.Operator == models.OpPresent {
		return true
	}
	expected, err := strconv.ParseFloat(cond.Value, 64)
	if err != nil {
		slog.Warn("Condition evaluation failed closed: non-numeric literal", "field", cond.Field, "value", cond.Value)
		return false
	}
	switch cond.Operator {
	case models.OpEq:
		return actual == expected
	case models.OpNeq:
		return actual != expected
	case models.OpGt:
		return actual > expected
	case models.OpGte:
		return actual >= expected
	case models.OpLt:
		return actual < expected
	case models.OpLte:
		return actual <= expected
	default:
		slog.Warn("Condition evaluation failed closed: unknown operator", "field", cond.Field, "operator", cond.Operator)
		return false
	}
}

// operatorTokens maps the compact-form comparison tokens used in template
// files to structured operators.
var operatorTokens = map[string]models.ConditionOperator{
	"==": models.OpEq,
	"!=": models.OpNeq,
	">":  models.OpGt,
	">=": models.OpGte,
	"<":  models.OpLt,
	"<=": models.OpLte,
}

// ParseCondition parses the compact form "field op value" used in YAML
// template files into a structured condition. "field != null" and
// "field == null" become presence checks. The error is informational; the
// condition returned on error always evaluates false.
func ParseCondition(raw string) (models.Condition, error) {
	fields := strings.Fields(strings.TrimSpace(raw))
	if len(fields) != 3 {
		return models.Condition{Operator: models.OpInvalid}, fmt.Errorf("condition %q: expected \"field op value\"", raw)
	}
	field := models.ConditionField(fields[0])
	op, ok := operatorTokens[fields[1]]
	if !ok {
		return models.Condition{Operator: models.OpInvalid}, fmt.Errorf("condition %q: unknown operator %q", raw, fields[1])
	}
	value := fields[2]

	if strings.EqualFold(value, "null") {
		switch op {
		case models.OpNeq:
			return models.Condition{Field: field, Operator: models.OpPresent}, nil
		case models.OpEq:
			// "== null" has no dedicated operator; it is the negation of
			// presence, which the closed grammar does not express.
			return models.Condition{Operator: models.OpInvalid}, fmt.Errorf("condition %q: null equality is not supported", raw)
		}
	}
	return models.Condition{Field: field, Operator: op, Value: value}, nil
}
