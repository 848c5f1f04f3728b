package models

import "time"

// ConditionField is the closed set of context fields a template condition may
// reference.
type ConditionField string

const (
	FieldConversationPhase     ConditionField = "conversationPhase"
	FieldEmotionPrimary        ConditionField = "emotionalState.primary"
	FieldCommunicationStyle    ConditionField = "personalityProfile.communicationStyle"
	FieldDecisionMaking        ConditionField = "personalityProfile.decisionMaking"
	FieldUrgencyLevel          ConditionField = "urgencyLevel"
	FieldDetectedLanguage      ConditionField = "detectedLanguage"
	FieldVisionAnalysis        ConditionField = "visionAnalysis"
	FieldMessageCount          ConditionField = "messageCount"
	FieldConversionProbability ConditionField = "conversionProbability"
)

// ConditionOperator is the closed set of comparison operators.
type ConditionOperator string

const (
	OpEq      ConditionOperator = "eq"
	OpNeq     ConditionOperator = "neq"
	OpGt      ConditionOperator = "gt"
	OpGte     ConditionOperator = "gte"
	OpLt      ConditionOperator = "lt"
	OpLte     ConditionOperator = "lte"
	OpPresent ConditionOperator = "present"
	// OpInvalid marks a condition that failed to parse; it always evaluates false.
	OpInvalid ConditionOperator = "invalid"
)

// Condition is a structured predicate over a whitelisted context field.
// All conditions on a template must hold for the template to activate.
type Condition struct {
	Field    ConditionField    `json:"field"`
	Operator ConditionOperator `json:"operator"`
	Value    string            `json:"value,omitempty"`
}

// InstructionTemplate is a prioritized, conditionally-activated block of
// guidance text merged into the base prompt. Lower priority sorts first.
type InstructionTemplate struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Priority   int         `json:"priority"`
	Conditions []Condition `json:"conditions,omitempty"`
	Template   string      `json:"template"`
	IsActive   bool        `json:"is_active"`
}

// InstructionSet is the result of one generation call.
type InstructionSet struct {
	BaseInstruction      string                `json:"base_instruction"`
	EnhancedInstructions []InstructionTemplate `json:"enhanced_instructions"`
	ComposedInstruction  string                `json:"composed_instruction"`
	TotalLength          int                   `json:"total_length"`
	OptimizationLevel    OptimizationLevel     `json:"optimization_level"`
}

// EffectivenessRecord ties a generated instruction set to later-reported
// quality feedback. Scored is false until feedback arrives.
type EffectivenessRecord struct {
	ID            string            `json:"id"`
	SessionID     string            `json:"session_id"`
	Context       GenerationContext `json:"context"`
	TemplateIDs   []string          `json:"template_ids"`
	Level         OptimizationLevel `json:"level"`
	Effectiveness float64           `json:"effectiveness"`
	Scored        bool              `json:"scored"`
	Timestamp     time.Time         `json:"timestamp"`
}
