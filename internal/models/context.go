package models

// EmotionalState is a pre-computed emotion classification injected by an
// external provider.
type EmotionalState struct {
	Primary    string  `json:"primary"`
	Confidence float64 `json:"confidence"`
}

// PersonalityProfile is a pre-computed personality classification injected by
// an external provider.
type PersonalityProfile struct {
	CommunicationStyle string `json:"communication_style"`
	DecisionMaking     string `json:"decision_making"`
}

// VisionAnalysis is the result of analyzing an image the user shared.
// Confidence is on a 0-100 scale, matching the vision provider.
type VisionAnalysis struct {
	Mood        string  `json:"mood"`
	Description string  `json:"description,omitempty"`
	Confidence  float64 `json:"confidence"`
}

// GenerationContext carries every signal the instruction engine may consult
// when composing a prompt. Pointer fields are optional collaborator signals.
type GenerationContext struct {
	ConversationPhase     Phase               `json:"conversation_phase"`
	MessageCount          int                 `json:"message_count"`
	EmotionalState        *EmotionalState     `json:"emotional_state,omitempty"`
	PersonalityProfile    *PersonalityProfile `json:"personality_profile,omitempty"`
	VisionAnalysis        *VisionAnalysis     `json:"vision_analysis,omitempty"`
	UrgencyLevel          UrgencyLevel        `json:"urgency_level"`
	UserIntent            Intent              `json:"user_intent"`
	CollectedInfo         CollectedInfo       `json:"collected_info"`
	DetectedLanguage      string              `json:"detected_language,omitempty"`
	ConversionProbability float64             `json:"conversion_probability"`
	RealTimeData          map[string]string   `json:"real_time_data,omitempty"`
}

// ContextFromState builds a generation context from tracker state. Optional
// collaborator signals start empty; callers attach them before generation.
func ContextFromState(s *ConversationState, detectedLanguage string) GenerationContext {
	return GenerationContext{
		ConversationPhase:     s.CurrentPhase,
		MessageCount:          s.MessageCount,
		UrgencyLevel:          s.UrgencyLevel,
		UserIntent:            s.LastIntent,
		CollectedInfo:         s.CollectedInfo.Clone(),
		DetectedLanguage:      detectedLanguage,
		ConversionProbability: s.ConversionProbability,
	}
}
