package instruction

import "github.com/tripflowai/tripflow/internal/models"

// DefaultTemplates returns the compiled-in instruction template seed set.
// Lower priority sorts first; registration order breaks ties.
func DefaultTemplates() []models.InstructionTemplate {
	return []models.InstructionTemplate{
		{
			ID:       "urgency-response",
			Name:     "Urgent request handling",
			Priority: 1,
			Conditions: []models.Condition{
				{Field: models.FieldUrgencyLevel, Operator: models.OpEq, Value: "urgent"},
			},
			Template: "The traveler needs an answer NOW. Lead with the single best concrete option, skip pleasantries, and state exactly what you need from them to proceed.",
			IsActive: true,
		},
		{
			ID:       "emotional-support",
			Name:     "Frustrated traveler support",
			Priority: 1,
			Conditions: []models.Condition{
				{Field: models.FieldEmotionPrimary, Operator: models.OpEq, Value: "frustrated"},
			},
			Template: "The traveler is feeling {emotionalState.primary}. Acknowledge it briefly, do not argue, and steer toward one simple next step.",
			IsActive: true,
		},
		{
			ID:       "hot-lead",
			Name:     "High conversion focus",
			Priority: 1,
			Conditions: []models.Condition{
				{Field: models.FieldConversionProbability, Operator: models.OpGt, Value: "0.7"},
			},
			Template: "This traveler is close to booking. Remove friction: summarize the chosen option, state the price clearly, and offer to start the reservation.",
			IsActive: true,
		},
		{
			ID:       "high-urgency-pacing",
			Name:     "High urgency pacing",
			Priority: 2,
			Conditions: []models.Condition{
				{Field: models.FieldUrgencyLevel, Operator: models.OpEq, Value: "high"},
			},
			Template: "Time matters to this traveler. Keep answers short, give availability and dates first, and avoid open-ended questions.",
			IsActive: true,
		},
		{
			ID:       "booking-focus",
			Name:     "Booking phase guidance",
			Priority: 2,
			Conditions: []models.Condition{
				{Field: models.FieldConversationPhase, Operator: models.OpEq, Value: "booking"},
			},
			Template: "You are completing a booking. Collect the remaining details one at a time, confirm each one back, and summarize the full booking before finalizing.",
			IsActive: true,
		},
		{
			ID:       "decision-support",
			Name:     "Decision phase guidance",
			Priority: 2,
			Conditions: []models.Condition{
				{Field: models.FieldConversationPhase, Operator: models.OpEq, Value: "decision"},
			},
			Template: "The traveler is deciding. Reinforce their leading option with two concrete reasons it fits what they told you: {collectedInfo}.",
			IsActive: true,
		},
		{
			ID:       "comparison-guidance",
			Name:     "Comparison phase guidance",
			Priority: 3,
			Conditions: []models.Condition{
				{Field: models.FieldConversationPhase, Operator: models.OpEq, Value: "comparison"},
			},
			Template: "Compare at most two or three options side by side on price, season, and fit. End with a clear recommendation.",
			IsActive: true,
		},
		{
			ID:       "discovery-questions",
			Name:     "Discovery phase guidance",
			Priority: 3,
			Conditions: []models.Condition{
				{Field: models.FieldConversationPhase, Operator: models.OpEq, Value: "discovery"},
			},
			Template: "You are still learning what this traveler wants. Ask about the most important missing detail first, one question at a time.",
			IsActive: true,
		},
		{
			ID:       "visual-context",
			Name:     "Shared image context",
			Priority: 3,
			Conditions: []models.Condition{
				{Field: models.FieldVisionAnalysis, Operator: models.OpPresent},
			},
			Template: "The traveler shared an image with a {visionAnalysis.mood} mood. Reference it naturally and suggest destinations matching that atmosphere.",
			IsActive: true,
		},
		{
			ID:       "analytical-communicator",
			Name:     "Analytical communication style",
			Priority: 4,
			Conditions: []models.Condition{
				{Field: models.FieldCommunicationStyle, Operator: models.OpEq, Value: "analytical"},
			},
			Template: "This traveler communicates analytically. Use numbers, comparisons, and structured lists rather than emotional appeals.",
			IsActive: true,
		},
		{
			ID:       "turkish-language",
			Name:     "Turkish language register",
			Priority: 5,
			Conditions: []models.Condition{
				{Field: models.FieldDetectedLanguage, Operator: models.OpEq, Value: "tr"},
			},
			Template: "Yanıtlarını Türkçe ver. Samimi ama profesyonel bir dil kullan; fiyatları TL cinsinden belirt.",
			IsActive: true,
		},
		{
			ID:       "long-conversation-recap",
			Name:     "Long conversation recap",
			Priority: 6,
			Conditions: []models.Condition{
				{Field: models.FieldMessageCount, Operator: models.OpGt, Value: "10"},
			},
			Template: "This is a long conversation. Briefly recap what you know ({collectedInfo}) before adding anything new, so the traveler feels heard.",
			IsActive: true,
		},
	}
}
