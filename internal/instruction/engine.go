package instruction

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/tripflowai/tripflow/internal/models"
)

// Engine evaluates templates against a generation context and composes the
// final instruction text.
type Engine struct {
	registry *Registry
	log      *EffectivenessLog
}

// NewEngine creates a rule engine over the given registry. The effectiveness
// log records every generation for later feedback.
func NewEngine(registry *Registry, effectivenessLog *EffectivenessLog) *Engine {
	return &Engine{registry: registry, log: effectivenessLog}
}

// Generate selects the templates whose conditions hold, caps them by the
// derived optimization level, substitutes placeholders, and composes the
// final instruction. It is purely computational and never fails.
func (e *Engine) Generate(ctx context.Context, baseInstruction string, genCtx models.GenerationContext, sessionID string) models.InstructionSet {
	level := optimizationLevel(&genCtx)
	maxCount := level.MaxTemplates()

	var selected []models.InstructionTemplate
	for _, tmpl := range e.registry.Snapshot() {
		if evaluateConditions(tmpl.Conditions, &genCtx) {
			selected = append(selected, tmpl)
		}
	}
	// Stable sort: ties keep registration order.
	sort.SliceStable(selected, func(i, j int) bool {
		return selected[i].Priority < selected[j].Priority
	})
	if len(selected) > maxCount {
		selected = selected[:maxCount]
	}

	composed := compose(baseInstruction, selected, &genCtx)

	set := models.InstructionSet{
		BaseInstruction:      baseInstruction,
		EnhancedInstructions: selected,
		ComposedInstruction:  composed,
		TotalLength:          len(composed),
		OptimizationLevel:    level,
	}

	if e.log != nil {
		e.log.RecordGeneration(sessionID, genCtx, set)
	}

	slog.Debug("Engine.Generate composed instruction set",
		"sessionID", sessionID,
		"level", level,
		"selected", len(selected),
		"totalLength", set.TotalLength)
	return set
}

// optimizationLevel derives the tier from composite context signals.
func optimizationLevel(ctx *models.GenerationContext) models.OptimizationLevel {
	score := 0
	if ctx.ConversionProbability > 0.7 {
		score += 2
	}
	if ctx.MessageCount > 5 {
		score++
	}
	if ctx.UrgencyLevel == models.UrgencyHigh || ctx.UrgencyLevel == models.UrgencyUrgent {
		score += 2
	}
	if ctx.EmotionalState != nil && ctx.EmotionalState.Confidence > 0.8 {
		score++
	}
	if ctx.VisionAnalysis != nil && ctx.VisionAnalysis.Confidence > 80 {
		score++
	}
	switch ctx.ConversationPhase {
	case models.PhaseComparison, models.PhaseDecision, models.PhaseBooking:
		score += 2
	}

	switch {
	case score >= 6:
		return models.OptimizationExpert
	case score >= 4:
		return models.OptimizationAdvanced
	case score >= 2:
		return models.OptimizationStandard
	default:
		return models.OptimizationBasic
	}
}

// compose concatenates the base instruction, the substituted template bodies,
// and the generated context summary.
func compose(baseInstruction string, selected []models.InstructionTemplate, ctx *models.GenerationContext) string {
	var b strings.Builder
	b.WriteString(baseInstruction)
	for _, tmpl := range selected {
		b.WriteString("\n\n")
		b.WriteString(substitutePlaceholders(tmpl.Template, ctx))
	}
	b.WriteString("\n\n")
	b.WriteString(contextSummary(ctx))
	return b.String()
}

// substitutePlaceholders literally replaces whitelisted {placeholder} markers.
// Unmatched placeholders stay verbatim.
func substitutePlaceholders(text string, ctx *models.GenerationContext) string {
	replacements := map[string]string{
		"{conversationPhase}": string(ctx.ConversationPhase),
		"{urgencyLevel}":      string(ctx.UrgencyLevel),
		"{detectedLanguage}":  ctx.DetectedLanguage,
		"{collectedInfo}":     summarizeCollectedInfo(ctx.CollectedInfo),
	}
	if ctx.EmotionalState != nil {
		replacements["{emotionalState.primary}"] = ctx.EmotionalState.Primary
	}
	if ctx.PersonalityProfile != nil {
		replacements["{personalityProfile.communicationStyle}"] = ctx.PersonalityProfile.CommunicationStyle
	}
	if ctx.VisionAnalysis != nil {
		replacements["{visionAnalysis.mood}"] = ctx.VisionAnalysis.Mood
	}
	for placeholder, value := range replacements {
		text = strings.ReplaceAll(text, placeholder, value)
	}
	return text
}

// summarizeCollectedInfo renders the collected slots as a compact summary line.
func summarizeCollectedInfo(info models.CollectedInfo) string {
	var parts []string
	if len(info.Destinations) > 0 {
		parts = append(parts, "destinations: "+strings.Join(info.Destinations, ", "))
	}
	if info.Budget != "" {
		parts = append(parts, "budget: "+info.Budget)
	}
	if info.TravelStyle != "" {
		parts = append(parts, "style: "+info.TravelStyle)
	}
	if info.GroupSize > 0 {
		parts = append(parts, fmt.Sprintf("group size: %d", info.GroupSize))
	}
	if info.Timeframe != "" {
		parts = append(parts, "timeframe: "+info.Timeframe)
	}
	if len(info.Preferences) > 0 {
		parts = append(parts, "preferences: "+strings.Join(info.Preferences, ", "))
	}
	if len(info.Concerns) > 0 {
		parts = append(parts, "concerns: "+strings.Join(info.Concerns, ", "))
	}
	if len(parts) == 0 {
		return "nothing collected yet"
	}
	return strings.Join(parts, "; ")
}

// contextSummary generates the closing summary block: phase, message-count
// framing, conversion framing, urgency note, language note, info-richness note.
func contextSummary(ctx *models.GenerationContext) string {
	var b strings.Builder
	b.WriteString("CONVERSATION CONTEXT:\n")
	b.WriteString(fmt.Sprintf("- Phase: %s\n", ctx.ConversationPhase))

	switch {
	case ctx.MessageCount < 3:
		b.WriteString("- Early conversation: establish rapport and surface needs.\n")
	case ctx.MessageCount < 8:
		b.WriteString("- Developing conversation: build on what is already known.\n")
	default:
		b.WriteString("- Deep engagement: the traveler is invested, be specific.\n")
	}

	switch {
	case ctx.ConversionProbability > 0.8:
		b.WriteString("- Very strong conversion signal: guide toward completing the booking.\n")
	case ctx.ConversionProbability > 0.6:
		b.WriteString("- Strong conversion signal: move toward a concrete decision.\n")
	case ctx.ConversionProbability > 0.3:
		b.WriteString("- Warming up: keep narrowing the options.\n")
	default:
		b.WriteString("- Early interest: focus on understanding the traveler.\n")
	}

	if ctx.UrgencyLevel == models.UrgencyHigh || ctx.UrgencyLevel == models.UrgencyUrgent {
		b.WriteString(fmt.Sprintf("- Urgency is %s: respond with concrete, immediate options.\n", ctx.UrgencyLevel))
	}

	if ctx.DetectedLanguage != "" {
		b.WriteString(fmt.Sprintf("- Respond in the user's language: %s\n", ctx.DetectedLanguage))
	}

	infoScore := ctx.CollectedInfo.CompletenessScore()
	switch {
	case infoScore > 0.7:
		b.WriteString("- Profile is rich: " + summarizeCollectedInfo(ctx.CollectedInfo) + "\n")
	case infoScore > 0.3:
		b.WriteString("- Profile is partial: " + summarizeCollectedInfo(ctx.CollectedInfo) + "\n")
	default:
		b.WriteString("- Profile is sparse: ask for the missing basics.\n")
	}

	return strings.TrimRight(b.String(), "\n")
}
