package intent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tripflowai/tripflow/internal/genai"
	"github.com/tripflowai/tripflow/internal/models"
)

const classifierSystemPrompt = `You are an intent classifier for a travel assistant.
Classify the user message into exactly one of these intents:
greeting, discovery, exploration, comparison, booking, support, default.

Respond with ONLY a JSON object in this exact format:
{"intent": "<intent>", "confidence": <0.0-1.0>}`

// GenAIClassifier classifies intents by prompting the LLM for a JSON verdict.
// Any failure (transport, malformed JSON, unknown intent) is returned as an
// error so the caller can fall back to the default intent.
type GenAIClassifier struct {
	client genai.ClientInterface
}

// NewGenAIClassifier creates an LLM-backed intent classifier.
func NewGenAIClassifier(client genai.ClientInterface) *GenAIClassifier {
	return &GenAIClassifier{client: client}
}

// classifierVerdict is the JSON shape the model is asked to produce.
type classifierVerdict struct {
	Intent     string  `json:"intent"`
	Confidence float64 `json:"confidence"`
}

// Classify prompts the model and validates its verdict against the intent
// vocabulary.
func (c *GenAIClassifier) Classify(ctx context.Context, text string) (models.Intent, error) {
	slog.Debug("GenAIClassifier.Classify invoked", "textLength", len(text))
	raw, err := c.client.GeneratePrompt(ctx, classifierSystemPrompt, text)
	if err != nil {
		return models.Intent{}, fmt.Errorf("classifier completion failed: %w", err)
	}

	// Models occasionally wrap JSON in a code fence.
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")
	raw = strings.TrimSpace(raw)

	var verdict classifierVerdict
	if err := json.Unmarshal([]byte(raw), &verdict); err != nil {
		return models.Intent{}, fmt.Errorf("classifier returned malformed JSON: %w", err)
	}

	primary := models.IntentType(strings.ToLower(strings.TrimSpace(verdict.Intent)))
	if !primary.IsValid() {
		return models.Intent{}, fmt.Errorf("classifier returned unknown intent %q", verdict.Intent)
	}
	confidence := verdict.Confidence
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}

	slog.Debug("GenAIClassifier.Classify succeeded", "intent", primary, "confidence", confidence)
	return models.Intent{Primary: primary, Confidence: confidence}, nil
}
