// Package intent provides the intent classification collaborator consumed by
// the state tracker: a deterministic keyword classifier, a GenAI-backed
// classifier, and lightweight language detection.
package intent

import (
	"context"
	"log/slog"
	"strings"

	"github.com/tripflowai/tripflow/internal/models"
)

// Classifier classifies a single user message. Implementations may fail; the
// tracker falls back to the default intent when they do.
type Classifier interface {
	Classify(ctx context.Context, text string) (models.Intent, error)
}

// intentKeywords maps each intent to the keywords that vote for it. Matching
// is case-insensitive substring containment.
var intentKeywords = map[models.IntentType][]string{
	models.IntentGreeting: {
		"merhaba", "selam", "hello", "hi ", "hey", "günaydın", "iyi günler",
	},
	models.IntentDiscovery: {
		"nereye", "where", "tatil", "holiday", "vacation", "travel", "seyahat",
		"gitmek", "balayı", "honeymoon", "gezmek",
	},
	models.IntentExploration: {
		"öner", "tavsiye", "suggest", "recommend", "seçenek", "option",
		"göster", "show",
	},
	models.IntentComparison: {
		"karşılaştır", "compare", "hangisi", "which one", "fark", "difference",
		"daha iyi", "better",
	},
	models.IntentBooking: {
		"rezervasyon", "book", "satın", "buy", "ödeme", "payment", "ayırt",
		"reserve", "confirm", "onayla",
	},
	models.IntentSupport: {
		"yardım", "help", "sorun", "problem", "şikayet", "complaint",
	},
}

// classificationOrder fixes the evaluation order so ties resolve
// deterministically, with the more committal intents checked first.
var classificationOrder = []models.IntentType{
	models.IntentBooking,
	models.IntentComparison,
	models.IntentExploration,
	models.IntentDiscovery,
	models.IntentSupport,
	models.IntentGreeting,
}

// KeywordClassifier is a deterministic keyword-voting classifier. It never
// fails and serves as the fallback when no LLM is configured.
type KeywordClassifier struct{}

// NewKeywordClassifier creates a keyword-based intent classifier.
func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{}
}

// Classify scores each intent by keyword hits and returns the best match.
// Confidence grows with the number of matched keywords and saturates at 0.9;
// a message with no hits yields the default intent.
func (c *KeywordClassifier) Classify(ctx context.Context, text string) (models.Intent, error) {
	lowered := strings.ToLower(text)
	best := models.DefaultIntent()
	bestHits := 0
	for _, candidate := range classificationOrder {
		hits := 0
		for _, keyword := range intentKeywords[candidate] {
			if strings.Contains(lowered, keyword) {
				hits++
			}
		}
		if hits > bestHits {
			bestHits = hits
			best = models.Intent{Primary: candidate, Confidence: keywordConfidence(hits)}
		}
	}
	slog.Debug("KeywordClassifier.Classify", "intent", best.Primary, "confidence", best.Confidence, "hits", bestHits)
	return best, nil
}

// keywordConfidence maps hit counts to a confidence in (0, 0.9].
func keywordConfidence(hits int) float64 {
	conf := 0.5 + 0.2*float64(hits-1)
	if conf > 0.9 {
		conf = 0.9
	}
	return conf
}

// turkishMarkers are characters and stopwords that identify Turkish text.
var turkishMarkers = []string{
	"ç", "ğ", "ı", "ö", "ş", "ü",
	" ve ", " bir ", " için ", "mıyız", "miyiz", "lar ", "ler ",
}

// DetectLanguage performs coarse language detection sufficient for the
// language note in composed instructions. It distinguishes Turkish from the
// English default.
func DetectLanguage(text string) string {
	lowered := strings.ToLower(text)
	for _, marker := range turkishMarkers {
		if strings.Contains(lowered, marker) {
			return "tr"
		}
	}
	return "en"
}
