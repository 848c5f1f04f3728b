// Package emotion provides a heuristic emotional-state detector. It is the
// default provider for the optional emotional signal consumed by the
// instruction engine; deployments with a dedicated emotion service inject
// that instead.
package emotion

import (
	"log/slog"
	"strings"
	"sync"
)

// emotionKeywords maps each emotion to the keywords that vote for it.
// Matching is case-insensitive substring containment, Turkish and English.
var emotionKeywords = map[string][]string{
	"excited": {
		"harika", "mükemmel", "can't wait", "sabırsız", "amazing", "awesome",
		"heyecan", "excited", "wonderful", "!",
	},
	"frustrated": {
		"sinir", "bıktım", "frustrat", "annoy", "saçma", "ridiculous",
		"çalışmıyor", "not working", "yine mi", "again?",
	},
	"anxious": {
		"endişe", "korkuyorum", "worried", "nervous", "emin değilim",
		"not sure", "risky", "riskli", "ya olmazsa",
	},
	"disappointed": {
		"hayal kırıklığı", "disappointed", "üzgün", "beklemiyordum", "maalesef",
		"unfortunately", "let down",
	},
}

// detectionOrder fixes evaluation order so keyword ties resolve the same way
// on every run.
var detectionOrder = []string{"frustrated", "anxious", "disappointed", "excited"}

// smoothing blends the previous confidence into the new one so a single
// neutral message does not erase an established emotional read.
const smoothing = 0.3

// Detector classifies the emotional tone of user messages per session.
// Safe for concurrent use.
type Detector struct {
	mu       sync.Mutex
	sessions map[string]detection
}

type detection struct {
	primary    string
	confidence float64
}

// NewDetector creates an empty detector.
func NewDetector() *Detector {
	return &Detector{sessions: make(map[string]detection)}
}

// Detect scores the message against the emotion vocabulary and returns the
// dominant emotion with a confidence in [0,1]. A message with no emotional
// keywords returns ("neutral", 0) and decays any previous read.
func (d *Detector) Detect(sessionID, message string) (string, float64) {
	lowered := strings.ToLower(message)
	best := ""
	bestHits := 0
	for _, emotion := range detectionOrder {
		hits := 0
		for _, keyword := range emotionKeywords[emotion] {
			if strings.Contains(lowered, keyword) {
				hits++
			}
		}
		if hits > bestHits {
			bestHits = hits
			best = emotion
		}
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	prev := d.sessions[sessionID]

	if best == "" {
		decayed := prev.confidence * smoothing
		if decayed < 0.3 {
			delete(d.sessions, sessionID)
			return "neutral", 0
		}
		d.sessions[sessionID] = detection{primary: prev.primary, confidence: decayed}
		return prev.primary, decayed
	}

	confidence := 0.5 + 0.15*float64(bestHits-1)
	if confidence > 0.95 {
		confidence = 0.95
	}
	if prev.primary == best {
		confidence = confidence + smoothing*(prev.confidence)
		if confidence > 0.95 {
			confidence = 0.95
		}
	}
	d.sessions[sessionID] = detection{primary: best, confidence: confidence}
	slog.Debug("emotion.Detect", "sessionID", sessionID, "emotion", best, "confidence", confidence, "hits", bestHits)
	return best, confidence
}

// Forget drops the retained read for a session.
func (d *Detector) Forget(sessionID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.sessions, sessionID)
}
