// Package catalog provides the declarative conversation flow table: for each
// phase, its expected duration, trigger keywords, and weighted candidate next
// phases. The graph is directed forward; a trigger may only target a phase
// listed among the current phase's candidates, so backward transitions are
// impossible by construction.
package catalog

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/tripflowai/tripflow/internal/models"
	"gopkg.in/yaml.v3"
)

// WeightedPhase is a candidate next phase with a relative weight.
type WeightedPhase struct {
	Phase  models.Phase `yaml:"phase" json:"phase"`
	Weight float64      `yaml:"weight" json:"weight"`
}

// PhaseEntry describes one phase of the conversation flow.
type PhaseEntry struct {
	// ExpectedDuration is the typical number of messages spent in the phase.
	// A session overstaying 2x this duration is force-advanced.
	ExpectedDuration int `yaml:"expected_duration" json:"expected_duration"`
	// NextPhases lists candidate transitions in preference order. The first
	// entry is the force-advance target on duration overrun.
	NextPhases []WeightedPhase `yaml:"next_phases,omitempty" json:"next_phases,omitempty"`
	// Triggers maps a candidate next phase to the keywords that fire it.
	Triggers map[models.Phase][]string `yaml:"triggers,omitempty" json:"triggers,omitempty"`
}

// Catalog is the full flow table keyed by phase.
type Catalog struct {
	entries map[models.Phase]PhaseEntry
}

// Entry returns the catalog entry for a phase.
func (c *Catalog) Entry(p models.Phase) (PhaseEntry, bool) {
	e, ok := c.entries[p]
	return e, ok
}

// ExpectedDuration returns the expected message count for a phase, or 0 when
// the phase is unknown.
func (c *Catalog) ExpectedDuration(p models.Phase) int {
	return c.entries[p].ExpectedDuration
}

// MatchTrigger scans the lower-cased message for trigger keywords of the
// phase's candidates and returns the first candidate whose keyword matches.
// Candidates are checked in NextPhases order so the catalog, not map
// iteration, decides ties.
func (c *Catalog) MatchTrigger(current models.Phase, message string) (models.Phase, string, bool) {
	entry, ok := c.entries[current]
	if !ok {
		return "", "", false
	}
	lowered := strings.ToLower(message)
	for _, candidate := range entry.NextPhases {
		for _, keyword := range entry.Triggers[candidate.Phase] {
			if strings.Contains(lowered, keyword) {
				return candidate.Phase, keyword, true
			}
		}
	}
	return "", "", false
}

// ForceAdvanceTarget returns the first listed candidate next phase.
func (c *Catalog) ForceAdvanceTarget(current models.Phase) (models.Phase, bool) {
	entry, ok := c.entries[current]
	if !ok || len(entry.NextPhases) == 0 {
		return "", false
	}
	return entry.NextPhases[0].Phase, true
}

// IsCandidate reports whether next is a listed candidate of current.
func (c *Catalog) IsCandidate(current, next models.Phase) bool {
	entry, ok := c.entries[current]
	if !ok {
		return false
	}
	for _, candidate := range entry.NextPhases {
		if candidate.Phase == next {
			return true
		}
	}
	return false
}

// Default returns the compiled-in flow catalog.
func Default() *Catalog {
	return &Catalog{entries: map[models.Phase]PhaseEntry{
		models.PhaseGreeting: {
			ExpectedDuration: 2,
			NextPhases: []WeightedPhase{
				{Phase: models.PhaseDiscovery, Weight: 0.8},
				{Phase: models.PhaseExploration, Weight: 0.2},
			},
			Triggers: map[models.Phase][]string{
				models.PhaseDiscovery: {
					"where", "nereye", "trip", "travel", "seyahat", "tatil",
					"honeymoon", "balayı", "holiday", "vacation", "gitmek",
				},
				models.PhaseExploration: {
					"hotel", "otel", "flight", "uçak", "tour",
				},
			},
		},
		models.PhaseDiscovery: {
			ExpectedDuration: 4,
			NextPhases: []WeightedPhase{
				{Phase: models.PhaseExploration, Weight: 0.7},
				{Phase: models.PhaseComparison, Weight: 0.3},
			},
			Triggers: map[models.Phase][]string{
				models.PhaseExploration: {
					"suggest", "öner", "recommend", "tavsiye", "option",
					"seçenek", "show me", "göster",
				},
				models.PhaseComparison: {
					"compare", "karşılaştır", "versus", " vs ",
				},
			},
		},
		models.PhaseExploration: {
			ExpectedDuration: 5,
			NextPhases: []WeightedPhase{
				{Phase: models.PhaseComparison, Weight: 0.6},
				{Phase: models.PhaseDecision, Weight: 0.4},
			},
			Triggers: map[models.Phase][]string{
				models.PhaseComparison: {
					"compare", "karşılaştır", "difference", "fark",
					"better", "daha iyi", "which one", "hangisi",
				},
				models.PhaseDecision: {
					"decide", "karar", "choose", "seç",
				},
			},
		},
		models.PhaseComparison: {
			ExpectedDuration: 3,
			NextPhases: []WeightedPhase{
				{Phase: models.PhaseDecision, Weight: 0.7},
				{Phase: models.PhaseBooking, Weight: 0.3},
			},
			Triggers: map[models.Phase][]string{
				models.PhaseDecision: {
					"decide", "karar verdim", "prefer", "tercih",
				},
				models.PhaseBooking: {
					"book", "rezervasyon", "reserve", "ayırt",
				},
			},
		},
		models.PhaseDecision: {
			ExpectedDuration: 2,
			NextPhases: []WeightedPhase{
				{Phase: models.PhaseBooking, Weight: 0.9},
			},
			Triggers: map[models.Phase][]string{
				models.PhaseBooking: {
					"book", "rezervasyon", "buy", "satın", "payment",
					"ödeme", "reserve",
				},
			},
		},
		models.PhaseBooking: {
			ExpectedDuration: 3,
			NextPhases: []WeightedPhase{
				{Phase: models.PhaseConfirmation, Weight: 1.0},
			},
			Triggers: map[models.Phase][]string{
				models.PhaseConfirmation: {
					"confirm", "onayla", "onaylıyorum", "done", "tamamdır",
					"paid", "ödedim",
				},
			},
		},
		models.PhaseConfirmation: {
			ExpectedDuration: 1,
		},
	}}
}

// catalogFile is the YAML schema for a catalog override file.
type catalogFile struct {
	Phases map[models.Phase]PhaseEntry `yaml:"phases"`
}

// Load parses a YAML catalog file and validates it. The file replaces the
// compiled-in defaults entirely.
func Load(path string) (*Catalog, error) {
	slog.Debug("catalog.Load reading flow catalog", "path", path)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file %s: %w", path, err)
	}
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse catalog file %s: %w", path, err)
	}
	c := &Catalog{entries: file.Phases}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid catalog file %s: %w", path, err)
	}
	slog.Info("catalog.Load loaded flow catalog", "path", path, "phases", len(file.Phases))
	return c, nil
}

// Validate checks structural invariants: all seven phases present, known
// phases only, positive weights, terminal phase without transitions, and
// every trigger target listed among the candidates.
func (c *Catalog) Validate() error {
	for _, p := range models.AllPhases {
		if _, ok := c.entries[p]; !ok {
			return fmt.Errorf("catalog missing phase %s", p)
		}
	}
	for phase, entry := range c.entries {
		if !phase.IsValid() {
			return fmt.Errorf("unknown phase %s", phase)
		}
		if phase.IsTerminal() && len(entry.NextPhases) > 0 {
			return fmt.Errorf("terminal phase %s must not have next phases", phase)
		}
		if !phase.IsTerminal() && len(entry.NextPhases) == 0 {
			return fmt.Errorf("non-terminal phase %s has no next phases", phase)
		}
		if entry.ExpectedDuration <= 0 {
			return fmt.Errorf("phase %s has non-positive expected duration", phase)
		}
		for _, candidate := range entry.NextPhases {
			if !candidate.Phase.IsValid() {
				return fmt.Errorf("phase %s lists unknown candidate %s", phase, candidate.Phase)
			}
			if candidate.Weight <= 0 {
				return fmt.Errorf("phase %s candidate %s has non-positive weight", phase, candidate.Phase)
			}
		}
		for target := range entry.Triggers {
			if !c.IsCandidate(phase, target) {
				return fmt.Errorf("phase %s has triggers for %s which is not a candidate", phase, target)
			}
		}
	}
	return nil
}
