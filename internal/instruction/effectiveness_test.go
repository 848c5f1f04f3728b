package instruction

import (
	"fmt"
	"math"
	"testing"

	"github.com/tripflowai/tripflow/internal/models"
	"github.com/tripflowai/tripflow/internal/store"
)

func recordSet(ids ...string) models.InstructionSet {
	set := models.InstructionSet{OptimizationLevel: models.OptimizationStandard}
	for _, id := range ids {
		set.EnhancedInstructions = append(set.EnhancedInstructions, unconditionalTemplate(id, 1))
	}
	return set
}

func TestEffectivenessLog_EvictsOldestAtCapacity(t *testing.T) {
	log := NewEffectivenessLog(WithMaxRecords(3))
	for i := 0; i < 5; i++ {
		log.RecordGeneration(fmt.Sprintf("s%d", i), models.GenerationContext{}, recordSet("t"))
	}
	records := log.Records()
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	if records[0].SessionID != "s2" || records[2].SessionID != "s4" {
		t.Errorf("expected oldest two records evicted, got %s..%s", records[0].SessionID, records[2].SessionID)
	}
}

func TestEffectivenessLog_DefaultCapacity(t *testing.T) {
	log := NewEffectivenessLog()
	for i := 0; i < DefaultMaxRecords+10; i++ {
		log.RecordGeneration("s", models.GenerationContext{}, recordSet("t"))
	}
	if got := len(log.Records()); got != DefaultMaxRecords {
		t.Errorf("expected %d retained records, got %d", DefaultMaxRecords, got)
	}
}

func TestUpdateEffectiveness_ScoresMostRecentForSession(t *testing.T) {
	log := NewEffectivenessLog()
	log.RecordGeneration("s1", models.GenerationContext{}, recordSet("a"))
	log.RecordGeneration("s2", models.GenerationContext{}, recordSet("b"))
	log.RecordGeneration("s1", models.GenerationContext{}, recordSet("c"))

	log.UpdateEffectiveness("s1", 0.8, 0.6)

	records := log.Records()
	if records[0].Scored {
		t.Error("older s1 record should stay unscored")
	}
	if records[1].Scored {
		t.Error("s2 record should stay unscored")
	}
	latest := records[2]
	if !latest.Scored || math.Abs(latest.Effectiveness-0.7) > 1e-9 {
		t.Errorf("expected latest s1 record scored at 0.7, got scored=%v effectiveness=%v", latest.Scored, latest.Effectiveness)
	}
}

func TestUpdateEffectiveness_NoRecordIsNoOp(t *testing.T) {
	log := NewEffectivenessLog()
	log.UpdateEffectiveness("unknown", 1, 1)
	if got := len(log.Records()); got != 0 {
		t.Errorf("scoring an unknown session must not create records, got %d", got)
	}
}

func TestUpdateEffectiveness_ClampsScore(t *testing.T) {
	log := NewEffectivenessLog()
	log.RecordGeneration("s", models.GenerationContext{}, recordSet("a"))
	log.UpdateEffectiveness("s", 1.8, 1.4)
	if got := log.Records()[0].Effectiveness; got != 1 {
		t.Errorf("expected effectiveness clamped to 1, got %v", got)
	}
}

func TestAnalytics(t *testing.T) {
	log := NewEffectivenessLog()
	log.RecordGeneration("s1", models.GenerationContext{}, recordSet("a", "b"))
	log.RecordGeneration("s2", models.GenerationContext{}, recordSet("a"))
	log.UpdateEffectiveness("s1", 0.8, 0.4)

	got := log.Analytics()
	if got.TotalRecords != 2 || got.ScoredRecords != 1 {
		t.Errorf("unexpected record counts: %+v", got)
	}
	if got.TemplateUsage["a"] != 2 || got.TemplateUsage["b"] != 1 {
		t.Errorf("unexpected template usage: %v", got.TemplateUsage)
	}
	if got.LevelDistribution[models.OptimizationStandard] != 2 {
		t.Errorf("unexpected level distribution: %v", got.LevelDistribution)
	}
	if math.Abs(got.MeanEffectiveness-0.6) > 1e-9 {
		t.Errorf("expected mean effectiveness 0.6, got %v", got.MeanEffectiveness)
	}
}

func TestEffectivenessLog_PersistsThroughStore(t *testing.T) {
	st := store.NewInMemoryStore()
	log := NewEffectivenessLog(WithLogStore(st))
	log.RecordGeneration("s", models.GenerationContext{}, recordSet("a"))
	log.UpdateEffectiveness("s", 0.5, 0.5)

	records, err := st.ListEffectivenessRecords(10)
	if err != nil {
		t.Fatalf("ListEffectivenessRecords failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 persisted record, got %d", len(records))
	}
	if !records[0].Scored || records[0].Effectiveness != 0.5 {
		t.Errorf("expected persisted record to carry the score, got %+v", records[0])
	}
}
