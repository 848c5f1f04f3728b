package instruction

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tripflowai/tripflow/internal/models"
	"github.com/tripflowai/tripflow/internal/store"
)

// DefaultMaxRecords is the ring buffer capacity of the effectiveness log.
const DefaultMaxRecords = 50

// EffectivenessLog is a bounded FIFO history of generated instruction sets and
// their later-reported quality scores. Safe for concurrent use.
type EffectivenessLog struct {
	mu         sync.Mutex
	records    []models.EffectivenessRecord
	maxRecords int
	store      store.StateStore
	now        func() time.Time
}

// LogOpts holds configuration options for the effectiveness log.
type LogOpts struct {
	MaxRecords int
	Store      store.StateStore
}

// LogOption defines a configuration option for the effectiveness log.
type LogOption func(*LogOpts)

// WithMaxRecords overrides the retained record count.
func WithMaxRecords(n int) LogOption {
	return func(o *LogOpts) { o.MaxRecords = n }
}

// WithLogStore attaches a persistence backend; records are written through on
// creation and scoring. Store failures are logged and never surfaced.
func WithLogStore(st store.StateStore) LogOption {
	return func(o *LogOpts) { o.Store = st }
}

// NewEffectivenessLog creates an empty log.
func NewEffectivenessLog(opts ...LogOption) *EffectivenessLog {
	cfg := LogOpts{MaxRecords: DefaultMaxRecords}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &EffectivenessLog{
		maxRecords: cfg.MaxRecords,
		store:      cfg.Store,
		now:        time.Now,
	}
}

// RecordGeneration appends a record for a generated instruction set, evicting
// the oldest record when the buffer is full.
func (l *EffectivenessLog) RecordGeneration(sessionID string, genCtx models.GenerationContext, set models.InstructionSet) {
	templateIDs := make([]string, 0, len(set.EnhancedInstructions))
	for _, tmpl := range set.EnhancedInstructions {
		templateIDs = append(templateIDs, tmpl.ID)
	}
	record := models.EffectivenessRecord{
		ID:          uuid.NewString(),
		SessionID:   sessionID,
		Context:     genCtx,
		TemplateIDs: templateIDs,
		Level:       set.OptimizationLevel,
		Timestamp:   l.now(),
	}

	l.mu.Lock()
	l.records = append(l.records, record)
	if len(l.records) > l.maxRecords {
		l.records = l.records[len(l.records)-l.maxRecords:]
	}
	l.mu.Unlock()

	l.persist(record)
	slog.Debug("EffectivenessLog recorded generation", "sessionID", sessionID, "recordID", record.ID, "templates", len(templateIDs))
}

// UpdateEffectiveness sets the effectiveness of the most recent record for
// the session to the average of the quality and engagement scores. It is a
// silent no-op when the session has no record.
func (l *EffectivenessLog) UpdateEffectiveness(sessionID string, qualityScore, engagementScore float64) {
	l.mu.Lock()
	var updated *models.EffectivenessRecord
	for i := len(l.records) - 1; i >= 0; i-- {
		if l.records[i].SessionID == sessionID {
			l.records[i].Effectiveness = clamp01((qualityScore + engagementScore) / 2)
			l.records[i].Scored = true
			updated = &l.records[i]
			break
		}
	}
	var snapshot models.EffectivenessRecord
	if updated != nil {
		snapshot = *updated
	}
	l.mu.Unlock()

	if updated == nil {
		slog.Debug("EffectivenessLog.UpdateEffectiveness no record for session", "sessionID", sessionID)
		return
	}
	l.persist(snapshot)
	slog.Debug("EffectivenessLog.UpdateEffectiveness scored record",
		"sessionID", sessionID,
		"recordID", snapshot.ID,
		"effectiveness", snapshot.Effectiveness)
}

// Records returns a copy of the retained records, oldest first.
func (l *EffectivenessLog) Records() []models.EffectivenessRecord {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]models.EffectivenessRecord(nil), l.records...)
}

// Analytics summarizes the retained window: per-template usage counts,
// optimization-level distribution, and mean effectiveness of scored records.
type Analytics struct {
	TemplateUsage     map[string]int                   `json:"template_usage"`
	LevelDistribution map[models.OptimizationLevel]int `json:"level_distribution"`
	MeanEffectiveness float64                          `json:"mean_effectiveness"`
	ScoredRecords     int                              `json:"scored_records"`
	TotalRecords      int                              `json:"total_records"`
}

// Analytics computes read-only aggregates over the retained window.
func (l *EffectivenessLog) Analytics() Analytics {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := Analytics{
		TemplateUsage:     make(map[string]int),
		LevelDistribution: make(map[models.OptimizationLevel]int),
		TotalRecords:      len(l.records),
	}
	sum := 0.0
	for _, record := range l.records {
		for _, id := range record.TemplateIDs {
			out.TemplateUsage[id]++
		}
		out.LevelDistribution[record.Level]++
		if record.Scored {
			out.ScoredRecords++
			sum += record.Effectiveness
		}
	}
	if out.ScoredRecords > 0 {
		out.MeanEffectiveness = sum / float64(out.ScoredRecords)
	}
	return out
}

// persist writes a record through the attached store, if any.
func (l *EffectivenessLog) persist(record models.EffectivenessRecord) {
	if l.store == nil {
		return
	}
	if err := l.store.SaveEffectivenessRecord(record); err != nil {
		slog.Warn("EffectivenessLog failed to persist record", "error", err, "recordID", record.ID)
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
