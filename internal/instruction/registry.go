package instruction

import (
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/tripflowai/tripflow/internal/models"
	"gopkg.in/yaml.v3"
)

// Registry holds the instruction templates. It is read-mostly: generation
// works on snapshots so admin mutations never expose a half-updated registry.
type Registry struct {
	mu        sync.RWMutex
	templates []models.InstructionTemplate
	byID      map[string]int
}

// NewRegistry creates a registry seeded with the given templates. Duplicate
// IDs keep the first occurrence.
func NewRegistry(seed []models.InstructionTemplate) *Registry {
	r := &Registry{byID: make(map[string]int)}
	for _, tmpl := range seed {
		if _, exists := r.byID[tmpl.ID]; exists {
			slog.Warn("Registry seed contains duplicate template ID, keeping first", "id", tmpl.ID)
			continue
		}
		r.byID[tmpl.ID] = len(r.templates)
		r.templates = append(r.templates, tmpl)
	}
	slog.Debug("Registry created", "templates", len(r.templates))
	return r
}

// Add registers a new template. It returns false when the ID is already taken.
func (r *Registry) Add(tmpl models.InstructionTemplate) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byID[tmpl.ID]; exists {
		slog.Warn("Registry.Add rejected duplicate template ID", "id", tmpl.ID)
		return false
	}
	r.byID[tmpl.ID] = len(r.templates)
	r.templates = append(r.templates, tmpl)
	slog.Info("Registry.Add registered template", "id", tmpl.ID, "name", tmpl.Name, "priority", tmpl.Priority)
	return true
}

// Update replaces an existing template. It returns false when the ID is
// unknown; no error is raised.
func (r *Registry) Update(tmpl models.InstructionTemplate) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	idx, exists := r.byID[tmpl.ID]
	if !exists {
		slog.Warn("Registry.Update unknown template ID", "id", tmpl.ID)
		return false
	}
	r.templates[idx] = tmpl
	slog.Info("Registry.Update replaced template", "id", tmpl.ID)
	return true
}

// Deactivate marks a template inactive. It returns false when the ID is unknown.
func (r *Registry) Deactivate(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	idx, exists := r.byID[id]
	if !exists {
		slog.Warn("Registry.Deactivate unknown template ID", "id", id)
		return false
	}
	r.templates[idx].IsActive = false
	slog.Info("Registry.Deactivate deactivated template", "id", id)
	return true
}

// Get returns a template by ID.
func (r *Registry) Get(id string) (models.InstructionTemplate, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	idx, exists := r.byID[id]
	if !exists {
		return models.InstructionTemplate{}, false
	}
	return r.templates[idx], true
}

// List returns a copy of all templates in registration order.
func (r *Registry) List() []models.InstructionTemplate {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]models.InstructionTemplate(nil), r.templates...)
}

// Snapshot returns the active templates in registration order. The copy is
// what generation evaluates, so an in-flight admin mutation is never observed
// partially.
func (r *Registry) Snapshot() []models.InstructionTemplate {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.InstructionTemplate, 0, len(r.templates))
	for _, tmpl := range r.templates {
		if tmpl.IsActive {
			out = append(out, tmpl)
		}
	}
	return out
}

// templateFile is the YAML schema for a template override file. Conditions
// use the compact "field op value" form.
type templateFile struct {
	Templates []struct {
		ID         string   `yaml:"id"`
		Name       string   `yaml:"name"`
		Priority   int      `yaml:"priority"`
		Conditions []string `yaml:"conditions,omitempty"`
		Template   string   `yaml:"template"`
		Active     *bool    `yaml:"active,omitempty"`
	} `yaml:"templates"`
}

// LoadTemplates parses a YAML template file. A malformed condition string is
// logged and kept as an always-false condition rather than failing the load.
func LoadTemplates(path string) ([]models.InstructionTemplate, error) {
	slog.Debug("instruction.LoadTemplates reading templates", "path", path)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read template file %s: %w", path, err)
	}
	var file templateFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse template file %s: %w", path, err)
	}

	var templates []models.InstructionTemplate
	for _, entry := range file.Templates {
		if entry.ID == "" || entry.Template == "" {
			return nil, fmt.Errorf("template file %s: every template needs an id and body", path)
		}
		tmpl := models.InstructionTemplate{
			ID:       entry.ID,
			Name:     entry.Name,
			Priority: entry.Priority,
			Template: entry.Template,
			IsActive: entry.Active == nil || *entry.Active,
		}
		for _, raw := range entry.Conditions {
			cond, err := ParseCondition(raw)
			if err != nil {
				slog.Warn("instruction.LoadTemplates malformed condition, will always evaluate false", "template", entry.ID, "condition", raw, "error", err)
			}
			tmpl.Conditions = append(tmpl.Conditions, cond)
		}
		templates = append(templates, tmpl)
	}
	slog.Info("instruction.LoadTemplates loaded templates", "path", path, "count", len(templates))
	return templates, nil
}
