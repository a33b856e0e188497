package lint

import (
	"sort"
	"sync"
)

// Registry holds registered lint rules.
type Registry struct {
	mu    sync.RWMutex
	rules map[string]RuleDef
}

// NewRegistry creates an empty rule registry.
func NewRegistry() *Registry {
	return &Registry{rules: make(map[string]RuleDef)}
}

// Register adds a rule to the registry. Registering an ID twice replaces
// the earlier definition, which lets script rules shadow built-ins.
func (r *Registry) Register(def RuleDef) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rules[def.ID] = def
}

// Get returns a rule by ID.
func (r *Registry) Get(id string) (RuleDef, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.rules[id]
	return def, ok
}

// All returns all registered rules sorted by ID.
func (r *Registry) All() []RuleDef {
	r.mu.RLock()
	defer r.mu.RUnlock()
	defs := make([]RuleDef, 0, len(r.rules))
	for _, def := range r.rules {
		defs = append(defs, def)
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].ID < defs[j].ID })
	return defs
}

// ByGroup returns all rules in the given group sorted by ID.
func (r *Registry) ByGroup(group string) []RuleDef {
	var defs []RuleDef
	for _, def := range r.All() {
		if def.Group == group {
			defs = append(defs, def)
		}
	}
	return defs
}

// Count returns the number of registered rules.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rules)
}

// Clear removes all rules. Used by tests.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rules = make(map[string]RuleDef)
}

// defaultRegistry is the global registry built-in rules register into.
var defaultRegistry = NewRegistry()

// Register adds a rule to the default registry.
func Register(def RuleDef) { defaultRegistry.Register(def) }

// Get returns a rule from the default registry by ID.
func Get(id string) (RuleDef, bool) { return defaultRegistry.Get(id) }

// All returns all rules in the default registry sorted by ID.
func All() []RuleDef { return defaultRegistry.All() }

// ByGroup returns default-registry rules in the given group.
func ByGroup(group string) []RuleDef { return defaultRegistry.ByGroup(group) }

// RuleCount returns the number of rules in the default registry.
func RuleCount() int { return defaultRegistry.Count() }
