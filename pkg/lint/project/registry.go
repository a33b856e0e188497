package project

import (
	"sort"
	"sync"
)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]RuleDef)
)

// Register adds a project rule to the registry.
func Register(def RuleDef) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[def.ID] = def
}

// Get returns a project rule by ID.
func Get(id string) (RuleDef, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	def, ok := registry[id]
	return def, ok
}

// All returns all project rules sorted by ID.
func All() []RuleDef {
	registryMu.RLock()
	defer registryMu.RUnlock()
	defs := make([]RuleDef, 0, len(registry))
	for _, def := range registry {
		defs = append(defs, def)
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].ID < defs[j].ID })
	return defs
}

// Count returns the number of registered project rules.
func Count() int {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return len(registry)
}

// Clear removes all project rules. Used by tests.
func Clear() {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry = make(map[string]RuleDef)
}
