package dialect

import (
	"sort"
	"strings"
	"sync"
)

// Dialect registry
var (
	dialectsMu sync.RWMutex
	dialects   = make(map[string]*Dialect)
	aliases    = make(map[string]string)
)

// Get returns a dialect by name or alias.
func Get(name string) (*Dialect, bool) {
	key := strings.ToLower(name)
	dialectsMu.RLock()
	defer dialectsMu.RUnlock()
	if canonical, ok := aliases[key]; ok {
		key = canonical
	}
	d, ok := dialects[key]
	return d, ok
}

// Register registers a dialect in the global registry.
// Called by dialect definitions in builtin.go.
func Register(d *Dialect) {
	dialectsMu.Lock()
	defer dialectsMu.Unlock()
	dialects[strings.ToLower(d.Name)] = d
}

// RegisterAlias maps an alternative name to a registered dialect.
func RegisterAlias(alias, canonical string) {
	dialectsMu.Lock()
	defer dialectsMu.Unlock()
	aliases[strings.ToLower(alias)] = strings.ToLower(canonical)
}

// List returns all registered dialect names (sorted).
func List() []string {
	dialectsMu.RLock()
	defer dialectsMu.RUnlock()
	names := make([]string, 0, len(dialects))
	for name := range dialects {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Aliases returns the alias map (alias -> canonical name).
func Aliases() map[string]string {
	dialectsMu.RLock()
	defer dialectsMu.RUnlock()
	out := make(map[string]string, len(aliases))
	for k, v := range aliases {
		out[k] = v
	}
	return out
}
