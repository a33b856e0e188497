package verify

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/sqldoc-labs/sqldoc/pkg/core"
)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]func(*slog.Logger) Verifier)
)

// Register adds a verifier factory to the registry. Called by driver
// implementations in their init() functions.
func Register(name string, factory func(*slog.Logger) Verifier) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = factory
}

// Get retrieves a verifier factory by target type.
func Get(name string) (func(*slog.Logger) Verifier, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	f, ok := registry[name]
	return f, ok
}

// New creates a verifier for the target. The logger may be nil.
func New(cfg core.TargetConfig, logger *slog.Logger) (Verifier, error) {
	if cfg.Type == "" {
		return nil, fmt.Errorf("target type not specified")
	}

	name := strings.ToLower(cfg.Type)
	switch name {
	case "tsql", "mssql", "sqlserver":
		return nil, fmt.Errorf("cannot verify against a %s target: T-SQL has no embeddable driver; the offline checker (sqldoc snippets check) still validates T-SQL snippets", cfg.Type)
	}

	factory, ok := Get(name)
	if !ok {
		return nil, &UnknownTargetError{Type: cfg.Type, Available: List()}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return factory(logger), nil
}

// List returns all registered target types (sorted).
func List() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsRegistered checks if a target type has a verifier.
func IsRegistered(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := registry[name]
	return ok
}

// UnknownTargetError is returned when no verifier exists for a target type.
type UnknownTargetError struct {
	Type      string
	Available []string
}

func (e *UnknownTargetError) Error() string {
	return fmt.Sprintf("unknown target type %q\nAvailable targets: %v\nHint: check targets.<name>.type in sqldoc.yaml", e.Type, e.Available)
}
