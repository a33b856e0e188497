package lint

import (
	"fmt"

	"github.com/sqldoc-labs/sqldoc/pkg/core"
)

// Config controls which rules run and at what severity.
type Config struct {
	// DisabledRules maps rule IDs to disabled status.
	DisabledRules map[string]bool

	// SeverityOverrides maps rule IDs to overridden severities.
	SeverityOverrides map[string]core.Severity

	// RuleOptions maps rule IDs to their option maps.
	RuleOptions map[string]map[string]any
}

// NewConfig creates a Config with all rules enabled at default severity.
func NewConfig() *Config {
	return &Config{
		DisabledRules:     make(map[string]bool),
		SeverityOverrides: make(map[string]core.Severity),
		RuleOptions:       make(map[string]map[string]any),
	}
}

// IsDisabled returns whether a rule is disabled.
func (c *Config) IsDisabled(ruleID string) bool {
	if c == nil {
		return false
	}
	return c.DisabledRules[ruleID]
}

// GetSeverity returns the effective severity for a rule.
func (c *Config) GetSeverity(ruleID string, def core.Severity) core.Severity {
	if c == nil {
		return def
	}
	if sev, ok := c.SeverityOverrides[ruleID]; ok {
		return sev
	}
	return def
}

// GetRuleOptions returns the options for a rule, or nil if none set.
func (c *Config) GetRuleOptions(ruleID string) map[string]any {
	if c == nil {
		return nil
	}
	return c.RuleOptions[ruleID]
}

// Disable marks a rule as disabled. Returns c for chaining.
func (c *Config) Disable(ruleID string) *Config {
	c.DisabledRules[ruleID] = true
	return c
}

// SetSeverity overrides the severity of a rule. Returns c for chaining.
func (c *Config) SetSeverity(ruleID string, sev core.Severity) *Config {
	c.SeverityOverrides[ruleID] = sev
	return c
}

// SetRuleOption sets one option for a rule. Returns c for chaining.
func (c *Config) SetRuleOption(ruleID, key string, value any) *Config {
	opts, ok := c.RuleOptions[ruleID]
	if !ok {
		opts = make(map[string]any)
		c.RuleOptions[ruleID] = opts
	}
	opts[key] = value
	return c
}

// FromCore builds a Config from the lint section of sqldoc.yaml.
// Unknown rule IDs are accepted as-is since script rules register after
// configuration is loaded; invalid severity strings are an error.
func FromCore(lc *core.LintConfig) (*Config, error) {
	cfg := NewConfig()
	if lc == nil {
		return cfg, nil
	}
	for _, id := range lc.Disabled {
		cfg.Disable(id)
	}
	for id, s := range lc.Severity {
		sev, ok := core.ParseSeverity(s)
		if !ok {
			return nil, fmt.Errorf("lint.severity.%s: unknown severity %q", id, s)
		}
		cfg.SetSeverity(id, sev)
	}
	for id, opts := range lc.Rules {
		for k, v := range opts {
			cfg.SetRuleOption(id, k, v)
		}
	}
	return cfg, nil
}
