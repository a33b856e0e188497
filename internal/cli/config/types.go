// Package config provides configuration management for the sqldoc CLI.
//
// This package extends the shared configuration types from pkg/core
// with CLI-specific fields and functionality. The shared types (TargetConfig,
// LintConfig, SiteConfig) are defined in pkg/core and re-exported here via
// type aliases for convenience.
package config

import (
	sharedcfg "github.com/sqldoc-labs/sqldoc/internal/config"
	"github.com/sqldoc-labs/sqldoc/pkg/core"
)

// TargetConfig is an alias for the shared verification target configuration.
// This allows CLI code to use config.TargetConfig without importing pkg/core.
type TargetConfig = core.TargetConfig

// LintConfig is an alias for the shared lint configuration.
// This allows CLI code to use config.LintConfig without importing pkg/core.
type LintConfig = core.LintConfig

// RuleOptions is an alias for the shared rule options type.
// This allows CLI code to use config.RuleOptions without importing pkg/core.
type RuleOptions = core.RuleOptions

// SiteConfig is an alias for the shared site build configuration.
// This allows CLI code to use config.SiteConfig without importing pkg/core.
type SiteConfig = core.SiteConfig

// Config holds all CLI configuration options.
type Config struct {
	Title     string `koanf:"title"`
	DocsDir   string `koanf:"docs_dir"`
	AssetsDir string `koanf:"assets_dir"` // relative to DocsDir
	Index     string `koanf:"index"`      // relative to DocsDir
	Dialect   string `koanf:"dialect"`
	RulesDir  string `koanf:"rules_dir"`

	StatePath    string `koanf:"state_path"`
	Verbose      bool   `koanf:"verbose"`
	OutputFormat string `koanf:"output"`

	Lint    *LintConfig              `koanf:"lint"`
	Site    *SiteConfig              `koanf:"site"`
	Targets map[string]*TargetConfig `koanf:"targets"`

	// ProjectRoot is the inferred project root directory. It is set by
	// LoadConfig, never read from the config file.
	ProjectRoot string `koanf:"-"`
}

// Project returns the project-level view of the configuration, the shape
// shared with sqldoc.yaml consumers outside the CLI (project loading, the
// LSP, the site builder).
func (c *Config) Project() *core.ProjectConfig {
	return &core.ProjectConfig{
		Title:     c.Title,
		DocsDir:   c.DocsDir,
		AssetsDir: c.AssetsDir,
		Index:     c.Index,
		Dialect:   c.Dialect,
		RulesDir:  c.RulesDir,
		Lint:      c.Lint,
		Site:      c.Site,
		Targets:   c.Targets,
	}
}

// Target returns the named verification target, or nil when it is not
// configured.
func (c *Config) Target(name string) *TargetConfig {
	if c.Targets == nil {
		return nil
	}
	return c.Targets[name]
}

// TargetNames returns the configured target names, unsorted.
func (c *Config) TargetNames() []string {
	names := make([]string, 0, len(c.Targets))
	for name := range c.Targets {
		names = append(names, name)
	}
	return names
}

// Default configuration values - uses shared defaults from internal/config
const (
	DefaultDocsDir   = sharedcfg.DefaultDocsDir
	DefaultAssetsDir = sharedcfg.DefaultAssetsDir
	DefaultIndex     = sharedcfg.DefaultIndex
	DefaultDialect   = sharedcfg.DefaultDialect
	DefaultRulesDir  = sharedcfg.DefaultRulesDir
	DefaultStateFile = ".sqldoc/state.db"
	DefaultOutput    = "auto" // Auto-detect: TTY=text, non-TTY=markdown
)
