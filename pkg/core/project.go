package core

// ProjectConfig holds project-level configuration loaded from sqldoc.yaml.
type ProjectConfig struct {
	Title     string `koanf:"title"`
	DocsDir   string `koanf:"docs_dir"`
	AssetsDir string `koanf:"assets_dir"` // relative to DocsDir
	Index     string `koanf:"index"`      // landing document, relative to DocsDir
	Dialect   string `koanf:"dialect"`    // default dialect for ```sql blocks
	RulesDir  string `koanf:"rules_dir"`  // Starlark custom rules

	Lint    *LintConfig              `koanf:"lint"`
	Site    *SiteConfig              `koanf:"site"`
	Targets map[string]*TargetConfig `koanf:"targets"`
}

// SiteConfig holds static-site build configuration.
type SiteConfig struct {
	OutDir  string `koanf:"out_dir"`
	BaseURL string `koanf:"base_url"`
}

// TargetConfig holds a database target for live snippet verification.
type TargetConfig struct {
	Type string `koanf:"type"` // postgres, duckdb, sqlite

	// File-based databases (DuckDB, SQLite)
	Database string `koanf:"database"` // file path or ":memory:"

	// Network databases
	DSN string `koanf:"dsn"`

	// Additional driver-specific options
	Options map[string]string `koanf:"options"`
}

// LintConfig holds lint rule configuration.
type LintConfig struct {
	// Disabled contains rule IDs to disable
	Disabled []string `koanf:"disabled"`

	// Severity maps rule ID to severity override (error, warning, info, hint)
	Severity map[string]string `koanf:"severity"`

	// Rules contains rule-specific options
	Rules map[string]RuleOptions `koanf:"rules"`

	// Project holds project-level linting configuration
	Project *ProjectLintConfig `koanf:"project"`
}

// RuleOptions holds rule-specific configuration options.
type RuleOptions map[string]any

// ProjectLintConfig holds configuration for project-level linting.
type ProjectLintConfig struct {
	// Enabled controls whether project rules run during check (default: true)
	Enabled *bool `koanf:"enabled"`

	// Rules maps rule IDs to severity overrides (off, hint, info, warning, error)
	Rules map[string]string `koanf:"rules"`
}

// IsEnabled returns whether project-level linting is enabled.
func (c *ProjectLintConfig) IsEnabled() bool {
	if c == nil || c.Enabled == nil {
		return true
	}
	return *c.Enabled
}
