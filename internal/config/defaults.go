package config

import "github.com/sqldoc-labs/sqldoc/pkg/core"

// Default configuration values.
const (
	DefaultDocsDir    = "docs"
	DefaultAssetsDir  = "img"
	DefaultIndex      = "index.md"
	DefaultDialect    = "tsql"
	DefaultRulesDir   = "rules"
	DefaultSiteOutDir = "_site"
)

// ApplyDefaults applies default values to a ProjectConfig.
func ApplyDefaults(c *core.ProjectConfig) {
	if c == nil {
		return
	}
	if c.DocsDir == "" {
		c.DocsDir = DefaultDocsDir
	}
	if c.AssetsDir == "" {
		c.AssetsDir = DefaultAssetsDir
	}
	if c.Index == "" {
		c.Index = DefaultIndex
	}
	if c.Dialect == "" {
		c.Dialect = DefaultDialect
	}
	if c.RulesDir == "" {
		c.RulesDir = DefaultRulesDir
	}
	ApplySiteDefaults(c.Site)
}

// ApplySiteDefaults applies default values to a SiteConfig.
func ApplySiteDefaults(cfg *core.SiteConfig) {
	if cfg == nil {
		return
	}
	if cfg.OutDir == "" {
		cfg.OutDir = DefaultSiteOutDir
	}
}
