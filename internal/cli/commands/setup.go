package commands

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/sqldoc-labs/sqldoc/internal/cli/config"
	"github.com/sqldoc-labs/sqldoc/internal/cli/output"
	intconfig "github.com/sqldoc-labs/sqldoc/internal/config"
	"github.com/sqldoc-labs/sqldoc/internal/project"
	"github.com/sqldoc-labs/sqldoc/internal/state"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Store    *state.Store
	Renderer *output.Renderer
}

// NewCommandContext creates a CommandContext with an open check-history store
// and renderer.
// Returns the context and a cleanup function that must be called (typically via defer).
func NewCommandContext(cmd *cobra.Command) (*CommandContext, func(), error) {
	cc := NewCommandContextWithoutStore(cmd)

	store, err := openStore(cc.Cfg, cc.Logger)
	if err != nil {
		return nil, nil, err
	}
	cc.Store = store

	cleanup := func() {
		_ = store.Close()
	}

	return cc, cleanup, nil
}

// NewCommandContextWithoutStore creates a CommandContext without a state store.
// Useful for commands that don't need check history.
func NewCommandContextWithoutStore(cmd *cobra.Command) *CommandContext {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())
	mode := output.Mode(cfg.OutputFormat)
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: r,
	}
}

// LoadProject loads the documentation project the command operates on.
func (c *CommandContext) LoadProject(ctx context.Context) (*project.Project, error) {
	if err := c.Cfg.ValidateDirectories(); err != nil {
		return nil, err
	}
	return project.Load(ctx, project.Options{
		Root:   c.Cfg.ProjectRoot,
		Config: c.Cfg.Project(),
		Logger: c.Logger,
	})
}

// Helper functions shared across commands

// getConfig returns the current configuration.
// It uses config.GetCurrentConfig() if available, otherwise falls back to environment variables.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}

	// Fallback: read from environment with defaults
	docsDir := getEnvOrDefault("SQLDOC_DOCS_DIR", intconfig.DefaultDocsDir)
	dialect := getEnvOrDefault("SQLDOC_DIALECT", intconfig.DefaultDialect)
	statePath := getEnvOrDefault("SQLDOC_STATE_PATH", config.DefaultStateFile)
	verbose := os.Getenv("SQLDOC_VERBOSE") == "true"
	outputFormat := os.Getenv("SQLDOC_OUTPUT")

	return &config.Config{
		DocsDir:      docsDir,
		AssetsDir:    intconfig.DefaultAssetsDir,
		Index:        intconfig.DefaultIndex,
		Dialect:      dialect,
		RulesDir:     intconfig.DefaultRulesDir,
		StatePath:    statePath,
		Verbose:      verbose,
		OutputFormat: outputFormat,
	}
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// openStore opens the check-history database and applies pending migrations.
func openStore(cfg *config.Config, logger *slog.Logger) (*state.Store, error) {
	store := state.NewWithLogger(logger)
	if err := store.Open(cfg.StatePath); err != nil {
		return nil, err
	}
	if err := store.Migrate(); err != nil {
		_ = store.Close()
		return nil, err
	}
	return store, nil
}
