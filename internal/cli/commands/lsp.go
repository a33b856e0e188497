package commands

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/sqldoc-labs/sqldoc/internal/cli/config"
	"github.com/sqldoc-labs/sqldoc/internal/lsp"
)

// NewLSPCommand creates the lsp command.
func NewLSPCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lsp",
		Short: "Start the Language Server Protocol server",
		Long: `Start the LSP server for editor integration.

The server communicates over stdin/stdout using JSON-RPC and publishes
lint diagnostics as documents are opened and edited. The project root
is taken from the client's initialization request (rootUri parameter).`,
		Example: `  # Start LSP server (usually launched by an editor)
  sqldoc lsp`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLSP(cmd)
		},
	}

	return cmd
}

func runLSP(cmd *cobra.Command) error {
	logger := config.GetLogger(cmd.Context())
	server := lsp.NewServerWithLogger(os.Stdin, os.Stdout, logger)
	return server.Run()
}
