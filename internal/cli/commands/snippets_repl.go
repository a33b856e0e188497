package commands

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/sqldoc-labs/sqldoc/internal/cli/output"
	"github.com/sqldoc-labs/sqldoc/internal/verify"
	"github.com/sqldoc-labs/sqldoc/pkg/dialect"
	"github.com/sqldoc-labs/sqldoc/pkg/sqlcheck"
)

func newSnippetsREPLCommand() *cobra.Command {
	opts := &SnippetsOptions{}

	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Check pasted SQL interactively",
		Long: `Repl opens an interactive prompt running the offline snippet checker.
Paste or type SQL, terminate it with a semicolon, and the checker
reports the same findings sqldoc snippets check would: statement
starters, clause order, balance, dialect portability.

The session starts in the project's default dialect; switch with
.dialect. Nothing connects to a database.`,
		Example: `  sqldoc snippets repl
  sqldoc snippets repl --dialect postgres`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx, err := snippetsContext(cmd, opts)
			if err != nil {
				return err
			}
			return runSnippetsREPL(cmd, cmdCtx, opts)
		},
	}
	cmd.Flags().StringVarP(&opts.Dialect, "dialect", "d", "", "SQL dialect to check against (default: project dialect)")
	return cmd
}

func runSnippetsREPL(cmd *cobra.Command, cmdCtx *CommandContext, opts *SnippetsOptions) error {
	cfg := cmdCtx.Cfg
	r := cmdCtx.Renderer

	name := opts.Dialect
	if name == "" {
		name = cfg.Dialect
	}
	d, ok := dialect.Get(name)
	if !ok {
		return fmt.Errorf("unknown dialect %q (available: %s)", name, strings.Join(dialect.List(), ", "))
	}

	historyFile := filepath.Join(filepath.Dir(cfg.StatePath), "snippet_history")

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          replPrompt(d.Name),
		HistoryFile:     historyFile,
		AutoComplete:    newSnippetCompleter(),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer func() { _ = rl.Close() }()

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "sqldoc snippet checker (dialect: %s)\n", d.Name)
	_, _ = fmt.Fprintln(out, "End SQL with a semicolon; type .help for commands, .quit to exit")
	_, _ = fmt.Fprintln(out)

	var buffer strings.Builder
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			buffer.Reset()
			rl.SetPrompt(replPrompt(d.Name))
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}

		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		if buffer.Len() == 0 && strings.HasPrefix(trimmed, ".") {
			var quit bool
			d, quit = handleSnippetDotCommand(cmd, r, d, trimmed)
			if quit {
				break
			}
			rl.SetPrompt(replPrompt(d.Name))
			continue
		}

		buffer.WriteString(line)
		buffer.WriteString("\n")
		if !strings.HasSuffix(trimmed, ";") {
			rl.SetPrompt("   ...> ")
			continue
		}
		rl.SetPrompt(replPrompt(d.Name))

		src := buffer.String()
		buffer.Reset()
		checkSnippetSource(r, src, d)
		_, _ = fmt.Fprintln(out)
	}

	return nil
}

func replPrompt(dialectName string) string {
	return dialectName + "> "
}

// checkSnippetSource runs the offline checker over one pasted snippet and
// prints the verdict.
func checkSnippetSource(r *output.Renderer, src string, d *dialect.Dialect) {
	styles := r.Styles()

	issues := sqlcheck.Check(src, d)
	if len(issues) == 0 {
		n := len(verify.SplitStatements(src, d))
		r.Success(fmt.Sprintf("OK (%d %s)", n, output.Pluralize(n, "statement", "statements")))
		return
	}
	for _, issue := range issues {
		r.Printf("  %s  %s  %s\n",
			styles.Muted.Render(fmt.Sprintf("%d:%d", issue.Pos.Line, issue.Pos.Column)),
			styles.Code.Render(issue.Code),
			issue.Message)
	}
}

// handleSnippetDotCommand processes a REPL dot-command and returns the
// (possibly switched) dialect plus whether the loop should end.
func handleSnippetDotCommand(cmd *cobra.Command, r *output.Renderer, d *dialect.Dialect, line string) (*dialect.Dialect, bool) {
	parts := strings.Fields(line)
	command := strings.ToLower(parts[0])

	switch command {
	case ".quit", ".exit":
		return d, true

	case ".help":
		printSnippetREPLHelp(cmd.OutOrStdout())
		return d, false

	case ".dialect":
		if len(parts) < 2 {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Current dialect: %s\n", d.Name)
			return d, false
		}
		next, ok := dialect.Get(parts[1])
		if !ok {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Unknown dialect: %s (available: %s)\n",
				parts[1], strings.Join(dialect.List(), ", "))
			return d, false
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Switched to %s\n", next.Name)
		return next, false

	case ".dialects":
		for _, name := range dialect.List() {
			marker := "  "
			if name == d.Name {
				marker = "* "
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s%s\n", marker, name)
		}
		return d, false

	case ".clear":
		fmt.Print("\033[H\033[2J")
		return d, false

	default:
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Unknown command: %s (type .help for commands)\n", command)
		return d, false
	}
}

func printSnippetREPLHelp(w io.Writer) {
	help := `
Commands:
  .help             Show this help message
  .dialect [name]   Show or switch the checking dialect
  .dialects         List available dialects
  .clear            Clear the screen
  .quit / .exit     Exit the REPL

Tips:
  - SQL must end with a semicolon (;)
  - Multi-line input is accumulated until the semicolon
  - Use arrow keys to navigate history
`
	_, _ = fmt.Fprintln(w, help)
}

// newSnippetCompleter completes dot-commands and dialect names.
func newSnippetCompleter() *readline.PrefixCompleter {
	var dialectItems []readline.PrefixCompleterInterface
	for _, name := range dialect.List() {
		dialectItems = append(dialectItems, readline.PcItem(name))
	}

	return readline.NewPrefixCompleter(
		readline.PcItem(".help"),
		readline.PcItem(".dialect", dialectItems...),
		readline.PcItem(".dialects"),
		readline.PcItem(".clear"),
		readline.PcItem(".quit"),
		readline.PcItem(".exit"),
	)
}
