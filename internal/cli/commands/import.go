package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/google/renameio/v2"
	"github.com/spf13/cobra"
	"golang.org/x/net/html"

	"github.com/sqldoc-labs/sqldoc/internal/cli/output"
	"github.com/sqldoc-labs/sqldoc/pkg/doc"
)

// ImportOptions holds options for the import command.
type ImportOptions struct {
	Source string
	Out    string
	Title  string
	Format string
	Force  bool
}

// NewImportCommand creates the import command.
func NewImportCommand() *cobra.Command {
	opts := &ImportOptions{}

	cmd := &cobra.Command{
		Use:   "import <file.html>",
		Short: "Convert an HTML article to a Markdown document",
		Long: `Import converts an HTML article into a Markdown document ready for the
docs directory.

The article body is located first: an <article> element if the page has
one, then <main>, then <body>. The body is converted to Markdown, given
YAML frontmatter, and written next to the other documents. The result is
scanned with the same document model the linter uses, so the summary
shows what the new document will look like to sqldoc check.

Imported fenced blocks usually lack language tags and images keep their
original URLs, so expect CB01 and IM04 findings until the document is
touched up.`,
		Example: `  sqldoc import saved-article.html
  sqldoc import saved-article.html --out docs/join-strategies.md
  sqldoc import saved-article.html --title "Join strategies"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Source = args[0]
			return runImport(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Out, "out", "", "output path (default: docs dir + source name with .md)")
	cmd.Flags().StringVar(&opts.Title, "title", "", "frontmatter title (default: page <title> or first heading)")
	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "output format for this command (text, markdown, json)")
	cmd.Flags().BoolVar(&opts.Force, "force", false, "overwrite an existing output file")

	return cmd
}

func runImport(cmd *cobra.Command, opts *ImportOptions) error {
	cmdCtx := NewCommandContextWithoutStore(cmd)
	r := cmdCtx.Renderer

	if opts.Format != "" {
		mode, err := output.ParseMode(opts.Format)
		if err != nil {
			return err
		}
		r = output.NewRenderer(os.Stdout, os.Stderr, mode)
	}

	raw, err := os.ReadFile(opts.Source)
	if err != nil {
		return fmt.Errorf("reading %s: %w", opts.Source, err)
	}

	markdown, pageTitle, err := convertHTMLArticle(raw)
	if err != nil {
		return fmt.Errorf("converting %s: %w", opts.Source, err)
	}

	title := opts.Title
	if title == "" {
		title = pageTitle
	}

	content := withFrontmatter(markdown, title)

	outPath := opts.Out
	if outPath == "" {
		base := strings.TrimSuffix(filepath.Base(opts.Source), filepath.Ext(opts.Source))
		outPath = filepath.Join(cmdCtx.Cfg.DocsDir, base+".md")
	}
	if !opts.Force {
		if _, err := os.Stat(outPath); err == nil {
			return fmt.Errorf("%s already exists. Use --force to overwrite", outPath)
		}
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o750); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	if err := renameio.WriteFile(outPath, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", outPath, err)
	}

	// Scan the result with the lint document model so the summary reflects
	// what check will see.
	d := doc.Parse([]byte(content))

	res := output.ImportResult{
		Source:     opts.Source,
		Out:        outPath,
		Title:      title,
		Headings:   len(d.Headings),
		Links:      len(d.Links),
		Images:     len(d.Images),
		CodeBlocks: len(d.CodeBlocks),
		Lines:      d.LineCount,
	}

	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(res)
	}

	styles := r.Styles()
	r.Success(fmt.Sprintf("Imported %s", styles.DocPath.Render(outPath)))
	r.Println()
	r.Printf("%s\n", output.FormatKeyValue("Title", title))
	r.Printf("%s\n", output.FormatKeyValue("Headings", fmt.Sprintf("%d", res.Headings)))
	r.Printf("%s\n", output.FormatKeyValue("Links", fmt.Sprintf("%d", res.Links)))
	r.Printf("%s\n", output.FormatKeyValue("Images", fmt.Sprintf("%d", res.Images)))
	r.Printf("%s\n", output.FormatKeyValue("Code blocks", fmt.Sprintf("%d", res.CodeBlocks)))
	r.Println()
	r.Muted(fmt.Sprintf("Next: sqldoc check %s", filepath.Base(outPath)))
	return nil
}

// convertHTMLArticle extracts the article body from an HTML page and
// converts it to Markdown. It returns the Markdown and the page title.
func convertHTMLArticle(raw []byte) (markdown, title string, err error) {
	root, err := html.Parse(strings.NewReader(string(raw)))
	if err != nil {
		return "", "", fmt.Errorf("parsing HTML: %w", err)
	}

	if t := findElement(root, "title"); t != nil {
		title = strings.TrimSpace(textContent(t))
	}

	// Prefer semantic containers over the whole body; saved pages carry
	// navigation and footers we do not want in the article.
	body := findElement(root, "article")
	if body == nil {
		body = findElement(root, "main")
	}
	if body == nil {
		body = findElement(root, "body")
	}
	if body == nil {
		return "", "", fmt.Errorf("no article, main, or body element found")
	}

	var sb strings.Builder
	if err := html.Render(&sb, body); err != nil {
		return "", "", fmt.Errorf("rendering article body: %w", err)
	}

	markdown, err = htmltomarkdown.ConvertString(sb.String())
	if err != nil {
		return "", "", fmt.Errorf("converting to markdown: %w", err)
	}
	markdown = strings.TrimSpace(markdown)

	if title == "" {
		if h1 := findElement(body, "h1"); h1 != nil {
			title = strings.TrimSpace(textContent(h1))
		}
	}
	return markdown, title, nil
}

// withFrontmatter prepends a YAML frontmatter block. An untitled import
// still gets the block so FM01 points at the right place to fill in.
func withFrontmatter(markdown, title string) string {
	var sb strings.Builder
	sb.WriteString("---\n")
	sb.WriteString(fmt.Sprintf("title: %q\n", title))
	sb.WriteString("---\n\n")
	sb.WriteString(markdown)
	sb.WriteString("\n")
	return sb.String()
}

// findElement returns the first element with the given tag, depth-first.
func findElement(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, tag); found != nil {
			return found
		}
	}
	return nil
}

// textContent concatenates the text nodes under n.
func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}
