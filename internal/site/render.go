package site

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"

	"github.com/sqldoc-labs/sqldoc/pkg/doc"
)

// markdown is the shared goldmark instance. Heading IDs are supplied per
// document through a parser context carrying a fresh slugger.
var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithParserOptions(
		parser.WithAutoHeadingID(),
		parser.WithASTTransformers(util.Prioritized(&linkRewriter{}, 100)),
	),
	goldmark.WithRendererOptions(html.WithUnsafe()),
)

// renderMarkdown converts a document body to HTML. Frontmatter is stripped
// first; goldmark would read its delimiters as a setext heading.
func renderMarkdown(d *doc.Document) ([]byte, error) {
	source := d.Source
	if d.Frontmatter != nil && d.Frontmatter.Present {
		if end := d.Frontmatter.EndOffset; end > 0 && end <= len(source) {
			source = source[end:]
		}
	}

	ctx := parser.NewContext(parser.WithIDs(newSlugIDs()))
	var buf bytes.Buffer
	if err := markdown.Convert(source, &buf, parser.WithContext(ctx)); err != nil {
		return nil, fmt.Errorf("converting markdown: %w", err)
	}
	return buf.Bytes(), nil
}

// slugIDs makes goldmark assign the linter's anchors to headings. The
// dedup behavior matches too: a repeated heading gets "-1", "-2" suffixes.
type slugIDs struct {
	s *doc.Slugger
}

func newSlugIDs() *slugIDs {
	return &slugIDs{s: doc.NewSlugger()}
}

// Generate implements parser.IDs.
func (ids *slugIDs) Generate(value []byte, kind ast.NodeKind) []byte {
	slug := ids.s.Slug(string(value))
	if slug == "" {
		slug = "section"
	}
	return []byte(slug)
}

// Put implements parser.IDs.
func (ids *slugIDs) Put(value []byte) {}

// linkRewriter retargets relative links from source documents to built
// pages: guide.md becomes guide.html, fragments carried over. External and
// anchor-only links pass through.
type linkRewriter struct{}

// Transform implements parser.ASTTransformer.
func (*linkRewriter) Transform(node *ast.Document, reader text.Reader, pc parser.Context) {
	_ = ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if l, ok := n.(*ast.Link); ok {
			l.Destination = rewriteDestination(l.Destination)
		}
		return ast.WalkContinue, nil
	})
}

func rewriteDestination(dest []byte) []byte {
	s := string(dest)
	if s == "" || strings.Contains(s, "://") || strings.HasPrefix(s, "//") ||
		strings.HasPrefix(s, "#") || strings.HasPrefix(s, "mailto:") {
		return dest
	}

	file, fragment, hasFragment := strings.Cut(s, "#")
	if !strings.EqualFold(strings.TrimSpace(pathExt(file)), ".md") {
		return dest
	}
	out := file[:len(file)-len(pathExt(file))] + ".html"
	if hasFragment {
		out += "#" + fragment
	}
	return []byte(out)
}

func pathExt(p string) string {
	for i := len(p) - 1; i >= 0; i-- {
		switch p[i] {
		case '.':
			return p[i:]
		case '/':
			return ""
		}
	}
	return ""
}
