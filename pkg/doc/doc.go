// Package doc provides a line-based Markdown document model for lint,
// TOC management, and site rendering.
//
// The scanner is deliberately not a full CommonMark parser. It extracts the
// elements documentation checks care about (headings and their anchors,
// links, images, fenced code blocks, frontmatter, the table of contents),
// each with a 1-based source position, and leaves everything else as opaque
// text. Fenced-block content is never scanned for inline elements.
package doc

import (
	"github.com/sqldoc-labs/sqldoc/pkg/token"
)

// Document is the scanned representation of a Markdown file.
type Document struct {
	// Path is the file path the document was read from ("" for Parse).
	Path string

	// Source is the raw document content.
	Source []byte

	// Frontmatter holds the parsed YAML frontmatter, nil when absent.
	Frontmatter *Frontmatter
	// FrontmatterErr is set when a frontmatter block is present but
	// invalid. Frontmatter still carries the block's extent.
	FrontmatterErr error

	Headings   []Heading
	Links      []Link
	Images     []Image
	CodeBlocks []CodeBlock

	// HTMLAnchors are explicit <a id="..."> or <a name="..."> anchors.
	HTMLAnchors []HTMLAnchor

	// LinkDefs maps reference-link labels (lowercased) to their definitions.
	LinkDefs map[string]LinkDef

	// LineCount is the number of lines in the document.
	LineCount int

	toc *TOC // computed during scanning, nil when no TOC block exists
}

// Heading is an ATX or setext heading.
type Heading struct {
	Level int    // 1-6
	Text  string // heading text with surrounding whitespace trimmed
	// Anchor is the GitHub-style slug, deduplicated within the document
	// ("overview", "overview-1", ...).
	Anchor string
	Pos    token.Position
}

// TargetKind classifies where a link or image points.
type TargetKind int

const (
	// TargetRelative is a relative file path, optionally with a fragment.
	// It is the zero value, which also stands in for links whose
	// reference label has not been resolved yet.
	TargetRelative TargetKind = iota
	// TargetAnchor is an internal fragment link ("#merge-join").
	TargetAnchor
	// TargetAbsolute is an absolute filesystem path ("/img/plan1.png").
	TargetAbsolute
	// TargetExternal is a URL with a scheme, or a protocol-relative URL.
	TargetExternal
)

// String returns the kind name used in diagnostics.
func (k TargetKind) String() string {
	switch k {
	case TargetRelative:
		return "relative"
	case TargetAnchor:
		return "anchor"
	case TargetAbsolute:
		return "absolute"
	case TargetExternal:
		return "external"
	default:
		return "unknown"
	}
}

// Link is an inline, reference, auto, or HTML link.
type Link struct {
	Text   string
	Target string // raw destination as written
	Kind   TargetKind

	// Path is the file part of a relative target ("" for pure anchors).
	Path string
	// Fragment is the part after "#", without the "#".
	Fragment string

	// Label is the reference label for [text][label] links, "" otherwise.
	Label string

	Pos token.Position
}

// Image is an inline or HTML image reference.
type Image struct {
	Alt    string
	Source string // raw source as written
	Title  string
	Kind   TargetKind

	// Path is the file part of a relative source.
	Path string

	Pos token.Position
}

// LinkDef is a reference-link definition: [label]: url "title".
type LinkDef struct {
	Label  string
	Target string
	Title  string
	Pos    token.Position
}

// HTMLAnchor is an explicit anchor declared with raw HTML.
type HTMLAnchor struct {
	ID  string
	Pos token.Position
}

// CodeBlock is a fenced code block (``` or ~~~).
type CodeBlock struct {
	// Info is the full info string after the opening fence.
	Info string
	// Lang is the first word of the info string, lowercased.
	Lang string
	// Content is the block body without the fences.
	Content string

	// Pos is the opening fence position; ContentPos the first body line.
	Pos        token.Position
	ContentPos token.Position
	EndPos     token.Position

	// Terminated is false when the closing fence is missing.
	Terminated bool
}

// TOC is the document's table of contents: the first contiguous list block
// consisting solely of internal anchor links, with at least two entries.
type TOC struct {
	Entries []TOCEntry
	Pos     token.Position // first entry
	EndLine int            // last entry's line
}

// TOCEntry is a single table-of-contents item.
type TOCEntry struct {
	Text   string
	Anchor string // fragment without the "#"
	Level  int    // nesting depth, 0-based, from leading indentation
	Pos    token.Position
}

// Anchors returns the set of fragment targets the document defines:
// heading slugs plus explicit HTML anchors.
func (d *Document) Anchors() map[string]token.Position {
	anchors := make(map[string]token.Position, len(d.Headings)+len(d.HTMLAnchors))
	for _, h := range d.Headings {
		if _, ok := anchors[h.Anchor]; !ok {
			anchors[h.Anchor] = h.Pos
		}
	}
	for _, a := range d.HTMLAnchors {
		if _, ok := anchors[a.ID]; !ok {
			anchors[a.ID] = a.Pos
		}
	}
	return anchors
}

// TOC returns the detected table of contents, or nil when the document has
// none.
func (d *Document) TOC() *TOC {
	return d.toc
}

// Title returns the frontmatter title, falling back to the first level-1
// heading.
func (d *Document) Title() string {
	if d.Frontmatter != nil && d.Frontmatter.Title != "" {
		return d.Frontmatter.Title
	}
	for _, h := range d.Headings {
		if h.Level == 1 {
			return h.Text
		}
	}
	return ""
}

// SQLBlocks returns the fenced blocks tagged with a SQL language ("sql",
// "tsql", "mssql", ...). The caller resolves the tag to a dialect.
func (d *Document) SQLBlocks() []CodeBlock {
	var blocks []CodeBlock
	for _, cb := range d.CodeBlocks {
		if IsSQLLang(cb.Lang) {
			blocks = append(blocks, cb)
		}
	}
	return blocks
}

// sqlLangs are the info-string tags treated as SQL snippets.
var sqlLangs = map[string]bool{
	"sql": true, "tsql": true, "t-sql": true, "mssql": true,
	"sqlserver": true, "postgres": true, "postgresql": true, "pgsql": true,
	"plpgsql": false, // procedural bodies are out of scope for the checker
	"duckdb": true, "sqlite": true, "ansi": true, "mysql": true,
}

// IsSQLLang reports whether a fence language tag marks a SQL snippet.
func IsSQLLang(lang string) bool {
	return sqlLangs[lang]
}

// ResolveLink resolves a reference link through the document's definitions.
// Inline links resolve to themselves. Returns false for an undefined label.
func (d *Document) ResolveLink(l Link) (Link, bool) {
	if l.Label == "" {
		return l, true
	}
	def, ok := d.LinkDefs[l.Label]
	if !ok {
		return l, false
	}
	resolved := l
	resolved.Target = def.Target
	resolved.Kind, resolved.Path, resolved.Fragment = classifyTarget(def.Target)
	return resolved, true
}

// WordCount returns an approximate word count of the prose content,
// excluding frontmatter and fenced code blocks.
func (d *Document) WordCount() int {
	count := 0
	inWord := false
	src := d.proseBytes()
	for _, b := range src {
		switch b {
		case ' ', '\t', '\n', '\r':
			inWord = false
		default:
			if !inWord {
				count++
				inWord = true
			}
		}
	}
	return count
}

// proseBytes returns the source with frontmatter and code-block bodies
// blanked out.
func (d *Document) proseBytes() []byte {
	src := make([]byte, len(d.Source))
	copy(src, d.Source)
	blank := func(from, to int) {
		if from < 0 || to > len(src) || from >= to {
			return
		}
		for i := from; i < to; i++ {
			if src[i] != '\n' {
				src[i] = ' '
			}
		}
	}
	if d.Frontmatter != nil && d.Frontmatter.Present {
		blank(0, d.Frontmatter.EndOffset)
	}
	for _, cb := range d.CodeBlocks {
		to := cb.ContentPos.Offset + len(cb.Content)
		if cb.Terminated {
			to = cb.EndPos.Offset
			for to < len(src) && src[to] != '\n' {
				to++
			}
		}
		blank(cb.Pos.Offset, to)
	}
	return src
}
