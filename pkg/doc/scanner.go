package doc

import (
	"bytes"
	"os"
	"strings"

	"github.com/sqldoc-labs/sqldoc/pkg/token"
)

// Parse scans Markdown source into a Document. Scanning never fails:
// malformed frontmatter is reported via Document.FrontmatterErr and an
// unterminated fence becomes a CodeBlock with Terminated false, so lint
// rules can attach positions to both.
func Parse(src []byte) *Document {
	return parse("", src)
}

// ParseFile reads path and scans it.
func ParseFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	d := parse(path, data)
	return d, nil
}

func parse(path string, src []byte) *Document {
	d := &Document{
		Path:     path,
		Source:   src,
		LinkDefs: make(map[string]LinkDef),
	}
	s := &scanner{
		doc:     d,
		lines:   splitLines(src),
		slugger: NewSlugger(),
	}
	d.LineCount = len(s.lines)
	s.run()
	return d
}

// lineInfo is one source line with its byte offset. Text excludes the
// terminator.
type lineInfo struct {
	offset int
	text   string
}

func splitLines(src []byte) []lineInfo {
	// Skip a UTF-8 BOM so line 1 starts at the first real byte.
	start := 0
	if bytes.HasPrefix(src, []byte{0xEF, 0xBB, 0xBF}) {
		start = 3
	}
	var lines []lineInfo
	for i := start; i <= len(src); {
		nl := bytes.IndexByte(src[i:], '\n')
		if nl < 0 {
			if i < len(src) {
				lines = append(lines, lineInfo{offset: i, text: trimCR(string(src[i:]))})
			}
			break
		}
		lines = append(lines, lineInfo{offset: i, text: trimCR(string(src[i : i+nl]))})
		i += nl + 1
	}
	return lines
}

func trimCR(s string) string {
	return strings.TrimSuffix(s, "\r")
}

type scanner struct {
	doc     *Document
	lines   []lineInfo
	slugger *Slugger

	listItems []listItem // TOC candidates, in source order
}

// listItem is a bullet or ordered list item seen outside fences.
type listItem struct {
	line   int // 1-based
	indent int
	entry  TOCEntry
	// anchorOnly is true when the item body is exactly one internal
	// anchor link.
	anchorOnly bool
}

func (s *scanner) pos(lineIdx, col int) token.Position {
	ln := s.lines[lineIdx]
	return token.Position{Line: lineIdx + 1, Column: col, Offset: ln.offset + col - 1}
}

func (s *scanner) run() {
	i := s.scanFrontmatter()

	var fence *fenceState
	for ; i < len(s.lines); i++ {
		ln := s.lines[i]

		if fence != nil {
			if fence.closes(ln.text) {
				s.finishFence(fence, i, true)
				fence = nil
			} else {
				fence.body.WriteString(ln.text)
				fence.body.WriteByte('\n')
			}
			continue
		}

		if f := openFence(ln.text); f != nil {
			f.pos = s.pos(i, f.indent+1)
			if i+1 < len(s.lines) {
				f.contentPos = s.pos(i+1, 1)
			} else {
				f.contentPos = token.Position{Line: i + 2, Column: 1, Offset: len(s.doc.Source)}
			}
			fence = f
			continue
		}

		indent := leadingSpaces(ln.text)
		if indent >= 4 && i > 0 && strings.TrimSpace(s.lines[i-1].text) == "" {
			// Indented code block; leave it unscanned like fenced content.
			continue
		}

		if s.scanATXHeading(i, ln, indent) {
			s.scanInlineLine(i, ln)
			continue
		}
		if s.scanSetextHeading(i, ln, indent) {
			s.scanInlineLine(i, ln)
			i++ // skip the underline
			continue
		}
		if s.scanLinkDef(i, ln, indent) {
			continue
		}
		s.scanListItem(i, ln, indent)
		s.scanInlineLine(i, ln)
	}

	if fence != nil {
		s.finishFence(fence, len(s.lines), false)
	}

	s.detectTOC()
}

// scanFrontmatter handles a leading "---" YAML block and returns the index
// of the first content line.
func (s *scanner) scanFrontmatter() int {
	if len(s.lines) == 0 || strings.TrimRight(s.lines[0].text, " \t") != "---" {
		return 0
	}
	for i := 1; i < len(s.lines); i++ {
		t := strings.TrimRight(s.lines[i].text, " \t")
		if t != "---" && t != "..." {
			continue
		}
		var body strings.Builder
		for j := 1; j < i; j++ {
			body.WriteString(s.lines[j].text)
			body.WriteByte('\n')
		}
		end := s.lines[i].offset + len(s.lines[i].text)
		if end < len(s.doc.Source) && s.doc.Source[end] == '\n' {
			end++
		}
		fm, err := parseFrontmatterYAML(body.String())
		if err != nil {
			s.doc.FrontmatterErr = err
			fm = &Frontmatter{Present: true}
		}
		fm.EndOffset = end
		fm.EndLine = i + 1
		s.doc.Frontmatter = fm
		return i + 1
	}
	// Opened but never closed; treat the whole document as frontmatter
	// content would swallow the article, so treat only line 1 as bad.
	s.doc.FrontmatterErr = &FrontmatterParseError{
		File:    s.doc.Path,
		Line:    1,
		Message: "unterminated frontmatter: missing closing \"---\"",
	}
	s.doc.Frontmatter = &Frontmatter{Present: true, EndOffset: 0, EndLine: 1}
	return 1
}

// fenceState tracks an open fenced code block.
type fenceState struct {
	char   byte // '`' or '~'
	length int
	indent int
	info   string
	lang   string

	pos        token.Position
	contentPos token.Position
	body       strings.Builder
}

// openFence recognizes an opening fence: up to three spaces of indentation,
// then at least three backticks or tildes. A backtick fence's info string
// may not contain a backtick.
func openFence(line string) *fenceState {
	indent := leadingSpaces(line)
	if indent > 3 {
		return nil
	}
	rest := line[indent:]
	if rest == "" {
		return nil
	}
	ch := rest[0]
	if ch != '`' && ch != '~' {
		return nil
	}
	n := 0
	for n < len(rest) && rest[n] == ch {
		n++
	}
	if n < 3 {
		return nil
	}
	info := strings.TrimSpace(rest[n:])
	if ch == '`' && strings.ContainsRune(info, '`') {
		return nil
	}
	lang := info
	if sp := strings.IndexAny(lang, " \t"); sp >= 0 {
		lang = lang[:sp]
	}
	return &fenceState{
		char:   ch,
		length: n,
		indent: indent,
		info:   info,
		lang:   strings.ToLower(lang),
	}
}

// closes reports whether line is a valid closing fence for f.
func (f *fenceState) closes(line string) bool {
	indent := leadingSpaces(line)
	if indent > 3 {
		return false
	}
	rest := line[indent:]
	n := 0
	for n < len(rest) && rest[n] == f.char {
		n++
	}
	if n < f.length {
		return false
	}
	return strings.TrimSpace(rest[n:]) == ""
}

func (s *scanner) finishFence(f *fenceState, closeIdx int, terminated bool) {
	end := token.Position{Line: closeIdx + 1, Column: 1, Offset: len(s.doc.Source)}
	if terminated {
		end = s.pos(closeIdx, 1)
	}
	s.doc.CodeBlocks = append(s.doc.CodeBlocks, CodeBlock{
		Info:       f.info,
		Lang:       f.lang,
		Content:    f.body.String(),
		Pos:        f.pos,
		ContentPos: f.contentPos,
		EndPos:     end,
		Terminated: terminated,
	})
}

func (s *scanner) scanATXHeading(i int, ln lineInfo, indent int) bool {
	if indent > 3 {
		return false
	}
	rest := ln.text[indent:]
	level := 0
	for level < len(rest) && rest[level] == '#' {
		level++
	}
	if level == 0 || level > 6 {
		return false
	}
	after := rest[level:]
	if after != "" && after[0] != ' ' && after[0] != '\t' {
		return false
	}
	text := trimATXClosing(strings.TrimSpace(after))
	text = stripInlineMarkup(text)
	s.doc.Headings = append(s.doc.Headings, Heading{
		Level:  level,
		Text:   text,
		Anchor: s.slugger.Slug(text),
		Pos:    s.pos(i, indent+1),
	})
	return true
}

// trimATXClosing removes an optional run of trailing #s.
func trimATXClosing(text string) string {
	t := strings.TrimRight(text, " \t")
	n := len(t)
	for n > 0 && t[n-1] == '#' {
		n--
	}
	if n == len(t) {
		return t
	}
	if n == 0 {
		return ""
	}
	if t[n-1] == ' ' || t[n-1] == '\t' {
		return strings.TrimRight(t[:n], " \t")
	}
	return t
}

// scanSetextHeading recognizes a conservative subset of setext headings:
// the text line must follow a blank line (or start the document) and the
// underline must be all "=" (level 1) or at least three "-" (level 2).
func (s *scanner) scanSetextHeading(i int, ln lineInfo, indent int) bool {
	if indent > 3 || strings.TrimSpace(ln.text) == "" {
		return false
	}
	if i+1 >= len(s.lines) {
		return false
	}
	if i > 0 && strings.TrimSpace(s.lines[i-1].text) != "" {
		return false
	}
	under := strings.TrimSpace(s.lines[i+1].text)
	if under == "" {
		return false
	}
	level := 0
	switch {
	case strings.Count(under, "=") == len(under):
		level = 1
	case len(under) >= 3 && strings.Count(under, "-") == len(under):
		level = 2
	default:
		return false
	}
	rest := ln.text[indent:]
	switch rest[0] {
	case '#', '>', '-', '*', '+', '|', '[':
		return false
	case '!':
		if len(rest) > 1 && rest[1] == '[' {
			return false
		}
	}
	if isOrderedItemStart(rest) {
		return false
	}
	text := stripInlineMarkup(strings.TrimSpace(ln.text))
	s.doc.Headings = append(s.doc.Headings, Heading{
		Level:  level,
		Text:   text,
		Anchor: s.slugger.Slug(text),
		Pos:    s.pos(i, indent+1),
	})
	return true
}

// scanLinkDef recognizes reference-link definitions: [label]: target "title".
func (s *scanner) scanLinkDef(i int, ln lineInfo, indent int) bool {
	if indent > 3 {
		return false
	}
	rest := ln.text[indent:]
	if len(rest) < 4 || rest[0] != '[' {
		return false
	}
	close := strings.Index(rest, "]:")
	if close <= 1 {
		return false
	}
	label := rest[1:close]
	if strings.ContainsAny(label, "[]") {
		return false
	}
	tail := strings.TrimSpace(rest[close+2:])
	if tail == "" {
		return false
	}
	target := tail
	title := ""
	if sp := strings.IndexAny(tail, " \t"); sp >= 0 {
		target = tail[:sp]
		title = strings.TrimSpace(tail[sp+1:])
		title = strings.Trim(title, `"'()`)
	}
	target = strings.Trim(target, "<>")
	key := strings.ToLower(label)
	if _, exists := s.doc.LinkDefs[key]; !exists {
		s.doc.LinkDefs[key] = LinkDef{
			Label:  label,
			Target: target,
			Title:  title,
			Pos:    s.pos(i, indent+1),
		}
	}
	return true
}

// scanListItem records bullet and ordered list items as TOC candidates.
func (s *scanner) scanListItem(i int, ln lineInfo, indent int) {
	rest := ln.text[indent:]
	body := ""
	switch {
	case len(rest) >= 2 && (rest[0] == '-' || rest[0] == '*' || rest[0] == '+') && (rest[1] == ' ' || rest[1] == '\t'):
		body = rest[2:]
	default:
		n := 0
		for n < len(rest) && n < 9 && rest[n] >= '0' && rest[n] <= '9' {
			n++
		}
		if n == 0 || n+1 >= len(rest) {
			return
		}
		if rest[n] != '.' && rest[n] != ')' {
			return
		}
		if rest[n+1] != ' ' && rest[n+1] != '\t' {
			return
		}
		body = rest[n+2:]
	}

	item := listItem{line: i + 1, indent: indent}
	if text, anchor, ok := soleAnchorLink(strings.TrimSpace(body)); ok {
		item.anchorOnly = true
		item.entry = TOCEntry{
			Text:   text,
			Anchor: anchor,
			Level:  indent / 2,
			Pos:    s.pos(i, indent+1),
		}
	}
	s.listItems = append(s.listItems, item)
}

func leadingSpaces(s string) int {
	n := 0
	for n < len(s) && s[n] == ' ' {
		n++
	}
	return n
}

// isOrderedItemStart reports whether s begins like "1. " or "12) ".
func isOrderedItemStart(s string) bool {
	n := 0
	for n < len(s) && n < 9 && s[n] >= '0' && s[n] <= '9' {
		n++
	}
	if n == 0 || n+1 >= len(s) {
		return false
	}
	return (s[n] == '.' || s[n] == ')') && (s[n+1] == ' ' || s[n+1] == '\t')
}
