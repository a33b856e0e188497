package doc

import (
	"bytes"
	"strings"
)

// Default heading levels included when generating a table of contents.
// Level 1 is the article title and stays out of its own TOC.
const (
	DefaultTOCMinLevel = 2
	DefaultTOCMaxLevel = 3
)

// detectTOC finds the first contiguous list block consisting solely of
// internal anchor links, with at least two entries.
func (s *scanner) detectTOC() {
	items := s.listItems
	for start := 0; start < len(items); {
		end := start + 1
		for end < len(items) && items[end].line == items[end-1].line+1 {
			end++
		}
		run := items[start:end]
		if len(run) >= 2 && allAnchorOnly(run) {
			t := &TOC{
				Pos:     run[0].entry.Pos,
				EndLine: run[len(run)-1].line,
			}
			for _, it := range run {
				t.Entries = append(t.Entries, it.entry)
			}
			s.doc.toc = t
			return
		}
		start = end
	}
}

func allAnchorOnly(items []listItem) bool {
	for _, it := range items {
		if !it.anchorOnly {
			return false
		}
	}
	return true
}

// TOCForHeadings builds the canonical TOC entries for a document: every
// heading with minLevel <= level <= maxLevel, in document order. Zero
// arguments select the defaults.
func TOCForHeadings(d *Document, minLevel, maxLevel int) []TOCEntry {
	if minLevel <= 0 {
		minLevel = DefaultTOCMinLevel
	}
	if maxLevel <= 0 {
		maxLevel = DefaultTOCMaxLevel
	}
	var entries []TOCEntry
	for _, h := range d.Headings {
		if h.Level < minLevel || h.Level > maxLevel {
			continue
		}
		entries = append(entries, TOCEntry{
			Text:   h.Text,
			Anchor: h.Anchor,
			Level:  h.Level - minLevel,
			Pos:    h.Pos,
		})
	}
	return entries
}

// FormatTOC renders entries as a Markdown bullet list, two spaces of
// indentation per nesting level.
func FormatTOC(entries []TOCEntry) string {
	var b strings.Builder
	for _, e := range entries {
		for i := 0; i < e.Level; i++ {
			b.WriteString("  ")
		}
		b.WriteString("- [")
		b.WriteString(e.Text)
		b.WriteString("](#")
		b.WriteString(e.Anchor)
		b.WriteString(")\n")
	}
	return b.String()
}

// UpdateTOC returns the document source with its TOC block replaced by the
// canonical one, inserting after the first level-1 heading (or the
// frontmatter) when the document has no TOC yet. The second result reports
// whether the content changed. Output always uses LF line endings.
func UpdateTOC(d *Document, minLevel, maxLevel int) ([]byte, bool) {
	block := strings.TrimRight(FormatTOC(TOCForHeadings(d, minLevel, maxLevel)), "\n")
	if block == "" {
		return d.Source, false
	}
	blockLines := strings.Split(block, "\n")
	src := splitLines(d.Source)

	var out []string
	if t := d.toc; t != nil {
		for i, ln := range src {
			n := i + 1
			switch {
			case n == t.Pos.Line:
				out = append(out, blockLines...)
			case n > t.Pos.Line && n <= t.EndLine:
				// replaced by the canonical block
			default:
				out = append(out, ln.text)
			}
		}
	} else {
		at := 0
		if d.Frontmatter != nil && d.Frontmatter.Present {
			at = d.Frontmatter.EndLine
		}
		for _, h := range d.Headings {
			if h.Level == 1 {
				at = h.Pos.Line
				break
			}
		}
		if at == 0 {
			out = append(out, blockLines...)
			out = append(out, "")
		}
		for i, ln := range src {
			out = append(out, ln.text)
			if i+1 == at {
				out = append(out, "")
				out = append(out, blockLines...)
			}
		}
	}

	res := []byte(strings.Join(out, "\n") + "\n")
	return res, !bytes.Equal(res, d.Source)
}
