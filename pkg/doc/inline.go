package doc

import (
	"net/url"
	"strings"
)

// scanInlineLine extracts links, images, autolinks, and raw-HTML anchors
// from one line. Backtick code spans are skipped so bracket-heavy SQL like
// `[dbo].[orders]` never turns into a link.
func (s *scanner) scanInlineLine(idx int, ln lineInfo) {
	line := ln.text
	for i := 0; i < len(line); {
		switch line[i] {
		case '\\':
			i += 2
		case '`':
			i = skipCodeSpan(line, i)
		case '!':
			if i+1 < len(line) && line[i+1] == '[' {
				if img, end, ok := parseInlineImage(line, i); ok {
					img.Pos = s.pos(idx, i+1)
					s.doc.Images = append(s.doc.Images, img)
					i = end
					continue
				}
			}
			i++
		case '[':
			if l, end, ok := parseInlineLink(line, i); ok {
				l.Pos = s.pos(idx, i+1)
				s.doc.Links = append(s.doc.Links, l)
				// A badge image inside the link text still needs checking.
				s.scanImagesIn(idx, line, i+1, i+1+len(l.Text))
				i = end
				continue
			}
			i++
		case '<':
			if next := s.scanHTML(idx, line, i); next > i {
				i = next
				continue
			}
			i++
		default:
			i++
		}
	}
}

// scanImagesIn scans line[from:to] for image syntax only.
func (s *scanner) scanImagesIn(idx int, line string, from, to int) {
	if to > len(line) {
		to = len(line)
	}
	for i := from; i < to-1; i++ {
		if line[i] == '!' && line[i+1] == '[' {
			if img, end, ok := parseInlineImage(line, i); ok && end <= to {
				img.Pos = s.pos(idx, i+1)
				s.doc.Images = append(s.doc.Images, img)
				i = end - 1
			}
		}
	}
}

// skipCodeSpan advances past a backtick code span. The closing run must
// match the opening run's length; without one the backticks are literal.
func skipCodeSpan(line string, i int) int {
	n := 0
	for i+n < len(line) && line[i+n] == '`' {
		n++
	}
	j := i + n
	for j < len(line) {
		if line[j] != '`' {
			j++
			continue
		}
		m := 0
		for j+m < len(line) && line[j+m] == '`' {
			m++
		}
		if m == n {
			return j + m
		}
		j += m
	}
	return i + n
}

// parseInlineLink parses "[text](dest)" or "[text][label]" at start.
// Returns the link and the index just past it.
func parseInlineLink(s string, start int) (Link, int, bool) {
	text, after, ok := bracketSpan(s, start)
	if !ok {
		return Link{}, 0, false
	}
	if after < len(s) && s[after] == '(' {
		dest, _, end, ok := parenDest(s, after)
		if !ok {
			return Link{}, 0, false
		}
		kind, path, frag := classifyTarget(dest)
		return Link{
			Text:     text,
			Target:   dest,
			Kind:     kind,
			Path:     path,
			Fragment: frag,
		}, end, true
	}
	if after < len(s) && s[after] == '[' {
		label, end, ok := bracketSpan(s, after)
		if !ok {
			return Link{}, 0, false
		}
		if label == "" { // collapsed reference: [text][]
			label = text
		}
		return Link{
			Text:  text,
			Label: strings.ToLower(label),
		}, end, true
	}
	return Link{}, 0, false
}

// parseInlineImage parses "![alt](src "title")" at start.
func parseInlineImage(s string, start int) (Image, int, bool) {
	alt, after, ok := bracketSpan(s, start+1)
	if !ok || after >= len(s) || s[after] != '(' {
		return Image{}, 0, false
	}
	src, title, end, ok := parenDest(s, after)
	if !ok {
		return Image{}, 0, false
	}
	kind, path, _ := classifyTarget(src)
	return Image{
		Alt:    alt,
		Source: src,
		Title:  title,
		Kind:   kind,
		Path:   path,
	}, end, true
}

// bracketSpan returns the content of a balanced [...] starting at start and
// the index just past the closing bracket.
func bracketSpan(s string, start int) (string, int, bool) {
	if start >= len(s) || s[start] != '[' {
		return "", 0, false
	}
	depth := 0
	for j := start; j < len(s); j++ {
		switch s[j] {
		case '\\':
			j++
		case '`':
			j = skipCodeSpan(s, j) - 1
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return s[start+1 : j], j + 1, true
			}
		}
	}
	return "", 0, false
}

// parenDest parses "(dest "title")" at at, with <>-wrapped destinations and
// balanced bare parens supported.
func parenDest(s string, at int) (dest, title string, end int, ok bool) {
	j := at + 1
	for j < len(s) && (s[j] == ' ' || s[j] == '\t') {
		j++
	}
	if j < len(s) && s[j] == '<' {
		k := strings.IndexByte(s[j+1:], '>')
		if k < 0 {
			return "", "", 0, false
		}
		dest = s[j+1 : j+1+k]
		j += k + 2
	} else {
		from := j
		depth := 1
	dest:
		for j < len(s) {
			switch s[j] {
			case '\\':
				j += 2
				continue
			case '(':
				depth++
			case ')':
				depth--
				if depth == 0 {
					break dest
				}
			case ' ', '\t':
				break dest
			}
			j++
		}
		dest = s[from:j]
	}
	for j < len(s) && (s[j] == ' ' || s[j] == '\t') {
		j++
	}
	if j < len(s) && (s[j] == '"' || s[j] == '\'') {
		q := s[j]
		k := strings.IndexByte(s[j+1:], q)
		if k < 0 {
			return "", "", 0, false
		}
		title = s[j+1 : j+1+k]
		j += k + 2
		for j < len(s) && (s[j] == ' ' || s[j] == '\t') {
			j++
		}
	}
	if j >= len(s) || s[j] != ')' {
		return "", "", 0, false
	}
	return dest, title, j + 1, true
}

// scanHTML handles autolinks and the raw HTML tags worth tracking:
// <a href>, <a id>/<a name>, and <img src>. Returns the index past the tag,
// or i when nothing matched.
func (s *scanner) scanHTML(idx int, line string, i int) int {
	rest := line[i:]
	gt := strings.IndexByte(rest, '>')
	if gt < 0 {
		return i
	}
	inner := rest[1:gt]

	// Autolink: <https://example.com> or <user@example.com>.
	if !strings.ContainsAny(inner, " \t<") {
		if hasScheme(inner) || strings.HasPrefix(inner, "//") {
			s.doc.Links = append(s.doc.Links, Link{
				Text:   inner,
				Target: inner,
				Kind:   TargetExternal,
				Pos:    s.pos(idx, i+1),
			})
			return i + gt + 1
		}
		if at := strings.IndexByte(inner, '@'); at > 0 && strings.Contains(inner[at:], ".") {
			s.doc.Links = append(s.doc.Links, Link{
				Text:   inner,
				Target: "mailto:" + inner,
				Kind:   TargetExternal,
				Pos:    s.pos(idx, i+1),
			})
			return i + gt + 1
		}
	}

	lower := strings.ToLower(inner)
	switch {
	case strings.HasPrefix(lower, "a ") || strings.HasPrefix(lower, "a\t"):
		attrs := htmlAttrs(inner[2:])
		if id := firstNonEmpty(attrs["id"], attrs["name"]); id != "" {
			s.doc.HTMLAnchors = append(s.doc.HTMLAnchors, HTMLAnchor{
				ID:  id,
				Pos: s.pos(idx, i+1),
			})
		}
		if href, ok := attrs["href"]; ok {
			kind, path, frag := classifyTarget(href)
			s.doc.Links = append(s.doc.Links, Link{
				Target:   href,
				Kind:     kind,
				Path:     path,
				Fragment: frag,
				Pos:      s.pos(idx, i+1),
			})
		}
		return i + gt + 1
	case strings.HasPrefix(lower, "img ") || strings.HasPrefix(lower, "img\t"):
		attrs := htmlAttrs(inner[4:])
		src, ok := attrs["src"]
		if !ok {
			return i + gt + 1
		}
		kind, path, _ := classifyTarget(src)
		s.doc.Images = append(s.doc.Images, Image{
			Alt:    attrs["alt"],
			Source: src,
			Title:  attrs["title"],
			Kind:   kind,
			Path:   path,
			Pos:    s.pos(idx, i+1),
		})
		return i + gt + 1
	}
	return i
}

// htmlAttrs parses key="value" pairs from a tag's attribute text.
// Keys are lowercased; quoting is optional.
func htmlAttrs(s string) map[string]string {
	attrs := make(map[string]string)
	i := 0
	for i < len(s) {
		for i < len(s) && (s[i] == ' ' || s[i] == '\t' || s[i] == '/') {
			i++
		}
		from := i
		for i < len(s) && s[i] != '=' && s[i] != ' ' && s[i] != '\t' {
			i++
		}
		if from == i {
			break
		}
		key := strings.ToLower(s[from:i])
		if i >= len(s) || s[i] != '=' {
			attrs[key] = ""
			continue
		}
		i++
		if i < len(s) && (s[i] == '"' || s[i] == '\'') {
			q := s[i]
			k := strings.IndexByte(s[i+1:], q)
			if k < 0 {
				attrs[key] = s[i+1:]
				break
			}
			attrs[key] = s[i+1 : i+1+k]
			i += k + 2
		} else {
			from = i
			for i < len(s) && s[i] != ' ' && s[i] != '\t' {
				i++
			}
			attrs[key] = s[from:i]
		}
	}
	return attrs
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

// classifyTarget splits a raw destination into its kind, file path, and
// fragment. Percent-escapes are decoded so "#the%20plan" matches the
// rendered anchor.
func classifyTarget(target string) (TargetKind, string, string) {
	t := strings.TrimSpace(target)
	switch {
	case t == "":
		return TargetRelative, "", ""
	case strings.HasPrefix(t, "#"):
		return TargetAnchor, "", unescapePart(t[1:])
	case strings.HasPrefix(t, "//"):
		return TargetExternal, "", ""
	case hasScheme(t):
		return TargetExternal, "", ""
	}
	path, frag, _ := strings.Cut(t, "#")
	kind := TargetRelative
	if strings.HasPrefix(path, "/") {
		kind = TargetAbsolute
	}
	return kind, unescapePart(path), unescapePart(frag)
}

func unescapePart(s string) string {
	if !strings.Contains(s, "%") {
		return s
	}
	if u, err := url.PathUnescape(s); err == nil {
		return u
	}
	return s
}

// hasScheme reports whether s starts with a URI scheme ("https:", "mailto:").
func hasScheme(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z':
		case i > 0 && (c >= '0' && c <= '9' || c == '+' || c == '-' || c == '.'):
		case c == ':':
			return i > 0
		default:
			return false
		}
	}
	return false
}

// stripInlineMarkup reduces heading text to what the rendered anchor sees:
// link syntax collapses to its text, code spans and emphasis markers drop.
func stripInlineMarkup(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); {
		switch c := s[i]; c {
		case '\\':
			if i+1 < len(s) {
				b.WriteByte(s[i+1])
				i += 2
			} else {
				i++
			}
		case '`', '*':
			i++
		case '[':
			if text, after, ok := bracketSpan(s, i); ok {
				j, consumed := after, false
				if j < len(s) && s[j] == '(' {
					if _, _, end, ok2 := parenDest(s, j); ok2 {
						j, consumed = end, true
					}
				} else if j < len(s) && s[j] == '[' {
					if _, end, ok2 := bracketSpan(s, j); ok2 {
						j, consumed = end, true
					}
				}
				if consumed {
					b.WriteString(stripInlineMarkup(text))
					i = j
					continue
				}
			}
			b.WriteByte('[')
			i++
		default:
			b.WriteByte(c)
			i++
		}
	}
	return strings.TrimSpace(b.String())
}

// soleAnchorLink reports whether body is exactly one inline link to an
// internal anchor, as a TOC entry must be.
func soleAnchorLink(body string) (text, anchor string, ok bool) {
	if body == "" || body[0] != '[' {
		return "", "", false
	}
	l, end, ok := parseInlineLink(body, 0)
	if !ok || l.Label != "" || l.Kind != TargetAnchor {
		return "", "", false
	}
	if strings.TrimSpace(body[end:]) != "" {
		return "", "", false
	}
	return l.Text, l.Fragment, true
}
