package doc

import (
	"strconv"
	"strings"
	"unicode"
)

// Slugify converts heading text to a GitHub-style anchor: lowercase, with
// letters, digits, underscores, and hyphens kept, spaces turned into
// hyphens, and everything else dropped.
func Slugify(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range strings.TrimSpace(text) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(unicode.ToLower(r))
		case r == ' ' || r == '\t':
			b.WriteByte('-')
		case r == '-' || r == '_':
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Slugger produces document-unique anchors. Repeated headings get a numeric
// suffix: "overview", "overview-1", "overview-2".
type Slugger struct {
	seen map[string]int
}

// NewSlugger returns a Slugger with no prior headings.
func NewSlugger() *Slugger {
	return &Slugger{seen: make(map[string]int)}
}

// Slug returns the deduplicated anchor for text.
func (s *Slugger) Slug(text string) string {
	base := Slugify(text)
	n, ok := s.seen[base]
	s.seen[base] = n + 1
	if !ok {
		return base
	}
	// The suffixed form may itself collide with a literal heading; keep
	// bumping until it is free.
	for {
		candidate := base + "-" + strconv.Itoa(n)
		if _, taken := s.seen[candidate]; !taken {
			s.seen[candidate] = 1
			return candidate
		}
		n++
	}
}

// Reset clears the slugger for reuse on another document.
func (s *Slugger) Reset() {
	s.seen = make(map[string]int)
}
