package doc

import (
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Frontmatter is the parsed YAML frontmatter of a document.
// Unknown fields cause parse errors (use Meta for extensions).
type Frontmatter struct {
	Title       string         `yaml:"title"`
	Description string         `yaml:"description"`
	Author      string         `yaml:"author"`
	Date        string         `yaml:"date"`
	Tags        []string       `yaml:"tags"`
	Dialect     string         `yaml:"dialect"` // default SQL dialect for fenced snippets
	Draft       bool           `yaml:"draft"`
	Meta        map[string]any `yaml:"meta"` // Extension point for custom fields

	// Present is true when the document opened with a frontmatter block,
	// even an empty one.
	Present bool
	// EndOffset is the byte offset just past the closing delimiter line.
	EndOffset int
	// EndLine is the line number of the closing "---".
	EndLine int
}

// ParsedDate returns the date field as a time, and whether it parsed.
// Accepted layouts: 2006-01-02 and RFC 3339.
func (f *Frontmatter) ParsedDate() (time.Time, bool) {
	if f.Date == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, f.Date); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// frontmatterYAML is an internal type for YAML unmarshaling.
type frontmatterYAML struct {
	Title       string         `yaml:"title"`
	Description string         `yaml:"description"`
	Author      string         `yaml:"author"`
	Date        string         `yaml:"date"`
	Tags        []string       `yaml:"tags"`
	Dialect     string         `yaml:"dialect"`
	Draft       bool           `yaml:"draft"`
	Meta        map[string]any `yaml:"meta"`
}

// parseFrontmatterYAML parses YAML content with strict field validation.
func parseFrontmatterYAML(yamlContent string) (*Frontmatter, error) {
	// First, decode into a map to check for unknown fields.
	var rawMap map[string]any
	if err := yaml.Unmarshal([]byte(yamlContent), &rawMap); err != nil {
		return nil, &FrontmatterParseError{
			Message: fmt.Sprintf("invalid YAML: %v", err),
		}
	}

	knownFields := map[string]bool{
		"title":       true,
		"description": true,
		"author":      true,
		"date":        true,
		"tags":        true,
		"dialect":     true,
		"draft":       true,
		"meta":        true,
	}

	for field := range rawMap {
		if !knownFields[field] {
			return nil, &UnknownFieldError{
				Field: field,
			}
		}
	}

	var raw frontmatterYAML
	if err := yaml.Unmarshal([]byte(yamlContent), &raw); err != nil {
		return nil, &FrontmatterParseError{
			Message: fmt.Sprintf("failed to parse frontmatter: %v", err),
		}
	}

	fm := &Frontmatter{
		Title:       raw.Title,
		Description: raw.Description,
		Author:      raw.Author,
		Date:        strings.TrimSpace(raw.Date),
		Tags:        raw.Tags,
		Dialect:     raw.Dialect,
		Draft:       raw.Draft,
		Meta:        raw.Meta,
		Present:     true,
	}

	if fm.Date != "" {
		if _, ok := fm.ParsedDate(); !ok {
			return nil, &FrontmatterParseError{
				Message: fmt.Sprintf("invalid date %q, expected YYYY-MM-DD or RFC 3339", fm.Date),
			}
		}
	}

	return fm, nil
}

// FrontmatterParseError represents a frontmatter parsing error.
type FrontmatterParseError struct {
	File    string
	Line    int
	Message string
}

func (e *FrontmatterParseError) Error() string {
	if e.File != "" {
		if e.Line > 0 {
			return fmt.Sprintf("%s:%d: %s", e.File, e.Line, e.Message)
		}
		return fmt.Sprintf("%s: %s", e.File, e.Message)
	}
	return e.Message
}

// UnknownFieldError represents an error for unknown frontmatter fields.
type UnknownFieldError struct {
	File  string
	Field string
}

func (e *UnknownFieldError) Error() string {
	msg := fmt.Sprintf("unknown field %q in frontmatter, use \"meta\" field for custom fields", e.Field)
	if e.File != "" {
		return fmt.Sprintf("%s: %s", e.File, msg)
	}
	return msg
}
