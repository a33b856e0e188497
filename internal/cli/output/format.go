package output

import (
	"fmt"
	"strings"
)

// FormatHeader returns a Markdown ATX heading. Levels clamp to 1..6.
func FormatHeader(level int, text string) string {
	if level < 1 {
		level = 1
	}
	if level > 6 {
		level = 6
	}
	return strings.Repeat("#", level) + " " + text
}

// FormatKeyValue returns an aligned "Key: value" line for summary blocks.
func FormatKeyValue(key, value string) string {
	return fmt.Sprintf("%-20s %s", key+":", value)
}

// FormatCodeBlock returns a fenced code block with the given language tag.
// The fence grows when the code itself contains backtick runs.
func FormatCodeBlock(lang, code string) string {
	fence := "```"
	for strings.Contains(code, fence) {
		fence += "`"
	}
	code = strings.TrimRight(code, "\n")
	return fence + lang + "\n" + code + "\n" + fence
}

// Pluralize returns the singular or plural form for n.
func Pluralize(n int, singular, plural string) string {
	if n == 1 {
		return singular
	}
	return plural
}

// TruncateLine shortens s to max runes, appending "..." when cut.
func TruncateLine(s string, max int) string {
	if max <= 3 {
		max = 3
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
