package doc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"simple", "Overview", "overview"},
		{"spaces become hyphens", "Sort and Spool", "sort-and-spool"},
		{"punctuation dropped", "What's a Spool?", "whats-a-spool"},
		{"parens dropped", "OPTION (RECOMPILE)", "option-recompile"},
		{"underscores kept", "sort_warning column", "sort_warning-column"},
		{"hyphens kept", "merge-join basics", "merge-join-basics"},
		{"digits kept", "Plan 15", "plan-15"},
		{"mixed case lowered", "PREPARE Statements", "prepare-statements"},
		{"leading and trailing space", "  Padded  ", "padded"},
		{"consecutive spaces", "a  b", "a--b"},
		{"unicode letters kept", "Überblick", "überblick"},
		{"empty", "", ""},
		{"only punctuation", "!!!", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Slugify(tt.in))
		})
	}
}

func TestSluggerDeduplicates(t *testing.T) {
	s := NewSlugger()
	assert.Equal(t, "overview", s.Slug("Overview"))
	assert.Equal(t, "overview-1", s.Slug("Overview"))
	assert.Equal(t, "overview-2", s.Slug("overview"))
	assert.Equal(t, "details", s.Slug("Details"))
}

func TestSluggerSuffixCollision(t *testing.T) {
	s := NewSlugger()
	assert.Equal(t, "plan-1", s.Slug("Plan 1"))
	assert.Equal(t, "plan", s.Slug("Plan"))
	// "plan-1" is taken by a literal heading; the duplicate must not
	// collide with it.
	assert.Equal(t, "plan-2", s.Slug("Plan"))
}

func TestSluggerReset(t *testing.T) {
	s := NewSlugger()
	assert.Equal(t, "a", s.Slug("a"))
	assert.Equal(t, "a-1", s.Slug("a"))
	s.Reset()
	assert.Equal(t, "a", s.Slug("a"))
}
