package output

import "github.com/charmbracelet/lipgloss"

// Styles is the shared style palette. All styles come from one lipgloss
// renderer so color degradation is uniform: on a dumb terminal or a pipe
// every Render call is a no-op.
type Styles struct {
	Header1 lipgloss.Style
	Header2 lipgloss.Style
	Bold    lipgloss.Style
	Muted   lipgloss.Style

	Error   lipgloss.Style
	Warning lipgloss.Style
	Info    lipgloss.Style
	Hint    lipgloss.Style
	Success lipgloss.Style

	StatusSuccess lipgloss.Style
	StatusFailed  lipgloss.Style

	// DocPath styles document paths in diagnostic listings.
	DocPath lipgloss.Style
	// Anchor styles heading anchors and link fragments.
	Anchor lipgloss.Style
	// Code styles inline SQL and rule IDs.
	Code lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) *Styles {
	return &Styles{
		Header1: r.NewStyle().Bold(true).Foreground(lipgloss.Color("14")),
		Header2: r.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		Bold:    r.NewStyle().Bold(true),
		Muted:   r.NewStyle().Foreground(lipgloss.Color("8")),

		Error:   r.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		Warning: r.NewStyle().Foreground(lipgloss.Color("11")),
		Info:    r.NewStyle().Foreground(lipgloss.Color("12")),
		Hint:    r.NewStyle().Foreground(lipgloss.Color("8")),
		Success: r.NewStyle().Foreground(lipgloss.Color("10")),

		StatusSuccess: r.NewStyle().Foreground(lipgloss.Color("10")).Bold(true),
		StatusFailed:  r.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),

		DocPath: r.NewStyle().Foreground(lipgloss.Color("13")).Bold(true),
		Anchor:  r.NewStyle().Foreground(lipgloss.Color("6")),
		Code:    r.NewStyle().Foreground(lipgloss.Color("14")),
	}
}
