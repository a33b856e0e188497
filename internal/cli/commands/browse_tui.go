package commands

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sqldoc-labs/sqldoc/pkg/core"
)

var (
	browseFrameStyle  = lipgloss.NewStyle().Margin(1, 2)
	browseRuleStyle   = lipgloss.NewStyle().Bold(true)
	browseMutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	browseFixStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	browseDetailTitle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))

	browseSeverityStyles = map[core.Severity]lipgloss.Style{
		core.SeverityError:   lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		core.SeverityWarning: lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		core.SeverityInfo:    lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
		core.SeverityHint:    lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	}
)

// browseListItem adapts a finding to the bubbles list delegate.
type browseListItem struct {
	browseItem
}

// Title implements list.DefaultItem.
func (i browseListItem) Title() string {
	return fmt.Sprintf("%s %s",
		browseRuleStyle.Render("["+i.Diag.RuleID+"]"), i.Diag.Message)
}

// Description implements list.DefaultItem.
func (i browseListItem) Description() string {
	sev := i.Diag.Severity.String()
	if style, ok := browseSeverityStyles[i.Diag.Severity]; ok {
		sev = style.Render(sev)
	}
	return fmt.Sprintf("%s · %s", sev, browseLocation(i.browseItem))
}

// FilterValue implements list.Item.
func (i browseListItem) FilterValue() string {
	return i.Diag.DocPath + " " + i.Diag.RuleID + " " + i.Diag.Message
}

func browseLocation(item browseItem) string {
	switch {
	case item.Diag.DocPath != "" && item.Diag.Pos.Line > 0:
		return fmt.Sprintf("%s:%d:%d", item.Diag.DocPath, item.Diag.Pos.Line, item.Diag.Pos.Column)
	case item.Diag.DocPath != "":
		return item.Diag.DocPath
	default:
		return "project"
	}
}

type browseModel struct {
	list     list.Model
	viewport viewport.Model
	detail   bool
	content  string
}

func newBrowseModel(items []browseItem) browseModel {
	listItems := make([]list.Item, len(items))
	for i, item := range items {
		listItems[i] = browseListItem{item}
	}

	l := list.New(listItems, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Findings"
	l.SetStatusBarItemName("finding", "findings")
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{
			key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "details")),
		}
	}

	return browseModel{list: l}
}

// Init implements tea.Model.
func (m browseModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		h, v := browseFrameStyle.GetFrameSize()
		m.list.SetSize(msg.Width-h, msg.Height-v)
		m.viewport = viewport.New(msg.Width-h, msg.Height-v-1)
		if m.detail {
			m.viewport.SetContent(m.content)
		}
		return m, nil

	case tea.KeyMsg:
		if m.detail {
			switch msg.String() {
			case "q", "esc", "enter":
				m.detail = false
				return m, nil
			case "ctrl+c":
				return m, tea.Quit
			}
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}

		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "q":
			if m.list.FilterState() != list.Filtering {
				return m, tea.Quit
			}
		case "enter":
			if m.list.FilterState() != list.Filtering {
				if item, ok := m.list.SelectedItem().(browseListItem); ok {
					m.detail = true
					m.content = renderBrowseDetail(item.browseItem)
					m.viewport.SetContent(m.content)
					m.viewport.GotoTop()
					return m, nil
				}
			}
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m browseModel) View() string {
	if m.detail {
		help := browseMutedStyle.Render("↑/↓ scroll · esc back · ctrl+c quit")
		return browseFrameStyle.Render(m.viewport.View() + "\n" + help)
	}
	return browseFrameStyle.Render(m.list.View())
}

// renderBrowseDetail lays out one finding: header, location, message,
// source excerpt, and the rule's suggested fix.
func renderBrowseDetail(item browseItem) string {
	var b strings.Builder

	header := item.Diag.RuleID
	if item.RuleName != "" {
		header += " · " + item.RuleName
	}
	b.WriteString(browseDetailTitle.Render(header))

	sev := item.Diag.Severity.String()
	if style, ok := browseSeverityStyles[item.Diag.Severity]; ok {
		sev = style.Render(sev)
	}
	b.WriteString("  " + sev + "\n")
	b.WriteString(browseMutedStyle.Render(browseLocation(item)) + "\n\n")

	b.WriteString(item.Diag.Message + "\n")

	if item.Excerpt != "" {
		b.WriteString("\n" + item.Excerpt + "\n")
	}
	if item.Fix != "" {
		b.WriteString("\n" + browseFixStyle.Render("Fix: "+item.Fix) + "\n")
	}
	return b.String()
}
