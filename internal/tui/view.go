package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/leverage-journal/internal/constants"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch {
	case m.err != nil:
		content = dangerStyle.Render(fmt.Sprintf("Failed to load entries: %v", m.err))
	case m.loading:
		content = "Generating journal..."
	case m.state == constants.StatePage:
		content = m.preview.View()
	default:
		content = m.pages.View()
	}

	return docStyle.Render(lipgloss.JoinVertical(
		lipgloss.Left,
		m.viewTabs(),
		m.viewStatus(),
		content,
		m.help.View(m),
	))
}

func (m Model) viewTabs() string {
	var tabs []string
	for i, title := range []string{"Pages", "Page"} {
		if m.state == constants.SessionState(i) {
			tabs = append(tabs, activeTabStyle.Render(title))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(title))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) viewStatus() string {
	if m.loading || m.err != nil {
		return ""
	}
	status := fmt.Sprintf("%s · %d pages", m.result.Title, len(m.result.Pages))
	if m.state == constants.StatePage {
		p := m.preview.Page()
		status = fmt.Sprintf("Page %s of %d · %s", p.Label(), len(m.result.Pages), p.Title)
	}
	if n := len(m.result.Failures); n > 0 {
		return lipgloss.JoinHorizontal(lipgloss.Top, statusStyle.Render(status), " ",
			warningStyle.Render(fmt.Sprintf("⚠ %d page(s) failed to compose", n)))
	}
	return statusStyle.Render(status)
}
