package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/leverage-journal/internal/constants"
	"github.com/julianstephens/leverage-journal/internal/tui/components/pages"
)

// chrome is the height taken by the tabs, status line and help
const chrome = 4

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		h, v := docStyle.GetFrameSize()
		m.pages.SetSize(msg.Width-h, msg.Height-v-chrome)
		m.preview.SetSize(msg.Width-h, msg.Height-v-chrome)
		m.help.Width = msg.Width
		return m, nil

	case generatedMsg:
		m.loading = false
		m.err = msg.err
		if msg.err != nil {
			return m, nil
		}
		m.result = msg.result
		failed := make(map[string]bool, len(msg.result.Failures))
		for _, f := range msg.result.Failures {
			failed[f.Page.Anchor] = true
		}
		m.pages.SetPages(msg.result.Pages, failed)
		if m.state == constants.StatePage {
			if p, ok := msg.result.Page(m.preview.Page().Anchor); ok {
				m.preview.SetPage(p)
			}
		}
		return m, nil

	case pages.OpenPageMsg:
		m.preview.SetPage(msg.Page)
		m.state = constants.StatePage
		return m, nil

	case pages.RegenerateMsg:
		m.loading = true
		return m, m.generate()

	case tea.KeyMsg:
		if m.state == constants.StateList && m.pages.Filtering() {
			m.pages, cmd = m.pages.Update(msg)
			return m, cmd
		}
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		case key.Matches(msg, m.keys.Tab):
			if m.state == constants.StateList {
				if p, ok := m.pages.Selected(); ok {
					m.preview.SetPage(p)
					m.state = constants.StatePage
				}
			} else {
				m.state = constants.StateList
			}
			return m, nil
		}

		if m.state == constants.StatePage {
			switch {
			case key.Matches(msg, m.keys.Back):
				m.state = constants.StateList
				return m, nil
			case key.Matches(msg, m.keys.Next):
				m.step(1)
				return m, nil
			case key.Matches(msg, m.keys.Prev):
				m.step(-1)
				return m, nil
			}
			m.preview, cmd = m.preview.Update(msg)
			return m, cmd
		}
	}

	if m.state == constants.StateList {
		m.pages, cmd = m.pages.Update(msg)
	}
	return m, cmd
}

// step turns the page in the preview by delta, keeping the list in sync
func (m *Model) step(delta int) {
	n := m.preview.Page().Number + delta
	if n < 1 || n > len(m.result.Pages) {
		return
	}
	m.preview.SetPage(m.result.Pages[n-1])
	m.pages.Select(n - 1)
}
