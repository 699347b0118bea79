// Package tui is a terminal browser for the generated journal
package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/leverage-journal/internal/constants"
	"github.com/julianstephens/leverage-journal/internal/entries"
	"github.com/julianstephens/leverage-journal/internal/journal"
	"github.com/julianstephens/leverage-journal/internal/tui/components/pages"
	"github.com/julianstephens/leverage-journal/internal/tui/components/preview"
)

// generatedMsg carries a finished generation back to the update loop
type generatedMsg struct {
	result journal.Result
	err    error
}

type Model struct {
	source   entries.Source
	state    constants.SessionState
	keys     KeyMap
	help     help.Model
	pages    pages.Model
	preview  preview.Model
	result   journal.Result
	loading  bool
	err      error
	quitting bool
	width    int
	height   int
}

// NewModel creates a browser over the journal generated from src
func NewModel(src entries.Source) Model {
	if src == nil {
		src = entries.Static{}
	}
	return Model{
		source:  src,
		state:   constants.StateList,
		keys:    DefaultKeyMap(),
		help:    help.New(),
		pages:   pages.New(0, 0),
		preview: preview.New(0, 0),
		loading: true,
	}
}

func (m Model) ShortHelp() []key.Binding {
	keys := []key.Binding{m.keys.Tab, m.keys.Quit, m.keys.Help}
	if m.state == constants.StatePage {
		keys = append(keys, m.keys.Prev, m.keys.Next, m.keys.Back)
	}
	return keys
}

func (m Model) FullHelp() [][]key.Binding {
	global := []key.Binding{m.keys.Tab, m.keys.Quit, m.keys.Help}
	navigation := []key.Binding{m.keys.Up, m.keys.Down}
	var actions []key.Binding
	if m.state == constants.StatePage {
		actions = []key.Binding{m.keys.Prev, m.keys.Next, m.keys.Back}
	}
	return [][]key.Binding{global, navigation, actions}
}

func (m Model) Init() tea.Cmd {
	return m.generate()
}

func (m Model) generate() tea.Cmd {
	src := m.source
	return func() tea.Msg {
		b, err := src.Load(context.Background())
		if err != nil {
			return generatedMsg{err: err}
		}
		return generatedMsg{result: journal.Generate(b.EntriesByDay, journal.WithReviews(b.ReviewsByWeek))}
	}
}

// Result returns the journal currently being browsed
func (m Model) Result() journal.Result {
	return m.result
}

// State reports which view is showing
func (m Model) State() constants.SessionState {
	return m.state
}
