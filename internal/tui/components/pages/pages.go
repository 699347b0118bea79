package pages

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/leverage-journal/internal/models"
)

// OpenPageMsg asks the browser to show a page
type OpenPageMsg struct {
	Page models.Page
}

// RegenerateMsg asks the browser to rebuild the journal
type RegenerateMsg struct{}

type Item struct {
	Page   models.Page
	Failed bool
}

func (i Item) Title() string {
	title := fmt.Sprintf("%s  %s", i.Page.Label(), i.Page.Title)
	if i.Failed {
		title = "[FAILED] " + title
	}
	return title
}

func (i Item) Description() string {
	section := "Front matter"
	if i.Page.Chapter > 0 {
		section = fmt.Sprintf("Chapter %d", i.Page.Chapter)
	}
	return fmt.Sprintf("%s · %s · #%s", section, i.Page.Kind, i.Page.Anchor)
}

func (i Item) FilterValue() string { return i.Page.Title + " " + i.Page.Anchor }

type KeyMap struct {
	Open       key.Binding
	Regenerate key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Open: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open"),
		),
		Regenerate: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "regenerate"),
		),
	}
}

type Model struct {
	list list.Model
	keys KeyMap
}

func New(width, height int) Model {
	l := list.New(nil, list.NewDefaultDelegate(), width, height)
	l.Title = "Pages"
	l.SetShowTitle(false)
	l.SetShowHelp(false)

	keys := DefaultKeyMap()
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Open, keys.Regenerate}
	}
	l.AdditionalFullHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Open, keys.Regenerate}
	}

	return Model{
		list: l,
		keys: keys,
	}
}

// SetPages replaces the listed pages. failed holds the anchors of pages
// that did not compose.
func (m *Model) SetPages(pages []models.Page, failed map[string]bool) {
	items := make([]list.Item, len(pages))
	for i, p := range pages {
		items[i] = Item{Page: p, Failed: failed[p.Anchor]}
	}
	m.list.SetItems(items)
}

// Filtering reports whether the filter prompt has focus
func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

// Len returns the number of listed pages
func (m Model) Len() int {
	return len(m.list.Items())
}

// Select moves the cursor to index i
func (m *Model) Select(i int) {
	m.list.Select(i)
}

func (m Model) Selected() (models.Page, bool) {
	item, ok := m.list.SelectedItem().(Item)
	if !ok {
		return models.Page{}, false
	}
	return item.Page, true
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		// Don't match if we're filtering
		if m.list.FilterState() == list.Filtering {
			break
		}

		switch {
		case key.Matches(msg, m.keys.Open):
			if page, ok := m.Selected(); ok {
				return m, func() tea.Msg { return OpenPageMsg{Page: page} }
			}
		case key.Matches(msg, m.keys.Regenerate):
			return m, func() tea.Msg { return RegenerateMsg{} }
		}
	}

	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	return m.list.View()
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}
