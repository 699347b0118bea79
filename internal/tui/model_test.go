package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/leverage-journal/internal/constants"
	"github.com/julianstephens/leverage-journal/internal/entries"
	"github.com/julianstephens/leverage-journal/internal/models"
	"github.com/julianstephens/leverage-journal/internal/tui/components/pages"
	"github.com/julianstephens/leverage-journal/internal/tui/components/preview"
)

type failingSource struct{}

func (failingSource) Load(context.Context) (entries.Bundle, error) {
	return entries.Bundle{}, errors.New("disk on fire")
}

// setupModel runs the initial generation and sizes the window
func setupModel(t *testing.T, src entries.Source) Model {
	t.Helper()
	m := NewModel(src)
	msg := m.Init()()
	next, _ := m.Update(msg)
	next, _ = next.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return next.(Model)
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestModelLoadsJournal(t *testing.T) {
	m := setupModel(t, entries.Static{EntriesByDay: models.EntriesByDay{1: {Gratitude: "Tea"}}})

	if got := len(m.Result().Pages); got != 134 {
		t.Fatalf("browsing %d pages, want 134", got)
	}
	if m.State() != constants.StateList {
		t.Errorf("State() = %v, want StateList", m.State())
	}
	if view := m.View(); !strings.Contains(view, "134 pages") {
		t.Errorf("View() missing page count:\n%s", view)
	}
}

func TestModelOpenAndStep(t *testing.T) {
	m := setupModel(t, entries.Static{EntriesByDay: models.EntriesByDay{1: {Gratitude: "Tea"}}})

	day1, ok := m.Result().Page("day-1")
	if !ok {
		t.Fatal("day-1 missing from result")
	}
	next, _ := m.Update(pages.OpenPageMsg{Page: day1})
	m = next.(Model)
	if m.State() != constants.StatePage {
		t.Fatalf("State() = %v, want StatePage", m.State())
	}
	if view := m.View(); !strings.Contains(view, "Page 019") || !strings.Contains(view, "Tea") {
		t.Errorf("View() does not show day 1:\n%s", view)
	}

	next, _ = m.Update(keyMsg("n"))
	m = next.(Model)
	if !strings.Contains(m.View(), "Page 020") {
		t.Error("next page did not advance to 020")
	}

	next, _ = m.Update(keyMsg("esc"))
	if next.(Model).State() != constants.StateList {
		t.Error("esc did not return to the page list")
	}
}

func TestModelTabOpensSelection(t *testing.T) {
	m := setupModel(t, nil)

	next, _ := m.Update(keyMsg("tab"))
	m = next.(Model)
	if m.State() != constants.StatePage {
		t.Fatalf("tab State() = %v, want StatePage", m.State())
	}
	if !strings.Contains(m.View(), "Page 001") {
		t.Error("tab did not open the first page")
	}
}

func TestModelLoadError(t *testing.T) {
	m := setupModel(t, failingSource{})
	if view := m.View(); !strings.Contains(view, "disk on fire") {
		t.Errorf("View() does not report the load error:\n%s", view)
	}
}

func TestModelQuit(t *testing.T) {
	m := setupModel(t, nil)
	next, cmd := m.Update(keyMsg("q"))
	if cmd == nil {
		t.Fatal("q returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q did not quit")
	}
	if next.(Model).View() != "" {
		t.Error("View() after quit should be empty")
	}
}

func TestPlainText(t *testing.T) {
	markup := `<div class="page"><h2>Day 1</h2><p>Grateful &amp; rested</p><div class="line">  </div><p>Next</p></div>`
	want := "Day 1\nGrateful & rested\nNext"
	if got := preview.PlainText(markup); got != want {
		t.Errorf("PlainText() = %q, want %q", got, want)
	}
}
