package composer

import (
	"html/template"

	"github.com/julianstephens/leverage-journal/internal/binder"
	"github.com/julianstephens/leverage-journal/internal/content"
)

// Frame is shared by every page view
type Frame struct {
	// Label is the printed, zero-padded page number
	Label string
	// ID is the element id; empty pages render without one
	ID     string
	Anchor string
}

// DividerView renders a chapter divider
type DividerView struct {
	Frame
	Chapter content.Chapter
}

// Ref is a resolved cross-reference: a label and the pages it points at
type Ref struct {
	Label string
	Pages string
}

// IndexGroup is one letter heading of the index
type IndexGroup struct {
	Letter string
	Refs   []Ref
}

// GlossaryEntry is a defined term with the page it refers to
type GlossaryEntry struct {
	Term       string
	Definition string
	Pages      string
}

// StaticView renders any page of the static book. Contents, Index and
// Glossary are filled only for the layouts that print them.
type StaticView struct {
	Frame
	Page     content.StaticPage
	Contents []Ref
	Index    []IndexGroup
	Glossary []GlossaryEntry
}

// DailyView renders one day of chapter 3
type DailyView struct {
	Frame
	Entry  binder.Bound
	Quote  content.QuoteRecord
	Footer string
}

// WeeklyView renders a weekly review page
type WeeklyView struct {
	Frame
	Review binder.ReviewBound
	Quote  string
}

// CheckpointView renders a 30-day reward page
type CheckpointView struct {
	Frame
	Day        int
	Checkpoint content.CheckpointRecord
}

// DocumentView is the full document: shell plus page fragments
type DocumentView struct {
	Title       string
	ContainerID string
	Pages       []template.HTML
}
