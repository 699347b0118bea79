// Package content holds the fixed text of the journal: quote rotations,
// checkpoint rewards, chapter dividers and every static page.
package content

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/julianstephens/leverage-journal/internal/models"
)

//go:embed data/quotes.yaml
var quotesYAML []byte

//go:embed data/book.yaml
var bookYAML []byte

// QuoteRecord is a daily page quote with its lesson and reflection prompt
type QuoteRecord struct {
	Quote      string `yaml:"quote"`
	Author     string `yaml:"author"`
	Lesson     string `yaml:"lesson"`
	Reflection string `yaml:"reflection"`
}

// Quote is an attributed line used in page footers
type Quote struct {
	Quote  string `yaml:"quote"`
	Author string `yaml:"author"`
}

// String renders the quote as `"text" — author`
func (q Quote) String() string {
	return fmt.Sprintf("\"%s\" — %s", q.Quote, q.Author)
}

// CheckpointRecord is the reward page shown on days 30, 60 and 90
type CheckpointRecord struct {
	Title       string `yaml:"title"`
	Message     string `yaml:"message"`
	Celebration string `yaml:"celebration"`
	Reward      string `yaml:"reward"`
	Quote       string `yaml:"quote"`
}

type quoteTables struct {
	Daily  []QuoteRecord `yaml:"daily"`
	Footer []Quote       `yaml:"footer"`
	Weekly []Quote       `yaml:"weekly"`
}

// QRLink describes a chapter's QR anchor and where it points
type QRLink struct {
	ID      string `yaml:"id"`
	Path    string `yaml:"path"`
	Caption string `yaml:"caption"`
	Size    int    `yaml:"size"`
}

// Feature is the boxed callout on a chapter divider
type Feature struct {
	Icon    string   `yaml:"icon"`
	Title   string   `yaml:"title"`
	Quote   string   `yaml:"quote"`
	Author  string   `yaml:"author"`
	Heading string   `yaml:"heading"`
	Lines   []string `yaml:"lines"`
	Aside   string   `yaml:"aside"`
}

// Chapter is one of the five chapters and its static pages
type Chapter struct {
	Number    int          `yaml:"number"`
	Title     string       `yaml:"title"`
	Motto     []string     `yaml:"motto"`
	QR        QRLink       `yaml:"qr"`
	Feature   *Feature     `yaml:"feature"`
	Sequenced bool         `yaml:"sequenced"`
	Pages     []StaticPage `yaml:"pages"`
}

// Anchor is the page map key of the chapter's divider page
func (c Chapter) Anchor() string {
	return fmt.Sprintf("chapter-%d", c.Number)
}

// Item is one labelled line of a list
type Item struct {
	Icon  string `yaml:"icon"`
	Label string `yaml:"label"`
	Text  string `yaml:"text"`
}

// Section is a headed block of a standard page
type Section struct {
	Icon    string   `yaml:"icon"`
	Heading string   `yaml:"heading"`
	Hint    string   `yaml:"hint"`
	Text    string   `yaml:"text"`
	Items   []Item   `yaml:"items"`
	Lines   int      `yaml:"lines"`
	Fields  []string `yaml:"fields"`
}

// Callout is a highlighted box of one or more lines
type Callout struct {
	Title string   `yaml:"title"`
	Lines []string `yaml:"lines"`
}

// Link is a printed short link with a caption
type Link struct {
	Caption string `yaml:"caption"`
	URL     string `yaml:"url"`
}

// TrackerBlock is one 30-day band of the habit tracker
type TrackerBlock struct {
	Icon    string   `yaml:"icon"`
	Heading string   `yaml:"heading"`
	From    int      `yaml:"from"`
	To      int      `yaml:"to"`
	Habits  []string `yaml:"habits"`
}

// StaticPage is a page whose text does not depend on journal entries
type StaticPage struct {
	Anchor     string          `yaml:"anchor"`
	Layout     string          `yaml:"layout"`
	Kind       models.PageKind `yaml:"kind"`
	Title      string          `yaml:"title"`
	Subtitle   string          `yaml:"subtitle"`
	Paragraphs []string        `yaml:"paragraphs"`
	Items      []Item          `yaml:"items"`
	Callout    *Callout        `yaml:"callout"`
	Sections   []Section       `yaml:"sections"`
	Tracker    []TrackerBlock  `yaml:"tracker"`
	Fields     []string        `yaml:"fields"`
	Reflection string          `yaml:"reflection"`
	Link       *Link           `yaml:"link"`
	Closing    string          `yaml:"closing"`
	Footer     *Quote          `yaml:"footer"`
}

// RangeRef names a page, or a span of pages, by anchor
type RangeRef struct {
	Label string `yaml:"label"`
	Term  string `yaml:"term"`
	From  string `yaml:"from"`
	To    string `yaml:"to"`
}

// GlossaryTerm is a defined term and the page that introduces it
type GlossaryTerm struct {
	Term       string `yaml:"term"`
	Definition string `yaml:"definition"`
	See        string `yaml:"see"`
}

// Book is the full static text of the journal
type Book struct {
	FrontMatter []StaticPage             `yaml:"front_matter"`
	Chapters    []Chapter                `yaml:"chapters"`
	BackMatter  []StaticPage             `yaml:"back_matter"`
	BackCover   StaticPage               `yaml:"back_cover"`
	Contents    []RangeRef               `yaml:"contents"`
	Index       []RangeRef               `yaml:"index"`
	Glossary    []GlossaryTerm           `yaml:"glossary"`
	Moods       []string                 `yaml:"moods"`
	Checkpoints map[int]CheckpointRecord `yaml:"checkpoints"`
}

var loadQuotes = sync.OnceValue(func() quoteTables {
	var t quoteTables
	mustDecode("quotes.yaml", quotesYAML, &t)
	if len(t.Daily) == 0 || len(t.Footer) == 0 || len(t.Weekly) == 0 {
		panic("content: quotes.yaml has an empty rotation table")
	}
	return t
})

var loadBook = sync.OnceValue(func() *Book {
	var b Book
	mustDecode("book.yaml", bookYAML, &b)
	return &b
})

func mustDecode(name string, data []byte, v any) {
	if err := yaml.Unmarshal(data, v); err != nil {
		panic(fmt.Sprintf("content: malformed embedded %s: %v", name, err))
	}
}

// rotate maps a 1-based index onto a table of length n
func rotate(i, n int) int {
	return ((i-1)%n + n) % n
}

// DailyQuote returns the quote printed on the given day's page
func DailyQuote(day int) QuoteRecord {
	t := loadQuotes()
	return t.Daily[rotate(day, len(t.Daily))]
}

// FooterWisdom returns the footer line of the given day's page
func FooterWisdom(day int) string {
	t := loadQuotes()
	return t.Footer[rotate(day, len(t.Footer))].String()
}

// WeeklyQuote returns the footer of the given week's review as "text — author"
func WeeklyQuote(week int) string {
	t := loadQuotes()
	q := t.Weekly[rotate(week, len(t.Weekly))]
	return q.Quote + " — " + q.Author
}

// Checkpoint returns the reward page for day, if day closes a 30-day block
func Checkpoint(day int) (CheckpointRecord, bool) {
	cp, ok := loadBook().Checkpoints[day]
	return cp, ok
}

// Moods returns the mood vocabulary in display order
func Moods() []string {
	return append([]string(nil), loadBook().Moods...)
}

// Load returns the parsed static book. The result is shared and must not be modified.
func Load() *Book {
	return loadBook()
}

// TableSizes reports the length of each quote rotation
func TableSizes() (daily, footer, weekly int) {
	t := loadQuotes()
	return len(t.Daily), len(t.Footer), len(t.Weekly)
}
