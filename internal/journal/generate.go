// Package journal assembles the complete journal document: it plans and
// numbers every page, composes each one from static content and bound
// entries, and renders the result into the document container.
package journal

import (
	"fmt"
	"html/template"
	"io"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/julianstephens/leverage-journal/internal/binder"
	"github.com/julianstephens/leverage-journal/internal/composer"
	"github.com/julianstephens/leverage-journal/internal/content"
	"github.com/julianstephens/leverage-journal/internal/logger"
	"github.com/julianstephens/leverage-journal/internal/models"
)

// DocumentTitle is the <title> of every rendered journal
const DocumentTitle = "The Leverage Journal™"

// PageComposer renders a single page view with the named layout
type PageComposer interface {
	Compose(layout string, view any) (string, error)
}

var defaultComposer = sync.OnceValue(composer.Must)

// Failure records a page that could not be composed. The page keeps its
// number and renders as an empty fragment.
type Failure struct {
	Page models.Page
	Err  error
}

func (f Failure) Error() string {
	return fmt.Sprintf("page %s (%s, chapter %d): %v", f.Page.Label(), f.Page.Kind, f.Page.Chapter, f.Err)
}

// Result is a generated document: every page in print order plus the pages
// that failed to compose
type Result struct {
	Title    string
	Pages    []models.Page
	PageMap  PageMap
	Failures []Failure
}

// Page looks up a page by anchor
func (r Result) Page(anchor string) (models.Page, bool) {
	n, ok := r.PageMap[anchor]
	if !ok || n < 1 || n > len(r.Pages) {
		return models.Page{}, false
	}
	return r.Pages[n-1], true
}

// Chapter returns the pages of chapter n, divider first
func (r Result) Chapter(n int) []models.Page {
	var out []models.Page
	for _, p := range r.Pages {
		if p.Chapter == n {
			out = append(out, p)
		}
	}
	return out
}

// PageListing is the JSON view of one page in a document's page list
type PageListing struct {
	Number  int             `json:"page_number"`
	Label   string          `json:"label"`
	Kind    models.PageKind `json:"kind"`
	Chapter int             `json:"chapter,omitempty"`
	Anchor  string          `json:"anchor"`
	Title   string          `json:"title"`
	Failed  bool            `json:"failed,omitempty"`
}

// Listing returns every page in print order, flagging the pages that failed
// to compose
func (r Result) Listing() []PageListing {
	failed := make(map[string]bool, len(r.Failures))
	for _, f := range r.Failures {
		failed[f.Page.Anchor] = true
	}
	out := make([]PageListing, 0, len(r.Pages))
	for _, p := range r.Pages {
		out = append(out, PageListing{
			Number:  p.Number,
			Label:   p.Label(),
			Kind:    p.Kind,
			Chapter: p.Chapter,
			Anchor:  p.Anchor,
			Title:   p.Title,
			Failed:  failed[p.Anchor],
		})
	}
	return out
}

// Option configures a Generate call
type Option func(*options)

type options struct {
	reviews  models.ReviewsByWeek
	composer PageComposer
	book     *content.Book
}

// WithReviews binds weekly review answers into the review pages
func WithReviews(reviews models.ReviewsByWeek) Option {
	return func(o *options) {
		o.reviews = reviews
	}
}

// WithComposer replaces the built-in page templates
func WithComposer(c PageComposer) Option {
	return func(o *options) {
		o.composer = c
	}
}

// Generate builds every page of the journal for the given entries. It does
// no I/O and keeps no state: identical input gives identical pages.
// A page that fails to compose is recorded in Result.Failures and the rest
// of the document is still built.
func Generate(entries models.EntriesByDay, opts ...Option) Result {
	o := options{book: content.Load()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.composer == nil {
		o.composer = defaultComposer()
	}

	lg := logger.With("component", "journal")
	planned, pm := plan(o.book)

	g := &generation{opts: o, pm: pm, entries: entries, log: lg}
	res := Result{Title: DocumentTitle, Pages: make([]models.Page, len(planned)), PageMap: pm}

	for i, p := range planned {
		page := p.page
		markup, err := g.composeSafely(p)
		if err != nil {
			lg.Error("page composition failed",
				"chapter", page.Chapter, "kind", page.Kind, "page", page.Label(), "anchor", page.Anchor, "err", err)
			res.Failures = append(res.Failures, Failure{Page: page, Err: err})
			markup = ""
		}
		page.Markup = markup
		res.Pages[i] = page
	}

	lg.Debug("journal generated", "pages", len(res.Pages), "entries", len(entries), "failures", len(res.Failures))
	return res
}

// Render writes the document container holding every composed page in order
func Render(w io.Writer, res Result) error {
	fragments := make([]template.HTML, 0, len(res.Pages))
	for _, p := range res.Pages {
		if p.Markup == "" {
			continue
		}
		// Page markup comes from our own templates, escaped at composition time
		fragments = append(fragments, template.HTML(p.Markup))
	}
	title := res.Title
	if title == "" {
		title = DocumentTitle
	}
	return defaultComposer().Document(w, composer.DocumentView{Title: title, Pages: fragments})
}

type generation struct {
	opts    options
	pm      PageMap
	entries models.EntriesByDay
	log     *log.Logger

	// cross-reference views are resolved on first use
	contents []composer.Ref
	index    []composer.IndexGroup
	glossary []composer.GlossaryEntry
}

func (g *generation) composeSafely(p planned) (markup string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("page composer panicked: %v", r)
		}
	}()
	return g.compose(p)
}

func (g *generation) compose(p planned) (string, error) {
	frame := composer.Frame{Label: p.page.Label(), ID: p.id, Anchor: p.page.Anchor}
	c := g.opts.composer

	switch {
	case p.static != nil:
		view := composer.StaticView{Frame: frame, Page: *p.static}
		switch p.static.Layout {
		case "contents":
			if g.contents == nil {
				g.contents = contentsRefs(g.opts.book, g.pm, g.log)
			}
			view.Contents = g.contents
		case "index":
			if g.index == nil {
				g.index = indexGroups(g.opts.book, g.pm, g.log)
			}
			view.Index = g.index
		case "glossary":
			if g.glossary == nil {
				g.glossary = glossaryEntries(g.opts.book, g.pm, g.log)
			}
			view.Glossary = g.glossary
		}
		return c.Compose(p.static.Layout, view)

	case p.ch != nil:
		return c.Compose("divider", composer.DividerView{Frame: frame, Chapter: *p.ch})
	}

	switch p.slot.Kind {
	case models.KindDailyEntry:
		day := p.slot.Day
		return c.Compose("daily", composer.DailyView{
			Frame:  frame,
			Entry:  binder.Bind(day, g.entries.Get(day)),
			Quote:  content.DailyQuote(day),
			Footer: content.FooterWisdom(day),
		})
	case models.KindWeeklyReview:
		week := p.slot.Week
		return c.Compose("weekly", composer.WeeklyView{
			Frame:  frame,
			Review: binder.BindReview(week, g.opts.reviews.Get(week)),
			Quote:  content.WeeklyQuote(week),
		})
	case models.KindRewardCheckpoint:
		cp, ok := content.Checkpoint(p.slot.Day)
		if !ok {
			return "", fmt.Errorf("no checkpoint content for day %d", p.slot.Day)
		}
		return c.Compose("checkpoint", composer.CheckpointView{Frame: frame, Day: p.slot.Day, Checkpoint: cp})
	}
	return "", fmt.Errorf("no composer for page kind %s", p.slot.Kind)
}
