package journal

import (
	"fmt"

	"github.com/julianstephens/leverage-journal/internal/content"
	"github.com/julianstephens/leverage-journal/internal/models"
)

// allocator hands out page numbers. It is seeded once per document and
// advances for every scheduled page whether or not the page later renders.
type allocator struct {
	next int
}

func newAllocator() *allocator {
	return &allocator{next: 1}
}

func (a *allocator) take() int {
	n := a.next
	a.next++
	return n
}

// PageMap resolves anchors to page numbers
type PageMap map[string]int

// Label prints the page an anchor resolves to
func (m PageMap) Label(anchor string) (string, bool) {
	n, ok := m[anchor]
	if !ok {
		return "", false
	}
	return fmt.Sprintf("%03d", n), true
}

// Range prints the span between two anchors as "019-123". An empty or equal
// second anchor prints a single page.
func (m PageMap) Range(from, to string) (string, bool) {
	start, ok := m[from]
	if !ok {
		return "", false
	}
	if to == "" || to == from {
		return fmt.Sprintf("%03d", start), true
	}
	end, ok := m[to]
	if !ok {
		return "", false
	}
	if end < start {
		start, end = end, start
	}
	if end == start {
		return fmt.Sprintf("%03d", start), true
	}
	return fmt.Sprintf("%03d-%03d", start, end), true
}

// planned is a page with its number assigned but not yet composed
type planned struct {
	page   models.Page
	id     string
	static *content.StaticPage
	ch     *content.Chapter
	slot   Slot
}

// plan lays out the whole document in print order and numbers every page
func plan(book *content.Book) ([]planned, PageMap) {
	var pages []planned
	pm := PageMap{}
	alloc := newAllocator()

	add := func(p planned) {
		p.page.Number = alloc.take()
		pm[p.page.Anchor] = p.page.Number
		pages = append(pages, p)
	}
	addStatic := func(chapter int, sp *content.StaticPage) {
		add(planned{
			page:   models.Page{Kind: sp.Kind, Chapter: chapter, Anchor: sp.Anchor, Title: sp.Title},
			id:     sp.Anchor,
			static: sp,
		})
	}

	for i := range book.FrontMatter {
		addStatic(0, &book.FrontMatter[i])
	}

	for i := range book.Chapters {
		ch := &book.Chapters[i]
		add(planned{
			page: models.Page{
				Kind:    models.KindChapterDivider,
				Chapter: ch.Number,
				Anchor:  ch.Anchor(),
				Title:   fmt.Sprintf("Chapter %d: %s", ch.Number, ch.Title),
			},
			id: ch.Anchor(),
			ch: ch,
		})

		if ch.Sequenced {
			for _, s := range Sequence() {
				add(planned{
					page: models.Page{Kind: s.Kind, Chapter: ch.Number, Anchor: s.Anchor(), Title: s.Title()},
					id:   s.ElementID(),
					slot: s,
				})
			}
			continue
		}
		for j := range ch.Pages {
			addStatic(ch.Number, &ch.Pages[j])
		}
	}

	for i := range book.BackMatter {
		addStatic(0, &book.BackMatter[i])
	}
	addStatic(0, &book.BackCover)

	return pages, pm
}

// Outline returns every page of the document, numbered and titled, without
// composing any markup
func Outline() ([]models.Page, PageMap) {
	planned, pm := plan(content.Load())
	pages := make([]models.Page, len(planned))
	for i, p := range planned {
		pages[i] = p.page
	}
	return pages, pm
}
