package journal

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/log"

	"github.com/julianstephens/leverage-journal/internal/composer"
	"github.com/julianstephens/leverage-journal/internal/content"
)

// contentsRefs resolves the table of contents. Entries whose anchors are
// missing from the document are dropped with a warning.
func contentsRefs(book *content.Book, pm PageMap, lg *log.Logger) []composer.Ref {
	refs := make([]composer.Ref, 0, len(book.Contents))
	for _, r := range book.Contents {
		pages, ok := pm.Range(r.From, r.To)
		if !ok {
			lg.Warn("unresolved contents entry", "label", r.Label, "from", r.From, "to", r.To)
			continue
		}
		refs = append(refs, composer.Ref{Label: r.Label, Pages: pages})
	}
	return refs
}

// indexGroups resolves the index and groups it by the first letter of each term
func indexGroups(book *content.Book, pm PageMap, lg *log.Logger) []composer.IndexGroup {
	terms := append([]content.RangeRef(nil), book.Index...)
	sort.SliceStable(terms, func(i, j int) bool {
		return strings.ToLower(terms[i].Term) < strings.ToLower(terms[j].Term)
	})

	var groups []composer.IndexGroup
	for _, r := range terms {
		pages, ok := pm.Range(r.From, r.To)
		if !ok {
			lg.Warn("unresolved index entry", "term", r.Term, "from", r.From, "to", r.To)
			continue
		}
		letter := indexLetter(r.Term)
		if len(groups) == 0 || groups[len(groups)-1].Letter != letter {
			groups = append(groups, composer.IndexGroup{Letter: letter})
		}
		g := &groups[len(groups)-1]
		g.Refs = append(g.Refs, composer.Ref{Label: r.Term, Pages: pages})
	}
	return groups
}

func indexLetter(term string) string {
	r, _ := utf8.DecodeRuneInString(term)
	if r == utf8.RuneError {
		return "#"
	}
	return string(unicode.ToUpper(r))
}

// glossaryEntries resolves the page each glossary term points at. A term
// with an unresolved reference still prints, without a page.
func glossaryEntries(book *content.Book, pm PageMap, lg *log.Logger) []composer.GlossaryEntry {
	out := make([]composer.GlossaryEntry, 0, len(book.Glossary))
	for _, g := range book.Glossary {
		e := composer.GlossaryEntry{Term: g.Term, Definition: g.Definition}
		if g.See != "" {
			if label, ok := pm.Label(g.See); ok {
				e.Pages = label
			} else {
				lg.Warn("unresolved glossary reference", "term", g.Term, "see", g.See)
			}
		}
		out = append(out, e)
	}
	return out
}
