// Package composer renders page views into HTML fragments and wraps a
// sequence of fragments in the journal document shell.
package composer

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"unicode/utf8"

	"github.com/julianstephens/leverage-journal/internal/constants"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Layouts every static page may name
var Layouts = []string{
	"cover", "contents", "standard", "tracker", "certificate", "index", "glossary",
}

// Composer executes page templates. It is safe for concurrent use.
type Composer struct {
	tmpl *template.Template
}

// New parses the embedded page templates
func New() (*Composer, error) {
	tmpl, err := template.New("journal").Funcs(funcs).ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to parse page templates: %w", err)
	}
	for _, name := range append([]string{"divider", "daily", "weekly", "checkpoint", "document"}, Layouts...) {
		if tmpl.Lookup(name) == nil {
			return nil, fmt.Errorf("page template %q is not defined", name)
		}
	}
	return &Composer{tmpl: tmpl}, nil
}

// Must is New that panics on error
func Must() *Composer {
	c, err := New()
	if err != nil {
		panic(err)
	}
	return c
}

// Compose renders one page fragment with the named layout
func (c *Composer) Compose(layout string, view any) (string, error) {
	if c.tmpl.Lookup(layout) == nil {
		return "", fmt.Errorf("unknown page layout %q", layout)
	}
	var buf bytes.Buffer
	if err := c.tmpl.ExecuteTemplate(&buf, layout, view); err != nil {
		return "", fmt.Errorf("failed to render %s page: %w", layout, err)
	}
	return buf.String(), nil
}

// Document writes the full HTML document: the shell, styles and the page
// container holding every fragment in order
func (c *Composer) Document(w io.Writer, view DocumentView) error {
	if view.ContainerID == "" {
		view.ContainerID = constants.ContainerID
	}
	if err := c.tmpl.ExecuteTemplate(w, "document", view); err != nil {
		return fmt.Errorf("failed to render document: %w", err)
	}
	return nil
}

var funcs = template.FuncMap{
	"truncate": Truncate,
	"seq":      seq,
	"span":     span,
	"inc":      func(i int) int { return i + 1 },
	"section":  reviewSection,
}

type reviewLines struct {
	Heading string
	Lines   []template.HTML
}

func reviewSection(heading string, lines [constants.ReviewLines]template.HTML) reviewLines {
	return reviewLines{Heading: heading, Lines: lines[:]}
}

// Truncate shortens s to limit characters and appends "..." when it was longer
func Truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit]) + "..."
}

func seq(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i + 1
	}
	return out
}

func span(from, to int) []int {
	if to < from {
		return nil
	}
	out := make([]int, 0, to-from+1)
	for i := from; i <= to; i++ {
		out = append(out, i)
	}
	return out
}
