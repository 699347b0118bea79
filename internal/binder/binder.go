// Package binder turns an optional journal entry into the fixed-shape,
// escaped values a daily page prints. Binding never fails: every missing
// or malformed field degrades to a blank.
package binder

import (
	"html/template"
	"strings"
	"time"

	"github.com/julianstephens/leverage-journal/internal/constants"
	"github.com/julianstephens/leverage-journal/internal/content"
	"github.com/julianstephens/leverage-journal/internal/models"
)

// TaskRow is one printed task line
type TaskRow struct {
	Text      template.HTML
	Completed bool
}

// MoodOption is one entry of the mood strip
type MoodOption struct {
	Label    string
	Selected bool
}

// Bound is the page-ready view of one day's entry
type Bound struct {
	Day             int
	GratitudeLines  [constants.LinesPerSection]template.HTML
	Priorities      [3]template.HTML
	Tasks           [constants.TaskRows]TaskRow
	ReflectionLines [constants.LinesPerSection]template.HTML
	Mood            template.HTML
	MoodOptions     []MoodOption
	FormattedDate   string
}

// ReviewBound is the page-ready view of one week's review answers
type ReviewBound struct {
	Week      int
	Wins      [constants.ReviewLines]template.HTML
	Lessons   [constants.ReviewLines]template.HTML
	NextSteps [constants.ReviewLines]template.HTML
}

// Bind maps entry onto the daily page shape. A nil entry yields a blank page.
func Bind(day int, entry *models.JournalEntry) Bound {
	b := Bound{Day: day, FormattedDate: constants.Blank}
	if entry == nil {
		entry = &models.JournalEntry{}
	}

	b.GratitudeLines = lines3(entry.Gratitude)
	b.ReflectionLines = lines3(entry.Reflection)

	for i, p := range entry.Priorities() {
		b.Priorities[i] = Escape(p)
	}

	for i := 0; i < constants.TaskRows && i < len(entry.Tasks); i++ {
		b.Tasks[i] = TaskRow{
			Text:      Escape(entry.Tasks[i].Text),
			Completed: entry.Tasks[i].Completed,
		}
	}

	b.Mood = Escape(entry.Mood)
	b.MoodOptions = moodOptions(entry.Mood)
	b.FormattedDate = FormatDate(entry.EntryDate)

	return b
}

// BindReview maps a weekly review onto five lines per section
func BindReview(week int, review *models.WeeklyReview) ReviewBound {
	rb := ReviewBound{Week: week}
	if review == nil {
		return rb
	}
	rb.Wins = lines5(review.Wins)
	rb.Lessons = lines5(review.Lessons)
	rb.NextSteps = lines5(review.NextSteps)
	return rb
}

// Escape HTML-escapes & < > " ' and marks the result safe for templates
func Escape(s string) template.HTML {
	return template.HTML(template.HTMLEscapeString(s))
}

// FormatDate renders a YYYY-MM-DD date as MM/DD/YYYY. Empty or unparseable
// input yields the blank placeholder. The date is read as a calendar date,
// with no time zone conversion.
func FormatDate(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return constants.Blank
	}
	// Stored timestamps sometimes carry a time part; the calendar day is the prefix
	if len(raw) > len(constants.DateFormat) && raw[len(constants.DateFormat)] == 'T' {
		raw = raw[:len(constants.DateFormat)]
	}
	t, err := time.Parse(constants.DateFormat, raw)
	if err != nil {
		return constants.Blank
	}
	return t.Format(constants.DisplayDateFormat)
}

// SplitLines splits text on newlines, keeps the first n lines and pads with
// empty strings to exactly n
func SplitLines(text string, n int) []string {
	out := make([]string, n)
	if text == "" {
		return out
	}
	parts := strings.Split(text, "\n")
	for i := 0; i < n && i < len(parts); i++ {
		out[i] = parts[i]
	}
	return out
}

// MoodSelected reports whether option is picked by mood: mood contains the
// option's emoji (its first space-separated token) or equals the option
func MoodSelected(mood, option string) bool {
	if mood == "" {
		return false
	}
	if mood == option {
		return true
	}
	emoji, _, _ := strings.Cut(option, " ")
	return emoji != "" && strings.Contains(mood, emoji)
}

func moodOptions(mood string) []MoodOption {
	opts := content.Moods()
	out := make([]MoodOption, len(opts))
	for i, o := range opts {
		out[i] = MoodOption{Label: o, Selected: MoodSelected(mood, o)}
	}
	return out
}

func lines3(text string) [constants.LinesPerSection]template.HTML {
	var out [constants.LinesPerSection]template.HTML
	for i, l := range SplitLines(text, constants.LinesPerSection) {
		out[i] = Escape(l)
	}
	return out
}

func lines5(text string) [constants.ReviewLines]template.HTML {
	var out [constants.ReviewLines]template.HTML
	for i, l := range SplitLines(text, constants.ReviewLines) {
		out[i] = Escape(l)
	}
	return out
}
