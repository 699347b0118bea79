package binder

import (
	"html/template"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/julianstephens/leverage-journal/internal/constants"
	"github.com/julianstephens/leverage-journal/internal/models"
)

func TestBindNilEntry(t *testing.T) {
	b := Bind(5, nil)

	if b.Day != 5 {
		t.Errorf("Day = %d, want 5", b.Day)
	}
	for i, l := range b.GratitudeLines {
		if l != "" {
			t.Errorf("GratitudeLines[%d] = %q, want empty", i, l)
		}
	}
	for i, l := range b.ReflectionLines {
		if l != "" {
			t.Errorf("ReflectionLines[%d] = %q, want empty", i, l)
		}
	}
	for i, task := range b.Tasks {
		if task != (TaskRow{}) {
			t.Errorf("Tasks[%d] = %+v, want blank", i, task)
		}
	}
	if b.FormattedDate != constants.Blank {
		t.Errorf("FormattedDate = %q, want placeholder", b.FormattedDate)
	}
	if b.Mood != "" {
		t.Errorf("Mood = %q, want empty", b.Mood)
	}
	if len(b.MoodOptions) != 8 {
		t.Fatalf("MoodOptions has %d entries, want 8", len(b.MoodOptions))
	}
	for _, o := range b.MoodOptions {
		if o.Selected {
			t.Errorf("option %q selected on a blank page", o.Label)
		}
	}
}

func TestBindFullEntry(t *testing.T) {
	entry := &models.JournalEntry{
		Gratitude:  "Family\nHealth",
		Priority1:  "Ship feature",
		Priority2:  "Write tests",
		Tasks:      []models.Task{{Text: "Deploy", Completed: true}},
		Reflection: "Good day",
		Mood:       "🎯 Focused",
		EntryDate:  "2025-03-05",
	}

	b := Bind(5, entry)

	wantGratitude := [3]template.HTML{"Family", "Health", ""}
	if b.GratitudeLines != wantGratitude {
		t.Errorf("GratitudeLines = %v, want %v", b.GratitudeLines, wantGratitude)
	}
	wantPriorities := [3]template.HTML{"Ship feature", "Write tests", ""}
	if b.Priorities != wantPriorities {
		t.Errorf("Priorities = %v, want %v", b.Priorities, wantPriorities)
	}
	wantTasks := [3]TaskRow{{Text: "Deploy", Completed: true}, {}, {}}
	if b.Tasks != wantTasks {
		t.Errorf("Tasks = %+v, want %+v", b.Tasks, wantTasks)
	}
	wantReflection := [3]template.HTML{"Good day", "", ""}
	if b.ReflectionLines != wantReflection {
		t.Errorf("ReflectionLines = %v, want %v", b.ReflectionLines, wantReflection)
	}
	if b.FormattedDate != "03/05/2025" {
		t.Errorf("FormattedDate = %q, want 03/05/2025", b.FormattedDate)
	}

	var selected []string
	for _, o := range b.MoodOptions {
		if o.Selected {
			selected = append(selected, o.Label)
		}
	}
	if diff := cmp.Diff([]string{"🎯 Focused"}, selected); diff != "" {
		t.Errorf("selected moods mismatch (-want +got):\n%s", diff)
	}
}

func TestBindTruncatesAndEscapes(t *testing.T) {
	entry := &models.JournalEntry{
		Gratitude: "one\ntwo\nthree\nfour",
		Priority1: `<script>alert("x")</script>`,
		Tasks: []models.Task{
			{Text: "a & b"},
			{Text: "it's"},
			{Text: "third"},
			{Text: "dropped"},
		},
		Reflection: "<b>bold</b>",
	}

	b := Bind(1, entry)

	if b.GratitudeLines[2] != "three" {
		t.Errorf("GratitudeLines[2] = %q, want three", b.GratitudeLines[2])
	}
	if got, want := b.Priorities[0], template.HTML("&lt;script&gt;alert(&#34;x&#34;)&lt;/script&gt;"); got != want {
		t.Errorf("Priorities[0] = %q, want %q", got, want)
	}
	if b.Tasks[0].Text != "a &amp; b" {
		t.Errorf("Tasks[0].Text = %q, want escaped ampersand", b.Tasks[0].Text)
	}
	if b.Tasks[1].Text != "it&#39;s" {
		t.Errorf("Tasks[1].Text = %q, want escaped apostrophe", b.Tasks[1].Text)
	}
	if b.Tasks[2].Text != "third" {
		t.Errorf("Tasks[2].Text = %q, want third", b.Tasks[2].Text)
	}
	if b.ReflectionLines[0] != "&lt;b&gt;bold&lt;/b&gt;" {
		t.Errorf("ReflectionLines[0] = %q, want escaped markup", b.ReflectionLines[0])
	}
}

func TestFormatDate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", constants.Blank},
		{"iso date", "2025-03-05", "03/05/2025"},
		{"timestamp keeps calendar day", "2025-12-31T23:30:00-08:00", "12/31/2025"},
		{"malformed", "not-a-date", constants.Blank},
		{"impossible date", "2025-02-30", constants.Blank},
		{"whitespace", "  2025-01-09 ", "01/09/2025"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatDate(tt.in); got != tt.want {
				t.Errorf("FormatDate(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestMoodSelected(t *testing.T) {
	tests := []struct {
		mood, option string
		want         bool
	}{
		{"🎯 Focused", "🎯 Focused", true},
		{"🎯", "🎯 Focused", true},
		{"Feeling 🔥 today", "🔥 Energized", true},
		{"Focused", "🎯 Focused", false},
		{"", "😊 Happy", false},
		{"🙏 Grateful and 💡 Inspired", "💡 Inspired", true},
	}

	for _, tt := range tests {
		if got := MoodSelected(tt.mood, tt.option); got != tt.want {
			t.Errorf("MoodSelected(%q, %q) = %v, want %v", tt.mood, tt.option, got, tt.want)
		}
	}
}

func TestSplitLines(t *testing.T) {
	tests := []struct {
		text string
		n    int
		want []string
	}{
		{"", 3, []string{"", "", ""}},
		{"a", 3, []string{"a", "", ""}},
		{"a\nb\nc\nd", 3, []string{"a", "b", "c"}},
		{"a\n\nc", 3, []string{"a", "", "c"}},
		{"w1\nw2", 5, []string{"w1", "w2", "", "", ""}},
	}

	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, SplitLines(tt.text, tt.n)); diff != "" {
			t.Errorf("SplitLines(%q, %d) mismatch (-want +got):\n%s", tt.text, tt.n, diff)
		}
	}
}

func TestBindReview(t *testing.T) {
	blank := BindReview(2, nil)
	if blank.Week != 2 || blank.Wins[0] != "" {
		t.Errorf("BindReview(nil) = %+v, want blank week 2", blank)
	}

	rb := BindReview(1, &models.WeeklyReview{
		WeekNumber: 1,
		Wins:       "Launched\nSigned <client>",
		NextSteps:  "1\n2\n3\n4\n5\n6",
	})
	if rb.Wins[1] != "Signed &lt;client&gt;" {
		t.Errorf("Wins[1] = %q, want escaped", rb.Wins[1])
	}
	if rb.NextSteps[4] != "5" {
		t.Errorf("NextSteps[4] = %q, want 5", rb.NextSteps[4])
	}
	if rb.Lessons != [5]template.HTML{} {
		t.Errorf("Lessons = %v, want blank", rb.Lessons)
	}
}
