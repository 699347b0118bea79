// Package days holds the commands that edit the journal's written content:
// daily entries and weekly reviews
package days

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/leverage-journal/internal/cli"
	"github.com/julianstephens/leverage-journal/internal/constants"
	"github.com/julianstephens/leverage-journal/internal/content"
	"github.com/julianstephens/leverage-journal/internal/entries"
	"github.com/julianstephens/leverage-journal/internal/models"
	"github.com/julianstephens/leverage-journal/internal/storage"
)

type EntryAddCmd struct {
	Date       string   `short:"d" help:"Entry date (YYYY-MM-DD or 'today')." default:"today"`
	Gratitude  string   `short:"g" help:"What you're grateful for."`
	Priority   []string `short:"p" help:"Top priorities, up to three. Repeat the flag."`
	Task       []string `short:"t" help:"Task list rows. Prefix with [x] to mark done."`
	Reflection string   `short:"r" help:"Evening reflection."`
	Mood       string   `short:"m" help:"Mood, e.g. '😊 Happy'."`
	Completed  bool     `short:"c" help:"Mark the day complete."`
	Form       bool     `short:"i" help:"Fill the entry in an interactive form."`
}

func (c *EntryAddCmd) Validate() error {
	if len(c.Priority) > 3 {
		return fmt.Errorf("at most 3 priorities, got %d", len(c.Priority))
	}
	if len(c.Task) > constants.TaskRows {
		return fmt.Errorf("at most %d tasks, got %d", constants.TaskRows, len(c.Task))
	}
	return nil
}

func (c *EntryAddCmd) empty() bool {
	return c.Gratitude == "" && len(c.Priority) == 0 && len(c.Task) == 0 &&
		c.Reflection == "" && c.Mood == "" && !c.Completed
}

func (c *EntryAddCmd) Run(ctx *cli.Context) error {
	date, err := ResolveDate(c.Date)
	if err != nil {
		return err
	}

	entry := models.JournalEntry{EntryDate: date}
	if existing, err := ctx.Store.GetEntry(date); err == nil && existing.DeletedAt == nil {
		entry = existing
	} else if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("failed to load entry: %w", err)
	}

	if c.Form || c.empty() {
		if err := runEntryForm(&entry); err != nil {
			return err
		}
	} else {
		c.apply(&entry)
	}

	saved, err := ctx.Store.SaveEntry(entry)
	if err != nil {
		return fmt.Errorf("failed to save entry: %w", err)
	}
	fmt.Printf("✓ Saved entry for %s (day %d)\n", saved.EntryDate, saved.DayNumber)
	return nil
}

// apply overlays the flags that were set onto e
func (c *EntryAddCmd) apply(e *models.JournalEntry) {
	if c.Gratitude != "" {
		e.Gratitude = c.Gratitude
	}
	if len(c.Priority) > 0 {
		var p [3]string
		copy(p[:], c.Priority)
		e.Priority1, e.Priority2, e.Priority3 = p[0], p[1], p[2]
	}
	if len(c.Task) > 0 {
		e.Tasks = ParseTasks(c.Task)
	}
	if c.Reflection != "" {
		e.Reflection = c.Reflection
	}
	if c.Mood != "" {
		e.Mood = c.Mood
	}
	if c.Completed {
		e.Completed = true
	}
}

// ParseTasks turns "[x] text" and "text" rows into tasks
func ParseTasks(rows []string) []models.Task {
	tasks := make([]models.Task, 0, len(rows))
	for _, row := range rows {
		row = strings.TrimSpace(row)
		done := false
		for _, prefix := range []string{"[x]", "[X]"} {
			if strings.HasPrefix(row, prefix) {
				done = true
				row = strings.TrimSpace(strings.TrimPrefix(row, prefix))
			}
		}
		row = strings.TrimSpace(strings.TrimPrefix(row, "[ ]"))
		if row == "" {
			continue
		}
		tasks = append(tasks, models.Task{Text: row, Completed: done})
	}
	return tasks
}

func runEntryForm(e *models.JournalEntry) error {
	var tasks string
	for _, t := range e.Tasks {
		if t.Completed {
			tasks += "[x] "
		}
		tasks += t.Text + "\n"
	}

	moods := []huh.Option[string]{huh.NewOption("(none)", "")}
	for _, m := range content.Moods() {
		moods = append(moods, huh.NewOption(m, m))
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Gratitude").Value(&e.Gratitude),
			huh.NewInput().Title("Priority 1").Value(&e.Priority1),
			huh.NewInput().Title("Priority 2").Value(&e.Priority2),
			huh.NewInput().Title("Priority 3").Value(&e.Priority3),
		).Title(fmt.Sprintf("Morning · %s", e.EntryDate)),
		huh.NewGroup(
			huh.NewText().Title("Tasks").Description("One per line, prefix with [x] when done").Value(&tasks),
			huh.NewText().Title("Reflection").Value(&e.Reflection),
			huh.NewSelect[string]().Title("Mood").Options(moods...).Value(&e.Mood),
			huh.NewConfirm().Title("Day complete?").Value(&e.Completed),
		).Title("Evening"),
	)
	if err := form.Run(); err != nil {
		return err
	}

	rows := strings.Split(tasks, "\n")
	if len(rows) > constants.TaskRows {
		rows = rows[:constants.TaskRows]
	}
	e.Tasks = ParseTasks(rows)
	return nil
}

type EntryListCmd struct {
	All bool `short:"a" help:"Include deleted entries."`
}

func (c *EntryListCmd) Run(ctx *cli.Context) error {
	list, err := ctx.Store.ListEntries(c.All)
	if err != nil {
		return fmt.Errorf("failed to list entries: %w", err)
	}
	if len(list) == 0 {
		fmt.Println("No journal entries yet. Add one with 'leverage entry add'.")
		return nil
	}

	fmt.Printf("%-12s %-5s %-30s %-14s %-6s\n", "Date", "Day", "Gratitude", "Mood", "Done")
	fmt.Println(strings.Repeat("-", 72))
	for _, e := range list {
		done := ""
		if e.Completed {
			done = "✓"
		}
		if e.DeletedAt != nil {
			done = "deleted"
		}
		fmt.Printf("%-12s %-5d %-30s %-14s %-6s\n", e.EntryDate, e.DayNumber, truncate(e.Gratitude, 28), truncate(e.Mood, 14), done)
	}
	return nil
}

type EntryShowCmd struct {
	Date string `arg:"" optional:"" help:"Entry date (YYYY-MM-DD or 'today')." default:"today"`
}

func (c *EntryShowCmd) Run(ctx *cli.Context) error {
	date, err := ResolveDate(c.Date)
	if err != nil {
		return err
	}
	e, err := ctx.Store.GetEntry(date)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("no entry found for date: %s", date)
		}
		return fmt.Errorf("failed to get entry: %w", err)
	}

	fmt.Printf("%s · Day %d\n", e.EntryDate, e.DayNumber)
	if e.DeletedAt != nil {
		fmt.Printf("(deleted %s)\n", e.DeletedAt.Local().Format("2006-01-02 15:04"))
	}
	fmt.Printf("\nGratitude:  %s\n", orBlank(e.Gratitude))
	for i, p := range e.Priorities() {
		fmt.Printf("Priority %d: %s\n", i+1, orBlank(p))
	}
	fmt.Println("Tasks:")
	for _, t := range e.Tasks {
		box := "[ ]"
		if t.Completed {
			box = "[x]"
		}
		fmt.Printf("  %s %s\n", box, t.Text)
	}
	fmt.Printf("Reflection: %s\n", orBlank(e.Reflection))
	fmt.Printf("Mood:       %s\n", orBlank(e.Mood))
	fmt.Printf("Completed:  %v\n", e.Completed)
	return nil
}

type EntryDeleteCmd struct {
	Date string `arg:"" help:"Date of the entry to delete (YYYY-MM-DD or 'today')."`
}

func (c *EntryDeleteCmd) Run(ctx *cli.Context) error {
	date, err := ResolveDate(c.Date)
	if err != nil {
		return err
	}
	if err := ctx.Store.DeleteEntry(date); err != nil {
		return fmt.Errorf("failed to delete entry: %w", err)
	}
	fmt.Printf("✓ Deleted entry for %s. Restore it with 'leverage entry restore %s'\n", date, date)
	return nil
}

type EntryRestoreCmd struct {
	Date string `arg:"" help:"Date of the entry to restore (YYYY-MM-DD)."`
}

func (c *EntryRestoreCmd) Run(ctx *cli.Context) error {
	date, err := ResolveDate(c.Date)
	if err != nil {
		return err
	}
	if err := ctx.Store.RestoreEntry(date); err != nil {
		return fmt.Errorf("failed to restore entry: %w", err)
	}
	fmt.Printf("✓ Restored entry for %s\n", date)
	return nil
}

// EntryImportCmd loads entries and reviews from a JSON file in any of the
// accepted shapes. Entries keyed only by day are dated from --start, or from
// the first stored entry when --start is omitted.
type EntryImportCmd struct {
	File  string `arg:"" help:"JSON file to import." type:"existingfile"`
	Start string `help:"Date of program day 1 (YYYY-MM-DD) for entries without a date."`
}

func (c *EntryImportCmd) Run(ctx *cli.Context) error {
	b, err := entries.FileSource{Path: c.File}.Load(context.Background())
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", c.File, err)
	}

	var batch []models.JournalEntry
	for _, e := range b.Entries {
		if e.EntryDate != "" {
			batch = append(batch, e)
		}
	}
	if len(b.EntriesByDay) > 0 {
		start, err := c.programStart(ctx.Store)
		if err != nil {
			return err
		}
		for _, day := range b.EntriesByDay.Days() {
			e := b.EntriesByDay[day]
			e.EntryDate = start.AddDate(0, 0, day-1).Format(constants.DateFormat)
			batch = append(batch, e)
		}
	}

	// oldest first so day numbers count from the real program start
	sort.SliceStable(batch, func(i, j int) bool { return batch[i].EntryDate < batch[j].EntryDate })
	for _, e := range batch {
		e.ID, e.DeletedAt = "", nil
		if _, err := ctx.Store.SaveEntry(e); err != nil {
			return fmt.Errorf("failed to import entry %s: %w", e.EntryDate, err)
		}
	}

	weeks := make([]int, 0, len(b.ReviewsByWeek))
	for w := range b.ReviewsByWeek {
		weeks = append(weeks, w)
	}
	sort.Ints(weeks)
	for _, w := range weeks {
		r := b.ReviewsByWeek[w]
		r.ID, r.WeekNumber = "", w
		if _, err := ctx.Store.SaveWeeklyReview(r); err != nil {
			return fmt.Errorf("failed to import review for week %d: %w", w, err)
		}
	}

	fmt.Printf("✓ Imported %d entries and %d weekly reviews\n", len(batch), len(weeks))
	return nil
}

func (c *EntryImportCmd) programStart(store storage.Provider) (time.Time, error) {
	if c.Start != "" {
		t, err := time.Parse(constants.DateFormat, c.Start)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid --start %q: expected YYYY-MM-DD", c.Start)
		}
		return t, nil
	}
	list, err := store.ListEntries(false)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to list entries: %w", err)
	}
	if len(list) == 0 {
		return time.Time{}, errors.New("entries are keyed by day; pass --start to date them")
	}
	return time.Parse(constants.DateFormat, list[0].EntryDate)
}

// EntryExportCmd writes stored entries as a JOURNAL_ENTRIES message that
// generate --entries and the watch inbox accept
type EntryExportCmd struct {
	Out string `short:"o" help:"Destination file. Defaults to stdout." type:"path"`
}

func (c *EntryExportCmd) Run(ctx *cli.Context) error {
	b, err := entries.StoreSource{Store: ctx.Store}.Load(context.Background())
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(entries.NewMessage(b), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode entries: %w", err)
	}
	if c.Out == "" {
		fmt.Println(string(data))
		return nil
	}
	if err := os.WriteFile(c.Out, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", c.Out, err)
	}
	fmt.Printf("✓ Exported %d days and %d reviews to %s\n", len(b.EntriesByDay), len(b.ReviewsByWeek), c.Out)
	return nil
}

// ResolveDate accepts YYYY-MM-DD or 'today'
func ResolveDate(s string) (string, error) {
	if s == "" || s == "today" {
		return time.Now().Format(constants.DateFormat), nil
	}
	if _, err := time.Parse(constants.DateFormat, s); err != nil {
		return "", fmt.Errorf("invalid date format: %s (expected YYYY-MM-DD or 'today')", s)
	}
	return s, nil
}

func orBlank(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
