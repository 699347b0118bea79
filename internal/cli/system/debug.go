package system

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/leverage-journal/internal/cli"
	"github.com/julianstephens/leverage-journal/internal/constants"
	"github.com/julianstephens/leverage-journal/internal/journal"
	"github.com/julianstephens/leverage-journal/internal/storage"
)

type DebugCmd struct {
	DBPath      *DebugDBPathCmd      `cmd:"" help:"Show database path."`
	DumpEntry   *DebugDumpEntryCmd   `cmd:"" help:"Dump a journal entry as JSON."`
	DumpReview  *DebugDumpReviewCmd  `cmd:"" help:"Dump a weekly review as JSON."`
	DumpPage    *DebugDumpPageCmd    `cmd:"" help:"Dump a generated page as JSON."`
	DumpPageMap *DebugDumpPageMapCmd `cmd:"" help:"Dump every anchor and its page number as JSON."`
}

type DebugDBPathCmd struct{}

func (cmd *DebugDBPathCmd) Run(ctx *cli.Context) error {
	return printJSON(map[string]string{"path": ctx.Store.GetConfigPath()})
}

type DebugDumpEntryCmd struct {
	Date string `arg:"" help:"Date of the entry to dump (YYYY-MM-DD or 'today')."`
}

func (cmd *DebugDumpEntryCmd) Run(ctx *cli.Context) error {
	date := cmd.Date
	if date == "today" {
		date = getCurrentDate()
	}
	if !isValidDate(date) {
		return fmt.Errorf("invalid date format: %s (expected YYYY-MM-DD or 'today')", date)
	}

	entry, err := ctx.Store.GetEntry(date)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("no entry found for date: %s", date)
		}
		return fmt.Errorf("failed to get entry: %w", err)
	}
	return printJSON(entry)
}

type DebugDumpReviewCmd struct {
	Week int `arg:"" help:"Week number of the review to dump."`
}

func (cmd *DebugDumpReviewCmd) Run(ctx *cli.Context) error {
	review, err := ctx.Store.GetWeeklyReview(cmd.Week)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("no review found for week: %d", cmd.Week)
		}
		return fmt.Errorf("failed to get review: %w", err)
	}
	return printJSON(review)
}

// DebugDumpPageCmd generates the journal from stored entries and dumps one
// page, markup included
type DebugDumpPageCmd struct {
	Anchor string `arg:"" help:"Page anchor, e.g. day-1 or checkpoint-30."`
}

func (cmd *DebugDumpPageCmd) Run(ctx *cli.Context) error {
	byDay, err := ctx.Store.GetEntriesByDay()
	if err != nil {
		return fmt.Errorf("failed to load entries: %w", err)
	}
	reviews, err := ctx.Store.GetReviewsByWeek()
	if err != nil {
		return fmt.Errorf("failed to load weekly reviews: %w", err)
	}

	res := journal.Generate(byDay, journal.WithReviews(reviews))
	page, ok := res.Page(cmd.Anchor)
	if !ok {
		return fmt.Errorf("no page with anchor: %s", cmd.Anchor)
	}
	return printJSON(page)
}

type DebugDumpPageMapCmd struct{}

func (cmd *DebugDumpPageMapCmd) Run(ctx *cli.Context) error {
	_, pm := journal.Outline()
	return printJSON(pm)
}

func printJSON(v any) error {
	jsonBytes, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	fmt.Println(string(jsonBytes))
	return nil
}

func getCurrentDate() string {
	return time.Now().Format(constants.DateFormat)
}

func isValidDate(dateStr string) bool {
	_, err := time.Parse(constants.DateFormat, dateStr)
	return err == nil
}
