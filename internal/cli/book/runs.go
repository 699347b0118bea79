package book

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/leverage-journal/internal/cli"
	"github.com/julianstephens/leverage-journal/internal/journal"
)

type RunsCmd struct {
	Limit int `short:"n" help:"Number of runs to show. 0 shows all." default:"10"`
}

func (c *RunsCmd) Run(ctx *cli.Context) error {
	if ctx.Store == nil {
		return errors.New("run history needs storage; run 'leverage init' first")
	}
	runs, err := ctx.Store.ListRuns(c.Limit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}
	if len(runs) == 0 {
		fmt.Println("No generation runs recorded yet.")
		return nil
	}

	fmt.Printf("%-19s %-10s %-6s %-8s %-9s %s\n", "Started", "Trigger", "Pages", "Failed", "Duration", "Status")
	fmt.Println(strings.Repeat("-", 72))
	for _, r := range runs {
		status := "ok"
		if !r.Succeeded() {
			status = "error: " + r.Error
		}
		fmt.Printf("%-19s %-10s %-6d %-8d %-9s %s\n",
			r.StartedAt.Local().Format("2006-01-02 15:04:05"), r.Trigger, r.Pages, r.Failures,
			r.Duration.Round(time.Millisecond), status)
	}
	return nil
}

// PagesCmd prints the fixed page plan
type PagesCmd struct {
	Chapter int  `short:"c" help:"Only list pages of this chapter (1-3)."`
	Anchors bool `short:"a" help:"Show anchors instead of titles."`
}

func (c *PagesCmd) Validate() error {
	if c.Chapter < 0 || c.Chapter > 3 {
		return fmt.Errorf("chapter must be between 1 and 3, got %d", c.Chapter)
	}
	return nil
}

func (c *PagesCmd) Run(ctx *cli.Context) error {
	pages, _ := journal.Outline()
	shown := 0
	for _, p := range pages {
		if c.Chapter != 0 && p.Chapter != c.Chapter {
			continue
		}
		name := p.Title
		if c.Anchors {
			name = p.Anchor
		}
		fmt.Printf("%s  %-18s %s\n", p.Label(), p.Kind, name)
		shown++
	}
	fmt.Printf("\n%d of %d pages\n", shown, len(pages))
	return nil
}
