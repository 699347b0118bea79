package book

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/julianstephens/leverage-journal/internal/cli"
	"github.com/julianstephens/leverage-journal/internal/entries"
	"github.com/julianstephens/leverage-journal/internal/journal"
	"github.com/julianstephens/leverage-journal/internal/logger"
	"github.com/julianstephens/leverage-journal/internal/watch"
)

// WatchCmd regenerates the journal file whenever an entries file lands in
// the inbox directory
type WatchCmd struct {
	Inbox    string        `arg:"" help:"Directory to watch for *.json entry files." type:"existingdir"`
	Out      string        `short:"o" help:"Output HTML file." default:"${output}" env:"LEVERAGE_OUTPUT" type:"path"`
	NoQR     bool          `name:"no-qr" help:"Skip QR code enhancement."`
	Debounce time.Duration `help:"How long a file must be quiet before it is read." default:"500ms"`
	Initial  bool          `help:"Generate once from storage before watching."`
}

func (c *WatchCmd) handler(a *journal.Assembler) watch.Handler {
	return func(ctx context.Context, path string, b entries.Bundle) error {
		res, err := a.Run(ctx, "watch", b.EntriesByDay, journal.WithReviews(b.ReviewsByWeek))
		if err != nil {
			return err
		}
		fmt.Printf("✓ %s → %d pages written to %s\n", filepath.Base(path), len(res.Pages), c.Out)
		return nil
	}
}

func (c *WatchCmd) Run(ctx *cli.Context) error {
	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := newAssembler(ctx, c.Out, c.NoQR)
	if c.Initial {
		b, err := Source(ctx, "", "", "").Load(sigCtx)
		if err != nil {
			return fmt.Errorf("failed to load entries: %w", err)
		}
		if _, err := a.Run(sigCtx, "watch", b.EntriesByDay, journal.WithReviews(b.ReviewsByWeek)); err != nil {
			return err
		}
	}

	inbox, err := watch.NewInbox(c.Inbox, c.handler(a), watch.WithDebounce(c.Debounce))
	if err != nil {
		return fmt.Errorf("failed to watch %s: %w", c.Inbox, err)
	}
	if err := inbox.Start(sigCtx); err != nil {
		return err
	}
	fmt.Printf("Watching %s for entry files (Ctrl+C to stop)\n", c.Inbox)

	<-sigCtx.Done()
	inbox.Stop()

	stats := inbox.Stats()
	logger.Info("inbox watcher stopped", "processed", stats.Processed, "ignored", stats.Ignored, "errors", stats.Errors)
	fmt.Printf("\nProcessed %d files (%d ignored, %d failed)\n", stats.Processed, stats.Ignored, stats.Errors)
	return nil
}
