package book

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/julianstephens/leverage-journal/internal/cli"
	errs "github.com/julianstephens/leverage-journal/internal/errors"
	"github.com/julianstephens/leverage-journal/internal/journal"
)

type GenerateCmd struct {
	Entries   string `short:"e" help:"JSON entries file (message, envelope or bare entriesByDay)." type:"existingfile"`
	Remote    string `help:"Fetch entries from a journal server's entries endpoint." env:"LEVERAGE_REMOTE_URL"`
	Token     string `help:"Bearer token for --remote. Defaults to the keyring." env:"LEVERAGE_API_TOKEN"`
	Out       string `short:"o" help:"Output HTML file." default:"${output}" env:"LEVERAGE_OUTPUT" type:"path"`
	NoQR      bool   `name:"no-qr" help:"Skip QR code enhancement."`
	PagesJSON string `name:"pages-json" help:"Also write the page list as JSON to this file." type:"path"`
}

func (c *GenerateCmd) Run(ctx *cli.Context) error {
	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	b, err := Source(ctx, c.Entries, c.Remote, c.Token).Load(runCtx)
	if err != nil {
		return fmt.Errorf("failed to load entries: %w", err)
	}

	res, err := newAssembler(ctx, c.Out, c.NoQR).Run(runCtx, "cli", b.EntriesByDay, journal.WithReviews(b.ReviewsByWeek))
	if err != nil {
		if errors.Is(err, journal.ErrMissingContainer) {
			return errs.WithHint(err, fmt.Sprintf("create %s first or pass --out", filepath.Dir(c.Out)))
		}
		return err
	}

	fmt.Printf("✓ Wrote %d pages to %s\n", len(res.Pages), c.Out)
	if n := len(b.EntriesByDay); n > 0 {
		fmt.Printf("  %d daily entries bound\n", n)
	}
	for _, f := range res.Failures {
		fmt.Fprintf(os.Stderr, "  ⚠️  %v\n", f)
	}

	if c.PagesJSON != "" {
		if err := writePagesJSON(c.PagesJSON, res); err != nil {
			return err
		}
		fmt.Printf("  Page list written to %s\n", c.PagesJSON)
	}
	return nil
}

func writePagesJSON(path string, res journal.Result) error {
	data, err := json.MarshalIndent(res.Listing(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode page list: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
