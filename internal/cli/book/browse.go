package book

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/leverage-journal/internal/cli"
	"github.com/julianstephens/leverage-journal/internal/tui"
)

type BrowseCmd struct {
	Entries string `short:"e" help:"Browse the journal built from a JSON entries file." type:"existingfile"`
	Remote  string `help:"Browse the journal built from a journal server's entries." env:"LEVERAGE_REMOTE_URL"`
	Token   string `help:"Bearer token for --remote. Defaults to the keyring." env:"LEVERAGE_API_TOKEN"`
}

func (c *BrowseCmd) Run(ctx *cli.Context) error {
	if ctx.Store != nil {
		ctx.PerformAutomaticBackup()
	}

	p := tea.NewProgram(tui.NewModel(Source(ctx, c.Entries, c.Remote, c.Token)), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("page browser failed: %w", err)
	}
	return nil
}
