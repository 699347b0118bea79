package book

import (
	"fmt"

	"github.com/julianstephens/leverage-journal/internal/cli"
	"github.com/julianstephens/leverage-journal/internal/constants"
	"github.com/julianstephens/leverage-journal/internal/qr"
)

// QrExportCmd writes every chapter QR code as a PNG
type QrExportCmd struct {
	Dir string `arg:"" help:"Directory to write PNG files into." type:"existingdir" default:"."`
}

func (c *QrExportCmd) Run(ctx *cli.Context) error {
	baseURL := ctx.BaseURL
	if baseURL == "" {
		baseURL = constants.DefaultBaseURL
	}
	paths, err := qr.Export(c.Dir, baseURL)
	for _, p := range paths {
		fmt.Printf("✓ %s\n", p)
	}
	if err != nil {
		return err
	}
	fmt.Printf("\nExported %d QR codes for %s\n", len(paths), baseURL)
	return nil
}
