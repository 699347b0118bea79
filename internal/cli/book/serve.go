package book

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/julianstephens/leverage-journal/internal/cli"
	"github.com/julianstephens/leverage-journal/internal/constants"
	"github.com/julianstephens/leverage-journal/internal/server"
)

type ServeCmd struct {
	Addr      string  `help:"Listen address." default:":8080" env:"LEVERAGE_ADDR"`
	Token     string  `help:"Bearer token for /api/journal routes. Defaults to the keyring." env:"LEVERAGE_API_TOKEN"`
	Entries   string  `short:"e" help:"Serve entries from a JSON file instead of storage." type:"existingfile"`
	NoQR      bool    `name:"no-qr" help:"Skip QR code enhancement."`
	RateLimit float64 `help:"Requests per second per client on message routes." default:"5"`
	RateBurst int     `help:"Burst size for the rate limit." default:"10"`
}

// Server builds the journal server for the current context
func (c *ServeCmd) Server(ctx *cli.Context) *server.Server {
	cfg := server.Config{
		Addr:      c.Addr,
		Token:     cli.APIToken(c.Token),
		OnRun:     ctx.RunObserver(),
		RateLimit: c.RateLimit,
		RateBurst: c.RateBurst,
	}
	if ctx.Store != nil {
		cfg.Store = ctx.Store
	}
	if c.Entries != "" {
		cfg.Source = Source(ctx, c.Entries, "", "")
	}
	if !c.NoQR {
		cfg.Enhancer = cli.NewEnhancer(ctx.BaseURL)
	}
	return server.New(cfg)
}

func (c *ServeCmd) Run(ctx *cli.Context) error {
	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := c.Addr
	if addr == "" {
		addr = constants.DefaultListenAddr
	}
	srv := c.Server(ctx)
	fmt.Printf("Serving the journal on %s (Ctrl+C to stop)\n", addr)
	return srv.ListenAndServe(sigCtx)
}
