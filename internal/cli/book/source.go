// Package book holds the commands that produce and publish the journal
// document: one-shot generation, the journal server, the inbox watcher and
// the page browser.
package book

import (
	"github.com/julianstephens/leverage-journal/internal/cli"
	"github.com/julianstephens/leverage-journal/internal/entries"
	"github.com/julianstephens/leverage-journal/internal/journal"
	"github.com/julianstephens/leverage-journal/internal/output"
)

// Source picks where entries come from: a file, then a remote journal
// server, then local storage. Without any of them the journal is blank.
func Source(ctx *cli.Context, file, remote, token string) entries.Source {
	switch {
	case file != "":
		return entries.FileSource{Path: file}
	case remote != "":
		return entries.NewHTTPSource(remote, cli.APIToken(token))
	case ctx.Store != nil:
		return entries.StoreSource{Store: ctx.Store}
	default:
		return entries.Static{}
	}
}

// newAssembler wires a file target to run history, notifications and,
// unless noQR is set, QR enhancement
func newAssembler(ctx *cli.Context, out string, noQR bool) *journal.Assembler {
	opts := []journal.AssemblerOption{journal.WithObserver(ctx.RunObserver())}
	if !noQR {
		opts = append(opts, journal.WithEnhancer(cli.NewEnhancer(ctx.BaseURL)))
	}
	return journal.NewAssembler(output.NewFileTarget(out), opts...)
}
